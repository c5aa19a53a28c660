package vault

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/notepress/notepress/internal/common"
)

// MemoryVault is an in-memory Vault used by tests and by callers that
// hand documents in without a backing directory.
type MemoryVault struct {
	files map[string][]byte
}

func NewMemoryVault() *MemoryVault {
	return &MemoryVault{files: map[string][]byte{}}
}

// Put stores an asset or document under a corpus-relative path.
func (v *MemoryVault) Put(p string, data []byte) {
	v.files[clean(p)] = data
}

func clean(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

func (v *MemoryVault) ReadFile(p string) ([]byte, error) {
	b, ok := v.files[clean(p)]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", p, common.ErrNotFound)
	}
	return b, nil
}

func (v *MemoryVault) ReadDoc(p string) (string, error) {
	b, err := v.ReadFile(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (v *MemoryVault) WriteDoc(p, text string) error {
	v.files[clean(p)] = []byte(text)
	return nil
}

func (v *MemoryVault) ListDocs(scope string) ([]string, error) {
	prefix := ""
	if scope != "" {
		prefix = clean(scope) + "/"
	}
	var docs []string
	for p := range v.files {
		if strings.HasSuffix(p, ".md") && strings.HasPrefix(p, prefix) {
			docs = append(docs, p)
		}
	}
	sort.Strings(docs)
	return docs, nil
}

func (v *MemoryVault) ResolveLink(raw, fromDoc string) (string, bool) {
	if fromDoc != "" {
		candidate := clean(path.Join(path.Dir(fromDoc), raw))
		if v.Exists(candidate) {
			return candidate, true
		}
	}
	candidate := clean(raw)
	if v.Exists(candidate) {
		return candidate, true
	}
	return "", false
}

func (v *MemoryVault) FindByName(name string) (string, bool) {
	var keys []string
	for p := range v.files {
		keys = append(keys, p)
	}
	sort.Strings(keys)
	for _, p := range keys {
		if path.Base(p) == name {
			return p, true
		}
	}
	return "", false
}

func (v *MemoryVault) Exists(p string) bool {
	_, ok := v.files[clean(p)]
	return ok
}
