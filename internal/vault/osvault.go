package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// OSVault is a Vault backed by a directory tree on disk.
type OSVault struct {
	root string
}

func NewOSVault(root string) (*OSVault, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("vault root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault root %s is not a directory", root)
	}
	return &OSVault{root: root}, nil
}

// abs converts a corpus-relative path to a filesystem path.
func (v *OSVault) abs(p string) string {
	return filepath.Join(v.root, filepath.FromSlash(path.Clean("/"+p)))
}

func (v *OSVault) ReadFile(p string) ([]byte, error) {
	b, err := os.ReadFile(v.abs(p))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return b, nil
}

func (v *OSVault) ReadDoc(p string) (string, error) {
	b, err := v.ReadFile(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (v *OSVault) WriteDoc(p, text string) error {
	if err := os.WriteFile(v.abs(p), []byte(text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

func (v *OSVault) ListDocs(scope string) ([]string, error) {
	base := v.root
	if scope != "" {
		base = v.abs(scope)
	}

	var docs []string
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Hidden directories hold host config, not documents.
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") && p != base {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(p), ".md") {
			rel, err := filepath.Rel(v.root, p)
			if err != nil {
				return err
			}
			docs = append(docs, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list docs: %w", err)
	}
	sort.Strings(docs)
	return docs, nil
}

// ResolveLink tries the referencing document's own folder, then the
// corpus root. This stands in for the host editor's link index.
func (v *OSVault) ResolveLink(raw, fromDoc string) (string, bool) {
	if fromDoc != "" {
		candidate := path.Join(path.Dir(fromDoc), raw)
		if v.Exists(candidate) {
			return candidate, true
		}
	}
	candidate := path.Clean(raw)
	if v.Exists(candidate) {
		return candidate, true
	}
	return "", false
}

func (v *OSVault) FindByName(name string) (string, bool) {
	var found string
	err := filepath.WalkDir(v.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if n := d.Name(); strings.HasPrefix(n, ".") && p != v.root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == name {
			rel, err := filepath.Rel(v.root, p)
			if err != nil {
				return err
			}
			found = filepath.ToSlash(rel)
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil || found == "" {
		return "", false
	}
	return found, true
}

func (v *OSVault) Exists(p string) bool {
	info, err := os.Stat(v.abs(p))
	return err == nil && !info.IsDir()
}
