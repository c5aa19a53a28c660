// Package vault abstracts the document corpus: reading asset bytes,
// rewriting documents, listing them, and resolving in-document link
// targets to corpus paths.
package vault

import (
	"path"
	"strings"

	"github.com/notepress/notepress/internal/common"
)

// Resolve maps a raw reference target to a corpus-relative path and the
// asset's base name.
//
// Rules:
//   - a bare file name joins the attachment folder; an attachment folder
//     starting with '.' keeps its explicit-relative form;
//   - './' and '../' targets resolve against the referencing document's
//     folder, with dot segments normalized;
//   - anything else is already corpus-relative and is used as-is.
//
// Relative resolution without a referencing document fails with
// common.ErrNoContext.
func Resolve(raw, fromDoc, attachmentDir string) (string, string, error) {
	name := path.Base(raw)

	if !strings.Contains(raw, "/") {
		joined := path.Join(attachmentDir, raw)
		if strings.HasPrefix(attachmentDir, ".") && !strings.HasPrefix(joined, ".") {
			joined = "./" + joined
		}
		return joined, name, nil
	}

	if strings.HasPrefix(raw, "./") || strings.HasPrefix(raw, "../") {
		if fromDoc == "" {
			return "", "", common.ErrNoContext
		}
		return path.Join(path.Dir(fromDoc), raw), name, nil
	}

	return raw, name, nil
}
