package publish

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/notepress/notepress/internal/catalog"
	"github.com/notepress/notepress/internal/markdown"
)

// PasteRequest is the plain value the editor integration layer hands the
// core after converting a raw paste/drop event. The core knows nothing
// about platform event types.
type PasteRequest struct {
	Data []byte
	Name string
	Mime string
}

// Decision is the outcome of the upload confirmation dialog.
type Decision int

const (
	// DecisionCancel means the dialog was dismissed without a choice.
	DecisionCancel Decision = iota
	// DecisionUpload uploads this one paste.
	DecisionUpload
	// DecisionUploadRemember uploads and suppresses the dialog for the
	// rest of the session.
	DecisionUploadRemember
	// DecisionLocal keeps the pasted file in the vault untouched.
	DecisionLocal
)

// ShouldUpload reports whether the decision is upload-affirmative; only
// then is the upload pipeline invoked.
func (d Decision) ShouldUpload() bool {
	return d == DecisionUpload || d == DecisionUploadRemember
}

// HandlePaste uploads one pasted asset and returns the tag to insert,
// image or player depending on the video signals. The catalog applies
// here too: pasting the same screenshot twice yields one upload.
func (p *Publisher) HandlePaste(ctx context.Context, req PasteRequest) (string, error) {
	name := req.Name
	if name == "" {
		name = "blob"
	}
	mimeType := req.Mime
	if mimeType == "" {
		mimeType = mimeFor(name, req.Data)
	}

	batchID := uuid.NewString()
	res, rec, _, err := p.store(ctx, req.Data, name, mimeType, "", name, batchID)
	if err != nil {
		return "", fmt.Errorf("paste %s: %w", name, err)
	}
	if p.cat != nil && rec != nil {
		if err := p.cat.RecordAll(ctx, []*catalog.Record{rec}); err != nil {
			p.log.Warn(ctx, "catalog not updated", "name", name, "error", err)
		}
	}

	ref := markdown.Ref{Target: name, Video: markdown.IsVideo(name)}
	return p.replacement(ref, res).Tag, nil
}

// ReplacePlaceholder swaps the first occurrence of placeholder in text
// for tag, the paste flow's single-replacement counterpart to the
// whole-document rewrite.
func ReplacePlaceholder(text, placeholder, tag string) string {
	return markdown.Apply(text, []markdown.Replacement{{Original: placeholder, Tag: tag}}, false)
}
