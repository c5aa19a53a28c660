package publish

import (
	"context"
	"fmt"

	"github.com/notepress/notepress/internal/common"
)

func wrapNotFound(target string) error {
	return fmt.Errorf("%s: %w", target, common.ErrNotFound)
}

// PublishDoc reads a document, publishes its references and writes the
// rewritten text back. The document is only touched when something
// actually changed.
func (p *Publisher) PublishDoc(ctx context.Context, docPath string) (Stats, error) {
	text, err := p.vault.ReadDoc(docPath)
	if err != nil {
		return Stats{}, fmt.Errorf("read document %s: %w", docPath, err)
	}

	rewritten, stats := p.PublishText(ctx, text, docPath)
	if rewritten == text {
		return stats, nil
	}

	if err := p.vault.WriteDoc(docPath, rewritten); err != nil {
		return stats, fmt.Errorf("write document %s: %w", docPath, err)
	}
	return stats, nil
}

// PublishFolder publishes every document under dir, one at a time; each
// document is read, fully processed and written back before the next
// begins. Cancellation is honored between documents.
func (p *Publisher) PublishFolder(ctx context.Context, dir string) (Stats, error) {
	return p.publishAll(ctx, dir)
}

// PublishVault publishes the entire corpus.
func (p *Publisher) PublishVault(ctx context.Context) (Stats, error) {
	return p.publishAll(ctx, "")
}

func (p *Publisher) publishAll(ctx context.Context, scope string) (Stats, error) {
	docs, err := p.vault.ListDocs(scope)
	if err != nil {
		return Stats{}, err
	}

	var total Stats
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		stats, err := p.PublishDoc(ctx, doc)
		total.Add(stats)
		if err != nil {
			// A document that cannot be read or written counts as one
			// failure; the rest of the corpus still proceeds.
			p.log.Error(ctx, "document not published", "doc", doc, "error", err)
			total.Failed++
		}
	}
	return total, nil
}
