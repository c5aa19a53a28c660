// Package publish drives the pipeline that turns in-document media
// references into object-store URLs: extract -> resolve -> read ->
// upload -> rewrite. It operates on one document at a time; folder and
// vault operations iterate the same unit sequentially.
package publish

import (
	"context"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/notepress/notepress/internal/catalog"
	"github.com/notepress/notepress/internal/logging"
	"github.com/notepress/notepress/internal/markdown"
	"github.com/notepress/notepress/internal/vault"
)

// Uploader stores bytes remotely and returns the public URL plus the
// storage key the object landed under.
type Uploader interface {
	Upload(ctx context.Context, data []byte, originalName, mimeType string) (url, key string, err error)
}

// Fetcher downloads an external image for re-upload.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// Options tune replacement behavior.
type Options struct {
	// AttachmentDir is the corpus convention for bare-name references.
	AttachmentDir string
	// UseNameAsAlt derives alt text from the file name; otherwise alt
	// text on rewritten references is empty.
	UseNameAsAlt bool
	// DownloadExternal re-uploads remote references too. Requires a
	// Fetcher; without one remote references are skipped and counted.
	DownloadExternal bool
}

// Stats summarizes one publish pass.
type Stats struct {
	// Uploaded counts uploads performed (one per distinct asset).
	Uploaded int
	// Reused counts references satisfied from the upload catalog or
	// from an earlier upload in the same pass.
	Reused int
	// Failed counts references dropped from the replacement plan.
	Failed int
	// Skipped counts remote references left alone because external
	// download is off.
	Skipped int
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Uploaded += other.Uploaded
	s.Reused += other.Reused
	s.Failed += other.Failed
	s.Skipped += other.Skipped
}

// Publisher rewrites documents in a vault. Construct one per session;
// a configuration change means a new Publisher over a new Uploader.
type Publisher struct {
	vault vault.Vault
	up    Uploader
	fetch Fetcher         // nil: external download unavailable
	cat   catalog.Catalog // nil: no re-upload suppression
	log   logging.Logger
	opts  Options
}

func New(v vault.Vault, up Uploader, fetch Fetcher, cat catalog.Catalog, log logging.Logger, opts Options) *Publisher {
	if log == nil {
		log = nopLogger{}
	}
	return &Publisher{vault: v, up: up, fetch: fetch, cat: cat, log: log, opts: opts}
}

// uploaded is the per-pass memo of processed targets.
type uploaded struct {
	url  string
	mime string
}

// PublishText rewrites every publishable reference in text and returns
// the new text plus counts. Per-reference failures are logged, counted
// and excluded from the replacement plan; the document is still
// rewritten with whatever succeeded. The call never fails as a whole.
func (p *Publisher) PublishText(ctx context.Context, text, docPath string) (string, Stats) {
	var stats Stats

	refs := markdown.ExtractRefs(text)
	if len(refs) == 0 {
		return text, stats
	}

	batchID := uuid.NewString()
	byTarget := map[string]uploaded{}
	var plan []markdown.Replacement
	var recs []*catalog.Record

	for _, ref := range refs {
		if done, ok := byTarget[ref.Target]; ok {
			plan = append(plan, p.replacement(ref, done))
			continue
		}

		if !ref.Local {
			if !p.opts.DownloadExternal || p.fetch == nil {
				stats.Skipped++
				continue
			}
			res, rec, outcome, err := p.processRemote(ctx, ref, batchID)
			stats.Add(outcome)
			if err != nil {
				continue
			}
			byTarget[ref.Target] = res
			if rec != nil {
				recs = append(recs, rec)
			}
			plan = append(plan, p.replacement(ref, res))
			continue
		}

		res, rec, outcome, err := p.processLocal(ctx, ref, docPath, batchID)
		stats.Add(outcome)
		if err != nil {
			continue
		}
		byTarget[ref.Target] = res
		if rec != nil {
			recs = append(recs, rec)
		}
		plan = append(plan, p.replacement(ref, res))
	}

	if p.cat != nil && len(recs) > 0 {
		if err := p.cat.RecordAll(ctx, recs); err != nil {
			p.log.Warn(ctx, "catalog not updated", "doc", docPath, "error", err)
		}
	}

	if len(plan) == 0 {
		return text, stats
	}
	return markdown.Apply(text, plan, true), stats
}

// processLocal resolves, reads and uploads one local reference.
func (p *Publisher) processLocal(ctx context.Context, ref markdown.Ref, docPath, batchID string) (uploaded, *catalog.Record, Stats, error) {
	data, name, err := p.readLocal(ref.Target, docPath)
	if err != nil {
		p.log.Error(ctx, "reference not published", "doc", docPath, "target", ref.Target, "error", err)
		return uploaded{}, nil, Stats{Failed: 1}, err
	}
	return p.store(ctx, data, name, mimeFor(name, data), docPath, ref.Target, batchID)
}

// processRemote downloads an external image and re-uploads it.
func (p *Publisher) processRemote(ctx context.Context, ref markdown.Ref, batchID string) (uploaded, *catalog.Record, Stats, error) {
	data, declaredMime, err := p.fetch.Fetch(ctx, ref.Target)
	if err != nil {
		p.log.Error(ctx, "external image not published", "url", ref.Target, "error", err)
		return uploaded{}, nil, Stats{Failed: 1}, err
	}
	name := path.Base(ref.Target)
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if name == "" || name == "." || name == "/" {
		name = "image"
	}
	if declaredMime == "" {
		declaredMime = mimeFor(name, data)
	}
	return p.store(ctx, data, name, declaredMime, "", ref.Target, batchID)
}

// store uploads bytes unless the catalog already has them.
func (p *Publisher) store(ctx context.Context, data []byte, name, mimeType, docPath, target, batchID string) (uploaded, *catalog.Record, Stats, error) {
	hash := catalog.HashBytes(data)

	if p.cat != nil {
		if rec, ok, err := p.cat.Lookup(ctx, hash); err != nil {
			p.log.Warn(ctx, "catalog lookup failed", "target", target, "error", err)
		} else if ok {
			p.log.Debug(ctx, "reusing cataloged upload", "target", target, "url", rec.URL)
			return uploaded{url: rec.URL, mime: rec.MimeType}, nil, Stats{Reused: 1}, nil
		}
	}

	url, key, err := p.up.Upload(ctx, data, name, mimeType)
	if err != nil {
		p.log.Error(ctx, "upload failed", "doc", docPath, "target", target, "error", err)
		return uploaded{}, nil, Stats{Failed: 1}, err
	}
	p.log.Info(ctx, "uploaded", "target", target, "url", url)

	rec := &catalog.Record{
		ContentHash: hash,
		StorageKey:  key,
		URL:         url,
		Name:        name,
		MimeType:    mimeType,
		Size:        int64(len(data)),
		BatchID:     batchID,
	}
	return uploaded{url: url, mime: mimeType}, rec, Stats{Uploaded: 1}, nil
}

// readLocal tries the resolver's path, then the host link index, then a
// full-corpus scan by base name.
func (p *Publisher) readLocal(target, docPath string) ([]byte, string, error) {
	resolved, name, err := vault.Resolve(target, docPath, p.opts.AttachmentDir)
	if err == nil {
		if data, readErr := p.vault.ReadFile(resolved); readErr == nil {
			return data, name, nil
		}
	}

	if linked, ok := p.vault.ResolveLink(target, docPath); ok {
		if data, readErr := p.vault.ReadFile(linked); readErr == nil {
			return data, path.Base(linked), nil
		}
	}

	if found, ok := p.vault.FindByName(name); ok {
		if data, readErr := p.vault.ReadFile(found); readErr == nil {
			return data, name, nil
		}
	}

	if err == nil {
		err = wrapNotFound(target)
	}
	return nil, "", err
}

// replacement builds the output tag for a processed reference. Any video
// signal wins: the asset's mime type, the original target's extension,
// or the resulting URL's extension.
func (p *Publisher) replacement(ref markdown.Ref, res uploaded) markdown.Replacement {
	video := ref.Video || strings.HasPrefix(res.mime, "video/") || markdown.IsVideo(res.url)
	if video {
		return markdown.Replacement{Original: ref.Original, Tag: markdown.VideoTag(res.url)}
	}

	alt := ""
	if p.opts.UseNameAsAlt {
		alt = markdown.AltFromName(ref.Target)
	}
	return markdown.Replacement{Original: ref.Original, Tag: markdown.ImageTag(alt, res.url)}
}

// mimeFor resolves a content type from the file extension, sniffing the
// bytes when the extension is unknown.
func mimeFor(name string, data []byte) string {
	if mt := mime.TypeByExtension(path.Ext(name)); mt != "" {
		if i := strings.Index(mt, ";"); i >= 0 {
			mt = strings.TrimSpace(mt[:i])
		}
		return mt
	}
	return http.DetectContentType(data)
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (nopLogger) With(...any) logging.Logger            { return nopLogger{} }
