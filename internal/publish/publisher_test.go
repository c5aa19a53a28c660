package publish

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notepress/notepress/internal/catalog"
	"github.com/notepress/notepress/internal/vault"
)

// fakeUploader returns a stable URL and key per original name and
// records calls.
type fakeUploader struct {
	baseURL string
	calls   []string
	err     error
}

func (f *fakeUploader) Upload(_ context.Context, _ []byte, name, _ string) (string, string, error) {
	f.calls = append(f.calls, name)
	if f.err != nil {
		return "", "", f.err
	}
	return f.baseURL + "/" + name, "img/" + name, nil
}

type fakeFetcher struct {
	data []byte
	mime string
	err  error
}

func (f *fakeFetcher) Fetch(context.Context, string) ([]byte, string, error) {
	return f.data, f.mime, f.err
}

func newTestPublisher(v vault.Vault, up Uploader, opts Options) *Publisher {
	return New(v, up, nil, nil, nil, opts)
}

func TestPublishText_LocalImage(t *testing.T) {
	t.Parallel()

	v := vault.NewMemoryVault()
	v.Put("img/pic.png", []byte("png-bytes"))
	up := &fakeUploader{baseURL: "https://cdn.x/2024/01"}
	p := newTestPublisher(v, up, Options{AttachmentDir: "attachments"})

	text := "![a](./img/pic.png)\nbody"
	out, stats := p.PublishText(context.Background(), text, "note.md")

	assert.Equal(t, "![](https://cdn.x/2024/01/pic.png)\nbody", out)
	assert.Equal(t, Stats{Uploaded: 1}, stats)
	assert.Equal(t, []string{"pic.png"}, up.calls)
}

func TestPublishText_MissingFile(t *testing.T) {
	t.Parallel()

	v := vault.NewMemoryVault()
	up := &fakeUploader{baseURL: "https://cdn.x"}
	p := newTestPublisher(v, up, Options{AttachmentDir: "attachments"})

	text := "![a](./img/pic.png)\nbody"
	out, stats := p.PublishText(context.Background(), text, "note.md")

	assert.Equal(t, text, out, "text must be unchanged")
	assert.Equal(t, Stats{Failed: 1}, stats)
	assert.Empty(t, up.calls)
}

func TestPublishText_NoReferences(t *testing.T) {
	t.Parallel()

	p := newTestPublisher(vault.NewMemoryVault(), &fakeUploader{}, Options{})
	out, stats := p.PublishText(context.Background(), "just text", "note.md")
	assert.Equal(t, "just text", out)
	assert.Equal(t, Stats{}, stats)
}

func TestPublishText_RemoteSkippedWhenDownloadOff(t *testing.T) {
	t.Parallel()

	up := &fakeUploader{baseURL: "https://cdn.x"}
	p := newTestPublisher(vault.NewMemoryVault(), up, Options{})

	text := "![x](https://other.site/pic.png)"
	out, stats := p.PublishText(context.Background(), text, "note.md")

	assert.Equal(t, text, out)
	assert.Equal(t, Stats{Skipped: 1}, stats)
	assert.Empty(t, up.calls)
}

func TestPublishText_RemoteDownloaded(t *testing.T) {
	t.Parallel()

	up := &fakeUploader{baseURL: "https://cdn.x"}
	fetch := &fakeFetcher{data: []byte("remote-bytes"), mime: "image/png"}
	p := New(vault.NewMemoryVault(), up, fetch, nil, nil, Options{DownloadExternal: true})

	out, stats := p.PublishText(context.Background(), "![x](https://other.site/pic.png?v=2)", "note.md")

	assert.Equal(t, "![](https://cdn.x/pic.png)", out)
	assert.Equal(t, Stats{Uploaded: 1}, stats)
}

func TestPublishText_IdenticalEmbedsOneUpload(t *testing.T) {
	t.Parallel()

	v := vault.NewMemoryVault()
	v.Put("attachments/pic.png", []byte("png-bytes"))
	up := &fakeUploader{baseURL: "https://cdn.x"}
	p := newTestPublisher(v, up, Options{AttachmentDir: "attachments"})

	text := "![[pic.png]] then ![[pic.png]]"
	out, stats := p.PublishText(context.Background(), text, "note.md")

	assert.Equal(t, "![](https://cdn.x/pic.png) then ![](https://cdn.x/pic.png)", out)
	assert.Equal(t, 1, stats.Uploaded, "one upload serves both embeds")
	require.Len(t, up.calls, 1)
}

func TestPublishText_PerReferenceFailureDoesNotAbort(t *testing.T) {
	t.Parallel()

	v := vault.NewMemoryVault()
	v.Put("attachments/ok.png", []byte("ok"))
	up := &fakeUploader{baseURL: "https://cdn.x"}
	p := newTestPublisher(v, up, Options{AttachmentDir: "attachments"})

	text := "![[missing.png]]\n![[ok.png]]"
	out, stats := p.PublishText(context.Background(), text, "note.md")

	assert.Contains(t, out, "![[missing.png]]", "failed reference stays as written")
	assert.Contains(t, out, "![](https://cdn.x/ok.png)")
	assert.Equal(t, Stats{Uploaded: 1, Failed: 1}, stats)
}

func TestPublishText_VideoRendersPlayerTag(t *testing.T) {
	t.Parallel()

	v := vault.NewMemoryVault()
	v.Put("attachments/clip.mp4", []byte("vid-bytes"))
	up := &fakeUploader{baseURL: "https://cdn.x"}
	p := newTestPublisher(v, up, Options{AttachmentDir: "attachments"})

	out, stats := p.PublishText(context.Background(), "![[clip.mp4]]", "note.md")

	assert.Equal(t, `<video controls src="https://cdn.x/clip.mp4"></video>`, out)
	assert.Equal(t, Stats{Uploaded: 1}, stats)
}

func TestPublishText_NameAsAlt(t *testing.T) {
	t.Parallel()

	v := vault.NewMemoryVault()
	v.Put("attachments/my-holiday_photo.png", []byte("x"))
	up := &fakeUploader{baseURL: "https://cdn.x"}
	p := newTestPublisher(v, up, Options{AttachmentDir: "attachments", UseNameAsAlt: true})

	out, _ := p.PublishText(context.Background(), "![[my-holiday_photo.png]]", "note.md")
	assert.Equal(t, "![my holiday photo](https://cdn.x/my-holiday_photo.png)", out)
}

func TestPublishText_FallbackToCorpusScan(t *testing.T) {
	t.Parallel()

	v := vault.NewMemoryVault()
	// Not in the attachment folder, only somewhere deep in the corpus.
	v.Put("archive/2023/shot.png", []byte("x"))
	up := &fakeUploader{baseURL: "https://cdn.x"}
	p := newTestPublisher(v, up, Options{AttachmentDir: "attachments"})

	out, stats := p.PublishText(context.Background(), "![[shot.png]]", "note.md")

	assert.Equal(t, "![](https://cdn.x/shot.png)", out)
	assert.Equal(t, Stats{Uploaded: 1}, stats)
}

func TestPublishText_CatalogReuse(t *testing.T) {
	t.Parallel()

	v := vault.NewMemoryVault()
	v.Put("attachments/pic.png", []byte("known-bytes"))
	cat := catalog.NewMemoryCatalog()
	require.NoError(t, cat.RecordAll(context.Background(), []*catalog.Record{{
		ContentHash: catalog.HashBytes([]byte("known-bytes")),
		URL:         "https://cdn.x/earlier/pic.png",
		MimeType:    "image/png",
	}}))

	up := &fakeUploader{baseURL: "https://cdn.x"}
	p := New(v, up, nil, cat, nil, Options{AttachmentDir: "attachments"})

	out, stats := p.PublishText(context.Background(), "![[pic.png]]", "note.md")

	assert.Equal(t, "![](https://cdn.x/earlier/pic.png)", out)
	assert.Equal(t, Stats{Reused: 1}, stats)
	assert.Empty(t, up.calls, "cataloged bytes must not be re-uploaded")
}

func TestPublishText_CatalogRecordsUploads(t *testing.T) {
	t.Parallel()

	v := vault.NewMemoryVault()
	v.Put("attachments/pic.png", []byte("fresh-bytes"))
	cat := catalog.NewMemoryCatalog()
	up := &fakeUploader{baseURL: "https://cdn.x"}
	p := New(v, up, nil, cat, nil, Options{AttachmentDir: "attachments"})

	_, stats := p.PublishText(context.Background(), "![[pic.png]]", "note.md")
	require.Equal(t, Stats{Uploaded: 1}, stats)

	rec, ok, err := cat.Lookup(context.Background(), catalog.HashBytes([]byte("fresh-bytes")))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "https://cdn.x/pic.png", rec.URL)
	assert.Equal(t, "img/pic.png", rec.StorageKey)
}

func TestPublishDoc_WritesBackOnlyWhenChanged(t *testing.T) {
	t.Parallel()

	v := vault.NewMemoryVault()
	v.Put("note.md", []byte("![[pic.png]]"))
	v.Put("attachments/pic.png", []byte("x"))
	up := &fakeUploader{baseURL: "https://cdn.x"}
	p := newTestPublisher(v, up, Options{AttachmentDir: "attachments"})

	stats, err := p.PublishDoc(context.Background(), "note.md")
	require.NoError(t, err)
	assert.Equal(t, Stats{Uploaded: 1}, stats)

	text, err := v.ReadDoc("note.md")
	require.NoError(t, err)
	assert.Equal(t, "![](https://cdn.x/pic.png)", text)
}

func TestPublishFolder_IteratesDocuments(t *testing.T) {
	t.Parallel()

	v := vault.NewMemoryVault()
	v.Put("blog/a.md", []byte("![[one.png]]"))
	v.Put("blog/b.md", []byte("![[two.png]]"))
	v.Put("other/c.md", []byte("![[one.png]]"))
	v.Put("attachments/one.png", []byte("1"))
	v.Put("attachments/two.png", []byte("2"))
	up := &fakeUploader{baseURL: "https://cdn.x"}
	p := newTestPublisher(v, up, Options{AttachmentDir: "attachments"})

	stats, err := p.PublishFolder(context.Background(), "blog")
	require.NoError(t, err)
	assert.Equal(t, Stats{Uploaded: 2}, stats)

	c, err := v.ReadDoc("other/c.md")
	require.NoError(t, err)
	assert.Equal(t, "![[one.png]]", c, "documents outside the folder stay untouched")
}

func TestPublishVault_CancellationBetweenDocuments(t *testing.T) {
	t.Parallel()

	v := vault.NewMemoryVault()
	v.Put("a.md", []byte("text"))
	p := newTestPublisher(v, &fakeUploader{}, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.PublishVault(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPublishVault_UploadFailureCounted(t *testing.T) {
	t.Parallel()

	v := vault.NewMemoryVault()
	v.Put("good.md", []byte("no refs"))
	up := &fakeUploader{baseURL: "https://cdn.x", err: errors.New("store down")}
	v.Put("bad.md", []byte("![[pic.png]]"))
	v.Put("attachments/pic.png", []byte("x"))
	p := newTestPublisher(v, up, Options{AttachmentDir: "attachments"})

	stats, err := p.PublishVault(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Failed: 1}, stats)
}

func TestStats_Add(t *testing.T) {
	t.Parallel()

	s := Stats{Uploaded: 1, Failed: 2}
	s.Add(Stats{Uploaded: 3, Reused: 1, Skipped: 4})
	assert.Equal(t, Stats{Uploaded: 4, Reused: 1, Failed: 2, Skipped: 4}, s)
}
