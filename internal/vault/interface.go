package vault

// Vault is the external-collaborator surface the publish pipeline needs
// from the host corpus. Paths are corpus-relative, using '/' separators.
type Vault interface {
	// ReadFile returns the raw bytes of an asset.
	ReadFile(path string) ([]byte, error)

	// WriteDoc replaces a document's text.
	WriteDoc(path, text string) error

	// ReadDoc returns a document's text.
	ReadDoc(path string) (string, error)

	// ListDocs returns all markdown documents under scope, sorted.
	// An empty scope means the whole corpus.
	ListDocs(scope string) ([]string, error)

	// ResolveLink consults the host's link index: the path an in-document
	// target resolves to when read from fromDoc, or ok=false.
	ResolveLink(raw, fromDoc string) (string, bool)

	// FindByName scans the corpus for the first asset whose base name
	// matches, or ok=false. Last-resort fallback after ResolveLink.
	FindByName(name string) (string, bool)

	// Exists reports whether an asset is present at path.
	Exists(path string) bool
}
