// Package markdown models the two media-reference syntaxes this tool
// consumes, ![alt](target) and ![[target]], and the tags it produces.
// It is deliberately not a markdown parser.
package markdown

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

var (
	bracketRe = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]*)\)`)
	embedRe   = regexp.MustCompile(`!\[\[([^\]]+)\]\]`)
)

// Ref is one in-document media mention. Created fresh on every extraction
// pass and never mutated.
type Ref struct {
	// Original is the matched text verbatim; replacement is keyed on it.
	Original string
	Alt      string
	// Target is the referenced path or URL exactly as written.
	Target string
	Start  int
	End    int
	// Local is false for http://, https:// and data: targets.
	Local bool
	// Video reports the extension test on Target.
	Video bool
}

// ExtractRefs scans text and returns all bracket-link references in
// document order followed by all embed-link references in document order.
// Re-running on the same text yields an identical list.
func ExtractRefs(text string) []Ref {
	var refs []Ref
	for _, m := range bracketRe.FindAllStringSubmatchIndex(text, -1) {
		alt := text[m[2]:m[3]]
		target := text[m[4]:m[5]]
		refs = append(refs, Ref{
			Original: text[m[0]:m[1]],
			Alt:      alt,
			Target:   target,
			Start:    m[0],
			End:      m[1],
			Local:    IsLocal(target),
			Video:    IsVideo(target),
		})
	}
	for _, m := range embedRe.FindAllStringSubmatchIndex(text, -1) {
		target := text[m[2]:m[3]]
		refs = append(refs, Ref{
			Original: text[m[0]:m[1]],
			Target:   target,
			Start:    m[0],
			End:      m[1],
			Local:    IsLocal(target),
			Video:    IsVideo(target),
		})
	}
	return refs
}

// IsLocal reports whether target points inside the corpus rather than at
// a remote resource.
func IsLocal(target string) bool {
	return !strings.HasPrefix(target, "http://") &&
		!strings.HasPrefix(target, "https://") &&
		!strings.HasPrefix(target, "data:")
}

var videoExts = []string{
	"mp4", "mov", "m4v", "webm", "ogg", "ogv", "mkv",
	"avi", "mpeg", "mpg", "mpe", "m2v", "3gp", "3g2",
}

// IsVideo reports whether target names a video asset by extension.
// The target is percent-decoded first (raw form on decode failure) and a
// query string or fragment after the extension is tolerated.
func IsVideo(target string) bool {
	if target == "" {
		return false
	}
	decoded, err := url.QueryUnescape(target)
	if err != nil {
		decoded = target
	}
	decoded = strings.ToLower(decoded)

	for _, ext := range videoExts {
		dot := "." + ext
		if strings.HasSuffix(decoded, dot) ||
			strings.Contains(decoded, dot+"?") ||
			strings.Contains(decoded, dot+"#") {
			return true
		}
	}
	return false
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".webp": true, ".bmp": true, ".svg": true, ".avif": true,
}

// AltFromName derives display alt text from a reference target: base name,
// known image extension stripped, '-' and '_' turned into spaces.
func AltFromName(target string) string {
	decoded, err := url.QueryUnescape(target)
	if err != nil {
		decoded = target
	}
	name := path.Base(decoded)
	if ext := strings.ToLower(path.Ext(name)); imageExts[ext] {
		name = name[:len(name)-len(ext)]
	}
	name = strings.ReplaceAll(name, "-", " ")
	return strings.ReplaceAll(name, "_", " ")
}

// ImageTag renders the output form for an image reference.
func ImageTag(alt, url string) string {
	return "![" + alt + "](" + url + ")"
}

// VideoTag renders the embedded-player output form for a video reference.
func VideoTag(url string) string {
	return `<video controls src="` + url + `"></video>`
}

// Replacement is one (originalText, newTag) pair of a replacement plan.
type Replacement struct {
	Original string
	Tag      string
}

// Apply substitutes each replacement's original text with its tag. With
// all set, every occurrence is replaced (whole-document publish); otherwise
// only the first (a freshly-uploaded paste placeholder). Two references
// sharing identical original text are intentionally both rewritten.
func Apply(text string, plan []Replacement, all bool) string {
	for _, r := range plan {
		if all {
			text = strings.ReplaceAll(text, r.Original, r.Tag)
		} else {
			text = strings.Replace(text, r.Original, r.Tag, 1)
		}
	}
	return text
}
