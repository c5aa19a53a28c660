// Package naming derives storage keys for uploaded objects from a
// user-configured path template and the original file name.
//
// Recognized template tokens: {year} {mon} {day} {random} {filename}.
// Anything else in the template is literal text.
package naming

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RandomSuffixLength is the length of the {random} token expansion.
const RandomSuffixLength = 20

// nowFunc is a test seam for the clock.
var nowFunc = time.Now

// GenerateKey expands template using the current local time and a unique
// file name derived from originalName. An empty or whitespace-only template
// yields just the unique file name.
//
// Every occurrence of each token is replaced, so a template repeating
// {year} does not leave literals behind.
func GenerateKey(template, originalName string) string {
	if strings.TrimSpace(template) == "" {
		return UniqueName(originalName)
	}

	now := nowFunc()
	r := strings.NewReplacer(
		"{year}", fmt.Sprintf("%04d", now.Year()),
		"{mon}", fmt.Sprintf("%02d", int(now.Month())),
		"{day}", fmt.Sprintf("%02d", now.Day()),
		"{random}", RandomString(RandomSuffixLength),
		"{filename}", UniqueName(originalName),
	)
	return r.Replace(template)
}

// UniqueName builds a collision-resistant file name from originalName by
// appending a millisecond-resolution timestamp. Generic names (anything
// containing "image", or the literal "blob" a browser assigns to clipboard
// data) become "Pasted image <ts>.<ext>".
func UniqueName(originalName string) string {
	now := nowFunc()
	ts := now.Format("20060102150405") + fmt.Sprintf("%03d", now.Nanosecond()/1e6)

	ext := "png"
	base := originalName
	if i := strings.LastIndex(originalName, "."); i >= 0 {
		if i+1 < len(originalName) {
			ext = originalName[i+1:]
		}
		base = originalName[:i]
	}

	lower := strings.ToLower(originalName)
	if strings.Contains(lower, "image") || originalName == "blob" {
		return fmt.Sprintf("Pasted image %s.%s", ts, ext)
	}
	return fmt.Sprintf("%s %s.%s", base, ts, ext)
}

// RandomString returns n characters drawn uniformly from the 62-character
// alphanumeric alphabet. Randomness comes from crypto/rand with rejection
// sampling to avoid modulo bias.
func RandomString(n int) string {
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			panic(fmt.Sprintf("naming: crypto/rand failed: %v", err))
		}
		for _, b := range buf {
			// 248 is the largest multiple of 62 below 256.
			if b >= 248 {
				continue
			}
			out = append(out, alphanumeric[int(b)%len(alphanumeric)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out)
}

// StripLeadingSlashes removes every leading '/' from key. The uploader
// always joins endpoint, bucket and key itself, so a finalized key must
// not begin with a separator.
func StripLeadingSlashes(key string) string {
	return strings.TrimLeft(key, "/")
}
