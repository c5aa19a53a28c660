// Package r2 uploads objects to an S3-compatible store (Cloudflare R2)
// with a signed PUT and maps the destination into a public-facing URL.
package r2

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/notepress/notepress/internal/common"
	"github.com/notepress/notepress/internal/naming"
	"github.com/notepress/notepress/internal/sigv4"
)

// DefaultTimeout bounds the PUT request; uploads are not retried.
const DefaultTimeout = 30 * time.Second

// Config is the immutable upload target. Access key, secret key, endpoint
// and bucket are all required; the remaining fields are optional.
//
// A configuration change must build a new Uploader rather than mutate an
// existing one, so no upload is ever in flight against half-updated
// credentials.
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	Bucket          string
	PathTemplate    string
	CustomDomain    string
}

// Valid reports whether the four required fields are present.
func (c Config) Valid() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != "" &&
		c.Endpoint != "" && c.Bucket != ""
}

type Uploader struct {
	cfg  Config
	host string
	hc   *http.Client
}

// New builds an Uploader for the given target. It fails fast with
// common.ErrUnconfigured when required fields are missing and with a
// wrapped error when the endpoint does not parse.
func New(cfg Config, timeout time.Duration) (*Uploader, error) {
	if !cfg.Valid() {
		return nil, common.ErrUnconfigured
	}
	cfg.Endpoint = strings.TrimSuffix(cfg.Endpoint, "/")

	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("endpoint %q: scheme must be http or https", cfg.Endpoint)
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Uploader{
		cfg:  cfg,
		host: u.Host,
		hc:   &http.Client{Timeout: timeout},
	}, nil
}

// Upload stores data under a key derived from the configured path template
// and originalName, and returns the public URL plus the generated key.
// The exact byte slice passed in is both signed and transmitted; any
// transport failure or non-2xx status is an error, never a success.
func (u *Uploader) Upload(ctx context.Context, data []byte, originalName, mimeType string) (string, string, error) {
	key := naming.StripLeadingSlashes(naming.GenerateKey(u.cfg.PathTemplate, originalName))

	// Generated keys routinely contain spaces. The store verifies the
	// signature against the path as transmitted, so the key is escaped
	// once here and that form is used for the request URL, the signed
	// URI and the public URL alike.
	escaped := escapeKey(u.cfg.Bucket + "/" + key)
	dest := u.cfg.Endpoint + "/" + escaped

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, dest, bytes.NewReader(data))
	if err != nil {
		return "", "", fmt.Errorf("build request: %w", err)
	}
	req.ContentLength = int64(len(data))

	signed := sigv4.Sign(http.MethodPut, u.host, escaped, mimeType, data, sigv4.Credentials{
		AccessKeyID:     u.cfg.AccessKeyID,
		SecretAccessKey: u.cfg.SecretAccessKey,
	})
	for name, vals := range signed {
		req.Header[name] = vals
	}

	resp, err := u.hc.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: put %s: %v", common.ErrNetwork, dest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 32*1024))
		return "", "", &common.HTTPStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	publicURL, err := u.publicURL(dest)
	if err != nil {
		return "", "", err
	}
	return publicURL, key, nil
}

// escapeKey percent-encodes each segment of key, keeping the '/'
// separators untouched.
func escapeKey(key string) string {
	u := url.URL{Path: "/" + key}
	return strings.TrimPrefix(u.EscapedPath(), "/")
}

// publicURL maps the destination URL onto the configured custom domain,
// or returns it unchanged when no custom domain is set.
func (u *Uploader) publicURL(dest string) (string, error) {
	if u.cfg.CustomDomain == "" {
		return dest, nil
	}
	marker := "/" + u.cfg.Bucket + "/"
	i := strings.Index(dest, marker)
	if i < 0 {
		return "", fmt.Errorf("%w: no %q segment in %q", common.ErrResponseShape, marker, dest)
	}
	return CustomizeDomainName(dest[i+len(marker):], u.cfg.CustomDomain), nil
}

// CustomizeDomainName replaces the scheme+host portion of rawURL with
// https://<domain>. Users habitually paste the domain with an https://
// prefix; it is stripped first. Input without a recognizable scheme is
// treated as a bare path.
func CustomizeDomainName(rawURL, domain string) string {
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimSuffix(domain, "/")

	if i := strings.Index(rawURL, "://"); i >= 0 {
		rest := rawURL[i+3:]
		if j := strings.Index(rest, "/"); j >= 0 {
			return "https://" + domain + rest[j:]
		}
		return "https://" + domain
	}
	return "https://" + domain + "/" + rawURL
}
