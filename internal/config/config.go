// Package config handles runtime settings for the notepress CLI,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"time"

	"github.com/notepress/notepress/internal/r2"
)

// Config holds runtime settings for a publish session.
//
// Fields:
//   - AccessKeyID / SecretAccessKey / Endpoint / Bucket: the upload target;
//     all four are required before any upload runs.
//   - PathTemplate: storage-key template ({year} {mon} {day} {random} {filename}).
//   - CustomDomain: optional public domain replacing the endpoint host.
//   - VaultDir: root of the document corpus.
//   - AttachmentDir: folder convention for bare-name references.
//   - UseNameAsAlt: derive alt text from the file name on replacement.
//   - DownloadExternal: re-upload remote images too.
//   - MaxDownloadBytes: ceiling for the external-download path.
//   - UploadTimeout: network timeout per PUT.
//   - CatalogPath: SQLite upload-catalog location; empty disables the catalog.
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	Bucket          string
	PathTemplate    string
	CustomDomain    string

	VaultDir         string
	AttachmentDir    string
	UseNameAsAlt     bool
	DownloadExternal bool
	MaxDownloadBytes int64
	UploadTimeout    time.Duration
	CatalogPath      string
	Verbose          bool
}

// LoadDefaults populates c with sensible defaults. Credentials have no
// default: an unconfigured target must fail fast, not fall back.
func (c *Config) LoadDefaults() {
	c.PathTemplate = "/{year}/{mon}/{day}/{filename}"
	c.VaultDir = "."
	c.AttachmentDir = "attachments"
	c.MaxDownloadBytes = 50 << 20
	c.UploadTimeout = 30 * time.Second
	c.CatalogPath = "notepress.db"
}

// UploadTarget returns the immutable uploader configuration. Changing
// settings means loading a new Config and constructing a new uploader
// from it, never mutating one in flight.
func (c *Config) UploadTarget() r2.Config {
	return r2.Config{
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		Endpoint:        c.Endpoint,
		Bucket:          c.Bucket,
		PathTemplate:    c.PathTemplate,
		CustomDomain:    c.CustomDomain,
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
