package config

import (
	"encoding/json"
	"os"

	"github.com/notepress/notepress/internal/flagx"
	"github.com/notepress/notepress/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Durations
// may be given as strings like "30s" or as integer nanoseconds; pointer
// fields distinguish "absent" from zero so the overlay only touches keys
// the file actually sets.
type JSONConfig struct {
	AccessKeyID     *string `json:"access_key_id,omitempty"`
	SecretAccessKey *string `json:"secret_access_key,omitempty"`
	Endpoint        *string `json:"endpoint,omitempty"`
	Bucket          *string `json:"bucket,omitempty"`
	PathTemplate    *string `json:"path_template,omitempty"`
	CustomDomain    *string `json:"custom_domain,omitempty"`

	VaultDir         *string         `json:"vault_dir,omitempty"`
	AttachmentDir    *string         `json:"attachment_dir,omitempty"`
	UseNameAsAlt     *bool           `json:"use_name_as_alt,omitempty"`
	DownloadExternal *bool           `json:"download_external,omitempty"`
	MaxDownloadBytes *int64          `json:"max_download_bytes,omitempty"`
	UploadTimeout    *timex.Duration `json:"upload_timeout,omitempty"`
	CatalogPath      *string         `json:"catalog_path,omitempty"`
}

// parseJSON overlays cfg with values loaded from the JSON file named by
// the -c/-config flag. No flag, no overlay. Read or unmarshal errors
// panic; the entrypoint treats a broken config file as fatal.
func parseJSON(cfg *Config) {
	jsonConfigFile := flagx.JSONConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	apply(cfg, &jc)
}

func apply(cfg *Config, jc *JSONConfig) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&cfg.AccessKeyID, jc.AccessKeyID)
	setString(&cfg.SecretAccessKey, jc.SecretAccessKey)
	setString(&cfg.Endpoint, jc.Endpoint)
	setString(&cfg.Bucket, jc.Bucket)
	setString(&cfg.PathTemplate, jc.PathTemplate)
	setString(&cfg.CustomDomain, jc.CustomDomain)
	setString(&cfg.VaultDir, jc.VaultDir)
	setString(&cfg.AttachmentDir, jc.AttachmentDir)
	setString(&cfg.CatalogPath, jc.CatalogPath)

	if jc.UseNameAsAlt != nil {
		cfg.UseNameAsAlt = *jc.UseNameAsAlt
	}
	if jc.DownloadExternal != nil {
		cfg.DownloadExternal = *jc.DownloadExternal
	}
	if jc.MaxDownloadBytes != nil {
		cfg.MaxDownloadBytes = *jc.MaxDownloadBytes
	}
	if jc.UploadTimeout != nil {
		cfg.UploadTimeout = jc.UploadTimeout.Duration
	}
}
