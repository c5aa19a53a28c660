package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/notepress/notepress/internal/config"
	"github.com/notepress/notepress/internal/flagx"
)

// Configure interactively collects the upload target and vault settings
// and writes them as a JSON config file. The secret key is read without
// echo. The file goes to the -c/-config path when given, otherwise to
// notepress.json in the working directory.
func (a *App) Configure(ctx context.Context) error {
	endpoint, err := getSimpleText(a.reader,
		"Object store endpoint (e.g. https://<account>.r2.cloudflarestorage.com)", a.out)
	if err != nil {
		return err
	}

	bucket, err := getSimpleText(a.reader, "Bucket name", a.out)
	if err != nil {
		return err
	}

	accessKey, err := getSimpleText(a.reader, "Access key ID", a.out)
	if err != nil {
		return err
	}

	secret, err := getPassword("Secret access key", a.out)
	if err != nil {
		return err
	}

	domain, err := getSimpleText(a.reader, "Custom public domain (empty to skip)", a.out)
	if err != nil {
		return err
	}

	vaultDir, err := getSimpleText(a.reader, "Vault root directory (empty for current)", a.out)
	if err != nil {
		return err
	}
	if vaultDir == "" {
		vaultDir = "."
	}

	downloadAnswer, err := getSimpleText(a.reader, "Re-upload external images too? [y/N]", a.out)
	if err != nil {
		return err
	}
	download := strings.EqualFold(downloadAnswer, "y") || strings.EqualFold(downloadAnswer, "yes")

	jc := config.JSONConfig{
		AccessKeyID:      &accessKey,
		SecretAccessKey:  &secret,
		Endpoint:         &endpoint,
		Bucket:           &bucket,
		VaultDir:         &vaultDir,
		DownloadExternal: &download,
	}
	if domain != "" {
		jc.CustomDomain = &domain
	}

	data, err := json.MarshalIndent(&jc, "", "  ")
	if err != nil {
		return err
	}

	path := flagx.JSONConfigFlags()
	if path == "" {
		path = "notepress.json"
	}
	// Holds the secret key, keep it owner-only.
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Fprintf(a.out, "wrote %s\n", path)
	return nil
}
