package cli

import (
	"context"
	"fmt"

	"github.com/notepress/notepress/internal/catalog"
)

// Status reports whether the upload target is complete and how many
// uploads the catalog remembers.
func (a *App) Status(ctx context.Context) error {
	target := a.cfg.UploadTarget()
	if target.Valid() {
		fmt.Fprintf(a.out, "target:  %s/%s\n", target.Endpoint, target.Bucket)
	} else {
		fmt.Fprintln(a.out, "target:  not configured (run: notepress configure)")
	}
	if target.CustomDomain != "" {
		fmt.Fprintf(a.out, "domain:  %s\n", target.CustomDomain)
	}
	fmt.Fprintf(a.out, "vault:   %s\n", a.cfg.VaultDir)

	if a.cfg.CatalogPath == "" {
		fmt.Fprintln(a.out, "catalog: disabled")
		return nil
	}

	cat, err := catalog.Open(ctx, a.cfg.CatalogPath)
	if err != nil {
		fmt.Fprintf(a.out, "catalog: unavailable (%v)\n", err)
		return nil
	}
	defer cat.Close()

	n, err := cat.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "catalog: %d uploads (%s)\n", n, a.cfg.CatalogPath)
	return nil
}
