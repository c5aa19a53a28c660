// Package cli implements the notepress command-line front end: command
// dispatch, interactive configuration, and the wiring of the publish
// pipeline from loaded settings.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/notepress/notepress/internal/buildinfo"
	"github.com/notepress/notepress/internal/catalog"
	"github.com/notepress/notepress/internal/config"
	"github.com/notepress/notepress/internal/fetch"
	"github.com/notepress/notepress/internal/flagx"
	"github.com/notepress/notepress/internal/logging"
	"github.com/notepress/notepress/internal/publish"
	"github.com/notepress/notepress/internal/r2"
	"github.com/notepress/notepress/internal/vault"
)

// App holds the pieces shared by all commands. Construct it once per
// invocation from a loaded Config.
type App struct {
	cfg    *config.Config
	log    logging.Logger
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	return &App{
		cfg:    cfg,
		log:    logging.NewTextLogger(os.Stderr, cfg.Verbose),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

// CommandArgs strips the configuration flags from a raw argument list,
// leaving the command name and its positional arguments.
func CommandArgs(args []string) []string {
	return flagx.ExcludeArgs(args,
		[]string{"-c", "-config", "-v", "-e", "-b", "-d", "-t"},
		[]string{"-verbose"})
}

// Run dispatches one command and returns its error. Usage problems are
// reported as errors too so the entrypoint exits non-zero.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return nil
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "publish":
		if len(rest) != 1 {
			return fmt.Errorf("usage: publish <note.md>")
		}
		return a.Publish(ctx, rest[0])

	case "publish-folder":
		if len(rest) != 1 {
			return fmt.Errorf("usage: publish-folder <dir>")
		}
		return a.PublishFolder(ctx, rest[0])

	case "publish-vault":
		return a.PublishVault(ctx)

	case "paste":
		if len(rest) != 1 {
			return fmt.Errorf("usage: paste <file>")
		}
		return a.Paste(ctx, rest[0])

	case "configure":
		return a.Configure(ctx)

	case "status":
		return a.Status(ctx)

	case "version":
		buildinfo.PrintBuildData(a.out)
		return nil

	case "help":
		a.usage()
		return nil

	default:
		a.usage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, `Usage: notepress [flags] <command>

Commands:
  publish <note.md>     upload a note's images and rewrite its links
  publish-folder <dir>  publish every note under a folder
  publish-vault         publish the whole vault
  paste <file>          upload one file and print the tag to insert
  configure             interactively write a config file
  status                show target configuration and catalog size
  version               print build metadata

Flags:
  -c <file>   config file (JSON)
  -v <dir>    vault root directory
  -e <url>    object store endpoint
  -b <name>   bucket
  -d <host>   custom public domain
  -t <sec>    upload timeout in seconds
  -verbose    debug logging`)
}

// session bundles a ready publisher with its cleanup.
type session struct {
	pub   *publish.Publisher
	close func()
}

// newSession builds the publish pipeline from the current configuration.
// Fails fast when the upload target is incomplete.
func (a *App) newSession(ctx context.Context) (*session, error) {
	up, err := r2.New(a.cfg.UploadTarget(), a.cfg.UploadTimeout)
	if err != nil {
		return nil, err
	}

	v, err := vault.NewOSVault(a.cfg.VaultDir)
	if err != nil {
		return nil, err
	}

	var fetcher publish.Fetcher
	if a.cfg.DownloadExternal {
		fetcher = fetch.NewClient(a.cfg.UploadTimeout, a.cfg.MaxDownloadBytes)
	}

	var cat catalog.Catalog
	cleanup := func() {}
	if a.cfg.CatalogPath != "" {
		sc, err := catalog.Open(ctx, a.cfg.CatalogPath)
		if err != nil {
			// Publishing still works without dedup; just noisier.
			a.log.Warn(ctx, "upload catalog unavailable", "path", a.cfg.CatalogPath, "error", err)
		} else {
			cat = sc
			cleanup = func() { _ = sc.Close() }
		}
	}

	pub := publish.New(v, up, fetcher, cat, a.log, publish.Options{
		AttachmentDir:    a.cfg.AttachmentDir,
		UseNameAsAlt:     a.cfg.UseNameAsAlt,
		DownloadExternal: a.cfg.DownloadExternal,
	})
	return &session{pub: pub, close: cleanup}, nil
}

func (a *App) printStats(s publish.Stats) {
	fmt.Fprintf(a.out, "uploaded %d, reused %d, skipped %d, failed %d\n",
		s.Uploaded, s.Reused, s.Skipped, s.Failed)
}
