package config

import (
	"flag"
	"os"
	"time"

	"github.com/notepress/notepress/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-v string    vault (corpus) root directory
//	-e string    object store endpoint URL
//	-b string    bucket name
//	-d string    custom public domain
//	-t int       upload timeout in seconds
//	-verbose     debug logging
//
// The function filters os.Args to only the flags it knows about, using
// flagx.FilterArgs, so command arguments pass through untouched.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-v", "-e", "-b", "-d", "-t", "-verbose"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.VaultDir, "v", cfg.VaultDir, "vault root directory")
	fs.StringVar(&cfg.Endpoint, "e", cfg.Endpoint, "object store endpoint URL")
	fs.StringVar(&cfg.Bucket, "b", cfg.Bucket, "bucket name")
	fs.StringVar(&cfg.CustomDomain, "d", cfg.CustomDomain, "custom public domain")
	uploadTimeout := fs.Int("t", int(cfg.UploadTimeout.Seconds()), "upload timeout (in seconds)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "debug logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.UploadTimeout = time.Duration(*uploadTimeout) * time.Second
}
