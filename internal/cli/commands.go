package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/notepress/notepress/internal/publish"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Publish uploads the referenced images of one note and rewrites it.
func (a *App) Publish(ctx context.Context, docPath string) error {
	s, err := a.newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	stats, err := s.pub.PublishDoc(ctx, docPath)
	if err != nil {
		return err
	}
	a.printStats(stats)
	return nil
}

// PublishFolder publishes every note under dir, relative to the vault root.
func (a *App) PublishFolder(ctx context.Context, dir string) error {
	s, err := a.newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	stats, err := s.pub.PublishFolder(ctx, dir)
	if err != nil {
		return err
	}
	a.printStats(stats)
	return nil
}

// PublishVault publishes the entire corpus.
func (a *App) PublishVault(ctx context.Context) error {
	s, err := a.newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	stats, err := s.pub.PublishVault(ctx)
	if err != nil {
		return err
	}
	a.printStats(stats)
	return nil
}

// Paste uploads one file after an interactive confirmation and prints
// the tag to insert into the note.
func (a *App) Paste(ctx context.Context, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", filePath, err)
	}

	name := filepath.Base(filePath)
	decision, err := a.confirmUpload(name, len(data))
	if err != nil {
		return err
	}
	if !decision.ShouldUpload() {
		fmt.Fprintln(a.out, "kept local")
		return nil
	}

	s, err := a.newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	tag, err := s.pub.HandlePaste(ctx, publish.PasteRequest{Data: data, Name: name})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, tag)
	return nil
}

// confirmUpload asks once per file. "a" answers yes for the rest of the
// session the way the editor dialog's "always" button would; in a
// one-shot CLI run it simply means yes.
func (a *App) confirmUpload(name string, size int) (publish.Decision, error) {
	answer, err := getSimpleText(a.reader,
		fmt.Sprintf("Upload %s (%d bytes)? [y]es / [a]lways / [n]o", name, size), a.out)
	if err != nil {
		return publish.DecisionCancel, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return publish.DecisionUpload, nil
	case "a", "always":
		return publish.DecisionUploadRemember, nil
	case "n", "no":
		return publish.DecisionLocal, nil
	default:
		return publish.DecisionCancel, nil
	}
}
