// pkg/index/sync.go
package index

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/arc-language/bulkinstall/pkg/logging"
)

const (
	RepoURL    = "https://github.com/arc-language/upkg"
	RepoBranch = "main"
)

// Options selects where the alias registry is cloned from
type Options struct {
	URL      string
	Branch   string
	Progress io.Writer // Optional clone progress output
}

// Sync clones the registry repository and replaces the cached deps/ folder
func Sync(ctx context.Context, cacheDir string, opts Options) error {
	logger := logging.GetLogger("index")

	if opts.URL == "" {
		opts.URL = RepoURL
	}
	if opts.Branch == "" {
		opts.Branch = RepoBranch
	}

	tempDir, err := os.MkdirTemp("", "bulkinstall-registry-*")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	logger.Info().Str("url", opts.URL).Str("branch", opts.Branch).Msg("Updating alias registry")

	cloneOpts := &git.CloneOptions{
		URL:           opts.URL,
		ReferenceName: plumbing.NewBranchReferenceName(opts.Branch),
		SingleBranch:  true,
		Progress:      opts.Progress,
	}
	// Local repositories are cloned in full
	if _, statErr := os.Stat(opts.URL); statErr != nil {
		cloneOpts.Depth = 1
	}

	_, err = git.PlainCloneContext(ctx, tempDir, false, cloneOpts)
	if err != nil {
		return fmt.Errorf("git clone failed: %w", err)
	}

	return install(filepath.Join(tempDir, "deps"), cacheDir)
}

// install swaps src in as <cacheDir>/deps
func install(src, cacheDir string) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("repository has no deps/ folder: %w", err)
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	staging := filepath.Join(cacheDir, "deps.new")
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("clearing staging dir: %w", err)
	}
	if err := copyDir(src, staging); err != nil {
		return fmt.Errorf("copying deps: %w", err)
	}

	dst := filepath.Join(cacheDir, "deps")
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("removing old deps: %w", err)
	}
	if err := os.Rename(staging, dst); err != nil {
		return fmt.Errorf("installing deps: %w", err)
	}

	logger := logging.GetLogger("index")
	logger.Info().Str("path", dst).Msg("Alias registry updated")
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

func copyDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}
