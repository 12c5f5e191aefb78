// Command chapterctl checks and exports tutorial chapter content.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-tutorial/internal/curriculum"
	"github.com/p-n-ai/pai-tutorial/internal/platform/config"
)

type rootOptions struct {
	Dir         string
	FrontMatter string
	Verbose     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		printError(root.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg, _ := config.Load()
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "chapterctl",
		Short:         "Lint, list and export tutorial chapters",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.Dir, "dir", cfg.Content.Path, "chapter markdown directory")
	root.PersistentFlags().StringVar(&opts.FrontMatter, "frontmatter", cfg.Content.FrontMatter, "front matter decoder: scan or yaml")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log skipped documents to stderr")

	root.AddCommand(
		newLintCmd(opts),
		newListCmd(opts),
		newExportCmd(opts),
		newWatchCmd(cfg),
	)

	return root
}

// loadCatalog builds a catalog over opts.Dir.
func loadCatalog(opts *rootOptions, stderr io.Writer) (*curriculum.Catalog, error) {
	parser, err := curriculum.NewParser(opts.FrontMatter)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(opts.Dir); err != nil {
		return nil, fmt.Errorf("chapter directory: %w", err)
	}

	level := slog.LevelError
	if opts.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	return curriculum.NewCatalog(curriculum.NewDirSource(opts.Dir), parser, log), nil
}
