package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/p-n-ai/pai-tutorial/internal/curriculum"
	"github.com/p-n-ai/pai-tutorial/internal/export"
	"github.com/p-n-ai/pai-tutorial/internal/platform/cache"
	"github.com/p-n-ai/pai-tutorial/internal/platform/config"
)

func newLintCmd(opts *rootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Report malformed documents and suspicious chapter content",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			chapters := catalog.GetAllChapters()
			skipped := catalog.Skipped()
			issues := curriculum.Lint(chapters)

			out := cmd.OutOrStdout()
			for _, e := range skipped {
				color.New(color.FgRed).Fprintf(out, "🚫  %s: %v\n", e.Path, e.Err)
			}
			for _, issue := range issues {
				c := color.New(color.FgYellow)
				if issue.Severity == curriculum.SeverityError {
					c = color.New(color.FgHiRed)
				}
				c.Fprintln(out, "⚠️  "+issue.String())
			}

			errorCount := lo.CountBy(issues, func(i curriculum.Issue) bool {
				return i.Severity == curriculum.SeverityError
			})
			summary := fmt.Sprintf("✨ %d chapters, %d skipped, %d errors, %d warnings",
				len(chapters), len(skipped), errorCount, len(issues)-errorCount)
			color.New(color.FgHiCyan).Fprintln(out, summary)

			if len(skipped) > 0 || errorCount > 0 || (strict && len(issues) > 0) {
				return fmt.Errorf("lint failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on warnings too")
	return cmd
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List chapters grouped by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			groups := catalog.GetChaptersByCategory()
			for _, c := range curriculum.Categories() {
				chapters, ok := groups[c]
				if !ok {
					continue
				}
				color.New(color.Bold).Fprintln(out, c.DisplayName())
				for _, ch := range chapters {
					quiz := ""
					if ch.Quiz != nil {
						quiz = fmt.Sprintf(", %d questions", len(ch.Quiz.Questions))
					}
					fmt.Fprintf(out, "  %3d. %s (%d steps%s)\n", ch.Number, ch.Title, len(ch.Steps), quiz)
				}
			}
			return nil
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the chapter catalog as JSON or YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("--format must be json or yaml, got %q", format)
			}
			catalog, err := loadCatalog(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			data, err := export.Build(catalog.GetAllChapters(), time.Now())
			if err != nil {
				return err
			}
			if err := export.Validate(data); err != nil {
				return err
			}
			if format == "yaml" {
				if data, err = export.ToYAML(data); err != nil {
					return err
				}
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "✅  wrote %d chapters to %s\n",
				len(catalog.GetAllChapters()), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newWatchCmd(cfg *config.Config) *cobra.Command {
	var (
		url     string
		channel string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print progress events published by running servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				return fmt.Errorf("--cache-url or LEARN_CACHE_URL is required")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			c, err := cache.New(ctx, url)
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			return c.Listen(ctx, channel, func(payload string) {
				fmt.Fprintln(out, formatEvent(payload))
			})
		},
	}

	cmd.Flags().StringVar(&url, "cache-url", cfg.Cache.URL, "Redis URL")
	cmd.Flags().StringVar(&channel, "channel", cfg.Cache.Channel, "pub/sub channel")
	return cmd
}

// formatEvent renders a published progress event as one line.
func formatEvent(payload string) string {
	ev := gjson.Parse(payload)
	if !ev.Get("event_type").Exists() {
		return "? " + strings.TrimSpace(payload)
	}
	line := fmt.Sprintf("%s  chapter %d  %-14s %-10s %3d%%",
		ev.Get("created_at").String(),
		ev.Get("chapter_id").Int(),
		ev.Get("event_type").String(),
		ev.Get("state").String(),
		ev.Get("percentage").Int(),
	)
	if ev.Get("event_type").String() == "completed" {
		return color.GreenString(line)
	}
	return line
}

func printError(w io.Writer, err error) {
	color.New(color.FgHiRed).Fprintf(w, "error: %v\n", err)
}
