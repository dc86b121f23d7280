package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/fsnotify.v1"

	"github.com/coolbeans/hunlaw/pkg/cache"
	"github.com/coolbeans/hunlaw/pkg/session"
)

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Parse every Act in a directory",
		Long: `Parse each .txt file of a directory as one Act. Acts are parsed in
parallel; abbreviations never cross from one Act to another.

Example:
  hunlaw batch --dir acts/ --jobs 4
  hunlaw batch --dir acts/ --output results/ --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			output, _ := cmd.Flags().GetString("output")
			if dir == "" {
				return fmt.Errorf("--dir flag is required")
			}

			docs, err := readDocuments(dir)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				return fmt.Errorf("no .txt documents in %s", dir)
			}
			opts, release, err := sessionOptions()
			if err != nil {
				return err
			}
			defer release()

			start := time.Now()
			results, err := session.ParseActs(cmd.Context(), docs, opts)
			if err != nil {
				return err
			}

			if output != "" {
				if err := os.MkdirAll(output, 0755); err != nil {
					return fmt.Errorf("failed to create directory %s: %w", output, err)
				}
			}
			sentences, failed := 0, 0
			table := newTable(os.Stdout, "DOCUMENT", "SENTENCES", "FAILED", "ABBREVIATIONS")
			for _, r := range results {
				sentences += len(r.Results)
				failed += r.Failed()
				table.Append([]string{r.Name, strconv.Itoa(len(r.Results)), strconv.Itoa(r.Failed()), strconv.Itoa(len(r.Abbreviations))})
				if output != "" {
					if err := writeResults(filepath.Join(output, r.Name+"."+cfg.Format), r.Results); err != nil {
						return err
					}
				}
			}
			table.Render()
			fmt.Printf("\n%d documents, %d sentences, %d failed in %v\n",
				len(results), sentences, failed, time.Since(start).Round(time.Millisecond))
			if opts.Cache != nil {
				printCacheStats(cmd.Context(), opts.Cache)
			}
			return nil
		},
	}

	cmd.Flags().String("dir", "", "Directory of documents")
	cmd.Flags().String("output", "", "Directory for the per-document results")
	cmd.Flags().IntP("jobs", "j", 1, "Number of Acts parsed in parallel")
	return cmd
}

func writeResults(path string, results []session.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := encode(f, outputs(results)); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-parse documents as they change",
		Long: `Watch a directory and re-parse each .txt document when it is written.
Abbreviation tables given with --abbrev are reloaded when they change.

Example:
  hunlaw watch --dir acts/ --abbrev tables/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				return fmt.Errorf("--dir flag is required")
			}
			opts, release, err := sessionOptions()
			if err != nil {
				return err
			}
			defer release()

			if opts.Table != nil {
				opts.Table.SetOnChange(func(event, path string) {
					logger.Info("abbreviation table changed", "event", event, "path", path)
				})
				if err := opts.Table.Watch(); err != nil {
					return fmt.Errorf("failed to watch abbreviations: %w", err)
				}
				defer opts.Table.StopWatch()
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("failed to create watcher: %w", err)
			}
			defer watcher.Close()
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}

			fmt.Printf("Watching %s (Ctrl-C to stop)\n", dir)
			return watchLoop(cmd.Context(), watcher, opts)
		},
	}

	cmd.Flags().String("dir", "", "Directory of documents")
	return cmd
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, opts session.Options) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".txt") {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			reparse(ctx, event.Name, opts)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}

func reparse(ctx context.Context, path string, opts session.Options) {
	doc, err := readDocument(path)
	if err != nil {
		logger.Warn("failed to read document", "path", path, "error", err)
		return
	}
	start := time.Now()
	results := session.New(opts).ExtractDocument(ctx, doc)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s:%d: %v\n", doc.Name, r.Line, r.Err)
		}
	}
	fmt.Printf("%s: %d sentences, %d failed in %v\n", doc.Name, len(results), failed, time.Since(start).Round(time.Millisecond))
}

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the result cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			defer c.Close()
			stats, err := c.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return encode(os.Stdout, stats)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached result",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			defer c.Close()
			if err := c.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("Cleared %s\n", cfg.CachePath)
			return nil
		},
	})
	return cmd
}

func openCache() (*cache.Cache, error) {
	if cfg.CachePath == "" {
		return nil, fmt.Errorf("no cache configured (use --cache or HUNLAW_CACHE)")
	}
	return cache.Open(cfg.CachePath)
}

func printCacheStats(ctx context.Context, c *cache.Cache) {
	stats, err := c.Stats(ctx)
	if err != nil {
		logger.Warn("failed to read cache stats", "error", err)
		return
	}
	fmt.Printf("cache: %d entries, %d hits, %d misses\n", stats.Entries, stats.Hits, stats.Misses)
}
