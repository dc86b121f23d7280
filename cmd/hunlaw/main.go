package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/coolbeans/hunlaw/internal/logutil"
	"github.com/coolbeans/hunlaw/pkg/abbrev"
	"github.com/coolbeans/hunlaw/pkg/cache"
	"github.com/coolbeans/hunlaw/pkg/config"
	"github.com/coolbeans/hunlaw/pkg/semantic"
	"github.com/coolbeans/hunlaw/pkg/session"
)

var version = "0.1.0"

// Settings of the running command, after config file, environment and flags
var (
	cfg    = config.Default()
	logger = slog.Default()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hunlaw",
		Short: "Hungarian statute reference and instruction extractor",
		Long: `Hunlaw parses sentences of Hungarian Acts as published in the
Magyar Közlöny and extracts:
  - References to other provisions, with their positions in the text
  - Act abbreviations declared with "(a továbbiakban: ...)"
  - Block and text amendments, with the amended positions
  - Enforcement dates and repeals`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadSettings(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (YAML)")
	flags.StringP("format", "f", "", "Output format (yaml, json)")
	flags.String("abbrev", "", "Directory of abbreviation tables")
	flags.String("cache", "", "Result cache database")
	flags.Int("max-depth", 0, "Maximum grammar rule nesting")
	flags.BoolP("verbose", "v", false, "Log debug information")

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(refsCmd())
	rootCmd.AddCommand(refCmd())
	rootCmd.AddCommand(abbrevCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(cacheCmd())
	rootCmd.AddCommand(envCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func loadSettings(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	override(flags, "format", &loaded.Format)
	override(flags, "abbrev", &loaded.Abbreviations)
	override(flags, "cache", &loaded.CachePath)
	override(flags, "max-depth", &loaded.MaxDepth)
	override(flags, "jobs", &loaded.Jobs)
	if verbose, _ := flags.GetBool("verbose"); verbose {
		loaded.Debug = true
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	cfg = loaded
	logger = logutil.NewLogger(os.Stderr, logutil.ParseLevel(cfg.Level()))
	slog.SetDefault(logger)
	return nil
}

// override sets dst from the flag name when it was given.
func override[T string | int](flags *pflag.FlagSet, name string, dst *T) {
	f := flags.Lookup(name)
	if f == nil || !f.Changed {
		return
	}
	switch d := any(dst).(type) {
	case *string:
		*d = f.Value.String()
	case *int:
		*d, _ = flags.GetInt(name)
	}
}

// sessionOptions builds the session options of the settings. The returned
// function releases the cache.
func sessionOptions() (session.Options, func(), error) {
	opts := session.Options{
		Logger:   logger,
		MaxDepth: cfg.MaxDepth,
		Jobs:     cfg.Jobs,
	}
	if cfg.Abbreviations != "" {
		table, err := abbrev.NewTableWithDirectory(cfg.Abbreviations, logger)
		if err != nil {
			return session.Options{}, nil, fmt.Errorf("failed to load abbreviations: %w", err)
		}
		logger.Debug("abbreviations loaded", "dir", cfg.Abbreviations, "count", table.Count())
		opts.Table = table
	}
	release := func() {}
	if cfg.CachePath != "" {
		c, err := cache.Open(cfg.CachePath)
		if err != nil {
			return session.Options{}, nil, err
		}
		opts.Cache = c
		release = func() {
			if err := c.Close(); err != nil {
				logger.Warn("failed to close cache", "error", err)
			}
		}
	}
	return opts, release, nil
}

// readDocument reads the document at path, or stdin for "-".
func readDocument(path string) (session.Document, error) {
	if path == "-" {
		return session.ReadDocument("stdin", os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return session.Document{}, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()
	return session.ReadDocument(documentName(path), f)
}

func documentName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// readDocuments reads every .txt file in dir, sorted by name.
func readDocuments(dir string) ([]session.Document, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	docs := make([]session.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := readDocument(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

type resultOutput struct {
	Line     int            `json:"line" yaml:"line"`
	Sentence string         `json:"sentence" yaml:"sentence"`
	Info     *semantic.Info `json:"info,omitempty" yaml:"info,omitempty"`
	Error    string         `json:"error,omitempty" yaml:"error,omitempty"`
}

func outputs(results []session.Result) []resultOutput {
	out := make([]resultOutput, len(results))
	for i, r := range results {
		out[i] = resultOutput{Line: r.Line, Sentence: r.Sentence}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
			continue
		}
		if !r.Info.IsEmpty() {
			info := r.Info
			out[i].Info = &info
		}
	}
	return out
}

// newTable returns a borderless, left-aligned table writing to w.
func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}

// encode writes v in the configured format.
func encode(w io.Writer, v any) error {
	switch cfg.Format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
}

func envCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Show the environment variables and their current values",
		RunE: func(cmd *cobra.Command, args []string) error {
			vars := cfg.AsMap()
			names := make([]string, 0, len(vars))
			for name := range vars {
				names = append(names, name)
			}
			sort.Strings(names)
			table := newTable(os.Stdout, "NAME", "VALUE", "DESCRIPTION")
			for _, name := range names {
				v := vars[name]
				table.Append([]string{name, fmt.Sprint(v.Value), v.Description})
			}
			table.Render()
			return nil
		},
	}
}
