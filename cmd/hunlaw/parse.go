package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/coolbeans/hunlaw/pkg/abbrev"
	"github.com/coolbeans/hunlaw/pkg/grammar"
	"github.com/coolbeans/hunlaw/pkg/session"
)

func parseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [sentence...]",
		Short: "Extract references and instructions from sentences",
		Long: `Parse sentences and print what they refer to, the abbreviations they
declare, and what they amend, repeal or put into force.

Sentences are parsed in order, so abbreviations declared by one are known
to the ones after it. With --file, the document is read one sentence per
line; indented lines are parsed in the context of the line above them.

Example:
  hunlaw parse "Az 1. § hatályát veszti."
  hunlaw parse --file act.txt --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			if file == "" && len(args) == 0 {
				return fmt.Errorf("give sentences or --file")
			}

			opts, release, err := sessionOptions()
			if err != nil {
				return err
			}
			defer release()

			s := session.New(opts)
			var results []session.Result
			if file != "" {
				doc, err := readDocument(file)
				if err != nil {
					return err
				}
				results = s.ExtractDocument(cmd.Context(), doc)
			} else {
				results = s.ExtractAll(cmd.Context(), args)
			}
			return encode(os.Stdout, outputs(results))
		},
	}

	cmd.Flags().String("file", "", "Document to parse, - for stdin")
	return cmd
}

func refsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refs",
		Short: "List the outgoing references of a document",
		Long: `List every reference of a document with the line and byte range it
was written at.

Example:
  hunlaw refs --file act.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				return fmt.Errorf("--file flag is required")
			}
			doc, err := readDocument(file)
			if err != nil {
				return err
			}
			opts, release, err := sessionOptions()
			if err != nil {
				return err
			}
			defer release()

			table := newTable(os.Stdout, "LINE", "SPAN", "REFERENCE", "TEXT")
			for _, r := range session.New(opts).ExtractDocument(cmd.Context(), doc) {
				if r.Err != nil {
					fmt.Fprintf(os.Stderr, "%s:%d: %v\n", doc.Name, r.Line, r.Err)
					continue
				}
				for _, ref := range r.Info.OutgoingReferences {
					text := ""
					if ref.End <= len(r.Sentence) {
						text = r.Sentence[ref.Start:ref.End]
					}
					table.Append([]string{strconv.Itoa(r.Line), fmt.Sprintf("%d-%d", ref.Start, ref.End), ref.Reference.Compact(), text})
				}
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().String("file", "", "Document to scan, - for stdin")
	return cmd
}

func refCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ref <reference>",
		Short: "Parse a single reference",
		Long: `Parse text that is exactly one reference and print its syntax tree.

Example:
  hunlaw ref "5. § (2) bekezdés a) pont"
  hunlaw ref --structural "II. Fejezet"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			structural, _ := cmd.Flags().GetBool("structural")
			opts, release, err := sessionOptions()
			if err != nil {
				return err
			}
			defer release()

			gopts := grammar.Options{Abbreviations: session.New(opts).Registry(), MaxDepth: cfg.MaxDepth}
			var v any
			if structural {
				v, err = grammar.ParseStructuralReference(args[0], gopts)
			} else {
				v, err = grammar.ParseCompoundReference(args[0], gopts)
			}
			if err != nil {
				return err
			}
			return encode(os.Stdout, v)
		},
	}

	cmd.Flags().Bool("structural", false, "Parse a structural reference (book, part, title, chapter, subtitle)")
	return cmd
}

func abbrevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "abbrev",
		Short: "Show abbreviations",
		Long: `Print the abbreviations declared in a document, or with --list the
abbreviations of the configured tables.

Example:
  hunlaw abbrev --file act.txt
  hunlaw abbrev --list --abbrev tables/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			list, _ := cmd.Flags().GetBool("list")

			opts, release, err := sessionOptions()
			if err != nil {
				return err
			}
			defer release()

			if list {
				if opts.Table == nil {
					return fmt.Errorf("no abbreviation tables configured")
				}
				return encode(os.Stdout, opts.Table.Seed().Entries())
			}
			if file == "" {
				return fmt.Errorf("--file or --list is required")
			}
			doc, err := readDocument(file)
			if err != nil {
				return err
			}
			declared := []abbrev.Entry{}
			for _, r := range session.New(opts).ExtractDocument(cmd.Context(), doc) {
				declared = append(declared, r.Info.NewAbbreviations...)
			}
			return encode(os.Stdout, declared)
		},
	}

	cmd.Flags().String("file", "", "Document to scan, - for stdin")
	cmd.Flags().Bool("list", false, "List the abbreviation tables")
	return cmd
}
