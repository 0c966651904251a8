package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coolbeans/kanun/pkg/api"
	"github.com/coolbeans/kanun/pkg/config"
	"github.com/coolbeans/kanun/pkg/document"
	"github.com/coolbeans/kanun/pkg/lang"
	"github.com/coolbeans/kanun/pkg/pattern"
	"github.com/coolbeans/kanun/pkg/watch"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// cfg is loaded once before any subcommand runs.
var cfg *config.Cfg

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kanun",
		Short: "Statute numbering for Nepali and English legal text",
		Long: `Kanun reads statute text line by line and derives a hierarchical
identifier (IDNo) for each line from its numbering and lettering.

It handles Devanagari and Latin text:
  - Detects whether each line is Nepali or English
  - Classifies sections, subsections, clauses, provisos and explanations
  - Builds identifiers such as 4.0, 4.1, 4.a and 4.a.P
  - Exports rows as a table, JSON, CSV or Markdown`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg = loaded
			slog.SetDefault(cfg.NewLogger(cmd.ErrOrStderr()))
			return nil
		},
	}

	rootCmd.PersistentFlags().String("patterns", "", "Directory of YAML pattern tables overriding the built-ins (default $KANUN_PATTERN_DIR)")
	rootCmd.PersistentFlags().Bool("normalize", false, "Apply Unicode NFC normalization to input lines")

	rootCmd.AddCommand(processCmd())
	rootCmd.AddCommand(detectCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(patternsCmd())
	rootCmd.AddCommand(sampleCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(serveCmd())

	return rootCmd
}

func processCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [text]",
		Short: "Derive IDNo values for every line of a document",
		Long: `Process a statute document and print one row per non-blank line.

Input is read from --source, from the arguments, or from stdin.

Example:
  kanun process --source act.txt
  kanun process -s act.txt -f csv > act.csv
  cat act.txt | kanun process --stats --section 4
  kanun process -s act.txt --sort asc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _ := cmd.Flags().GetString("source")
			formatStr, _ := cmd.Flags().GetString("format")
			showStats, _ := cmd.Flags().GetBool("stats")
			section, _ := cmd.Flags().GetString("section")
			only, _ := cmd.Flags().GetString("only")
			order, _ := cmd.Flags().GetString("sort")

			format, err := document.ParseFormat(formatStr)
			if err != nil {
				return err
			}
			processor, err := newProcessor(cmd)
			if err != nil {
				return err
			}

			var rows []document.Row
			if len(args) > 0 && source == "" {
				rows = processor.Process(strings.Join(args, " "))
			} else {
				r, closeFn, err := openSource(cmd, source)
				if err != nil {
					return err
				}
				defer closeFn()
				rows, err = processor.ProcessReader(cmd.Context(), r)
				if err != nil {
					return fmt.Errorf("processing %s: %w", sourceName(source), err)
				}
			}

			summary := document.Summarize(rows)
			rows, err = filterRows(rows, section, only)
			if err != nil {
				return err
			}
			switch order {
			case "":
			case "asc", "desc":
				rows = document.SortByIDNo(rows, order == "asc")
			default:
				return fmt.Errorf("unsupported sort order %q (use asc or desc)", order)
			}

			out := cmd.OutOrStdout()
			if err := document.Write(out, rows, format); err != nil {
				return err
			}
			if showStats {
				fmt.Fprintln(out)
				return document.WriteSummary(out, summary)
			}
			return nil
		},
	}

	cmd.Flags().StringP("source", "s", "", "Source document path (- for stdin)")
	cmd.Flags().StringP("format", "f", "table", "Output format (table, json, csv, markdown)")
	cmd.Flags().Bool("stats", false, "Print document statistics after the rows")
	cmd.Flags().String("section", "", "Only print rows of this section")
	cmd.Flags().String("only", "", "Only print rows of one kind (empty, provisos, explanations)")
	cmd.Flags().String("sort", "", "Order rows by IDNo (asc, desc) and renumber them")

	return cmd
}

func detectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect [text]",
		Short: "Detect whether text is Nepali or English",
		Long: `Detect the language of text by the share of Devanagari characters.

Example:
  kanun detect "प्रमाण बुझ्न नपर्ने कुराहरुः"
  kanun detect --source act.txt --per-line`,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _ := cmd.Flags().GetString("source")
			perLine, _ := cmd.Flags().GetBool("per-line")
			showStats, _ := cmd.Flags().GetBool("stats")
			formatStr, _ := cmd.Flags().GetString("format")

			text, err := readText(cmd, source, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if formatStr == "json" {
				payload := map[string]interface{}{
					"language": lang.Detect(text),
				}
				if showStats {
					payload["stats"] = lang.Stats(text)
				}
				if perLine {
					payload["lines"] = lang.DetectPerLine(text)
				}
				return writeIndentedJSON(out, payload)
			}
			if formatStr != "text" {
				return fmt.Errorf("unsupported format: %s", formatStr)
			}

			if perLine {
				for i, line := range lang.DetectPerLine(text) {
					if strings.TrimSpace(line.Line) == "" {
						continue
					}
					fmt.Fprintf(out, "%4d  %-8s %s\n", i+1, line.Language, line.Line)
				}
			} else {
				fmt.Fprintln(out, lang.Detect(text))
			}

			if showStats {
				s := lang.Stats(text)
				fmt.Fprintln(out, "\nScript statistics:")
				fmt.Fprintf(out, "  %-18s %s\n", "Primary language:", s.PrimaryLanguage.DisplayName())
				fmt.Fprintf(out, "  %-18s %.2f%% (%d chars)\n", "Nepali:", s.NepaliPercent, s.Characters.Nepali)
				fmt.Fprintf(out, "  %-18s %.2f%% (%d chars)\n", "English:", s.EnglishPercent, s.Characters.English)
				fmt.Fprintf(out, "  %-18s %v\n", "Mixed:", s.Mixed)
			}
			return nil
		},
	}

	cmd.Flags().StringP("source", "s", "", "Source document path (- for stdin)")
	cmd.Flags().Bool("per-line", false, "Detect each line separately")
	cmd.Flags().Bool("stats", false, "Show script statistics")
	cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")

	return cmd
}

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <text>",
		Short: "Show which structural patterns match a line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			languageStr, _ := cmd.Flags().GetString("language")
			formatStr, _ := cmd.Flags().GetString("format")

			registry, err := loadRegistry(cmd)
			if err != nil {
				return err
			}
			classifier := pattern.NewClassifier(registry)

			text := strings.Join(args, " ")
			var c pattern.Classification
			if languageStr == "" {
				c = classifier.ClassifyDetected(text)
			} else {
				language, err := lang.ParseLanguage(languageStr)
				if err != nil {
					return err
				}
				c = classifier.Classify(text, language)
			}

			out := cmd.OutOrStdout()
			switch formatStr {
			case "json":
				return writeIndentedJSON(out, struct {
					pattern.Classification
					ContentType pattern.ContentType `json:"contentType"`
				}{c, c.ContentType()})
			case "text":
				fmt.Fprintf(out, "%-16s %s\n", "Language:", c.Language)
				fmt.Fprintf(out, "%-16s %s\n", "Content type:", c.ContentType())
				flags := []struct {
					name string
					set  bool
				}{
					{"proviso", c.IsProviso},
					{"explanation", c.IsExplanation},
					{"section", c.IsSection},
					{"numbered", c.HasNumberedItems},
					{"lettered", c.HasLetteredItems},
					{"clause", c.IsClause},
					{"sub-clause", c.IsSubClause},
					{"subsection", c.HasSubsection},
					{"roman", c.HasRomanItem},
				}
				var matched []string
				for _, f := range flags {
					if f.set {
						matched = append(matched, f.name)
					}
				}
				if len(matched) == 0 {
					matched = []string{"none"}
				}
				fmt.Fprintf(out, "%-16s %s\n", "Matches:", strings.Join(matched, ", "))
				return nil
			default:
				return fmt.Errorf("unsupported format: %s", formatStr)
			}
		},
	}

	cmd.Flags().StringP("language", "l", "", "Classify as this language instead of detecting it (nepali, english)")
	cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")

	return cmd
}

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Inspect and export pattern tables",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the registered pattern tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadRegistry(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-10s %-24s %-8s %s\n", "LANGUAGE", "NAME", "VERSION", "SOURCE")
			for _, p := range registry.List() {
				fmt.Fprintf(out, "%-10s %-24s %-8s %s\n", p.Language, p.Name, p.Version, registry.SourceOf(p.Language))
			}
			return nil
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export <language>",
		Short: "Write a pattern table as YAML",
		Long: `Write the active pattern table for a language as YAML. The output
is a starting point for a custom table loaded with --patterns.

Example:
  kanun patterns export nepali > patterns/nepali.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			language, err := lang.ParseLanguage(args[0])
			if err != nil {
				return err
			}
			registry, err := loadRegistry(cmd)
			if err != nil {
				return err
			}
			p, ok := registry.Get(language)
			if !ok {
				return fmt.Errorf("no pattern table for %s", language)
			}
			return pattern.WriteYAML(cmd.OutOrStdout(), p)
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check pattern table files without loading them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				p, err := pattern.Parse(data)
				if err != nil {
					failed++
					fmt.Fprintf(out, "[FAIL] %s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(out, "[OK]   %s (%s %s)\n", path, p.Language, p.Version)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d pattern files invalid", failed, len(args))
			}
			return nil
		},
	}

	cmd.AddCommand(listCmd, exportCmd, validateCmd)
	return cmd
}

func sampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "sample <nepali|english>",
		Short:     "Print a built-in sample statute",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"nepali", "english"},
		RunE: func(cmd *cobra.Command, args []string) error {
			runProcess, _ := cmd.Flags().GetBool("process")
			formatStr, _ := cmd.Flags().GetString("format")

			language, err := lang.ParseLanguage(args[0])
			if err != nil {
				return err
			}
			text, err := document.Sample(language)
			if err != nil {
				return err
			}
			if !runProcess {
				_, err := io.WriteString(cmd.OutOrStdout(), text)
				return err
			}

			format, err := document.ParseFormat(formatStr)
			if err != nil {
				return err
			}
			processor, err := newProcessor(cmd)
			if err != nil {
				return err
			}
			return document.Write(cmd.OutOrStdout(), processor.Process(text), format)
		},
	}

	cmd.Flags().Bool("process", false, "Process the sample instead of printing it")
	cmd.Flags().StringP("format", "f", "table", "Output format with --process (table, json, csv, markdown)")

	return cmd
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reprocess a document whenever it changes",
		Long: `Watch a document and print its rows again each time it is saved.

Pattern tables loaded with --patterns are reloaded on change when
--watch-patterns is set.

Example:
  kanun watch --source act.txt --stats`,
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _ := cmd.Flags().GetString("source")
			formatStr, _ := cmd.Flags().GetString("format")
			showStats, _ := cmd.Flags().GetBool("stats")

			if source == "" {
				return fmt.Errorf("--source flag is required")
			}
			format, err := document.ParseFormat(formatStr)
			if err != nil {
				return err
			}
			registry, err := loadRegistry(cmd)
			if err != nil {
				return err
			}
			if err := startPatternWatch(cmd, registry); err != nil {
				return err
			}
			defer registry.StopWatch()

			processor := document.NewProcessor(registry,
				document.WithNormalization(normalize(cmd)),
				document.WithLogger(slog.Default()),
			)
			w, err := watch.New(source, watch.Config{Debounce: cfg.WatchDebounce, Logger: slog.Default()})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			slog.Info("watching document", "path", w.Path())
			return w.Run(ctx, func(ctx context.Context, ev watch.Event) {
				if ev.Removed {
					slog.Warn("document removed", "path", ev.Path)
					return
				}
				rows := processor.Process(string(ev.Data))
				if err := document.Write(out, rows, format); err != nil {
					slog.Error("writing rows", "error", err)
					return
				}
				if showStats {
					fmt.Fprintln(out)
					_ = document.WriteSummary(out, document.Summarize(rows))
				}
			})
		},
	}

	cmd.Flags().StringP("source", "s", "", "Document to watch")
	cmd.Flags().StringP("format", "f", "table", "Output format (table, json, csv, markdown)")
	cmd.Flags().Bool("stats", false, "Print document statistics after each pass")
	cmd.Flags().Bool("watch-patterns", false, "Reload --patterns tables when they change (default $KANUN_WATCH_PATTERNS)")

	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve detection, classification and processing over HTTP.

Endpoints:
  GET  /healthz
  POST /v1/detect     {"text": "..."}
  POST /v1/classify   {"text": "...", "language": "nepali"}
  POST /v1/process    {"text": "..."}
  GET  /v1/patterns`,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = cfg.ListenAddr
			}

			registry, err := loadRegistry(cmd)
			if err != nil {
				return err
			}
			if err := startPatternWatch(cmd, registry); err != nil {
				return err
			}
			defer registry.StopWatch()

			srv := api.NewServer(registry, api.Config{
				Normalize: normalize(cmd),
				Logger:    slog.Default(),
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default $KANUN_LISTEN_ADDR or :$PORT)")
	cmd.Flags().Bool("watch-patterns", false, "Reload --patterns tables when they change (default $KANUN_WATCH_PATTERNS)")

	return cmd
}

// loadRegistry returns the built-in tables, overridden by --patterns or
// KANUN_PATTERN_DIR when set.
func loadRegistry(cmd *cobra.Command) (*pattern.DefaultRegistry, error) {
	dir, _ := cmd.Flags().GetString("patterns")
	if dir == "" {
		dir = cfg.PatternDir
	}
	if dir == "" {
		return pattern.NewDefaultRegistry()
	}
	registry, err := pattern.NewRegistryWithDirectory(dir)
	if err != nil {
		return nil, fmt.Errorf("loading patterns from %s: %w", dir, err)
	}
	slog.Debug("loaded pattern tables", "dir", dir, "count", registry.Count())
	return registry, nil
}

func startPatternWatch(cmd *cobra.Command, registry *pattern.DefaultRegistry) error {
	enabled := cfg.WatchPatterns
	if cmd.Flags().Changed("watch-patterns") {
		enabled, _ = cmd.Flags().GetBool("watch-patterns")
	}
	if !enabled {
		return nil
	}
	if registry.Dir() == "" {
		return fmt.Errorf("--watch-patterns needs a pattern directory (--patterns or KANUN_PATTERN_DIR)")
	}
	registry.SetLogger(slog.Default())
	registry.SetOnChange(func(event string, p *pattern.LanguagePattern) {
		if p != nil {
			slog.Info("pattern table changed", "event", event, "language", p.Language, "version", p.Version)
			return
		}
		slog.Info("pattern tables reloaded", "event", event)
	})
	if err := registry.Watch(); err != nil {
		return fmt.Errorf("watching patterns: %w", err)
	}
	return nil
}

func normalize(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("normalize") {
		on, _ := cmd.Flags().GetBool("normalize")
		return on
	}
	return cfg.Normalize
}

func newProcessor(cmd *cobra.Command) (*document.Processor, error) {
	registry, err := loadRegistry(cmd)
	if err != nil {
		return nil, err
	}
	return document.NewProcessor(registry,
		document.WithNormalization(normalize(cmd)),
		document.WithLogger(slog.Default()),
	), nil
}

func filterRows(rows []document.Row, section, only string) ([]document.Row, error) {
	if section != "" {
		rows = document.BySection(rows, section)
	}
	switch strings.ToLower(only) {
	case "":
	case "empty":
		rows = document.EmptyIDNo(rows)
	case "provisos", "proviso":
		rows = document.Provisos(rows)
	case "explanations", "explanation":
		rows = document.Explanations(rows)
	default:
		return nil, fmt.Errorf("unknown --only value %q (empty, provisos, explanations)", only)
	}
	return rows, nil
}

// openSource opens path, or stdin for "" and "-".
func openSource(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening source: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func sourceName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}

func readText(cmd *cobra.Command, source string, args []string) (string, error) {
	if len(args) > 0 && source == "" {
		return strings.Join(args, " "), nil
	}
	r, closeFn, err := openSource(cmd, source)
	if err != nil {
		return "", err
	}
	defer closeFn()
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", sourceName(source), err)
	}
	return string(data), nil
}

func writeIndentedJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
