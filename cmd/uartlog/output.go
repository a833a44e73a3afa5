package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/uartlog/uartlog-go/pkg/uartlog"
	"github.com/uartlog/uartlog-go/pkg/uartlog/classify"
)

// outputFlags are shared by parse, capture and tail.
type outputFlags struct {
	format     string
	output     string
	sort       string
	desc       bool
	directions []string
	categories []string
	contains   string
	rules      string
	raw        bool
	strict     bool
}

func addOutputFlags(cmd *cobra.Command, f *outputFlags) {
	flags := cmd.Flags()
	flags.StringVarP(&f.format, "format", "f", "",
		"Output format: table, csv, jsonl, pretty (default from config, else table)")
	flags.StringVarP(&f.output, "output", "o", "",
		"Also export the result as CSV to this file")
	flags.StringVar(&f.sort, "sort", "",
		"Sort by column: Time, Direction, Message, Delay")
	flags.BoolVar(&f.desc, "desc", false,
		"Sort descending")
	flags.StringSliceVar(&f.directions, "direction", nil,
		"Show only these directions (RX, TX)")
	flags.StringSliceVar(&f.categories, "category", nil,
		"Show only these message categories (error, warning, none)")
	flags.StringVar(&f.contains, "contains", "",
		"Show only messages containing this text (case-insensitive)")
	flags.StringVar(&f.rules, "rules", "",
		"Classification rule file (YAML)")
	flags.BoolVar(&f.raw, "raw", false,
		"Include raw log lines (jsonl output)")
	flags.BoolVar(&f.strict, "strict", false,
		"Fail on lines with an invalid timestamp instead of skipping them")
}

// present filters, sorts, prints and optionally exports events.
func (a *app) present(cmd *cobra.Command, f *outputFlags, events []uartlog.Event) error {
	format := f.format
	if format == "" {
		format = a.cfg.Output.Format
	}
	if !validFormats[format] {
		return fmt.Errorf("invalid format %q (valid: table, csv, jsonl, pretty)", format)
	}

	classifier, err := a.classifier(f.rules)
	if err != nil {
		return err
	}

	opts, err := filterOptions(f, classifier)
	if err != nil {
		return err
	}
	events = uartlog.Filter(events, opts)

	if f.sort != "" {
		if err := uartlog.SortBy(events, f.sort, f.desc); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	p := printer{format: format, classifier: classifier, color: isTerminal(out)}
	if err := p.Print(events, out); err != nil {
		return fmt.Errorf("output error: %w", err)
	}

	exportPath := f.output
	if exportPath == "" {
		exportPath = a.cfg.Output.ExportPath
	}
	if exportPath != "" {
		if err := exportCSV(exportPath, events); err != nil {
			return err
		}
		a.logger.Info("exported", "path", exportPath, "events", len(events))
	}
	return nil
}

func (a *app) classifier(flagPath string) (*classify.Classifier, error) {
	path := flagPath
	if path == "" {
		path = a.cfg.Output.RulesFile
	}
	if path == "" {
		return classify.Default(), nil
	}
	c, err := classify.NewFromFile(path)
	if err != nil {
		// Error from classify package is already sanitized (no path)
		return nil, fmt.Errorf("rule file: %w", err)
	}
	return c, nil
}

func filterOptions(f *outputFlags, classifier *classify.Classifier) (uartlog.FilterOptions, error) {
	opts := uartlog.FilterOptions{Contains: f.contains}

	for _, d := range f.directions {
		dir := uartlog.Direction(strings.ToUpper(strings.TrimSpace(d)))
		if dir != uartlog.RX && dir != uartlog.TX {
			return opts, fmt.Errorf("invalid direction %q (valid: RX, TX)", d)
		}
		opts.Directions = append(opts.Directions, dir)
	}

	if len(f.categories) > 0 {
		want := make([]classify.Category, 0, len(f.categories))
		for _, c := range f.categories {
			c = strings.ToLower(strings.TrimSpace(c))
			if c == "none" {
				c = ""
			}
			want = append(want, classify.Category(c))
		}
		opts.Match = func(ev uartlog.Event) bool {
			return slices.Contains(want, classifier.Classify(ev.Message))
		}
	}
	return opts, nil
}

// exportCSV writes events to path, creating parent directories.
func exportCSV(path string, events []uartlog.Event) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := uartlog.WriteCSV(f, events); err != nil {
		f.Close()
		return fmt.Errorf("writing export file: %w", err)
	}
	return f.Close()
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
