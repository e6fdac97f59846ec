package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatYAML = "yaml"
	formatJSON = "json"
)

var errUnknownFormat = errors.New("unknown output format")

// printer writes command results either as colored text or as a YAML/JSON document.
type printer struct {
	format string
	w      io.Writer
}

func newPrinter(format string, w io.Writer) (*printer, error) {
	switch format {
	case formatText, formatYAML, formatJSON:
		return &printer{format: format, w: w}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownFormat, format)
	}
}

// structured reports whether results are emitted as documents instead of text.
func (p *printer) structured() bool {
	return p.format != formatText
}

func (p *printer) emit(v any) error {
	switch p.format {
	case formatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case formatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)

		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	}

	return nil
}

func (p *printer) success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(p.w, "✓ "+format+"\n", args...)
}

func (p *printer) notice(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(p.w, format+"\n", args...)
}

func (p *printer) heading(title string) {
	cyan := color.New(color.FgCyan)

	fmt.Fprintln(p.w)
	cyan.Fprintf(p.w, "  %s\n", title)
	cyan.Fprintf(p.w, "  %s\n", strings.Repeat("-", len(title)))
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) table() *tabwriter.Writer {
	return tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}

	return string(r[:maxLen-3]) + "..."
}
