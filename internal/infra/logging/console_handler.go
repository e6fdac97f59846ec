package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

//nolint:gochecknoglobals
var (
	colorGray      = color.New(color.FgHiBlack)
	colorUnderline = color.New(color.Underline)

	levelColors = map[slog.Level]*color.Color{
		slog.LevelDebug: color.New(color.FgCyan),
		slog.LevelInfo:  color.New(color.FgGreen),
		slog.LevelWarn:  color.New(color.FgYellow),
		slog.LevelError: color.New(color.FgRed),
	}
)

// ConsoleHandler implements slog.Handler to format log records with colors
// and human-readable output suitable for a terminal.
type ConsoleHandler struct {
	// Output is the destination for log output (typically os.Stdout or os.Stderr)
	Output io.Writer
	// Level is the minimum level for log records to be processed
	Level slog.Leveler
	// PkgLevels maps logger names to minimum log levels
	PkgLevels map[string]slog.Level
	// Caller appends the calling function and file to each record
	Caller bool

	attrs  []slog.Attr
	groups []string
}

var _ slog.Handler = (*ConsoleHandler)(nil)

// Handle implements slog.Handler by formatting the log record with colors,
// timestamps, and optionally source file information.
//
//nolint:funlen
func (h *ConsoleHandler) Handle(ctx context.Context, r slog.Record) error {
	// collect attrs
	var attrs []slog.Attr

	attrs = append(attrs, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)

		return true
	})

	if !h.pkgEnabled(loggerName(attrs), r.Level) {
		return nil
	}

	// format log message
	levelColor, ok := levelColors[r.Level]
	if !ok {
		levelColor = colorGray
	}

	var msg strings.Builder

	msg.WriteString(colorGray.Sprint(r.Time.Format("15:04:05.000000")))
	msg.WriteString(" " + levelColor.Sprint("["+r.Level.String()+"]"))
	msg.WriteString(" " + r.Message)

	var prefix string

	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}

	if len(attrs) > 0 {
		msg.WriteString(" " + colorGray.Sprint("|"))
		msg.WriteString(renderAttrs(prefix, attrs))
	}

	// format caller
	if h.Caller && r.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		fn := strings.Split(f.Function, string(os.PathSeparator))

		msg.WriteString("\n-> " + colorGray.Sprint(fn[len(fn)-1]+"()"))
		msg.WriteString(" in " + colorUnderline.Sprint(f.File+":"+strconv.Itoa(f.Line)))
	}

	_, err := fmt.Fprintln(h.Output, msg.String())

	return err //nolint:wrapcheck
}

// pkgEnabled walks the dotted logger name from most to least specific and
// applies the first matching filter level, falling back to the handler level.
func (h *ConsoleHandler) pkgEnabled(name string, level slog.Level) bool {
	parts := strings.Split(name, ".")

	for i := len(parts); i >= 0 && len(h.PkgLevels) > 0; i-- {
		threshold, ok := h.PkgLevels[strings.Join(parts[:i], ".")]
		if ok {
			return level >= threshold
		}
	}

	return level >= h.Level.Level()
}

func loggerName(attrs []slog.Attr) string {
	for _, attr := range attrs {
		if attr.Key == "logger" {
			return attr.Value.String()
		}
	}

	return ""
}

func renderAttrs(prefix string, attrs []slog.Attr) string {
	var out strings.Builder

	for _, attr := range attrs {
		if attr.Value.Kind() == slog.KindGroup {
			out.WriteString(renderAttrs(prefix+attr.Key+".", attr.Value.Group()))

			continue
		}

		out.WriteString(" " + prefix + attr.Key)
		out.WriteString("=" + colorGray.Sprint(attr.Value.String()))
	}

	return out.String()
}

// WithAttrs implements slog.Handler.WithAttrs.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) Handler {
	return &ConsoleHandler{
		Output:    h.Output,
		Level:     h.Level,
		PkgLevels: h.PkgLevels,
		Caller:    h.Caller,
		attrs:     append(append([]slog.Attr{}, h.attrs...), attrs...),
		groups:    h.groups,
	}
}

// WithGroup implements slog.Handler.WithGroup.
func (h *ConsoleHandler) WithGroup(name string) Handler {
	return &ConsoleHandler{
		Output:    h.Output,
		Level:     h.Level,
		PkgLevels: h.PkgLevels,
		Caller:    h.Caller,
		attrs:     h.attrs,
		groups:    append(append([]string{}, h.groups...), name),
	}
}

// Enabled implements slog.Handler.Enabled. A record passes if any filter
// could accept it; Handle applies the per-logger decision.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := h.Level.Level()

	for _, pkgLevel := range h.PkgLevels {
		threshold = min(threshold, pkgLevel)
	}

	return level >= threshold
}
