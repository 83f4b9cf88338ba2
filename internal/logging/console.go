package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler writes one human-readable line per record:
//
//	2026-01-02T15:04:05Z INFO api [0123abcd]: request served status=200
//
// The component and request id attributes are lifted into the prefix.
type consoleHandler struct {
	out       *lockedWriter
	level     slog.Leveler
	addSource bool
	prefix    string
	attrs     []field
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

type field struct {
	key   string
	value slog.Value
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) *consoleHandler {
	return &consoleHandler{out: &lockedWriter{w: w}, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]field(nil), h.attrs...), collectFields(h.prefix, attrs)...)
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = joinKey(h.prefix, name)
	return &next
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := append([]field(nil), h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = append(fields, collectFields(h.prefix, []slog.Attr{attr})...)
		return true
	})

	var component, requestID string
	var sb strings.Builder
	for _, f := range fields {
		switch {
		case f.key == FieldComponent && component == "":
			component = plainValue(f.value)
		case f.key == FieldRequestID && requestID == "":
			requestID = plainValue(f.value)
		case f.key == FieldComponent || f.key == FieldRequestID:
		default:
			sb.WriteByte(' ')
			sb.WriteString(f.key)
			sb.WriteByte('=')
			sb.WriteString(quotedValue(f.value))
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	line := make([]byte, 0, 96+sb.Len())
	line = ts.UTC().AppendFormat(line, time.RFC3339)
	line = append(line, ' ')
	line = append(line, levelName(record.Level)...)
	line = append(line, ' ')
	if component != "" {
		line = append(line, component...)
		if requestID != "" {
			line = append(line, " ["...)
			line = append(line, requestID[:min(8, len(requestID))]...)
			line = append(line, ']')
		}
		line = append(line, ": "...)
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	line = append(line, msg...)
	if h.addSource && record.PC != 0 {
		if src := record.Source(); src != nil {
			line = fmt.Appendf(line, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	line = append(line, sb.String()...)
	line = append(line, '\n')

	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	_, err := h.out.w.Write(line)
	return err
}

func collectFields(prefix string, attrs []slog.Attr) []field {
	var out []field
	for _, attr := range attrs {
		value := attr.Value.Resolve()
		if attr.Key == "" && value.Kind() != slog.KindGroup {
			continue
		}
		if value.Kind() == slog.KindGroup {
			out = append(out, collectFields(joinKey(prefix, attr.Key), value.Group())...)
			continue
		}
		out = append(out, field{key: joinKey(prefix, attr.Key), value: value})
	}
	return out
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	}
	return prefix + "." + key
}

func plainValue(v slog.Value) string {
	if v.Kind() == slog.KindAny {
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
	}
	return v.String()
}

func quotedValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindTime:
		s = v.Time().UTC().Format(time.RFC3339)
	case slog.KindFloat64:
		s = strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	default:
		s = plainValue(v)
	}
	if s == "" || strings.ContainsAny(s, " \t\n\r=\"") {
		return strconv.Quote(s)
	}
	return s
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}
