package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

var levelTags = map[slog.Level]string{
	LevelTrace:      "[TRACE] ",
	slog.LevelDebug: "[DEBUG] ",
	slog.LevelInfo:  "[INFO]  ",
	slog.LevelWarn:  "[WARN]  ",
	slog.LevelError: "[ERROR] ",
}

// CompactHandler writes one line per record for console output:
//
//	[LEVEL] HH:MM:SS component: message | key=value key=value
//
// The component attribute becomes the message prefix, table paths are shown
// by base name and run ids are shortened.
type CompactHandler struct {
	level     slog.Leveler
	mu        *sync.Mutex
	out       io.Writer
	component string
	attrs     []slog.Attr
	prefix    string // dotted group path applied to keys
}

// NewCompactHandler creates a compact console handler. A nil opts logs at
// info level.
func NewCompactHandler(w io.Writer, opts *slog.HandlerOptions) *CompactHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &CompactHandler{level: level, mu: &sync.Mutex{}, out: w}
}

func (h *CompactHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *CompactHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	if tag, ok := levelTags[r.Level]; ok {
		b.WriteString(tag)
	} else {
		b.WriteString("[" + r.Level.String() + "] ")
	}
	if !r.Time.IsZero() {
		b.WriteString(r.Time.Format(time.TimeOnly))
		b.WriteByte(' ')
	}

	component := h.component
	var attrs []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" && h.prefix == "" {
			component = a.Value.String()
			return true
		}
		a.Key = h.prefix + a.Key
		attrs = append(attrs, a)
		return true
	})

	if component != "" {
		b.WriteString(component)
		b.WriteString(": ")
	}
	b.WriteString(r.Message)

	sep := " | "
	for _, list := range [][]slog.Attr{h.attrs, attrs} {
		for _, a := range list {
			if a.Equal(slog.Attr{}) {
				continue
			}
			b.WriteString(sep)
			sep = " "
			writeAttr(&b, a)
		}
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func writeAttr(b *strings.Builder, a slog.Attr) {
	v := a.Value.Resolve()
	switch a.Key {
	case "runID":
		if s := v.String(); len(s) > 8 {
			b.WriteString("run=" + s[:8])
			return
		}
	case "durationMs":
		b.WriteString("duration=" + v.String() + "ms")
		return
	case "file":
		if v.Kind() == slog.KindString {
			b.WriteString("file=" + quote(filepath.Base(v.String())))
			return
		}
	case "error":
		b.WriteString("error=" + strconv.Quote(v.String()))
		return
	}

	b.WriteString(a.Key)
	b.WriteByte('=')
	switch v.Kind() {
	case slog.KindString:
		b.WriteString(quote(v.String()))
	case slog.KindInt64:
		b.WriteString(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		b.WriteString(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		b.WriteString(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		b.WriteString(strconv.FormatBool(v.Bool()))
	case slog.KindTime:
		b.WriteString(v.Time().Format(time.RFC3339))
	default:
		// durations and arbitrary values
		b.WriteString(quote(v.String()))
	}
}

// quote quotes s when it would not survive as a bare token.
func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=|") {
		return strconv.Quote(s)
	}
	return s
}

func (h *CompactHandler) clone() *CompactHandler {
	c := *h
	c.attrs = append([]slog.Attr(nil), h.attrs...)
	return &c
}

func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	for _, a := range attrs {
		if a.Key == "component" && h.prefix == "" {
			c.component = a.Value.String()
			continue
		}
		a.Key = h.prefix + a.Key
		c.attrs = append(c.attrs, a)
	}
	return c
}

func (h *CompactHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.prefix = h.prefix + name + "."
	return c
}
