// Package logfile is a slog handler appending newline-delimited
// "timestamp LEVEL: message" records to a file. The file is opened
// lazily on the first record and each append is a single serialized
// write, so the handler needs no explicit teardown.
package logfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

type Handler struct {
	path  string
	level slog.Level
	clk   clock.Clock

	attrs []slog.Attr
	group string

	// shared between handlers derived via WithAttrs/WithGroup.
	mu *sync.Mutex
	f  **os.File
}

var _ slog.Handler = (*Handler)(nil)

func New(path string, level slog.Level, clk clock.Clock) *Handler {
	var f *os.File
	return &Handler{
		path:  path,
		level: level,
		clk:   clk,
		mu:    &sync.Mutex{},
		f:     &f,
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *Handler) Handle(_ context.Context, rec slog.Record) error {
	var sb strings.Builder

	sb.WriteString(h.clk.Now().UTC().Format(time.RFC3339))
	sb.WriteByte(' ')
	sb.WriteString(rec.Level.String())
	sb.WriteString(": ")
	sb.WriteString(rec.Message)

	for _, attr := range h.attrs {
		h.writeAttr(&sb, attr)
	}
	rec.Attrs(func(attr slog.Attr) bool {
		h.writeAttr(&sb, attr)
		return true
	})

	sb.WriteByte('\n')

	return h.append(sb.String())
}

func (h *Handler) writeAttr(sb *strings.Builder, attr slog.Attr) {
	sb.WriteByte(' ')
	if h.group != "" {
		sb.WriteString(h.group)
		sb.WriteByte('.')
	}
	sb.WriteString(attr.Key)
	sb.WriteByte('=')
	fmt.Fprint(sb, attr.Value.Resolve())
}

func (h *Handler) append(line string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if *h.f == nil {
		f, err := os.OpenFile(h.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Wrap(err, "opening log file")
		}
		*h.f = f
	}

	_, err := (*h.f).WriteString(line)
	return errors.Wrap(err, "appending log record")
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	h2 := *h
	h2.group = name
	if h.group != "" {
		h2.group = h.group + "." + name
	}
	return &h2
}
