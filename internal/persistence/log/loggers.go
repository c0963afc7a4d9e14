package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"vacuumsim.ai/internal/sim/world"
)

// JSONLZstdWriter appends JSON lines to hourly rotated zstd files named
// <baseDir>/<prefix>-YYYY-MM-DD-HH.jsonl.zst.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string) *JSONLZstdWriter {
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
		now:     time.Now,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	hour := w.now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Flush pushes buffered lines into the current zstd frame.
func (w *JSONLZstdWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return nil
	}
	if err := w.w.Flush(); err != nil {
		return err
	}
	return w.enc.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := w.pathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curHour = hour
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	w.curHour = ""
	return err1
}

func (w *JSONLZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// TickLogger writes one JSONL entry per tick (compressed).
type TickLogger struct{ w *JSONLZstdWriter }

func NewTickLogger(worldDir string) *TickLogger {
	return &TickLogger{w: NewJSONLZstdWriter(filepath.Join(worldDir, "events"), "events")}
}

func (l *TickLogger) WriteTick(v world.TickLogEntry) error { return l.w.Write(v) }
func (l *TickLogger) Flush() error                         { return l.w.Flush() }
func (l *TickLogger) Close() error                         { return l.w.Close() }

// EventLogger writes the zone/debris event stream (compressed), one line per event.
type EventLogger struct{ w *JSONLZstdWriter }

func NewEventLogger(worldDir string) *EventLogger {
	return &EventLogger{w: NewJSONLZstdWriter(filepath.Join(worldDir, "events"), "zone_events")}
}

func (l *EventLogger) WriteEvent(ev world.Event) error { return l.w.Write(ev) }
func (l *EventLogger) Flush() error                    { return l.w.Flush() }
func (l *EventLogger) Close() error                    { return l.w.Close() }
