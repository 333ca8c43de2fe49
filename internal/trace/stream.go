package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer writes events as they arrive.
type StreamTracer struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
	level  Level
	format Format
	err    error
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	t := &StreamTracer{w: bufio.NewWriter(w), level: level, format: format}
	if c, ok := w.(io.Closer); ok {
		t.closer = c
	}
	return t
}

func (t *StreamTracer) Emit(ev *Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	t.err = WriteEvent(t.w, ev, t.format)
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.w.Flush(); err != nil {
		return err
	}
	return t.err
}

// Close flushes and closes the underlying writer unless it is a standard
// stream.
func (t *StreamTracer) Close() error {
	err := t.Flush()
	if t.closer != nil && !isStdStream(t.closer) {
		if cerr := t.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
