package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

var errWriterClosed = errors.New("logger: writer closed")

// op is one request to the writer goroutine: a line to write, or a flush
// barrier when ack is set.
type op struct {
	line []byte
	ack  chan error
}

// asyncWriter moves sink I/O off the logging goroutines. A single loop owns
// the buffered sinks, so they need no locking of their own.
type asyncWriter struct {
	ops  chan op
	done chan struct{}

	mu     sync.RWMutex
	closed bool

	errMu sync.Mutex
	err   error

	sinks []*bufio.Writer
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &asyncWriter{
		ops:  make(chan op, 256),
		done: make(chan struct{}),
	}
	for _, out := range writers {
		if out != nil {
			w.sinks = append(w.sinks, bufio.NewWriterSize(out, bufSize))
		}
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for o := range w.ops {
		if o.ack != nil {
			o.ack <- w.flushSinks()
			continue
		}
		for _, s := range w.sinks {
			if _, err := s.Write(o.line); err != nil {
				w.fail(err)
				continue
			}
			if err := s.Flush(); err != nil {
				w.fail(err)
			}
		}
	}
	w.fail(w.flushSinks())
}

func (w *asyncWriter) flushSinks() error {
	var errs []error
	for _, s := range w.sinks {
		errs = append(errs, s.Flush())
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) fail(err error) {
	if err == nil {
		return
	}
	w.errMu.Lock()
	defer w.errMu.Unlock()
	if w.err == nil {
		w.err = err
	}
}

// Err returns the first sink error seen.
func (w *asyncWriter) Err() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}

// send enqueues o unless the writer is closed. It blocks while the queue is
// full instead of dropping lines.
func (w *asyncWriter) send(o op) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false
	}
	w.ops <- o
	return true
}

// Write queues a copy of p.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.Err(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	if !w.send(op{line: append([]byte(nil), p...)}) {
		return errWriterClosed
	}
	return nil
}

// Flush returns once every line queued before it reached the sinks.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	if !w.send(op{ack: ack}) {
		return w.Err()
	}
	if err := <-ack; err != nil {
		return err
	}
	return w.Err()
}

// Close drains the queue and returns the first sink error.
func (w *asyncWriter) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.ops)
	}
	w.mu.Unlock()
	<-w.done
	return w.Err()
}
