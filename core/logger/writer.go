package logger

import (
	"errors"
	"io"
	"sync"
)

// asyncWriter fans lines out to its sinks from a single goroutine so callers
// never block on slow output unless the queue is full.
type asyncWriter struct {
	lines   chan []byte
	flushes chan chan struct{}
	done    chan struct{}
	once    sync.Once
	sinks   []io.Writer

	state  sync.RWMutex
	closed bool

	mu  sync.Mutex
	err error
}

func newAsyncWriter(sinks []io.Writer) *asyncWriter {
	w := &asyncWriter{
		lines:   make(chan []byte, 256),
		flushes: make(chan chan struct{}),
		done:    make(chan struct{}),
		sinks:   sinks,
	}
	go w.loop()
	return w
}

func (w *asyncWriter) loop() {
	defer close(w.done)
	for {
		select {
		case line, ok := <-w.lines:
			if !ok {
				return
			}
			w.writeAll(line)
		case ack := <-w.flushes:
			for len(w.lines) > 0 {
				w.writeAll(<-w.lines)
			}
			close(ack)
		}
	}
}

func (w *asyncWriter) writeAll(line []byte) {
	for _, s := range w.sinks {
		if _, err := s.Write(line); err != nil {
			w.mu.Lock()
			w.err = errors.Join(w.err, err)
			w.mu.Unlock()
		}
	}
}

// Write queues a copy of p.
func (w *asyncWriter) Write(p []byte) error {
	w.state.RLock()
	defer w.state.RUnlock()
	if w.closed {
		return errors.New("logger: writer closed")
	}
	w.lines <- append([]byte(nil), p...)
	return nil
}

// Flush blocks until every queued line reached the sinks.
func (w *asyncWriter) Flush() {
	ack := make(chan struct{})
	select {
	case w.flushes <- ack:
		<-ack
	case <-w.done:
	}
}

// Close drains the queue and returns accumulated sink errors.
func (w *asyncWriter) Close() error {
	w.once.Do(func() {
		w.Flush()
		w.state.Lock()
		w.closed = true
		close(w.lines)
		w.state.Unlock()
	})
	<-w.done
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}
