package transport

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Sink is the configurable text output every diagnostic message writes
// to. It defaults to standard output and can be swapped at runtime.
type Sink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewSink() *Sink {
	return &Sink{w: os.Stdout}
}

func (s *Sink) Set(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
}

func (s *Sink) Printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.w, format+"\n", args...)
}
