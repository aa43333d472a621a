package session

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"sync"
	"time"

	"go.trai.ch/zerr"
)

var (
	errProcessExited = zerr.New("process exited")
	errDeadline      = zerr.New("deadline exceeded")
)

// stream accumulates the output of a process for pattern matching.
// One goroutine appends to it via pump; the session consumes from it.
type stream struct {
	mu      sync.Mutex
	buf     []byte
	err     error
	changed chan struct{}
	// echo receives output as it is read, before it is matched.
	echo io.Writer
}

func newStream() *stream {
	return &stream{changed: make(chan struct{})}
}

// tee sets the writer receiving output as it is read. A nil w stops echoing.
// No write to the previous writer happens after tee returns.
func (s *stream) tee(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.echo = w
}

// pump copies r into the buffer until r returns an error.
func (s *stream) pump(r io.Reader) {
	chunk := make([]byte, 4096)
	for {
		n, err := r.Read(chunk)

		s.mu.Lock()
		if s.echo != nil && n > 0 {
			_, _ = s.echo.Write(chunk[:n])
		}
		s.buf = append(s.buf, chunk[:n]...)
		if err != nil {
			s.err = err
		}
		close(s.changed)
		s.changed = make(chan struct{})
		s.mu.Unlock()

		if err != nil {
			return
		}
	}
}

// match is the outcome of a successful expect.
type match struct {
	index    int
	groups   []string
	consumed []byte
}

// expect blocks until one of patterns matches the buffered output. The match
// that starts earliest wins; ties go to the lowest pattern index. Output up to
// the end of the match is consumed and returned.
// A non-positive timeout waits indefinitely.
func (s *stream) expect(ctx context.Context, patterns []*regexp.Regexp, timeout time.Duration) (match, error) {
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		s.mu.Lock()
		if m, ok := s.search(patterns); ok {
			s.mu.Unlock()
			return m, nil
		}
		if s.err != nil {
			rest := s.buf
			s.buf = nil
			s.mu.Unlock()
			return match{index: -1, consumed: rest}, errProcessExited
		}
		changed := s.changed
		s.mu.Unlock()

		select {
		case <-changed:
		case <-deadline:
			return match{index: -1, consumed: s.pending()}, errDeadline
		case <-ctx.Done():
			return match{index: -1}, ctx.Err()
		}
	}
}

// search must be called with mu held.
func (s *stream) search(patterns []*regexp.Regexp) (match, bool) {
	best := -1
	var loc []int
	for i, re := range patterns {
		l := re.FindSubmatchIndex(s.buf)
		if l == nil {
			continue
		}
		if best < 0 || l[0] < loc[0] {
			best, loc = i, l
		}
	}
	if best < 0 {
		return match{}, false
	}

	groups := make([]string, len(loc)/2)
	for g := range groups {
		if loc[2*g] >= 0 {
			groups[g] = string(s.buf[loc[2*g]:loc[2*g+1]])
		}
	}

	end := loc[1]
	consumed := bytes.Clone(s.buf[:end])
	s.buf = append(s.buf[:0:0], s.buf[end:]...)

	return match{index: best, groups: groups, consumed: consumed}, true
}

// pending returns a copy of the unconsumed output.
func (s *stream) pending() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Clone(s.buf)
}
