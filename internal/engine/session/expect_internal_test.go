package session

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileAll(t *testing.T, exprs ...string) []*regexp.Regexp {
	t.Helper()
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

func TestStream_EarliestMatchWins(t *testing.T) {
	tests := []struct {
		name     string
		buf      string
		patterns []string
		index    int
		consumed string
		rest     string
	}{
		{"earliest position", "foo bar", []string{"bar", "foo"}, 1, "foo", " bar"},
		{"tie goes to lowest index", "foobar", []string{"fo+", "f"}, 0, "foo", "bar"},
		{"single pattern", "login: ", []string{"login:"}, 0, "login:", " "},
		{"prompt after output", "ls\r\na b\r\n# ", []string{"#"}, 0, "ls\r\na b\r\n#", " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStream()
			s.buf = []byte(tt.buf)

			m, ok := s.search(compileAll(t, tt.patterns...))

			require.True(t, ok)
			assert.Equal(t, tt.index, m.index)
			assert.Equal(t, tt.consumed, string(m.consumed))
			assert.Equal(t, tt.rest, string(s.buf))
		})
	}
}

func TestStream_CaptureGroups(t *testing.T) {
	s := newStream()
	s.buf = []byte("echo RESULT:${?}\r\nRESULT:42\r\n# ")

	m, ok := s.search([]*regexp.Regexp{resultPattern})

	require.True(t, ok)
	assert.Equal(t, []string{"RESULT:42", "42"}, m.groups)
	assert.Equal(t, "\r\n# ", string(s.buf))
}

func TestStream_WaitsForOutput(t *testing.T) {
	r, w := io.Pipe()
	s := newStream()
	go s.pump(r)

	go func() {
		_, _ = io.WriteString(w, "booting")
		_, _ = io.WriteString(w, "...\r\n# ")
	}()

	m, err := s.expect(context.Background(), compileAll(t, "#"), time.Second)

	require.NoError(t, err)
	assert.Equal(t, "booting...\r\n#", string(m.consumed))
	_ = w.Close()
}

func TestStream_Deadline(t *testing.T) {
	r, w := io.Pipe()
	defer func() { _ = w.Close() }()
	s := newStream()
	go s.pump(r)
	go func() { _, _ = io.WriteString(w, "partial") }()

	m, err := s.expect(context.Background(), compileAll(t, "never"), 50*time.Millisecond)

	require.ErrorIs(t, err, errDeadline)
	assert.Equal(t, -1, m.index)
	assert.True(t, strings.HasPrefix("partial", string(m.consumed)))
}

func TestStream_EOF(t *testing.T) {
	s := newStream()
	go s.pump(strings.NewReader("bye\r\n"))

	m, err := s.expect(context.Background(), compileAll(t, "#"), time.Second)

	require.ErrorIs(t, err, errProcessExited)
	assert.Equal(t, "bye\r\n", string(m.consumed))
}

// syncBuffer is a bytes.Buffer safe for use by the pump goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStream_TeeEchoesBeforeMatch(t *testing.T) {
	r, w := io.Pipe()
	defer func() { _ = w.Close() }()
	s := newStream()
	var echo syncBuffer
	s.tee(&echo)
	go s.pump(r)

	_, err := io.WriteString(w, "building...\r\n")
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		return echo.String() == "building...\r\n"
	}, time.Second, 5*time.Millisecond, "output is echoed while no pattern has matched")

	s.tee(nil)
	_, err = io.WriteString(w, "hidden")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return strings.HasSuffix(string(s.pending()), "hidden")
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "building...\r\n", echo.String())
}
