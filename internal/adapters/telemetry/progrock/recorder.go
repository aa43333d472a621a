// Package progrock records task progress as progrock status updates, one
// vertex per task, and streams them to the attached journals.
package progrock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/rig/internal/core/ports"
)

// Recorder implements the ports.Telemetry interface using the vito/progrock library.
type Recorder struct {
	w   *fanout
	rec *progrock.Recorder

	mu   sync.Mutex
	seen map[string]int
}

var _ ports.Telemetry = (*Recorder)(nil)

// New creates a new Recorder. Updates are dropped until a journal is attached.
func New() *Recorder {
	return NewRecorder()
}

// NewRecorder creates a new Recorder streaming to the given writers.
func NewRecorder(writers ...progrock.Writer) *Recorder {
	w := &fanout{writers: writers}
	return &Recorder{
		w:    w,
		rec:  progrock.NewRecorder(w),
		seen: make(map[string]int),
	}
}

// Journal streams every later status update to w, one JSON object per line.
func (r *Recorder) Journal(w io.Writer) {
	r.w.add(NewJournal(w))
}

// Record starts a vertex for name. A name recorded again gets a fresh vertex.
func (r *Recorder) Record(ctx context.Context, name string) (context.Context, ports.Vertex) {
	v := r.rec.Vertex(r.digest(name), name)
	return ctx, &Vertex{vertex: v}
}

func (r *Recorder) digest(name string) digest.Digest {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.seen[name]
	r.seen[name] = n + 1
	if n == 0 {
		return digest.FromString(name)
	}
	return digest.FromString(fmt.Sprintf("%s#%d", name, n))
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	return r.w.Close()
}

// fanout is a progrock.Writer copying each update to every attached writer.
type fanout struct {
	mu      sync.Mutex
	writers []progrock.Writer
}

func (f *fanout) add(w progrock.Writer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writers = append(f.writers, w)
}

func (f *fanout) WriteStatus(update *progrock.StatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs error
	for _, w := range f.writers {
		errs = errors.Join(errs, w.WriteStatus(update))
	}
	return errs
}

func (f *fanout) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs error
	for _, w := range f.writers {
		errs = errors.Join(errs, w.Close())
	}
	return errs
}
