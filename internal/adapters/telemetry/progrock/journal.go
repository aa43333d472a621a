package progrock

import (
	"io"
	"sync"

	"github.com/vito/progrock"
	"go.trai.ch/zerr"
	"google.golang.org/protobuf/encoding/protojson"
)

// Journal is a progrock.Writer encoding each status update as a line of JSON.
// It does not own the underlying writer.
type Journal struct {
	mu sync.Mutex
	w  io.Writer
}

// NewJournal creates a Journal writing to w.
func NewJournal(w io.Writer) *Journal {
	return &Journal{w: w}
}

// WriteStatus appends update to the journal.
func (j *Journal) WriteStatus(update *progrock.StatusUpdate) error {
	data, err := protojson.Marshal(update)
	if err != nil {
		return zerr.Wrap(err, "failed to encode status update")
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.w.Write(append(data, '\n')); err != nil {
		return zerr.Wrap(err, "failed to write status update")
	}
	return nil
}

// Close is a no-op; the owner of the underlying writer closes it.
func (j *Journal) Close() error {
	return nil
}
