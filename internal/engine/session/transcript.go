package session

import (
	"bytes"
	"io"
)

// Transcript writes session output with carriage returns removed.
type Transcript struct {
	w io.Writer
}

// NewTranscript returns a Transcript writing to w. A nil w discards output.
func NewTranscript(w io.Writer) *Transcript {
	if w == nil {
		w = io.Discard
	}
	return &Transcript{w: w}
}

func (t *Transcript) Write(p []byte) (int, error) {
	if _, err := t.w.Write(bytes.ReplaceAll(p, []byte{'\r'}, nil)); err != nil {
		return 0, err
	}
	return len(p), nil
}
