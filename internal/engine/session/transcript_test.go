package session_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/rig/internal/engine/session"
)

func TestTranscript_StripsCarriageReturns(t *testing.T) {
	var buf bytes.Buffer
	tr := session.NewTranscript(&buf)

	n, err := tr.Write([]byte("line1\r\nline2\r\n\r"))

	require.NoError(t, err)
	assert.Equal(t, 15, n)
	assert.Equal(t, "line1\nline2\n", buf.String())
}

func TestTranscript_NilWriterDiscards(t *testing.T) {
	tr := session.NewTranscript(nil)

	n, err := tr.Write([]byte("ignored\r\n"))

	require.NoError(t, err)
	assert.Equal(t, 9, n)
}
