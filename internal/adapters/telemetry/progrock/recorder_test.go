package progrock_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vito/progrock"
	rigprogrock "go.trai.ch/rig/internal/adapters/telemetry/progrock"
	"go.trai.ch/rig/internal/core/domain"
	"google.golang.org/protobuf/encoding/protojson"
)

// statusLog is a progrock.Writer collecting every update it receives.
type statusLog struct {
	mu      sync.Mutex
	updates []*progrock.StatusUpdate
	closed  bool
}

func (l *statusLog) WriteStatus(u *progrock.StatusUpdate) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.updates = append(l.updates, u)
	return nil
}

func (l *statusLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

// vertexes returns the last reported state of every vertex, by id.
func (l *statusLog) vertexes() map[string]*progrock.Vertex {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]*progrock.Vertex)
	for _, u := range l.updates {
		for _, v := range u.GetVertexes() {
			out[v.GetId()] = v
		}
	}
	return out
}

func (l *statusLog) output() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var b strings.Builder
	for _, u := range l.updates {
		for _, log := range u.GetLogs() {
			b.Write(log.GetData())
		}
	}
	return b.String()
}

func TestNew(t *testing.T) {
	recorder := rigprogrock.New()
	assert.NotNil(t, recorder)

	_, vertex := recorder.Record(context.Background(), "mount")
	_, err := vertex.Stdout().Write([]byte("# ls\r\n"))
	require.NoError(t, err)
	vertex.Complete(nil)

	require.NoError(t, recorder.Close())
}

func TestRecorder_RecordsTasks(t *testing.T) {
	log := &statusLog{}
	recorder := rigprogrock.NewRecorder(log)
	ctx := context.Background()

	_, ok := recorder.Record(ctx, "mount")
	_, err := ok.Stdout().Write([]byte("mounted\n"))
	require.NoError(t, err)
	ok.Log(domain.LogLevelInfo, "all good")
	ok.Complete(nil)

	_, failed := recorder.Record(ctx, "test")
	failed.Log(domain.LogLevelWarn, "command 0 returned 3")
	failed.Complete(errors.New("task test failed, last exit code: 3"))

	require.NoError(t, recorder.Close())
	assert.True(t, log.closed)

	byName := make(map[string]*progrock.Vertex)
	for _, v := range log.vertexes() {
		byName[v.GetName()] = v
	}
	require.Contains(t, byName, "mount")
	require.Contains(t, byName, "test")
	assert.Empty(t, byName["mount"].GetError())
	assert.Equal(t, "task test failed, last exit code: 3", byName["test"].GetError())

	out := log.output()
	assert.Contains(t, out, "mounted\n")
	assert.Contains(t, out, "[INFO] all good\n")
	assert.Contains(t, out, "[WARN] command 0 returned 3\n")
}

func TestRecorder_RepeatedNameGetsNewVertex(t *testing.T) {
	log := &statusLog{}
	recorder := rigprogrock.NewRecorder(log)

	_, first := recorder.Record(context.Background(), "target")
	first.Complete(nil)
	_, second := recorder.Record(context.Background(), "target")
	second.Complete(nil)

	require.NoError(t, recorder.Close())
	assert.Len(t, log.vertexes(), 2)
}

func TestRecorder_Journal(t *testing.T) {
	recorder := rigprogrock.New()
	ctx := context.Background()

	var journal bytes.Buffer
	recorder.Journal(&journal)

	_, vertex := recorder.Record(ctx, "mount")
	_, err := vertex.Stdout().Write([]byte("mounted\n"))
	require.NoError(t, err)
	vertex.Log(domain.LogLevelError, "session target is unresponsive")
	vertex.Complete(errors.New("session target is unresponsive"))
	require.NoError(t, recorder.Close())

	var names []string
	var out strings.Builder
	for line := range strings.Lines(journal.String()) {
		var update progrock.StatusUpdate
		require.NoError(t, protojson.Unmarshal([]byte(line), &update), "line %q", line)
		for _, v := range update.GetVertexes() {
			names = append(names, v.GetName())
			if v.GetError() != "" {
				assert.Equal(t, "session target is unresponsive", v.GetError())
			}
		}
		for _, log := range update.GetLogs() {
			out.Write(log.GetData())
		}
	}

	assert.Contains(t, names, "mount")
	assert.Contains(t, out.String(), "mounted\n")
	assert.Contains(t, out.String(), "[ERROR] session target is unresponsive\n")
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestJournal_WriteError(t *testing.T) {
	journal := rigprogrock.NewJournal(brokenWriter{})

	err := journal.WriteStatus(&progrock.StatusUpdate{})
	require.ErrorContains(t, err, "failed to write status update")
	assert.NoError(t, journal.Close())
}
