package shell_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/rig/internal/adapters/shell"
	"go.trai.ch/rig/internal/core/ports"
	"go.trai.ch/rig/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newSpawner(t *testing.T, env ...string) *shell.Spawner {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	return shell.NewSpawner(log, env...)
}

// readUntil reads from proc until want appears or the deadline passes.
func readUntil(t *testing.T, proc ports.Process, want string) string {
	t.Helper()
	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := proc.Read(buf)
			out.Write(buf[:n])
			if strings.Contains(out.String(), want) {
				done <- nil
				return
			}
			if err != nil {
				done <- err
				return
			}
		}
	}()

	select {
	case err := <-done:
		require.NoError(t, err, "output so far: %q", out.String())
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
	return out.String()
}

func TestSpawner_ReadReturnsEOFAfterExit(t *testing.T) {
	proc, err := newSpawner(t).Spawn(context.Background(), []string{"sh", "-c", "echo line1; echo line2"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = proc.Close() })

	output, err := io.ReadAll(proc)

	require.NoError(t, err, "EIO from the terminal must surface as io.EOF")
	assert.Contains(t, string(output), "line1\r\nline2")
}

func TestSpawner_InteractiveShell(t *testing.T) {
	proc, err := newSpawner(t, "PS1=# ").Spawn(context.Background(), []string{"sh", "-i"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = proc.Close() })

	readUntil(t, proc, "#")

	_, err = io.WriteString(proc, "echo RESULT:$((40 + 2))\n")
	require.NoError(t, err)

	readUntil(t, proc, "RESULT:42")
}

func TestSpawner_CloseKillsProcess(t *testing.T) {
	proc, err := newSpawner(t).Spawn(context.Background(), []string{"sleep", "60"})
	require.NoError(t, err)

	closed := make(chan error, 1)
	go func() { closed <- proc.Close() }()

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}
	require.NoError(t, proc.Close(), "Close is idempotent")
}

func TestSpawner_EnvironmentIsFiltered(t *testing.T) {
	t.Setenv("RIG_TEST_SECRET", "leaked")

	proc, err := newSpawner(t, "RIG_TEST_VAR=visible").Spawn(context.Background(),
		[]string{"sh", "-c", "echo ${RIG_TEST_SECRET:-unset} $RIG_TEST_VAR"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = proc.Close() })

	output, err := io.ReadAll(proc)
	require.NoError(t, err)
	assert.Contains(t, string(output), "unset visible")
}

func TestSpawner_PathOverride(t *testing.T) {
	binDir := t.TempDir()
	toolPath := filepath.Join(binDir, "rig-test-tool")
	//nolint:gosec // Test requires executable file
	require.NoError(t, os.WriteFile(toolPath, []byte("#!/bin/sh\necho success\n"), 0o700))

	proc, err := newSpawner(t, "PATH="+binDir).Spawn(context.Background(), []string{"rig-test-tool"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = proc.Close() })

	output, err := io.ReadAll(proc)
	require.NoError(t, err)
	assert.Contains(t, string(output), "success")
}

func TestSpawner_Errors(t *testing.T) {
	spawner := newSpawner(t)

	_, err := spawner.Spawn(context.Background(), nil)
	require.ErrorContains(t, err, "session spawn command is empty")

	_, err = spawner.Spawn(context.Background(), []string{"/nonexistent/rig-binary"})
	require.ErrorContains(t, err, "failed to start pty")
}
