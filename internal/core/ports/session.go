package ports

import (
	"context"
	"io"
	"iter"

	"go.trai.ch/rig/internal/core/domain"
)

// Session is a persistent interactive process with a FIFO queue of steps.
//
//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=mocks/mock_session.go -package=mocks
type Session interface {
	// Config returns the configuration the session was created from.
	Config() *domain.SessionConfig

	// Enqueue appends steps to the session's queue.
	Enqueue(steps ...domain.Step)

	// Drain executes queued steps in order and yields the recorded code of each.
	// Output of steps with echo enabled is copied to sink.
	// The sequence stops after the first error; breaking out of it leaves
	// the remaining steps unexecuted.
	Drain(ctx context.Context, sink io.Writer) iter.Seq2[int, error]

	// Close terminates the session process, if one is running.
	Close() error
}

// SessionFactory creates sessions from their configuration.
type SessionFactory interface {
	NewSession(cfg domain.SessionConfig) Session
}
