// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"
)

// Process is a running interactive program. Reads return io.EOF once the
// program has terminated and its output is drained.
type Process interface {
	io.ReadWriter
	// Close terminates the program and releases its terminal.
	Close() error
}

// Spawner starts interactive programs.
//
//go:generate go run go.uber.org/mock/mockgen -source=spawner.go -destination=mocks/mock_spawner.go -package=mocks
type Spawner interface {
	// Spawn starts argv attached to a terminal.
	Spawn(ctx context.Context, argv []string) (Process, error)
}
