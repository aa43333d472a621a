package session

import (
	"go.trai.ch/rig/internal/core/domain"
	"go.trai.ch/rig/internal/core/ports"
)

// Factory creates sessions that share a spawner and a logger.
type Factory struct {
	spawner ports.Spawner
	logger  ports.Logger
	opts    []Option
}

var _ ports.SessionFactory = (*Factory)(nil)

// NewFactory creates a new Factory.
func NewFactory(spawner ports.Spawner, logger ports.Logger, opts ...Option) *Factory {
	return &Factory{spawner: spawner, logger: logger, opts: opts}
}

// NewSession creates a session for cfg.
func (f *Factory) NewSession(cfg domain.SessionConfig) ports.Session {
	return New(cfg, f.spawner, f.logger, f.opts...)
}
