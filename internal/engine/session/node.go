package session

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/rig/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/rig/internal/adapters/shell"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/rig/internal/core/ports"
)

// NodeID is the unique identifier for the session factory Graft node.
const NodeID graft.ID = "engine.session"

func init() {
	graft.Register(graft.Node[ports.SessionFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			shell.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (ports.SessionFactory, error) {
			spawner, err := graft.Dep[ports.Spawner](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewFactory(spawner, log), nil
		},
	})
}
