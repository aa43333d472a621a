package ports

import "go.trai.ch/rig/internal/core/domain"

// TaskLoader defines the interface for loading task and session definitions.
//
//go:generate go run go.uber.org/mock/mockgen -source=task_loader.go -destination=mocks/mock_task_loader.go -package=mocks
type TaskLoader interface {
	// LoadTasks reads every task file under the given directories.
	// A task defined in a later directory replaces one with the same name from an earlier one.
	LoadTasks(dirs []string) ([]*domain.Task, error)

	// LoadSessions reads session definitions from the given file.
	LoadSessions(path string) ([]domain.SessionConfig, error)

	// LoadTestTask reads a single test body. A body that is not a YAML task is
	// taken as one command per line.
	LoadTestTask(path string) (*domain.Task, error)
}
