// Package app implements the application layer for rig.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"dario.cat/mergo"
	"go.trai.ch/rig/internal/core/domain"
	"go.trai.ch/rig/internal/core/ports"
	"go.trai.ch/rig/internal/engine/dispatcher"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	loader    ports.TaskLoader
	sessions  ports.SessionFactory
	telemetry ports.Telemetry
	logger    ports.Logger
	out       io.Writer
}

// New creates a new App instance writing the transcript to stdout.
func New(
	loader ports.TaskLoader,
	sessions ports.SessionFactory,
	telemetry ports.Telemetry,
	log ports.Logger,
) *App {
	return &App{
		loader:    loader,
		sessions:  sessions,
		telemetry: telemetry,
		logger:    log,
		out:       os.Stdout,
	}
}

// WithOutput sets the writer receiving the transcript of echoed commands.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// RunOptions configuration for the Run and Plan methods.
type RunOptions struct {
	// TaskDirs are searched for task files. Later directories override earlier ones.
	TaskDirs []string
	// SessionsFile adds sessions or overrides fields of default ones by name.
	SessionsFile      string
	NoDefaultSessions bool
	// TestFile is a test body added as one more task.
	TestFile string
	// ProgressFile receives the progress journal of a run, when set.
	ProgressFile string

	// Vars are global KEY=VALUE assignments.
	Vars []string
	// Sets are per-task TASK.KEY=VALUE assignments.
	Sets []string

	Enable  []string
	Disable []string
	Delete  []string
}

// PlannedTask is one entry of the execution order.
type PlannedTask struct {
	Name     string
	Disabled bool
}

// Run loads the tasks and sessions described by opts and evaluates them.
// A command failure is returned as a *domain.ExitError.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	d, err := a.build(opts)
	if err != nil {
		return err
	}

	if opts.ProgressFile != "" {
		// #nosec G304 -- path is provided by the user
		f, err := os.Create(opts.ProgressFile)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to create progress file"), "file", opts.ProgressFile)
		}
		defer func() {
			if err := f.Close(); err != nil {
				a.logger.Warn(fmt.Sprintf("failed to close progress file: %v", err))
			}
		}()
		a.telemetry.Journal(f)
	}

	defer func() {
		if err := d.Close(); err != nil {
			a.logger.Warn(fmt.Sprintf("failed to close sessions: %v", err))
		}
		if err := a.telemetry.Close(); err != nil {
			a.logger.Warn(fmt.Sprintf("failed to close telemetry: %v", err))
		}
	}()

	report, err := d.Evaluate(ctx)
	if report != nil {
		a.summarize(report)
	}
	return err
}

// Plan returns the execution order without starting any session.
func (a *App) Plan(_ context.Context, opts RunOptions) ([]PlannedTask, error) {
	d, err := a.build(opts)
	if err != nil {
		return nil, err
	}

	order, err := d.Plan()
	if err != nil {
		return nil, err
	}

	planned := make([]PlannedTask, len(order))
	for i, name := range order {
		task, _ := d.Task(name)
		planned[i] = PlannedTask{Name: name.String(), Disabled: task.Disabled}
	}
	return planned, nil
}

func (a *App) build(opts RunOptions) (*dispatcher.Dispatcher, error) {
	d := dispatcher.New(a.logger, a.telemetry, a.out)

	sessions, err := a.loadSessions(opts)
	if err != nil {
		return nil, err
	}
	for _, cfg := range sessions {
		if err := d.AddSession(a.sessions.NewSession(cfg)); err != nil {
			return nil, err
		}
	}

	if len(opts.TaskDirs) > 0 {
		tasks, err := a.loader.LoadTasks(opts.TaskDirs)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to load tasks")
		}
		for _, task := range tasks {
			if err := d.AddTask(task); err != nil {
				return nil, err
			}
		}
	}

	if opts.TestFile != "" {
		task, err := a.loader.LoadTestTask(opts.TestFile)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to load test")
		}
		if err := d.AddTask(task); err != nil {
			return nil, err
		}
	}

	if err := applyVars(d, opts); err != nil {
		return nil, err
	}

	if err := applySelection(d, opts); err != nil {
		return nil, err
	}

	return d, nil
}

// loadSessions returns the default sessions overlaid with the sessions file.
// A file entry named like a default session overrides only the fields it sets.
func (a *App) loadSessions(opts RunOptions) ([]domain.SessionConfig, error) {
	var sessions []domain.SessionConfig
	if !opts.NoDefaultSessions {
		sessions = domain.DefaultSessions()
	}
	if opts.SessionsFile == "" {
		return sessions, nil
	}

	loaded, err := a.loader.LoadSessions(opts.SessionsFile)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load sessions")
	}

	index := make(map[string]int, len(sessions))
	for i, cfg := range sessions {
		index[cfg.Name] = i
	}
	for _, cfg := range loaded {
		i, ok := index[cfg.Name]
		if !ok {
			index[cfg.Name] = len(sessions)
			sessions = append(sessions, cfg)
			continue
		}
		if err := mergo.Merge(&sessions[i], cfg, mergo.WithOverride); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to merge session"), "session", cfg.Name)
		}
	}

	for _, cfg := range sessions {
		if len(cfg.Spawn) == 0 {
			return nil, zerr.With(zerr.With(domain.ErrEmptySpawnCommand, "session", cfg.Name), "file", opts.SessionsFile)
		}
	}
	return sessions, nil
}

func applyVars(d *dispatcher.Dispatcher, opts RunOptions) error {
	for _, assignment := range opts.Vars {
		key, value, err := parseAssignment(assignment)
		if err != nil {
			return err
		}
		d.SetVar(key, value)
	}

	for _, assignment := range opts.Sets {
		target, value, err := parseAssignment(assignment)
		if err != nil {
			return err
		}
		task, key, ok := strings.Cut(target, ".")
		if !ok || task == "" || key == "" {
			return zerr.With(domain.ErrInvalidAssignment, "assignment", assignment)
		}
		d.SetTaskVar(task, key, value)
	}
	return nil
}

// applySelection deletes, disables and then enables tasks, so enabling wins
// over disabling the same task.
func applySelection(d *dispatcher.Dispatcher, opts RunOptions) error {
	for _, name := range opts.Delete {
		if err := d.DeleteTask(name); err != nil {
			return err
		}
	}
	for _, name := range opts.Disable {
		if err := d.EnableTask(name, false); err != nil {
			return err
		}
	}
	for _, name := range opts.Enable {
		if err := d.EnableTask(name, true); err != nil {
			return err
		}
	}
	return nil
}

func parseAssignment(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return "", "", zerr.With(domain.ErrInvalidAssignment, "assignment", s)
	}
	return key, value, nil
}

func (a *App) summarize(report *domain.Report) {
	var completed, skipped int
	for _, res := range report.Tasks {
		switch res.Status {
		case domain.VertexStatusCompleted:
			completed++
		case domain.VertexStatusSkipped:
			skipped++
		}
	}
	a.logger.Info(fmt.Sprintf("%d of %d tasks completed, %d skipped", completed, len(report.Order), skipped))
}
