// Package dispatcher orders the registered tasks and replays them against
// their sessions, applying the fail-fast and deferred failure policies.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"go.trai.ch/rig/internal/core/domain"
	"go.trai.ch/rig/internal/core/ports"
	"go.trai.ch/zerr"
)

// Table is the state of a run: registered tasks and sessions, global
// variables and per-task override variables.
type Table struct {
	Tasks     map[domain.InternedString]*domain.Task
	Sessions  map[domain.InternedString]ports.Session
	Vars      map[string]string
	Overrides map[domain.InternedString]map[string]string
}

func newTable() Table {
	return Table{
		Tasks:     make(map[domain.InternedString]*domain.Task),
		Sessions:  make(map[domain.InternedString]ports.Session),
		Vars:      make(map[string]string),
		Overrides: make(map[domain.InternedString]map[string]string),
	}
}

// Dispatcher owns a Table and evaluates it. Tasks run one at a time.
type Dispatcher struct {
	table     Table
	logger    ports.Logger
	telemetry ports.Telemetry
	out       io.Writer
}

// New creates a Dispatcher writing the transcript of echoed commands to out.
func New(logger ports.Logger, telemetry ports.Telemetry, out io.Writer) *Dispatcher {
	if out == nil {
		out = io.Discard
	}
	return &Dispatcher{
		table:     newTable(),
		logger:    logger,
		telemetry: telemetry,
		out:       out,
	}
}

// Table returns the dispatcher's run state.
func (d *Dispatcher) Table() *Table {
	return &d.table
}

// AddSession registers a session and its bootstrap task.
func (d *Dispatcher) AddSession(sess ports.Session) error {
	cfg := sess.Config()
	name := domain.NewInternedString(cfg.Name)
	if _, ok := d.table.Sessions[name]; ok {
		return zerr.With(domain.ErrDuplicateSession, "session", cfg.Name)
	}
	d.table.Sessions[name] = sess
	d.table.Tasks[name] = cfg.BootstrapTask()
	return nil
}

// AddTask registers a task, replacing any task of the same name.
// A nil task is ignored.
func (d *Dispatcher) AddTask(task *domain.Task) error {
	if task == nil {
		return nil
	}
	if task.Name.String() == "" {
		return zerr.With(domain.ErrMalformedTask, "reason", "task has no name")
	}
	if task.Session.String() == "" {
		task.Session = domain.NewInternedString(domain.DefaultSession)
	}
	d.table.Tasks[task.Name] = task
	return nil
}

// EnableTask sets whether the named task runs.
func (d *Dispatcher) EnableTask(name string, enabled bool) error {
	task, ok := d.table.Tasks[domain.NewInternedString(name)]
	if !ok {
		return zerr.With(domain.ErrTaskNotFound, "task", name)
	}
	task.Disabled = !enabled
	return nil
}

// DeleteTask removes the named task.
func (d *Dispatcher) DeleteTask(name string) error {
	key := domain.NewInternedString(name)
	if _, ok := d.table.Tasks[key]; !ok {
		return zerr.With(domain.ErrTaskNotFound, "task", name)
	}
	delete(d.table.Tasks, key)
	delete(d.table.Overrides, key)
	return nil
}

// SetVar sets a global variable.
func (d *Dispatcher) SetVar(key, value string) {
	d.table.Vars[key] = value
}

// SetTaskVar sets an override variable for the named task. Overrides take
// precedence over the task's own variables.
func (d *Dispatcher) SetTaskVar(task, key, value string) {
	name := domain.NewInternedString(task)
	if d.table.Overrides[name] == nil {
		d.table.Overrides[name] = make(map[string]string)
	}
	d.table.Overrides[name][key] = value
}

// Task returns the named task.
func (d *Dispatcher) Task(name domain.InternedString) (*domain.Task, bool) {
	task, ok := d.table.Tasks[name]
	return task, ok
}

// Plan returns the execution order of the registered tasks, disabled ones included.
func (d *Dispatcher) Plan() ([]domain.InternedString, error) {
	return domain.Sort(d.table.Tasks)
}

// Evaluate runs every enabled task in dependency order and returns the
// per-task results. Configuration errors are reported before any session
// is touched. The first failing task ends the run with a *domain.ExitError.
func (d *Dispatcher) Evaluate(ctx context.Context) (*domain.Report, error) {
	order, err := d.Plan()
	if err != nil {
		return nil, err
	}

	prepared, err := d.prepare(order)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{Order: order}
	for _, name := range order {
		task := prepared[name]
		if task.Disabled {
			d.logger.Info(fmt.Sprintf("skipping disabled task %s", name.String()))
			report.Tasks = append(report.Tasks, domain.TaskResult{Name: name, Status: domain.VertexStatusSkipped})
			continue
		}

		result, err := d.runTask(ctx, task)
		report.Tasks = append(report.Tasks, result)
		if err != nil {
			return report, err
		}

		if err := sleep(ctx, task.Sleep); err != nil {
			return report, err
		}
	}

	return report, nil
}

// prepare resolves the variables of every enabled task into a copy and
// checks that its session is registered.
func (d *Dispatcher) prepare(order []domain.InternedString) (map[domain.InternedString]*domain.Task, error) {
	prepared := make(map[domain.InternedString]*domain.Task, len(order))
	for _, name := range order {
		task := d.table.Tasks[name]
		if task.Disabled {
			prepared[name] = task
			continue
		}

		if _, ok := d.table.Sessions[task.Session]; !ok {
			return nil, zerr.With(zerr.With(domain.ErrUnknownSession, "task", name.String()), "session", task.Session.String())
		}

		resolved := *task
		resolved.Commands = slices.Clone(task.Commands)
		if err := resolved.ResolveVars(d.table.Vars, d.table.Overrides[name]); err != nil {
			return nil, err
		}
		prepared[name] = &resolved
	}
	return prepared, nil
}

func (d *Dispatcher) runTask(ctx context.Context, task *domain.Task) (domain.TaskResult, error) {
	result := domain.TaskResult{Name: task.Name, Status: domain.VertexStatusRunning}

	sess := d.table.Sessions[task.Session]
	cfg := sess.Config()

	ctx, vertex := d.telemetry.Record(ctx, task.Name.String())
	d.logger.Info(fmt.Sprintf("running task %s in session %s", task.Name.String(), task.Session.String()))

	steps := make([]domain.Step, len(task.Commands))
	for i := range task.Commands {
		steps[i] = task.Commands[i].Resolve(task, cfg, i)
	}
	sess.Enqueue(steps...)

	failed := 0
	for code, err := range sess.Drain(ctx, io.MultiWriter(d.out, vertex.Stdout())) {
		if err != nil {
			result.Status = domain.VertexStatusFailed
			result.Err = err
			vertex.Log(domain.LogLevelError, err.Error())
			vertex.Complete(err)
			return result, err
		}

		result.Codes = append(result.Codes, code)
		if code == 0 {
			continue
		}
		failed = code
		vertex.Log(domain.LogLevelWarn, fmt.Sprintf("command %d returned %d", len(result.Codes)-1, code))
		if task.FailFast {
			break
		}
	}

	if failed != 0 {
		err := &domain.ExitError{Task: task.Name, Code: failed}
		result.Status = domain.VertexStatusFailed
		result.Err = err
		vertex.Complete(err)
		return result, err
	}

	result.Status = domain.VertexStatusCompleted
	vertex.Complete(nil)
	return result, nil
}

// Close terminates every session process.
func (d *Dispatcher) Close() error {
	var errs error
	for name, sess := range d.table.Sessions {
		if err := sess.Close(); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, fmt.Sprintf("failed to close session %s", name.String())))
		}
	}
	return errs
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
