// Package domain contains the core domain models for the task graph and the
// interactive sessions tasks are replayed against.
package domain

import "time"

// DefaultSession is the session a task runs in when none is declared.
const DefaultSession = "target"

// Task is a declarative unit of work: an ordered list of commands replayed
// against one session, plus scheduling metadata.
// It uses InternedString for names that are repeated across the graph.
type Task struct {
	Name     InternedString
	Session  InternedString
	Commands []Command

	// Requires lists tasks that must run before this one. A missing entry is fatal.
	Requires []InternedString
	// Before lists tasks this one must precede, if they exist.
	Before []InternedString

	Echo          bool
	FailFast      bool
	CheckExitCode bool
	ShouldFail    bool
	Disabled      bool

	// Timeout is the default wait for the task's commands. Nil inherits the session default.
	Timeout *time.Duration
	// Sleep is the pause after the task completes successfully.
	Sleep time.Duration

	Vars map[string]string
}

// NewTask returns a task bound to the given session with the default policy:
// fail fast and check exit codes.
func NewTask(name, session string, commands ...Command) *Task {
	return &Task{
		Name:          NewInternedString(name),
		Session:       NewInternedString(session),
		Commands:      commands,
		FailFast:      true,
		CheckExitCode: true,
	}
}

// IsBootstrap reports whether the task initializes its own session.
func (t *Task) IsBootstrap() bool {
	return t.Session == t.Name
}

// Requirements returns the mandatory predecessors of the task, including the
// implicit dependency on the bootstrap task of the session it runs in.
func (t *Task) Requirements() []InternedString {
	reqs := make([]InternedString, 0, len(t.Requires)+1)
	reqs = append(reqs, t.Requires...)
	if t.IsBootstrap() {
		return reqs
	}
	for _, r := range reqs {
		if r == t.Session {
			return reqs
		}
	}
	return append(reqs, t.Session)
}

// Command is one interactive step: text to send, patterns to await and the
// exit-code policy. Nil optional fields inherit from the owning task.
type Command struct {
	// Send holds candidate send strings, selected by the index of the pattern
	// that matched during the previous expect.
	Send []string
	// Expect holds regular expressions to wait for. Empty inherits the session prompt.
	Expect []string

	Timeout       *time.Duration
	Echo          *bool
	CheckExitCode *bool
	ShouldFail    *bool
}

// Line returns a command that sends a single line and waits for the session prompt.
func Line(send string) Command {
	return Command{Send: []string{send}}
}

// Step is a Command with every field resolved, ready to be queued on a session.
type Step struct {
	Task  InternedString
	Index int

	Send    []string
	Expect  []string
	Timeout time.Duration

	Echo          bool
	CheckExitCode bool
	ShouldFail    bool
}

// Resolve applies the fixed inheritance order command > task > session and
// returns the resulting step. A zero timeout means the step waits indefinitely.
func (c *Command) Resolve(task *Task, session *SessionConfig, index int) Step {
	step := Step{
		Task:          task.Name,
		Index:         index,
		Send:          c.Send,
		Expect:        c.Expect,
		Echo:          pick(c.Echo, task.Echo),
		CheckExitCode: pick(c.CheckExitCode, task.CheckExitCode),
		ShouldFail:    pick(c.ShouldFail, task.ShouldFail),
	}

	switch {
	case c.Timeout != nil:
		step.Timeout = *c.Timeout
	case task.Timeout != nil:
		step.Timeout = *task.Timeout
	case session != nil:
		step.Timeout = session.Timeout
	}

	if len(step.Expect) == 0 && session != nil {
		step.Expect = []string{session.Prompt}
	}

	return step
}

func pick[T any](v *T, fallback T) T {
	if v != nil {
		return *v
	}
	return fallback
}

// Ptr returns a pointer to v. It is used to set optional command fields.
func Ptr[T any](v T) *T {
	return &v
}
