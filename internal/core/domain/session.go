package domain

import "time"

// SessionKind distinguishes sessions that expose a POSIX shell from monitor consoles.
type SessionKind string

const (
	// SessionKindShell is a shell whose exit codes can be queried with `echo $?`.
	SessionKindShell SessionKind = "shell"
	// SessionKindMonitor is a console that has no notion of exit codes.
	SessionKindMonitor SessionKind = "monitor"
)

const (
	// DefaultResultTimeout bounds each wait of the exit-code capture protocol.
	DefaultResultTimeout = 10 * time.Second
	// DefaultRespawnLimit is how many times a session process is (re)spawned before giving up.
	DefaultRespawnLimit = 3
)

// SessionConfig describes a persistent interactive process and the bootstrap
// task that initializes it.
type SessionConfig struct {
	Name   string
	Spawn  []string
	Kind   SessionKind
	Prompt string

	// Init runs as the session's bootstrap task.
	Init      []Command
	InitSleep time.Duration

	// Timeout is the default wait for commands that do not set one. Zero waits indefinitely.
	Timeout       time.Duration
	ResultTimeout time.Duration
	RespawnLimit  int
}

// ChecksExitCodes reports whether the exit-code capture protocol applies to the session.
func (c *SessionConfig) ChecksExitCodes() bool {
	return c.Kind != SessionKindMonitor
}

// BootstrapTask returns the synthetic task that runs the session's init commands.
// Every task targeting the session implicitly requires it.
func (c *SessionConfig) BootstrapTask() *Task {
	t := NewTask(c.Name, c.Name, c.Init...)
	t.Sleep = c.InitSleep
	return t
}

// WithDefaults fills unset limits with their defaults.
func (c SessionConfig) WithDefaults() SessionConfig {
	if c.Kind == "" {
		c.Kind = SessionKindShell
	}
	if c.Prompt == "" {
		c.Prompt = "#"
	}
	if c.ResultTimeout <= 0 {
		c.ResultTimeout = DefaultResultTimeout
	}
	if c.RespawnLimit <= 0 {
		c.RespawnLimit = DefaultRespawnLimit
	}
	return c
}

// DefaultSessions returns the sessions of the emulator pipeline: a host shell
// that starts the emulator, the emulator monitor, and the emulated target console.
func DefaultSessions() []SessionConfig {
	fiveSeconds := Ptr(5 * time.Second)
	return []SessionConfig{
		{
			Name:   "host",
			Spawn:  []string{"sh"},
			Kind:   SessionKindShell,
			Prompt: "#",
			Init: []Command{
				{Expect: []string{"#"}, Timeout: fiveSeconds},
				{Send: []string{"screen -d -m renode --disable-xwt"}, Expect: []string{"#"}, Timeout: fiveSeconds},
			},
			InitSleep: 5 * time.Second,
		},
		{
			Name:   "renode",
			Spawn:  []string{"telnet", "127.0.0.1", "1234"},
			Kind:   SessionKindMonitor,
			Prompt: `\([\-a-zA-Z\d\s]+\)`,
			Init: []Command{
				{Expect: []string{`\(monitor\)`}, Timeout: fiveSeconds},
				{
					Send:    []string{`emulation CreateServerSocketTerminal 3456 "term"`},
					Expect:  []string{`\(monitor\)`},
					Timeout: fiveSeconds,
				},
			},
			InitSleep: 3 * time.Second,
		},
		{
			Name:   "target",
			Spawn:  []string{"telnet", "127.0.0.1", "3456"},
			Kind:   SessionKindShell,
			Prompt: "#",
		},
	}
}
