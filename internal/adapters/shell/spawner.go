// Package shell starts session processes attached to a pseudo-terminal.
package shell

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"go.trai.ch/rig/internal/core/domain"
	"go.trai.ch/rig/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	defaultRows = 24
	// Wide enough that long commands are not wrapped by the remote terminal.
	defaultCols = 512
)

type ptyProcess struct {
	cmd  *exec.Cmd
	ptmx *os.File
	done chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// Read translates the errors a PTY master returns after the child exits into io.EOF.
func (p *ptyProcess) Read(b []byte) (int, error) {
	n, err := p.ptmx.Read(b)
	if err != nil && (errors.Is(err, syscall.EIO) || errors.Is(err, os.ErrClosed)) {
		return n, io.EOF
	}
	return n, err
}

func (p *ptyProcess) Write(b []byte) (int, error) {
	return p.ptmx.Write(b)
}

// Close kills the process, waits for it and releases the terminal.
func (p *ptyProcess) Close() error {
	p.closeOnce.Do(func() {
		select {
		case <-p.done:
		default:
			_ = p.cmd.Process.Kill()
			<-p.done
		}
		p.closeErr = p.ptmx.Close()
	})
	return p.closeErr
}

func (p *ptyProcess) Resize(rows, cols int) error {
	if rows > math.MaxUint16 || cols > math.MaxUint16 || rows < 0 || cols < 0 {
		return errors.New("terminal size out of bounds")
	}

	return pty.Setsize(p.ptmx, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
		X:    0,
		Y:    0,
	})
}

// Spawner implements ports.Spawner using os/exec and pty.
type Spawner struct {
	logger ports.Logger
	env    []string
}

var _ ports.Spawner = (*Spawner)(nil)

// NewSpawner creates a new Spawner. env holds KEY=VALUE entries applied on
// top of the allow-listed system environment.
func NewSpawner(logger ports.Logger, env ...string) *Spawner {
	return &Spawner{
		logger: logger,
		env:    env,
	}
}

// Spawn starts argv in a new PTY. The process is killed when ctx is canceled.
func (s *Spawner) Spawn(ctx context.Context, argv []string) (ports.Process, error) {
	if len(argv) == 0 {
		return nil, domain.ErrEmptySpawnCommand
	}

	name := argv[0]
	args := argv[1:]

	cmdEnv := resolveEnvironment(os.Environ(), s.env)

	executable := name
	if !filepath.IsAbs(name) {
		if lp, err := lookPath(name, cmdEnv); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, args...) //nolint:gosec // user provided command
	cmd.Args[0] = name
	cmd.Env = cmdEnv

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to start pty"), "command", strings.Join(argv, " "))
	}

	proc := &ptyProcess{
		cmd:  cmd,
		ptmx: ptmx,
		done: make(chan struct{}),
	}
	go func() {
		defer close(proc.done)
		_ = cmd.Wait()
	}()

	if err := proc.Resize(defaultRows, defaultCols); err != nil {
		s.logger.Warn("failed to resize terminal: " + err.Error())
	}

	return proc, nil
}

// allowListedEnvVars are the system environment variables inherited by
// session processes.
var allowListedEnvVars = map[string]struct{}{
	"HOME": {},
	"TERM": {},
	"USER": {},
	"PATH": {},
	"LANG": {},
}

// resolveEnvironment applies overrides on top of the allow-listed system
// environment. A PATH override is prepended to the system PATH.
func resolveEnvironment(sysEnv, overrides []string) []string {
	envMap := filterSystemEnv(sysEnv)

	for _, entry := range overrides {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if k == "PATH" {
			if sysPath, exists := envMap["PATH"]; exists && sysPath != "" {
				v = v + string(os.PathListSeparator) + sysPath
			}
		}
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

func filterSystemEnv(sysEnv []string) map[string]string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok {
			if _, allowed := allowListedEnvVars[k]; allowed {
				envMap[k] = v
			}
		}
	}
	return envMap
}

// lookPath searches for an executable in the directories named by the PATH
// entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := findExecutable(path); err == nil {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
