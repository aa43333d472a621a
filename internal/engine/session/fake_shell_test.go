package session_test

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"sync"

	"go.trai.ch/rig/internal/core/ports"
)

// reply is the scripted behaviour of the fake shell for one input line.
type reply struct {
	output string
	code   int
	exit   bool
}

// fakeShell emulates an interactive shell over pipes. It echoes every line it
// receives, prints the scripted output followed by its prompt, and answers the
// exit-code query with the code of the previous command.
type fakeShell struct {
	banner  string
	prompt  string
	scripts map[string]reply

	mu       sync.Mutex
	received []string
}

func newFakeShell(scripts map[string]reply) *fakeShell {
	return &fakeShell{banner: "# ", prompt: "# ", scripts: scripts}
}

func (f *fakeShell) start() ports.Process {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	go f.serve(inR, outW)
	return &fakeProcess{stdout: outR, stdin: inW, stdoutW: outW}
}

func (f *fakeShell) serve(in *io.PipeReader, out *io.PipeWriter) {
	defer func() {
		_ = in.Close()
		_ = out.Close()
	}()

	if _, err := io.WriteString(out, f.banner); err != nil {
		return
	}

	code := 0
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		f.record(line)

		if line == "echo RESULT:${?}" {
			if _, err := fmt.Fprintf(out, "%s\r\nRESULT:%d\r\n%s", line, code, f.prompt); err != nil {
				return
			}
			continue
		}

		r := f.scripts[line]
		if r.exit {
			return
		}
		code = r.code
		if _, err := fmt.Fprintf(out, "%s\r\n%s%s", line, r.output, f.prompt); err != nil {
			return
		}
	}
}

func (f *fakeShell) record(line string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, line)
}

func (f *fakeShell) lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.received)
}

type fakeProcess struct {
	stdout  *io.PipeReader
	stdin   *io.PipeWriter
	stdoutW *io.PipeWriter
}

func (p *fakeProcess) Read(b []byte) (int, error)  { return p.stdout.Read(b) }
func (p *fakeProcess) Write(b []byte) (int, error) { return p.stdin.Write(b) }

func (p *fakeProcess) Close() error {
	_ = p.stdin.Close()
	return p.stdoutW.Close()
}
