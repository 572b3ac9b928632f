package executor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/creack/pty"
)

// SpawnSpec describes one subprocess.
type SpawnSpec struct {
	Argv []string
	Dir  string
	Env  []string // appended to the inherited environment
	Cols uint16
	Rows uint16
}

// Process is a running subprocess.
type Process interface {
	// Output returns the combined terminal output. Reads fail once the process has exited
	// and its output is drained.
	Output() io.Reader
	// Wait returns a channel that yields the exit error exactly once.
	Wait() <-chan error
	// Signal delivers sig to the process.
	Signal(sig os.Signal) error
	// Close releases the terminal.
	Close() error
}

// Spawner starts processes.
type Spawner interface {
	Spawn(ctx context.Context, spec SpawnSpec) (Process, error)
}

// PTYSpawner starts processes attached to a pseudo terminal.
type PTYSpawner struct{}

// Spawn implements Spawner.
func (PTYSpawner) Spawn(_ context.Context, spec SpawnSpec) (Process, error) {
	cmd := exec.Command(spec.Argv[0], spec.Argv[1:]...) //nolint:gosec // argv is assembled by the executor
	cmd.Dir = spec.Dir
	cmd.Env = append(os.Environ(), spec.Env...)

	tty, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: spec.Cols, Rows: spec.Rows})
	if err != nil {
		return nil, err
	}

	p := &ptyProcess{cmd: cmd, tty: tty, done: make(chan error, 1)}
	go func() {
		p.done <- cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

type ptyProcess struct {
	cmd       *exec.Cmd
	tty       *os.File
	done      chan error
	closeOnce sync.Once
}

func (p *ptyProcess) Output() io.Reader          { return p.tty }
func (p *ptyProcess) Wait() <-chan error         { return p.done }
func (p *ptyProcess) Signal(sig os.Signal) error { return p.cmd.Process.Signal(sig) }

func (p *ptyProcess) Close() error {
	var err error
	p.closeOnce.Do(func() { err = p.tty.Close() })
	return err
}

// NodeVersion returns the output of `node --version`, without the leading v.
func NodeVersion(ctx context.Context, nodePath string) (string, error) {
	if nodePath == "" {
		nodePath = "node"
	}
	out, err := exec.CommandContext(ctx, nodePath, "--version").Output() //nolint:gosec // configured node binary
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(strings.TrimSpace(string(out)), "v"), nil
}
