package executor

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/hbpm/pkg/clock"
	"github.com/glorpus-work/hbpm/pkg/errors"
	"github.com/glorpus-work/hbpm/pkg/model"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fakeProcess struct {
	pr   *io.PipeReader
	pw   *io.PipeWriter
	wait chan error

	mu       sync.Mutex
	signals  []os.Signal
	onSignal func(p *fakeProcess, sig os.Signal)
	exitOnce sync.Once
}

func newFakeProcess() *fakeProcess {
	pr, pw := io.Pipe()
	return &fakeProcess{pr: pr, pw: pw, wait: make(chan error, 1)}
}

func (p *fakeProcess) Output() io.Reader  { return p.pr }
func (p *fakeProcess) Wait() <-chan error { return p.wait }
func (p *fakeProcess) Close() error       { return p.pr.Close() }

func (p *fakeProcess) Signal(sig os.Signal) error {
	p.mu.Lock()
	p.signals = append(p.signals, sig)
	cb := p.onSignal
	p.mu.Unlock()
	if cb != nil {
		cb(p, sig)
	}
	return nil
}

func (p *fakeProcess) Signals() []os.Signal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]os.Signal(nil), p.signals...)
}

func (p *fakeProcess) exit(err error) {
	p.exitOnce.Do(func() {
		_ = p.pw.Close()
		p.wait <- err
	})
}

// fakeSpawner hands out scripted processes in order.
type fakeSpawner struct {
	mu      sync.Mutex
	specs   []SpawnSpec
	scripts []func(p *fakeProcess)
	procs   []*fakeProcess
	err     error

	// hang keeps every process running until it is signalled.
	hang bool
}

func (s *fakeSpawner) Spawn(_ context.Context, spec SpawnSpec) (Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specs = append(s.specs, spec)
	if s.err != nil {
		return nil, s.err
	}
	p := newFakeProcess()
	s.procs = append(s.procs, p)
	i := len(s.procs) - 1
	if s.hang {
		p.onSignal = func(p *fakeProcess, _ os.Signal) { p.exit(errors.New("signal: terminated")) }
		return p, nil
	}
	if i < len(s.scripts) && s.scripts[i] != nil {
		go s.scripts[i](p)
	} else {
		go p.exit(nil)
	}
	return p, nil
}

func (s *fakeSpawner) Specs() []SpawnSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SpawnSpec(nil), s.specs...)
}

func writeAndExit(output string, err error) func(p *fakeProcess) {
	return func(p *fakeProcess) {
		_, _ = io.WriteString(p.pw, output)
		p.exit(err)
	}
}

type stateRecorder struct {
	mu     sync.Mutex
	states []State
}

func (r *stateRecorder) record(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) States() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func TestPackageArgs(t *testing.T) {
	tests := []struct {
		name   string
		action model.Action
		flags  Flags
		want   []string
	}{
		{"install local", model.ActionInstall, Flags{}, []string{"install", "--no-audit", "--no-fund", "homebridge-foo@3.1.0"}},
		{"install global", model.ActionInstall, Flags{Global: true}, []string{"install", "--no-audit", "--no-fund", "-g", "homebridge-foo@3.1.0"}},
		{"install saved", model.ActionInstall, Flags{Save: true}, []string{"install", "--no-audit", "--no-fund", "--save", "homebridge-foo@3.1.0"}},
		{"update offline", model.ActionUpdate, Flags{Global: true, PreferOffline: true}, []string{"install", "--no-audit", "--no-fund", "-g", "--prefer-offline", "homebridge-foo@3.1.0"}},
		{"uninstall ignores offline", model.ActionUninstall, Flags{PreferOffline: true}, []string{"uninstall", "--no-audit", "--no-fund", "homebridge-foo@3.1.0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PackageArgs(tt.action, "homebridge-foo@3.1.0", tt.flags))
		})
	}
}

func TestArgv(t *testing.T) {
	assert.Equal(t, []string{"npm", "install", "x"}, New(Options{}).Argv([]string{"install", "x"}))
	assert.Equal(t, []string{"sudo", "-E", "-n", "/usr/bin/npm", "uninstall", "x"},
		New(Options{Sudo: true, NpmPath: "/usr/bin/npm"}).Argv([]string{"uninstall", "x"}))
}

func TestRun_Success(t *testing.T) {
	spawner := &fakeSpawner{scripts: []func(*fakeProcess){writeAndExit("added 1 package\r\n", nil)}}
	rec := &stateRecorder{}
	e := New(Options{Spawner: spawner, Clock: clock.NewMock(time.Now()), OnState: rec.record})

	dir := t.TempDir()
	out := &syncBuffer{}
	err := e.Run(context.Background(), Job{
		Name: "homebridge-foo",
		Args: PackageArgs(model.ActionInstall, "homebridge-foo@3.1.0", Flags{}),
		Dir:  dir,
	}, out)
	require.NoError(t, err)

	specs := spawner.Specs()
	require.Len(t, specs, 1)
	assert.Equal(t, []string{"npm", "install", "--no-audit", "--no-fund", "homebridge-foo@3.1.0"}, specs[0].Argv)
	assert.Equal(t, dir, specs[0].Dir)
	assert.Equal(t, uint16(80), specs[0].Cols)
	assert.Equal(t, uint16(30), specs[0].Rows)
	assert.Contains(t, specs[0].Env, "npm_config_global_style=true")
	assert.Contains(t, specs[0].Env, "npm_config_foreground_scripts=true")

	assert.Contains(t, out.String(), "added 1 package")
	assert.NotContains(t, out.String(), "WARNING")
	assert.Equal(t, []State{StateIdle, StatePrecheck, StateSpawning, StateStreaming, StateSucceeded, StateDone}, rec.States())
}

func TestRun_TerminalSize(t *testing.T) {
	spawner := &fakeSpawner{}
	e := New(Options{Spawner: spawner, Clock: clock.NewMock(time.Now())})
	require.NoError(t, e.Run(context.Background(), Job{Args: []string{"install"}, Cols: 120, Rows: 40}, io.Discard))
	assert.Equal(t, uint16(120), spawner.Specs()[0].Cols)
	assert.Equal(t, uint16(40), spawner.Specs()[0].Rows)
}

func TestRun_Failure(t *testing.T) {
	spawner := &fakeSpawner{scripts: []func(*fakeProcess){writeAndExit("npm ERR! 404\r\n", errors.New("exit status 1"))}}
	rec := &stateRecorder{}
	e := New(Options{Spawner: spawner, Clock: clock.NewMock(time.Now()), OnState: rec.record})

	out := &syncBuffer{}
	err := e.Run(context.Background(), Job{Name: "homebridge-foo", Args: []string{"install", "homebridge-foo@9.9.9"}}, out)
	assert.ErrorIs(t, err, errors.ErrOperationFailed)
	assert.Contains(t, out.String(), "npm ERR! 404")
	assert.Contains(t, rec.States(), StateFailed)
	assert.Len(t, spawner.Specs(), 1, "no cache clean for third-party plugins")
}

func TestRun_TimeoutSignalsOnce(t *testing.T) {
	clk := clock.NewMock(time.Now())
	spawner := &fakeSpawner{hang: true}
	rec := &stateRecorder{}
	e := New(Options{Spawner: spawner, Clock: clk, OnState: rec.record})

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Run(context.Background(), Job{Name: "homebridge-slow", Args: []string{"install", "homebridge-slow@1.0.0"}}, io.Discard)
	}()

	require.Eventually(t, func() bool { return clk.Pending() == 1 }, time.Second, time.Millisecond)
	clk.Advance(299 * time.Second)
	spawner.mu.Lock()
	proc := spawner.procs[0]
	spawner.mu.Unlock()
	assert.Empty(t, proc.Signals())

	clk.Advance(time.Second)
	err := <-errCh
	assert.ErrorIs(t, err, errors.ErrOperationTimeout)
	assert.Equal(t, []os.Signal{syscall.SIGTERM}, proc.Signals())
	assert.Contains(t, rec.States(), StateTimedOut)
	assert.NotContains(t, rec.States(), StateFailed)
}

func TestRun_ContextCancelled(t *testing.T) {
	spawner := &fakeSpawner{hang: true}
	e := New(Options{Spawner: spawner, Clock: clock.NewMock(time.Now())})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Run(ctx, Job{Name: "homebridge-foo", Args: []string{"install"}}, io.Discard)
	}()
	require.Eventually(t, func() bool { return len(spawner.Specs()) == 1 }, time.Second, time.Millisecond)
	cancel()

	err := <-errCh
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_SelfFailureCleansCache(t *testing.T) {
	spawner := &fakeSpawner{scripts: []func(*fakeProcess){
		writeAndExit("npm ERR! EINTEGRITY\r\n", errors.New("exit status 1")),
		writeAndExit("", nil),
	}}
	rec := &stateRecorder{}
	e := New(Options{Spawner: spawner, Clock: clock.NewMock(time.Now()), OnState: rec.record})

	out := &syncBuffer{}
	err := e.Run(context.Background(), Job{Name: model.SelfPackage, Args: []string{"install", "-g", model.SelfPackage + "@4.50.0"}}, out)
	assert.ErrorIs(t, err, errors.ErrOperationFailed)

	specs := spawner.Specs()
	require.Len(t, specs, 2)
	assert.Equal(t, []string{"npm", "cache", "clean", "--force"}, specs[1].Argv)
	assert.Contains(t, out.String(), "npm cache cleaned")

	states := rec.States()
	assert.Equal(t, StateDone, states[len(states)-1])
	assert.Equal(t, 1, countState(states, StateSpawning), "cache clean does not report states")
}

func TestRun_SpawnFailure(t *testing.T) {
	spawner := &fakeSpawner{err: errors.New("executable file not found")}
	e := New(Options{Spawner: spawner, Clock: clock.NewMock(time.Now())})

	err := e.Run(context.Background(), Job{Name: model.SelfPackage, Args: []string{"install"}}, io.Discard)
	assert.ErrorIs(t, err, errors.ErrSpawnFailed)
	assert.Len(t, spawner.Specs(), 1)
}

func TestRun_PrecheckWarning(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "not-there")

	out := &syncBuffer{}
	e := New(Options{Spawner: &fakeSpawner{}, Clock: clock.NewMock(time.Now())})
	require.NoError(t, e.Run(context.Background(), Job{Args: []string{"install"}, Dir: missing}, out))
	assert.Contains(t, out.String(), "WARNING")

	out = &syncBuffer{}
	e = New(Options{Spawner: &fakeSpawner{}, Clock: clock.NewMock(time.Now()), Sudo: true})
	require.NoError(t, e.Run(context.Background(), Job{Args: []string{"install"}, Dir: missing}, out))
	assert.NotContains(t, out.String(), "WARNING")
}

func TestRebuild(t *testing.T) {
	spawner := &fakeSpawner{}
	e := New(Options{Spawner: spawner, Clock: clock.NewMock(time.Now())})
	dir := t.TempDir()
	require.NoError(t, e.Rebuild(context.Background(), dir, io.Discard))
	assert.Equal(t, []string{"npm", "rebuild"}, spawner.Specs()[0].Argv)
	assert.Equal(t, dir, spawner.Specs()[0].Dir)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "timed-out", StateTimedOut.String())
	assert.Equal(t, "state(42)", State(42).String())
}

func countState(states []State, s State) int {
	n := 0
	for _, st := range states {
		if st == s {
			n++
		}
	}
	return n
}
