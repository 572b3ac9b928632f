// Package executor runs package manager commands on a pseudo terminal and classifies
// their outcome.
package executor

import (
	"context"
	"fmt"
	"io"
	"sync"
	"syscall"
	"time"

	"github.com/glorpus-work/hbpm/internal/logger"
	"github.com/glorpus-work/hbpm/pkg/clock"
	"github.com/glorpus-work/hbpm/pkg/errors"
	"github.com/glorpus-work/hbpm/pkg/fsutil"
	"github.com/glorpus-work/hbpm/pkg/model"
)

// State is a step of a job's lifecycle.
type State int

const (
	StateIdle State = iota
	StatePrecheck
	StateSpawning
	StateStreaming
	StateSucceeded
	StateFailed
	StateTimedOut
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePrecheck:
		return "precheck"
	case StateSpawning:
		return "spawning"
	case StateStreaming:
		return "streaming"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateTimedOut:
		return "timed-out"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	// DefaultTimeout bounds a single job.
	DefaultTimeout = 300 * time.Second
	// drainGrace bounds how long output is drained after the process exited.
	drainGrace = 2 * time.Second
)

// EnvOverrides are set on every package manager invocation.
var EnvOverrides = []string{
	"npm_config_update_notifier=false",
	"npm_config_global_style=true",
	"npm_config_foreground_scripts=true",
	"npm_config_loglevel=error",
	"npm_config_audit=false",
	"npm_config_fund=false",
}

// Job is one package manager invocation.
type Job struct {
	Name string   // package the job acts on
	Args []string // arguments after the package manager binary
	Dir  string   // working directory
	Cols int
	Rows int
}

// Options configure an Executor.
type Options struct {
	NpmPath string
	Sudo    bool
	Timeout time.Duration
	Clock   clock.Clock
	Spawner Spawner
	// OnState observes state transitions.
	OnState func(State)
}

// Executor runs jobs.
type Executor struct {
	npm     string
	sudo    bool
	timeout time.Duration
	clock   clock.Clock
	spawner Spawner
	onState func(State)
}

// New creates an Executor.
func New(opts Options) *Executor {
	e := &Executor{
		npm:     opts.NpmPath,
		sudo:    opts.Sudo,
		timeout: opts.Timeout,
		clock:   opts.Clock,
		spawner: opts.Spawner,
		onState: opts.OnState,
	}
	if e.npm == "" {
		e.npm = "npm"
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	if e.clock == nil {
		e.clock = clock.New()
	}
	if e.spawner == nil {
		e.spawner = PTYSpawner{}
	}
	return e
}

// Flags are the optional npm flags of a package job.
type Flags struct {
	Global        bool // -g
	Save          bool // --save, for a custom path backed by a package.json
	PreferOffline bool // --prefer-offline, ignored for uninstall
}

// PackageArgs builds the npm arguments for an install, update or uninstall of target.
func PackageArgs(action model.Action, target string, flags Flags) []string {
	verb := "install"
	if action == model.ActionUninstall {
		verb = "uninstall"
	}
	args := []string{verb, "--no-audit", "--no-fund"}
	if flags.Global {
		args = append(args, "-g")
	}
	if flags.Save {
		args = append(args, "--save")
	}
	if flags.PreferOffline && action != model.ActionUninstall {
		args = append(args, "--prefer-offline")
	}
	return append(args, target)
}

// Argv returns the full command line for args, including the elevation prefix.
func (e *Executor) Argv(args []string) []string {
	var argv []string
	if e.sudo {
		argv = append(argv, "sudo", "-E", "-n")
	}
	argv = append(argv, e.npm)
	return append(argv, args...)
}

func (e *Executor) transition(s State) {
	logger.Debugf("executor: %s", s)
	if e.onState != nil {
		e.onState(s)
	}
}

func quiet(State) {}

// Run executes job, streaming terminal output to out as it arrives.
func (e *Executor) Run(ctx context.Context, job Job, out io.Writer) error {
	e.transition(StateIdle)
	defer e.transition(StateDone)

	e.transition(StatePrecheck)
	if !e.sudo && job.Dir != "" {
		if err := fsutil.CanWrite(job.Dir); err != nil {
			logger.WarnfWithFields(logger.Fields{"dir": job.Dir}, "Install path is not writable: %v", err)
			fmt.Fprintf(out, "\r\nWARNING: %s may not be writable by this user; the operation may fail.\r\n\r\n", job.Dir)
		}
	}

	err := e.run(ctx, job, out, e.transition)
	if err != nil && model.IsSelf(job.Name) && !errors.Is(err, errors.ErrSpawnFailed) {
		fmt.Fprintf(out, "\r\nCleaning npm cache after failed %s operation...\r\n", job.Name)
		clean := Job{Name: job.Name, Args: []string{"cache", "clean", "--force"}, Dir: job.Dir, Cols: job.Cols, Rows: job.Rows}
		if cerr := e.run(ctx, clean, out, quiet); cerr != nil {
			logger.Warnf("npm cache clean failed: %v", cerr)
		}
		fmt.Fprintf(out, "npm cache cleaned, please try the operation again.\r\n")
	}
	return err
}

func (e *Executor) run(ctx context.Context, job Job, out io.Writer, report func(State)) error {
	cols, rows := job.Cols, job.Rows
	if cols <= 0 {
		cols = model.DefaultCols
	}
	if rows <= 0 {
		rows = model.DefaultRows
	}

	report(StateSpawning)
	argv := e.Argv(job.Args)
	logger.InfofWithFields(logger.Fields{"plugin": job.Name, "dir": job.Dir}, "Running %v", argv)
	fmt.Fprintf(out, "Running %v in %s\r\n", argv, job.Dir)

	proc, err := e.spawner.Spawn(ctx, SpawnSpec{
		Argv: argv,
		Dir:  job.Dir,
		Env:  EnvOverrides,
		Cols: uint16(cols), //nolint:gosec // terminal sizes are small
		Rows: uint16(rows), //nolint:gosec // terminal sizes are small
	})
	if err != nil {
		report(StateFailed)
		return fmt.Errorf("%s: %v: %w", argv[0], err, errors.ErrSpawnFailed)
	}
	defer func() { _ = proc.Close() }()

	report(StateStreaming)
	streamed := make(chan struct{})
	go func() {
		defer close(streamed)
		_, _ = io.Copy(out, proc.Output())
	}()

	var (
		signalOnce sync.Once
		timedOut   bool
		waitErr    error
	)
	terminate := func() {
		signalOnce.Do(func() {
			if err := proc.Signal(syscall.SIGTERM); err != nil {
				logger.Warnf("Failed to signal %s: %v", job.Name, err)
			}
		})
	}

	deadline := e.clock.After(e.timeout)
	done := ctx.Done()
wait:
	for {
		select {
		case waitErr = <-proc.Wait():
			break wait
		case <-deadline:
			timedOut = true
			deadline = nil
			terminate()
		case <-done:
			done = nil
			terminate()
		}
	}

	select {
	case <-streamed:
	case <-e.clock.After(drainGrace):
	}

	switch {
	case timedOut:
		report(StateTimedOut)
		return fmt.Errorf("%s did not finish within %s: %w", job.Name, e.timeout, errors.ErrOperationTimeout)
	case ctx.Err() != nil:
		report(StateFailed)
		return errors.Wrap(ctx.Err(), "operation cancelled")
	case waitErr != nil:
		report(StateFailed)
		return fmt.Errorf("%s: %v: %w", job.Name, waitErr, errors.ErrOperationFailed)
	default:
		report(StateSucceeded)
		return nil
	}
}

// Rebuild runs npm rebuild in dir; used after a bundle is unpacked.
func (e *Executor) Rebuild(ctx context.Context, dir string, out io.Writer) error {
	return e.Run(ctx, Job{Args: []string{"rebuild"}, Dir: dir}, out)
}
