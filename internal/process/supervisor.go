package process

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/xedahq/xeda/internal/console"
	"github.com/xedahq/xeda/internal/process/resmon"
	"github.com/xedahq/xeda/internal/xerrors"
)

// resourceSampleInterval is how often a running invocation's resource usage
// is sampled while its subprocess is alive.
const resourceSampleInterval = 500 * time.Millisecond

// gracefulShutdownTimeout is how long a terminated process gets to exit
// after SIGTERM before escalating to SIGKILL.
const gracefulShutdownTimeout = 3 * time.Second

// LineHandler is called for every classified stdout line as it streams in.
type LineHandler func(line string, level LineLevel)

// Invocation is one subprocess launch request.
type Invocation struct {
	Tool        string // logical tool name, resolved via Resolver
	Args        []string
	Env         []string // overlay appended to the current environment
	WorkDir     string
	Timeout     time.Duration
	RunPath     string // run directory; stdout is teed to <Tool>_stdout.log here
	Docker      *DockerConfig
	OnLine      LineHandler
	Progress    *console.Progress
}

// DockerConfig rewrites an invocation into a containerized one when a
// docker image is configured.
type DockerConfig struct {
	Image      string
	ExtraMounts []string // "host:container" pairs
}

// Result is what a completed (or cancelled/timed-out) invocation produced.
type Result struct {
	ExitCode int
	Duration time.Duration
	StdoutTail string // last N lines, for error reporting
	TimedOut bool
	Cancelled bool
}

// Supervisor runs subprocesses with the streaming/timeout/cancellation
// contract the Process Supervisor implements.
type Supervisor struct {
	resolver *Resolver

	resMu  sync.Mutex
	resMon map[string]resmon.Monitor // keyed by run_path; accumulates across every invocation that flow makes
}

// NewSupervisor creates a Supervisor using resolver for executable lookup.
func NewSupervisor(resolver *Resolver) *Supervisor {
	if resolver == nil {
		resolver = NewResolver()
	}
	return &Supervisor{resolver: resolver, resMon: map[string]resmon.Monitor{}}
}

// monitorFor returns the resmon.Monitor accumulating usage for runPath,
// creating one on first use.
func (s *Supervisor) monitorFor(runPath string) resmon.Monitor {
	s.resMu.Lock()
	defer s.resMu.Unlock()
	mon, ok := s.resMon[runPath]
	if !ok {
		mon = resmon.New(0)
		s.resMon[runPath] = mon
	}
	return mon
}

// ResourceUsage returns the resource usage accumulated across every
// invocation run under runPath so far, and releases the underlying
// monitor. ok is false if no invocation has run under runPath.
func (s *Supervisor) ResourceUsage(runPath string) (usage resmon.Usage, ok bool) {
	s.resMu.Lock()
	mon, found := s.resMon[runPath]
	if found {
		delete(s.resMon, runPath)
	}
	s.resMu.Unlock()
	if !found {
		return resmon.Usage{}, false
	}
	usage = mon.Result()
	mon.Close()
	return usage, true
}

// sampleResourceUsage samples pid's usage into mon every
// resourceSampleInterval until stop is closed.
func sampleResourceUsage(mon resmon.Monitor, pid int, stop <-chan struct{}) {
	ticker := time.NewTicker(resourceSampleInterval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			mon.Sample([]int{pid}, now.Sub(last))
			last = now
		}
	}
}

const stderrTailLines = 40

// Run launches inv, streaming/classifying its stdout, tee'd to
// "<Tool>_stdout.log" in inv.RunPath, enforcing inv.Timeout, and honoring
// ctx cancellation with SIGTERM-then-SIGKILL escalation.
func (s *Supervisor) Run(ctx context.Context, inv Invocation) (*Result, error) {
	binPath, argv, env, err := s.resolveInvocation(inv)
	if err != nil {
		return nil, &xerrors.ExecutableMissingError{
			Exec:     inv.Tool,
			ToolName: inv.Tool,
			Searched: s.resolver.SearchedPaths(),
		}
	}

	runCtx := ctx
	var cancelTimeout context.CancelFunc
	if inv.Timeout > 0 {
		runCtx, cancelTimeout = context.WithTimeout(ctx, inv.Timeout)
		defer cancelTimeout()
	}

	cmd := exec.Command(binPath, argv...)
	cmd.Dir = inv.WorkDir
	cmd.Env = env

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("pipe stdout for %s: %w", inv.Tool, err)
	}
	cmd.Stderr = cmd.Stdout // tool stderr merged into the same classified stream, matching common EDA tool behavior

	var logFile *os.File
	if inv.RunPath != "" {
		logFile, err = os.Create(filepath.Join(inv.RunPath, inv.Tool+"_stdout.log"))
		if err != nil {
			return nil, fmt.Errorf("create stdout log for %s: %w", inv.Tool, err)
		}
		defer logFile.Close()
	}

	setPlatformProcAttr(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", inv.Tool, err)
	}

	if inv.RunPath != "" {
		mon := s.monitorFor(inv.RunPath)
		stopSampling := make(chan struct{})
		go sampleResourceUsage(mon, cmd.Process.Pid, stopSampling)
		defer close(stopSampling)
	}

	var (
		tailMu sync.Mutex
		tail   []string
	)
	echoForced := false
	doneReading := make(chan struct{})
	go func() {
		defer close(doneReading)
		scanner := bufio.NewScanner(stdoutPipe)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if logFile != nil {
				fmt.Fprintln(logFile, line)
			}

			if step, ok := StepName(line); ok && inv.Progress != nil {
				inv.Progress.BeginStep(step)
			}
			if on, off, matched := EchoToggle(line); matched {
				echoForced = on || !off
			}

			level := ClassifyLine(line)
			tailMu.Lock()
			tail = append(tail, line)
			if len(tail) > stderrTailLines {
				tail = tail[len(tail)-stderrTailLines:]
			}
			tailMu.Unlock()

			if inv.OnLine != nil {
				inv.OnLine(line, level)
			}
			if echoForced && inv.Progress != nil {
				inv.Progress.Log("%s", line)
			}
		}
	}()

	waitErr := make(chan error, 1)
	go func() { waitErr <- cmd.Wait() }()

	select {
	case err := <-waitErr:
		<-doneReading
		return s.finish(cmd, inv, start, tail, err, false, false)
	case <-runCtx.Done():
		s.terminate(cmd)
		<-waitErr
		<-doneReading
		timedOut := ctx.Err() == nil // runCtx expired but parent ctx didn't: it was the per-invocation timeout
		return s.finish(cmd, inv, start, tail, runCtx.Err(), timedOut, !timedOut)
	}
}

func (s *Supervisor) resolveInvocation(inv Invocation) (bin string, args []string, env []string, err error) {
	if inv.Docker != nil {
		return dockerRewrite(inv)
	}
	bin, err = s.resolver.Resolve(inv.Tool)
	if err != nil {
		return "", nil, nil, err
	}
	env = append(os.Environ(), inv.Env...)
	return bin, inv.Args, env, nil
}

// terminate sends SIGTERM to the process (group on Unix), then escalates to
// SIGKILL if it hasn't exited within gracefulShutdownTimeout.
func (s *Supervisor) terminate(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	signalProcessGroup(cmd, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		_, _ = cmd.Process.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(gracefulShutdownTimeout):
		signalProcessGroup(cmd, syscall.SIGKILL)
	}
}

func (s *Supervisor) finish(cmd *exec.Cmd, inv Invocation, start time.Time, tail []string, waitErr error, timedOut, cancelled bool) (*Result, error) {
	res := &Result{
		Duration:  time.Since(start),
		TimedOut:  timedOut,
		Cancelled: cancelled,
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	res.StdoutTail = strings.Join(tail, "\n")

	if timedOut {
		return res, &xerrors.TimeoutError{Command: inv.Tool, TimeoutSeconds: int(inv.Timeout.Seconds())}
	}
	if cancelled {
		return res, &xerrors.CancelledError{Flow: inv.Tool}
	}
	if exitErr, ok := waitErr.(*exec.ExitError); ok {
		res.ExitCode = exitErr.ExitCode()
		return res, &xerrors.NonZeroExitError{
			Command:    inv.Tool,
			Code:       res.ExitCode,
			StderrTail: res.StdoutTail,
		}
	}
	if waitErr != nil {
		return nil, fmt.Errorf("run %s: %w", inv.Tool, waitErr)
	}
	return res, nil
}

// dockerRewrite rewrites inv into a `docker run` invocation of inv.Docker.Image.
func dockerRewrite(inv Invocation) (bin string, args []string, env []string, err error) {
	bin, err = exec.LookPath("docker")
	if err != nil {
		return "", nil, nil, fmt.Errorf("docker not found: %w", err)
	}
	args = []string{"run", "--rm"}
	if inv.WorkDir != "" {
		args = append(args, "-v", inv.WorkDir+":"+inv.WorkDir, "-w", inv.WorkDir)
	}
	for _, m := range inv.Docker.ExtraMounts {
		args = append(args, "-v", m)
	}
	for _, e := range inv.Env {
		args = append(args, "-e", e)
	}
	args = append(args, inv.Docker.Image, inv.Tool)
	args = append(args, inv.Args...)
	env = os.Environ()
	return bin, args, env, nil
}
