package channel

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/kballard/go-shellquote"

	"plotpipe/pkg/plottypes"
)

// DefaultExecutable is the engine started when no override is configured.
const DefaultExecutable = "gnuplot"

// stopTimeout bounds how long Close waits for the engine to exit after
// its input is closed.
const stopTimeout = 2 * time.Second

type process struct {
	cmd    *exec.Cmd
	output *os.File
	exited chan error
}

// Start launches the engine and connects a channel to it. The engine's
// stdout and stderr share one pipe so diagnostics arrive in order with
// the marker.
func Start(cfg Config) (*Channel, error) {
	argv, err := commandLine(cfg)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = os.Environ()

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, plottypes.NewIOError("start", err)
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, plottypes.NewIOError("start", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		return nil, plottypes.NewIOError("start", fmt.Errorf("%s: %w", argv[0], err))
	}
	// the child holds its own copy of the write end
	_ = pw.Close()

	p := &process{cmd: cmd, output: pr, exited: make(chan error, 1)}
	go func() {
		p.exited <- cmd.Wait()
	}()

	c := New(stdin, pr, cfg)
	c.proc = p
	c.log.Debug("engine started", "command", argv, "pid", cmd.Process.Pid)
	return c, nil
}

// commandLine splits the configured executable and appends -persist.
func commandLine(cfg Config) ([]string, error) {
	exe := cfg.Executable
	if exe == "" {
		exe = DefaultExecutable
	}
	argv, err := shellquote.Split(exe)
	if err != nil {
		return nil, plottypes.NewValidationError("executable", err.Error())
	}
	if len(argv) == 0 {
		return nil, plottypes.NewValidationError("executable", "empty command")
	}
	if cfg.Persist {
		argv = append(argv, "-persist")
	}
	return argv, nil
}

// stop waits for the engine to exit on its own and kills it otherwise.
func (p *process) stop() error {
	defer p.output.Close()

	select {
	case err := <-p.exited:
		return exitStatus(err)
	case <-time.After(stopTimeout):
	}

	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return plottypes.NewIOError("kill", err)
	}
	<-p.exited
	return nil
}

func exitStatus(err error) error {
	var exitErr *exec.ExitError
	if err == nil || errors.As(err, &exitErr) {
		// a nonzero status after a failed script is not a close error
		return nil
	}
	return plottypes.NewIOError("wait", err)
}
