// Package execute runs compile and testcase subprocesses under a wall-clock
// timeout and a captured-output byte cap. A timed-out process is killed
// together with its process group, never abandoned.
package execute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"
)

// Result is the raw outcome of one subprocess invocation. It is consumed
// immediately by the orchestrator and never persisted.
type Result struct {
	Stdout     []byte
	Stderr     []byte
	ExitCode   int
	TimedOut   bool
	Truncated  bool
	WallMillis int64
}

// capWriter keeps at most cap bytes and discards the rest.
type capWriter struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (w *capWriter) Write(p []byte) (int, error) {
	room := w.limit - w.buf.Len()
	if room <= 0 {
		w.truncated = w.truncated || len(p) > 0
		return len(p), nil
	}
	if len(p) > room {
		w.buf.Write(p[:room])
		w.truncated = true
		return len(p), nil
	}
	w.buf.Write(p)
	return len(p), nil
}

// Run executes argv in dir with stdin attached, killing the process group
// once timeout elapses. Stdout and stderr are each capped at outputCap
// bytes. A non-nil error means infrastructure failure (could not start the
// process); a non-zero exit or a timeout is reported through Result.
func Run(ctx context.Context, argv []string, dir string, stdin []byte, timeout time.Duration, outputCap int) (*Result, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin = bytes.NewReader(stdin)

	stdout := &capWriter{limit: outputCap}
	stderr := &capWriter{limit: outputCap}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	// Run the child in its own process group so that killing it on
	// timeout also takes down anything it spawned.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	// Orphaned pipe writers must not keep Wait hanging past the kill.
	cmd.WaitDelay = 2 * time.Second

	start := time.Now()
	err := cmd.Run()
	wall := time.Since(start).Milliseconds()

	res := &Result{
		Stdout:     stdout.buf.Bytes(),
		Stderr:     stderr.buf.Bytes(),
		Truncated:  stdout.truncated || stderr.truncated,
		WallMillis: wall,
	}

	if runCtx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		res.ExitCode = -1
		return res, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed to run %s: %w", argv[0], err)
		}
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}

	res.ExitCode = 0
	return res, nil
}
