package tools

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"bactpipe/internal/stage"
)

// Result captures what the engine inspects about a finished command: the exit
// status and a tail of stderr for error context.
type Result struct {
	ExitCode   int
	StderrTail []string
}

// Runner abstracts command execution so tests can substitute a fake.
type Runner interface {
	Run(ctx context.Context, cmd stage.Command) (Result, error)
}

// CommandRunner executes stage commands as operating-system processes.
type CommandRunner struct{}

// NewCommandRunner returns the production runner.
func NewCommandRunner() CommandRunner { return CommandRunner{} }

const stderrTailLines = 20

// Run starts the command, optionally redirecting stdout to the declared
// capture file, and waits for completion. A non-zero exit is returned as a
// nil error with Result.ExitCode set; err is reserved for failures to run the
// binary at all.
func (CommandRunner) Run(ctx context.Context, command stage.Command) (Result, error) {
	if strings.TrimSpace(command.Binary) == "" {
		return Result{}, errors.New("command binary is empty")
	}
	if command.Dir != "" {
		if err := os.MkdirAll(command.Dir, 0o755); err != nil {
			return Result{}, fmt.Errorf("create work dir: %w", err)
		}
	}

	cmd := exec.CommandContext(ctx, command.Binary, command.Args...)
	cmd.Dir = command.Dir

	if command.StdoutFile != "" {
		out, err := os.OpenFile(command.StdoutFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return Result{}, fmt.Errorf("open stdout capture: %w", err)
		}
		defer out.Close()
		cmd.Stdout = out
	} else {
		cmd.Stdout = io.Discard
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("start %s: %w", command.Binary, err)
	}

	var wg sync.WaitGroup
	tail := make([]string, 0, stderrTailLines)
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if len(tail) == stderrTailLines {
				copy(tail, tail[1:])
				tail = tail[:stderrTailLines-1]
			}
			tail = append(tail, scanner.Text())
		}
	}()

	waitErr := cmd.Wait()
	wg.Wait()

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return Result{ExitCode: exitErr.ExitCode(), StderrTail: tail}, nil
		}
		return Result{ExitCode: -1, StderrTail: tail}, fmt.Errorf("wait %s: %w", command.Binary, waitErr)
	}
	return Result{ExitCode: 0, StderrTail: tail}, nil
}

// LookPath reports whether the named binary resolves on PATH.
func LookPath(binary string) error {
	_, err := exec.LookPath(binary)
	return err
}
