package testsupport

import (
	"context"
	"sync"

	"bactpipe/internal/stage"
	"bactpipe/internal/tools"
)

// FakeRunner substitutes external processes in tests. Hook decides each
// command's result; concurrency is tracked so tests can assert the resource
// budget invariant.
type FakeRunner struct {
	// Hook receives each command and returns its result. Nil means exit 0.
	Hook func(cmd stage.Command) tools.Result

	mu        sync.Mutex
	active    int
	maxActive int
	commands  []stage.Command
}

// Run implements tools.Runner.
func (f *FakeRunner) Run(_ context.Context, cmd stage.Command) (tools.Result, error) {
	f.mu.Lock()
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	f.commands = append(f.commands, cmd)
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if f.Hook != nil {
		return f.Hook(cmd), nil
	}
	return tools.Result{}, nil
}

// MaxActive returns the highest number of simultaneously running commands.
func (f *FakeRunner) MaxActive() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxActive
}

// Commands returns every command run so far, in dispatch order.
func (f *FakeRunner) Commands() []stage.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]stage.Command, len(f.commands))
	copy(out, f.commands)
	return out
}
