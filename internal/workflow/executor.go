package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bactpipe/internal/channel"
	"bactpipe/internal/logging"
	"bactpipe/internal/stage"
)

// execute runs one invocation end to end: build the command, run the
// external process, verify declared outputs, publish artifacts, and forward
// the work item to the stage's output channels. A failed invocation emits
// nothing downstream so the sample's path simply ends here.
func (m *Manager) execute(ctx context.Context, inv *invocation) {
	defer m.release(inv)
	defer inv.done()

	stageCtx := logging.WithStage(ctx, inv.stage.Name)
	stageCtx = logging.WithSample(stageCtx, inv.sample)
	logger := logging.WithContext(stageCtx, m.logger)
	// State transitions must land even when the run context is torn down
	// mid-invocation.
	storeCtx := context.WithoutCancel(stageCtx)

	if err := m.store.MarkRunning(storeCtx, inv.id); err != nil {
		logger.Error("failed to persist running transition", logging.Error(err))
	}
	start := time.Now()
	logger.Info("stage invocation started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.Int("cpus", inv.stage.Resources.CPUs),
		logging.Int("memory_mb", inv.stage.Resources.MemoryMB))

	workDir := filepath.Join(m.cfg.Paths.WorkDir, inv.stage.Name, inv.sample)
	cmd, outs, err := inv.stage.Build(stage.Request{
		Sample:  inv.sample,
		Inputs:  inv.inputs,
		WorkDir: workDir,
	})
	if err != nil {
		m.fail(storeCtx, logger, inv, -1, fmt.Sprintf("build command: %v", err))
		return
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		m.fail(storeCtx, logger, inv, -1, fmt.Sprintf("create work dir: %v", err))
		return
	}

	res, err := m.runner.Run(stageCtx, cmd)
	if err != nil {
		// The runner reports -1 when the process never produced an exit
		// status; keep the same convention for commands that failed to start.
		m.fail(storeCtx, logger, inv, -1, fmt.Sprintf("run %s: %v", cmd.Binary, err))
		return
	}
	if res.ExitCode != 0 {
		detail := fmt.Sprintf("%s exited with code %d", cmd.Binary, res.ExitCode)
		if tail := strings.TrimSpace(strings.Join(res.StderrTail, "\n")); tail != "" {
			detail += ": " + lastLine(tail)
		}
		m.fail(storeCtx, logger, inv, res.ExitCode, detail)
		return
	}
	if missing := missingOutputs(outs); len(missing) > 0 {
		m.fail(storeCtx, logger, inv, res.ExitCode,
			fmt.Sprintf("declared outputs missing after exit 0: %s", strings.Join(missing, ", ")))
		return
	}

	if err := m.store.MarkSucceeded(storeCtx, inv.id, outs.All()); err != nil {
		logger.Error("failed to persist invocation success", logging.Error(err))
	}

	// A publish failure is recorded and reported but does not block in-channel
	// propagation: the computed outputs are intact in the work tree.
	if err := m.pub.Publish(inv.stage.Name, inv.sample, outs.All()); err != nil {
		logger.Error("artifact publish failed",
			logging.String(logging.FieldEventType, "publish_failure"),
			logging.Error(err))
		if recErr := m.store.SetPublishError(storeCtx, inv.id, err.Error()); recErr != nil {
			logger.Error("failed to persist publish failure", logging.Error(recErr))
		}
	}

	for _, out := range inv.stage.Outputs {
		m.channels[out].Publish(channel.Item{Key: inv.sample, Paths: outs.Forward[out]})
	}

	logger.Info("stage invocation completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("duration", elapsed(start)),
		logging.Int("outputs", len(outs.All())))
}

func (m *Manager) fail(ctx context.Context, logger *slog.Logger, inv *invocation, exitCode int, message string) {
	logger.Error("stage invocation failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.Int("exit_code", exitCode),
		logging.String("error_message", message))
	if err := m.store.MarkFailed(ctx, inv.id, exitCode, message); err != nil {
		logger.Error("failed to persist invocation failure", logging.Error(err))
	}
}

func missingOutputs(outs stage.Outputs) []string {
	var missing []string
	for _, path := range outs.All() {
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, filepath.Base(path))
		}
	}
	return missing
}

func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
