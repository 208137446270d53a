package workflow

import (
	"context"
	"time"

	"bactpipe/internal/channel"
	"bactpipe/internal/logging"
	"bactpipe/internal/runrecord"
	"bactpipe/internal/stage"
)

// invocation is one pending execution of a stage against one work item (or
// the collected set for barrier stages).
type invocation struct {
	id     string
	stage  *stage.Stage
	sample string
	inputs []channel.Item
	done   func()
}

// submit records the invocation as pending and appends it to the ready queue
// in arrival order.
func (m *Manager) submit(inv *invocation) {
	ctx := context.Background()
	if err := m.store.CreateInvocation(ctx, &runrecord.Invocation{
		ID:     inv.id,
		RunID:  m.runID,
		Stage:  inv.stage.Name,
		Sample: inv.sample,
	}); err != nil {
		m.logger.Error("failed to record pending invocation",
			logging.String(logging.FieldStage, inv.stage.Name),
			logging.String(logging.FieldSample, inv.sample),
			logging.Error(err))
	}

	m.mu.Lock()
	if m.aborted {
		m.mu.Unlock()
		inv.done()
		return
	}
	m.queue = append(m.queue, inv)
	m.cond.Broadcast()
	m.mu.Unlock()
}

// dispatch is the scheduler's wait loop. It repeatedly selects the first
// ready invocation whose resource spec fits the unused budget, reserves that
// budget, and launches it; when none fit it sleeps until an invocation
// completes or a new one arrives. It returns once every feeder has finished
// and no work remains queued or running.
func (m *Manager) dispatch(ctx context.Context) {
	budget := m.cfg.Resources
	for {
		m.mu.Lock()
		for {
			if m.aborted {
				// Queued invocations never run; their completion callbacks
				// must still fire so feeders waiting on in-flight work return.
				drained := m.queue
				m.queue = nil
				m.mu.Unlock()
				for _, queued := range drained {
					queued.done()
				}
				return
			}
			if inv := m.takeFittingLocked(budget.CPUs, budget.MemoryMB); inv != nil {
				m.running++
				m.mu.Unlock()
				go m.execute(ctx, inv)
				break
			}
			if m.feeding == 0 && len(m.queue) == 0 && m.running == 0 {
				m.mu.Unlock()
				return
			}
			m.cond.Wait()
		}
	}
}

// takeFittingLocked removes and returns the first queued invocation that fits
// the unused budget; nil when none fit.
func (m *Manager) takeFittingLocked(budgetCPU, budgetMem int) *invocation {
	for i, inv := range m.queue {
		res := inv.stage.Resources
		if m.usedCPU+res.CPUs <= budgetCPU && m.usedMem+res.MemoryMB <= budgetMem {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			m.usedCPU += res.CPUs
			m.usedMem += res.MemoryMB
			return inv
		}
	}
	return nil
}

// release returns an invocation's reservation to the budget and wakes the
// dispatcher. Safe under concurrent completion notifications.
func (m *Manager) release(inv *invocation) {
	m.mu.Lock()
	m.usedCPU -= inv.stage.Resources.CPUs
	m.usedMem -= inv.stage.Resources.MemoryMB
	m.running--
	m.cond.Broadcast()
	m.mu.Unlock()
}

// Reserved reports the currently reserved budget. Used by status surfaces
// and tests asserting the budget invariant.
func (m *Manager) Reserved() (cpus, memoryMB int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usedCPU, m.usedMem
}

// elapsed rounds a duration for log output.
func elapsed(start time.Time) time.Duration {
	return time.Since(start).Round(time.Millisecond)
}
