package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"bactpipe/internal/channel"
	"bactpipe/internal/config"
	"bactpipe/internal/logging"
	"bactpipe/internal/publish"
	"bactpipe/internal/runrecord"
	"bactpipe/internal/samples"
	"bactpipe/internal/services"
	"bactpipe/internal/stage"
	"bactpipe/internal/tools"
)

// Manager coordinates one run: it feeds channel arrivals into invocations,
// dispatches them under the global resource budget, and routes completions
// back into the channel graph. It is the only component that starts
// invocations and the sole owner of invocation lifecycle transitions.
type Manager struct {
	cfg    *config.Config
	graph  *stage.Graph
	runner tools.Runner
	store  *runrecord.Store
	pub    *publish.Publisher
	logger *slog.Logger
	runID  string

	channels map[string]*channel.Channel

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []*invocation
	usedCPU int
	usedMem int
	running int
	feeding int
	aborted bool
}

// NewManager constructs a workflow manager for one run.
func NewManager(cfg *config.Config, graph *stage.Graph, runner tools.Runner, store *runrecord.Store, pub *publish.Publisher, logger *slog.Logger) *Manager {
	m := &Manager{
		cfg:    cfg,
		graph:  graph,
		runner: runner,
		store:  store,
		pub:    pub,
		logger: logging.NewComponentLogger(logger, "workflow"),
		runID:  uuid.NewString(),
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// RunID returns the identifier recorded for this run.
func (m *Manager) RunID() string { return m.runID }

// Run executes the pipeline over the discovered samples and blocks until
// every invocation reaches a terminal state. Invocation failures are
// recorded, not returned; the error covers engine-level aborts only.
func (m *Manager) Run(ctx context.Context, input []samples.Sample) (runrecord.Summary, error) {
	ctx = services.WithRunID(ctx, m.runID)
	logger := logging.WithContext(ctx, m.logger)

	if err := m.store.BeginRun(ctx, m.runID, len(input), m.pub.Root()); err != nil {
		return runrecord.Summary{}, fmt.Errorf("begin run record: %w", err)
	}

	channels := make(map[string]*channel.Channel, len(m.graph.ChannelNames()))
	for _, name := range m.graph.ChannelNames() {
		channels[name] = channel.New(name)
	}
	m.channels = channels

	entry := channels[m.graph.Entry]
	for _, s := range input {
		entry.Publish(channel.Item{Key: s.Key, Paths: s.Reads()})
	}
	entry.Close()
	logger.Info("samples registered",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Int("samples", len(input)),
		logging.Int("stages", len(m.graph.Stages)))

	// Wake the dispatcher if the run context is torn down mid-wait.
	stopWatch := context.AfterFunc(ctx, func() {
		m.mu.Lock()
		m.aborted = true
		m.cond.Broadcast()
		m.mu.Unlock()
	})
	defer stopWatch()

	var feeders sync.WaitGroup
	m.mu.Lock()
	m.feeding = len(m.graph.Stages)
	m.mu.Unlock()
	for _, st := range m.graph.Stages {
		feeders.Add(1)
		go func(st *stage.Stage) {
			defer feeders.Done()
			defer m.feederDone()
			if st.Barrier {
				m.feedBarrier(ctx, st, channels)
			} else {
				m.feedPerItem(ctx, st, channels)
			}
		}(st)
	}

	m.dispatch(ctx)
	feeders.Wait()

	if err := ctx.Err(); err != nil {
		// Partial records and published outputs stay on disk.
		_ = m.store.FinishRun(context.WithoutCancel(ctx), m.runID, false)
		return runrecord.Summary{}, err
	}
	sum, err := m.store.Summary(ctx, m.runID)
	if err != nil {
		return runrecord.Summary{}, err
	}
	if err := m.store.FinishRun(ctx, m.runID, sum.Success()); err != nil {
		logger.Error("failed to persist run completion", logging.Error(err))
	}
	return sum, nil
}

func (m *Manager) feederDone() {
	m.mu.Lock()
	m.feeding--
	m.cond.Broadcast()
	m.mu.Unlock()
}

// feedPerItem creates one invocation per arriving work item and closes the
// stage's output channels once the input is drained and all in-flight
// invocations have finished. The graph guarantees each channel has a single
// producer, so the feeder owns the close.
func (m *Manager) feedPerItem(ctx context.Context, st *stage.Stage, channels map[string]*channel.Channel) {
	sub := channels[st.Inputs[0]].Subscribe()
	var inflight sync.WaitGroup
	for {
		item, ok, err := sub.Next(ctx)
		if err != nil || !ok {
			break
		}
		inflight.Add(1)
		m.submit(&invocation{
			id:     uuid.NewString(),
			stage:  st,
			sample: item.Key,
			inputs: []channel.Item{item},
			done:   inflight.Done,
		})
	}
	inflight.Wait()
	for _, out := range st.Outputs {
		channels[out].Close()
	}
}

// feedBarrier waits for every producer channel feeding the stage to close,
// then creates exactly one invocation over the accumulated set.
func (m *Manager) feedBarrier(ctx context.Context, st *stage.Stage, channels map[string]*channel.Channel) {
	var collected []channel.Item
	for _, in := range st.Inputs {
		batch, err := channels[in].CollectAll(ctx)
		if err != nil {
			return
		}
		collected = append(collected, batch...)
	}
	var inflight sync.WaitGroup
	inflight.Add(1)
	m.submit(&invocation{
		id:     uuid.NewString(),
		stage:  st,
		sample: stage.GlobalKey,
		inputs: collected,
		done:   inflight.Done,
	})
	inflight.Wait()
	for _, out := range st.Outputs {
		channels[out].Close()
	}
}
