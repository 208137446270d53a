package stage

import (
	"fmt"
	"strings"

	"bactpipe/internal/services"
)

// Graph is the validated stage DAG: stages as nodes, channels as edges.
// Entry names the channel fed by the sample registry.
type Graph struct {
	Entry  string
	Stages []*Stage

	producers map[string][]*Stage
	consumers map[string][]*Stage
}

// NewGraph validates the declarative stage wiring: unique names, every input
// channel produced (or the entry channel), per-item stages reading exactly
// one channel, one producer per channel, and acyclicity. The single-producer
// rule is load-bearing: a channel closes when its producing stage finishes,
// so a second producer could publish after the close.
func NewGraph(entry string, stages ...*Stage) (*Graph, error) {
	if strings.TrimSpace(entry) == "" {
		return nil, wiringErr("entry channel name is empty")
	}
	g := &Graph{
		Entry:     entry,
		Stages:    stages,
		producers: make(map[string][]*Stage),
		consumers: make(map[string][]*Stage),
	}

	names := make(map[string]bool, len(stages))
	for _, st := range stages {
		if st.Name == "" {
			return nil, wiringErr("stage with empty name")
		}
		if names[st.Name] {
			return nil, wiringErr(fmt.Sprintf("duplicate stage name %q", st.Name))
		}
		names[st.Name] = true
		if st.Build == nil {
			return nil, wiringErr(fmt.Sprintf("stage %q has no command builder", st.Name))
		}
		if len(st.Inputs) == 0 {
			return nil, wiringErr(fmt.Sprintf("stage %q reads no channels", st.Name))
		}
		if !st.Barrier && len(st.Inputs) != 1 {
			return nil, wiringErr(fmt.Sprintf("per-item stage %q must read exactly one channel", st.Name))
		}
		for _, out := range st.Outputs {
			if out == entry {
				return nil, wiringErr(fmt.Sprintf("stage %q writes the entry channel", st.Name))
			}
			if existing := g.producers[out]; len(existing) > 0 {
				return nil, wiringErr(fmt.Sprintf("channel %q written by both %q and %q", out, existing[0].Name, st.Name))
			}
			g.producers[out] = append(g.producers[out], st)
		}
	}
	for _, st := range stages {
		for _, in := range st.Inputs {
			if in != entry && len(g.producers[in]) == 0 {
				return nil, wiringErr(fmt.Sprintf("stage %q reads channel %q which nothing produces", st.Name, in))
			}
			g.consumers[in] = append(g.consumers[in], st)
		}
	}
	for name := range g.producers {
		if len(g.consumers[name]) == 0 {
			return nil, wiringErr(fmt.Sprintf("channel %q has producers but no consumer", name))
		}
	}

	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}
	return g, nil
}

// Producers returns the stages writing the named channel.
func (g *Graph) Producers(channel string) []*Stage { return g.producers[channel] }

// Consumers returns the stages reading the named channel.
func (g *Graph) Consumers(channel string) []*Stage { return g.consumers[channel] }

// ChannelNames returns every channel referenced by the graph, entry included.
func (g *Graph) ChannelNames() []string {
	seen := map[string]bool{g.Entry: true}
	names := []string{g.Entry}
	for _, st := range g.Stages {
		for _, name := range append(append([]string{}, st.Inputs...), st.Outputs...) {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// checkAcyclic runs Kahn's algorithm over stage-level edges.
func (g *Graph) checkAcyclic() error {
	indegree := make(map[*Stage]int, len(g.Stages))
	edges := make(map[*Stage][]*Stage, len(g.Stages))
	for _, producer := range g.Stages {
		for _, out := range producer.Outputs {
			for _, consumer := range g.consumers[out] {
				edges[producer] = append(edges[producer], consumer)
				indegree[consumer]++
			}
		}
	}

	queue := make([]*Stage, 0, len(g.Stages))
	for _, st := range g.Stages {
		if indegree[st] == 0 {
			queue = append(queue, st)
		}
	}
	visited := 0
	for len(queue) > 0 {
		st := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range edges[st] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if visited != len(g.Stages) {
		return wiringErr("stage graph contains a cycle")
	}
	return nil
}

func wiringErr(msg string) error {
	return services.Wrap(services.ErrConfiguration, "", "stage wiring", msg, nil)
}
