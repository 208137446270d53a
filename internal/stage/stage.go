package stage

import (
	"sort"

	"bactpipe/internal/channel"
)

// Resources is one invocation's reservation against the global budget.
type Resources struct {
	CPUs     int
	MemoryMB int
}

// Command is the external process an invocation runs. The engine treats the
// binary as a black box: it inspects only the exit status and the presence of
// the declared outputs.
type Command struct {
	Binary string
	Args   []string
	// Dir is the invocation's working directory; tools write outputs here.
	Dir string
	// StdoutFile, when set, captures the command's stdout (tools such as
	// mash screen report on stdout).
	StdoutFile string
}

// Outputs declares the files an invocation must produce. Forward maps each of
// the stage's output channels to the paths published on it as the sample's
// work item; Artifacts are published into the results tree only.
type Outputs struct {
	Forward   map[string][]string
	Artifacts []string
}

// All returns every declared output path, forwarded paths in channel name
// order followed by the artifacts.
func (o Outputs) All() []string {
	channels := make([]string, 0, len(o.Forward))
	for name := range o.Forward {
		channels = append(channels, name)
	}
	sort.Strings(channels)

	var all []string
	for _, name := range channels {
		all = append(all, o.Forward[name]...)
	}
	return append(all, o.Artifacts...)
}

// Request carries everything a stage needs to build one command: the sample
// key ("global" for barrier stages), the arrived input items, and a private
// scratch directory.
type Request struct {
	Sample  string
	Inputs  []channel.Item
	WorkDir string
}

// GlobalKey is the sample key used for collect-barrier invocations.
const GlobalKey = "global"

// Stage is one named processing step: its channel wiring, resource
// requirement, and command construction. Stages are registered once at
// startup and never mutated.
type Stage struct {
	Name      string
	Inputs    []string
	Outputs   []string
	Barrier   bool
	Resources Resources

	// Build instantiates the stage's command template for one invocation and
	// declares the outputs the engine will verify, forward, and publish.
	Build func(req Request) (Command, Outputs, error)
}
