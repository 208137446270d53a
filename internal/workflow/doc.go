// Package workflow is the pipeline's scheduler and executor: it turns channel
// arrivals into stage invocations, dispatches them concurrently under the
// global resource budget, and routes completions back into the channel graph.
// Failed invocations are isolated to their sample's downstream path; other
// samples proceed independently.
package workflow
