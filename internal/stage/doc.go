// Package stage defines the unit of pipeline work: a named stage with channel
// wiring, a resource requirement, and a command template, plus the validated
// DAG the stages form through their channel declarations.
package stage
