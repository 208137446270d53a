// Package runrecord persists the per-invocation record of a pipeline run in
// SQLite: status transitions, exit codes, produced outputs, and publish
// failures. The record survives an aborted run for inspection.
package runrecord
