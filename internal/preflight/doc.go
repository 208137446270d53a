// Package preflight provides readiness checks for the external tools and
// filesystem paths a run depends on. The run command executes RunAll after
// configuration is validated and before any sample is scheduled; a failed
// check aborts the run up front instead of wasting hours on a doomed one.
package preflight
