// Package tools runs the external stage binaries. The engine never interprets
// tool output beyond the exit status, a stderr tail for diagnostics, and the
// presence of declared output files.
package tools
