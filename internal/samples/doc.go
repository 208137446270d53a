// Package samples discovers paired-end read files from a glob pattern and
// groups them into samples keyed by the shared filename stem. It feeds the
// pipeline's initial channel.
package samples
