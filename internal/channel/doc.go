// Package channel implements the typed conduits connecting pipeline stages:
// ordered publish/subscribe with independent fan-out per consumer and a
// close-triggered collect barrier for aggregate stages.
package channel
