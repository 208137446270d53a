// Package services defines the error taxonomy shared by pipeline components
// and the context keys used to correlate log output with runs, stages, and
// samples.
package services
