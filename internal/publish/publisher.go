// Package publish copies declared invocation outputs into the results tree,
// organized by stage name. Publish failures are reporting-surface defects and
// never invalidate a succeeded invocation.
package publish

import (
	"fmt"
	"path/filepath"

	"bactpipe/internal/fileutil"
	"bactpipe/internal/services"
	"bactpipe/internal/stage"
)

// Publisher materializes artifacts under root.
type Publisher struct {
	root string
}

// New creates a publisher rooted at the run's output directory.
func New(root string) *Publisher {
	return &Publisher{root: root}
}

// Root returns the results tree root.
func (p *Publisher) Root() string { return p.root }

// Dir returns the publish directory for a stage invocation:
// <root>/<stage>/<sample>/ for per-sample work, <root>/<stage>/ for the
// global barrier invocation.
func (p *Publisher) Dir(stageName, sample string) string {
	if sample == "" || sample == stage.GlobalKey {
		return filepath.Join(p.root, stageName)
	}
	return filepath.Join(p.root, stageName, sample)
}

// Publish copies files into the stage's publish directory, preserving
// original filenames. The returned error carries the ErrPublish marker.
func (p *Publisher) Publish(stageName, sample string, files []string) error {
	dest := p.Dir(stageName, sample)
	for _, file := range files {
		if _, err := fileutil.CopyInto(file, dest); err != nil {
			return services.Wrap(services.ErrPublish, stageName, "publish artifacts",
				fmt.Sprintf("copy %s into %s", filepath.Base(file), dest), err)
		}
	}
	return nil
}
