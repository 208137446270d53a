package config

import (
	"fmt"
	"strconv"
	"strings"

	"bactpipe/internal/services"
)

// Validate checks the configuration after normalization. Violations are
// configuration errors: fatal, nothing gets scheduled.
func (c *Config) Validate() error {
	if err := c.validateProfile(); err != nil {
		return err
	}
	if err := c.validateResources(); err != nil {
		return err
	}
	if err := c.validateStages(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateProfile() error {
	switch c.Profile.Name {
	case ProfileLocal:
		return nil
	case ProfileSlurm:
		if strings.TrimSpace(c.Profile.Project) == "" {
			return services.Wrap(services.ErrConfiguration, "", "profile check",
				"profile.project is required when profile is slurm (set BACTPIPE_PROJECT or --project)", nil)
		}
		return nil
	default:
		return services.Wrap(services.ErrConfiguration, "", "profile check",
			fmt.Sprintf("unknown profile %q (expected %s or %s)", c.Profile.Name, ProfileLocal, ProfileSlurm), nil)
	}
}

func (c *Config) validateResources() error {
	if c.Resources.CPUs <= 0 {
		return services.Wrap(services.ErrConfiguration, "", "resources", "cpus must be positive", nil)
	}
	if c.Resources.MemoryMB <= 0 {
		return services.Wrap(services.ErrConfiguration, "", "resources", "memory_mb must be positive", nil)
	}
	return nil
}

func (c *Config) validateStages() error {
	type stageSpec struct {
		name     string
		threads  int
		memoryMB int
	}
	specs := []stageSpec{
		{"fastp", c.Fastp.Threads, c.Fastp.MemoryMB},
		{"assembly", c.Assembly.Threads, c.Assembly.MemoryMB},
		{"annotation", c.Annotation.Threads, c.Annotation.MemoryMB},
		{"report", 1, c.Report.MemoryMB},
	}
	if c.Screen.Enabled {
		specs = append(specs, stageSpec{"screen", c.Screen.Threads, c.Screen.MemoryMB})
		if strings.TrimSpace(c.Screen.SketchDB) == "" {
			return services.Wrap(services.ErrConfiguration, "screen", "", "screen.sketch_db is required when screening is enabled", nil)
		}
	}
	for _, spec := range specs {
		if spec.threads <= 0 {
			return services.Wrap(services.ErrConfiguration, spec.name, "", "threads must be positive", nil)
		}
		if spec.memoryMB <= 0 {
			return services.Wrap(services.ErrConfiguration, spec.name, "", "memory_mb must be positive", nil)
		}
		// A stage that can never fit the global budget would deadlock the
		// scheduler's wait loop.
		if spec.threads > c.Resources.CPUs {
			return services.Wrap(services.ErrConfiguration, spec.name, "",
				fmt.Sprintf("threads %d exceed resource budget of %d cpus", spec.threads, c.Resources.CPUs), nil)
		}
		if spec.memoryMB > c.Resources.MemoryMB {
			return services.Wrap(services.ErrConfiguration, spec.name, "",
				fmt.Sprintf("memory %d MB exceeds resource budget of %d MB", spec.memoryMB, c.Resources.MemoryMB), nil)
		}
	}

	if c.Fastp.Quality < 0 || c.Fastp.Quality > 40 {
		return services.Wrap(services.ErrConfiguration, "fastp", "", "quality must be within 0..40", nil)
	}
	if c.Fastp.MinLength < 0 {
		return services.Wrap(services.ErrConfiguration, "fastp", "", "min_length must not be negative", nil)
	}
	if c.Assembly.Depth <= 0 {
		return services.Wrap(services.ErrConfiguration, "assembly", "", "depth must be positive", nil)
	}
	if err := validateKmers(c.Assembly.Kmers); err != nil {
		return err
	}
	if c.Annotation.Evalue <= 0 {
		return services.Wrap(services.ErrConfiguration, "annotation", "", "evalue must be positive", nil)
	}
	return nil
}

func validateKmers(list string) error {
	if strings.TrimSpace(list) == "" {
		return services.Wrap(services.ErrConfiguration, "assembly", "", "kmers must not be empty", nil)
	}
	for _, part := range strings.Split(list, ",") {
		k, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || k < 21 || k%2 == 0 {
			return services.Wrap(services.ErrConfiguration, "assembly", "",
				fmt.Sprintf("kmers entry %q must be an odd integer >= 21", strings.TrimSpace(part)), nil)
		}
	}
	return nil
}
