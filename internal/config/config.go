package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for a run.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	WorkDir   string `toml:"work_dir"`
	LogDir    string `toml:"log_dir"`
}

// Profile selects how external commands are expected to be provisioned.
// The slurm profile requires a project allocation identifier.
type Profile struct {
	Name    string `toml:"name"`
	Project string `toml:"project"`
}

// Resources is the global budget shared by all concurrently running
// invocations.
type Resources struct {
	CPUs     int `toml:"cpus"`
	MemoryMB int `toml:"memory_mb"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Fastp configures the read trimming stage.
type Fastp struct {
	Binary    string `toml:"binary"`
	Threads   int    `toml:"threads"`
	MemoryMB  int    `toml:"memory_mb"`
	Quality   int    `toml:"quality"`
	MinLength int    `toml:"min_length"`
}

// Screen configures the contaminant screening stage (mash screen).
type Screen struct {
	Enabled  bool   `toml:"enabled"`
	Binary   string `toml:"binary"`
	Threads  int    `toml:"threads"`
	MemoryMB int    `toml:"memory_mb"`
	SketchDB string `toml:"sketch_db"`
	Winner   bool   `toml:"winner"`
}

// Assembly configures the genome assembly stage (shovill).
type Assembly struct {
	Binary   string `toml:"binary"`
	Threads  int    `toml:"threads"`
	MemoryMB int    `toml:"memory_mb"`
	Depth    int    `toml:"depth"`
	Kmers    string `toml:"kmers"`
	RAMGb    int    `toml:"ram_gb"`
}

// Annotation configures the genome annotation stage (prokka).
type Annotation struct {
	Binary   string  `toml:"binary"`
	Threads  int     `toml:"threads"`
	MemoryMB int     `toml:"memory_mb"`
	Evalue   float64 `toml:"evalue"`
	Genus    string  `toml:"genus"`
}

// Report configures the aggregate report stage (multiqc).
type Report struct {
	Binary   string `toml:"binary"`
	MemoryMB int    `toml:"memory_mb"`
	Title    string `toml:"title"`
}

// Config is the immutable parameter set for one pipeline run. It is
// constructed once at startup and passed by reference to every component.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Profile    Profile    `toml:"profile"`
	Resources  Resources  `toml:"resources"`
	Logging    Logging    `toml:"logging"`
	Fastp      Fastp      `toml:"fastp"`
	Screen     Screen     `toml:"screen"`
	Assembly   Assembly   `toml:"assembly"`
	Annotation Annotation `toml:"annotation"`
	Report     Report     `toml:"report"`
}

// DefaultConfigPath returns the location probed when --config is not given.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "bactpipe", "config.toml"), nil
}

// Load reads and normalizes configuration. Validation is left to the caller
// so command-line overrides can be applied first. When path is empty the
// default location is probed; a missing file yields defaults. Returns the
// resolved path and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		def, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		trimmed = def
	}

	expanded, err := ExpandPath(trimmed)
	if err != nil {
		return "", false, err
	}

	info, err := os.Stat(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

// EnsureDirectories creates the output, work, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.WorkDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ExpandPath resolves a leading ~ against the current home directory.
func ExpandPath(pathValue string) (string, error) {
	trimmed := strings.TrimSpace(pathValue)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return trimmed, nil
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LogFields returns the startup echo of effective settings, excluding
// internal and help-only keys.
func (c *Config) LogFields() map[string]any {
	fields := map[string]any{
		"output_dir":         c.Paths.OutputDir,
		"work_dir":           c.Paths.WorkDir,
		"profile":            c.Profile.Name,
		"resources.cpus":     c.Resources.CPUs,
		"resources.memory":   c.Resources.MemoryMB,
		"fastp.threads":      c.Fastp.Threads,
		"fastp.quality":      c.Fastp.Quality,
		"fastp.min_length":   c.Fastp.MinLength,
		"screen.enabled":     c.Screen.Enabled,
		"assembly.threads":   c.Assembly.Threads,
		"assembly.depth":     c.Assembly.Depth,
		"assembly.kmers":     c.Assembly.Kmers,
		"annotation.evalue":  c.Annotation.Evalue,
		"annotation.threads": c.Annotation.Threads,
	}
	if c.Screen.Enabled {
		fields["screen.sketch_db"] = c.Screen.SketchDB
	}
	if c.Profile.Name == ProfileSlurm {
		fields["profile.project"] = c.Profile.Project
	}
	return fields
}
