package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProfile()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	expanded, err := ExpandPath(c.Paths.OutputDir)
	if err != nil {
		return err
	}
	if expanded == "" {
		expanded = defaultOutputDir
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}
	c.Paths.OutputDir = abs

	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = filepath.Join(abs, "work")
	} else {
		workExpanded, err := ExpandPath(c.Paths.WorkDir)
		if err != nil {
			return err
		}
		if c.Paths.WorkDir, err = filepath.Abs(workExpanded); err != nil {
			return fmt.Errorf("resolve work dir: %w", err)
		}
	}

	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(abs, "logs")
	} else {
		logExpanded, err := ExpandPath(c.Paths.LogDir)
		if err != nil {
			return err
		}
		if c.Paths.LogDir, err = filepath.Abs(logExpanded); err != nil {
			return fmt.Errorf("resolve log dir: %w", err)
		}
	}

	if c.Screen.SketchDB != "" {
		sketch, err := ExpandPath(c.Screen.SketchDB)
		if err != nil {
			return err
		}
		c.Screen.SketchDB = sketch
	}
	return nil
}

func (c *Config) normalizeProfile() {
	c.Profile.Name = strings.ToLower(strings.TrimSpace(c.Profile.Name))
	if c.Profile.Name == "" {
		c.Profile.Name = ProfileLocal
	}
	if c.Profile.Project == "" {
		c.Profile.Project = strings.TrimSpace(os.Getenv("BACTPIPE_PROJECT"))
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
