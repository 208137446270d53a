package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"bactpipe/internal/config"
	"bactpipe/internal/logging"
	"bactpipe/internal/preflight"
	"bactpipe/internal/publish"
	"bactpipe/internal/report"
	"bactpipe/internal/runlock"
	"bactpipe/internal/runrecord"
	"bactpipe/internal/samples"
	"bactpipe/internal/stages"
	"bactpipe/internal/tools"
	"bactpipe/internal/workflow"
)

type runFlags struct {
	reads            string
	outputDir        string
	profile          string
	project          string
	cpus             int
	memoryMB         int
	fastpQuality     int
	assemblyDepth    int
	assemblyKmers    string
	annotationEvalue float64
	annotationGenus  string
	screenDB         string
	logLevel         string
	logFormat        string
}

func newRunCommand(configFlag *string) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the pipeline over a set of paired-end read files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(flags.reads) == "" {
				return fmt.Errorf("--reads is required")
			}

			cfg, configPath, exists, err := config.Load(*configFlag)
			if err != nil {
				return err
			}
			if err := applyOverrides(cfg, cmd, &flags); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runPipeline(cmd, cfg, configPath, exists, flags.reads)
		},
	}

	cmd.Flags().StringVar(&flags.reads, "reads", "", "Glob matching the paired-end fastq files to process")
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", "", "Root of the results tree (work/ and logs/ live beneath it)")
	cmd.Flags().StringVar(&flags.profile, "profile", "", "Execution profile (local or slurm)")
	cmd.Flags().StringVar(&flags.project, "project", "", "Cluster project allocation (slurm profile)")
	cmd.Flags().IntVar(&flags.cpus, "cpus", 0, "Global CPU budget shared by concurrent stages")
	cmd.Flags().IntVar(&flags.memoryMB, "memory-mb", 0, "Global memory budget in MB")
	cmd.Flags().IntVar(&flags.fastpQuality, "fastp-quality", 0, "Minimum qualified base quality for trimming")
	cmd.Flags().IntVar(&flags.assemblyDepth, "assembly-depth", 0, "Target assembly subsampling depth")
	cmd.Flags().StringVar(&flags.assemblyKmers, "assembly-kmers", "", "Comma-separated assembly k-mer sizes")
	cmd.Flags().Float64Var(&flags.annotationEvalue, "annotation-evalue", 0, "Annotation similarity e-value cutoff")
	cmd.Flags().StringVar(&flags.annotationGenus, "annotation-genus", "", "Expected genus for genus-specific annotation")
	cmd.Flags().StringVar(&flags.screenDB, "screen-db", "", "Mash sketch database; enables contaminant screening")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&flags.logFormat, "log-format", "", "Log format (console or json)")

	return cmd
}

// applyOverrides folds changed command-line flags into the loaded config.
// Relocating the output directory moves the derived work and log trees with
// it.
func applyOverrides(cfg *config.Config, cmd *cobra.Command, flags *runFlags) error {
	if cmd.Flags().Changed("output-dir") {
		expanded, err := config.ExpandPath(flags.outputDir)
		if err != nil {
			return err
		}
		abs, err := filepath.Abs(expanded)
		if err != nil {
			return fmt.Errorf("resolve output dir: %w", err)
		}
		cfg.Paths.OutputDir = abs
		cfg.Paths.WorkDir = filepath.Join(abs, "work")
		cfg.Paths.LogDir = filepath.Join(abs, "logs")
	}
	if cmd.Flags().Changed("profile") {
		cfg.Profile.Name = flags.profile
	}
	if cmd.Flags().Changed("project") {
		cfg.Profile.Project = flags.project
	}
	if cmd.Flags().Changed("cpus") {
		cfg.Resources.CPUs = flags.cpus
	}
	if cmd.Flags().Changed("memory-mb") {
		cfg.Resources.MemoryMB = flags.memoryMB
	}
	if cmd.Flags().Changed("fastp-quality") {
		cfg.Fastp.Quality = flags.fastpQuality
	}
	if cmd.Flags().Changed("assembly-depth") {
		cfg.Assembly.Depth = flags.assemblyDepth
	}
	if cmd.Flags().Changed("assembly-kmers") {
		cfg.Assembly.Kmers = flags.assemblyKmers
	}
	if cmd.Flags().Changed("annotation-evalue") {
		cfg.Annotation.Evalue = flags.annotationEvalue
	}
	if cmd.Flags().Changed("annotation-genus") {
		cfg.Annotation.Genus = flags.annotationGenus
	}
	if cmd.Flags().Changed("screen-db") {
		cfg.Screen.Enabled = true
		cfg.Screen.SketchDB = flags.screenDB
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = flags.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Logging.Format = flags.logFormat
	}
	return nil
}

func runPipeline(cmd *cobra.Command, cfg *config.Config, configPath string, configExists bool, readsGlob string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err := logging.NewForRun(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
	if err != nil {
		return err
	}
	logger.Info("configuration loaded",
		append([]any{logging.String("path", configPath)}, configEcho(cfg)...)...)
	if !configExists {
		logger.Warn("config file not found, using defaults", logging.String("path", configPath))
	}

	discovered, err := samples.Discover(readsGlob)
	if err != nil {
		return err
	}
	logger.Info("samples discovered", logging.Int("count", len(discovered)))

	lock, err := runlock.Acquire(cfg.Paths.OutputDir)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	store, err := runrecord.Open(cfg.Paths.LogDir)
	if err != nil {
		return err
	}
	defer store.Close()

	checks := preflight.RunAll(ctx, cfg)
	for _, check := range checks {
		if check.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", check.Name), logging.String("detail", check.Detail))
		} else {
			logger.Error("preflight check failed",
				logging.String("check", check.Name), logging.String("detail", check.Detail))
		}
	}
	if failed := preflight.Failed(checks); len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for _, check := range failed {
			names = append(names, check.Name)
		}
		return fmt.Errorf("preflight failed: %s", strings.Join(names, ", "))
	}

	graph, err := stages.Build(cfg)
	if err != nil {
		return err
	}

	manager := workflow.NewManager(cfg, graph, tools.NewCommandRunner(), store,
		publish.New(cfg.Paths.OutputDir), logger)
	sum, err := manager.Run(ctx, discovered)
	if err != nil {
		return err
	}

	invocations, err := store.ListInvocations(ctx, manager.RunID())
	if err != nil {
		return err
	}
	report.Render(cmd.OutOrStdout(), report.Data{
		RunID:       manager.RunID(),
		Summary:     sum,
		Invocations: invocations,
		OutputRoot:  cfg.Paths.OutputDir,
	})

	if !sum.Success() {
		return fmt.Errorf("%d of %d stage invocations failed", sum.Failed, sum.Total)
	}
	return nil
}

// configEcho flattens the startup settings echo into sorted log attrs.
func configEcho(cfg *config.Config) []any {
	fields := cfg.LogFields()
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	attrs := make([]any, 0, len(keys))
	for _, key := range keys {
		attrs = append(attrs, logging.Any(key, fields[key]))
	}
	return attrs
}
