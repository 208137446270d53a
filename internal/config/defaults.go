package config

const (
	// ProfileLocal runs every stage binary on the current host.
	ProfileLocal = "local"
	// ProfileSlurm expects stage binaries to be wrapped for cluster
	// submission and requires a project allocation id.
	ProfileSlurm = "slurm"
)

const (
	defaultOutputDir  = "./bactpipe_results"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"
	defaultCPUs       = 8
	defaultMemoryMB   = 16384
	defaultQuality    = 15
	defaultMinLength  = 30
	defaultDepth      = 100
	defaultKmers      = "31,55,79,103,127"
	defaultAssemblyGb = 8
	defaultEvalue     = 1e-9
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
		},
		Profile: Profile{
			Name: ProfileLocal,
		},
		Resources: Resources{
			CPUs:     defaultCPUs,
			MemoryMB: defaultMemoryMB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Fastp: Fastp{
			Binary:    "fastp",
			Threads:   4,
			MemoryMB:  2048,
			Quality:   defaultQuality,
			MinLength: defaultMinLength,
		},
		Screen: Screen{
			Enabled:  false,
			Binary:   "mash",
			Threads:  2,
			MemoryMB: 4096,
			Winner:   true,
		},
		Assembly: Assembly{
			Binary:   "shovill",
			Threads:  4,
			MemoryMB: 8192,
			Depth:    defaultDepth,
			Kmers:    defaultKmers,
			RAMGb:    defaultAssemblyGb,
		},
		Annotation: Annotation{
			Binary:   "prokka",
			Threads:  4,
			MemoryMB: 4096,
			Evalue:   defaultEvalue,
		},
		Report: Report{
			Binary:   "multiqc",
			MemoryMB: 1024,
			Title:    "BACTpipe report",
		},
	}
}
