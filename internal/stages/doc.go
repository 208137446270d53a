// Package stages holds the declarative definitions of the pipeline's fixed
// stage sequence: fastp trimming, mash contaminant screening, shovill
// assembly, prokka annotation, and the multiqc aggregate report.
package stages
