// Command bactpipe runs the bacterial genomics batch pipeline: read
// trimming, optional contaminant screening, assembly, annotation, and an
// aggregate quality report, scheduled under a global resource budget.
package main
