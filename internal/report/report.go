// Package report renders the end-of-run summary printed to the terminal:
// one line per invocation grouped by stage, every failure called out with
// its recorded error, and the results tree location.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bactpipe/internal/runrecord"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiBlue  = "\x1b[34m"
)

// Data collects everything the run report shows.
type Data struct {
	RunID       string
	Summary     runrecord.Summary
	Invocations []runrecord.Invocation
	OutputRoot  string
}

var titleCaser = cases.Title(language.Und)

// StageLabel formats an internal stage name for display.
func StageLabel(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

// Render writes the run report. Color is applied only when the writer is a
// terminal.
func Render(w io.Writer, data Data) {
	colorize := shouldColorize(w)

	for _, line := range renderSectionHeader("Run "+data.RunID, colorize) {
		fmt.Fprintln(w, line)
	}

	headers := table.Row{"Stage", "Sample", "Status", "Duration", "Exit"}
	rows := make([]table.Row, 0, len(data.Invocations))
	for _, inv := range data.Invocations {
		rows = append(rows, table.Row{
			StageLabel(inv.Stage),
			inv.Sample,
			statusCell(inv.Status, colorize),
			durationCell(inv),
			exitCell(inv),
		})
	}
	fmt.Fprintln(w, renderTable(headers, rows, 4, 5))

	for _, inv := range data.Invocations {
		if inv.Status == runrecord.StatusFailed {
			line := fmt.Sprintf("  %s / %s: %s", StageLabel(inv.Stage), inv.Sample, inv.ErrorMessage)
			if colorize {
				line = ansiRed + line + ansiReset
			}
			fmt.Fprintln(w, line)
		}
		if inv.PublishError != "" {
			fmt.Fprintf(w, "  %s / %s: publish failed: %s\n", StageLabel(inv.Stage), inv.Sample, inv.PublishError)
		}
	}

	sum := data.Summary
	totals := fmt.Sprintf("%d invocations: %d succeeded, %d failed", sum.Total, sum.Succeeded, sum.Failed)
	if colorize {
		if sum.Success() {
			totals = ansiGreen + totals + ansiReset
		} else {
			totals = ansiRed + totals + ansiReset
		}
	}
	fmt.Fprintln(w, totals)
	fmt.Fprintf(w, "Results: %s\n", data.OutputRoot)
}

func statusCell(status runrecord.Status, colorize bool) string {
	label := strings.ToUpper(string(status))
	if !colorize {
		return label
	}
	switch status {
	case runrecord.StatusSucceeded:
		return ansiGreen + label + ansiReset
	case runrecord.StatusFailed:
		return ansiRed + label + ansiReset
	default:
		return label
	}
}

func durationCell(inv runrecord.Invocation) string {
	d := inv.Duration()
	if d <= 0 {
		return "-"
	}
	return d.Round(100 * time.Millisecond).String()
}

func exitCell(inv runrecord.Invocation) string {
	if inv.ExitCode == nil {
		return "-"
	}
	return strconv.Itoa(*inv.ExitCode)
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
