// Package output renders per-root scan statistics as a table.
//
// The table is an operator aid written to stderr after a scan; it never
// touches the report lines on stdout.
package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/otuschhoff/makofind/pkg/scan"
)

// Formatter renders a scan.Report as a summary table.
type Formatter struct {
	color    bool // Use the colored style (for terminals)
	noHeader bool // Omit header row
}

// NewFormatter creates a new Formatter.
func NewFormatter(color, noHeader bool) *Formatter {
	return &Formatter{
		color:    color,
		noHeader: noHeader,
	}
}

// Format renders one row per root in scan order, followed by a total row.
func (f *Formatter) Format(report *scan.Report) string {
	t := table.NewWriter()

	if !f.noHeader {
		t.AppendHeader(table.Row{
			"Root",
			"Files",
			"Size",
			"Logical Blocks",
			"Unreadable",
			"Stat Failed",
			"Drains",
			"Status",
		})
	}

	var total scan.Stats
	for _, s := range report.Roots {
		t.AppendRow(table.Row{
			s.Root,
			s.Files,
			formatBytes(s.Bytes),
			s.LogicalBlocks,
			s.Unreadable,
			s.StatFailures,
			s.Drains,
			status(s),
		})
		total.Files += s.Files
		total.Bytes += s.Bytes
		total.LogicalBlocks += s.LogicalBlocks
		total.Unreadable += s.Unreadable
		total.StatFailures += s.StatFailures
		total.Drains += s.Drains
	}

	t.AppendFooter(table.Row{
		fmt.Sprintf("Total (%d roots)", len(report.Roots)),
		total.Files,
		formatBytes(total.Bytes),
		total.LogicalBlocks,
		total.Unreadable,
		total.StatFailures,
		total.Drains,
		fmt.Sprintf("%d failed", report.Failures),
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	if f.color {
		t.SetStyle(table.StyleColoredDark)
	} else {
		t.SetStyle(table.StyleLight)
	}
	return fmt.Sprintf("%s\n", t.Render())
}

func status(s *scan.Stats) string {
	if s.Failed() {
		return "error"
	}
	return "ok"
}

// formatBytes formats bytes to a human-readable string with binary unit suffixes.
// Uses standard binary prefixes (K, M, G, T, P, E).
// Examples: "1.5 KB", "2.3 MB", "1.0 GB"
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
