package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"resmon/internal/report"
	"resmon/internal/statstore"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// printReportJSON encodes the report as indented JSON to stdout.
func printReportJSON(cmd *cobra.Command, rep *report.Report) {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.Encode(rep)
}

// printReportTable prints the bounds and summary sections as aligned
// tables.
func printReportTable(cmd *cobra.Command, rep *report.Report) {
	out := cmd.OutOrStdout()
	rule := strings.Repeat("-", ruleWidth())

	fmt.Fprintf(out, "Summary report  window: %s  generated: %s\n", rep.Window, rep.GeneratedAt)
	fmt.Fprintln(out, rule)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TABLE\tROWS\tFIRST\tLAST")
	for _, info := range rep.Tables {
		first, last := info.First, info.Last
		if info.Count == 0 {
			first, last = "-", "-"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", info.Table, info.Count, first, last)
	}
	w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Disk I/O (latest rolling summary)")
	fmt.Fprintln(out, rule)
	if len(rep.Disk) == 0 {
		fmt.Fprintln(out, "no disk summaries in this window")
	} else {
		printSummaryRows(out, rep.Disk, false)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "API health (latest rolling summary)")
	fmt.Fprintln(out, rule)
	if len(rep.API) == 0 {
		fmt.Fprintln(out, "no API summaries in this window")
	} else {
		printSummaryRows(out, rep.API, true)
	}
}

func printSummaryRows(out io.Writer, rows []statstore.SummaryRow, withSuccess bool) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	if withSuccess {
		fmt.Fprintln(w, "TARGET\tMETRIC\tAVG\tMIN\tMAX\tSTDDEV\tSUCCESS")
	} else {
		fmt.Fprintln(w, "TARGET\tMETRIC\tAVG\tMIN\tMAX\tSTDDEV")
	}
	for _, r := range rows {
		if withSuccess {
			success := "-"
			if r.SuccessRate != nil {
				success = fmt.Sprintf("%.0f%%", *r.SuccessRate*100)
			}
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%s\n",
				r.Target, r.Metric, r.Avg, r.Min, r.Max, r.StdDev, success)
		} else {
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\n",
				r.Target, r.Metric, r.Avg, r.Min, r.Max, r.StdDev)
		}
	}
	w.Flush()
}

// ruleWidth sizes the section separators to the terminal, falling back
// to 72 columns when stdout is not a terminal.
func ruleWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 72
	}
	if width > 100 {
		width = 100
	}
	return width
}
