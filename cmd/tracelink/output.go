package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/standardbeagle/tracelink/internal/analysis"
)

func writeReport(w io.Writer, state *analysis.State, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(state.Report())
	case "csv":
		return writeCSV(w, state)
	default:
		return writeText(w, state.Report())
	}
}

// writeCSV emits one row per finding in its file-output column order
func writeCSV(w io.Writer, state *analysis.State) error {
	cw := csv.NewWriter(w)
	for _, f := range state.Findings() {
		if err := cw.Write(f.FileOutput()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeText(w io.Writer, r analysis.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Run %s\n\n", r.RunID)

	fmt.Fprintf(&b, "Candidates (%d)\n", len(r.Candidates))
	for _, c := range r.Candidates {
		fmt.Fprintf(&b, "  %3d  %-24s %-20s %.2f  sentences %v\n", c.ID, c.Name, c.Type, c.Confidence, c.Sentences)
	}

	fmt.Fprintf(&b, "\nTrace links (%d)\n", len(r.Links))
	for _, l := range r.Links {
		claimants := make([]string, 0, len(l.Claims))
		for _, cl := range l.Claims {
			claimants = append(claimants, string(cl.Claimant))
		}
		fmt.Fprintf(&b, "  %3d -> %-8s %-24s %.2f  [%s]\n", l.Candidate, l.Entity, l.EntityName, l.Confidence, strings.Join(claimants, ", "))
	}

	if len(r.DiagramLinks) > 0 {
		fmt.Fprintf(&b, "\nDiagram links (%d)\n", len(r.DiagramLinks))
		for _, d := range r.DiagramLinks {
			fmt.Fprintf(&b, "  %s/%s -> %s %.2f\n", d.Diagram, d.Element, d.Entity, d.Confidence)
		}
	}

	fmt.Fprintf(&b, "\nInconsistencies (%d)\n", len(r.Findings))
	for _, f := range r.Findings {
		fmt.Fprintf(&b, "  [%s] %s\n", f.Kind, f.Reason)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
