package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"tower/internal/diag"
	"tower/internal/diagfmt"
	"tower/internal/driver"
	"tower/internal/source"
)

var (
	okColor     = color.New(color.FgGreen)
	failColor   = color.New(color.FgRed, color.Bold)
	headerColor = color.New(color.Bold)
	groupColor  = color.New(color.FgCyan)
	dimColor    = color.New(color.Faint)
)

// batchSummary counts the results of a batch.
type batchSummary struct {
	Worlds     int `json:"worlds"`
	Failed     int `json:"failed_worlds"`
	Calls      int `json:"calls"`
	FailedCall int `json:"failed_calls"`
	Mismatches int `json:"mismatches"`
	Cached     int `json:"cached"`
}

func summarizeBatch(results []driver.WorldResult) batchSummary {
	var s batchSummary
	for i := range results {
		r := &results[i]
		s.Worlds++
		if r.Failed() {
			s.Failed++
		}
		if r.Cached {
			s.Cached++
		}
		s.Calls += len(r.Calls)
		s.Mismatches += r.Mismatches()
		for j := range r.Calls {
			if r.Calls[j].Failed() {
				s.FailedCall++
			}
		}
	}
	return s
}

// printOpts control the pretty rendering of a batch.
type printOpts struct {
	// OnlyFailures hides calls that resolved as expected.
	OnlyFailures bool
	Diagnostics  diagfmt.PrettyOpts
}

// printWorldsPretty renders call outcomes and diagnostics of every world.
func printWorldsPretty(w io.Writer, fs *source.FileSet, results []driver.WorldResult, opts printOpts) {
	for i := range results {
		r := &results[i]
		printWorldPretty(w, r, opts)
		if r.Bag != nil && r.Bag.Len() > 0 {
			r.Bag.Sort()
			diagfmt.Pretty(w, r.Bag, fs, opts.Diagnostics)
		}
	}
	s := summarizeBatch(results)
	line := fmt.Sprintf("%d worlds, %d calls, %d failed, %d mismatched", s.Worlds, s.Calls, s.FailedCall, s.Mismatches)
	if s.Cached > 0 {
		line += fmt.Sprintf(" (%d cached)", s.Cached)
	}
	if s.Failed > 0 {
		fmt.Fprintln(w, failColor.Sprint(line))
	} else {
		fmt.Fprintln(w, okColor.Sprint(line))
	}
}

func printWorldPretty(w io.Writer, r *driver.WorldResult, opts printOpts) {
	header := fmt.Sprintf("%s: %d calls", r.Path, len(r.Calls))
	if r.Cached {
		header += " " + dimColor.Sprint("(cached)")
	}
	fmt.Fprintln(w, headerColor.Sprint(header))

	idWidth := 0
	for i := range r.Calls {
		idWidth = max(idWidth, runewidth.StringWidth(r.Calls[i].ID))
	}
	for i := range r.Calls {
		c := &r.Calls[i]
		if opts.OnlyFailures && !c.Failed() {
			continue
		}
		fmt.Fprintln(w, formatCall(c, idWidth))
		for _, m := range c.Mismatch {
			fmt.Fprintf(w, "        %s\n", m)
		}
	}
}

// formatCall renders one call on a single line:
//
//	ok    member  g -> app.A.g at Implicit(0).Member
func formatCall(c *driver.CallResult, idWidth int) string {
	status := okColor.Sprint("ok  ")
	if c.Failed() {
		status = failColor.Sprint("FAIL")
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "  %s  %s  %s", status, runewidth.FillRight(c.ID, idWidth), c.Name)
	switch {
	case len(c.Candidates) == 0:
		fmt.Fprintf(&sb, " -> %s", c.Outcome)
	case c.Outcome == "resolved":
		fmt.Fprintf(&sb, " -> %s", c.Candidates[0].Symbol)
		if c.Candidates[0].Invoke {
			sb.WriteString(" (invoke)")
		}
	default:
		fmt.Fprintf(&sb, " -> %s [%s]", c.Outcome, strings.Join(c.Names(), ", "))
	}
	if c.Group != "" {
		fmt.Fprintf(&sb, " at %s", groupColor.Sprint(c.Group))
	}
	return sb.String()
}

type worldJSON struct {
	Path        string                    `json:"path"`
	Cached      bool                      `json:"cached"`
	Calls       []driver.CallResult       `json:"calls"`
	Diagnostics diagfmt.DiagnosticsOutput `json:"diagnostics"`
}

type batchJSON struct {
	Worlds  []worldJSON  `json:"worlds"`
	Summary batchSummary `json:"summary"`
}

// writeWorldsJSON encodes the batch as one JSON document.
func writeWorldsJSON(w io.Writer, fs *source.FileSet, results []driver.WorldResult, opts diagfmt.JSONOpts) error {
	out := batchJSON{Worlds: make([]worldJSON, 0, len(results)), Summary: summarizeBatch(results)}
	for i := range results {
		r := &results[i]
		bag := r.Bag
		if bag == nil {
			bag = diag.NewBag(0)
		}
		bag.Sort()
		calls := r.Calls
		if calls == nil {
			calls = []driver.CallResult{}
		}
		out.Worlds = append(out.Worlds, worldJSON{
			Path:        r.Path,
			Cached:      r.Cached,
			Calls:       calls,
			Diagnostics: diagfmt.BuildDiagnosticsOutput(bag, fs, opts),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
