package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/backmassage/muxwatch/internal/display"
	"github.com/backmassage/muxwatch/internal/ledger"
	"github.com/backmassage/muxwatch/internal/term"
	"github.com/backmassage/muxwatch/internal/worker"
)

const maxNameWidth = 50

// printHistory writes one row per ledger record: finish time, state, input
// name, output size and elapsed time. Failed rows carry the error text.
func printHistory(w io.Writer, records []ledger.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No conversions recorded.")
		return
	}

	nameW := runewidth.StringWidth("File")
	for _, r := range records {
		if n := runewidth.StringWidth(filepath.Base(r.Path)); n > nameW {
			nameW = n
		}
	}
	if nameW > maxNameWidth {
		nameW = maxNameWidth
	}

	header := fmt.Sprintf("  %-19s  %-6s  %-*s  %10s  %9s", "Finished", "State", nameW, "File", "Output", "Elapsed")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, "  "+strings.Repeat("-", len(header)-2))

	for _, r := range records {
		name := filepath.Base(r.Path)
		if runewidth.StringWidth(name) > nameW {
			name = runewidth.Truncate(name, nameW, "...")
		}
		// Pad before painting so escape bytes don't count toward width.
		state := fmt.Sprintf("%-6s", r.State)
		if r.State == worker.Done.String() {
			state = term.Paint(term.Green, state)
		} else {
			state = term.Paint(term.Red, state)
		}
		size := "-"
		if r.OutputSize > 0 {
			size = display.FormatBytes(r.OutputSize)
		}
		fmt.Fprintf(w, "  %-19s  %s  %s  %10s  %9s\n",
			r.FinishedAt.Local().Format("2006-01-02 15:04:05"),
			state, runewidth.FillRight(name, nameW), size,
			display.FormatDuration(r.FinishedAt.Sub(r.StartedAt)))
		if r.Error != "" {
			fmt.Fprintf(w, "      %s\n", r.Error)
		}
	}
}
