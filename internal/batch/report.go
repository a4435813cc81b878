package batch

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	okColor     = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	errColor    = color.New(color.FgRed)
)

// WriteReport prints a per-file table and totals for a batch run.
func WriteReport(w io.Writer, summaries []FileSummary, state *State) {
	headerColor.Fprintln(w, "=== Batch Summary ===")

	var bytes int64
	messages, failed, empty, summarized := 0, 0, 0, 0
	for _, s := range summaries {
		bytes += s.Bytes
		messages += s.Messages
		name := filepath.Base(s.Path)
		switch {
		case s.Output == "":
			failed++
			errColor.Fprintf(w, "  ✗ %s: %s\n", name, s.Error)
		case s.Empty:
			empty++
			warnColor.Fprintf(w, "  - %s: no messages found\n", name)
		default:
			if s.Summarized {
				summarized++
			}
			line := fmt.Sprintf("  ✓ %s → %s (%s messages, %d participants, %s)",
				name, s.ChatName, humanize.Comma(int64(s.Messages)), s.Participants, humanize.Bytes(uint64(s.Bytes)))
			if s.Error != "" {
				warnColor.Fprintf(w, "%s [%s]\n", line, s.Error)
			} else {
				okColor.Fprintln(w, line)
			}
		}
	}

	fmt.Fprintf(w, "\nFiles analyzed: %d (%s read)\n", len(summaries)-failed, humanize.Bytes(uint64(bytes)))
	fmt.Fprintf(w, "Messages: %s\n", humanize.Comma(int64(messages)))
	fmt.Fprintf(w, "Summarized: %d\n", summarized)
	if empty > 0 {
		warnColor.Fprintf(w, "Empty: %d\n", empty)
	}
	if failed > 0 {
		errColor.Fprintf(w, "Failed: %d\n", failed)
	}
	if state != nil {
		fmt.Fprintf(w, "State file: %s\n", state.Path())
	}
}
