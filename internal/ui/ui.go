package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/sokinpui/linereview/model"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
)

// Interactive reports whether stdout is a terminal.
func Interactive() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(os.Stderr, format+"\n", a...)
}

// --- Summaries ---

// PrintSummaries writes one line per file to w, followed by a total.
func PrintSummaries(w io.Writer, summaries []model.Summary) {
	if len(summaries) == 0 {
		InfoColor.Fprintln(w, "Nothing to review.")
		return
	}

	HeaderColor.Fprintln(w, "--- Review Status ---")

	var reviewed, modified, ignored, failed int
	for _, s := range summaries {
		if s.Err != nil {
			failed++
			PathColor.Fprintf(w, "  %s", s.Path)
			ErrorColor.Fprintf(w, " %v\n", s.Err)
			continue
		}
		PathColor.Fprintf(w, "  %s", s.Path)
		fmt.Fprint(w, " ")
		SuccessColor.Fprintf(w, "%d reviewed", s.Reviewed)
		fmt.Fprint(w, ", ")
		WarningColor.Fprintf(w, "%d modified", s.Modified)
		fmt.Fprintf(w, ", %d ignored\n", s.Ignored)

		reviewed += s.Reviewed
		modified += s.Modified
		ignored += s.Ignored
	}

	fmt.Fprintf(w, "Total: %d reviewed, %d modified, %d ignored\n", reviewed, modified, ignored)
	if failed > 0 {
		ErrorColor.Fprintf(w, "Failed to fetch %d file(s)\n", failed)
	}
}
