package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	brand  = color.New(color.FgHiCyan, color.Bold)
	subtle = color.New(color.FgHiBlack)
	warn   = color.New(color.FgYellow)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
)

// table prints an aligned table to w.
func table(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var head, sep strings.Builder
	head.WriteString("  ")
	sep.WriteString("  ")
	for i, h := range headers {
		fmt.Fprintf(&head, "%-*s  ", widths[i], h)
		sep.WriteString(strings.Repeat("─", widths[i]) + "  ")
	}
	subtle.Fprintln(w, strings.TrimRight(head.String(), " "))
	subtle.Fprintln(w, strings.TrimRight(sep.String(), " "))

	for _, row := range rows {
		var line strings.Builder
		line.WriteString("  ")
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(&line, "%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}

func statusIcon(ok bool) string {
	if ok {
		return good.Sprint("✓")
	}
	return bad.Sprint("✗")
}
