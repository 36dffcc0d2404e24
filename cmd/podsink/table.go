package main

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
)

// renderTable writes rows with the rounded style on terminals and a plain
// style when output is piped.
func renderTable(out io.Writer, headers table.Row, rows []table.Row) {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	if isTerminal(out) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.AppendHeader(headers)
	tw.AppendRows(rows)
	tw.Render()
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
