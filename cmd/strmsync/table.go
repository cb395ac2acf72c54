package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable writes a table to w. Terminals get rounded box drawing;
// pipes and files get plain ASCII.
func renderTable(w io.Writer, title string, headers []string, rows [][]string, aligns []columnAlignment) {
	columns := len(headers)
	if columns == 0 {
		return
	}

	tw := table.NewWriter()
	if isTerminal(w) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}
	if title != "" {
		tw.SetTitle(title)
	}

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	fmt.Fprintln(w, tw.Render())
}

// renderCounts renders a two-column name/count table.
func renderCounts(w io.Writer, title string, counts [][2]any) {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{fmt.Sprint(c[0]), fmt.Sprint(c[1])})
	}
	renderTable(w, title, []string{"Item", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
