package common

import (
	"strings"

	"github.com/olekukonko/tablewriter"
)

// cellReplacer flattens characters that would break a monospaced grid.
var cellReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ", "```", "'''")

// RenderTable draws rows as a bordered grid inside a code block, the way
// chat clients show monospaced text.
func RenderTable(headers []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("```\n")

	table := tablewriter.NewWriter(&b)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(cleanCells(headers))
	for _, row := range rows {
		table.Append(cleanCells(row))
	}
	table.Render()

	b.WriteString("```")
	return b.String()
}

func cleanCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = cellReplacer.Replace(c)
	}
	return out
}
