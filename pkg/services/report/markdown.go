package report

import (
	"strings"

	"github.com/de-tools/changeguard/pkg/models/domain"
)

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

// Markdown renders a pipe table. Cells are written verbatim apart from pipe and
// newline escaping, so leading spaces survive.
func Markdown(report domain.Report) string {
	var b strings.Builder

	writeRow(&b, report.Columns)
	separators := make([]string, len(report.Columns))
	for i := range separators {
		separators[i] = "---"
	}
	writeRow(&b, separators)

	for _, row := range report.Rows {
		cells := make([]string, len(report.Columns))
		for i := range cells {
			if i < len(row) {
				cells[i] = cellEscaper.Replace(row[i])
			}
		}
		writeRow(&b, cells)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, cell := range cells {
		b.WriteString(" ")
		b.WriteString(cell)
		b.WriteString(" |")
	}
	b.WriteString("\n")
}
