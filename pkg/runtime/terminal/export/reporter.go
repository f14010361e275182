package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
)

type TableConfig struct {
	LabelWidth int
	ValueWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		LabelWidth: 24,
		ValueWidth: 48,
	}
}

// Summary describes a finished analysis run.
type Summary struct {
	Alerts   int
	Modified string
	Created  string
	Target   string
	Posted   bool
}

// rows counts the data rows of a rendered markdown table.
func rows(table string) int {
	lines := strings.Count(strings.TrimSpace(table), "\n") + 1
	if lines < 2 {
		return 0
	}
	return lines - 2
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) Handle(summary *Summary) error {
	funcMap := template.FuncMap{
		"formatRow": func(label string, value interface{}) string {
			return fmt.Sprintf("| %-*s | %-*v |",
				c.config.LabelWidth, label,
				c.config.ValueWidth, value)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+",
				strings.Repeat("-", c.config.LabelWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2))
		},
		"rows": rows,
	}

	tmpl := `
Change Analysis

{{separator}}
{{formatRow "Decorated alerts" .Alerts}}
{{formatRow "Modified resource rows" (rows .Modified)}}
{{formatRow "New resource rows" (rows .Created)}}
{{formatRow "Pull request" .Target}}
{{formatRow "Comment" (or (and .Posted "posted") "not posted")}}
{{separator}}
`

	t, err := template.New("summary").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, summary)
}
