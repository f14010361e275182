package report

import (
	"fmt"
	"strings"
	"text/template"
)

const commentTemplate = `<h3>{{.Title}}</h3></br>Review the following to avoid service disruptions and/or security risks <hr/></br><details><summary>View Change Analysis</summary></br>
{{if .Modified}}
#### Modified resources

{{.Modified}}{{end}}{{if .Created}}
#### New resources

{{.Created}}{{end}}{{if not (or .Modified .Created)}}
No policy violations were found on changed resources.
{{end}}
</details>`

const DefaultCommentTitle = "Changes detected in your tracked CloudFormation template"

var comment = template.Must(template.New("comment").Parse(commentTemplate))

type commentData struct {
	Title    string
	Modified string
	Created  string
}

// CommentBody wraps both reports into a collapsible comment. A report without
// rows is left out.
func CommentBody(title, modified, created string) (string, error) {
	if title == "" {
		title = DefaultCommentTitle
	}
	data := commentData{Title: title}
	if hasRows(modified) {
		data.Modified = modified
	}
	if hasRows(created) {
		data.Created = created
	}

	var b strings.Builder
	if err := comment.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render comment: %w", err)
	}
	return b.String(), nil
}

// hasRows reports whether a rendered table has more than its header lines.
func hasRows(table string) bool {
	return strings.Count(strings.TrimSpace(table), "\n") >= 2
}
