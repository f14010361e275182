package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentBody(t *testing.T) {
	modified := "| Resource |\n| --- |\n| bucket-a |\n"
	created := "| Resource |\n| --- |\n"

	body, err := CommentBody("", modified, created)
	require.NoError(t, err)

	assert.Contains(t, body, "<h3>"+DefaultCommentTitle+"</h3>")
	assert.Contains(t, body, "<details>")
	assert.Contains(t, body, "#### Modified resources")
	assert.Contains(t, body, modified)
	assert.NotContains(t, body, "#### New resources")
	assert.Contains(t, body, "</details>")
}

func TestCommentBody_NoViolations(t *testing.T) {
	body, err := CommentBody("Custom title", "| a |\n| --- |\n", "")
	require.NoError(t, err)

	assert.Contains(t, body, "<h3>Custom title</h3>")
	assert.Contains(t, body, "No policy violations were found")
}
