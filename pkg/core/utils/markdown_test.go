package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "  **Title**\n• line  \n", want: "**Title**\n• line"},
		{name: "markdown fence", in: "```markdown\n**Title**\ntext\n```", want: "**Title**\ntext"},
		{name: "md fence", in: "```md\n# T\n```", want: "# T"},
		{name: "bare fence", in: "```\nbody\n```", want: "body"},
		{name: "inner fence untouched", in: "intro\n```\ncode\n```", want: "intro\n```\ncode\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanMarkdown(tt.in))
		})
	}
}

func TestValidateMarkdown(t *testing.T) {
	assert.True(t, ValidateMarkdown("**Executive Summary**\n\n• text"))
	assert.False(t, ValidateMarkdown("   \n\n"))
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML("**Bold** and ~~gone~~\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, html, "<strong>Bold</strong>")
	assert.Contains(t, html, "<del>gone</del>")
	assert.Contains(t, html, "<table>")
}

func TestHeadline(t *testing.T) {
	assert.Equal(t, "Executive Summary – 2024-12", Headline("**Executive Summary – 2024-12**\n• Revenue was up."))
	assert.Equal(t, "Q4 Review", Headline("Some intro with **bold**.\n\n## Q4 Review\n"))
	assert.Equal(t, "", Headline("plain text only"))
}
