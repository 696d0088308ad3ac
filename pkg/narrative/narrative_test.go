package narrative

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_HTML(t *testing.T) {
	r := NewRenderer()

	html, err := r.HTML("Complete **all** modules.")
	require.NoError(t, err)
	assert.Equal(t, "<p>Complete <strong>all</strong> modules.</p>\n", html)

	html, err = r.HTML("<script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestRenderer_Render(t *testing.T) {
	src := `# Requirements

Pass the [final exam](https://example.org/exam) with ` + "`80%`" + `.

- Attend workshops
- Submit a project, see https://example.org/projects
`
	out, err := NewRenderer().Render(src)
	require.NoError(t, err)

	assert.Contains(t, out.HTML, "<h1>Requirements</h1>")
	assert.Equal(t, "Requirements\n\nPass the final exam with `80%`.\n\nAttend workshops\n\nSubmit a project, see https://example.org/projects", out.Text)
	assert.Equal(t, []string{"https://example.org/exam", "https://example.org/projects"}, out.Links)
}

func TestRenderer_PlainText(t *testing.T) {
	r := NewRenderer()
	assert.Equal(t, "do it", r.PlainText("do it"))
	assert.Equal(t, "Line one here line two", r.PlainText("Line *one* here\nline two"))
	assert.Empty(t, r.PlainText(""))
}
