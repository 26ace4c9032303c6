package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	t.Run("emphasis", func(t *testing.T) {
		html := Render("**bold** and *italic*")
		assert.Contains(t, html, "<strong>bold</strong>")
		assert.Contains(t, html, "<em>italic</em>")
	})

	t.Run("gfm tables", func(t *testing.T) {
		html := Render("| a | b |\n|---|---|\n| 1 | 2 |")
		assert.Contains(t, html, "<table>")
	})

	t.Run("autolink", func(t *testing.T) {
		html := Render("see https://example.com for details")
		assert.Contains(t, html, `<a href="https://example.com"`)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", Render(""))
	})
}
