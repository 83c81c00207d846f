package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		absent   []string
	}{
		{
			name:     "bold",
			input:    "You are looking at a **Rose**.",
			contains: []string{"<strong>Rose</strong>", "<p>"},
		},
		{
			name:     "emphasis",
			input:    "Water *sparingly* in winter.",
			contains: []string{"<em>sparingly</em>"},
		},
		{
			name:     "bullet list",
			input:    "Watch for:\n\n- aphids\n- black spot\n",
			contains: []string{"<ul>", "<li>aphids</li>", "<li>black spot</li>"},
		},
		{
			name:     "numbered list",
			input:    "1. prune\n2. feed\n",
			contains: []string{"<ol>", "<li>prune</li>"},
		},
		{
			name:     "inline code",
			input:    "Use `10-10-10` fertilizer.",
			contains: []string{"<code>10-10-10</code>"},
		},
		{
			name:   "script removed",
			input:  "Hello <script>alert(1)</script> there",
			absent: []string{"<script", "</script>"},
		},
		{
			name:     "link stripped to text",
			input:    "See [the guide](http://example.com).",
			contains: []string{"the guide"},
			absent:   []string{"<a ", "href"},
		},
		{
			name:     "heading stripped to text",
			input:    "# Care",
			contains: []string{"Care"},
			absent:   []string{"<h1"},
		},
		{
			name:   "event handler attributes dropped",
			input:  `<p onclick="steal()">hi</p>`,
			absent: []string{"onclick"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(Render(tt.input))
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, bad := range tt.absent {
				assert.NotContains(t, got, bad)
			}
		})
	}
}

func TestRenderEmpty(t *testing.T) {
	assert.Empty(t, string(Render("   ")))
}
