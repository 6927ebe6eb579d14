package service_test

import (
	"strings"
	"testing"

	"github.com/cs334f24/git-learner/internal/service"
)

func TestRenderer(t *testing.T) {
	r := service.NewRenderer()

	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "heading and paragraph",
			source: "# Clone the repository\n\nRun the command below.",
			want:   []string{"<h1", "Clone the repository", "<p>Run the command below.</p>"},
		},
		{
			name:   "fenced code block",
			source: "```bash\ngit clone git@github.test:org/repo.git\n```",
			want:   []string{"<pre><code", "git clone"},
		},
		{
			name:   "gfm table",
			source: "| command | effect |\n| --- | --- |\n| push | uploads |",
			want:   []string{"<table>", "<td>push</td>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := r.Render(tt.source)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			for _, fragment := range tt.want {
				if !strings.Contains(html, fragment) {
					t.Errorf("output missing %q:\n%s", fragment, html)
				}
			}
		})
	}
}
