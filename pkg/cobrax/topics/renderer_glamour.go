package topics

import (
	"github.com/charmbracelet/glamour"
)

// GlamourRenderer renders markdown topics with glamour. Non-markdown
// topics pass through unchanged, as do markdown topics when the
// renderer cannot be built (degrading to plain text beats failing the
// help command).
type GlamourRenderer struct {
	// Style is a glamour style name ("dark", "light", "notty") or a
	// path to a custom style; empty or "auto" picks by terminal.
	Style string
	// Width wraps output at this column; 0 lets glamour decide.
	Width int
}

// NewGlamourRenderer returns a renderer that adapts to the terminal.
func NewGlamourRenderer() *GlamourRenderer {
	return &GlamourRenderer{Style: "auto"}
}

func (r *GlamourRenderer) Render(content string, format string) string {
	if format != ".md" {
		return content
	}

	var options []glamour.TermRendererOption
	if r.Style != "" && r.Style != "auto" {
		options = append(options, glamour.WithStylePath(r.Style))
	} else {
		options = append(options, glamour.WithAutoStyle())
	}
	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
