package topics

// Renderer formats topic content for the terminal. The format argument
// is the topic file's extension (".md", ".txt") so a renderer can decide
// whether it applies.
type Renderer interface {
	Render(content string, format string) string
}

// PlainRenderer passes content through untouched. It is the fallback
// when no renderer is configured or rendering is not wanted (piped
// output, tests).
type PlainRenderer struct{}

func (r *PlainRenderer) Render(content string, format string) string {
	return content
}
