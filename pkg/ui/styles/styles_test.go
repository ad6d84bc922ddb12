package styles_test

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitherzero/configcore/pkg/ui/styles"
)

func TestStyleRegistry(t *testing.T) {
	expected := []string{
		"Header", "Success", "Error", "Warning", "Info",
		"Muted", "Key", "Value", "Environment", "Module", "Note",
	}
	for _, name := range expected {
		_, ok := styles.StyleRegistry[name]
		assert.True(t, ok, "style %s should be registered", name)
	}
}

func TestGetStyleUnknownName(t *testing.T) {
	style := styles.GetStyle("DoesNotExist")
	assert.Equal(t, lipgloss.NewStyle().Render("x"), style.Render("x"))
}

func TestLoadStylesFromData(t *testing.T) {
	data := []byte(`
colors:
  pink:
    light: "#FF00FF"
    dark: "#FF88FF"
styles:
  Banner:
    bold: true
    foreground: pink
`)
	require.NoError(t, styles.LoadStylesFromData(data))
	_, ok := styles.StyleRegistry["Banner"]
	assert.True(t, ok)
}

func TestLoadStylesRejectsGarbage(t *testing.T) {
	assert.Error(t, styles.LoadStylesFromData([]byte("{not yaml")))
}
