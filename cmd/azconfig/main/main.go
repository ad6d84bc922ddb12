package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/aitherzero/configcore/cmd/azconfig"
	"github.com/aitherzero/configcore/pkg/ui/styles"
)

func main() {
	// Plain output when stderr is piped or redirected.
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	rootCmd := azconfig.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		errorStyle := styles.GetStyle("Error")
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
