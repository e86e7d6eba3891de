package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders prompt markdown using glamour.
// Prompts are short, so the output is wrapped tight.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(80),
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
