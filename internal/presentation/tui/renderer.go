package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// With plain set (output is not a terminal) the "notty" style is used so no
// escape sequences reach pipes or files.
func NewRenderer(plain bool) func(string) (string, error) {
	opt := glamour.WithAutoStyle() // Automatically detect light/dark background
	if plain {
		opt = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(100))

	return func(markdown string) (string, error) {
		if err != nil {
			return markdown, err
		}
		return r.Render(markdown)
	}
}
