package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Keyframe ASCII art banner to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	// Using a subtle gradient-like color scheme (Indigo/Violet)
	lines := []struct {
		text, color string
	}{
		{" _  __           __                          ", "#818cf8"},
		{"| |/ /___ _   _ / _|_ __ __ _ _ __ ___   ___ ", "#a78bfa"},
		{"| ' // _ \\ | | | |_| '__/ _` | '_ ` _ \\ / _ \\", "#c084fc"},
		{"| . \\  __/ |_| |  _| | | (_| | | | | | |  __/", "#e879f9"},
		{"|_|\\_\\___|\\__, |_| |_|  \\__,_|_| |_| |_|\\___|", "#f472b6"},
		{"          |___/                    " + version, "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
