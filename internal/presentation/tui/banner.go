package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the flowstep banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text, color string
	}{
		{"   __ _               _", "#38bdf8"},
		{"  / _| | _____      _| |_ ___ _ __", "#22d3ee"},
		{" | |_| |/ _ \\ \\ /\\ / / __/ _ \\ '_ \\", "#2dd4bf"},
		{" |  _| | (_) \\ V  V /| ||  __/ |_) |", "#34d399"},
		{" |_| |_|\\___/ \\_/\\_/  \\__\\___| .__/", "#4ade80"},
		{"   s t e p                   |_|", "#a3e635"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
