package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the KoolKars banner with the version underneath.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	// Using a subtle gradient-like color scheme (Teal/Sky)
	lines := []struct {
		text  string
		color string
	}{
		{" _  __           _ _  __               ", "#2dd4bf"},
		{"| |/ /___   ___ | | |/ /__ _ _ __ ___  ", "#22d3ee"},
		{"| ' // _ \\ / _ \\| | ' // _` | '__/ __| ", "#38bdf8"},
		{"| . \\ (_) | (_) | | . \\ (_| | |  \\__ \\ ", "#60a5fa"},
		{"|_|\\_\\___/ \\___/|_|_|\\_\\__,_|_|  |___/ ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  Asistente de elegibilidad v"+version).Faint())
	fmt.Fprintln(w)
}
