package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/aretw0/flowcanvas/pkg/domain"
)

var bannerLines = []struct {
	text, color string
}{
	{"   __ _                                               ", "#38bdf8"},
	{"  / _| | _____      _____ __ _ _ ____   ____ _ ___  ", "#22d3ee"},
	{" | |_| |/ _ \\ \\ /\\ / / __/ _` | '_ \\ \\ / / _` / __| ", "#2dd4bf"},
	{" |  _| | (_) \\ V  V / (_| (_| | | | \\ V / (_| \\__ \\ ", "#34d399"},
	{" |_| |_|\\___/ \\_/\\_/ \\___\\__,_|_| |_|\\_/ \\__,_|___/ ", "#4ade80"},
}

// PrintBanner writes the ASCII banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}

var statusColors = map[domain.ExecutionStatus]string{
	domain.StatusIdle:      "#9ca3af",
	domain.StatusRunning:   "#60a5fa",
	domain.StatusCompleted: "#4ade80",
	domain.StatusFailed:    "#f87171",
}

// Status returns the status name colored for the current terminal profile.
func Status(s domain.ExecutionStatus) string {
	p := termenv.ColorProfile()
	return termenv.String(string(s)).Foreground(p.Color(statusColors[s])).String()
}
