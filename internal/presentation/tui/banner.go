package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/weaver/pkg/domain"
	"github.com/muesli/termenv"
)

// PrintBanner writes the weaver ASCII banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`__      _____ __ ___ _____ _ _ `, "#818cf8"},
		{`\ \ /\ / / -_) _' \ V / -_) '_|`, "#c084fc"},
		{` \_/\_/\___\__,_|\_/\___|_|   `, "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// StageLabel colours a stage name for terminal output.
func StageLabel(stage domain.Stage) string {
	p := termenv.ColorProfile()
	color := "#a1a1aa"
	switch stage {
	case domain.StageCompleted:
		color = "#22c55e"
	case domain.StageFailed:
		color = "#ef4444"
	case domain.StageRunning, domain.StagePaused:
		color = "#eab308"
	case domain.StagePlanned:
		color = "#818cf8"
	}
	return termenv.String(string(stage)).Foreground(p.Color(color)).Bold().String()
}
