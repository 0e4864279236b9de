package ui

import (
	"fmt"
	"os"
)

// ANSI color codes
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
)

var colorEnabled = true

func init() {
	if os.Getenv("NO_COLOR") != "" {
		colorEnabled = false
	}
}

// SetColor enables or disables color output.
func SetColor(enabled bool) {
	colorEnabled = enabled
}

func colorize(color, s string) string {
	if !colorEnabled {
		return s
	}
	return color + s + Reset
}

func Boldf(format string, a ...any) string {
	return colorize(Bold, fmt.Sprintf(format, a...))
}

func Redf(format string, a ...any) string {
	return colorize(Red, fmt.Sprintf(format, a...))
}

func Greenf(format string, a ...any) string {
	return colorize(Green, fmt.Sprintf(format, a...))
}

func Yellowf(format string, a ...any) string {
	return colorize(Yellow, fmt.Sprintf(format, a...))
}

func Cyanf(format string, a ...any) string {
	return colorize(Cyan, fmt.Sprintf(format, a...))
}

func Dimf(format string, a ...any) string {
	return colorize(Dim, fmt.Sprintf(format, a...))
}

// PolarityColor returns a polarity score colored by its sign.
func PolarityColor(p float64) string {
	s := fmt.Sprintf("%+.4f", p)
	switch {
	case p > 0.05:
		return colorize(Green, s)
	case p < -0.05:
		return colorize(Red, s)
	default:
		return colorize(Dim, s)
	}
}

// FogColor returns a fog index colored by reading difficulty.
func FogColor(fog float64) string {
	s := fmt.Sprintf("%.2f", fog)
	switch {
	case fog >= 17:
		return colorize(Red, s)
	case fog >= 12:
		return colorize(Yellow, s)
	default:
		return colorize(Green, s)
	}
}

// RunStatus returns a colored outcome label for a run.
func RunStatus(finished bool, failed int) string {
	switch {
	case !finished:
		return colorize(Yellow, "RUNNING")
	case failed > 0:
		return colorize(Yellow, "PARTIAL")
	default:
		return colorize(Green, "OK")
	}
}
