// Package display holds small formatting helpers for the listing table and
// the end-of-run summary.
package display

import (
	"fmt"
	"unicode/utf8"

	"github.com/backmassage/dicomtonifti/internal/term"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	if exp >= len(suffixes) {
		exp = len(suffixes) - 1
		div = 1
		for i := 0; i <= exp; i++ {
			div *= unit
		}
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// FormatDims renders volume dimensions as "256x256x120".
func FormatDims(dims [3]int) string {
	return fmt.Sprintf("%dx%dx%d", dims[0], dims[1], dims[2])
}

// Truncate shortens s to at most width runes, marking the cut with "…".
func Truncate(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-1]) + "…"
}

// ColorPad pads a plain string to width, then wraps it in color. Padding
// first keeps %-*s alignment correct regardless of escape sequences.
func ColorPad(s string, width int, color string) string {
	padded := fmt.Sprintf("%-*s", width, s)
	if color == "" || !term.Enabled() {
		return padded
	}
	return color + padded + term.NC
}
