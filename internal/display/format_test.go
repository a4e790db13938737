package display

import (
	"testing"

	"github.com/backmassage/dicomtonifti/internal/config"
	"github.com/backmassage/dicomtonifti/internal/term"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"small bytes", 512, "512 B"},
		{"exactly 1 KiB", 1024, "1.0 KiB"},
		{"1.5 KiB", 1536, "1.5 KiB"},
		{"1 MiB", 1024 * 1024, "1.0 MiB"},
		{"1 GiB", 1024 * 1024 * 1024, "1.0 GiB"},
		{"256x256x120 int16 volume", 256 * 256 * 120 * 2, "15.0 MiB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestFormatDims(t *testing.T) {
	if got := FormatDims([3]int{256, 256, 120}); got != "256x256x120" {
		t.Errorf("FormatDims = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"T1_MPRAGE_SAG", 6, "T1_MP…"},
		{"unlimited", 0, "unlimited"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestColorPad(t *testing.T) {
	term.Configure(config.ColorNever, nil)
	if got := ColorPad("ab", 4, term.Red); got != "ab  " {
		t.Errorf("ColorPad without colors = %q", got)
	}

	term.Configure(config.ColorAlways, nil)
	defer term.Configure(config.ColorNever, nil)
	if got := ColorPad("ab", 4, term.Red); got != term.Red+"ab  "+term.NC {
		t.Errorf("ColorPad with colors = %q", got)
	}
}
