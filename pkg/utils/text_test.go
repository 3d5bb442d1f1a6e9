package utils

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"long string truncated", "hello world", 5, "hello..."},
		{"maxLen zero returns as-is", "x", 0, "x"},
		{"maxLen negative returns as-is", "x", -3, "x"},
		{"empty string", "", 5, ""},
		{"counts runes not bytes", "ملكة القلوب", 4, "ملكة..."},
		{"multibyte under limit unchanged", "ملكة", 10, "ملكة"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.s, tt.maxLen); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}
