package main

import "testing"

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"v1.2.3", "1.2.3"},
		{"1.2.3", "1.2.3"},
		{" v2.0.0 ", "2.0.0"},
		{"dev", "dev"},
	}

	for _, tt := range tests {
		if got := normalizeVersion(tt.input); got != tt.want {
			t.Errorf("normalizeVersion(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsNewerVersion(t *testing.T) {
	tests := []struct {
		name    string
		latest  string
		current string
		want    bool
	}{
		{"patch newer", "1.0.1", "1.0.0", true},
		{"minor newer", "1.1.0", "1.0.9", true},
		{"major newer", "2.0.0", "1.9.9", true},
		{"equal", "1.0.0", "1.0.0", false},
		{"older", "1.0.0", "1.0.1", false},
		{"v prefixes mixed", "v1.2.0", "1.1.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNewerVersion(tt.latest, tt.current); got != tt.want {
				t.Errorf("isNewerVersion(%q, %q) = %v, want %v", tt.latest, tt.current, got, tt.want)
			}
		})
	}
}
