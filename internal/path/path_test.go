package path

import (
	"path/filepath"
	"testing"
)

func TestNormalise(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		// Basic paths
		{"data.csv", "data.csv", false},
		{"runs/2024/plate.png", "runs/2024/plate.png", false},

		// Leading/trailing slashes and dot segments
		{"/runs/plate.png", "runs/plate.png", false},
		{"runs/", "runs", false},
		{"./runs/./plate.png", "runs/plate.png", false},

		// Backslashes from Windows-minded callers
		{`runs\plate.png`, "runs/plate.png", false},

		// Dots inside a name are fine
		{"notes..txt", "notes..txt", false},

		// Traversal is rejected even when it would resolve cleanly
		{"runs/../secret", "", true},
		{"../etc/passwd", "", true},
		{`..\windows`, "", true},

		// Invalid paths
		{"", "", true},
		{".", "", true},
		{"..", "", true},
		{"/", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Normalise(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Normalise(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("Normalise(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWithin(t *testing.T) {
	root := filepath.Join(t.TempDir(), "downloads")

	tests := []struct {
		target string
		want   bool
	}{
		{root, true},
		{filepath.Join(root, "a.txt"), true},
		{filepath.Join(root, "sub", "a.txt"), true},
		{filepath.Dir(root), false},
		{filepath.Join(filepath.Dir(root), "downloads-other", "a.txt"), false},
	}
	for _, tt := range tests {
		if got := Within(root, tt.target); got != tt.want {
			t.Errorf("Within(%q, %q) = %v, want %v", root, tt.target, got, tt.want)
		}
	}
}
