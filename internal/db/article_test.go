package db

import "testing"

func TestValidStatus(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{StatusDraft, true},
		{StatusPublished, true},
		{StatusArchived, true},
		{"scheduled", false},
		{"Published", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidStatus(tt.status); got != tt.want {
			t.Fatalf("ValidStatus(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
