package identity_test

import (
	"testing"

	"activityhub/internal/domain/identity"
)

// TestIsGmail covers normalization before the suffix check.
func TestIsGmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"jane@gmail.com", true},
		{"  Jane.Doe@GMAIL.com  ", true},
		{"jane@yahoo.com", false},
		{"jane@gmail.com.evil.org", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := identity.IsGmail(tt.email); got != tt.want {
				t.Errorf("IsGmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

// TestDisplayName covers separator replacement and capitalization at
// word boundaries.
func TestDisplayName(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"Jane.Doe@gmail.com", "Jane Doe"},
		{"john_smith@gmail.com", "John Smith"},
		{"vishnusaikonchada@gmail.com", "Vishnusaikonchada"},
		{"a.b_c@gmail.com", "A B C"},
		{"@gmail.com", "User"},
		{"2006vishnu@gmail.com", "2006vishnu"},
		{"o'brien@gmail.com", "O'Brien"},
		{"mary-jane.watson@gmail.com", "Mary-Jane Watson"},
		{"x2.y@gmail.com", "X2 Y"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := identity.DisplayName(tt.email); got != tt.want {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.email, got, tt.want)
			}
		})
	}
}

// TestNormalizeEmail verifies trimming and lowercasing.
func TestNormalizeEmail(t *testing.T) {
	if got := identity.NormalizeEmail("  Admin@Gmail.COM "); got != "admin@gmail.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}
