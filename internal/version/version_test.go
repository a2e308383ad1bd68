package version

import (
	"strings"
	"testing"
)

func TestShortHash(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0123456789abcdef", "0123456"},
		{"abc", "abc"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := shortHash(tt.in); got != tt.want {
			t.Errorf("shortHash(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.HasPrefix(ua, "lpac-console/") || strings.HasSuffix(ua, "/") {
		t.Errorf("UserAgent() = %q", ua)
	}
	if !strings.Contains(Full(), Commit) {
		t.Errorf("Full() = %q, want commit %q", Full(), Commit)
	}
}
