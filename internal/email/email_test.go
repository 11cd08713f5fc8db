package email

import "testing"

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		addr     string
		expected bool
	}{
		{"simple", "user@example.com", true},
		{"uppercase", "USER@EXAMPLE.COM", true},
		{"subdomain", "user@mail.example.com", true},
		{"plus tag", "user+tag@example.com", true},
		{"empty", "", false},
		{"no at", "invalid", false},
		{"no dot in domain", "user@localhost", false},
		{"empty local part", "@example.com", false},
		{"empty domain", "user@", false},
		{"embedded space", "us er@example.com", false},
		{"leading space", " user@example.com", false},
		{"two at signs", "a@b@example.com", false},
		{"display name", "User <user@example.com>", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValid(tc.addr); got != tc.expected {
				t.Errorf("IsValid(%q) = %v, want %v", tc.addr, got, tc.expected)
			}
		})
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		addr     string
		expected string
	}{
		{"a@x.com", "a@x.com"},
		{"A@X.COM", "a@x.com"},
		{"  Mixed.Case@Example.Org ", "mixed.case@example.org"},
	}

	for _, tc := range tests {
		if got := Key(tc.addr); got != tc.expected {
			t.Errorf("Key(%q) = %q, want %q", tc.addr, got, tc.expected)
		}
	}
}
