package util

import (
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	for _, name := range []string{"abc", "admin", "Somchai_99", strings.Repeat("a", 32)} {
		if err := ValidateUsername(name); err != nil {
			t.Errorf("ValidateUsername(%q) error = %v, want nil", name, err)
		}
	}
	for _, name := range []string{"", "ab", "has space", "dash-name", "ไทย", strings.Repeat("a", 33)} {
		if err := ValidateUsername(name); err == nil {
			t.Errorf("ValidateUsername(%q) error = nil, want error", name)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345678"); err != nil {
		t.Errorf("8 chars should pass: %v", err)
	}
	if err := ValidatePassword("short"); err == nil {
		t.Error("short password should fail")
	}
	if err := ValidatePassword(strings.Repeat("x", 73)); err == nil {
		t.Error("73 bytes should fail")
	}
}

func TestIntParam(t *testing.T) {
	tests := []struct {
		in       string
		def, max int
		want     int
	}{
		{"", 20, 100, 20},
		{"abc", 20, 100, 20},
		{"-3", 1, 0, 1},
		{"5", 20, 100, 5},
		{"500", 20, 100, 100},
		{"500", 20, 0, 500},
	}
	for _, tt := range tests {
		if got := IntParam(tt.in, tt.def, tt.max); got != tt.want {
			t.Errorf("IntParam(%q, %d, %d) = %d, want %d", tt.in, tt.def, tt.max, got, tt.want)
		}
	}
}

func TestBoolParam(t *testing.T) {
	if v, ok := BoolParam("true"); !ok || !v {
		t.Error("true should parse")
	}
	if v, ok := BoolParam("0"); !ok || v {
		t.Error("0 should parse as false")
	}
	if _, ok := BoolParam("maybe"); ok {
		t.Error("maybe is not a boolean")
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	if p.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", p.TotalPages)
	}
	if NewPagination(1, 10, 0).TotalPages != 0 {
		t.Error("empty result should have 0 pages")
	}
}
