package fingerprint

import (
	"bytes"
	"testing"
)

func TestCompute_KnownVector(t *testing.T) {
	// SHA-256 of "abc"
	expected := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

	if got := Compute([]byte("abc")); got != expected {
		t.Errorf("Compute(abc) = %s; want %s", got, expected)
	}
}

func TestCompute_Stable(t *testing.T) {
	data := []byte("same bytes twice")

	if Compute(data) != Compute(append([]byte(nil), data...)) {
		t.Error("expected identical content to produce identical fingerprints")
	}
}

func TestCompute_DifferentContent(t *testing.T) {
	if Compute([]byte("photo-a")) == Compute([]byte("photo-b")) {
		t.Error("expected different content to produce different fingerprints")
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"computed", Compute([]byte("x")), true},
		{"too short", "abc", false},
		{"not hex", string(bytes.Repeat([]byte("z"), Size)), false},
		{"empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Valid(tc.input); got != tc.expected {
				t.Errorf("Valid(%q) = %v; want %v", tc.input, got, tc.expected)
			}
		})
	}
}
