package validate

import (
	"errors"
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
		err   error
	}{
		{"plain", []byte("hello"), "hello", nil},
		{"bom", []byte("\xef\xbb\xbfhello"), "hello", nil},
		{"utf8", []byte("caf\xc3\xa9"), "café", nil},
		{"nul", []byte("a\x00b"), "", ErrNotText},
		{"invalid", []byte("a\xffb"), "", ErrNotText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected error %v, got %v", tt.err, err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestReadLimit(t *testing.T) {
	if _, err := Read(strings.NewReader(strings.Repeat("x", 11)), 10); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("expected ErrInputTooLarge, got %v", err)
	}
	got, err := Read(strings.NewReader(strings.Repeat("x", 10)), 10)
	if err != nil || len(got) != 10 {
		t.Errorf("expected 10 bytes, got %d (%v)", len(got), err)
	}
}
