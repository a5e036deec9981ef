package services

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeActorsRepresentations(t *testing.T) {
	want := []string{"A", "B"}

	inputs := []any{
		[]string{"A", "B"},
		[]any{"A", "B"},
		"['A','B']",
		`["A", "B"]`,
		"A;B",
		"A,B",
		"A|B",
		" A ; B ; ",
	}

	for _, in := range inputs {
		if diff := cmp.Diff(want, DecodeActors(in)); diff != "" {
			t.Errorf("DecodeActors(%#v) mismatch (-want +got):\n%s", in, diff)
		}
	}
}

func TestDecodeActorsSeparatorPriority(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Smith, Jr.; Doe", []string{"Smith, Jr.", "Doe"}},
		{"A, B | C", []string{"A", "B | C"}},
		{"Tim Robbins", []string{"Tim Robbins"}},
		{"[broken", []string{"[broken"}},
		{"", []string{}},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, DecodeActors(tt.in)); diff != "" {
			t.Errorf("DecodeActors(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestDecodeActorsDropsEmptiesAndTruncates(t *testing.T) {
	names := make([]any, 0, 30)
	names = append(names, "", "  ", nil)
	for i := 0; i < 27; i++ {
		names = append(names, fmt.Sprintf("Actor %d", i))
	}

	got := DecodeActors(names)
	if len(got) != MaxActors {
		t.Fatalf("len = %d; want %d", len(got), MaxActors)
	}
	if got[0] != "Actor 0" {
		t.Errorf("got[0] = %q; want %q", got[0], "Actor 0")
	}
}

func TestEncodeActorsRoundTrip(t *testing.T) {
	names := []string{"Tim Robbins", "Morgan Freeman", "Bob O'Neil"}
	if diff := cmp.Diff(names, DecodeActors(EncodeActors(names))); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
