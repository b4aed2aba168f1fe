// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package source_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mdhender/cobold/diagnostics"
	"github.com/mdhender/cobold/source"
)

func TestNormalize(t *testing.T) {
	for _, tc := range []struct {
		name    string
		input   string
		text    string
		offsets source.OffsetMap
	}{
		{"empty", "", "", nil},
		{"no splices", "int x;\n", "int x;\n", nil},
		{"one splice", "line1\\\ncontinued\n", "line1continued\n", source.OffsetMap{{Index: 5, Actual: 7}}},
		{"adjacent splices", "a\\\n\\\nb\n", "ab\n", source.OffsetMap{{Index: 1, Actual: 3}, {Index: 1, Actual: 5}}},
		{"backslash not before newline", "a\\b\n", "a\\b\n", nil},
		{"splice before final newline", "x\\\n\n", "x\n", source.OffsetMap{{Index: 1, Actual: 3}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b, err := source.Normalize([]byte(tc.input))
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			if diff := cmp.Diff(tc.text, string(b.Text)); diff != "" {
				t.Errorf("text mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.offsets, b.Offsets); diff != "" {
				t.Errorf("offsets mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalize_Errors(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input string
		msg   string
	}{
		{"missing trailing newline", "int x;", "does not end in a newline"},
		{"only a splice", "\\\n", "does not end in a newline"},
		{"trailing backslash", "int x;\n\\", "ends in a backslash"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := source.Normalize([]byte(tc.input))
			var sf *diagnostics.ErrSourceFormat
			if !errors.As(err, &sf) {
				t.Fatalf("expected *ErrSourceFormat, got %v", err)
			}
			if sf.Msg != tc.msg {
				t.Errorf("msg = %q, want %q", sf.Msg, tc.msg)
			}
		})
	}
}

func TestOffsetMap_Actual(t *testing.T) {
	b, err := source.Normalize([]byte("ab\\\ncd\\\nef\n"))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	// normalized "abcdef\n"; original "ab\\\ncd\\\nef\n"
	want := []int{0, 1, 4, 5, 8, 9, 10, 11}
	for pos, actual := range want {
		if got := b.Offsets.Actual(pos); got != actual {
			t.Errorf("Actual(%d) = %d, want %d", pos, got, actual)
		}
	}
	if got, want := b.Span(1, 5), (diagnostics.Span{Start: 1, End: 9}); got != want {
		t.Errorf("Span(1, 5) = %+v, want %+v", got, want)
	}
}
