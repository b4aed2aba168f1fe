// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package diagnostics_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mdhender/cobold/diagnostics"
)

func TestQuote(t *testing.T) {
	for _, tc := range []struct {
		input string
		want  string
	}{
		{"", `""`},
		{"abc", `"abc"`},
		{"a\"b\\c", `"a\"b\\c"`},
		{"\x00\a\b\f\n\r\t\v", `"\0\a\b\f\n\r\t\v"`},
		{"\x1b~\x7f\xff", `"\x1b~\x7f\xff"`},
	} {
		if got := diagnostics.Quote([]byte(tc.input)); got != tc.want {
			t.Errorf("Quote(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestLocate(t *testing.T) {
	src := []byte("ab\ncd\n\nx")
	for _, tc := range []struct {
		offset, line, col int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{2, 1, 3},
		{3, 2, 1},
		{4, 2, 2},
		{6, 3, 1},
		{7, 4, 1},
		{99, 4, 2},
	} {
		line, col := diagnostics.Locate(src, tc.offset)
		if line != tc.line || col != tc.col {
			t.Errorf("Locate(%d) = %d:%d, want %d:%d", tc.offset, line, col, tc.line, tc.col)
		}
	}
}

func TestErrorCode(t *testing.T) {
	for _, tc := range []struct {
		err  error
		want string
	}{
		{&diagnostics.ErrSourceFormat{Msg: "ends in a backslash"}, diagnostics.ErrCodeSourceFormat},
		{&diagnostics.ErrLex{Msg: "unterminated comment"}, diagnostics.ErrCodeLex},
		{&diagnostics.ErrDirective{Msg: "expected macro name"}, diagnostics.ErrCodeDirective},
		{&diagnostics.ErrMacroTable{Key: "X", Err: errors.New("boom")}, diagnostics.ErrCodeMacroTable},
		{&diagnostics.ErrReadFile{Path: "a.c", Err: errors.New("gone")}, diagnostics.ErrCodeReadFile},
		{&diagnostics.ErrDatabase{Op: "insert", Err: errors.New("full")}, diagnostics.ErrCodeDatabase},
		{diagnostics.Errors{&diagnostics.ErrDirective{}, &diagnostics.ErrLex{}}, diagnostics.ErrCodeDirective},
		{errors.New("other"), diagnostics.ErrCodeUnknown},
	} {
		if got := diagnostics.ErrorCode(tc.err); got != tc.want {
			t.Errorf("ErrorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestSpanOf(t *testing.T) {
	span := diagnostics.Span{Start: 3, End: 5}
	wrapped := fmt.Errorf("unit: %w", &diagnostics.ErrDirective{Span: span, Msg: "x"})
	if got, ok := diagnostics.SpanOf(wrapped); !ok || got != span {
		t.Errorf("SpanOf = %+v, %v; want %+v, true", got, ok, span)
	}
	if _, ok := diagnostics.SpanOf(errors.New("x")); ok {
		t.Errorf("SpanOf found a span in a plain error")
	}
}

func TestErrors(t *testing.T) {
	first := &diagnostics.ErrDirective{Span: diagnostics.Span{Start: 1, End: 4}, Msg: "unknown directive"}
	list := diagnostics.Errors{first, &diagnostics.ErrLex{Msg: "x"}, &diagnostics.ErrLex{Msg: "y"}}
	if got, want := list.Error(), "offset 1: unknown directive (and 2 more errors)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	var dx *diagnostics.ErrDirective
	if !errors.As(list, &dx) || dx != first {
		t.Errorf("errors.As did not find the first error")
	}
}

func TestPrint(t *testing.T) {
	src := []byte("int x;\n#foo bar\n")
	err := diagnostics.Errors{
		&diagnostics.ErrDirective{Span: diagnostics.Span{Start: 8, End: 11}, Msg: `unknown directive "foo"`},
		&diagnostics.ErrLex{Span: diagnostics.Span{Start: 4, End: 5}, Msg: "unknown preprocessing token", Text: []byte("x;")},
	}
	var got bytes.Buffer
	diagnostics.Print(&got, err, "test.c", src, false)
	want := `test.c:2:2: error: unknown directive "foo"
    #foo bar
     ^
test.c:1:5: error: unknown preprocessing token
    int x;
        ^
    note: found "x;"
`
	if diff := cmp.Diff(want, got.String()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSpan_Text(t *testing.T) {
	input := []byte("hello")
	if got := string(diagnostics.Span{Start: 1, End: 3}.Text(input)); got != "el" {
		t.Errorf("Text = %q, want %q", got, "el")
	}
	if got := string(diagnostics.Span{Start: 4, End: 9}.Text(input)); got != "o" {
		t.Errorf("Text = %q, want %q", got, "o")
	}
}
