// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package lexer_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mdhender/cobold/diagnostics"
	"github.com/mdhender/cobold/lexer"
	"github.com/mdhender/cobold/source"
)

func scanAll(t *testing.T, input string) (*source.Buffer, []lexer.Token, error) {
	t.Helper()
	buf, err := source.Normalize([]byte(input))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	toks, err := lexer.Tokens(context.Background(), "test.c", buf, nil)
	return buf, toks, err
}

// describe renders tokens as "kind:text", dropping white-space.
func describe(toks []lexer.Token) []string {
	var out []string
	for _, tok := range toks {
		if tok.Is(lexer.Whitespace) {
			continue
		}
		out = append(out, fmt.Sprintf("%s:%s", tok.Kind, tok.Text))
	}
	return out
}

func TestLexer_Tokens(t *testing.T) {
	for _, tc := range []struct {
		name   string
		input  string
		output []string
	}{
		{
			name:   "declaration",
			input:  "int x = 42;\n",
			output: []string{"Identifier:int", "Identifier:x", "Punctuator:=", "PpNumber:42", "Punctuator:;", "Newline:\n"},
		},
		{
			name:   "longest punctuator wins",
			input:  "a<<=b...c->d\n",
			output: []string{"Identifier:a", "Punctuator:<<=", "Identifier:b", "Punctuator:...", "Identifier:c", "Punctuator:->", "Identifier:d", "Newline:\n"},
		},
		{
			name:   "pp-numbers",
			input:  "1.5e+10 .5 0x1p-3 1'000 12abc 1.e-x\n",
			output: []string{"PpNumber:1.5e+10", "PpNumber:.5", "PpNumber:0x1p-3", "PpNumber:1'000", "PpNumber:12abc", "PpNumber:1.e-x", "Newline:\n"},
		},
		{
			name:   "member access is not a number",
			input:  "s.x\n",
			output: []string{"Identifier:s", "Punctuator:.", "Identifier:x", "Newline:\n"},
		},
		{
			name:   "literals and escapes",
			input:  `'a' '\n' '\0' '\177' "x\x1Fy" "say \"hi\"\?"` + "\n",
			output: []string{`CharacterConstant:'a'`, `CharacterConstant:'\n'`, `CharacterConstant:'\0'`, `CharacterConstant:'\177'`, `StringLiteral:"x\x1Fy"`, `StringLiteral:"say \"hi\"\?"`, "Newline:\n"},
		},
		{
			name:   "comments become white-space",
			input:  "a/* one */b // two\nc\n",
			output: []string{"Identifier:a", "Identifier:b", "Newline:\n", "Identifier:c", "Newline:\n"},
		},
		{
			name:   "angle header name after include",
			input:  "#include <stdio.h>\n",
			output: []string{"Punctuator:#", "Identifier:include", "HeaderName:<stdio.h>", "Newline:\n"},
		},
		{
			name:   "quoted header name after include with spacing",
			input:  "  #  include /* c */ \"local.h\"\n",
			output: []string{"Punctuator:#", "Identifier:include", `HeaderName:"local.h"`, "Newline:\n"},
		},
		{
			name:   "no header name outside include",
			input:  "a <b> \"c\"\n",
			output: []string{"Identifier:a", "Punctuator:<", "Identifier:b", "Punctuator:>", `StringLiteral:"c"`, "Newline:\n"},
		},
		{
			name:   "include without hash",
			input:  "include <x>\n",
			output: []string{"Identifier:include", "Punctuator:<", "Identifier:x", "Punctuator:>", "Newline:\n"},
		},
		{
			name:   "newline resets header state",
			input:  "#include\n<x>\n",
			output: []string{"Punctuator:#", "Identifier:include", "Newline:\n", "Punctuator:<", "Identifier:x", "Punctuator:>", "Newline:\n"},
		},
		{
			name:   "digraph hash",
			input:  "%:include <x>\n",
			output: []string{"Punctuator:%:", "Identifier:include", "HeaderName:<x>", "Newline:\n"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, toks, err := scanAll(t, tc.input)
			if err != nil {
				t.Fatalf("lex error: %v", err)
			}
			if diff := cmp.Diff(tc.output, describe(toks)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLexer_Coverage(t *testing.T) {
	for _, input := range []string{
		"",
		"int main(void) {\n\treturn 0; /* done */\n}\n",
		"#define FOO 1 + \\\n 2\nint x = FOO ;\n",
		"  \t\v\f\r\n\n",
	} {
		buf, toks, err := scanAll(t, input)
		if err != nil {
			t.Fatalf("%q: lex error: %v", input, err)
		}
		if got := lexer.Concat(toks); !bytes.Equal(got, buf.Text) {
			t.Errorf("%q: concat = %q, want %q", input, got, buf.Text)
		}
		pos := 0
		for _, tok := range toks {
			if tok.Start != pos {
				t.Errorf("%q: token %q starts at %d, want %d", input, tok.Text, tok.Start, pos)
			}
			pos = tok.End
		}
	}
}

func TestLexer_OriginalSpans(t *testing.T) {
	buf, toks, err := scanAll(t, "line1\\\ncontinued\nab\\\ncd x\n")
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	if got, want := string(buf.Text), "line1continued\nabcd x\n"; got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
	for _, tok := range toks {
		original := tok.Actual.Text(buf.Original)
		// removing the splices from the original bytes gives the spelling
		if got := bytes.ReplaceAll(original, []byte("\\\n"), nil); !bytes.Equal(got, tok.Text) {
			t.Errorf("token %q: original %q does not round trip", tok.Text, original)
		}
	}
	first := toks[0]
	if got, want := string(first.Text), "line1continued"; got != want {
		t.Fatalf("first token = %q, want %q", got, want)
	}
	if first.Actual != (diagnostics.Span{Start: 0, End: 16}) {
		t.Errorf("first.Actual = %+v, want {0 16}", first.Actual)
	}
	if !first.Spelled(buf.Original) {
		t.Errorf("first.Spelled = false, want true")
	}
	x := toks[len(toks)-2]
	if got, want := string(x.Text), "x"; got != want {
		t.Fatalf("token = %q, want %q", got, want)
	}
	if x.Actual != (diagnostics.Span{Start: 24, End: 25}) || x.Spelled(buf.Original) {
		t.Errorf("x.Actual = %+v, want {24 25}", x.Actual)
	}
}

func TestLexer_Errors(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input string
		msg   string
	}{
		{"unterminated comment", "a /* b\n", "unterminated comment"},
		{"unterminated char", "'a\n", "newline in character constant"},
		{"unterminated string", "\"abc\n", "newline in string literal"},
		{"unknown escape", "\"\\q\"\n", "unknown escape"},
		{"backslash in header", "#include <a\\b>\n", "illegal character in header name"},
		{"quote in header", "#include <a\"b>\n", "illegal character in header name"},
		{"newline in header", "#include <ab\n", "illegal character in header name"},
		{"comment in header", "#include \"a/*b\"\n", "cannot start comment in header name"},
		{"stray character", "a @ b\n", "unknown preprocessing token"},
		{"stray backslash", "a \\ b\n", "unknown preprocessing token"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := scanAll(t, tc.input)
			var lx *diagnostics.ErrLex
			if !errors.As(err, &lx) {
				t.Fatalf("expected *ErrLex, got %v", err)
			}
			if lx.Msg != tc.msg {
				t.Errorf("msg = %q, want %q", lx.Msg, tc.msg)
			}
		})
	}
}

func TestLexer_UnterminatedWithoutNormalize(t *testing.T) {
	// buffers that did not come through Normalize may lack a final new-line
	for _, tc := range []struct {
		input string
		msg   string
	}{
		{"// comment", "unterminated line comment"},
		{"'a", "unterminated character constant"},
		{"\"\\", "unterminated escape sequence"},
	} {
		buf := &source.Buffer{Original: []byte(tc.input), Text: []byte(tc.input)}
		_, err := lexer.Tokens(context.Background(), "raw", buf, nil)
		var lx *diagnostics.ErrLex
		if !errors.As(err, &lx) || lx.Msg != tc.msg {
			t.Errorf("%q: got %v, want %q", tc.input, err, tc.msg)
		}
	}
}

func TestLexer_CanceledContext(t *testing.T) {
	buf, err := source.Normalize([]byte("a b c\n"))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := lexer.Tokens(ctx, "test.c", buf, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
