// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package lexer

import (
	"bytes"

	"github.com/mdhender/cobold/diagnostics"
)

// Token represents a single preprocessing token.
type Token struct {
	Kind Kind

	// Text is the token's spelling, borrowed from the normalized buffer.
	// The buffer is immutable, so the slice stays valid for as long as
	// any token refers to it.
	Text []byte

	// Start and End are byte offsets into the normalized buffer.
	// End is exclusive: buffer[Start:End] is the token's lexeme.
	Start int
	End   int

	// Actual is the range of the token in the original source,
	// used only for diagnostics. Actual.Len() differs from Length()
	// exactly when a splice was removed inside the token.
	Actual diagnostics.Span
}

// Is reports whether tok.Kind matches the provided kind.
func (tok Token) Is(kind Kind) bool {
	return tok.Kind == kind
}

// IsOneOf reports whether tok.Kind matches any of the provided kinds.
func (tok Token) IsOneOf(kinds ...Kind) bool {
	for _, kind := range kinds {
		if tok.Kind == kind {
			return true
		}
	}
	return false
}

// IsPunct reports whether tok is the punctuator p.
func (tok Token) IsPunct(p string) bool {
	return tok.Kind == Punctuator && string(tok.Text) == p
}

// IsHash reports whether tok is a # punctuator or its %: digraph.
func (tok Token) IsHash() bool {
	return tok.IsPunct("#") || tok.IsPunct("%:")
}

// IsIdent reports whether tok is the identifier name.
func (tok Token) IsIdent(name string) bool {
	return tok.Kind == Identifier && string(tok.Text) == name
}

// Length is the length of the lexeme, in bytes.
func (tok Token) Length() int {
	return tok.End - tok.Start
}

// Spelled reports whether the original spelling differs from Text,
// which happens when a splice was removed inside the token.
func (tok Token) Spelled(original []byte) bool {
	return !bytes.Equal(tok.Actual.Text(original), tok.Text)
}

func (tok Token) String() string {
	return string(tok.Text)
}

// Concat returns the spellings of toks joined together.
func Concat(toks []Token) []byte {
	var b bytes.Buffer
	for _, tok := range toks {
		b.Write(tok.Text)
	}
	return b.Bytes()
}
