// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package macros

import (
	"github.com/mdhender/cobold/diagnostics"
	"github.com/mdhender/cobold/lexer"
)

// Definition is an object-like macro.
type Definition struct {
	Name string
	// Replacement has no leading or trailing white-space tokens.
	// The tokens are owned by the definition and never modified.
	Replacement []lexer.Token
	// Location is the original-source span of the macro name
	// in the directive that defined it.
	Location diagnostics.Span
}

// Equivalent reports whether d and o have the same replacement list:
// the same tokens in the same order with the same spellings, and
// white-space separation in the same places. The amount and kind of
// white-space does not matter.
func (d Definition) Equivalent(o Definition) bool {
	a, b := squeeze(d.Replacement), squeeze(o.Replacement)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// squeeze returns the spellings of toks with every run of
// white-space replaced by a single space.
func squeeze(toks []lexer.Token) []string {
	var out []string
	inSpace := false
	for _, tok := range toks {
		if tok.Is(lexer.Whitespace) {
			if !inSpace {
				out = append(out, " ")
			}
			inSpace = true
			continue
		}
		inSpace = false
		out = append(out, string(tok.Text))
	}
	return out
}
