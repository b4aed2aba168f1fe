// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package lexer

import (
	"fmt"
	"io"

	"github.com/mdhender/cobold/diagnostics"
)

// Dump writes one line per token: a kind label, the quoted text, and,
// when a splice was removed inside the token, " : " and the quoted
// original spelling. Unless all is set, white-space is skipped and
// runs of new-lines are written once.
func Dump(w io.Writer, toks []Token, original []byte, all bool) error {
	gotNewline := true
	for _, tok := range toks {
		switch tok.Kind {
		case Whitespace:
			if !all {
				continue
			}
		case Newline:
			if !all && gotNewline {
				continue
			}
		}
		gotNewline = tok.Is(Newline)
		line := tok.Kind.Short() + " " + diagnostics.Quote(tok.Text)
		if original != nil && tok.Spelled(original) {
			line += " : " + diagnostics.Quote(tok.Actual.Text(original))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
