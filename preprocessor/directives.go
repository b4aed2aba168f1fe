// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package preprocessor

import (
	"slices"

	"github.com/mdhender/cobold/diagnostics"
	"github.com/mdhender/cobold/lexer"
	"github.com/mdhender/cobold/macros"
)

// unimplemented lists directives that are recognized but not supported.
var unimplemented = map[string]bool{
	"if":       true,
	"ifdef":    true,
	"ifndef":   true,
	"elif":     true,
	"elifdef":  true,
	"elifndef": true,
	"else":     true,
	"endif":    true,
	"include":  true,
	"embed":    true,
	"line":     true,
	"error":    true,
	"warning":  true,
	"pragma":   true,
}

// directive handles the rest of a group after its #.
//
// Directive handlers check a token with peek before consuming it,
// and consume the terminating new-line only after they succeed, so
// that on error the caller can discard exactly the rest of the group.
func (p *Preprocessor) directive() error {
	p.skipWhitespace()
	tok := p.peek()
	switch tok.Kind {
	case lexer.Newline:
		// null directive
		p.next()
		return nil
	case lexer.Identifier:
		p.next()
	default:
		return p.errorAt(tok, "expected identifier after #")
	}

	name := string(tok.Text)
	switch {
	case name == "define":
		return p.define()
	case name == "undef":
		return p.undef()
	case unimplemented[name]:
		return p.errorAt(tok, "#%s is not implemented", name)
	}
	return p.errorAt(tok, "unknown directive %s", diagnostics.Quote(tok.Text))
}

// define handles an object-like macro definition. A function-like
// macro, with a ( immediately after the name, is not supported.
func (p *Preprocessor) define() error {
	p.skipWhitespace()
	name := p.peek()
	if !name.Is(lexer.Identifier) {
		return p.errorAt(name, "expected macro name")
	}
	p.next()

	switch tok := p.peek(); {
	case tok.IsPunct("("):
		return p.errorAt(tok, "function-like macros are not implemented")
	case tok.Is(lexer.Newline):
		// empty replacement list
	case !tok.Is(lexer.Whitespace):
		return p.errorAt(tok, "missing whitespace after macro name")
	}

	p.skipWhitespace()
	start := p.i
	for !p.atEnd() && !p.peek().Is(lexer.Newline) {
		p.next()
	}
	replacement := slices.Clone(trimWhitespace(p.toks[start:p.i]))

	key := string(name.Text)
	if err := p.macros.Insert(key, macros.Definition{
		Name:        key,
		Replacement: replacement,
		Location:    name.Actual,
	}); err != nil {
		return locate(err, name)
	}
	p.debug("#define %s (%d tokens)", key, len(replacement))
	p.next() // new-line
	return nil
}

// undef handles #undef NAME. Removing a name that is not defined is allowed.
func (p *Preprocessor) undef() error {
	p.skipWhitespace()
	name := p.peek()
	if !name.Is(lexer.Identifier) {
		return p.errorAt(name, "expected macro name")
	}
	p.next()
	p.skipWhitespace()
	if tok := p.peek(); !tok.Is(lexer.Newline) {
		return p.errorAt(tok, "extra tokens after #undef %s", name.Text)
	}
	if err := p.macros.Remove(string(name.Text)); err != nil {
		return locate(err, name)
	}
	p.debug("#undef %s", name.Text)
	p.next() // new-line
	return nil
}
