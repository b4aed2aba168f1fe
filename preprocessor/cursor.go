// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package preprocessor

import "github.com/mdhender/cobold/lexer"

// endOfInput is returned by peek once every token has been read.
// It behaves like a new-line so that a final group without one
// still terminates.
var endOfInput = lexer.Token{Kind: lexer.Newline}

func (p *Preprocessor) atEnd() bool {
	return p.i >= len(p.toks)
}

func (p *Preprocessor) peek() lexer.Token {
	if p.atEnd() {
		tok := endOfInput
		if n := len(p.toks); n != 0 {
			tok.Start, tok.End = p.toks[n-1].End, p.toks[n-1].End
			tok.Actual.Start, tok.Actual.End = p.toks[n-1].Actual.End, p.toks[n-1].Actual.End
		}
		return tok
	}
	return p.toks[p.i]
}

func (p *Preprocessor) next() lexer.Token {
	tok := p.peek()
	if !p.atEnd() {
		p.i++
	}
	return tok
}

func (p *Preprocessor) save() int {
	return p.i
}

func (p *Preprocessor) load(saved int) {
	p.i = saved
}

func (p *Preprocessor) skipWhitespace() {
	for !p.atEnd() && p.peek().Is(lexer.Whitespace) {
		p.next()
	}
}

// skipLine discards tokens up to and including the next new-line.
func (p *Preprocessor) skipLine() {
	for !p.atEnd() {
		if p.next().Is(lexer.Newline) {
			return
		}
	}
}

// trimWhitespace returns toks without leading or trailing white-space.
func trimWhitespace(toks []lexer.Token) []lexer.Token {
	for len(toks) != 0 && toks[0].Is(lexer.Whitespace) {
		toks = toks[1:]
	}
	for len(toks) != 0 && toks[len(toks)-1].Is(lexer.Whitespace) {
		toks = toks[:len(toks)-1]
	}
	return toks
}
