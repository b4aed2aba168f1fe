// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package lexer implements preprocessing tokenization (translation phase 3).
package lexer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mdhender/cobold/diagnostics"
	"github.com/mdhender/cobold/source"
)

// headerState gates header-name lexing. A header name is only
// recognized right after "#" "include" on the same line.
type headerState int

const (
	hsStart headerState = iota
	hsHash
	hsInclude
)

// Lexer splits a normalized buffer into preprocessing tokens.
//
// Every byte of the buffer belongs to exactly one token: comments
// and runs of white-space are returned as Whitespace tokens.
type Lexer struct {
	name string // name of the input source
	buf  *source.Buffer
	cur  cursor
	hs   headerState

	// logging
	ctx        context.Context
	logger     *slog.Logger
	tokenCount int
}

func New(ctx context.Context, name string, buf *source.Buffer, logger *slog.Logger) *Lexer {
	return &Lexer{
		name:   name,
		buf:    buf,
		cur:    cursor{input: buf.Text},
		ctx:    ctx,
		logger: logger,
	}
}

// Tokens returns every token in buf.
func Tokens(ctx context.Context, name string, buf *source.Buffer, logger *slog.Logger) ([]Token, error) {
	return New(ctx, name, buf, logger).All()
}

// All scans the rest of the input.
func (l *Lexer) All() ([]Token, error) {
	var toks []Token
	for {
		if l.tokenCount%1024 == 0 && l.ctx != nil {
			if err := l.ctx.Err(); err != nil {
				return nil, err
			}
		}
		tok, err := l.Scan()
		if err == io.EOF {
			l.debug("scanned %d tokens", len(toks))
			return toks, nil
		} else if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
	}
}

// Scan returns the next token from the input buffer.
// It returns io.EOF once the input is exhausted.
func (l *Lexer) Scan() (Token, error) {
	if l.cur.eof() {
		return Token{}, io.EOF
	}
	start := l.cur.mark()
	kind, next, err := l.scan()
	if err != nil {
		return Token{}, err
	}
	l.hs = next
	l.tokenCount++
	end := l.cur.mark()
	return Token{
		Kind:   kind,
		Text:   l.cur.since(start),
		Start:  start,
		End:    end,
		Actual: l.buf.Span(start, end),
	}, nil
}

// scan consumes one token and returns its kind and the next header state.
// The first rule that matches wins.
func (l *Lexer) scan() (Kind, headerState, error) {
	ch := l.cur.peek()

	// white-space, comments
	if isWhitespace(ch) {
		for !l.cur.eof() && isWhitespace(l.cur.peek()) {
			l.cur.advance()
		}
		return Whitespace, l.hs, nil
	}
	if l.cur.hasPrefix("/*") {
		start := l.cur.mark()
		l.cur.advanceN(2)
		for !l.cur.hasPrefix("*/") {
			if l.cur.eof() {
				return 0, 0, l.errorAt(start, start+2, "unterminated comment", nil)
			}
			l.cur.advance()
		}
		l.cur.advanceN(2)
		return Whitespace, l.hs, nil
	}
	if l.cur.hasPrefix("//") {
		start := l.cur.mark()
		l.cur.advanceN(2)
		// the new-line is left for the next token
		for l.cur.peek() != '\n' {
			if l.cur.eof() {
				// phase 2 guarantees a final new-line
				return 0, 0, l.errorAt(start, start+2, "unterminated line comment", nil)
			}
			l.cur.advance()
		}
		return Whitespace, l.hs, nil
	}

	if l.hs == hsInclude && (ch == '<' || ch == '"') {
		if err := l.scanHeaderName(); err != nil {
			return 0, 0, err
		}
		return HeaderName, hsStart, nil
	}

	if ch == '\n' {
		l.cur.advance()
		return Newline, hsStart, nil
	}

	if ch == '\'' {
		if err := l.scanQuoted('\'', "character constant"); err != nil {
			return 0, 0, err
		}
		return CharacterConstant, hsStart, nil
	}
	if ch == '"' {
		if err := l.scanQuoted('"', "string literal"); err != nil {
			return 0, 0, err
		}
		return StringLiteral, hsStart, nil
	}

	if isDigit(ch) || (ch == '.' && isDigit(l.cur.peekN(1))) {
		l.scanNumber()
		return PpNumber, hsStart, nil
	}

	if isIdentifierStart(ch) {
		start := l.cur.mark()
		for !l.cur.eof() && isIdentifierContinue(l.cur.peek()) {
			l.cur.advance()
		}
		if l.hs == hsHash && string(l.cur.since(start)) == "include" {
			return Identifier, hsInclude, nil
		}
		return Identifier, hsStart, nil
	}

	for _, p := range punctuators {
		if l.cur.hasPrefix(p) {
			l.cur.advanceN(len(p))
			if p == "#" || p == "%:" {
				return Punctuator, hsHash, nil
			}
			return Punctuator, hsStart, nil
		}
	}

	start := l.cur.mark()
	end := start + 1
	if nl := bytes.IndexByte(l.cur.input[start:], '\n'); nl > 0 {
		end = start + nl
	}
	return 0, 0, l.errorAt(start, start+1, "unknown preprocessing token", l.cur.input[start:end])
}

// scanHeaderName accepts <h-chars> or "q-chars". Quotes of either
// kind, backslashes, new-lines and comment openers are not allowed.
func (l *Lexer) scanHeaderName() error {
	start := l.cur.mark()
	closer := byte('>')
	if l.cur.peek() == '"' {
		closer = '"'
	}
	l.cur.advance()
	for {
		if l.cur.eof() {
			return l.errorAt(start, l.cur.mark(), "unterminated header name", l.cur.since(start))
		}
		if l.cur.hasPrefix("//") || l.cur.hasPrefix("/*") {
			return l.errorAt(l.cur.mark(), l.cur.mark()+2, "cannot start comment in header name", l.cur.since(start))
		}
		ch := l.cur.peek()
		if ch == closer {
			l.cur.advance()
			return nil
		}
		switch ch {
		case '\'', '"', '\\', '\n':
			return l.errorAt(l.cur.mark(), l.cur.mark()+1, "illegal character in header name", []byte{ch})
		}
		l.cur.advance()
	}
}

// scanQuoted accepts a character constant or string literal
// delimited by quote, validating escape sequences.
func (l *Lexer) scanQuoted(quote byte, what string) error {
	start := l.cur.mark()
	l.cur.advance()
	for {
		if l.cur.eof() {
			return l.errorAt(start, l.cur.mark(), "unterminated "+what, l.cur.since(start))
		}
		ch := l.cur.peek()
		switch ch {
		case '\n':
			return l.errorAt(start, l.cur.mark(), "newline in "+what, l.cur.since(start))
		case '\\':
			if err := l.scanEscape(); err != nil {
				return err
			}
			continue
		}
		l.cur.advance()
		if ch == quote {
			return nil
		}
	}
}

// scanEscape accepts a backslash and the escape sequence following it.
func (l *Lexer) scanEscape() error {
	start := l.cur.mark()
	l.cur.advance()
	if l.cur.eof() {
		return l.errorAt(start, l.cur.mark(), "unterminated escape sequence", l.cur.since(start))
	}
	ch := l.cur.peek()
	l.cur.advance()
	switch {
	case bytes.IndexByte([]byte(`'"?\abfnrtv`), ch) >= 0:
	case isOctal(ch):
		for i := 0; i < 2 && !l.cur.eof() && isOctal(l.cur.peek()); i++ {
			l.cur.advance()
		}
	case ch == 'x':
		for !l.cur.eof() && isHex(l.cur.peek()) {
			l.cur.advance()
		}
	default:
		return l.errorAt(start, l.cur.mark(), "unknown escape", l.cur.since(start))
	}
	return nil
}

// scanNumber accepts a pp-number. The caller has checked that
// the input starts with a digit or a period followed by a digit.
func (l *Lexer) scanNumber() {
	l.cur.advance()
	for !l.cur.eof() {
		ch, next := l.cur.peek(), l.cur.peekN(1)
		switch {
		case (ch == 'e' || ch == 'E' || ch == 'p' || ch == 'P') && (next == '+' || next == '-'):
			l.cur.advanceN(2)
		case ch == '.' || isIdentifierContinue(ch):
			l.cur.advance()
		case ch == '\'' && (isDigit(next) || isNondigit(next)):
			l.cur.advanceN(2)
		default:
			return
		}
	}
}

// errorAt returns a located lex error for the normalized range [start, end).
func (l *Lexer) errorAt(start, end int, msg string, text []byte) error {
	err := &diagnostics.ErrLex{
		Span: l.buf.Span(start, min(end, len(l.buf.Text))),
		Msg:  msg,
		Text: text,
	}
	l.error("%v", err)
	return err
}

func (l *Lexer) debug(format string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Debug(fmt.Sprintf("%s: %s", l.name, fmt.Sprintf(format, args...)))
}

func (l *Lexer) error(format string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Error(fmt.Sprintf("%s: %s", l.name, fmt.Sprintf(format, args...)))
}
