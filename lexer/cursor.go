// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package lexer

// cursor is a read position in an immutable byte slice.
//
// Invariant: 0 <= pos <= len(input). Peeking past the end returns 0,
// so callers that care about NUL bytes must check eof first.
type cursor struct {
	input []byte
	pos   int
}

func (c *cursor) eof() bool {
	return c.pos >= len(c.input)
}

// peek returns the current byte without advancing the input.
func (c *cursor) peek() byte {
	return c.peekN(0)
}

// peekN returns the byte n positions ahead of the current one.
func (c *cursor) peekN(n int) byte {
	if n < 0 {
		panic("assert(n >= 0)")
	}
	if c.pos+n >= len(c.input) {
		return 0
	}
	return c.input[c.pos+n]
}

// advance moves past the current byte. It is a no-op at end of input.
func (c *cursor) advance() {
	c.advanceN(1)
}

func (c *cursor) advanceN(n int) {
	c.pos = min(c.pos+n, len(c.input))
}

func (c *cursor) hasPrefix(prefix string) bool {
	if len(c.input)-c.pos < len(prefix) {
		return false
	}
	return string(c.input[c.pos:c.pos+len(prefix)]) == prefix
}

// mark returns the current position so that it can be restored with reset.
func (c *cursor) mark() int {
	return c.pos
}

func (c *cursor) reset(mark int) {
	if mark < 0 || mark > len(c.input) {
		panic("assert(0 <= mark <= len(input))")
	}
	c.pos = mark
}

// since returns the bytes consumed after mark.
func (c *cursor) since(mark int) []byte {
	return c.input[mark:c.pos]
}
