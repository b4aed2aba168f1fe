// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package source implements logical line assembly (translation phase 2).
//
// Every backslash immediately followed by a new-line is removed from the
// input. The positions of the removed splices are kept in an OffsetMap so
// that later phases can report diagnostics against the original bytes.
package source

import (
	"sort"

	"github.com/mdhender/cobold/diagnostics"
)

// Offset records one removed splice.
type Offset struct {
	// Index is the index in the normalized buffer of the byte
	// that followed the removed backslash-newline pair.
	Index int
	// Actual is the index of that same byte in the original buffer.
	Actual int
}

// OffsetMap is the list of removed splices in ascending Index order.
type OffsetMap []Offset

// Actual translates a position in the normalized buffer to a
// position in the original buffer. Positions before the first
// splice map to themselves.
func (m OffsetMap) Actual(pos int) int {
	// find the last entry with Index <= pos
	i := sort.Search(len(m), func(i int) bool {
		return m[i].Index > pos
	})
	if i == 0 {
		return pos
	}
	e := m[i-1]
	return pos - e.Index + e.Actual
}

// Span maps the normalized range [start, end) to the original buffer.
// The ends are mapped independently, so the original span is longer
// exactly when a splice was removed inside the range.
func (m OffsetMap) Span(start, end int) diagnostics.Span {
	return diagnostics.Span{Start: m.Actual(start), End: m.Actual(end)}
}

// Buffer is the immutable result of logical line assembly.
type Buffer struct {
	Original []byte    // the bytes as read
	Text     []byte    // the bytes with every splice removed
	Offsets  OffsetMap // where the splices were
}

// Normalize removes every backslash-newline pair from src.
//
// A non-empty input must end with a new-line once the splices
// are removed, and may not end in a lone backslash.
func Normalize(src []byte) (*Buffer, error) {
	b := &Buffer{
		Original: src,
		Text:     make([]byte, 0, len(src)),
	}
	for i := 0; i < len(src); i++ {
		ch := src[i]
		if ch == '\\' {
			if i+1 == len(src) {
				return nil, &diagnostics.ErrSourceFormat{
					Span: diagnostics.Span{Start: i, End: i + 1},
					Msg:  "ends in a backslash",
				}
			}
			if src[i+1] == '\n' {
				i++
				b.Offsets = append(b.Offsets, Offset{Index: len(b.Text), Actual: i + 1})
				continue
			}
		}
		b.Text = append(b.Text, ch)
	}
	if len(src) != 0 && (len(b.Text) == 0 || b.Text[len(b.Text)-1] != '\n') {
		return nil, &diagnostics.ErrSourceFormat{
			Span: diagnostics.Span{Start: len(src), End: len(src)},
			Msg:  "does not end in a newline",
		}
	}
	return b, nil
}

// Span maps the normalized range [start, end) to the original buffer.
func (b *Buffer) Span(start, end int) diagnostics.Span {
	return b.Offsets.Span(start, end)
}
