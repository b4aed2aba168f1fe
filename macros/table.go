// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package macros implements the macro table, an open-addressing
// hash map from macro name to definition with linear probing
// and tombstones.
package macros

import (
	"errors"
	"fmt"
	"io"
	"math/bits"
	"sort"

	"github.com/mdhender/cobold/diagnostics"
	"github.com/mdhender/cobold/lexer"
)

var (
	// ErrCollision is returned when two different keys have the same
	// 64-bit hash. It is not expected to happen in practice.
	ErrCollision = errors.New("hash collision")
	// ErrRedefinition is returned when a macro is redefined with a
	// different replacement list.
	ErrRedefinition = errors.New("conflicting redefinition")
	// ErrInvariant is returned when a probe visits every slot.
	// The load factor limit makes this unreachable.
	ErrInvariant = errors.New("probe looped around the table")
)

const defaultCapacity = 8

type slotState uint8

const (
	slotEmpty slotState = iota // never occupied
	slotTombstone
	slotOccupied
)

type slot struct {
	state slotState
	hash  uint64
	key   string
	value Definition
}

// Table is not safe for concurrent use. Each translation unit owns its own.
type Table struct {
	slots []slot
	live  int // occupied slots plus tombstones
	count int // occupied slots
}

// New returns an empty table with the default capacity.
func New() *Table {
	return NewWithCapacity(defaultCapacity)
}

// NewWithCapacity returns an empty table. The capacity is
// rounded up to a power of two.
func NewWithCapacity(capacity int) *Table {
	capacity = max(capacity, 2)
	if capacity&(capacity-1) != 0 {
		capacity = 1 << bits.Len(uint(capacity))
	}
	return &Table{slots: make([]slot, capacity)}
}

// Len returns the number of macros in the table.
func (t *Table) Len() int {
	return t.count
}

// Cap returns the number of slots in the table.
func (t *Table) Cap() int {
	return len(t.slots)
}

// Insert adds a definition for key.
//
// Redefining a macro with an equivalent replacement list is allowed
// and keeps the first definition. Any other redefinition fails with
// ErrRedefinition.
func (t *Table) Insert(key string, value Definition) error {
	h := Hash(key)
	i, found, err := t.find(key, h, true)
	if err != nil {
		return err
	}
	if found {
		if t.slots[i].value.Equivalent(value) {
			return nil
		}
		return t.fault(key, ErrRedefinition)
	}
	if t.live+1 > len(t.slots)/2 {
		t.grow()
		if i, _, err = t.find(key, h, true); err != nil {
			return err
		}
	}
	if t.slots[i].state == slotEmpty {
		t.live++
	}
	t.slots[i] = slot{state: slotOccupied, hash: h, key: key, value: value}
	t.count++
	return nil
}

// Lookup returns the definition for key, if there is one.
func (t *Table) Lookup(key string) (Definition, bool, error) {
	i, found, err := t.find(key, Hash(key), false)
	if err != nil || !found {
		return Definition{}, false, err
	}
	return t.slots[i].value, true, nil
}

// Remove deletes the definition for key. Removing a key
// that is not in the table is a no-op.
func (t *Table) Remove(key string) error {
	i, found, err := t.find(key, Hash(key), false)
	if err != nil || !found {
		return err
	}
	t.slots[i] = slot{state: slotTombstone}
	t.count--
	return nil
}

// Definitions returns every macro in the table, sorted by name.
func (t *Table) Definitions() []Definition {
	var list []Definition
	for _, s := range t.slots {
		if s.state == slotOccupied {
			list = append(list, s.value)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

// find probes for key starting at h mod capacity.
//
// It returns the index of the slot holding key and true, or, if the
// key is absent, the slot where it should be inserted and false. When
// insert is set, the first tombstone on the probe path is returned as
// the insertion slot; otherwise tombstones are skipped. Either way the
// probe continues past tombstones, so a live key behind one is found.
func (t *Table) find(key string, h uint64, insert bool) (int, bool, error) {
	mask := uint64(len(t.slots) - 1)
	tombstone := -1
	i := h & mask
	for n := 0; n < len(t.slots); n, i = n+1, (i+1)&mask {
		s := &t.slots[i]
		switch s.state {
		case slotEmpty:
			if insert && tombstone >= 0 {
				return tombstone, false, nil
			}
			return int(i), false, nil
		case slotTombstone:
			if tombstone < 0 {
				tombstone = int(i)
			}
		case slotOccupied:
			if s.hash != h {
				continue
			}
			if s.key != key {
				return -1, false, t.fault(key, fmt.Errorf("%w with %s", ErrCollision, diagnostics.Quote([]byte(s.key))))
			}
			return int(i), true, nil
		}
	}
	if insert && tombstone >= 0 {
		return tombstone, false, nil
	}
	return -1, false, t.fault(key, ErrInvariant)
}

// grow doubles the capacity and reinserts every occupied slot,
// dropping tombstones.
func (t *Table) grow() {
	old := t.slots
	t.slots = make([]slot, 2*len(old))
	t.live, t.count = 0, 0
	mask := uint64(len(t.slots) - 1)
	for _, s := range old {
		if s.state != slotOccupied {
			continue
		}
		i := s.hash & mask
		for t.slots[i].state != slotEmpty {
			i = (i + 1) & mask
		}
		t.slots[i] = s
		t.live++
		t.count++
	}
}

func (t *Table) fault(key string, err error) error {
	return &diagnostics.ErrMacroTable{Key: key, Err: err}
}

// Dump writes every slot of the table to w.
func (t *Table) Dump(w io.Writer) {
	_, _ = fmt.Fprintf(w, "================== len: %d cap: %d\n", t.live, len(t.slots))
	for i, s := range t.slots {
		switch s.state {
		case slotEmpty:
			_, _ = fmt.Fprintf(w, "%d empty\n", i)
		case slotTombstone:
			_, _ = fmt.Fprintf(w, "%d tombstone\n", i)
		case slotOccupied:
			_, _ = fmt.Fprintf(w, "%d %016x %s ->", i, s.hash, diagnostics.Quote([]byte(s.key)))
			for _, tok := range s.value.Replacement {
				if tok.Is(lexer.Whitespace) {
					continue
				}
				_, _ = fmt.Fprintf(w, " %s", diagnostics.Quote(tok.Text))
			}
			_, _ = fmt.Fprintln(w)
		}
	}
}
