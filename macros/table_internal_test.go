// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package macros

import (
	"errors"
	"testing"
)

func TestTable_CollisionIsNotAMiss(t *testing.T) {
	tbl := New()
	if err := tbl.Insert("a", Definition{Name: "a"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	// forge a slot holding a different key with the same hash
	for i := range tbl.slots {
		if tbl.slots[i].state == slotOccupied {
			tbl.slots[i].key = "not-a"
		}
	}
	if _, ok, err := tbl.Lookup("a"); ok || !errors.Is(err, ErrCollision) {
		t.Errorf("lookup: ok %v, err %v; want ErrCollision", ok, err)
	}
	if err := tbl.Remove("a"); !errors.Is(err, ErrCollision) {
		t.Errorf("remove: %v; want ErrCollision", err)
	}
}

func TestTable_LoopAroundIsAnInvariantFault(t *testing.T) {
	tbl := NewWithCapacity(4)
	for i := range tbl.slots {
		tbl.slots[i].state = slotTombstone
	}
	if _, _, err := tbl.Lookup("x"); !errors.Is(err, ErrInvariant) {
		t.Errorf("lookup: %v; want ErrInvariant", err)
	}
	// inserting may still reuse a tombstone
	tbl.live = 0
	if err := tbl.Insert("x", Definition{Name: "x"}); err != nil {
		t.Errorf("insert: %v", err)
	}
	if _, ok, err := tbl.Lookup("x"); !ok || err != nil {
		t.Errorf("lookup after insert: ok %v, err %v", ok, err)
	}
}
