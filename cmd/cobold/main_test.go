// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package main

import (
	"context"
	"testing"

	"github.com/mdhender/cobold"
	"github.com/mdhender/cobold/lexer"
)

func TestMacroOptions(t *testing.T) {
	options := macroOptions([]string{"A", "B=2", "C=x=y", "D=4"}, []string{"D"})
	unit, err := cobold.Translate(context.Background(), "test.c", []byte("A B C D\n"), options...)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got, want := string(lexer.Concat(unit.Output)), "1 2 x=y D\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
