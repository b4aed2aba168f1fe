// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package lexer_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mdhender/cobold/lexer"
)

func TestDump(t *testing.T) {
	input := "\n\nin\\\nt x; // c\n\n"
	buf, toks, err := scanAll(t, input)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	var got bytes.Buffer
	if err := lexer.Dump(&got, toks, buf.Original, false); err != nil {
		t.Fatalf("dump: %v", err)
	}
	want := `ident  "int" : "in\\\nt"
ident  "x"
punct  ";"
nl     "\n"
`
	if diff := cmp.Diff(want, got.String()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	got.Reset()
	if err := lexer.Dump(&got, toks, nil, true); err != nil {
		t.Fatalf("dump: %v", err)
	}
	want = `nl     "\n"
nl     "\n"
ident  "int"
ws     " "
ident  "x"
punct  ";"
ws     " "
ws     "// c"
nl     "\n"
nl     "\n"
`
	if diff := cmp.Diff(want, got.String()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
