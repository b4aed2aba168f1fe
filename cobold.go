// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package cobold implements translation phases 2 through 4 of a C
// compiler front end: line splicing, preprocessing tokenization, and
// object-like macro expansion.
package cobold

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mdhender/cobold/diagnostics"
	"github.com/mdhender/cobold/lexer"
	"github.com/mdhender/cobold/macros"
	"github.com/mdhender/cobold/preprocessor"
	"github.com/mdhender/cobold/source"
)

// Unit is the result of translating one source file.
type Unit struct {
	Name   string
	Buffer *source.Buffer

	// Tokens are the phase 3 tokens, before any directive is processed.
	Tokens []lexer.Token

	// Output is the expanded token stream.
	Output []lexer.Token

	// Macros holds the definitions still in effect at end of input.
	Macros *macros.Table

	Diagnostics []diagnostics.Diagnostic
}

// Translate runs phases 2 through 4 over src.
//
// A source format or lexing error stops translation and returns a nil
// Unit. Preprocessing errors return the Unit with its Diagnostics set,
// so that callers collecting errors can still report the output.
func Translate(ctx context.Context, name string, src []byte, options ...Option) (*Unit, error) {
	cfg := &Config{maxErrors: 1}
	for _, option := range options {
		if err := option(cfg); err != nil {
			return nil, err
		}
	}
	logger := cfg.logger

	started := time.Now()
	buf, err := source.Normalize(src)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Debug("normalize", "file", name, "bytes", len(src), "splices", len(buf.Offsets), "elapsed", time.Since(started))
	}

	started = time.Now()
	toks, err := lexer.Tokens(ctx, name, buf, logger)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Debug("lex", "file", name, "tokens", len(toks), "elapsed", time.Since(started))
	}

	table := macros.New()
	if cfg.tableCapacity > 0 {
		table = macros.NewWithCapacity(cfg.tableCapacity)
	}
	pp := preprocessor.New(ctx, name, toks, table, logger)
	pp.SetMaxErrors(cfg.maxErrors)
	for _, pd := range cfg.predefines {
		if err := predefineMacro(ctx, pp, pd); err != nil {
			return nil, err
		}
	}

	started = time.Now()
	unit := &Unit{Name: name, Buffer: buf, Tokens: toks, Macros: pp.Macros()}
	unit.Output, err = pp.Run()
	if logger != nil {
		logger.Debug("preprocess", "file", name, "tokens", len(unit.Output), "macros", table.Len(), "elapsed", time.Since(started))
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		var list diagnostics.Errors
		if !errors.As(err, &list) {
			list = diagnostics.Errors{err}
		}
		for _, e := range list {
			unit.Diagnostics = append(unit.Diagnostics, diagnostics.FromError(e))
		}
		return unit, err
	}
	return unit, nil
}

// predefineMacro applies a -D or -U. The body is lexed on its own,
// so the spans of its tokens refer to the body and not to the unit.
func predefineMacro(ctx context.Context, pp *preprocessor.Preprocessor, pd predefine) error {
	if !pd.define {
		return pp.Undefine(pd.name)
	}
	buf, err := source.Normalize([]byte(pd.body + "\n"))
	if err != nil {
		return fmt.Errorf("define %s: %w", pd.name, err)
	}
	toks, err := lexer.Tokens(ctx, "<command line>", buf, nil)
	if err != nil {
		return fmt.Errorf("define %s: %w", pd.name, err)
	}
	for _, tok := range toks {
		if tok.Is(lexer.Newline) && tok.End != len(buf.Text) {
			return fmt.Errorf("define %s: body contains a new-line", pd.name)
		}
	}
	return pp.Define(pd.name, toks[:len(toks)-1])
}
