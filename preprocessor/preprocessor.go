// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package preprocessor implements directive processing and macro
// expansion (translation phase 4).
package preprocessor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/edwingeng/deque"
	"github.com/mdhender/cobold/diagnostics"
	"github.com/mdhender/cobold/lexer"
	"github.com/mdhender/cobold/macros"
)

// Preprocessor walks the tokens of one translation unit group by group.
// A group is either a directive (a line whose first non-white-space
// token is #) or a text line. Nothing is shared between instances.
type Preprocessor struct {
	name   string
	toks   []lexer.Token
	i      int // index of the next token in toks
	out    []lexer.Token
	macros *macros.Table

	// pending holds tokens waiting to be rescanned during expansion
	pending deque.Deque

	maxErrors int // 0 means collect every error
	errs      diagnostics.Errors

	// logging
	ctx    context.Context
	logger *slog.Logger
}

func New(ctx context.Context, name string, toks []lexer.Token, table *macros.Table, logger *slog.Logger) *Preprocessor {
	if table == nil {
		table = macros.New()
	}
	return &Preprocessor{
		name:      name,
		toks:      toks,
		macros:    table,
		pending:   deque.NewDeque(),
		maxErrors: 1,
		ctx:       ctx,
		logger:    logger,
	}
}

// SetMaxErrors sets the number of directive errors after which Run
// stops. The default of 1 halts on the first error; 0 means no limit.
func (p *Preprocessor) SetMaxErrors(n int) {
	p.maxErrors = max(n, 0)
}

// Macros returns the macro table. It reflects every #define and
// #undef seen so far.
func (p *Preprocessor) Macros() *macros.Table {
	return p.macros
}

// Define adds an object-like macro as if by #define.
func (p *Preprocessor) Define(name string, replacement []lexer.Token) error {
	return p.macros.Insert(name, macros.Definition{
		Name:        name,
		Replacement: trimWhitespace(replacement),
	})
}

// Undefine removes a macro as if by #undef.
func (p *Preprocessor) Undefine(name string) error {
	return p.macros.Remove(name)
}

// Run processes every group and returns the expanded tokens.
//
// When halting on the first error, Run returns no tokens. When errors
// are being collected, the rest of the group with the error is dropped
// and Run returns the tokens it produced along with a diagnostics.Errors
// list.
func (p *Preprocessor) Run() ([]lexer.Token, error) {
	for !p.atEnd() {
		if p.ctx != nil {
			if err := p.ctx.Err(); err != nil {
				return nil, err
			}
		}
		if err := p.group(); err != nil {
			if !recoverable(err) {
				return nil, err
			}
			p.errs = append(p.errs, err)
			p.error("%v", err)
			if p.maxErrors > 0 && len(p.errs) >= p.maxErrors {
				break
			}
			p.skipLine()
		}
	}
	if len(p.errs) != 0 {
		if p.maxErrors == 1 {
			return nil, p.errs[0]
		}
		return p.out, p.errs
	}
	p.debug("%d tokens in, %d tokens out, %d macros", len(p.toks), len(p.out), p.macros.Len())
	return p.out, nil
}

// Expand returns toks with every macro invocation replaced.
// Directives are not recognized.
func (p *Preprocessor) Expand(toks []lexer.Token) ([]lexer.Token, error) {
	var out []lexer.Token
	for _, tok := range toks {
		var err error
		if out, err = p.expand(out, tok); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func recoverable(err error) bool {
	var (
		dx *diagnostics.ErrDirective
		mt *diagnostics.ErrMacroTable
	)
	return errors.As(err, &dx) || errors.As(err, &mt)
}

// group handles one directive or text line.
func (p *Preprocessor) group() error {
	saved := p.save()
	p.skipWhitespace()
	if p.peek().IsHash() {
		p.next()
		return p.directive()
	}
	p.load(saved)
	return p.textLine()
}

// textLine copies tokens up to and including the next new-line,
// expanding identifiers that name macros.
func (p *Preprocessor) textLine() error {
	for !p.atEnd() {
		tok := p.next()
		if !tok.Is(lexer.Identifier) {
			p.out = append(p.out, tok)
			if tok.Is(lexer.Newline) {
				return nil
			}
			continue
		}
		var err error
		if p.out, err = p.expand(p.out, tok); err != nil {
			return err
		}
	}
	return nil
}

// hideSet is the set of macro names that may not be expanded
// again in a token. It is never modified once built.
type hideSet map[string]struct{}

func (hs hideSet) with(name string) hideSet {
	next := make(hideSet, len(hs)+1)
	for k := range hs {
		next[k] = struct{}{}
	}
	next[name] = struct{}{}
	return next
}

type pendingToken struct {
	tok  lexer.Token
	hide hideSet
}

// expand appends tok to out, replacing it by its macro's replacement
// list when it names a macro. Replacement tokens are pushed back onto
// the pending stack and rescanned with the macro's name added to their
// hide set, so a macro never expands inside its own expansion.
func (p *Preprocessor) expand(out []lexer.Token, tok lexer.Token) ([]lexer.Token, error) {
	p.pending.PushFront(pendingToken{tok: tok})
	for !p.pending.Empty() {
		item := p.pending.PopFront().(pendingToken)
		if !item.tok.Is(lexer.Identifier) {
			out = append(out, item.tok)
			continue
		}
		name := string(item.tok.Text)
		if _, hidden := item.hide[name]; hidden {
			out = append(out, item.tok)
			continue
		}
		def, ok, err := p.macros.Lookup(name)
		if err != nil {
			for !p.pending.Empty() {
				p.pending.PopFront()
			}
			return out, locate(err, item.tok)
		} else if !ok {
			out = append(out, item.tok)
			continue
		}
		hide := item.hide.with(name)
		for i := len(def.Replacement) - 1; i >= 0; i-- {
			p.pending.PushFront(pendingToken{tok: def.Replacement[i], hide: hide})
		}
	}
	return out, nil
}

// locate sets the span of a macro table error to tok.
func locate(err error, tok lexer.Token) error {
	var mt *diagnostics.ErrMacroTable
	if errors.As(err, &mt) {
		mt.Span = tok.Actual
	}
	return err
}

func (p *Preprocessor) errorAt(tok lexer.Token, format string, args ...any) error {
	return &diagnostics.ErrDirective{
		Span: tok.Actual,
		Msg:  fmt.Sprintf(format, args...),
	}
}

func (p *Preprocessor) debug(format string, args ...any) {
	if p.logger == nil {
		return
	}
	p.logger.Debug(fmt.Sprintf("%s: %s", p.name, fmt.Sprintf(format, args...)))
}

func (p *Preprocessor) error(format string, args ...any) {
	if p.logger == nil {
		return
	}
	p.logger.Error(fmt.Sprintf("%s: %s", p.name, fmt.Sprintf(format, args...)))
}
