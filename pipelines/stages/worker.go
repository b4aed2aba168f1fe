// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package stages

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mdhender/cobold"
	"github.com/mdhender/cobold/diagnostics"
	"github.com/mdhender/cobold/lexer"
	store "github.com/mdhender/cobold/stores/sqlite"
	"github.com/spf13/afero"
	"github.com/tevino/abool/v2"
)

// BatchService preprocesses translation units on a pool of workers.
// Every unit gets its own preprocessor; nothing is shared between them
// except the store.
type BatchService struct {
	store   BatchStore
	fs      afero.Fs
	workers int
	options []cobold.Option
	logger  *slog.Logger

	mu       sync.Mutex
	inflight map[string]bool // digests claimed by this service

	// stopped is set after a store error; files not yet started are skipped
	stopped *abool.AtomicBool
}

// BatchStore defines the store operations needed by BatchService.
type BatchStore interface {
	GetUnitByDigest(ctx context.Context, digest string) (*store.Unit, error)
	InsertUnit(ctx context.Context, u *store.Unit) (int64, error)
	InsertTokens(ctx context.Context, unitID int64, toks []store.Token) error
	InsertMacros(ctx context.Context, unitID int64, defs []store.Macro) error
	InsertDiagnostics(ctx context.Context, unitID int64, diags []store.Diagnostic) error
}

// NewBatchService creates a new BatchService. The options are passed
// to cobold.Translate for every unit.
func NewBatchService(st BatchStore, workers int, logger *slog.Logger, options ...cobold.Option) *BatchService {
	return &BatchService{
		store:    st,
		fs:       afero.NewOsFs(),
		workers:  max(workers, 1),
		options:  options,
		logger:   logger,
		inflight: make(map[string]bool),
		stopped:  abool.NewBool(false),
	}
}

// SetFS sets the filesystem for testing.
func (b *BatchService) SetFS(fs afero.Fs) {
	b.fs = fs
}

// BatchResult is the outcome of preprocessing one file.
type BatchResult struct {
	Path      string
	Digest    string
	UnitID    int64
	Duplicate bool // true if the unit was already stored (idempotent no-op)
	Skipped   bool // true if the run stopped before this file was started
	Status    string
	Err       error // the translation error, if any
}

// Run preprocesses every file in paths. Translation errors are
// recorded in the results and the store; the returned error reports
// only failures to read files or to update the store. After the first
// store failure the remaining files are skipped.
func (b *BatchService) Run(ctx context.Context, paths []string) ([]BatchResult, error) {
	results := make([]BatchResult, len(paths))
	errs := make([]error, len(paths))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if b.stopped.IsSet() {
					results[i] = BatchResult{Path: paths[i], Skipped: true}
					continue
				}
				results[i], errs[i] = b.ProcessFile(ctx, paths[i])
				var db *diagnostics.ErrDatabase
				if errors.As(errs[i], &db) {
					b.stopped.Set()
				}
			}
		}()
	}
feed:
	for i := range paths {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, errors.Join(errs...)
}

// ProcessFile reads, preprocesses and stores a single file.
func (b *BatchService) ProcessFile(ctx context.Context, path string) (BatchResult, error) {
	result := BatchResult{Path: path}

	data, err := afero.ReadFile(b.fs, path)
	if err != nil {
		return result, &diagnostics.ErrReadFile{Path: path, Err: err}
	}
	result.Digest = Digest(data)

	if !b.claim(result.Digest) {
		result.Duplicate = true
		return result, nil
	}
	existing, err := b.store.GetUnitByDigest(ctx, result.Digest)
	if err != nil {
		return result, &diagnostics.ErrDatabase{Op: "check duplicate", Err: err}
	}
	if existing != nil {
		result.UnitID, result.Status, result.Duplicate = existing.ID, existing.Status, true
		return result, nil
	}

	started := time.Now()
	unit, err := cobold.Translate(ctx, path, data, b.options...)
	if err != nil && ctx.Err() != nil {
		return result, ctx.Err()
	}
	result.Err = err

	row := &store.Unit{
		Name:      path,
		Digest:    result.Digest,
		Size:      len(data),
		Status:    store.UnitStatusOk,
		CreatedAt: time.Now().UTC(),
	}
	if err != nil {
		row.Status = store.UnitStatusFailed
		row.ErrorCode = diagnostics.ErrorCode(err)
		row.ErrorMessage = err.Error()
	}
	result.Status = row.Status
	if result.UnitID, err = b.store.InsertUnit(ctx, row); err != nil {
		return result, &diagnostics.ErrDatabase{Op: "insert unit", Err: err}
	}

	var diags []diagnostics.Diagnostic
	if unit != nil {
		if err := b.store.InsertTokens(ctx, result.UnitID, storeTokens(unit.Output)); err != nil {
			return result, &diagnostics.ErrDatabase{Op: "insert tokens", Err: err}
		}
		if err := b.store.InsertMacros(ctx, result.UnitID, storeMacros(unit)); err != nil {
			return result, &diagnostics.ErrDatabase{Op: "insert macros", Err: err}
		}
		diags = unit.Diagnostics
	} else if result.Err != nil {
		diags = []diagnostics.Diagnostic{diagnostics.FromError(result.Err)}
	}
	if err := b.store.InsertDiagnostics(ctx, result.UnitID, storeDiagnostics(data, result.Err, diags)); err != nil {
		return result, &diagnostics.ErrDatabase{Op: "insert diagnostics", Err: err}
	}

	if b.logger != nil {
		b.logger.Debug("batch", "file", path, "status", row.Status, "diagnostics", len(diags), "elapsed", time.Since(started))
	}
	return result, nil
}

// claim reports whether digest was not already claimed by this service.
func (b *BatchService) claim(digest string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inflight[digest] {
		return false
	}
	b.inflight[digest] = true
	return true
}

func storeTokens(toks []lexer.Token) []store.Token {
	out := make([]store.Token, 0, len(toks))
	for i, tok := range toks {
		out = append(out, store.Token{
			Seq:   i,
			Kind:  tok.Kind.String(),
			Text:  tok.Text,
			Start: tok.Actual.Start,
			End:   tok.Actual.End,
		})
	}
	return out
}

func storeMacros(unit *cobold.Unit) []store.Macro {
	var out []store.Macro
	for _, def := range unit.Macros.Definitions() {
		out = append(out, store.Macro{
			Name:        def.Name,
			Replacement: string(lexer.Concat(def.Replacement)),
			Start:       def.Location.Start,
			End:         def.Location.End,
		})
	}
	return out
}

// storeDiagnostics pairs each diagnostic with the code of the error it came from.
func storeDiagnostics(src []byte, err error, diags []diagnostics.Diagnostic) []store.Diagnostic {
	var causes []error
	var list diagnostics.Errors
	if errors.As(err, &list) {
		causes = list
	} else if err != nil {
		causes = []error{err}
	}

	out := make([]store.Diagnostic, 0, len(diags))
	for i, diag := range diags {
		code := diagnostics.ErrCodeUnknown
		if i < len(causes) {
			code = diagnostics.ErrorCode(causes[i])
		}
		line, col := diagnostics.Locate(src, diag.Span.Start)
		out = append(out, store.Diagnostic{
			Severity: diag.Severity.String(),
			Code:     code,
			Message:  diag.Message,
			Start:    diag.Span.Start,
			End:      diag.Span.End,
			Line:     line,
			Column:   col,
		})
	}
	return out
}
