// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	UnitStatusOk     = "ok"
	UnitStatusFailed = "failed"
)

// Unit is one preprocessed source file.
type Unit struct {
	ID           int64
	Name         string
	Digest       string // hex blake2b-256 of the source bytes
	Size         int
	Status       string
	ErrorCode    string
	ErrorMessage string
	CreatedAt    time.Time
}

// Token is one output token of a unit. Start and End are
// offsets into the original source.
type Token struct {
	Seq   int
	Kind  string
	Text  []byte
	Start int
	End   int
}

// Macro is a definition still in effect at the end of a unit.
type Macro struct {
	Name        string
	Replacement string
	Start       int
	End         int
}

type Diagnostic struct {
	Severity string
	Code     string
	Message  string
	Start    int
	End      int
	Line     int
	Column   int
}

// InsertUnit inserts a Unit and returns its assigned ID.
func (s *Store) InsertUnit(ctx context.Context, u *Unit) (int64, error) {
	const query = `
		INSERT INTO units (name, digest, size, status, error_code, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		u.Name,
		u.Digest,
		u.Size,
		u.Status,
		nullString(u.ErrorCode),
		nullString(u.ErrorMessage),
		u.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert unit: %w", err)
	}
	return result.LastInsertId()
}

// GetUnitByDigest retrieves a Unit by the digest of its source.
// Returns nil if no unit has that digest.
func (s *Store) GetUnitByDigest(ctx context.Context, digest string) (*Unit, error) {
	const query = `
		SELECT id, name, digest, size, status, error_code, error_message, created_at
		FROM units
		WHERE digest = ?
	`
	u, err := scanUnit(s.db.QueryRowContext(ctx, query, digest))
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("get unit: %w", err)
	}
	return u, nil
}

// ListUnits returns every unit ordered by name.
func (s *Store) ListUnits(ctx context.Context) ([]*Unit, error) {
	const query = `
		SELECT id, name, digest, size, status, error_code, error_message, created_at
		FROM units
		ORDER BY name, id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	var units []*Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUnit(row scanner) (*Unit, error) {
	var u Unit
	var errorCode, errorMessage sql.NullString
	var createdAt string
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Digest,
		&u.Size,
		&u.Status,
		&errorCode,
		&errorMessage,
		&createdAt,
	); err != nil {
		return nil, err
	}
	u.ErrorCode = errorCode.String
	u.ErrorMessage = errorMessage.String
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		u.CreatedAt = t
	}
	return &u, nil
}

// InsertTokens stores the output tokens of a unit in one transaction.
func (s *Store) InsertTokens(ctx context.Context, unitID int64, toks []Token) error {
	const query = `
		INSERT INTO unit_tokens (unit_id, seq, kind, text, start_offset, end_offset)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	return s.inTx(ctx, "insert unit_tokens", query, len(toks), func(i int) []any {
		tok := toks[i]
		return []any{unitID, tok.Seq, tok.Kind, tok.Text, tok.Start, tok.End}
	})
}

// ListTokens returns the output tokens of a unit in order.
func (s *Store) ListTokens(ctx context.Context, unitID int64) ([]Token, error) {
	const query = `
		SELECT seq, kind, text, start_offset, end_offset
		FROM unit_tokens
		WHERE unit_id = ?
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query, unitID)
	if err != nil {
		return nil, fmt.Errorf("query unit_tokens: %w", err)
	}
	defer rows.Close()

	var toks []Token
	for rows.Next() {
		var tok Token
		if err := rows.Scan(&tok.Seq, &tok.Kind, &tok.Text, &tok.Start, &tok.End); err != nil {
			return nil, err
		}
		toks = append(toks, tok)
	}
	return toks, rows.Err()
}

// InsertMacros stores the surviving macro definitions of a unit.
func (s *Store) InsertMacros(ctx context.Context, unitID int64, defs []Macro) error {
	const query = `
		INSERT INTO unit_macros (unit_id, name, replacement, start_offset, end_offset)
		VALUES (?, ?, ?, ?, ?)
	`
	return s.inTx(ctx, "insert unit_macros", query, len(defs), func(i int) []any {
		m := defs[i]
		return []any{unitID, m.Name, m.Replacement, m.Start, m.End}
	})
}

// ListMacros returns the macros of a unit ordered by name.
func (s *Store) ListMacros(ctx context.Context, unitID int64) ([]Macro, error) {
	const query = `
		SELECT name, replacement, start_offset, end_offset
		FROM unit_macros
		WHERE unit_id = ?
		ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query, unitID)
	if err != nil {
		return nil, fmt.Errorf("query unit_macros: %w", err)
	}
	defer rows.Close()

	var defs []Macro
	for rows.Next() {
		var m Macro
		if err := rows.Scan(&m.Name, &m.Replacement, &m.Start, &m.End); err != nil {
			return nil, err
		}
		defs = append(defs, m)
	}
	return defs, rows.Err()
}

// InsertDiagnostics stores the diagnostics reported for a unit.
func (s *Store) InsertDiagnostics(ctx context.Context, unitID int64, diags []Diagnostic) error {
	const query = `
		INSERT INTO unit_diagnostics (unit_id, severity, code, message, start_offset, end_offset, line_no, col_no)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	return s.inTx(ctx, "insert unit_diagnostics", query, len(diags), func(i int) []any {
		d := diags[i]
		return []any{unitID, d.Severity, d.Code, d.Message, d.Start, d.End, d.Line, d.Column}
	})
}

// ListDiagnostics returns the diagnostics of a unit in the order reported.
func (s *Store) ListDiagnostics(ctx context.Context, unitID int64) ([]Diagnostic, error) {
	const query = `
		SELECT severity, code, message, start_offset, end_offset, line_no, col_no
		FROM unit_diagnostics
		WHERE unit_id = ?
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, unitID)
	if err != nil {
		return nil, fmt.Errorf("query unit_diagnostics: %w", err)
	}
	defer rows.Close()

	var diags []Diagnostic
	for rows.Next() {
		var d Diagnostic
		if err := rows.Scan(&d.Severity, &d.Code, &d.Message, &d.Start, &d.End, &d.Line, &d.Column); err != nil {
			return nil, err
		}
		diags = append(diags, d)
	}
	return diags, rows.Err()
}

// inTx runs query n times in a single transaction.
func (s *Store) inTx(ctx context.Context, op, query string, n int, args func(i int) []any) error {
	if n == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%s: prepare: %w", op, err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}
