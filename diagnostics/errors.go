// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package diagnostics

import (
	"errors"
	"fmt"
	"strings"
)

// Span is a half-open byte range [Start, End) in the original source.
type Span struct {
	Start int
	End   int
}

// Len returns the number of original bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Text is a helper to return the original text of the span.
func (s Span) Text(input []byte) []byte {
	start, end := min(s.Start, len(input)), min(s.End, len(input))
	return input[start:end]
}

// ErrSourceFormat is returned when logical line assembly rejects the input.
type ErrSourceFormat struct {
	Span Span
	Msg  string
}

func (e *ErrSourceFormat) Error() string {
	return fmt.Sprintf("offset %d: source file %s", e.Span.Start, e.Msg)
}

// ErrLex is returned when the input cannot be split into preprocessing tokens.
type ErrLex struct {
	Span Span
	Msg  string
	Text []byte // offending bytes, if any
}

func (e *ErrLex) Error() string {
	if len(e.Text) == 0 {
		return fmt.Sprintf("offset %d: %s", e.Span.Start, e.Msg)
	}
	return fmt.Sprintf("offset %d: %s at %s", e.Span.Start, e.Msg, Quote(e.Text))
}

// ErrDirective is returned for a malformed or unsupported directive.
type ErrDirective struct {
	Span Span
	Msg  string
}

func (e *ErrDirective) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Span.Start, e.Msg)
}

// ErrMacroTable is returned when the macro table rejects an operation.
// Err is one of the sentinel causes defined by the macros package.
type ErrMacroTable struct {
	Span Span
	Key  string
	Err  error
}

func (e *ErrMacroTable) Error() string {
	return fmt.Sprintf("offset %d: macro %s: %v", e.Span.Start, Quote([]byte(e.Key)), e.Err)
}

func (e *ErrMacroTable) Unwrap() error {
	return e.Err
}

// ErrReadFile is returned when a translation unit cannot be read.
type ErrReadFile struct {
	Path string
	Err  error
}

func (e *ErrReadFile) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ErrReadFile) Unwrap() error {
	return e.Err
}

// ErrDatabase is returned when persisting results fails.
type ErrDatabase struct {
	Op  string
	Err error
}

func (e *ErrDatabase) Error() string {
	return fmt.Sprintf("database %s: %v", e.Op, e.Err)
}

func (e *ErrDatabase) Unwrap() error {
	return e.Err
}

// Errors is the list of diagnostics collected when a translation unit
// is allowed to continue past its first error.
type Errors []error

func (list Errors) Error() string {
	switch len(list) {
	case 0:
		return "no errors"
	case 1:
		return list[0].Error()
	}
	var sb strings.Builder
	sb.WriteString(list[0].Error())
	sb.WriteString(fmt.Sprintf(" (and %d more errors)", len(list)-1))
	return sb.String()
}

func (list Errors) Unwrap() []error {
	return list
}

// Error code constants for database storage.
const (
	ErrCodeSourceFormat = "SOURCE_FORMAT"
	ErrCodeLex          = "LEX"
	ErrCodeDirective    = "DIRECTIVE"
	ErrCodeMacroTable   = "MACRO_TABLE"
	ErrCodeReadFile     = "READ_FILE"
	ErrCodeDatabase     = "DATABASE"
	ErrCodeUnknown      = "UNKNOWN"
)

// ErrorCode returns the error code string for a given error.
// A list of errors reports the code of its first entry.
func ErrorCode(err error) string {
	var list Errors
	if errors.As(err, &list) && len(list) != 0 {
		err = list[0]
	}
	switch err.(type) {
	case *ErrSourceFormat:
		return ErrCodeSourceFormat
	case *ErrLex:
		return ErrCodeLex
	case *ErrDirective:
		return ErrCodeDirective
	case *ErrMacroTable:
		return ErrCodeMacroTable
	case *ErrReadFile:
		return ErrCodeReadFile
	case *ErrDatabase:
		return ErrCodeDatabase
	default:
		return ErrCodeUnknown
	}
}

// SpanOf returns the original-source span carried by err, if any.
func SpanOf(err error) (Span, bool) {
	var (
		sf *ErrSourceFormat
		lx *ErrLex
		dx *ErrDirective
		mt *ErrMacroTable
	)
	switch {
	case errors.As(err, &sf):
		return sf.Span, true
	case errors.As(err, &lx):
		return lx.Span, true
	case errors.As(err, &dx):
		return dx.Span, true
	case errors.As(err, &mt):
		return mt.Span, true
	}
	return Span{}, false
}
