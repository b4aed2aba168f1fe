// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package diagnostics

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
)

// Diagnostic represents a preprocessor error or warning
// with a span in the original source.
type Diagnostic struct {
	Severity slog.Level // Error, Warning, Info
	Message  string     // "unterminated comment"
	Span     Span       // where in the file it occurred
	Notes    []string   // optional additional help messages
}

// FromError converts err into a Diagnostic. Errors without a
// source location get an empty span at the start of the file.
func FromError(err error) Diagnostic {
	diag := Diagnostic{Severity: slog.LevelError, Message: err.Error()}
	var (
		sf *ErrSourceFormat
		lx *ErrLex
		dx *ErrDirective
		mt *ErrMacroTable
	)
	switch {
	case errors.As(err, &sf):
		diag.Message, diag.Span = "source file "+sf.Msg, sf.Span
	case errors.As(err, &lx):
		diag.Message, diag.Span = lx.Msg, lx.Span
		if len(lx.Text) != 0 {
			diag.Notes = append(diag.Notes, "found "+Quote(lx.Text))
		}
	case errors.As(err, &dx):
		diag.Message, diag.Span = dx.Msg, dx.Span
	case errors.As(err, &mt):
		diag.Message, diag.Span = fmt.Sprintf("macro %s: %v", mt.Key, mt.Err), mt.Span
	}
	return diag
}

// Locate returns the 1-based line and column of offset in src.
// Columns count bytes.
func Locate(src []byte, offset int) (line, column int) {
	offset = max(0, min(offset, len(src)))
	line = 1 + bytes.Count(src[:offset], []byte{'\n'})
	column = offset - (bytes.LastIndexByte(src[:offset], '\n') + 1) + 1
	return line, column
}

// Print renders each error in errs as a Diagnostic.
func Print(w io.Writer, err error, filename string, src []byte, colorize bool) {
	var list Errors
	if errors.As(err, &list) {
		for _, e := range list {
			PrintDiagnostic(w, FromError(e), filename, src, colorize)
		}
		return
	}
	PrintDiagnostic(w, FromError(err), filename, src, colorize)
}

// PrintDiagnostic writes the header, the source line containing the
// start of the span, and a caret under the start of the span.
func PrintDiagnostic(w io.Writer, diag Diagnostic, filename string, src []byte, colorize bool) {
	severity := color.New(color.FgRed, color.Bold)
	switch diag.Severity {
	case slog.LevelWarn:
		severity = color.New(color.FgYellow, color.Bold)
	case slog.LevelInfo, slog.LevelDebug:
		severity = color.New(color.FgCyan)
	}
	if colorize {
		severity.EnableColor()
	} else {
		severity.DisableColor()
	}

	// Header: file:line:column: error: message
	line, column := Locate(src, diag.Span.Start)
	_, _ = fmt.Fprintf(w, "%s:%d:%d: %s: %s\n",
		filename, line, column,
		severity.Sprint(strings.ToLower(diag.Severity.String())), diag.Message)

	if text := findLine(src, diag.Span.Start); len(text) != 0 {
		_, _ = fmt.Fprintf(w, "    %s\n", text)
		_, _ = fmt.Fprintf(w, "    %s^\n", strings.Repeat(" ", column-1))
	}

	for _, note := range diag.Notes {
		_, _ = fmt.Fprintf(w, "    note: %s\n", note)
	}
}

// findLine returns the line containing the start byte, without
// its new-line. If there is no line, returns an empty slice.
func findLine(src []byte, start int) []byte {
	if start >= len(src) {
		return []byte{}
	}
	lineStart := bytes.LastIndexByte(src[:start], '\n') + 1
	lineEnd := bytes.IndexByte(src[lineStart:], '\n')
	if lineEnd < 0 {
		return src[lineStart:]
	}
	return src[lineStart : lineStart+lineEnd]
}
