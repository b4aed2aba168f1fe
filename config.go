// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package cobold

import (
	"fmt"
	"log/slog"
)

type Config struct {
	logger        *slog.Logger
	predefines    []predefine
	maxErrors     int
	tableCapacity int
}

// predefine is a -D or -U from the command line.
// They are applied in order before the first group.
type predefine struct {
	name   string
	body   string
	define bool
}

type Option func(c *Config) error

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) error {
		c.logger = logger
		return nil
	}
}

// WithDefine predefines an object-like macro. An empty body
// defines the macro as 1.
func WithDefine(name, body string) Option {
	return func(c *Config) error {
		if !isIdentifier(name) {
			return fmt.Errorf("define: invalid macro name %q", name)
		}
		if body == "" {
			body = "1"
		}
		c.predefines = append(c.predefines, predefine{name: name, body: body, define: true})
		return nil
	}
}

func WithUndefine(name string) Option {
	return func(c *Config) error {
		if !isIdentifier(name) {
			return fmt.Errorf("undefine: invalid macro name %q", name)
		}
		c.predefines = append(c.predefines, predefine{name: name})
		return nil
	}
}

// WithMaxErrors sets how many directive errors are collected
// before giving up. 1 halts on the first error, 0 collects all.
func WithMaxErrors(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return fmt.Errorf("max errors: %d < 0", n)
		}
		c.maxErrors = n
		return nil
	}
}

func WithTableCapacity(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return fmt.Errorf("table capacity: %d < 0", n)
		}
		c.tableCapacity = n
		return nil
	}
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, ch := range []byte(name) {
		switch {
		case ch == '_', 'a' <= ch && ch <= 'z', 'A' <= ch && ch <= 'Z':
		case i > 0 && '0' <= ch && ch <= '9':
		default:
			return false
		}
	}
	return true
}
