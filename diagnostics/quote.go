// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package diagnostics

import (
	"fmt"
	"strings"
)

// Quote returns b in double quotes. Printable ASCII is copied,
// the named escapes are used where they exist, and every other
// byte is written as \xHH.
func Quote(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) + 2)
	sb.WriteByte('"')
	for _, c := range b {
		switch c {
		case 0:
			sb.WriteString(`\0`)
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\a':
			sb.WriteString(`\a`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\v':
			sb.WriteString(`\v`)
		default:
			if ' ' <= c && c <= '~' {
				sb.WriteByte(c)
			} else {
				_, _ = fmt.Fprintf(&sb, `\x%02x`, c)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
