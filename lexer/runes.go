// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package lexer

// Character classes are ASCII only; extended identifier
// characters are not supported.

func isWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\v', '\f':
		return true
	}
	return false
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isOctal(ch byte) bool {
	return '0' <= ch && ch <= '7'
}

func isHex(ch byte) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func isNondigit(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

func isIdentifierStart(ch byte) bool {
	return isNondigit(ch)
}

func isIdentifierContinue(ch byte) bool {
	return isNondigit(ch) || isDigit(ch)
}

// punctuators is checked in order, so longer spellings come first.
var punctuators = []string{
	"%:%:",
	"...", "<<=", ">>=",
	"->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||", "::",
	"*=", "/=", "%=", "+=", "-=", "&=", "^=", "|=",
	"##", "<:", ":>", "<%", "%>", "%:",
	"[", "]", "(", ")", "{", "}", ".", "&", "*", "+", "-", "~", "!", "/", "%", "<", ">", "^", "|",
	"?", ":", ";", "=", ",", "#",
}
