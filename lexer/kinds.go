// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package lexer

// Kind implements enums for preprocessing tokens
type Kind int

const (
	HeaderName Kind = iota
	Identifier
	PpNumber
	CharacterConstant
	StringLiteral
	Punctuator
	// TODO: universal character names and stray non-white-space
	// characters that cannot be one of the above are lex errors for now.
	Newline
	Whitespace // run of white-space or a comment, not including end of line
)

var kindNames = [...]string{
	HeaderName:        "HeaderName",
	Identifier:        "Identifier",
	PpNumber:          "PpNumber",
	CharacterConstant: "CharacterConstant",
	StringLiteral:     "StringLiteral",
	Punctuator:        "Punctuator",
	Newline:           "Newline",
	Whitespace:        "Whitespace",
}

func (k Kind) String() string {
	if 0 <= k && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// Short returns the six character label used by token dumps.
func (k Kind) Short() string {
	switch k {
	case HeaderName:
		return "header"
	case Identifier:
		return "ident "
	case PpNumber:
		return "number"
	case CharacterConstant:
		return "char  "
	case StringLiteral:
		return "string"
	case Punctuator:
		return "punct "
	case Newline:
		return "nl    "
	case Whitespace:
		return "ws    "
	}
	return "?     "
}
