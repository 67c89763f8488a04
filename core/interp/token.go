package interp

import "strings"

// Operator tokens recognized by the scanner. Operators must appear as exact
// whitespace-delimited tokens; "a>b" is a single plain token.
const (
	opInput        = "<"
	opOutput       = ">"
	opOutputAppend = ">>"
	opPipe         = "|"
)

// Defaults for the per-line limits.
const (
	DefaultMaxArgs       = 10
	DefaultMaxLineLength = 4096
)

// Limits bound a single line of input.
type Limits struct {
	// MaxArgs is the maximum number of tokens in one stage's argument
	// vector, counting the program name.
	MaxArgs int

	// MaxLineLength is the longest accepted line, in bytes.
	MaxLineLength int
}

func (l Limits) withDefaults() Limits {
	if l.MaxArgs <= 0 {
		l.MaxArgs = DefaultMaxArgs
	}
	if l.MaxLineLength <= 0 {
		l.MaxLineLength = DefaultMaxLineLength
	}
	return l
}

// tokenize splits a line into whitespace-delimited tokens. Quoting and
// escaping are not part of the grammar.
func tokenize(line string) []string {
	return strings.Fields(line)
}
