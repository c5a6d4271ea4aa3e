// Package diag renders span-annotated diagnostics for shader source text.
//
// A diagnostic is a message plus one or more labeled byte ranges into the
// source. Render produces the same layout codespan-style reporters use:
//
//	error: Identifier starts with a reserved prefix: '__bad'
//	  ┌─ wgsl:1:5
//	  │
//	1 │ var __bad;
//	  │     ^^^^^ invalid identifier
//
// The output is compared verbatim by tests and tools, so the format must
// stay byte-for-byte stable.
package diag

import (
	"strings"
	"unicode/utf8"
)

// Span is a half-open byte range [Start, End) into one source text.
type Span struct {
	Start int
	End   int
}

// IsUnknown reports whether the span was never set.
func (s Span) IsUnknown() bool {
	return s.Start == 0 && s.End == 0
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// Join returns the smallest span covering both s and other.
func (s Span) Join(other Span) Span {
	if s.IsUnknown() {
		return other
	}
	if other.IsUnknown() {
		return s
	}
	out := s
	if other.Start < out.Start {
		out.Start = other.Start
	}
	if other.End > out.End {
		out.End = other.End
	}
	return out
}

// Until returns the span from the start of s to the end of other.
func (s Span) Until(other Span) Span {
	return Span{Start: s.Start, End: other.End}
}

// Text returns the source text covered by the span, clamped to the source.
func (s Span) Text(source string) string {
	start, end := clamp(s.Start, len(source)), clamp(s.End, len(source))
	if end < start {
		return ""
	}
	return source[start:end]
}

// Location returns the 1-based line and column of the span start.
// Columns count characters, not bytes.
func (s Span) Location(source string) (line, column int) {
	start := clamp(s.Start, len(source))
	prefix := source[:start]
	line = strings.Count(prefix, "\n") + 1
	lineStart := strings.LastIndexByte(prefix, '\n') + 1
	column = utf8.RuneCountInString(prefix[lineStart:]) + 1
	return line, column
}

// Label attaches a message to a span.
type Label struct {
	Span    Span
	Message string
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v > n {
		return n
	}
	return v
}
