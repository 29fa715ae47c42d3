// Package types contains shared data structures used across the application.
package types

// Span is a byte range [Start, End) where a pattern matched.
type Span struct {
	Start   int
	End     int
	Pattern int    // index of the pattern in declaration order
	Source  string // pattern source text
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}
