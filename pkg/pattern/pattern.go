// Package pattern compiles highlight patterns and finds their matches.
//
// Matching runs on raw bytes: every input byte is presented to the regex
// engine as one code unit, so match offsets are byte offsets whatever the
// encoding of the input, and invalid UTF-8 is matched like any other byte.
package pattern

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/Veraticus/color/pkg/types"
)

// Options control how patterns are compiled.
type Options struct {
	// Timeout bounds a single match attempt. Zero means no limit.
	Timeout time.Duration
}

// Text is a byte slice widened to one rune per byte.
type Text []rune

// NewText returns the engine view of b.
func NewText(b []byte) Text {
	t := make(Text, len(b))
	for i, c := range b {
		t[i] = rune(c)
	}
	return t
}

// widen maps every byte of s to the rune of the same value, so that a
// pattern written in UTF-8 matches the same byte sequence in Text.
func widen(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		b.WriteRune(rune(s[i]))
	}
	return b.String()
}

func compile(expr string, opts Options) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(widen(expr), regexp2.None)
	if err != nil {
		return nil, err
	}
	if opts.Timeout > 0 {
		re.MatchTimeout = opts.Timeout
	}
	return re, nil
}

// notEmpty anchors expr at the attempt position and fails any match that
// ends where it started, so the engine backtracks into the remaining
// alternatives for a non-empty one. regexp2's \G is the position the
// search was started at, also inside a lookahead.
func notEmpty(expr string) string {
	return `\G(?:` + expr + `)(?!\G)`
}

// Pattern is a compiled highlight pattern.
type Pattern struct {
	Source string
	Index  int
	re     *regexp2.Regexp

	// nonEmpty is re anchored and restricted to non-empty matches.
	nonEmpty *regexp2.Regexp
}

// Compile compiles source as the pattern at position index.
func Compile(source string, index int, opts Options) (*Pattern, error) {
	re, err := compile(source, opts)
	if err != nil {
		return nil, &CompileError{Source: source, Err: err}
	}
	nonEmpty, err := compile(notEmpty(source), opts)
	if err != nil {
		return nil, &CompileError{Source: source, Err: err}
	}
	return &Pattern{Source: source, Index: index, re: re, nonEmpty: nonEmpty}, nil
}

// CompileAll compiles sources in declaration order.
func CompileAll(sources []string, opts Options) ([]*Pattern, error) {
	patterns := make([]*Pattern, 0, len(sources))
	for i, src := range sources {
		p, err := Compile(src, i, opts)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// Next returns the first non-empty match of p at or after start.
// Where the leftmost match is empty, the same position is tried again with
// empty results ruled out, as PCRE's NOTEMPTY does; only if that fails
// does the search move one byte on.
func (p *Pattern) Next(text Text, start int) (types.Span, bool, error) {
	for start < len(text) {
		m, err := p.re.FindRunesMatchStartingAt(text, start)
		if err != nil {
			return types.Span{}, false, &ExecutionError{Source: p.Source, Offset: start, Err: err}
		}
		if m == nil {
			return types.Span{}, false, nil
		}
		if m.Length == 0 {
			at := m.Index
			if m, err = p.nonEmpty.FindRunesMatchStartingAt(text, at); err != nil {
				return types.Span{}, false, &ExecutionError{Source: p.Source, Offset: at, Err: err}
			}
			if m == nil || m.Index != at {
				start = at + 1
				continue
			}
		}
		return p.span(m.Index, m.Index+m.Length), true, nil
	}
	return types.Span{}, false, nil
}

func (p *Pattern) span(start, end int) types.Span {
	return types.Span{
		Start:   start,
		End:     end,
		Pattern: p.Index,
		Source:  p.Source,
	}
}

// All returns every match of p in text, left to right, without overlaps.
func (p *Pattern) All(text Text) ([]types.Span, error) {
	var spans []types.Span
	pos := 0
	for {
		span, ok, err := p.Next(text, pos)
		if err != nil {
			return spans, err
		}
		if !ok {
			return spans, nil
		}
		spans = append(spans, span)
		pos = span.End
	}
}
