// Package highlight finds pattern matches in text, resolves overlaps
// between them and renders the survivors wrapped in color sequences.
package highlight

import (
	"github.com/Veraticus/color/pkg/palette"
	"github.com/Veraticus/color/pkg/types"
)

// Annotations hold the escape sequences to emit before each byte offset of
// a line. Both slices have len(line)+1 entries so a span ending at the end
// of the line has a slot.
type Annotations struct {
	Start []string
	End   []string
}

// NewAnnotations returns empty annotations for a line of n bytes.
func NewAnnotations(n int) *Annotations {
	return &Annotations{
		Start: make([]string, n+1),
		End:   make([]string, n+1),
	}
}

// Resolver accepts candidate spans in scan order and keeps those that do
// not intersect a span accepted before them.
type Resolver struct {
	colors   palette.Assignment
	covered  []bool
	ann      *Annotations
	accepted []types.Span
}

// NewResolver returns a resolver for a line of length bytes.
func NewResolver(length int, colors palette.Assignment) *Resolver {
	return &Resolver{
		colors:  colors,
		covered: make([]bool, length),
		ann:     NewAnnotations(length),
	}
}

// Offer accepts span unless any of its bytes is already covered.
// Rejected spans are dropped whole.
func (r *Resolver) Offer(span types.Span) bool {
	if span.Len() <= 0 || span.Start < 0 || span.End > len(r.covered) {
		return false
	}
	for i := span.Start; i < span.End; i++ {
		if r.covered[i] {
			return false
		}
	}

	for i := span.Start; i < span.End; i++ {
		r.covered[i] = true
	}
	r.ann.Start[span.Start] = r.colors.For(span.Pattern).On()
	r.ann.End[span.End] = palette.Reset
	r.accepted = append(r.accepted, span)
	return true
}

// Accepted returns the accepted spans in acceptance order.
func (r *Resolver) Accepted() []types.Span {
	return r.accepted
}

// Annotations returns the escape sequences of the accepted spans.
func (r *Resolver) Annotations() *Annotations {
	return r.ann
}

// Resolve runs candidates through a fresh resolver.
func Resolve(length int, candidates []types.Span, colors palette.Assignment) (*Annotations, []types.Span) {
	r := NewResolver(length, colors)
	for _, span := range candidates {
		r.Offer(span)
	}
	return r.Annotations(), r.Accepted()
}
