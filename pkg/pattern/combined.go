package pattern

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/Veraticus/color/pkg/types"
)

// Combined is the alternation of all declared patterns, in declaration
// order, anchored at the position where a match is attempted.
type Combined struct {
	Sources  []string
	expr     string
	re       *regexp2.Regexp
	branches []string
}

func branchName(i int) string {
	return fmt.Sprintf("branch%d", i)
}

// Combine builds the alternation of sources. Each source is compiled on its
// own first so a bad pattern is reported by its own text.
func Combine(sources []string, opts Options) (*Combined, error) {
	if _, err := CompileAll(sources, opts); err != nil {
		return nil, err
	}

	branches := make([]string, len(sources))
	alts := make([]string, len(sources))
	for i, src := range sources {
		branches[i] = branchName(i)
		alts[i] = fmt.Sprintf("(?<%s>%s)", branches[i], src)
	}
	expr := strings.Join(alts, "|")

	re, err := compile(notEmpty(expr), opts)
	if err != nil {
		return nil, &CompileError{Source: expr, Err: err}
	}
	return &Combined{Sources: sources, expr: expr, re: re, branches: branches}, nil
}

// MatchAt attempts a non-empty match starting exactly at pos. An
// alternative that could only match empty there gives way to the next one.
// The span's Pattern is the index of the alternative that matched.
func (c *Combined) MatchAt(text Text, pos int) (types.Span, bool, error) {
	if pos >= len(text) {
		return types.Span{}, false, nil
	}

	m, err := c.re.FindRunesMatchStartingAt(text, pos)
	if err != nil {
		return types.Span{}, false, &ExecutionError{Source: c.expr, Offset: pos, Err: err}
	}
	if m == nil || m.Index != pos || m.Length == 0 {
		return types.Span{}, false, nil
	}

	branch := c.branch(m, pos)
	if branch < 0 {
		return types.Span{}, false, nil
	}
	return types.Span{
		Start:   pos,
		End:     pos + m.Length,
		Pattern: branch,
		Source:  c.Sources[branch],
	}, true, nil
}

// branch returns the alternative whose group spans all of m.
func (c *Combined) branch(m *regexp2.Match, pos int) int {
	for i, name := range c.branches {
		g := m.GroupByName(name)
		if g == nil || len(g.Captures) == 0 {
			continue
		}
		if g.Index == pos && g.Length == m.Length {
			return i
		}
	}
	return -1
}
