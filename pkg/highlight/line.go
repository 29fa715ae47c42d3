package highlight

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/color/pkg/palette"
	"github.com/Veraticus/color/pkg/pattern"
	"github.com/Veraticus/color/pkg/types"
)

// SpanWriter receives the accepted spans of one unit of text: a line in
// line mode, the whole buffer in char mode. Units are numbered from 1.
type SpanWriter interface {
	WriteSpans(unit int, text []byte, spans []types.Span) error
}

// LineScanner highlights its input one line at a time. Every pattern is
// matched against the whole line, overlaps are resolved in declaration
// order, and the line is written with the color sequences interleaved.
type LineScanner struct {
	patterns []*pattern.Pattern
	colors   palette.Assignment
	spans    SpanWriter
	logger   *slog.Logger
	buf      []byte
}

// NewLineScanner creates a line scanner.
func NewLineScanner(patterns []*pattern.Pattern, colors palette.Assignment) *LineScanner {
	return &LineScanner{
		patterns: patterns,
		colors:   colors,
		logger:   slog.Default(),
	}
}

// SetSpanWriter makes the scanner report accepted spans to w instead of
// writing colored text.
func (s *LineScanner) SetSpanWriter(w SpanWriter) {
	s.spans = w
}

// SetLogger sets the logger used for debug output.
func (s *LineScanner) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Scan reads lines from r until EOF and writes them to w. Lines keep their
// newline; a last line without one is handled the same way.
func (s *LineScanner) Scan(r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	for n := 1; ; n++ {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			if lerr := s.scanLine(n, line, w); lerr != nil {
				return fmt.Errorf("line %d: %w", n, lerr)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading line %d: %w", n, err)
		}
	}
}

// Candidates returns every match of every pattern in line: all of the first
// pattern's matches left to right, then the second pattern's, and so on.
func (s *LineScanner) Candidates(line []byte) ([]types.Span, error) {
	text := pattern.NewText(line)

	var candidates []types.Span
	for _, p := range s.patterns {
		spans, err := p.All(text)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, spans...)
	}
	return candidates, nil
}

func (s *LineScanner) scanLine(n int, line []byte, w io.Writer) error {
	candidates, err := s.Candidates(line)
	if err != nil {
		return err
	}

	if len(candidates) == 0 {
		if s.spans != nil {
			return nil
		}
		_, err := w.Write(line)
		return err
	}

	ann, accepted := Resolve(len(line), candidates, s.colors)
	s.logger.Debug("resolved line",
		"line", n,
		"candidates", len(candidates),
		"accepted", len(accepted))

	if s.spans != nil {
		return s.spans.WriteSpans(n, line, accepted)
	}

	s.buf = RenderLine(s.buf[:0], line, ann)
	_, err = w.Write(s.buf)
	return err
}

// RenderLine appends line to dst with the annotations interleaved: before
// byte i, the reset ending a span at i, then the color starting one at i.
func RenderLine(dst, line []byte, ann *Annotations) []byte {
	for i, c := range line {
		dst = append(dst, ann.End[i]...)
		dst = append(dst, ann.Start[i]...)
		dst = append(dst, c)
	}
	dst = append(dst, ann.End[len(line)]...)
	dst = append(dst, ann.Start[len(line)]...)
	return dst
}

// RunLineMode highlights lines into output and returns the process exit
// code: 0 on success, 1 if matching, reading or writing failed, after
// printing the error on stderr as "color: <error>".
func RunLineMode(patterns []*pattern.Pattern, colors palette.Assignment, lines io.Reader, output io.Writer) int {
	if err := NewLineScanner(patterns, colors).Scan(lines, output); err != nil {
		fmt.Fprintf(os.Stderr, "color: %v\n", err)
		return 1
	}
	return 0
}
