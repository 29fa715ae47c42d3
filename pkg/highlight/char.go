package highlight

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/color/pkg/palette"
	"github.com/Veraticus/color/pkg/pattern"
	"github.com/Veraticus/color/pkg/types"
)

// CharScanner highlights a whole buffer in a single pass. A cursor walks the
// buffer; where the combined pattern matches at the cursor the match is
// written in its color and the cursor jumps past it, otherwise one byte is
// written as is.
type CharScanner struct {
	combined *pattern.Combined
	colors   palette.Assignment
	spans    SpanWriter
	logger   *slog.Logger
}

// NewCharScanner creates a char scanner.
func NewCharScanner(combined *pattern.Combined, colors palette.Assignment) *CharScanner {
	return &CharScanner{
		combined: combined,
		colors:   colors,
		logger:   slog.Default(),
	}
}

// SetSpanWriter makes the scanner report spans to w instead of writing
// colored text.
func (s *CharScanner) SetSpanWriter(w SpanWriter) {
	s.spans = w
}

// SetLogger sets the logger used for debug output.
func (s *CharScanner) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// walk drives the cursor over buf, calling plain for every uncolored byte
// and match for every span.
func (s *CharScanner) walk(buf []byte, plain func(c byte) error, match func(span types.Span) error) error {
	text := pattern.NewText(buf)
	for c := 0; c < len(buf); {
		span, ok, err := s.combined.MatchAt(text, c)
		if err != nil {
			return err
		}
		if !ok {
			if err := plain(buf[c]); err != nil {
				return err
			}
			c++
			continue
		}
		if err := match(span); err != nil {
			return err
		}
		c = span.End
	}
	return nil
}

// Spans returns the spans the cursor stops on, left to right.
func (s *CharScanner) Spans(buf []byte) ([]types.Span, error) {
	var spans []types.Span
	err := s.walk(buf,
		func(byte) error { return nil },
		func(span types.Span) error {
			spans = append(spans, span)
			return nil
		})
	return spans, err
}

// Scan highlights buf into w. Output written before a matching failure is
// flushed and left in place.
func (s *CharScanner) Scan(buf []byte, w io.Writer) error {
	if s.spans != nil {
		spans, err := s.Spans(buf)
		if err != nil {
			return err
		}
		s.logger.Debug("scanned buffer", "bytes", len(buf), "spans", len(spans))
		if len(spans) == 0 {
			return nil
		}
		return s.spans.WriteSpans(1, buf, spans)
	}

	bw := bufio.NewWriter(w)
	count := 0
	err := s.walk(buf,
		func(c byte) error {
			return bw.WriteByte(c)
		},
		func(span types.Span) error {
			count++
			color := s.colors.For(span.Pattern)
			if _, err := bw.WriteString(color.On()); err != nil {
				return err
			}
			if _, err := bw.Write(buf[span.Start:span.End]); err != nil {
				return err
			}
			_, err := bw.WriteString(palette.Reset)
			return err
		})
	if ferr := bw.Flush(); err == nil {
		err = ferr
	}
	s.logger.Debug("scanned buffer", "bytes", len(buf), "spans", count)
	return err
}

// RunCharMode highlights buffer into output and returns the process exit
// code: 0 on success, 1 if matching or writing failed, after
// printing the error on stderr as "color: <error>".
func RunCharMode(combined *pattern.Combined, colors palette.Assignment, buffer []byte, output io.Writer) int {
	if err := NewCharScanner(combined, colors).Scan(buffer, output); err != nil {
		fmt.Fprintf(os.Stderr, "color: %v\n", err)
		return 1
	}
	return 0
}
