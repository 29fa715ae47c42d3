// Package report writes accepted match spans as YAML documents.
package report

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/color/pkg/types"
)

// Entry is one YAML document: the spans of one line or buffer.
type Entry struct {
	Line  int    `yaml:"line"`
	Spans []Span `yaml:"spans"`
}

// Span is the report form of an accepted match.
type Span struct {
	Start   int    `yaml:"start"`
	End     int    `yaml:"end"`
	Pattern int    `yaml:"pattern"`
	Source  string `yaml:"source"`
	Text    string `yaml:"text"`
}

// Writer encodes span reports to an underlying writer.
type Writer struct {
	enc *yaml.Encoder
}

// NewWriter creates a report writer on w.
func NewWriter(w io.Writer) *Writer {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &Writer{enc: enc}
}

// WriteSpans writes one document for the spans found in text.
func (w *Writer) WriteSpans(unit int, text []byte, spans []types.Span) error {
	entry := Entry{Line: unit, Spans: make([]Span, 0, len(spans))}
	for _, s := range spans {
		entry.Spans = append(entry.Spans, Span{
			Start:   s.Start,
			End:     s.End,
			Pattern: s.Pattern,
			Source:  s.Source,
			Text:    string(text[s.Start:s.End]),
		})
	}
	if err := w.enc.Encode(entry); err != nil {
		return fmt.Errorf("failed to encode spans: %w", err)
	}
	return nil
}

// Close flushes the encoder.
func (w *Writer) Close() error {
	return w.enc.Close()
}
