package main

import (
	"io"
	"os"

	"golang.org/x/term"
)

// isTerminal returns true if w is a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
