// Package palette maps color names to ANSI escape sequences and assigns
// colors to patterns by declaration order.
package palette

import (
	"fmt"
	"regexp"
	"strings"
)

// Reset turns every attribute off.
const Reset = "\x1b[0m"

// DefaultForeground is used when no color was declared at all.
const DefaultForeground = "cyan"

type entry struct {
	name string
	code string
}

var foregrounds = []entry{
	{"black", "\x1b[0;30m"},
	{"red", "\x1b[0;31m"},
	{"green", "\x1b[0;32m"},
	{"brown", "\x1b[0;33m"},
	{"blue", "\x1b[0;34m"},
	{"purple", "\x1b[0;35m"},
	{"cyan", "\x1b[0;36m"},
	{"light-gray", "\x1b[0;37m"},
	{"dark-gray", "\x1b[1;30m"},
	{"light-red", "\x1b[1;31m"},
	{"light-green", "\x1b[1;32m"},
	{"yellow", "\x1b[1;33m"},
	{"light-blue", "\x1b[1;34m"},
	{"light-purple", "\x1b[1;35m"},
	{"light-cyan", "\x1b[1;36m"},
	{"white", "\x1b[1;37m"},
}

var backgrounds = []entry{
	{"black", "\x1b[40m"},
	{"red", "\x1b[41m"},
	{"green", "\x1b[42m"},
	{"brown", "\x1b[43m"},
	{"blue", "\x1b[44m"},
	{"purple", "\x1b[45m"},
	{"cyan", "\x1b[46m"},
	{"light-gray", "\x1b[47m"},
}

var (
	foregroundCodes = index(foregrounds)
	backgroundCodes = index(backgrounds)
)

func index(entries []entry) map[string]string {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.name] = e.code
	}
	return m
}

// UnknownColorError is returned when a foreground color name is not in the palette.
type UnknownColorError struct {
	Name string
}

func (e *UnknownColorError) Error() string {
	return fmt.Sprintf("color %q is not supported", e.Name)
}

// Color is a resolved foreground and optional background escape sequence.
type Color struct {
	Foreground string
	Background string // empty means no background
}

// On returns the sequence that switches the color on.
func (c Color) On() string {
	return c.Foreground + c.Background
}

// Resolve looks up a foreground and background name pair.
// An unknown foreground is an error; an unknown or empty background
// resolves to no background.
func Resolve(fg, bg string) (Color, error) {
	code, ok := foregroundCodes[fg]
	if !ok {
		return Color{}, &UnknownColorError{Name: fg}
	}
	return Color{Foreground: code, Background: backgroundCodes[bg]}, nil
}

// Parse resolves the command line form "<foreground>[/<background>]".
func Parse(spec string) (Color, error) {
	fg, bg, _ := strings.Cut(spec, "/")
	return Resolve(fg, bg)
}

// Default returns cyan on no background.
func Default() Color {
	c, _ := Resolve(DefaultForeground, "")
	return c
}

// Foregrounds returns the supported foreground names in palette order.
func Foregrounds() []string {
	return names(foregrounds)
}

// Backgrounds returns the supported background names in palette order.
func Backgrounds() []string {
	return names(backgrounds)
}

func names(entries []entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.name
	}
	return out
}

// Assignment maps a pattern index to its color.
type Assignment []Color

// Assign builds the color assignment for the given number of patterns.
// Patterns past the last declared color get the last declared color.
// With no declared colors every pattern gets Default.
func Assign(declared []Color, patterns int) Assignment {
	if len(declared) == 0 {
		declared = []Color{Default()}
	}

	a := make(Assignment, patterns)
	for i := range a {
		if i < len(declared) {
			a[i] = declared[i]
		} else {
			a[i] = declared[len(declared)-1]
		}
	}
	return a
}

// For returns the color of pattern i.
func (a Assignment) For(i int) Color {
	if i < len(a) {
		return a[i]
	}
	if len(a) == 0 {
		return Default()
	}
	return a[len(a)-1]
}

var sgrPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Strip removes SGR color sequences from b.
func Strip(b []byte) []byte {
	return sgrPattern.ReplaceAll(b, nil)
}
