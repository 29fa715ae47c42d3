package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/color/pkg/config"
	"github.com/Veraticus/color/pkg/highlight"
	"github.com/Veraticus/color/pkg/palette"
	"github.com/Veraticus/color/pkg/pattern"
	"github.com/Veraticus/color/pkg/process"
	"github.com/Veraticus/color/pkg/report"
)

// Dependencies holds all the dependencies for the application
type Dependencies struct {
	Config   *config.Config
	Logger   *slog.Logger
	Colors   palette.Assignment
	Colorize bool

	// Exactly one of Patterns and Combined is set, depending on the mode.
	Patterns []*pattern.Pattern
	Combined *pattern.Combined

	// ProcessManager is set when a command is given after --.
	ProcessManager *process.Manager
}

// NewDependencies resolves colors and compiles patterns for cfg.
// stdin is forwarded to the command, if any; stdoutIsTerminal feeds the
// --when=auto decision.
func NewDependencies(cfg *config.Config, logger *slog.Logger, stdin io.Reader, stdoutIsTerminal bool) (*Dependencies, error) {
	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Colorize: cfg.Colorize(stdoutIsTerminal),
	}

	declared := make([]palette.Color, 0, len(cfg.Colors))
	for _, spec := range cfg.Colors {
		c, err := palette.Parse(spec)
		if err != nil {
			return nil, err
		}
		declared = append(declared, c)
	}
	deps.Colors = palette.Assign(declared, len(cfg.Patterns))

	opts := pattern.Options{Timeout: cfg.Timeout}
	var err error
	switch cfg.Mode {
	case config.ModeChar:
		deps.Combined, err = pattern.Combine(cfg.Patterns, opts)
	default:
		deps.Patterns, err = pattern.CompileAll(cfg.Patterns, opts)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("compiled patterns", "mode", cfg.Mode, "count", len(cfg.Patterns))

	if len(cfg.Command) > 0 {
		deps.ProcessManager = process.NewManager(stdin, logger)
	}

	return deps, nil
}

// Application represents the main application
type Application struct {
	deps *Dependencies
}

// NewApplication creates a new application with the given dependencies
func NewApplication(deps *Dependencies) *Application {
	return &Application{
		deps: deps,
	}
}

// Run highlights the configured input onto stdout and returns the exit code.
// With a command the input is the command's output and the exit code is the
// command's, unless highlighting failed.
func (a *Application) Run(stdin io.Reader, stdout, stderr io.Writer) int {
	cfg := a.deps.Config

	if len(cfg.Command) > 0 {
		pm := a.deps.ProcessManager
		err := pm.Run(cfg.Command[0], cfg.Command[1:], func(r io.Reader) error {
			return a.highlight(r, stdout)
		})
		if err != nil {
			fmt.Fprintf(stderr, "color: %v\n", err)
			return 1
		}
		return pm.ExitCode()
	}

	input := stdin
	if cfg.File != "" {
		f, err := os.Open(cfg.File)
		if err != nil {
			fmt.Fprintf(stderr, "color: could not open %s: %v\n", cfg.File, err)
			return 1
		}
		defer func() { _ = f.Close() }()
		input = f
	}

	if err := a.highlight(input, stdout); err != nil {
		fmt.Fprintf(stderr, "color: %v\n", err)
		return 1
	}
	return 0
}

// highlight copies r to w, colored or reported as configured
func (a *Application) highlight(r io.Reader, w io.Writer) (err error) {
	cfg := a.deps.Config

	var sw highlight.SpanWriter
	if cfg.Report != "" {
		rw := report.NewWriter(w)
		defer func() {
			if cerr := rw.Close(); err == nil {
				err = cerr
			}
		}()
		sw = rw
	} else if !a.deps.Colorize {
		_, err = io.Copy(w, r)
		return err
	}

	if cfg.Mode == config.ModeChar {
		var buf []byte
		if buf, err = io.ReadAll(r); err != nil {
			return err
		}
		s := highlight.NewCharScanner(a.deps.Combined, a.deps.Colors)
		s.SetLogger(a.deps.Logger)
		if sw != nil {
			s.SetSpanWriter(sw)
		}
		err = s.Scan(buf, w)
	} else {
		s := highlight.NewLineScanner(a.deps.Patterns, a.deps.Colors)
		s.SetLogger(a.deps.Logger)
		if sw != nil {
			s.SetSpanWriter(sw)
		}
		err = s.Scan(r, w)
	}
	return err
}
