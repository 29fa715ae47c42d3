package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/Veraticus/color/pkg/config"
	"github.com/Veraticus/color/pkg/logging"
	"github.com/Veraticus/color/pkg/palette"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// options are the flags that do not end up in config.Config
type options struct {
	help       bool
	listColors bool
	exec       bool
	flags      *flag.FlagSet
}

// parseArgs applies command line flags on top of cfg
func parseArgs(args []string, cfg *config.Config) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("color", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	opts.flags = fs

	var (
		mode = string(cfg.Mode)
		when = string(cfg.When)
	)

	fs.BoolVarP(&opts.help, "help", "h", false, "Print this message and exit.")
	fs.StringVarP(&cfg.File, "file", "f", cfg.File, "Read `filename` instead of stdin.")
	fs.StringArrayVarP(&cfg.Colors, "color", "c", cfg.Colors, "Color of the next pattern as `foreground[/background]`. Repeatable.")
	fs.StringVarP(&mode, "mode", "m", mode, "Scanning `mode`: line or char.")
	fs.StringVar(&when, "when", when, "When to color output: always, auto or never.")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Give up on a single match after this long (0 = never).")
	fs.StringVar(&cfg.Report, "report", cfg.Report, "Write the matched spans as `format` (yaml) instead of colored text.")
	fs.BoolVarP(&opts.exec, "exec", "x", false, "Run the command given after -- and color its output.")
	fs.BoolVar(&opts.listColors, "list-colors", false, "Print the supported colors and exit.")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Log debug information to stderr.")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	m, err := config.ParseMode(mode)
	if err != nil {
		return opts, err
	}
	cfg.Mode = m

	w, err := config.ParseWhen(when)
	if err != nil {
		return opts, err
	}
	cfg.When = w

	// Without --exec, -- only ends the options so patterns may start with -
	rest := fs.Args()
	if !opts.exec {
		cfg.Patterns = append([]string(nil), rest...)
		return opts, nil
	}

	dash := fs.ArgsLenAtDash()
	if dash < 0 || dash == len(rest) {
		return opts, fmt.Errorf("--exec needs a command after --")
	}
	cfg.Patterns = append([]string(nil), rest[:dash]...)
	cfg.Command = append([]string(nil), rest[dash:]...)

	return opts, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg := config.DefaultConfig()
	if err := config.LoadFromEnv(cfg); err != nil {
		fmt.Fprintf(stderr, "color: %v\n", err)
		return 1
	}

	opts, err := parseArgs(args, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "color: %v. Use -h if you need help.\n", err)
		return 1
	}

	if opts.help {
		printUsage(stdout, opts.flags)
		return 0
	}
	if opts.listColors {
		printPalette(stdout)
		return 0
	}
	if len(cfg.Patterns) == 0 {
		printUsage(stdout, opts.flags)
		return 0
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(stderr, "color: %v\n", err)
		return 1
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := logging.New(&logging.Config{Level: level, Format: cfg.LogFormat, Output: stderr})
	slog.SetDefault(logger)

	logger.Debug("starting",
		"mode", cfg.Mode,
		"patterns", cfg.Patterns,
		"colors", cfg.Colors,
		"file", cfg.File,
		"command", cfg.Command)

	deps, err := NewDependencies(cfg, logger, stdin, isTerminal(stdout))
	if err != nil {
		fmt.Fprintf(stderr, "color: %v\n", err)
		return 1
	}

	return NewApplication(deps).Run(stdin, stdout, stderr)
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "    color [-h] [-f <filename>] [-m <mode>] [-c <foreground>[/<background>]]... [--] <pattern>...")
	fmt.Fprintln(w, "    color -x [options] <pattern>... -- <command> [args...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Description:")
	fmt.Fprintln(w, "    color reads stdin and writes it back, coloring every match of the regular expressions <pattern>.")
	fmt.Fprintln(w, "    Patterns and colors are paired by order of declaration: the first color goes with the first pattern and so on.")
	fmt.Fprintln(w, "    If there are fewer colors than patterns, the last color repeats. With no color at all, cyan is used.")
	fmt.Fprintln(w, "    Overlapping and nested matches are never both colored: earlier patterns win, then earlier matches.")
	fmt.Fprintln(w, "    A lone -- ends the options, so patterns starting with - can follow it.")
	fmt.Fprintln(w, "    With -x, the arguments after -- are run as a command under a pseudo-terminal and its output is colored instead.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	if fs != nil {
		fmt.Fprint(w, fs.FlagUsages())
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Modes:")
	fmt.Fprintln(w, "    line  runs every pattern over each line on its own (default).")
	fmt.Fprintln(w, "    char  reads the whole input and walks it from left to right, trying all patterns at each position.")
	fmt.Fprintln(w)
	printPalette(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment Variables:")
	fmt.Fprintln(w, "  COLOR_MODE           Default mode (line or char)")
	fmt.Fprintln(w, "  COLOR_MATCH_TIMEOUT  Default --timeout")
	fmt.Fprintln(w, "  COLOR_DEBUG          Log debug information (true/false)")
	fmt.Fprintln(w, "  COLOR_LOG_FORMAT     Log format (text or json)")
	fmt.Fprintln(w, "  NO_COLOR             Disable color with --when=auto")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, `    echo "Hello, world" | color world`)
	fmt.Fprintln(w, `    echo "Hello, world" | color -c green world`)
	fmt.Fprintln(w, `    echo "Hello, world" | color -c blue/green world`)
	fmt.Fprintln(w, `    echo "Hello, world" | color -c red/light-gray -c green Hello world`)
	fmt.Fprintln(w, `    color -f /path/to/file -c red WARNING`)
	fmt.Fprintln(w, `    color -c red -- -v`)
	fmt.Fprintln(w, `    color -x -c red FAIL -c green ok -- go test ./...`)
	fmt.Fprintln(w, `    color -m char 'if(?= ?\()' -c cyan 'true|false' -c cyan '\(|\)' -c yellow 'then|else' -c green '".*"' -c red <<EOF`)
	fmt.Fprintln(w, `    if (true) then "if (" else false`)
	fmt.Fprintln(w, `    EOF`)
}

func printPalette(w io.Writer) {
	fmt.Fprintln(w, "Supported colors:")
	fmt.Fprintln(w, "    Foreground:")
	printNames(w, palette.Foregrounds())
	fmt.Fprintln(w, "    Background:")
	printNames(w, palette.Backgrounds())
}

func printNames(w io.Writer, names []string) {
	for i := 0; i < len(names); i += 4 {
		end := min(i+4, len(names))
		row := make([]string, 0, 4)
		for _, n := range names[i:end] {
			row = append(row, fmt.Sprintf("%-14s", n))
		}
		fmt.Fprintf(w, "        %s\n", strings.TrimRight(strings.Join(row, ""), " "))
	}
}
