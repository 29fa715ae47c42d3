package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/Veraticus/color/pkg/config"
	"github.com/Veraticus/color/pkg/logging"
)

const (
	cyan  = "\x1b[0;36m"
	red   = "\x1b[0;31m"
	green = "\x1b[0;32m"
	blue  = "\x1b[0;34m"
	reset = "\x1b[0m"
)

// clearEnv keeps the caller's environment from changing defaults
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"COLOR_MODE", "COLOR_MATCH_TIMEOUT", "COLOR_DEBUG", "COLOR_LOG_FORMAT", "NO_COLOR"} {
		t.Setenv(k, "")
	}
}

func runWith(t *testing.T, args []string, input string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(input), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestRun(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name  string
		args  []string
		input string
		want  string
	}{
		{
			name:  "default color",
			args:  []string{"world"},
			input: "Hello, world\n",
			want:  "Hello, " + cyan + "world" + reset + "\n",
		},
		{
			name:  "declared color",
			args:  []string{"-c", "green", "world"},
			input: "Hello, world\n",
			want:  "Hello, " + green + "world" + reset + "\n",
		},
		{
			name:  "foreground and background",
			args:  []string{"-c", "blue/green", "world"},
			input: "Hello, world\n",
			want:  "Hello, " + blue + "\x1b[42m" + "world" + reset + "\n",
		},
		{
			name:  "colors pair with patterns in order",
			args:  []string{"-c", "red/light-gray", "-c", "green", "Hello", "world"},
			input: "Hello, world\n",
			want:  red + "\x1b[47m" + "Hello" + reset + ", " + green + "world" + reset + "\n",
		},
		{
			name:  "last color repeats",
			args:  []string{"-c", "red", "Hello", "world"},
			input: "Hello, world\n",
			want:  red + "Hello" + reset + ", " + red + "world" + reset + "\n",
		},
		{
			name:  "unknown background is ignored",
			args:  []string{"-c", "blue/plaid", "world"},
			input: "Hello, world\n",
			want:  "Hello, " + blue + "world" + reset + "\n",
		},
		{
			name:  "adjacent matches in line mode",
			args:  []string{"a"},
			input: "aaa",
			want:  strings.Repeat(cyan+"a"+reset, 3),
		},
		{
			name:  "adjacent matches in char mode",
			args:  []string{"-m", "char", "a"},
			input: "aaa",
			want:  strings.Repeat(cyan+"a"+reset, 3),
		},
		{
			name:  "no match passes through",
			args:  []string{"xyz"},
			input: "Hello, world\n",
			want:  "Hello, world\n",
		},
		{
			name:  "pattern after -- may start with a dash",
			args:  []string{"-c", "red", "--", "-v"},
			input: "grep -v x\n",
			want:  "grep " + red + "-v" + reset + " x\n",
		},
		{
			name:  "empty alternative gives way in line mode",
			args:  []string{`\d*|error`},
			input: "ab error\n",
			want:  "ab " + cyan + "error" + reset + "\n",
		},
		{
			name:  "empty branch gives way in char mode",
			args:  []string{"-m", "char", "-c", "red", "x*", "-c", "green", "ab"},
			input: "ab error\n",
			want:  green + "ab" + reset + " error\n",
		},
		{
			name:  "never colors",
			args:  []string{"--when", "never", "world"},
			input: "Hello, world\n",
			want:  "Hello, world\n",
		},
		{
			name:  "auto without a terminal",
			args:  []string{"--when=auto", "world"},
			input: "Hello, world\n",
			want:  "Hello, world\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stderr, code := runWith(t, tt.args, tt.input)
			if code != 0 {
				t.Fatalf("exit code = %d, stderr = %q", code, stderr)
			}
			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "unknown foreground",
			args:    []string{"-c", "plaid", "world"},
			wantErr: `color "plaid" is not supported`,
		},
		{
			name:    "invalid mode",
			args:    []string{"-m", "word", "world"},
			wantErr: "word is not a valid mode",
		},
		{
			name:    "invalid pattern",
			args:    []string{"("},
			wantErr: "could not compile pattern",
		},
		{
			name:    "missing file",
			args:    []string{"-f", "/nonexistent/input.txt", "world"},
			wantErr: "could not open /nonexistent/input.txt",
		},
		{
			name:    "unknown flag",
			args:    []string{"--bogus", "world"},
			wantErr: "Use -h if you need help",
		},
		{
			name:    "exec without a command",
			args:    []string{"-x", "world"},
			wantErr: "--exec needs a command after --",
		},
		{
			name:    "invalid report format",
			args:    []string{"--report", "xml", "world"},
			wantErr: "not a valid report format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, code := runWith(t, tt.args, "Hello, world\n")
			if code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
			if !strings.Contains(stderr, tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.wantErr)
			}
		})
	}
}

func TestRunExecutionError(t *testing.T) {
	clearEnv(t)

	input := "fine\n" + strings.Repeat("a", 5000) + "!\n"
	for _, mode := range []string{"line", "char"} {
		t.Run(mode, func(t *testing.T) {
			_, stderr, code := runWith(t, []string{"-m", mode, "--timeout", "1ms", `(a+)+$`}, input)
			if code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
			if !strings.HasPrefix(stderr, "color: ") || !strings.Contains(stderr, "matching") {
				t.Errorf("stderr = %q, want a color: prefixed error", stderr)
			}
			if strings.Contains(stderr, "level=") {
				t.Errorf("stderr = %q, want no log record", stderr)
			}
		})
	}
}

func TestRunUsage(t *testing.T) {
	clearEnv(t)

	for _, args := range [][]string{{"-h"}, {"--help"}, {}, {"-c", "red"}} {
		got, _, code := runWith(t, args, "")
		if code != 0 {
			t.Errorf("%v: exit code = %d, want 0", args, code)
		}
		for _, want := range []string{"Usage:", "--mode", "light-purple", "Examples:"} {
			if !strings.Contains(got, want) {
				t.Errorf("%v: usage does not mention %q", args, want)
			}
		}
	}
}

func TestRunListColors(t *testing.T) {
	clearEnv(t)

	got, _, code := runWith(t, []string{"--list-colors"}, "")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	for _, want := range []string{"Foreground:", "Background:", "light-cyan", "brown"} {
		if !strings.Contains(got, want) {
			t.Errorf("list does not mention %q:\n%s", want, got)
		}
	}
}

func TestRunFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte("WARNING: disk\nok\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, stderr, code := runWith(t, []string{"-f", path, "-c", "red", "WARNING"}, "ignored\n")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %q", code, stderr)
	}
	want := red + "WARNING" + reset + ": disk\nok\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunModeFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("COLOR_MODE", "char")

	// Only char mode lets a match run across the newline
	got, _, code := runWith(t, []string{"a\nb"}, "a\nb\n")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	want := cyan + "a\nb" + reset + "\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunReport(t *testing.T) {
	clearEnv(t)

	got, stderr, code := runWith(t, []string{"--report", "yaml", "world"}, "Hello, world\nnothing\n")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %q", code, stderr)
	}
	for _, want := range []string{"line: 1", "start: 7", "end: 12", "source: world", "text: world"} {
		if !strings.Contains(got, want) {
			t.Errorf("report does not contain %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "line: 2") {
		t.Errorf("lines without matches should not be reported:\n%s", got)
	}
	if strings.Contains(got, reset) {
		t.Errorf("report should not carry color sequences:\n%s", got)
	}
}

func TestNewDependencies(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Patterns = []string{"foo", "bar"}
	cfg.Colors = []string{"green"}

	deps, err := NewDependencies(cfg, logging.Discard(), strings.NewReader(""), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deps.Patterns) != 2 {
		t.Errorf("expected 2 compiled patterns, got %d", len(deps.Patterns))
	}
	if deps.Combined != nil {
		t.Error("line mode should not build a combined pattern")
	}
	if len(deps.Colors) != 2 || deps.Colors.For(1).Foreground != green {
		t.Errorf("unexpected color assignment: %#v", deps.Colors)
	}
	if deps.ProcessManager != nil {
		t.Error("no command was given")
	}
	if !deps.Colorize {
		t.Error("default policy should always colorize")
	}

	cfg.Mode = config.ModeChar
	cfg.Command = []string{"true"}
	deps, err = NewDependencies(cfg, logging.Discard(), strings.NewReader(""), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deps.Combined == nil || deps.Patterns != nil {
		t.Error("char mode should build only the combined pattern")
	}
	if deps.ProcessManager == nil {
		t.Error("expected a process manager for the command")
	}
}

func TestRunCommand(t *testing.T) {
	if runtime.GOOS == "windows" || os.Getenv("CI") == "true" {
		t.Skip("PTY tests require Unix environment")
	}
	clearEnv(t)

	got, stderr, code := runWith(t, []string{"-x", "-c", "green", "ok", "--", "sh", "-c", "echo ok; exit 4"}, "")
	if code != 4 {
		t.Errorf("exit code = %d, want the command's 4 (stderr %q)", code, stderr)
	}
	if !strings.Contains(got, green+"ok"+reset) {
		t.Errorf("output = %q, want highlighted ok", got)
	}
}

func TestRunCommandNotFound(t *testing.T) {
	if runtime.GOOS == "windows" || os.Getenv("CI") == "true" {
		t.Skip("PTY tests require Unix environment")
	}
	clearEnv(t)

	_, stderr, code := runWith(t, []string{"--exec", "ok", "--", "/nonexistent/command"}, "")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "failed to start process") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestIsTerminal(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}
