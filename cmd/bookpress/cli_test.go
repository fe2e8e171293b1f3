package main

// Notes:
// - run: we test dispatch, exit codes, and usage output for the paths that
//   need no project on disk. Build/cover/toc against a real config live in
//   the command tests.
// - runHelp: every command help must open with its usage line so the command
//   list and the help switch cannot drift apart silently.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

// testEnv returns an Environment writing to in-memory buffers.
func testEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    time.Now,
		Stdout: &stdout,
		Stderr: &stderr,
	}
	return env, &stdout, &stderr
}

// ---------------------------------------------------------------------------
// TestRun - Dispatch and exit codes
// ---------------------------------------------------------------------------

func TestRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		args         []string
		wantCode     int
		wantInStdout []string
		wantInStderr []string
	}{
		{
			name:         "no args shows usage and exits with ExitUsage",
			args:         []string{},
			wantCode:     ExitUsage,
			wantInStderr: []string{"Usage: bookpress"},
		},
		{
			name:         "version command exits 0",
			args:         []string{"version"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"bookpress"},
		},
		{
			name:         "help command exits 0",
			args:         []string{"help"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Usage: bookpress", "Commands:"},
		},
		{
			name:         "help build shows build help",
			args:         []string{"help", "build"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Usage: bookpress build"},
		},
		{
			name:         "unknown command exits with ExitUsage",
			args:         []string{"frobnicate"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"Unknown command: frobnicate"},
		},
		{
			name:         "completion without shell prints usage and exits 0",
			args:         []string{"completion"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Usage: bookpress completion"},
		},
		{
			name:         "completion bash emits script",
			args:         []string{"completion", "bash"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"_bookpress()", "complete -F _bookpress bookpress"},
		},
		{
			name:         "unsupported shell exits with ExitUsage",
			args:         []string{"completion", "tcsh"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"unsupported shell"},
		},
		{
			name:         "missing explicit config exits with ExitUsage",
			args:         []string{"build", "--config", "testdata/does-not-exist/book.yaml"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"config file not found"},
		},
		{
			name:     "bad flag exits with ExitUsage",
			args:     []string{"clean", "--frobnicate"},
			wantCode: ExitUsage,
		},
		{
			name:         "serve rejects unknown style",
			args:         []string{"serve", "--style", "no-such-style"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"unknown highlight style"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv()

			code := run(tt.args, env)

			if code != tt.wantCode {
				t.Errorf("run(%v) = %d, want %d\nstderr: %s", tt.args, code, tt.wantCode, stderr.String())
			}
			for _, want := range tt.wantInStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout should contain %q, got %q", want, stdout.String())
				}
			}
			for _, want := range tt.wantInStderr {
				if !strings.Contains(stderr.String(), want) {
					t.Errorf("stderr should contain %q, got %q", want, stderr.String())
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunHelp - Per-command help coverage
// ---------------------------------------------------------------------------

func TestRunHelp(t *testing.T) {
	t.Parallel()

	commands := []string{
		"build", "cover", "toc", "clean", "doctor",
		"preview", "serve", "stats", "completion", "version", "help",
	}

	for _, cmd := range commands {
		cmd := cmd
		t.Run(cmd, func(t *testing.T) {
			t.Parallel()

			env, stdout, _ := testEnv()

			runHelp([]string{cmd}, env)

			want := "Usage: bookpress " + cmd
			if !strings.Contains(stdout.String(), want) {
				t.Errorf("help %s should contain %q, got %q", cmd, want, stdout.String())
			}
		})
	}

	t.Run("unknown command goes to stderr", func(t *testing.T) {
		t.Parallel()

		env, _, stderr := testEnv()

		runHelp([]string{"frobnicate"}, env)

		if !strings.Contains(stderr.String(), "Unknown command: frobnicate") {
			t.Errorf("stderr should name the unknown command, got %q", stderr.String())
		}
	})

	t.Run("no args prints main usage", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := testEnv()

		runHelp(nil, env)

		if !strings.Contains(stdout.String(), "Commands:") {
			t.Errorf("main usage should list commands, got %q", stdout.String())
		}
	})
}
