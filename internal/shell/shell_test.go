package shell_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mvdan.cc/sh/v3/interp"

	"github.com/bookpress/bookpress/internal/shell"
)

// ---------------------------------------------------------------------------
// TestCheck - Syntax validation without execution
// ---------------------------------------------------------------------------

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		script  string
		wantErr error
	}{
		{
			name:   "valid script",
			script: "echo building",
		},
		{
			name:   "multiline script",
			script: "set -e\necho one\necho two\n",
		},
		{
			name:    "empty script",
			script:  "",
			wantErr: shell.ErrEmptyScript,
		},
		{
			name:    "whitespace only",
			script:  "   \n\t",
			wantErr: shell.ErrEmptyScript,
		},
		{
			name:    "syntax error",
			script:  "if true; then echo unclosed",
			wantErr: errors.New("parsing hook script"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := shell.Check(tt.script)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Check() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Check() expected error containing %q, got nil", tt.wantErr)
			}
			if errors.Is(err, tt.wantErr) {
				return
			}
			if !strings.Contains(err.Error(), tt.wantErr.Error()) {
				t.Errorf("error = %q, want containing %q", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRun - Script execution
// ---------------------------------------------------------------------------

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("captures stdout", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		err := shell.Run(context.Background(), "echo preparing build", shell.Options{
			Stdout: &stdout,
			Stderr: &stderr,
		})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if got := strings.TrimSpace(stdout.String()); got != "preparing build" {
			t.Errorf("stdout = %q, want %q", got, "preparing build")
		}
	})

	t.Run("runs in the configured directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		err := shell.Run(context.Background(), "echo generated > marker.txt", shell.Options{Dir: dir})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "marker.txt")); err != nil {
			t.Errorf("marker file not written in dir: %v", err)
		}
	})

	t.Run("sees extra environment variables", func(t *testing.T) {
		t.Parallel()

		var stdout bytes.Buffer
		err := shell.Run(context.Background(), "echo [$BOOKPRESS_VARIANT]", shell.Options{
			Env:    []string{"BOOKPRESS_VARIANT=chunked"},
			Stdout: &stdout,
		})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if got := strings.TrimSpace(stdout.String()); got != "[chunked]" {
			t.Errorf("stdout = %q, want %q", got, "[chunked]")
		}
	})

	t.Run("non-zero exit surfaces as ExitStatus", func(t *testing.T) {
		t.Parallel()

		err := shell.Run(context.Background(), "exit 3", shell.Options{})
		if err == nil {
			t.Fatal("Run() expected error, got nil")
		}
		var status interp.ExitStatus
		if !errors.As(err, &status) {
			t.Fatalf("error %v does not wrap interp.ExitStatus", err)
		}
		if int(status) != 3 {
			t.Errorf("exit status = %d, want 3", int(status))
		}
	})

	t.Run("empty script returns ErrEmptyScript", func(t *testing.T) {
		t.Parallel()

		if err := shell.Run(context.Background(), " ", shell.Options{}); !errors.Is(err, shell.ErrEmptyScript) {
			t.Errorf("error = %v, want ErrEmptyScript", err)
		}
	})

	t.Run("syntax error returns parse error", func(t *testing.T) {
		t.Parallel()

		err := shell.Run(context.Background(), "for do done", shell.Options{})
		if err == nil {
			t.Fatal("Run() expected error, got nil")
		}
		if !strings.Contains(err.Error(), "parsing hook script") {
			t.Errorf("error = %q, want parse error", err)
		}
	})
}
