package main

// Notes:
// - GenerateCompletion: we test that shell scripts are generated with expected
//   content markers. We do not test that the scripts actually work in the
//   target shell (that would require integration tests with actual shells).
// - getCommands: we test the command definitions are complete and correct,
//   including that they stay in sync with the real flag sets.
// These are acceptable gaps: we test observable behavior, not runtime shell behavior.

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestGenerateCompletion_SupportedShells - Shell completion script generation
// ---------------------------------------------------------------------------

func TestGenerateCompletion_SupportedShells(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		shell        Shell
		wantContains []string
	}{
		{
			name:  "bash generates valid script",
			shell: ShellBash,
			wantContains: []string{
				"_bookpress()",
				"complete -F _bookpress bookpress",
				"compgen",
				"build",
				"--chunk-size",
				"--engine",
			},
		},
		{
			name:  "zsh generates valid script",
			shell: ShellZsh,
			wantContains: []string{
				"_bookpress()",
				"_arguments",
				"_describe",
				"compdef _bookpress bookpress",
				"build",
				"--engine",
			},
		},
		{
			name:  "fish generates valid script",
			shell: ShellFish,
			wantContains: []string{
				"complete -c bookpress",
				"__fish_use_subcommand",
				"__fish_seen_subcommand_from",
				"build",
				"-l engine", // fish uses -l for long flags
			},
		},
		{
			name:  "powershell generates valid script",
			shell: ShellPowerShell,
			wantContains: []string{
				"Register-ArgumentCompleter",
				"-CommandName bookpress",
				"CompletionResult",
				"build",
				"--engine",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			err := GenerateCompletion(&buf, tt.shell)

			if err != nil {
				t.Fatalf("GenerateCompletion(%q) returned error: %v", tt.shell, err)
			}

			output := buf.String()
			if output == "" {
				t.Fatalf("GenerateCompletion(%q) produced empty output", tt.shell)
			}

			for _, want := range tt.wantContains {
				if !strings.Contains(output, want) {
					t.Errorf("output missing expected content %q", want)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestGenerateCompletion_AllCommandsPresent - Script completeness per shell
// ---------------------------------------------------------------------------

func TestGenerateCompletion_AllCommandsPresent(t *testing.T) {
	t.Parallel()

	for _, shell := range []Shell{ShellBash, ShellZsh, ShellFish, ShellPowerShell} {
		shell := shell
		t.Run(string(shell), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, shell); err != nil {
				t.Fatalf("GenerateCompletion failed: %v", err)
			}

			output := buf.String()
			for _, cmd := range getCommands() {
				if !strings.Contains(output, cmd.Name) {
					t.Errorf("%s completion missing command %q", shell, cmd.Name)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestGenerateCompletion_EnumValues - Enum value completion
// ---------------------------------------------------------------------------

func TestGenerateCompletion_EnumValues(t *testing.T) {
	t.Parallel()

	enumValues := []string{"docker", "podman", "local", "pdftk", "cpdf"}

	for _, shell := range []Shell{ShellBash, ShellZsh, ShellFish, ShellPowerShell} {
		shell := shell
		t.Run(string(shell), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := GenerateCompletion(&buf, shell); err != nil {
				t.Fatalf("GenerateCompletion failed: %v", err)
			}

			output := buf.String()
			for _, v := range enumValues {
				if !strings.Contains(output, v) {
					t.Errorf("%s completion missing enum value %q", shell, v)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestGenerateCompletion_UnsupportedShell - Error handling for unknown shells
// ---------------------------------------------------------------------------

func TestGenerateCompletion_UnsupportedShell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		shell Shell
	}{
		{name: "empty shell", shell: ""},
		{name: "unknown shell", shell: "unknown"},
		{name: "sh is not supported", shell: "sh"},
		{name: "tcsh is not supported", shell: "tcsh"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			err := GenerateCompletion(&buf, tt.shell)

			if err == nil {
				t.Fatalf("GenerateCompletion(%q) expected error, got nil", tt.shell)
			}

			if !errors.Is(err, ErrUnsupportedShell) {
				t.Errorf("error should wrap ErrUnsupportedShell, got: %v", err)
			}

			if !strings.Contains(err.Error(), string(tt.shell)) {
				t.Errorf("error message should contain shell name %q, got: %v", tt.shell, err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunCompletion - Command wrapper behavior
// ---------------------------------------------------------------------------

func TestRunCompletion(t *testing.T) {
	t.Parallel()

	t.Run("no args prints usage", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := testEnv()

		if err := runCompletion([]string{}, env); err != nil {
			t.Fatalf("runCompletion with no args returned error: %v", err)
		}

		output := stdout.String()
		if !strings.Contains(output, "Usage: bookpress completion") {
			t.Error("expected usage message when no args provided")
		}
		for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
			if !strings.Contains(output, shell) {
				t.Errorf("usage should mention %s shell", shell)
			}
		}
	})

	t.Run("valid shell writes script to stdout", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := testEnv()

		if err := runCompletion([]string{"fish"}, env); err != nil {
			t.Fatalf("runCompletion(fish) returned error: %v", err)
		}
		if !strings.Contains(stdout.String(), "complete -c bookpress") {
			t.Errorf("output missing fish completion, got %q", stdout.String())
		}
	})

	t.Run("invalid shell returns error", func(t *testing.T) {
		t.Parallel()

		env, _, _ := testEnv()

		err := runCompletion([]string{"invalid"}, env)
		if err == nil {
			t.Fatal("runCompletion with invalid shell should return error")
		}
		if !errors.Is(err, ErrUnsupportedShell) {
			t.Errorf("error should wrap ErrUnsupportedShell, got: %v", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestGetCommands_ReturnsExpectedCommands - Command definitions
// ---------------------------------------------------------------------------

func TestGetCommands_ReturnsExpectedCommands(t *testing.T) {
	t.Parallel()

	commands := getCommands()

	expected := []string{
		"build", "cover", "toc", "clean", "doctor",
		"preview", "serve", "stats", "completion", "version", "help",
	}
	if len(commands) != len(expected) {
		t.Fatalf("expected %d commands, got %d", len(expected), len(commands))
	}

	have := make(map[string]bool)
	for _, cmd := range commands {
		have[cmd.Name] = true
	}
	for _, name := range expected {
		if !have[name] {
			t.Errorf("missing expected command %q", name)
		}
	}
}

// ---------------------------------------------------------------------------
// TestGetCommands_BuildFlags - Build command flag definitions
// ---------------------------------------------------------------------------

func TestGetCommands_BuildFlags(t *testing.T) {
	t.Parallel()

	commands := getCommands()

	var buildCmd *commandDef
	for i := range commands {
		if commands[i].Name == "build" {
			buildCmd = &commands[i]
			break
		}
	}
	if buildCmd == nil {
		t.Fatal("build command not found")
	}
	if len(buildCmd.Flags) == 0 {
		t.Fatal("build command should have flags")
	}

	flagByName := make(map[string]flagDef)
	for _, f := range buildCmd.Flags {
		flagByName[f.Long] = f
	}

	expectedFlags := []struct {
		name      string
		wantShort string
		wantType  flagType
	}{
		{"output", "o", flagFile},
		{"config", "c", flagFile},
		{"engine", "", flagEnum},
		{"merger", "", flagEnum},
		{"chunk-size", "", flagInt},
		{"no-toc", "", flagBool},
		{"quiet", "q", flagBool},
		{"verbose", "v", flagBool},
	}

	for _, expected := range expectedFlags {
		f, ok := flagByName[expected.name]
		if !ok {
			t.Errorf("missing expected flag --%s", expected.name)
			continue
		}
		if f.Short != expected.wantShort {
			t.Errorf("flag --%s: short = %q, want %q", expected.name, f.Short, expected.wantShort)
		}
		if f.Type != expected.wantType {
			t.Errorf("flag --%s: type = %v, want %v", expected.name, f.Type, expected.wantType)
		}
	}

	engine := flagByName["engine"]
	wantEngines := []string{"auto", "docker", "podman", "local"}
	if len(engine.Values) != len(wantEngines) {
		t.Fatalf("engine values = %v, want %v", engine.Values, wantEngines)
	}
	for i, v := range wantEngines {
		if engine.Values[i] != v {
			t.Errorf("engine value[%d] = %q, want %q", i, engine.Values[i], v)
		}
	}

	if cfg := flagByName["config"]; cfg.FileGlob != "*.yaml,*.yml" {
		t.Errorf("config glob = %q, want *.yaml,*.yml", cfg.FileGlob)
	}
}

// ---------------------------------------------------------------------------
// TestGetCommands_PreviewTakesFiles - Preview file argument definitions
// ---------------------------------------------------------------------------

func TestGetCommands_PreviewTakesFiles(t *testing.T) {
	t.Parallel()

	for _, cmd := range getCommands() {
		if cmd.Name != "preview" {
			if cmd.TakesFiles {
				t.Errorf("command %q should not take file arguments", cmd.Name)
			}
			continue
		}
		if !cmd.TakesFiles {
			t.Error("preview command should accept files")
		}
		if cmd.FilePattern != "*.md,*.markdown" {
			t.Errorf("preview file pattern = %q, want *.md,*.markdown", cmd.FilePattern)
		}

		// Preview's style flag enumerates the highlight styles.
		for _, f := range cmd.Flags {
			if f.Long == "style" {
				if f.Type != flagEnum {
					t.Errorf("style flag should be flagEnum, got %v", f.Type)
				}
				if len(f.Values) == 0 {
					t.Error("style flag should carry highlight style values")
				}
			}
		}
	}
}

// ---------------------------------------------------------------------------
// TestShellConstants - Shell type constants
// ---------------------------------------------------------------------------

func TestShellConstants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		shell Shell
		want  string
	}{
		{ShellBash, "bash"},
		{ShellZsh, "zsh"},
		{ShellFish, "fish"},
		{ShellPowerShell, "powershell"},
	}

	for _, tt := range tests {
		if string(tt.shell) != tt.want {
			t.Errorf("Shell constant %v = %q, want %q", tt.shell, string(tt.shell), tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestZshGlob - Glob list conversion
// ---------------------------------------------------------------------------

func TestZshGlob(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"*.md", "*.md"},
		{"*.yaml,*.yml", "(*.yaml|*.yml)"},
		{"*.md,*.markdown", "(*.md|*.markdown)"},
	}

	for _, tt := range tests {
		if got := zshGlob(tt.in); got != tt.want {
			t.Errorf("zshGlob(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
