package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	if cmd == nil {
		t.Fatal("NewRootCommand should return a command")
	}
	if cmd.Use != "jurictl" {
		t.Errorf("expected Use='jurictl', got %q", cmd.Use)
	}
	if cmd.Short == "" {
		t.Error("Short should not be empty")
	}
	if cmd.Long == "" {
		t.Error("Long should not be empty")
	}
	if cmd.Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestNewRootCommand_SubcommandRegistration(t *testing.T) {
	cmd := NewRootCommand()

	subNames := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subNames[sub.Name()] = true
	}

	for _, name := range []string{"cases", "chat", "predict", "migrate"} {
		if !subNames[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestNewRootCommand_GlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"config", "log-level", "output", "verbose", "timeout", "server"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("%s flag should exist", name)
		}
	}

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	if verboseFlag.Shorthand != "v" {
		t.Errorf("verbose flag shorthand should be 'v', got %q", verboseFlag.Shorthand)
	}

	outputFlag := cmd.PersistentFlags().Lookup("output")
	if outputFlag.DefValue != "text" {
		t.Errorf("output flag default should be 'text', got %q", outputFlag.DefValue)
	}
}

func TestCasesCmd_Subcommands(t *testing.T) {
	cmd := NewCasesCmd()

	subNames := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subNames[sub.Name()] = true
	}
	for _, name := range []string{"upload", "status", "analyze", "reset"} {
		if !subNames[name] {
			t.Errorf("expected cases subcommand %q not found", name)
		}
	}
}

func TestMigrateCmd_Subcommands(t *testing.T) {
	cmd := NewMigrateCmd()

	subNames := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subNames[sub.Name()] = true
	}
	for _, name := range []string{"up", "down", "status", "force"} {
		if !subNames[name] {
			t.Errorf("expected migrate subcommand %q not found", name)
		}
	}
}

func TestExecute_UnknownSubcommand(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"unknownsubcommand"})

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for unknown subcommand")
	}
}

func TestGetCLIContext_Missing(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	if _, err := GetCLIContext(cmd); err == nil {
		t.Error("expected error when CLI context is absent")
	}
}

func TestFormatTable(t *testing.T) {
	out := FormatTable(
		[]string{"CASE", "STAGE"},
		[][]string{
			{"CRL-1-2020", "SUMMARY"},
			{"WP-9-2021", "COMPLETED"},
		},
	)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "CASE") {
		t.Errorf("header row wrong: %q", lines[0])
	}
	if !strings.Contains(lines[1], "----") {
		t.Errorf("separator row wrong: %q", lines[1])
	}
	if !strings.Contains(lines[2], "CRL-1-2020") {
		t.Errorf("data row wrong: %q", lines[2])
	}
}

func TestFormatTable_Empty(t *testing.T) {
	if out := FormatTable(nil, nil); out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}

func TestFormatTable_ShortRows(t *testing.T) {
	out := FormatTable([]string{"A", "B", "C"}, [][]string{{"only"}})
	if !strings.Contains(out, "only") {
		t.Errorf("short row should still render: %q", out)
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 5); got != "ab   " {
		t.Errorf("padRight: got %q", got)
	}
	if got := padRight("abcdef", 3); got != "abcdef" {
		t.Errorf("padRight should not trim: got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate: got %q", got)
	}
	if got := truncate("a very long string indeed", 10); got != "a very ..." {
		t.Errorf("truncate: got %q", got)
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"judgment.pdf", "application/pdf"},
		{"judgment.PDF", "application/pdf"},
		{"payload.json", "application/json"},
		{"judgment.txt", "text/plain"},
		{"noextension", "text/plain"},
	}
	for _, tt := range tests {
		if got := contentTypeFor(tt.path); got != tt.want {
			t.Errorf("contentTypeFor(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestPrintError(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var buf bytes.Buffer
	cmd.SetErr(&buf)

	PrintError(cmd, nil)
	if buf.Len() != 0 {
		t.Error("nil error should print nothing")
	}

	PrintError(cmd, errTest)
	if !strings.Contains(buf.String(), "Error: boom") {
		t.Errorf("unexpected error output: %q", buf.String())
	}
}

var errTest = &testError{}

type testError struct{}

func (*testError) Error() string { return "boom" }

func TestPrintSuccess(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	PrintSuccess(cmd, "done")
	if got := buf.String(); got != "OK: done\n" {
		t.Errorf("unexpected success output: %q", got)
	}
}
