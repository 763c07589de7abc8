package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/tourguide/internal/tui/styles"
)

const testThemeYAML = `name: "Test Theme"
author: "Tester"
version: "1"
colors:
  primary: "#A78BFA"
  secondary: "#10B981"
  warning: "#F59E0B"
  error: "#F87171"
  muted: "#9CA3AF"
  surface: "#1F2937"
  text: "#F9FAFB"
  border: "#6B7280"
`

// useThemesDir points the theme commands at a fresh directory.
func useThemesDir(t *testing.T) string {
	t.Helper()
	styles.ClearCustomThemes()
	t.Cleanup(styles.ClearCustomThemes)

	dir := t.TempDir()
	orig := themesDir
	themesDir = func() string { return dir }
	t.Cleanup(func() { themesDir = orig })
	return dir
}

// run invokes fn with cmd's output captured.
func run(t *testing.T, cmd *cobra.Command, fn func(*cobra.Command, []string) error, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	t.Cleanup(func() {
		cmd.SetOut(nil)
		cmd.SetErr(nil)
	})
	err := fn(cmd, args)
	return buf.String(), err
}

func TestRunThemeList(t *testing.T) {
	dir := useThemesDir(t)
	if err := os.WriteFile(filepath.Join(dir, "testtheme.yaml"), []byte(testThemeYAML), 0o644); err != nil {
		t.Fatalf("Failed to write test theme: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: x\n"), 0o644); err != nil {
		t.Fatalf("Failed to write broken theme: %v", err)
	}

	out, err := run(t, themeListCmd, runThemeList)
	if err != nil {
		t.Fatalf("runThemeList() error = %v", err)
	}

	for _, want := range []string{"- default", "- nord", "- testtheme (by Tester)", "broken.yaml", dir} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunThemeExport(t *testing.T) {
	useThemesDir(t)
	outputPath := filepath.Join(t.TempDir(), "exported.yaml")

	if _, err := run(t, themeExportCmd, runThemeExport, "default", outputPath); err != nil {
		t.Fatalf("runThemeExport() error = %v", err)
	}

	theme, err := styles.LoadThemeFile(outputPath)
	if err != nil {
		t.Fatalf("exported theme should load: %v", err)
	}
	if theme.Colors.Primary == "" {
		t.Error("exported theme missing primary color")
	}
}

func TestRunThemeExport_Stdout(t *testing.T) {
	useThemesDir(t)

	out, err := run(t, themeExportCmd, runThemeExport, "nord")
	if err != nil {
		t.Fatalf("runThemeExport() error = %v", err)
	}
	if !strings.Contains(out, "primary:") {
		t.Errorf("output missing colors:\n%s", out)
	}
}

func TestRunThemeExport_InvalidTheme(t *testing.T) {
	useThemesDir(t)

	_, err := run(t, themeExportCmd, runThemeExport, "nonexistent")
	if err == nil || !strings.Contains(err.Error(), "unknown theme") {
		t.Errorf("error = %v, want unknown theme", err)
	}
}

func TestRunThemeExport_BrokenCustomTheme(t *testing.T) {
	dir := useThemesDir(t)
	if err := os.WriteFile(filepath.Join(dir, "mine.yaml"), []byte("name: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, themeExportCmd, runThemeExport, "mine")
	if err == nil || !strings.Contains(err.Error(), "failed to load") {
		t.Errorf("error = %v, want load failure", err)
	}
}

func TestRunThemeInfo(t *testing.T) {
	dir := useThemesDir(t)
	if err := os.WriteFile(filepath.Join(dir, "testtheme.yaml"), []byte(testThemeYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, themeInfoCmd, runThemeInfo, "default")
	if err != nil {
		t.Fatalf("runThemeInfo() error = %v", err)
	}
	if !strings.Contains(out, "Type: Built-in") || !strings.Contains(out, "Highlight:") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = run(t, themeInfoCmd, runThemeInfo, "testtheme")
	if err != nil {
		t.Fatalf("runThemeInfo() error = %v", err)
	}
	if !strings.Contains(out, "Type: Custom") || !strings.Contains(out, "Author: Tester") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRunThemeInfo_InvalidTheme(t *testing.T) {
	useThemesDir(t)

	if _, err := run(t, themeInfoCmd, runThemeInfo, "nonexistent"); err == nil {
		t.Error("Expected error for invalid theme, got nil")
	}
}

func TestRunThemePath(t *testing.T) {
	dir := useThemesDir(t)

	out, err := run(t, themePathCmd, runThemePath)
	if err != nil {
		t.Fatalf("runThemePath() error = %v", err)
	}
	if !strings.HasPrefix(out, dir) || strings.Contains(out, "does not exist") {
		t.Errorf("unexpected output:\n%s", out)
	}

	themesDir = func() string { return filepath.Join(dir, "missing") }
	out, _ = run(t, themePathCmd, runThemePath)
	if !strings.Contains(out, "does not exist yet") {
		t.Errorf("missing directory should be noted:\n%s", out)
	}
}

func TestRunThemeCreate(t *testing.T) {
	dir := useThemesDir(t)

	out, err := run(t, themeCreateCmd, runThemeCreate, "newtheme")
	if err != nil {
		t.Fatalf("runThemeCreate() error = %v", err)
	}
	if !strings.Contains(out, "tourguide config set tui.theme newtheme") {
		t.Errorf("unexpected output:\n%s", out)
	}

	theme, err := styles.LoadThemeFile(filepath.Join(dir, "newtheme.yaml"))
	if err != nil {
		t.Fatalf("Created theme is invalid: %v", err)
	}
	if theme.Name != "Newtheme" {
		t.Errorf("Name = %q, want %q", theme.Name, "Newtheme")
	}
}

func TestRunThemeCreate_Rejected(t *testing.T) {
	useThemesDir(t)

	if _, err := run(t, themeCreateCmd, runThemeCreate, "existing"); err != nil {
		t.Fatalf("First create failed: %v", err)
	}

	tests := []struct {
		name    string
		errText string
	}{
		{"", "empty"},
		{"my/theme", "invalid characters"},
		{"my\\theme", "invalid characters"},
		{".hidden", "invalid characters"},
		{"default", "built-in"},
		{"existing", "already exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, themeCreateCmd, runThemeCreate, tt.name)
			if err == nil || !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("error = %v, want containing %q", err, tt.errText)
			}
		})
	}
}

func TestCapitalizeFirst(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello", "Hello"},
		{"HELLO", "HELLO"},
		{"h", "H"},
		{"", ""},
		{"myTheme", "MyTheme"},
	}

	for _, tt := range tests {
		if got := capitalizeFirst(tt.input); got != tt.expected {
			t.Errorf("capitalizeFirst(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
