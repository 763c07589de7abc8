package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	appconfig "github.com/Iron-Ham/tourguide/internal/config"
	"github.com/Iron-Ham/tourguide/internal/event"
	"github.com/Iron-Ham/tourguide/internal/logging"
	"github.com/Iron-Ham/tourguide/internal/testutil"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// setupTestEnvironment isolates the config directory and viper state and
// clears flag values left over from earlier commands.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	viper.Reset()
	t.Cleanup(viper.Reset)

	listDir, playDir, playPolicy, playTheme = "", "", "", ""
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	return filepath.Join(home, "tourguide")
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "tourguide" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "tourguide")
	}

	expectedCmds := []string{"list", "validate", "play", "logs", "config"}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, expected := range expectedCmds {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestListCommand(t *testing.T) {
	setupTestEnvironment(t)
	dir := testutil.WriteDefinitions(t, map[string]string{"welcome.yaml": testutil.WelcomeTour})

	output, err := executeCommand(rootCmd, "list", "--dir", dir)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 tours, got:\n%s", output)
	}
	if fields := strings.Fields(lines[1]); len(fields) != 5 || fields[0] != "welcome" || fields[2] != "3" || fields[3] != "1" || fields[4] != "welcome.yaml" {
		t.Errorf("unexpected welcome row: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "shortcuts") {
		t.Errorf("unexpected shortcuts row: %q", lines[2])
	}
}

func TestListCommand_MarksDisabled(t *testing.T) {
	setupTestEnvironment(t)
	dir := testutil.WriteDefinitions(t, map[string]string{"welcome.yaml": testutil.WelcomeTour})
	viper.Set("tours.disabled", []string{"shortcuts"})

	output, err := executeCommand(rootCmd, "list", "--dir", dir)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(output, "shortcuts (disabled)") || strings.Contains(output, "welcome (disabled)") {
		t.Errorf("unexpected output:\n%s", output)
	}
}

func TestListCommand_Empty(t *testing.T) {
	configDir := setupTestEnvironment(t)

	output, err := executeCommand(rootCmd, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(output, "No tours found in "+filepath.Join(configDir, "tours")) {
		t.Errorf("unexpected output:\n%s", output)
	}
}

func TestListCommand_InvalidConfig(t *testing.T) {
	setupTestEnvironment(t)
	viper.Set("tours.fallback_policy", "sometimes")

	if _, err := executeCommand(rootCmd, "list"); err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("error = %v, want invalid configuration", err)
	}
}

func TestValidateCommand(t *testing.T) {
	setupTestEnvironment(t)
	dir := testutil.WriteDefinitions(t, map[string]string{
		"welcome.yaml": testutil.WelcomeTour,
		"editor.yaml": `tours:
  - id: editor
    steps:
      - title: Editor
        after: ["delay:10ms", "log"]
`,
	})

	output, err := executeCommand(rootCmd, "validate",
		filepath.Join(dir, "welcome.yaml"), filepath.Join(dir, "editor.yaml"))
	if err != nil {
		t.Fatalf("validate failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "welcome.yaml (2 tours)") || !strings.Contains(output, "editor.yaml (1 tours)") {
		t.Errorf("unexpected output:\n%s", output)
	}
}

func TestValidateCommand_ReportsEveryFile(t *testing.T) {
	setupTestEnvironment(t)
	dir := testutil.WriteDefinitions(t, map[string]string{
		"a.yaml": testutil.WelcomeTour,
		"b.yaml": `tours:
  - id: broken
    steps:
      - title: Oops
        before: ["teleport"]
`,
		"c.yaml": `tours: [`,
	})

	output, err := executeCommand(rootCmd, "validate",
		filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yaml"), filepath.Join(dir, "c.yaml"))
	if !errors.Is(err, errInvalidDefinitions) {
		t.Fatalf("error = %v, want errInvalidDefinitions", err)
	}
	if !strings.Contains(output, "ok   "+filepath.Join(dir, "a.yaml")) {
		t.Errorf("a.yaml should pass:\n%s", output)
	}
	if !strings.Contains(output, "FAIL "+filepath.Join(dir, "b.yaml")) || !strings.Contains(output, "FAIL "+filepath.Join(dir, "c.yaml")) {
		t.Errorf("b.yaml and c.yaml should fail:\n%s", output)
	}
}

func TestValidateCommand_DuplicateAcrossFiles(t *testing.T) {
	setupTestEnvironment(t)
	dir := testutil.WriteDefinitions(t, map[string]string{
		"one.yaml": testutil.WelcomeTour,
		"two.yaml": testutil.WelcomeTour,
	})

	output, err := executeCommand(rootCmd, "validate",
		filepath.Join(dir, "one.yaml"), filepath.Join(dir, "two.yaml"))
	if !errors.Is(err, errInvalidDefinitions) {
		t.Fatalf("error = %v, want errInvalidDefinitions\n%s", err, output)
	}
	if strings.Count(output, "ok   ") != 2 || !strings.Contains(output, "already declared") {
		t.Errorf("unexpected output:\n%s", output)
	}
}

func TestValidateCommand_ToursDirectory(t *testing.T) {
	configDir := setupTestEnvironment(t)
	toursDir := filepath.Join(configDir, "tours")
	testutil.WriteFile(t, toursDir, "welcome.yaml", testutil.WelcomeTour)
	testutil.WriteFile(t, toursDir, "notes.txt", "ignored")
	testutil.WriteFile(t, toursDir, ".hidden.yaml", "tours: [")

	output, err := executeCommand(rootCmd, "validate")
	if err != nil {
		t.Fatalf("validate failed: %v\n%s", err, output)
	}
	if strings.Count(output, "ok   ") != 1 || strings.Contains(output, "notes.txt") {
		t.Errorf("unexpected output:\n%s", output)
	}
}

func TestPlayCommand_RequiresTerminal(t *testing.T) {
	setupTestEnvironment(t)

	_, err := executeCommand(rootCmd, "play")
	if !errors.Is(err, errNotTerminal) {
		t.Errorf("error = %v, want errNotTerminal", err)
	}
}

func testConfig(t *testing.T, toursDir string) *appconfig.Config {
	t.Helper()
	cfg := appconfig.Default()
	cfg.Tours.Dir = toursDir
	cfg.Logging.Dir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Level = "debug"
	return cfg
}

func TestNewEnvironment(t *testing.T) {
	setupTestEnvironment(t)
	dir := testutil.WriteDefinitions(t, map[string]string{"welcome.yaml": testutil.WelcomeTour})
	cfg := testConfig(t, dir)
	cfg.Tours.FallbackPolicy = "on_close"
	cfg.Tours.Disabled = []string{"shortcuts"}
	cfg.TUI.TooltipWidth = 40
	cfg.TUI.NextLabel = "Onward"

	env, err := newEnvironment(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newEnvironment() error = %v", err)
	}

	if env.watcher == nil {
		t.Error("tours.watch should start a watcher")
	}
	if env.Catalog().Len() != 2 {
		t.Errorf("Catalog().Len() = %d, want 2", env.Catalog().Len())
	}
	if env.policy.String() != "on_close" {
		t.Errorf("policy = %s", env.policy)
	}
	if env.renderer.Width != 40 || env.renderer.Labels.Next != "Onward" {
		t.Errorf("renderer = %+v", env.renderer)
	}
	if env.collector != nil {
		t.Error("metrics are disabled by default")
	}

	// Disabled tours are never eligible
	ready := make(chan string, 2)
	for _, id := range []string{"shortcuts", "welcome"} {
		id := id
		if err := env.registry.Subscribe(id, func() { ready <- id }); err != nil {
			t.Fatalf("Subscribe(%s) error = %v", id, err)
		}
	}
	if got := <-ready; got != "welcome" {
		t.Errorf("first ready tour = %s, want welcome", got)
	}
	env.registry.NotifyShown("welcome")

	env.Close()

	data, err := os.ReadFile(filepath.Join(cfg.Logging.Dir, logging.LogFileName))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	for _, want := range []string{"environment ready", "tour completed"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log missing %q:\n%s", want, data)
		}
	}
}

func TestNewEnvironment_MissingToursDir(t *testing.T) {
	setupTestEnvironment(t)
	cfg := testConfig(t, filepath.Join(t.TempDir(), "none"))
	cfg.Logging.Enabled = false

	env, err := newEnvironment(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newEnvironment() error = %v", err)
	}
	defer env.Close()

	if env.watcher != nil {
		t.Error("a missing directory should not be watched")
	}
	if env.Catalog().Len() != 0 {
		t.Errorf("Catalog().Len() = %d, want 0", env.Catalog().Len())
	}
}

func TestNewEnvironment_InvalidDefinitions(t *testing.T) {
	setupTestEnvironment(t)
	dir := testutil.WriteDefinitions(t, map[string]string{"bad.yaml": "tours: ["})
	cfg := testConfig(t, dir)

	if _, err := newEnvironment(context.Background(), cfg); err == nil {
		t.Error("expected an error for invalid definitions")
	}

	cfg.Tours.Watch = false
	if _, err := newEnvironment(context.Background(), cfg); err == nil {
		t.Error("expected an error for invalid definitions without watching")
	}
}

func TestNewEnvironment_Metrics(t *testing.T) {
	setupTestEnvironment(t)
	dir := testutil.WriteDefinitions(t, map[string]string{"welcome.yaml": testutil.WelcomeTour})
	cfg := testConfig(t, dir)
	cfg.Logging.Enabled = false
	cfg.Metrics.Enabled = true
	cfg.Metrics.Listen = "127.0.0.1:0"

	env, err := newEnvironment(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newEnvironment() error = %v", err)
	}

	env.bus.Publish(event.NewTourStartedEvent("welcome", "m1", 3))

	families, err := env.collector.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "tourguide_tours_started_total" && len(mf.GetMetric()) == 1 {
			found = true
		}
	}
	if !found {
		t.Error("tour start should be counted")
	}

	env.bus.Subscribe(event.TypeTourClosed, func(event.Event) {})

	// Close stops the endpoint and returns
	env.Close()
	if n := env.bus.SubscriptionCount(); n != 0 {
		t.Errorf("SubscriptionCount() after Close = %d, want 0", n)
	}
}
