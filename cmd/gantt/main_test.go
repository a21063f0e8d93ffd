package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/hylla/gantt/internal/app"
	"github.com/hylla/gantt/internal/config"
	"github.com/hylla/gantt/internal/domain"
	"github.com/hylla/gantt/internal/tui"
)

// TestMain sets deterministic environment defaults for CLI tests.
func TestMain(m *testing.M) {
	_ = os.Setenv("GANTT_DEV", "false")
	os.Exit(m.Run())
}

// fakeProgram records the model it was given and returns runErr.
type fakeProgram struct {
	model  *tea.Model
	in     tea.Model
	runErr error
}

// Run runs the requested command flow.
func (f fakeProgram) Run() (tea.Model, error) {
	if f.model != nil {
		*f.model = f.in
	}
	return f.in, f.runErr
}

// stubProgram swaps programFactory for the duration of the test.
func stubProgram(t *testing.T, runErr error) *tea.Model {
	t.Helper()
	orig := programFactory
	t.Cleanup(func() { programFactory = orig })
	var got tea.Model
	programFactory = func(m tea.Model) program {
		return fakeProgram{model: &got, in: m, runErr: runErr}
	}
	return &got
}

// writeConfig writes a TOML config that keeps the watcher off.
func writeConfig(t *testing.T, dir, extra string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	content := "[tui]\nwatch_config = false\n" + extra
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// TestRunVersion verifies the version flag.
func TestRunVersion(t *testing.T) {
	var out strings.Builder
	if err := run(context.Background(), []string{"--version"}, &out, io.Discard); err != nil {
		t.Fatalf("run(version) error = %v", err)
	}
	if !strings.Contains(out.String(), "gantt") {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

// TestRunStartsProgram verifies the root command builds a model and runs it.
func TestRunStartsProgram(t *testing.T) {
	got := stubProgram(t, nil)
	cfgPath := writeConfig(t, t.TempDir(), "")
	if err := run(context.Background(), []string{"--config", cfgPath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, ok := (*got).(tui.Model); !ok {
		t.Fatalf("expected tui.Model, got %T", *got)
	}
}

// TestRunPropagatesProgramError verifies program failures surface.
func TestRunPropagatesProgramError(t *testing.T) {
	stubProgram(t, errors.New("boom"))
	cfgPath := writeConfig(t, t.TempDir(), "")
	err := run(context.Background(), []string{"--config", cfgPath}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected program error, got %v", err)
	}
}

// TestRunInvalidFlag verifies unknown flags fail.
func TestRunInvalidFlag(t *testing.T) {
	if err := run(context.Background(), []string{"--nope"}, io.Discard, io.Discard); err == nil {
		t.Fatal("expected invalid flag error")
	}
}

// TestRunRejectsInvalidViewOverrides verifies --mode, --theme, and --sort validation.
func TestRunRejectsInvalidViewOverrides(t *testing.T) {
	stubProgram(t, nil)
	cfgPath := writeConfig(t, t.TempDir(), "")
	tests := []struct {
		args []string
		want string
	}{
		{args: []string{"--mode", "fortnight"}, want: "--mode"},
		{args: []string{"--theme", "sepia"}, want: "--theme"},
		{args: []string{"--sort", "random"}, want: "--sort"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			args := append([]string{"--config", cfgPath}, tt.args...)
			err := run(context.Background(), args, io.Discard, io.Discard)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %s error, got %v", tt.want, err)
			}
		})
	}
}

// TestRunRejectsInvalidLoggingLevelFromConfig verifies logger setup errors surface.
func TestRunRejectsInvalidLoggingLevelFromConfig(t *testing.T) {
	stubProgram(t, nil)
	cfgPath := writeConfig(t, t.TempDir(), "[logging]\nlevel = \"loud\"\n")
	err := run(context.Background(), []string{"--config", cfgPath}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "logging level") {
		t.Fatalf("expected logging level error, got %v", err)
	}
}

// TestRunEnvOverridesView verifies GANTT_* variables feed the view flags.
func TestRunEnvOverridesView(t *testing.T) {
	t.Setenv("GANTT_MODE", "week")
	var out strings.Builder
	cfgPath := writeConfig(t, t.TempDir(), "")
	if err := run(context.Background(), []string{"--config", cfgPath, "inspect"}, &out, io.Discard); err != nil {
		t.Fatalf("run(inspect) error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "week view") {
		t.Fatalf("expected week view summary, got %q", out.String())
	}
}

// TestRunPathsCommand verifies the paths subcommand output.
func TestRunPathsCommand(t *testing.T) {
	var out strings.Builder
	err := run(context.Background(), []string{"--app", "ganttx", "--dev", "paths"}, &out, io.Discard)
	if err != nil {
		t.Fatalf("run(paths) error = %v", err)
	}
	output := out.String()
	for _, want := range []string{"app: ganttx", "dev_mode: true", "config: ", "log_dir: "} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in paths output, got %q", want, output)
		}
	}
}

// TestRunInspectCommand verifies the geometry dump for the demo plan.
func TestRunInspectCommand(t *testing.T) {
	var out strings.Builder
	cfgPath := filepath.Join(t.TempDir(), "missing.toml")
	if err := run(context.Background(), []string{"--config", cfgPath, "inspect"}, &out, io.Discard); err != nil {
		t.Fatalf("run(inspect) error = %v", err)
	}
	output := out.String()
	for _, want := range []string{
		"day view 2024-01-01 →",
		"sort group",
		"discovery",
		"User interviews",
		"+ add",
		"links: 5",
		"discovery-end → design-start",
		"milestone 2024-01-02 Kickoff",
		"milestone 2024-04-15 Launch",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %q in inspect output, got %q", want, output)
		}
	}
}

// TestRunInspectScrollsToDate verifies --date moves the viewport.
func TestRunInspectScrollsToDate(t *testing.T) {
	var out strings.Builder
	cfgPath := writeConfig(t, t.TempDir(), "")
	args := []string{"--config", cfgPath, "--sort", "list", "inspect", "--date", "2024-04-01"}
	if err := run(context.Background(), args, &out, io.Discard); err != nil {
		t.Fatalf("run(inspect) error = %v", err)
	}
	output := out.String()
	if !strings.Contains(output, "day view 2024-04-01 →") {
		t.Fatalf("expected scrolled summary, got %q", output)
	}
	if strings.Contains(output, "+ add") {
		t.Fatalf("list mode should not render add slots, got %q", output)
	}
	// discovery ends in January, so its start sits off the left edge.
	if !strings.Contains(output, "◀") {
		t.Fatalf("expected a start-offscreen marker, got %q", output)
	}
}

// TestRunInspectRejectsBadDate verifies --date validation.
func TestRunInspectRejectsBadDate(t *testing.T) {
	cfgPath := writeConfig(t, t.TempDir(), "")
	err := run(context.Background(), []string{"--config", cfgPath, "inspect", "--date", "soon"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "--date") {
		t.Fatalf("expected --date error, got %v", err)
	}
}

// TestRunDevModeWritesRuntimeLogsToFileOnly verifies TUI runtime logs stay
// out of stderr and land in the workspace dev log.
func TestRunDevModeWritesRuntimeLogsToFileOnly(t *testing.T) {
	stubProgram(t, nil)
	workspace := t.TempDir()
	t.Chdir(workspace)
	cfgPath := writeConfig(t, workspace, "")

	var stderr bytes.Buffer
	if err := run(context.Background(), []string{"--dev", "--config", cfgPath}, io.Discard, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := strings.TrimSpace(stderr.String()); got != "" {
		t.Fatalf("expected no runtime stderr output in TUI mode, got %q", got)
	}

	logDir := filepath.Join(workspace, ".gantt", "log")
	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	var logPath string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".log") {
			logPath = filepath.Join(logDir, entry.Name())
			break
		}
	}
	if logPath == "" {
		t.Fatalf("expected a .log file in %s", logDir)
	}
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, want := range []string{"starting tui program loop", "constraint link added"} {
		if !strings.Contains(string(content), want) {
			t.Fatalf("expected %q in dev log, got %q", want, content)
		}
	}
}

// TestBuildChartInstallsFeatures verifies default feature wiring.
func TestBuildChartInstallsFeatures(t *testing.T) {
	c, err := buildChart(config.Default(), app.NewCharmLogger(nil))
	if err != nil {
		t.Fatalf("buildChart() error = %v", err)
	}
	if got := c.store.Len(); got != len(demoPlan) {
		t.Fatalf("expected %d blocks, got %d", len(demoPlan), got)
	}
	if c.constraints == nil || c.constraints.Graph().Len() != len(demoLinks()) {
		t.Fatalf("expected demo links installed, got %#v", c.constraints)
	}
	design, _ := c.store.BlockByKey("design")
	if !design.StartConstraint {
		t.Fatalf("expected design start flagged, got %#v", design)
	}
	var keys []string
	for _, m := range c.milestones.Milestones() {
		keys = append(keys, m.Key)
	}
	if diff := cmp.Diff([]string{"kickoff", "launch"}, keys); diff != "" {
		t.Fatalf("milestones mismatch (-want +got):\n%s", diff)
	}
}

// TestBuildChartHonorsFeatureConfig verifies disabled features and configured items.
func TestBuildChartHonorsFeatureConfig(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		cfg := config.Default()
		cfg.Constraints.Enabled = false
		cfg.Milestones.Enabled = false
		c, err := buildChart(cfg, app.NewCharmLogger(nil))
		if err != nil {
			t.Fatalf("buildChart() error = %v", err)
		}
		if c.constraints != nil || c.milestones != nil {
			t.Fatalf("expected no features, got %#v", c)
		}
	})

	t.Run("configured milestones replace demo ones", func(t *testing.T) {
		cfg := config.Default()
		cfg.Milestones.Items = []config.MilestoneConfig{{Key: "freeze", Text: "Code freeze", Time: "2024-03-15"}}
		cfg.Milestones.Recurring = []config.RecurringConfig{{Rule: "FREQ=MONTHLY;BYMONTHDAY=1", Text: "Planning"}}
		c, err := buildChart(cfg, app.NewCharmLogger(nil))
		if err != nil {
			t.Fatalf("buildChart() error = %v", err)
		}
		if _, ok := c.milestones.Milestone("kickoff"); ok {
			t.Fatal("expected demo milestones skipped")
		}
		if m, ok := c.milestones.Milestone("freeze"); !ok || m.Time != "2024-03-15" {
			t.Fatalf("expected freeze milestone, got %#v", m)
		}
		if m, ok := c.milestones.Milestone("2024-02-01"); !ok || m.Text != "Planning" {
			t.Fatalf("expected recurring occurrence, got %#v", m)
		}
	})

	t.Run("unknown link target", func(t *testing.T) {
		cfg := config.Default()
		cfg.Constraints.Links = []config.LinkConfig{{From: "ghost-end", To: "beta-start"}}
		_, err := buildChart(cfg, app.NewCharmLogger(nil))
		if !errors.Is(err, app.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("bad recurrence", func(t *testing.T) {
		cfg := config.Default()
		cfg.Milestones.Recurring = []config.RecurringConfig{{Rule: "FREQ=SOMETIMES"}}
		if _, err := buildChart(cfg, app.NewCharmLogger(nil)); err == nil {
			t.Fatal("expected recurrence error")
		}
	})
}

// TestApplyViewOverrides verifies flag values win over the file.
func TestApplyViewOverrides(t *testing.T) {
	cfg := config.Default()
	if err := applyViewOverrides(&cfg, options{mode: "Month", theme: "dark", sortMode: "list"}); err != nil {
		t.Fatalf("applyViewOverrides() error = %v", err)
	}
	want := []string{string(domain.ModeMonth), string(domain.ThemeDark), string(domain.SortList)}
	got := []string{cfg.View.Mode, cfg.View.Theme, cfg.View.SortMode}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("overrides mismatch (-want +got):\n%s", diff)
	}
}

// TestToTUIRuntimeConfig verifies config fields map into the model config.
func TestToTUIRuntimeConfig(t *testing.T) {
	cfg := config.Default()
	cfg.View.Mode = "week"
	cfg.TUI.ColumnPx = 6
	cfg.TUI.Keys.Yank = "Y"
	got := toTUIRuntimeConfig(cfg)
	if got.View.Mode != domain.ModeWeek || got.ColumnPx != 6 || got.Keys.Yank != "Y" {
		t.Fatalf("unexpected runtime config %#v", got)
	}
}

// TestWatchConfigForwardsReloads verifies file edits become runtime updates.
func TestWatchConfigForwardsReloads(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "")
	logger, err := newRuntimeLogger(io.Discard, "gantt", false, config.Default().Logging, "", nil)
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}
	opts := options{configPath: cfgPath, theme: "dark"}
	updates, stop, err := watchConfig(context.Background(), opts, config.Default(), logger)
	if err != nil {
		t.Fatalf("watchConfig() error = %v", err)
	}
	defer stop()

	if err := os.WriteFile(cfgPath, []byte("[view]\nmode = \"month\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	select {
	case update := <-updates:
		if update.Err != nil {
			t.Fatalf("unexpected reload error %v", update.Err)
		}
		if update.Config.View.Mode != domain.ModeMonth || update.Config.View.Theme != domain.ThemeDark {
			t.Fatalf("unexpected reloaded view %#v", update.Config.View)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

// TestRuntimeLoggerCanMuteConsoleSink verifies console muting.
func TestRuntimeLoggerCanMuteConsoleSink(t *testing.T) {
	var console bytes.Buffer
	logger, err := newRuntimeLogger(&console, "gantt", false, config.Default().Logging, "", func() time.Time {
		return time.Date(2026, 2, 23, 12, 0, 0, 0, time.UTC)
	})
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}

	logger.Info("before")
	logger.SetConsoleEnabled(false)
	logger.Info("during")
	logger.SetConsoleEnabled(true)
	logger.Warn("after")

	out := console.String()
	if !strings.Contains(out, "before") || !strings.Contains(out, "after") {
		t.Fatalf("expected unmuted events in console, got %q", out)
	}
	if strings.Contains(out, "during") {
		t.Fatalf("expected muted console log to omit 'during', got %q", out)
	}
	if logger.DevLogPath() != "" {
		t.Fatalf("expected no dev log outside dev mode, got %q", logger.DevLogPath())
	}
}

// TestRuntimeLoggerFallsBackToPlatformLogDir verifies a blank dev_file.dir uses the fallback.
func TestRuntimeLoggerFallsBackToPlatformLogDir(t *testing.T) {
	fallback := t.TempDir()
	cfg := config.Default().Logging
	cfg.DevFile.Dir = ""
	logger, err := newRuntimeLogger(io.Discard, "gantt", true, cfg, fallback, func() time.Time {
		return time.Date(2026, 2, 23, 12, 0, 0, 0, time.UTC)
	})
	if err != nil {
		t.Fatalf("newRuntimeLogger() error = %v", err)
	}
	t.Cleanup(func() { _ = logger.Close() })

	want := filepath.Join(fallback, "gantt-20260223.log")
	if got := logger.DevLogPath(); got != want {
		t.Fatalf("expected dev log %q, got %q", want, got)
	}
	logger.Error("written")
	content, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "written") {
		t.Fatalf("expected event in dev log, got %q", content)
	}
}

// TestWorkspaceRootFromUsesNearestMarker verifies workspace-root resolution behavior.
func TestWorkspaceRootFromUsesNearestMarker(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	nested := filepath.Join(root, "cmd", "gantt")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if got := workspaceRootFrom(nested); filepath.Clean(got) != filepath.Clean(root) {
		t.Fatalf("expected workspace root %q, got %q", root, got)
	}
}

// TestDevLogFilePathResolvesAgainstWorkspaceRoot verifies relative log dirs anchor at workspace root.
func TestDevLogFilePathResolvesAgainstWorkspaceRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/test\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	nested := filepath.Join(root, "cmd", "gantt")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	t.Chdir(nested)

	got, err := devLogFilePath(".gantt/log", "gantt", time.Date(2026, 2, 22, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("devLogFilePath() error = %v", err)
	}
	normalize := func(p string) string {
		return strings.TrimPrefix(filepath.Clean(p), "/private")
	}
	want := filepath.Join(root, ".gantt", "log", "gantt-20260222.log")
	if normalize(got) != normalize(want) {
		t.Fatalf("expected log path %q, got %q", want, got)
	}
}

// TestSanitizeLogFileStem verifies app names become safe file stems.
func TestSanitizeLogFileStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "gantt", want: "gantt"},
		{in: " my app ", want: "my-app"},
		{in: "a/b\\c:d", want: "a-b-c-d"},
		{in: "///", want: "gantt"},
		{in: "", want: "gantt"},
	}
	for _, tt := range tests {
		if got := sanitizeLogFileStem(tt.in); got != tt.want {
			t.Fatalf("sanitizeLogFileStem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
