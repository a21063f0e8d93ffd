package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hylla/gantt/internal/app"
	"github.com/hylla/gantt/internal/config"
	"github.com/hylla/gantt/internal/domain"
	"github.com/hylla/gantt/internal/extension"
	"github.com/hylla/gantt/internal/features/constraint"
	"github.com/hylla/gantt/internal/features/milestone"
	"github.com/hylla/gantt/internal/platform"
	"github.com/hylla/gantt/internal/tui"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// main handles main.
func main() {
	root := newRootCmd(os.Stdout, os.Stderr)
	if err := fang.Execute(context.Background(), root, fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// run executes the command tree with explicit args, for tests.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// options holds the resolved global flags.
type options struct {
	configPath string
	appName    string
	devMode    bool
	mode       string
	theme      string
	sortMode   string
	logDir     string
}

// newRootCmd builds the gantt command tree. Flags are layered over .env files
// and GANTT_* environment variables through viper.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	v := viper.New()
	root := &cobra.Command{
		Use:           "gantt",
		Short:         "Interactive terminal Gantt chart",
		Long:          "gantt renders a scrollable Gantt chart of time blocks with drag, resize, dependency links, and milestones.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := resolveOptions(v)
			if err != nil {
				return err
			}
			return runTUI(cmd.Context(), opts, stderr)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	defaultDev := version == "dev"
	flags := root.PersistentFlags()
	flags.String("config", "", "path to config TOML")
	flags.String("app", "gantt", "application name for config/data path resolution")
	flags.Bool("dev", defaultDev, "use dev mode paths (<app>-dev)")
	flags.String("mode", "", "initial view mode (day|week|month|year)")
	flags.String("theme", "", "color theme (light|dark)")
	flags.String("sort", "", "row layout (list|group)")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		// A missing .env is fine; only real parse failures matter.
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		v.SetEnvPrefix("GANTT")
		v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		v.AutomaticEnv()
		return v.BindPFlags(cmd.Flags())
	}

	root.AddCommand(newPathsCmd(v, stdout), newInspectCmd(v, stdout))
	return root
}

// resolveOptions reads the layered flag values and loads the per-app .env.
func resolveOptions(v *viper.Viper) (options, error) {
	opts := options{
		configPath: strings.TrimSpace(v.GetString("config")),
		appName:    strings.TrimSpace(v.GetString("app")),
		devMode:    v.GetBool("dev"),
		mode:       strings.TrimSpace(v.GetString("mode")),
		theme:      strings.TrimSpace(v.GetString("theme")),
		sortMode:   strings.TrimSpace(v.GetString("sort")),
	}
	if opts.appName == "" {
		opts.appName = "gantt"
	}
	paths, err := platform.DefaultPathsWithOptions(platform.Options{AppName: opts.appName, DevMode: opts.devMode})
	if err != nil {
		return options{}, err
	}
	if err := godotenv.Load(paths.EnvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return options{}, fmt.Errorf("load %s: %w", paths.EnvPath, err)
	}
	if opts.configPath == "" {
		opts.configPath = paths.ConfigPath
	}
	opts.logDir = paths.LogDir
	return opts, nil
}

// newPathsCmd prints the resolved per-OS paths.
func newPathsCmd(v *viper.Viper, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			opts, err := resolveOptions(v)
			if err != nil {
				return err
			}
			paths, err := platform.DefaultPathsWithOptions(platform.Options{AppName: opts.appName, DevMode: opts.devMode})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", opts.configPath)
			_, _ = fmt.Fprintf(stdout, "env: %s\n", paths.EnvPath)
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "log_dir: %s\n", paths.LogDir)
			return nil
		},
	}
}

// chart bundles a seeded store with its installed features.
type chart struct {
	store       *app.Store
	extensions  *extension.Registry
	constraints *constraint.Feature
	milestones  *milestone.Feature
}

// buildChart constructs the store from cfg, seeds the demo plan, and installs
// the enabled features.
func buildChart(cfg config.Config, logger app.Logger) (chart, error) {
	view, err := cfg.View.Domain()
	if err != nil {
		return chart{}, fmt.Errorf("view config: %w", err)
	}
	store, err := app.NewStore(app.StoreConfig{
		View:           view,
		StartTime:      cfg.View.StartTime,
		EndTime:        cfg.View.EndTime,
		Rollback:       app.RollbackMode(cfg.Mutation.Rollback),
		MaxAmendRounds: cfg.Mutation.MaxAmendRounds,
		Logger:         logger,
	})
	if err != nil {
		return chart{}, fmt.Errorf("new store: %w", err)
	}
	if err := seedDemo(store); err != nil {
		return chart{}, fmt.Errorf("seed demo plan: %w", err)
	}

	out := chart{store: store, extensions: extension.NewRegistry(extension.WithLogger(logger))}
	if cfg.Constraints.Enabled {
		graph := constraint.NewGraph(constraint.WithStrictCycles(cfg.Constraints.StrictCycles))
		out.constraints = constraint.Install(store, out.extensions, graph)
		links := demoLinks()
		for idx, lc := range cfg.Constraints.Links {
			from, to, err := lc.Parse()
			if err != nil {
				return chart{}, fmt.Errorf("constraints.links[%d]: %w", idx, err)
			}
			links = append(links, constraint.Link{From: from, To: to})
		}
		if err := out.constraints.LinkAll(links); err != nil {
			return chart{}, fmt.Errorf("link constraints: %w", err)
		}
	}
	if cfg.Milestones.Enabled {
		out.milestones = milestone.Install(store, out.extensions)
		if len(cfg.Milestones.Items) == 0 && len(cfg.Milestones.Recurring) == 0 {
			for _, m := range demoMilestones() {
				out.milestones.Add(m)
			}
		}
		for idx, item := range cfg.Milestones.Items {
			m, err := item.Milestone()
			if err != nil {
				return chart{}, fmt.Errorf("milestones.items[%d]: %w", idx, err)
			}
			out.milestones.Add(m)
		}
		for idx, rec := range cfg.Milestones.Recurring {
			if err := out.milestones.AddRecurring(rec.Rule, rec.Text); err != nil {
				return chart{}, fmt.Errorf("milestones.recurring[%d]: %w", idx, err)
			}
		}
	}
	return out, nil
}

// loadConfig reads the TOML config and applies flag overrides.
func loadConfig(opts options, defaults config.Config) (config.Config, error) {
	cfg, err := config.Load(opts.configPath, defaults)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config %q: %w", opts.configPath, err)
	}
	if err := applyViewOverrides(&cfg, opts); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// applyViewOverrides lets --mode, --theme, and --sort win over the file.
func applyViewOverrides(cfg *config.Config, opts options) error {
	if opts.mode != "" {
		mode, err := domain.ParseViewMode(opts.mode)
		if err != nil {
			return fmt.Errorf("--mode: %w", err)
		}
		cfg.View.Mode = string(mode)
	}
	if opts.theme != "" {
		theme, err := domain.ParseTheme(opts.theme)
		if err != nil {
			return fmt.Errorf("--theme: %w", err)
		}
		cfg.View.Theme = string(theme)
	}
	if opts.sortMode != "" {
		sortMode, err := domain.ParseSortMode(opts.sortMode)
		if err != nil {
			return fmt.Errorf("--sort: %w", err)
		}
		cfg.View.SortMode = string(sortMode)
	}
	return nil
}

// runTUI runs the interactive chart until the user quits.
func runTUI(ctx context.Context, opts options, stderr io.Writer) error {
	defaults := config.Default()
	cfg, err := loadConfig(opts, defaults)
	if err != nil {
		return err
	}

	logger, err := newRuntimeLogger(stderr, opts.appName, opts.devMode, cfg.Logging, opts.logDir, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	// Keep TUI rendering clean: runtime logs stay in the dev-file sink while the chart is active.
	logger.SetConsoleEnabled(false)
	defer func() {
		if closeErr := logger.Close(); closeErr != nil {
			_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
		}
	}()

	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode, "config_path", opts.configPath)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	c, err := buildChart(cfg, logger)
	if err != nil {
		logger.Error("chart setup failed", "err", err)
		return err
	}
	logger.Info("chart ready", "blocks", c.store.Len(), "constraints", c.constraints != nil, "milestones", c.milestones != nil)

	modelOpts := []tui.Option{
		tui.WithExtensions(c.extensions),
		tui.WithConstraints(c.constraints),
		tui.WithLogger(logger),
		tui.WithRuntimeConfig(toTUIRuntimeConfig(cfg)),
		tui.WithReloadConfigCallback(func() (tui.RuntimeConfig, error) {
			logger.Info("runtime config reload requested", "config_path", opts.configPath)
			reloaded, err := loadConfig(opts, defaults)
			if err != nil {
				logger.Error("runtime config reload failed", "config_path", opts.configPath, "err", err)
				return tui.RuntimeConfig{}, err
			}
			logger.Info("runtime config reload complete", "config_path", opts.configPath)
			return toTUIRuntimeConfig(reloaded), nil
		}),
	}

	if cfg.TUI.WatchConfig {
		updates, stop, err := watchConfig(ctx, opts, defaults, logger)
		if err != nil {
			logger.Warn("config watch unavailable", "config_path", opts.configPath, "err", err)
		} else {
			defer stop()
			modelOpts = append(modelOpts, tui.WithRuntimeUpdates(updates))
		}
	}

	m := tui.NewModel(c.store, modelOpts...)
	logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("command flow complete", "command", "tui")
	return nil
}

// watchConfig forwards debounced config file changes as runtime updates.
func watchConfig(ctx context.Context, opts options, defaults config.Config, logger *runtimeLogger) (<-chan tui.RuntimeUpdate, func(), error) {
	w, err := config.NewWatcher(opts.configPath, defaults, config.DefaultDebounce)
	if err != nil {
		return nil, nil, err
	}
	if err := w.Start(); err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan tui.RuntimeUpdate, 1)
	go func() {
		defer close(out)
		for reload := range w.Reloads {
			update := tui.RuntimeUpdate{Err: reload.Err}
			if reload.Err == nil {
				cfg := reload.Config
				if err := applyViewOverrides(&cfg, opts); err != nil {
					update.Err = err
				} else {
					update.Config = toTUIRuntimeConfig(cfg)
				}
			}
			logger.Info("config file changed", "config_path", w.Path, "err", update.Err)
			select {
			case out <- update:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, func() {
		cancel()
		w.Stop()
	}, nil
}

// toTUIRuntimeConfig maps persisted config values into runtime model options.
func toTUIRuntimeConfig(cfg config.Config) tui.RuntimeConfig {
	view, err := cfg.View.Domain()
	if err != nil {
		view = domain.ViewConfig{}
	}
	return tui.RuntimeConfig{
		View:     view,
		ColumnPx: cfg.TUI.ColumnPx,
		Keys: tui.KeyConfig{
			CycleMode:   cfg.TUI.Keys.CycleMode,
			ToggleSort:  cfg.TUI.Keys.ToggleSort,
			ToggleTheme: cfg.TUI.Keys.ToggleTheme,
			JumpStart:   cfg.TUI.Keys.JumpStart,
			JumpEnd:     cfg.TUI.Keys.JumpEnd,
			Info:        cfg.TUI.Keys.Info,
			Yank:        cfg.TUI.Keys.Yank,
		},
	}
}
