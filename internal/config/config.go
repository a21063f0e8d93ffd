package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/hylla/gantt/internal/domain"
)

// RollbackMode names how much of the chart a failed time change restores.
type RollbackMode string

const (
	RollbackTarget  RollbackMode = "target"
	RollbackSubtree RollbackMode = "subtree"
)

type Config struct {
	View        ViewConfig        `toml:"view"`
	Mutation    MutationConfig    `toml:"mutation"`
	Constraints ConstraintsConfig `toml:"constraints"`
	Milestones  MilestonesConfig  `toml:"milestones"`
	Logging     LoggingConfig     `toml:"logging"`
	TUI         TUIConfig         `toml:"tui"`
}

type ViewConfig struct {
	Mode       string          `toml:"mode"`
	LineHeight int             `toml:"line_height"`
	TableWidth int             `toml:"table_width"`
	SortMode   string          `toml:"sort_mode"` // list | group
	Theme      string          `toml:"theme"`     // light | dark
	StartTime  string          `toml:"start_time"`
	EndTime    string          `toml:"end_time"`
	CellWidth  CellWidthConfig `toml:"cell_width"`
}

type CellWidthConfig struct {
	Day   int `toml:"day"`
	Week  int `toml:"week"`
	Month int `toml:"month"`
	Year  int `toml:"year"`
}

type MutationConfig struct {
	Rollback       RollbackMode `toml:"rollback"`
	MaxAmendRounds int          `toml:"max_amend_rounds"`
}

type ConstraintsConfig struct {
	Enabled      bool         `toml:"enabled"`
	StrictCycles bool         `toml:"strict_cycles"`
	Links        []LinkConfig `toml:"links"`
}

// LinkConfig holds one dependency link as "<key>-<start|end>" items.
type LinkConfig struct {
	From string `toml:"from"`
	To   string `toml:"to"`
}

type MilestonesConfig struct {
	Enabled   bool              `toml:"enabled"`
	Items     []MilestoneConfig `toml:"items"`
	Recurring []RecurringConfig `toml:"recurring"`
}

type MilestoneConfig struct {
	Key  string `toml:"key"`
	Text string `toml:"text"`
	Time string `toml:"time"`
}

type RecurringConfig struct {
	Rule string `toml:"rule"`
	Text string `toml:"text"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type TUIConfig struct {
	ColumnPx    int       `toml:"column_px"`
	WatchConfig bool      `toml:"watch_config"`
	Keys        KeyConfig `toml:"keys"`
}

// KeyConfig overrides single-key bindings. Empty values keep the defaults.
type KeyConfig struct {
	CycleMode   string `toml:"cycle_mode"`
	ToggleSort  string `toml:"toggle_sort"`
	ToggleTheme string `toml:"toggle_theme"`
	JumpStart   string `toml:"jump_start"`
	JumpEnd     string `toml:"jump_end"`
	Info        string `toml:"info"`
	Yank        string `toml:"yank"`
}

func Default() Config {
	view := domain.DefaultViewConfig()
	return Config{
		View: ViewConfig{
			Mode:       string(view.Mode),
			LineHeight: view.LineHeight,
			TableWidth: view.TableWidth,
			SortMode:   string(view.SortMode),
			Theme:      string(view.Theme),
			StartTime:  "2024-01-01",
			EndTime:    "2024-05-01",
			CellWidth: CellWidthConfig{
				Day:   view.TimeCellWidths[domain.ModeDay],
				Week:  view.TimeCellWidths[domain.ModeWeek],
				Month: view.TimeCellWidths[domain.ModeMonth],
				Year:  view.TimeCellWidths[domain.ModeYear],
			},
		},
		Mutation: MutationConfig{
			Rollback:       RollbackTarget,
			MaxAmendRounds: 16,
		},
		Constraints: ConstraintsConfig{
			Enabled: true,
		},
		Milestones: MilestonesConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".gantt/log",
			},
		},
		TUI: TUIConfig{
			ColumnPx:    10,
			WatchConfig: true,
			Keys: KeyConfig{
				CycleMode:   "m",
				ToggleSort:  "s",
				ToggleTheme: "t",
				JumpStart:   "[",
				JumpEnd:     "]",
				Info:        "i",
				Yank:        "y",
			},
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := c.View.Domain(); err != nil {
		return fmt.Errorf("invalid view: %w", err)
	}
	span, err := domain.NormalizeSpan(domain.Span{Start: c.View.StartTime, End: c.View.EndTime})
	if err == nil && !span.Scheduled() {
		err = domain.ErrInvalidTimeRange
	}
	if err == nil {
		err = span.Validate()
	}
	if err != nil {
		return fmt.Errorf("invalid view.start_time/end_time %q..%q: %w", c.View.StartTime, c.View.EndTime, err)
	}

	switch c.Mutation.Rollback {
	case RollbackTarget, RollbackSubtree:
	default:
		return fmt.Errorf("invalid mutation.rollback: %q", c.Mutation.Rollback)
	}
	if c.Mutation.MaxAmendRounds < 1 {
		return errors.New("mutation.max_amend_rounds must be >= 1")
	}

	for idx, link := range c.Constraints.Links {
		if _, _, err := link.Parse(); err != nil {
			return fmt.Errorf("constraints.links[%d]: %w", idx, err)
		}
	}

	seenMilestone := map[string]struct{}{}
	for idx, item := range c.Milestones.Items {
		m, err := item.Milestone()
		if err != nil {
			return fmt.Errorf("milestones.items[%d]: %w", idx, err)
		}
		if _, ok := seenMilestone[m.Key]; ok {
			return fmt.Errorf("milestones.items[%d].key is duplicated: %s", idx, m.Key)
		}
		seenMilestone[m.Key] = struct{}{}
	}
	for idx, rec := range c.Milestones.Recurring {
		if strings.TrimSpace(rec.Rule) == "" {
			return fmt.Errorf("milestones.recurring[%d].rule is required", idx)
		}
	}

	if c.TUI.ColumnPx < 1 {
		return errors.New("tui.column_px must be >= 1")
	}
	return nil
}

// Domain converts the view section into a validated view config.
func (v ViewConfig) Domain() (domain.ViewConfig, error) {
	mode, err := domain.ParseViewMode(v.Mode)
	if err != nil {
		return domain.ViewConfig{}, err
	}
	sortMode, err := domain.ParseSortMode(v.SortMode)
	if err != nil {
		return domain.ViewConfig{}, err
	}
	theme, err := domain.ParseTheme(v.Theme)
	if err != nil {
		return domain.ViewConfig{}, err
	}
	out := domain.ViewConfig{
		Mode:       mode,
		LineHeight: v.LineHeight,
		TableWidth: v.TableWidth,
		SortMode:   sortMode,
		Theme:      theme,
		TimeCellWidths: map[domain.ViewMode]int{
			domain.ModeDay:   v.CellWidth.Day,
			domain.ModeWeek:  v.CellWidth.Week,
			domain.ModeMonth: v.CellWidth.Month,
			domain.ModeYear:  v.CellWidth.Year,
		},
	}
	if err := out.Validate(); err != nil {
		return domain.ViewConfig{}, err
	}
	return out, nil
}

// Parse splits both link items into constraint items.
func (l LinkConfig) Parse() (domain.ConstraintItem, domain.ConstraintItem, error) {
	from, err := domain.ParseConstraintItem(l.From)
	if err != nil {
		return domain.ConstraintItem{}, domain.ConstraintItem{}, fmt.Errorf("from: %w", err)
	}
	to, err := domain.ParseConstraintItem(l.To)
	if err != nil {
		return domain.ConstraintItem{}, domain.ConstraintItem{}, fmt.Errorf("to: %w", err)
	}
	return from, to, nil
}

// Milestone validates the item into a domain milestone.
func (m MilestoneConfig) Milestone() (domain.Milestone, error) {
	return domain.NewMilestone(m.Key, m.Text, m.Time)
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
