package app

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hylla/gantt/internal/domain"
)

// Default chart bounds used when none are configured.
const (
	DefaultStartTime = "2024-01-01"
	DefaultEndTime   = "2024-05-01"
)

// DefaultMaxAmendRounds bounds how often one ChangeBlockTime call may re-run
// amendment before giving up.
const DefaultMaxAmendRounds = 16

// RollbackMode selects what a failed time change restores.
type RollbackMode string

// RollbackTarget and related constants define package defaults.
const (
	RollbackTarget  RollbackMode = "target"
	RollbackSubtree RollbackMode = "subtree"
)

// ParseRollbackMode validates raw as a rollback mode. Empty selects RollbackTarget.
func ParseRollbackMode(raw string) (RollbackMode, error) {
	switch mode := RollbackMode(strings.TrimSpace(strings.ToLower(raw))); mode {
	case "":
		return RollbackTarget, nil
	case RollbackTarget, RollbackSubtree:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRollback, raw)
	}
}

// StoreConfig holds configuration for the block store.
type StoreConfig struct {
	View           domain.ViewConfig
	StartTime      string
	EndTime        string
	Rollback       RollbackMode
	MaxAmendRounds int
	IDGen          IDGenerator
	Logger         Logger
	Locator        Locator
}

// Store owns the block collection, the view configuration, and the scroll
// state. It is the only writer of block fields.
type Store struct {
	blocks []domain.Block

	view      domain.ViewConfig
	startTime time.Time
	endTime   time.Time
	scrollX   float64
	scrollY   float64
	width     float64
	height    float64

	rollback       RollbackMode
	maxAmendRounds int
	idGen          IDGenerator
	logger         Logger
	locator        Locator

	amendHooks []TimeAmendHook
	postHooks  []PostTimeHook

	subscribers []subscriber
	nextSubID   int
	version     uint64
	depth       int
}

// NewStore constructs an empty store.
func NewStore(cfg StoreConfig) (*Store, error) {
	view := cfg.View
	if view.Mode == "" {
		view = domain.DefaultViewConfig()
	}
	view = view.Clone()
	if err := view.Validate(); err != nil {
		return nil, fmt.Errorf("view config: %w", err)
	}
	if cfg.StartTime == "" {
		cfg.StartTime = DefaultStartTime
	}
	if cfg.EndTime == "" {
		cfg.EndTime = DefaultEndTime
	}
	start, end, err := parseRange(cfg.StartTime, cfg.EndTime)
	if err != nil {
		return nil, err
	}
	rollback, err := ParseRollbackMode(string(cfg.Rollback))
	if err != nil {
		return nil, err
	}
	if cfg.MaxAmendRounds <= 0 {
		cfg.MaxAmendRounds = DefaultMaxAmendRounds
	}
	if cfg.IDGen == nil {
		cfg.IDGen = uuid.NewString
	}
	if cfg.Logger == nil {
		cfg.Logger = discardLogger()
	}
	return &Store{
		view:           view,
		startTime:      start,
		endTime:        end,
		rollback:       rollback,
		maxAmendRounds: cfg.MaxAmendRounds,
		idGen:          cfg.IDGen,
		logger:         cfg.Logger,
		locator:        cfg.Locator,
	}, nil
}

func parseRange(rawStart, rawEnd string) (time.Time, time.Time, error) {
	start, err := domain.ParseDate(rawStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start time: %w", err)
	}
	end, err := domain.ParseDate(rawEnd)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end time: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, domain.ErrInvalidTimeRange
	}
	return start, end, nil
}

// SetLocator attaches the widget locator used by FloorPositionInList.
func (s *Store) SetLocator(l Locator) {
	s.locator = l
}

// Logger returns the store's logger so features can report through it.
func (s *Store) Logger() Logger {
	return s.logger
}

// Blocks returns a copy of every block in index order.
func (s *Store) Blocks() []domain.Block {
	return slices.Clone(s.blocks)
}

// Len returns the number of blocks.
func (s *Store) Len() int {
	return len(s.blocks)
}

// BlockByKey returns the block for key.
func (s *Store) BlockByKey(key string) (domain.Block, bool) {
	i := s.find(key)
	if i < 0 {
		return domain.Block{}, false
	}
	return s.blocks[i], true
}

// BlockByIndex returns the block displayed at index.
func (s *Store) BlockByIndex(index int) (domain.Block, bool) {
	if index < 0 || index >= len(s.blocks) {
		return domain.Block{}, false
	}
	return s.blocks[index], true
}

// BlockTree groups blocks by parent key. Root blocks sit under "".
func (s *Store) BlockTree() map[string][]domain.Block {
	out := map[string][]domain.Block{}
	for _, b := range s.blocks {
		out[b.ParentKey] = append(out[b.ParentKey], b)
	}
	return out
}

// Children returns the direct children of key in index order.
func (s *Store) Children(key string) []domain.Block {
	var out []domain.Block
	for _, b := range s.blocks {
		if b.ParentKey == key && key != "" {
			out = append(out, b)
		}
	}
	return out
}

// GroupMap groups blocks by group key. Ungrouped blocks sit under "".
func (s *Store) GroupMap() map[string][]domain.Block {
	out := map[string][]domain.Block{}
	for _, b := range s.blocks {
		out[b.GroupKey] = append(out[b.GroupKey], b)
	}
	return out
}

// GroupKeys returns named groups by first appearance in index order,
// followed by "" when any block is ungrouped.
func (s *Store) GroupKeys() []string {
	seen := map[string]bool{}
	var keys []string
	ungrouped := false
	for _, b := range s.blocks {
		if b.GroupKey == "" {
			ungrouped = true
			continue
		}
		if !seen[b.GroupKey] {
			seen[b.GroupKey] = true
			keys = append(keys, b.GroupKey)
		}
	}
	if ungrouped {
		keys = append(keys, "")
	}
	return keys
}

func (s *Store) find(key string) int {
	for i := range s.blocks {
		if s.blocks[i].Key == key {
			return i
		}
	}
	return -1
}

// View returns a copy of the view configuration.
func (s *Store) View() domain.ViewConfig {
	return s.view.Clone()
}

// StartDate returns the chart's first date.
func (s *Store) StartDate() time.Time {
	return s.startTime
}

// EndDate returns the chart's last date.
func (s *Store) EndDate() time.Time {
	return s.endTime
}

// Scroll returns the current scroll offsets.
func (s *Store) Scroll() (float64, float64) {
	return s.scrollX, s.scrollY
}

// Size returns the viewport size in pixels.
func (s *Store) Size() (float64, float64) {
	return s.width, s.height
}

// SetMode switches the time granularity.
func (s *Store) SetMode(mode domain.ViewMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidMode, mode)
	}
	if s.view.Mode == mode {
		return nil
	}
	s.view.Mode = mode
	s.clampScroll()
	s.changed(EventView, "")
	return nil
}

// SetSortMode switches between list and grouped display.
func (s *Store) SetSortMode(mode domain.SortMode) error {
	if _, err := domain.ParseSortMode(string(mode)); err != nil {
		return err
	}
	if s.view.SortMode == mode {
		return nil
	}
	s.view.SortMode = mode
	s.clampScroll()
	s.changed(EventView, "")
	return nil
}

// SetTheme switches the color theme.
func (s *Store) SetTheme(theme domain.Theme) error {
	if _, err := domain.ParseTheme(string(theme)); err != nil {
		return err
	}
	if s.view.Theme == theme {
		return nil
	}
	s.view.Theme = theme
	s.changed(EventView, "")
	return nil
}

// SetLineHeight changes the row height.
func (s *Store) SetLineHeight(h int) error {
	if h <= 0 {
		return domain.ErrInvalidLineHeight
	}
	if s.view.LineHeight == h {
		return nil
	}
	s.view.LineHeight = h
	s.clampScroll()
	s.changed(EventView, "")
	return nil
}

// SetTableWidth changes the width of the side table.
func (s *Store) SetTableWidth(w int) error {
	if w < 0 {
		return fmt.Errorf("table width must be >= 0, got %d", w)
	}
	if s.view.TableWidth == w {
		return nil
	}
	s.view.TableWidth = w
	s.changed(EventView, "")
	return nil
}

// SetTimeCellWidth changes the cell width of one mode.
func (s *Store) SetTimeCellWidth(mode domain.ViewMode, w int) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidMode, mode)
	}
	if w <= 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidCellWidth, mode)
	}
	if s.view.TimeCellWidths[mode] == w {
		return nil
	}
	s.view.TimeCellWidths[mode] = w
	s.clampScroll()
	s.changed(EventView, "")
	return nil
}

// ApplyView replaces every view setting at once.
func (s *Store) ApplyView(view domain.ViewConfig) error {
	view = view.Clone()
	if err := view.Validate(); err != nil {
		return err
	}
	s.view = view
	s.clampScroll()
	s.changed(EventView, "")
	return nil
}

// SetTimeRange changes the chart bounds.
func (s *Store) SetTimeRange(start, end string) error {
	st, et, err := parseRange(start, end)
	if err != nil {
		return err
	}
	s.startTime, s.endTime = st, et
	s.clampScroll()
	s.changed(EventView, "")
	return nil
}

// SetSize records the viewport size in pixels.
func (s *Store) SetSize(width, height float64) {
	s.width = max(0, width)
	s.height = max(0, height)
	s.clampScroll()
	s.changed(EventScroll, "")
}

// SetScroll moves the viewport, clamped to the content extents.
func (s *Store) SetScroll(x, y float64) {
	s.scrollX, s.scrollY = x, y
	s.clampScroll()
	s.changed(EventScroll, "")
}

// ScrollBy moves the viewport relative to its current offset.
func (s *Store) ScrollBy(dx, dy float64) {
	s.SetScroll(s.scrollX+dx, s.scrollY+dy)
}

func (s *Store) clampScroll() {
	maxX := max(0, s.ContentWidth()-s.width)
	maxY := max(0, s.ContentHeight()-s.height)
	s.scrollX = min(max(s.scrollX, 0), maxX)
	s.scrollY = min(max(s.scrollY, 0), maxY)
}
