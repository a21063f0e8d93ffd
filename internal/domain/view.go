package domain

import (
	"fmt"
	"strings"
)

// SortMode selects flat-list or grouped row layout.
type SortMode string

// SortMode values.
const (
	SortList  SortMode = "list"
	SortGroup SortMode = "group"
)

// Theme selects the color palette.
type Theme string

// Theme values.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseSortMode normalizes raw into a supported sort mode.
func ParseSortMode(raw string) (SortMode, error) {
	switch mode := SortMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case SortList, SortGroup:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSortMode, raw)
	}
}

// ParseTheme normalizes raw into a supported theme.
func ParseTheme(raw string) (Theme, error) {
	switch theme := Theme(strings.ToLower(strings.TrimSpace(raw))); theme {
	case ThemeLight, ThemeDark:
		return theme, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, raw)
	}
}

// ViewConfig holds the chart's presentation settings.
type ViewConfig struct {
	Mode           ViewMode
	LineHeight     int
	TableWidth     int
	SortMode       SortMode
	Theme          Theme
	TimeCellWidths map[ViewMode]int
}

// DefaultViewConfig returns the stock view settings.
func DefaultViewConfig() ViewConfig {
	return ViewConfig{
		Mode:       ModeDay,
		LineHeight: 32,
		TableWidth: 250,
		SortMode:   SortGroup,
		Theme:      ThemeLight,
		TimeCellWidths: map[ViewMode]int{
			ModeDay:   60,
			ModeWeek:  90,
			ModeMonth: 60,
			ModeYear:  60,
		},
	}
}

// CellWidth returns the pixel width of one time cell in the active mode.
func (c ViewConfig) CellWidth() int {
	return c.TimeCellWidths[c.Mode]
}

// Clone returns a deep copy.
func (c ViewConfig) Clone() ViewConfig {
	out := c
	out.TimeCellWidths = make(map[ViewMode]int, len(c.TimeCellWidths))
	for mode, width := range c.TimeCellWidths {
		out.TimeCellWidths[mode] = width
	}
	return out
}

// Validate checks every field against its supported range.
func (c ViewConfig) Validate() error {
	if !c.Mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}
	if _, err := ParseSortMode(string(c.SortMode)); err != nil {
		return err
	}
	if _, err := ParseTheme(string(c.Theme)); err != nil {
		return err
	}
	if c.LineHeight <= 0 {
		return ErrInvalidLineHeight
	}
	if c.TableWidth < 0 {
		return fmt.Errorf("table width must be >= 0, got %d", c.TableWidth)
	}
	for _, mode := range validModes {
		if c.TimeCellWidths[mode] <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidCellWidth, mode)
		}
	}
	return nil
}
