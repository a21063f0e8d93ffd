package tui

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/hylla/gantt/internal/component"
	"github.com/hylla/gantt/internal/domain"
)

// palette holds the colors one theme draws with.
type palette struct {
	text      color.Color
	muted     color.Color
	dim       color.Color
	accent    color.Color
	bar       color.Color
	barText   color.Color
	selected  color.Color
	ghost     color.Color
	milestone color.Color
	err       color.Color
	rowFocus  color.Color
}

func paletteFor(theme domain.Theme) palette {
	if theme == domain.ThemeDark {
		return palette{
			text:      lipgloss.Color("252"),
			muted:     lipgloss.Color("241"),
			dim:       lipgloss.Color("238"),
			accent:    lipgloss.Color("111"),
			bar:       lipgloss.Color("24"),
			barText:   lipgloss.Color("255"),
			selected:  lipgloss.Color("62"),
			ghost:     lipgloss.Color("245"),
			milestone: lipgloss.Color("215"),
			err:       lipgloss.Color("203"),
			rowFocus:  lipgloss.Color("236"),
		}
	}
	return palette{
		text:      lipgloss.Color("235"),
		muted:     lipgloss.Color("244"),
		dim:       lipgloss.Color("250"),
		accent:    lipgloss.Color("26"),
		bar:       lipgloss.Color("153"),
		barText:   lipgloss.Color("17"),
		selected:  lipgloss.Color("69"),
		ghost:     lipgloss.Color("246"),
		milestone: lipgloss.Color("166"),
		err:       lipgloss.Color("160"),
		rowFocus:  lipgloss.Color("255"),
	}
}

// tone maps a decoration tone onto the palette.
func (p palette) tone(t component.Tone) color.Color {
	switch t {
	case component.ToneMuted:
		return p.muted
	case component.ToneError:
		return p.err
	case component.ToneMilestone:
		return p.milestone
	default:
		return p.accent
	}
}
