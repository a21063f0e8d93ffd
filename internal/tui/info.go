package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/hylla/gantt/internal/domain"
)

// minInfoWrap keeps tables in the info overlay legible on narrow terminals.
const minInfoWrap = 24

// infoRenderer styles block details with glamour. The term renderer is
// rebuilt only when the wrap width or theme changes.
type infoRenderer struct {
	wrap  int
	theme domain.Theme
	tr    *glamour.TermRenderer
}

func (r *infoRenderer) termRenderer(wrap int, theme domain.Theme) (*glamour.TermRenderer, error) {
	if r.tr != nil && r.wrap == wrap && r.theme == theme {
		return r.tr, nil
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(glamourStyle(theme)),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil, err
	}
	r.tr, r.wrap, r.theme = tr, wrap, theme
	return tr, nil
}

// render returns md styled for theme, or md itself when glamour fails.
func (r *infoRenderer) render(md string, width int, theme domain.Theme) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	tr, err := r.termRenderer(max(width, minInfoWrap), theme)
	if err != nil {
		return md
	}
	out, err := tr.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// glamourStyle picks the markdown style matching the theme.
func glamourStyle(theme domain.Theme) string {
	if theme == domain.ThemeDark {
		return "dark"
	}
	return "light"
}
