package milestone

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/teambition/rrule-go"

	"github.com/hylla/gantt/internal/app"
	"github.com/hylla/gantt/internal/component"
	"github.com/hylla/gantt/internal/domain"
	"github.com/hylla/gantt/internal/extension"
)

// ErrInvalidRule reports a recurrence rule that does not parse.
var ErrInvalidRule = errors.New("invalid recurrence rule")

const (
	labelPadding = 3
	labelInset   = 10
	// defaultGlyphWidth approximates one rendered label column in pixels.
	defaultGlyphWidth = 7
)

// Recurrence expands an RFC 5545 RRULE into milestones inside the store's
// time range.
type Recurrence struct {
	Rule string
	Text string
	rule *rrule.RRule
}

// Option customizes a Feature.
type Option func(*Feature)

// WithTextMeasure sets the function used to size milestone labels.
func WithTextMeasure(fn func(string) float64) Option {
	return func(f *Feature) {
		if fn != nil {
			f.measure = fn
		}
	}
}

// Feature keeps dated and recurring milestones and draws them on the
// timeline container.
type Feature struct {
	store     *app.Store
	dated     map[string]domain.Milestone
	recurring []Recurrence
	measure   func(string) float64
}

// Install registers the container extension for store's timeline.
func Install(store *app.Store, reg *extension.Registry, opts ...Option) *Feature {
	f := &Feature{
		store:   store,
		dated:   map[string]domain.Milestone{},
		measure: measureText,
	}
	for _, opt := range opts {
		opt(f)
	}
	extension.Register(reg, component.ContainerKind, f.containerExtension)
	return f
}

// Add inserts or replaces a dated milestone.
func (f *Feature) Add(m domain.Milestone) {
	f.dated[m.Key] = m
}

// Remove drops the dated milestone stored under key.
func (f *Feature) Remove(key string) bool {
	if _, ok := f.dated[key]; !ok {
		return false
	}
	delete(f.dated, key)
	return true
}

// AddRecurring parses rule and adds it. Rules without DTSTART are anchored at
// the store's start date.
func (f *Feature) AddRecurring(rule, text string) error {
	rule = strings.TrimSpace(rule)
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidRule, rule, err)
	}
	if !strings.Contains(strings.ToUpper(rule), "DTSTART") {
		r.DTStart(f.store.StartDate())
	}
	f.recurring = append(f.recurring, Recurrence{Rule: rule, Text: strings.TrimSpace(text), rule: r})
	return nil
}

// Milestones returns every milestone in date order. Recurring occurrences are
// limited to the store's time range; a dated milestone on the same day wins.
func (f *Feature) Milestones() []domain.Milestone {
	all := make(map[string]domain.Milestone, len(f.dated))
	for _, rec := range f.recurring {
		for _, at := range rec.rule.Between(f.store.StartDate(), f.store.EndDate(), true) {
			m, err := domain.NewMilestone("", rec.Text, domain.FormatDate(at.UTC()))
			if err != nil {
				continue
			}
			all[m.Key] = m
		}
	}
	for key, m := range f.dated {
		all[key] = m
	}
	out := make([]domain.Milestone, 0, len(all))
	for _, m := range all {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b domain.Milestone) int {
		if c := strings.Compare(a.Time, b.Time); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
	return out
}

// Milestone looks up a milestone by key.
func (f *Feature) Milestone(key string) (domain.Milestone, bool) {
	for _, m := range f.Milestones() {
		if m.Key == key {
			return m, true
		}
	}
	return domain.Milestone{}, false
}

// LabelWidth sizes a label to its text, at least one cell wide. Without a
// neighbour in the next cell it may spread across two cells.
func LabelWidth(textWidth, cellWidth float64, hasNext bool) float64 {
	lo := cellWidth - labelInset
	hi := 2*cellWidth - labelInset
	if hasNext {
		hi = lo
	}
	return max(lo, min(textWidth+2*labelPadding, hi))
}

func (f *Feature) containerExtension(container component.Container) extension.Lifecycle {
	return extension.Lifecycle{
		Update: func() {
			store := container.Store()
			mode := store.View().Mode
			cw := store.CurrentTimeCellWidth()
			height := store.ContentHeight()
			view := store.TimeCellRangeInView()
			scrollX, _ := store.Scroll()
			all := f.Milestones()
			byDate := make(map[string]bool, len(all))
			for _, m := range all {
				byDate[m.Time] = true
			}
			overlay := container.Overlay()
			for _, m := range all {
				at, err := domain.ParseDate(m.Time)
				if err != nil {
					continue
				}
				x := store.BlockXByDate(at)
				if cell := int(math.Floor((x + scrollX) / max(cw, 1))); !view.Contains(cell) {
					continue
				}
				next := domain.FormatDate(domain.AddUnits(at, 1, mode))
				overlay.AddSegment(component.Segment{X1: x, Y1: 0, X2: x, Y2: height, Tone: component.ToneMilestone})
				overlay.AddMark(component.Mark{
					X:     x,
					Y:     0,
					Width: LabelWidth(f.measure(m.Text), cw, byDate[next]),
					Text:  m.Text,
					Tone:  component.ToneMilestone,
				})
			}
		},
	}
}

func measureText(s string) float64 {
	return float64(lipgloss.Width(s) * defaultGlyphWidth)
}
