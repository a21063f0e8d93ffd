package app

import (
	"github.com/hylla/gantt/internal/domain"
)

// Grouped layout spacing in pixels.
const (
	GroupMarginTop         = 30
	ContainerPaddingBottom = 50
)

// RowKind classifies layout rows.
type RowKind string

// RowBlock and related constants name the row kinds.
const (
	RowBlock   RowKind = "block"
	RowAddSlot RowKind = "add"
)

// Row is one horizontal band of the timeline in content coordinates.
type Row struct {
	Kind     RowKind
	BlockKey string
	GroupKey string
	Y        float64
	Height   float64
}

// GroupBand spans one group's block rows and its add slot.
type GroupBand struct {
	Key    string
	Y      float64
	Height float64
}

// Layout is the vertical arrangement for the active sort mode.
type Layout struct {
	Rows          []Row
	Groups        []GroupBand
	ContentHeight float64
}

// Layout computes row positions. List mode stacks blocks by index. Grouped
// mode gives each group a top margin, its rows, and one add slot, then pads
// the bottom.
func (s *Store) Layout() Layout {
	lh := float64(s.view.LineHeight)
	if s.view.SortMode == domain.SortList {
		rows := make([]Row, 0, len(s.blocks))
		for _, b := range s.blocks {
			rows = append(rows, Row{Kind: RowBlock, BlockKey: b.Key, GroupKey: b.GroupKey, Y: float64(b.Index) * lh, Height: lh})
		}
		return Layout{Rows: rows, ContentHeight: float64(len(s.blocks)) * lh}
	}

	groups := s.GroupMap()
	out := Layout{}
	y := 0.0
	for _, key := range s.GroupKeys() {
		y += GroupMarginTop
		band := GroupBand{Key: key, Y: y}
		for _, b := range groups[key] {
			out.Rows = append(out.Rows, Row{Kind: RowBlock, BlockKey: b.Key, GroupKey: key, Y: y, Height: lh})
			y += lh
		}
		out.Rows = append(out.Rows, Row{Kind: RowAddSlot, GroupKey: key, Y: y, Height: lh})
		y += lh
		band.Height = y - band.Y
		out.Groups = append(out.Groups, band)
	}
	out.ContentHeight = y + ContainerPaddingBottom
	return out
}

// ContentHeight returns the pixel height of the whole chart.
func (s *Store) ContentHeight() float64 {
	lh := float64(s.view.LineHeight)
	if s.view.SortMode == domain.SortList {
		return float64(len(s.blocks)) * lh
	}
	groups := float64(len(s.GroupKeys()))
	return groups*(lh+GroupMarginTop) + float64(len(s.blocks))*lh + ContainerPaddingBottom
}

// VisibleRows returns the layout rows intersecting the viewport. List mode
// uses the windowed index range directly.
func (s *Store) VisibleRows() []Row {
	layout := s.Layout()
	if s.view.SortMode == domain.SortList {
		r := s.BlockIndexRangeInView().Clamp(0, len(layout.Rows))
		return layout.Rows[r.Start:r.End]
	}
	top, bottom := s.scrollY, s.scrollY+s.height
	var out []Row
	for _, row := range layout.Rows {
		if row.Y+row.Height <= top || row.Y >= bottom {
			continue
		}
		out = append(out, row)
	}
	return out
}

// RowY returns the content y of key's row in the active layout.
func (s *Store) RowY(key string) (float64, bool) {
	for _, row := range s.Layout().Rows {
		if row.Kind == RowBlock && row.BlockKey == key {
			return row.Y, true
		}
	}
	return 0, false
}
