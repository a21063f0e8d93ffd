// Package viewport maps between calendar time, row indices, and pixel
// coordinates, and derives the cell and row ranges a renderer must
// materialize for the current scroll position.
//
// Everything here is a pure function of a Frame value; callers rebuild the
// Frame whenever mode, scroll, size, or row height change.
package viewport

import (
	"math"
	"time"

	"github.com/hylla/gantt/internal/domain"
)

// Frame is a snapshot of the inputs every mapping depends on.
type Frame struct {
	Mode       domain.ViewMode
	CellWidth  float64
	LineHeight float64
	Start      time.Time
	ScrollX    float64
	ScrollY    float64
	Width      float64
	Height     float64
}

// Range is an inclusive-start, exclusive-end index window.
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in r.
func (r Range) Len() int {
	return max(0, r.End-r.Start)
}

// Contains reports whether i lies in [Start, End).
func (r Range) Contains(i int) bool {
	return i >= r.Start && i < r.End
}

// Clamp intersects r with [lo, hi).
func (r Range) Clamp(lo, hi int) Range {
	out := Range{Start: max(r.Start, lo), End: min(r.End, hi)}
	if out.End < out.Start {
		out.End = out.Start
	}
	return out
}

// ViewStartCellIndex is the first time cell intersecting the viewport.
func (f Frame) ViewStartCellIndex() int {
	if f.CellWidth <= 0 {
		return 0
	}
	return int(math.Floor(f.ScrollX / f.CellWidth))
}

// ViewEndCellIndex pads one cell past the trailing edge so scrolling never
// exposes an unmaterialized column.
func (f Frame) ViewEndCellIndex() int {
	if f.CellWidth <= 0 {
		return 0
	}
	start := float64(f.ViewStartCellIndex())
	return int(math.Ceil(start+f.Width/f.CellWidth)) + 1
}

// ColumnRange returns the visible time-cell window.
func (f Frame) ColumnRange() Range {
	return Range{Start: f.ViewStartCellIndex(), End: f.ViewEndCellIndex()}
}

// ViewStartRowIndex is the first row intersecting the viewport.
func (f Frame) ViewStartRowIndex() int {
	if f.LineHeight <= 0 {
		return 0
	}
	return int(math.Floor(f.ScrollY / f.LineHeight))
}

// ViewEndRowIndex pads one row past the bottom edge.
func (f Frame) ViewEndRowIndex() int {
	if f.LineHeight <= 0 {
		return 0
	}
	start := float64(f.ViewStartRowIndex())
	return int(math.Ceil(start+f.Height/f.LineHeight)) + 1
}

// RowRange returns the visible row window.
func (f Frame) RowRange() Range {
	return Range{Start: f.ViewStartRowIndex(), End: f.ViewEndRowIndex()}
}

// ViewStartDate is the date of the first visible cell.
func (f Frame) ViewStartDate() time.Time {
	return domain.AddUnits(f.Start, f.ViewStartCellIndex(), f.Mode)
}

// ViewEndDate is the date of the padded trailing cell.
func (f Frame) ViewEndDate() time.Time {
	return domain.AddUnits(f.Start, f.ViewEndCellIndex(), f.Mode)
}

// OffsetXInView is the on-screen x of the first visible cell's left edge (<= 0).
func (f Frame) OffsetXInView() float64 {
	return float64(f.ViewStartCellIndex())*f.CellWidth - f.ScrollX
}

// DateForX returns the date of the cell under on-screen x.
func (f Frame) DateForX(x float64) time.Time {
	if f.CellWidth <= 0 {
		return f.ViewStartDate()
	}
	idx := int(math.Floor((x - f.OffsetXInView()) / f.CellWidth))
	return domain.AddUnits(f.ViewStartDate(), idx, f.Mode)
}

// XForDate returns the on-screen x of date's cell.
func (f Frame) XForDate(date time.Time) float64 {
	diff := domain.DiffUnits(date, f.Start, f.Mode)
	return math.Floor(float64(diff)*f.CellWidth - f.ScrollX)
}

// ScrollXForDate returns the scroll offset that puts date's cell at the left edge.
func (f Frame) ScrollXForDate(date time.Time) float64 {
	diff := domain.DiffUnits(date, f.Start, f.Mode)
	return float64(diff) * f.CellWidth
}

// RowIndexForY returns the list row under on-screen y.
func (f Frame) RowIndexForY(y float64) int {
	if f.LineHeight <= 0 {
		return 0
	}
	return int(math.Floor((y - f.ScrollY) / f.LineHeight))
}

// YForRowIndex returns the content y of row i.
func (f Frame) YForRowIndex(i int) float64 {
	return float64(i) * f.LineHeight
}

// ContentWidth is the pixel width of [start, end] inclusive of the end cell.
func (f Frame) ContentWidth(start, end time.Time) float64 {
	return f.CellWidth * float64(domain.DiffUnits(end, start, f.Mode)+1)
}

// CellCount returns how many cells of the active mode the span covers, counting both edges.
func (f Frame) CellCount(start, end time.Time) int {
	return domain.DiffUnits(end, start, f.Mode) + 1
}
