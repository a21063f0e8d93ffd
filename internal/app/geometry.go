package app

import (
	"time"

	"github.com/hylla/gantt/internal/domain"
	"github.com/hylla/gantt/internal/interaction"
	"github.com/hylla/gantt/internal/viewport"
)

// Jump offsets, in mode units, applied around a block edge when scrolling to it.
const (
	jumpLeadUnits  = 3
	jumpTrailUnits = 4
)

// Frame snapshots the mapping inputs for the current view.
func (s *Store) Frame() viewport.Frame {
	return viewport.Frame{
		Mode:       s.view.Mode,
		CellWidth:  float64(s.view.CellWidth()),
		LineHeight: float64(s.view.LineHeight),
		Start:      s.startTime,
		ScrollX:    s.scrollX,
		ScrollY:    s.scrollY,
		Width:      s.width,
		Height:     s.height,
	}
}

// CurrentTimeCellWidth returns the pixel width of one cell in the active mode.
func (s *Store) CurrentTimeCellWidth() float64 {
	return float64(s.view.CellWidth())
}

// ContentWidth returns the pixel width of the whole chart.
func (s *Store) ContentWidth() float64 {
	return s.Frame().ContentWidth(s.startTime, s.endTime)
}

// TimeCellRangeInView returns the time cells to materialize.
func (s *Store) TimeCellRangeInView() viewport.Range {
	total := s.Frame().CellCount(s.startTime, s.endTime)
	return s.Frame().ColumnRange().Clamp(0, total)
}

// BlockIndexRangeInView returns the list rows to materialize.
func (s *Store) BlockIndexRangeInView() viewport.Range {
	return s.Frame().RowRange()
}

// ViewStartDate returns the date of the first visible cell.
func (s *Store) ViewStartDate() time.Time {
	return s.Frame().ViewStartDate()
}

// ViewEndDate returns the date of the padded trailing cell.
func (s *Store) ViewEndDate() time.Time {
	return s.Frame().ViewEndDate()
}

// DateByX returns the date under on-screen x.
func (s *Store) DateByX(x float64) time.Time {
	return s.Frame().DateForX(x)
}

// BlockXByDate returns the on-screen x of date.
func (s *Store) BlockXByDate(date time.Time) float64 {
	return s.Frame().XForDate(date)
}

// ScrollXByDate returns the scroll offset placing date at the left edge.
func (s *Store) ScrollXByDate(date time.Time) float64 {
	return s.Frame().ScrollXForDate(date)
}

// BlockIndexByY returns the list index under on-screen y.
func (s *Store) BlockIndexByY(y float64) int {
	return s.Frame().RowIndexForY(y)
}

// BlockYByIndex returns the list y of index.
func (s *Store) BlockYByIndex(index int) float64 {
	return s.Frame().YForRowIndex(index)
}

// BlockWidth returns the pixel width of key's span, counting both edge cells.
func (s *Store) BlockWidth(key string) (float64, bool) {
	b, ok := s.BlockByKey(key)
	if !ok || !b.Scheduled() {
		return 0, false
	}
	start, end, err := blockDates(b)
	if err != nil {
		return 0, false
	}
	return float64(s.Frame().CellCount(start, end)) * s.CurrentTimeCellWidth(), true
}

// BlockPosition returns the list position of key's start cell.
func (s *Store) BlockPosition(key string) (interaction.Point, bool) {
	b, ok := s.BlockByKey(key)
	if !ok || b.StartTime == "" {
		return interaction.Point{}, false
	}
	start, err := domain.ParseDate(b.StartTime)
	if err != nil {
		return interaction.Point{}, false
	}
	return interaction.Point{X: s.BlockXByDate(start), Y: s.BlockYByIndex(b.Index)}, true
}

// FloorPositionInList snaps a pointer to the cell grid. When the row already
// holds a mounted block, that widget's position wins.
func (s *Store) FloorPositionInList(x, y float64) interaction.Point {
	date := s.DateByX(x)
	index := s.BlockIndexByY(y)
	if existing, ok := s.BlockByIndex(index); ok && s.locator != nil {
		if pos, ok := s.locator.BlockPosition(existing.Key); ok {
			return pos
		}
	}
	return interaction.Point{X: s.BlockXByDate(date), Y: s.BlockYByIndex(index)}
}

// StartOffscreen reports whether key starts before the visible window.
func (s *Store) StartOffscreen(key string) bool {
	b, ok := s.BlockByKey(key)
	if !ok || b.StartTime == "" {
		return false
	}
	start, err := domain.ParseDate(b.StartTime)
	if err != nil {
		return false
	}
	return s.ViewStartDate().After(start)
}

// EndOffscreen reports whether key ends after the visible window.
func (s *Store) EndOffscreen(key string) bool {
	b, ok := s.BlockByKey(key)
	if !ok || b.EndTime == "" {
		return false
	}
	end, err := domain.ParseDate(b.EndTime)
	if err != nil {
		return false
	}
	return s.ViewEndDate().Before(end)
}

// JumpToBlockStart scrolls so key's start sits a few cells from the left edge.
func (s *Store) JumpToBlockStart(key string) bool {
	b, ok := s.BlockByKey(key)
	if !ok || b.StartTime == "" {
		return false
	}
	start, err := domain.ParseDate(b.StartTime)
	if err != nil {
		return false
	}
	x := s.ScrollXByDate(domain.AddUnits(start, -jumpLeadUnits, s.view.Mode))
	s.SetScroll(max(x, 0), s.scrollY)
	return true
}

// JumpToBlockEnd scrolls so key's end sits a few cells from the right edge.
func (s *Store) JumpToBlockEnd(key string) bool {
	b, ok := s.BlockByKey(key)
	if !ok || b.EndTime == "" {
		return false
	}
	end, err := domain.ParseDate(b.EndTime)
	if err != nil {
		return false
	}
	page := s.width
	x := s.ScrollXByDate(domain.AddUnits(end, jumpTrailUnits, s.view.Mode)) - page
	s.SetScroll(min(x, s.ContentWidth()-page), s.scrollY)
	return true
}

func blockDates(b domain.Block) (time.Time, time.Time, error) {
	start, err := domain.ParseDate(b.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := domain.ParseDate(b.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
