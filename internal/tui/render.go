package tui

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"charm.land/bubbles/v2/help"
	"charm.land/lipgloss/v2"

	"github.com/hylla/gantt/internal/app"
	"github.com/hylla/gantt/internal/component"
	"github.com/hylla/gantt/internal/domain"
	"github.com/hylla/gantt/internal/state"
)

// slotKind classifies one terminal line of the body.
type slotKind int

const (
	slotBlock slotKind = iota
	slotAdd
	slotGroup
)

// slot is one terminal line mapped to a content-y band. Group headers take
// their own line so grouped margins stay readable at any line height.
type slot struct {
	kind  slotKind
	row   app.Row
	group string
	y     float64
	h     float64
}

// bodySlots lists every body line of the active layout in order.
func bodySlots(store *app.Store) []slot {
	layout := store.Layout()
	grouped := store.View().SortMode == domain.SortGroup
	out := make([]slot, 0, len(layout.Rows)+len(layout.Groups))
	prevGroup := ""
	for idx, row := range layout.Rows {
		if grouped && (idx == 0 || row.GroupKey != prevGroup) {
			out = append(out, slot{kind: slotGroup, group: row.GroupKey, y: row.Y - app.GroupMarginTop, h: app.GroupMarginTop})
		}
		prevGroup = row.GroupKey
		kind := slotBlock
		if row.Kind == app.RowAddSlot {
			kind = slotAdd
		}
		out = append(out, slot{kind: kind, row: row, group: row.GroupKey, y: row.Y, h: row.Height})
	}
	return out
}

// topSlot returns the first slot still visible at scrollY.
func topSlot(slots []slot, scrollY float64) int {
	for idx, s := range slots {
		if s.y+s.h > scrollY {
			return idx
		}
	}
	return max(0, len(slots)-1)
}

// slotAtY returns the slot whose band holds content y.
func slotAtY(slots []slot, y float64) (int, bool) {
	for idx, s := range slots {
		if y >= s.y && y < s.y+s.h {
			return idx, true
		}
	}
	return 0, false
}

// paint selects how one canvas glyph is styled.
type paint int

const (
	paintNone paint = iota
	paintGrid
	paintBar
	paintBarSelected
	paintBarBusy
	paintGhost
	paintAccent
	paintMuted
	paintError
	paintMilestone
	paintJump
	paintJumpHover
)

func toneToPaint(t component.Tone) paint {
	switch t {
	case component.ToneMuted:
		return paintMuted
	case component.ToneError:
		return paintError
	case component.ToneMilestone:
		return paintMilestone
	default:
		return paintAccent
	}
}

type glyph struct {
	r rune
	p paint
}

// canvas is a rune grid for the chart area.
type canvas struct {
	w, h  int
	cells [][]glyph
}

func newCanvas(w, h int) canvas {
	cells := make([][]glyph, max(0, h))
	for y := range cells {
		cells[y] = make([]glyph, max(0, w))
		for x := range cells[y] {
			cells[y][x] = glyph{r: ' '}
		}
	}
	return canvas{w: w, h: h, cells: cells}
}

func (c canvas) set(x, y int, r rune, p paint) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.cells[y][x] = glyph{r: r, p: p}
}

func (c canvas) text(x, y int, s string, p paint) {
	for _, r := range s {
		c.set(x, y, r, p)
		x++
	}
}

// line renders row y, grouping equal paints into one styled run.
func (c canvas) line(y int, styles map[paint]lipgloss.Style) string {
	if y < 0 || y >= c.h {
		return ""
	}
	var b strings.Builder
	var run strings.Builder
	current := paintNone
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if style, ok := styles[current]; ok {
			b.WriteString(style.Render(run.String()))
		} else {
			b.WriteString(run.String())
		}
		run.Reset()
	}
	for _, g := range c.cells[y] {
		if g.p != current {
			flush()
			current = g.p
		}
		run.WriteRune(g.r)
	}
	flush()
	return b.String()
}

func paintStyles(pal palette) map[paint]lipgloss.Style {
	base := lipgloss.NewStyle()
	return map[paint]lipgloss.Style{
		paintGrid:        base.Foreground(pal.dim),
		paintBar:         base.Foreground(pal.barText).Background(pal.bar),
		paintBarSelected: base.Foreground(pal.barText).Background(pal.selected).Bold(true),
		paintBarBusy:     base.Foreground(pal.muted).Background(pal.dim),
		paintGhost:       base.Foreground(pal.ghost),
		paintAccent:      base.Foreground(pal.accent),
		paintMuted:       base.Foreground(pal.muted),
		paintError:       base.Foreground(pal.err).Bold(true),
		paintMilestone:   base.Foreground(pal.milestone),
		paintJump:        base.Foreground(pal.accent).Bold(true),
		paintJumpHover:   base.Foreground(pal.barText).Background(pal.accent).Bold(true),
	}
}

// screen describes where the table, the chart, and the body sit in the
// terminal.
type screen struct {
	tableCols int
	chartLeft int
	chartCols int
	bodyTop   int
	bodyRows  int
}

const (
	headerLines = 2
	footerLines = 3
	minTableCol = 8
)

func (m Model) screen() screen {
	tableCols := clamp(m.store.View().TableWidth/max(1, m.columnPx), minTableCol, max(minTableCol, m.width/3))
	return screen{
		tableCols: tableCols,
		chartLeft: tableCols + 1,
		chartCols: max(1, m.width-tableCols-1),
		bodyTop:   headerLines,
		bodyRows:  max(1, m.height-headerLines-footerLines),
	}
}

// col maps an on-screen chart x to a chart column.
func (m Model) col(x float64) int {
	return int(math.Floor(x / float64(max(1, m.columnPx))))
}

// cellBoundaries returns the chart column and date of every time cell
// boundary in view.
func (m Model) cellBoundaries() ([]int, []time.Time) {
	store := m.store
	mode := store.View().Mode
	r := store.TimeCellRangeInView()
	cols := make([]int, 0, r.Len())
	dates := make([]time.Time, 0, r.Len())
	for idx := r.Start; idx < r.End; idx++ {
		date := domain.AddUnits(store.StartDate(), idx, mode)
		cols = append(cols, m.col(store.BlockXByDate(date)))
		dates = append(dates, date)
	}
	return cols, dates
}

func axisLabel(date time.Time, mode domain.ViewMode) string {
	switch mode {
	case domain.ModeWeek:
		return date.Format("01/02")
	case domain.ModeMonth:
		return date.Format("Jan 06")
	case domain.ModeYear:
		return date.Format("2006")
	default:
		if date.Day() == 1 {
			return date.Format("Jan")
		}
		return date.Format("02")
	}
}

func (m Model) renderHeader(pal palette) string {
	view := m.store.View()
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(pal.text)
	statusStyle := lipgloss.NewStyle().Foreground(pal.muted)
	header := titleStyle.Render("gantt")
	header += statusStyle.Render(fmt.Sprintf("  [%s · %s · %s]", view.Mode, view.SortMode, view.Theme))
	header += statusStyle.Render(fmt.Sprintf("  %s → %s", domain.FormatDate(m.store.ViewStartDate()), domain.FormatDate(m.store.ViewEndDate())))
	if m.linkFrom != nil {
		header += lipgloss.NewStyle().Foreground(pal.accent).Render("  linking from " + m.linkFrom.String())
	}
	if m.gesture != nil {
		header += lipgloss.NewStyle().Foreground(pal.accent).Render("  " + m.gesture.kind.String())
	}
	return truncateANSI(header, m.width)
}

func (m Model) renderAxis(pal palette, sc screen) string {
	cv := newCanvas(sc.chartCols, 1)
	cols, dates := m.cellBoundaries()
	mode := m.store.View().Mode
	nextFree := 0
	for idx, c := range cols {
		label := axisLabel(dates[idx], mode)
		if c < nextFree || c >= sc.chartCols {
			continue
		}
		cv.text(max(0, c), 0, label, paintMuted)
		nextFree = c + utf8.RuneCountInString(label) + 1
	}
	for _, mark := range m.timeline.Overlay().Marks() {
		if mark.Y != 0 || mark.Tone != component.ToneMilestone {
			continue
		}
		c := m.col(mark.X)
		width := max(2, int(mark.Width)/max(1, m.columnPx))
		cv.text(c, 0, truncate("▼"+mark.Text, width), paintMilestone)
	}
	styles := paintStyles(pal)
	lead := lipgloss.NewStyle().Foreground(pal.muted).Width(sc.tableCols).Render(truncate("blocks", sc.tableCols))
	return lead + " " + cv.line(0, styles)
}

func (m Model) renderBody(pal palette, sc screen) string {
	store := m.store
	slots := bodySlots(store)
	_, scrollY := store.Scroll()
	top := topSlot(slots, scrollY)
	cv := newCanvas(sc.chartCols, sc.bodyRows)
	lineOf := func(y float64) (int, bool) {
		idx, ok := slotAtY(slots, y)
		if !ok {
			return 0, false
		}
		line := idx - top
		return line, line >= 0 && line < sc.bodyRows
	}

	boundaries, _ := m.cellBoundaries()
	for line := 0; line < sc.bodyRows && top+line < len(slots); line++ {
		if slots[top+line].kind == slotGroup {
			continue
		}
		for _, c := range boundaries {
			cv.set(c, line, '·', paintGrid)
		}
	}

	overlay := m.timeline.Overlay()
	for _, seg := range overlay.Segments() {
		p := toneToPaint(seg.Tone)
		switch {
		case seg.Tone == component.ToneMilestone:
			c := m.col(seg.X1)
			for line := 0; line < sc.bodyRows; line++ {
				cv.set(c, line, '┊', p)
			}
		case seg.Y1 == seg.Y2:
			line, ok := lineOf(seg.Y1)
			if !ok {
				continue
			}
			a, b := m.col(min(seg.X1, seg.X2)), m.col(max(seg.X1, seg.X2))
			for c := a; c <= b; c++ {
				cv.set(c, line, '─', p)
			}
		default:
			from, okFrom := slotAtY(slots, min(seg.Y1, seg.Y2))
			to, okTo := slotAtY(slots, max(seg.Y1, seg.Y2))
			if !okFrom || !okTo {
				continue
			}
			c := m.col(seg.X1)
			for idx := from; idx <= to; idx++ {
				cv.set(c, idx-top, '│', p)
			}
		}
	}

	for line := 0; line < sc.bodyRows && top+line < len(slots); line++ {
		s := slots[top+line]
		if s.kind != slotBlock {
			continue
		}
		m.drawBar(cv, line, s.row.BlockKey, sc)
	}

	for _, key := range m.timeline.order {
		c := m.timeline.cells[key]
		for _, mark := range c.layer.Marks() {
			line, ok := lineOf(mark.Y)
			if !ok {
				continue
			}
			r, _ := utf8.DecodeRuneInString(mark.Text)
			cv.set(m.col(mark.X), line, r, toneToPaint(mark.Tone))
		}
	}

	if g := m.gesture; g != nil {
		if line, ok := lineOf(g.ghost.Y + g.ghost.H/2); ok {
			first, last := m.col(g.ghost.X), m.col(g.ghost.X+g.ghost.W-1)
			for c := first; c <= last; c++ {
				cv.set(c, line, '░', paintGhost)
			}
		}
	}

	styles := paintStyles(pal)
	lines := make([]string, 0, sc.bodyRows)
	sep := lipgloss.NewStyle().Foreground(pal.dim).Render("│")
	for line := 0; line < sc.bodyRows; line++ {
		label := ""
		if idx := top + line; idx < len(slots) {
			label = m.tableLabel(pal, slots[idx], sc.tableCols)
		}
		lines = append(lines, lipgloss.NewStyle().Width(sc.tableCols).MaxWidth(sc.tableCols).Render(label)+sep+cv.line(line, styles))
	}
	return strings.Join(lines, "\n")
}

// drawBar paints key's bar, its text, and its jump buttons on line.
func (m Model) drawBar(cv canvas, line int, key string, sc screen) {
	c, ok := m.timeline.cells[key]
	if !ok {
		return
	}
	if m.store.StartOffscreen(key) {
		cv.set(0, line, '◀', jumpPaint(c.jumpPrev))
	}
	if m.store.EndOffscreen(key) {
		cv.set(sc.chartCols-1, line, '▶', jumpPaint(c.jumpNext))
	}
	if c.bar.W <= 0 {
		return
	}
	p := paintBar
	switch {
	case c.sm.Is(state.CellDragging, state.CellExpending):
		p = paintBarBusy
	case key == m.selected:
		p = paintBarSelected
	}
	first, last := m.col(c.bar.X), m.col(c.bar.X+c.bar.W-1)
	lo, hi := max(first, 0), min(last, sc.chartCols-1)
	if m.store.StartOffscreen(key) {
		lo = max(lo, 1)
	}
	if m.store.EndOffscreen(key) {
		hi = min(hi, sc.chartCols-2)
	}
	for x := lo; x <= hi; x++ {
		cv.set(x, line, ' ', p)
	}
	if b, ok := m.store.BlockByKey(key); ok && hi >= lo {
		cv.text(lo, line, truncate(b.Text, hi-lo+1), p)
	}
	if c.sm.Is(state.CellHovering) && last-first >= 2 {
		cv.set(first, line, '▏', p)
		cv.set(last, line, '▕', p)
	}
}

func jumpPaint(btn *state.Machine[state.ButtonState]) paint {
	if btn.Is(state.ButtonHovering, state.ButtonActive) {
		return paintJumpHover
	}
	return paintJump
}

func (m Model) tableLabel(pal palette, s slot, width int) string {
	switch s.kind {
	case slotGroup:
		name := s.group
		if name == "" {
			name = "ungrouped"
		}
		return lipgloss.NewStyle().Bold(true).Foreground(pal.muted).Render(truncate(name, width))
	case slotAdd:
		return lipgloss.NewStyle().Foreground(pal.dim).Render(truncate("  + add", width))
	}
	b, ok := m.store.BlockByKey(s.row.BlockKey)
	if !ok {
		return ""
	}
	text := strings.Repeat("  ", m.depth(b)) + b.Text
	style := lipgloss.NewStyle().Foreground(pal.text)
	if b.Key == m.selected {
		style = style.Bold(true).Foreground(pal.accent).Background(pal.rowFocus)
		text = "› " + text
	} else {
		text = "  " + text
	}
	return style.Render(truncate(text, width))
}

// depth counts b's ancestors.
func (m Model) depth(b domain.Block) int {
	depth := 0
	seen := map[string]bool{b.Key: true}
	for b.ParentKey != "" && !seen[b.ParentKey] {
		parent, ok := m.store.BlockByKey(b.ParentKey)
		if !ok {
			break
		}
		seen[parent.Key] = true
		b = parent
		depth++
	}
	return depth
}

func (m Model) renderFooter(pal palette) string {
	statusStyle := lipgloss.NewStyle().Foreground(pal.muted)
	status := statusStyle.Render(truncate(m.status, max(1, m.width)))
	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	var keys help.KeyMap = m.keys
	if m.gesture != nil {
		keys = bindingList(m.keys.gestureHelp())
	}
	helpLine := lipgloss.NewStyle().
		Foreground(pal.muted).
		BorderTop(true).
		BorderForeground(pal.dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(keys))
	return status + "\n" + helpLine
}

// renderOverlay returns the active modal, if any.
func (m Model) renderOverlay(pal palette) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(pal.accent).
		Padding(0, 1)
	width := clamp(m.width-8, 24, 96)
	switch {
	case m.renaming:
		title := lipgloss.NewStyle().Bold(true).Foreground(pal.accent).Render("rename block")
		return box.Width(width).Render(title + "\n\n" + m.input.View())
	case m.showInfo:
		b, ok := m.store.BlockByKey(m.selected)
		if !ok {
			return ""
		}
		body := m.info.render(m.blockMarkdown(b), width-4, m.store.View().Theme)
		return box.Width(width).Render(fitLines(body, max(3, m.height-6)))
	case m.help.ShowAll:
		helpBubble := m.help
		helpBubble.SetWidth(width - 4)
		return box.Width(width).Render(helpBubble.View(m.keys))
	}
	return ""
}

// truncateANSI caps a styled line at width cells.
func truncateANSI(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
