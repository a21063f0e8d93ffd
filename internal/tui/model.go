package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/hylla/gantt/internal/app"
	"github.com/hylla/gantt/internal/domain"
	"github.com/hylla/gantt/internal/extension"
	"github.com/hylla/gantt/internal/features/constraint"
	"github.com/hylla/gantt/internal/interaction"
	"github.com/hylla/gantt/internal/state"
)

// Model is the interactive chart: a block table on the left and the
// scrollable timeline on the right.
type Model struct {
	store       *app.Store
	extensions  *extension.Registry
	timeline    *timeline
	constraints *constraint.Feature
	logger      app.Logger

	ready    bool
	quitting bool
	width    int
	height   int
	status   string

	help     help.Model
	keys     keyMap
	columnPx int

	selected string
	gesture  *gesture
	linkFrom *domain.ConstraintItem
	showInfo bool
	renaming bool
	input    textinput.Model
	info     *infoRenderer

	copyText      func(string) error
	reloadConfig  ReloadConfigFunc
	updates       <-chan RuntimeUpdate
	pendingConfig *RuntimeConfig
}

// configReloadedMsg carries runtime settings loaded through the reload callback.
type configReloadedMsg struct {
	config RuntimeConfig
	err    error
}

// runtimeUpdateMsg carries one pushed config change.
type runtimeUpdateMsg struct {
	update RuntimeUpdate
	ok     bool
}

// actionMsg reports the outcome of an asynchronous action.
type actionMsg struct {
	status string
	err    error
}

// NewModel constructs a chart model over store.
func NewModel(store *app.Store, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		store:      store,
		extensions: extension.NewRegistry(),
		logger:     store.Logger(),
		status:     "ready",
		help:       h,
		keys:       newKeyMap(),
		columnPx:   defaultColumnPx,
		input:      newModalInput("text: ", "block text", "", 120),
		info:       &infoRenderer{},
		copyText:   defaultClipboard,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	if m.pendingConfig != nil {
		m.applyRuntimeConfig(*m.pendingConfig)
		m.pendingConfig = nil
	}
	m.timeline = newTimeline(store, m.extensions)
	if keys := m.blockOrder(); len(keys) > 0 {
		m.selected = keys[0]
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.waitForUpdate()
}

// Update applies msg, then re-lays out and re-syncs the timeline.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.refresh()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case configReloadedMsg:
		if msg.err != nil {
			m.status = "reload config failed: " + msg.err.Error()
			return m, nil
		}
		m.applyRuntimeConfig(msg.config)
		m.status = "config reloaded"
		return m, nil

	case runtimeUpdateMsg:
		if !msg.ok {
			m.updates = nil
			return m, nil
		}
		if msg.update.Err != nil {
			m.status = "config update failed: " + msg.update.Err.Error()
		} else {
			m.applyRuntimeConfig(msg.update.Config)
			m.status = "config updated"
		}
		return m, m.waitForUpdate()

	case actionMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.status = msg.status
		return m, nil

	case tea.KeyPressMsg:
		switch {
		case m.renaming:
			return m.handleRenameKey(msg)
		case m.showInfo:
			if key.Matches(msg, m.keys.info, m.keys.cancel, m.keys.quit, m.keys.commit) {
				m.showInfo = false
			}
			return m, nil
		case m.gesture != nil:
			return m.handleGestureKey(msg)
		}
		return m.handleNormalModeKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	default:
		return m, nil
	}
}

// refresh sizes the store to the chart area and re-runs the timeline.
func (m *Model) refresh() {
	if !m.ready || m.quitting {
		return
	}
	sc := m.screen()
	lh := float64(m.store.View().LineHeight)
	m.store.SetSize(float64(sc.chartCols*m.columnPx), float64(sc.bodyRows)*lh)
	m.timeline.sync()
	m.dropStaleGesture()
	if _, ok := m.store.BlockByKey(m.selected); !ok {
		m.selected = ""
		if keys := m.blockOrder(); len(keys) > 0 {
			m.selected = keys[0]
		}
	}
}

// View handles view.
func (m Model) View() tea.View {
	if !m.ready {
		v := tea.NewView("loading...")
		v.MouseMode = tea.MouseModeAllMotion
		v.AltScreen = true
		return v
	}
	pal := paletteFor(m.store.View().Theme)
	sc := m.screen()
	content := strings.Join([]string{
		m.renderHeader(pal),
		m.renderAxis(pal, sc),
		m.renderBody(pal, sc),
		m.renderFooter(pal),
	}, "\n")
	if overlay := m.renderOverlay(pal); overlay != "" {
		content = overlayOnContent(content, overlay, max(1, m.width), max(1, m.height))
	}
	v := tea.NewView(content)
	v.MouseMode = tea.MouseModeAllMotion
	v.AltScreen = true
	return v
}

// handleNormalModeKey handles keys while no gesture or modal is active.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (Model, tea.Cmd) {
	cw := m.store.CurrentTimeCellWidth()
	switch {
	case key.Matches(msg, m.keys.quit):
		m.quitting = true
		m.timeline.close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading config..."
		return m, m.reloadRuntimeConfigCmd()
	case key.Matches(msg, m.keys.cancel):
		m.help.ShowAll = false
		if m.linkFrom != nil {
			m.linkFrom = nil
			m.status = "link cancelled"
		}
		return m, nil
	case key.Matches(msg, m.keys.selectDown):
		m.moveSelection(1)
		return m, nil
	case key.Matches(msg, m.keys.selectUp):
		m.moveSelection(-1)
		return m, nil
	case key.Matches(msg, m.keys.scrollLeft):
		m.store.ScrollBy(-cw, 0)
		return m, nil
	case key.Matches(msg, m.keys.scrollRight):
		m.store.ScrollBy(cw, 0)
		return m, nil
	case key.Matches(msg, m.keys.pageLeft):
		width, _ := m.store.Size()
		m.store.ScrollBy(-width, 0)
		return m, nil
	case key.Matches(msg, m.keys.pageRight):
		width, _ := m.store.Size()
		m.store.ScrollBy(width, 0)
		return m, nil
	case key.Matches(msg, m.keys.grab):
		m.startGesture(gestureDrag)
		return m, nil
	case key.Matches(msg, m.keys.resizeEnd):
		m.startGesture(gestureResizeEnd)
		return m, nil
	case key.Matches(msg, m.keys.resizeStart):
		m.startGesture(gestureResizeStart)
		return m, nil
	case key.Matches(msg, m.keys.jumpStart):
		if m.selected != "" && m.store.JumpToBlockStart(m.selected) {
			m.status = "jumped to start"
		}
		return m, nil
	case key.Matches(msg, m.keys.jumpEnd):
		if m.selected != "" && m.store.JumpToBlockEnd(m.selected) {
			m.status = "jumped to end"
		}
		return m, nil
	case key.Matches(msg, m.keys.cycleMode):
		m.cycleMode()
		return m, nil
	case key.Matches(msg, m.keys.toggleSort):
		next := domain.SortGroup
		if m.store.View().SortMode == domain.SortGroup {
			next = domain.SortList
		}
		if err := m.store.SetSortMode(next); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = "sort: " + string(next)
		m.ensureVisible(m.selected)
		return m, nil
	case key.Matches(msg, m.keys.toggleTheme):
		next := domain.ThemeDark
		if m.store.View().Theme == domain.ThemeDark {
			next = domain.ThemeLight
		}
		if err := m.store.SetTheme(next); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = "theme: " + string(next)
		return m, nil
	case key.Matches(msg, m.keys.info):
		m.showInfo = m.selected != ""
		return m, nil
	case key.Matches(msg, m.keys.yank):
		return m, m.yankSelected()
	case key.Matches(msg, m.keys.addBlock):
		group := ""
		if b, ok := m.store.BlockByKey(m.selected); ok {
			group = b.GroupKey
		}
		m.addBlockAt(group, m.store.ViewStartDate())
		return m, nil
	case key.Matches(msg, m.keys.rename):
		b, ok := m.store.BlockByKey(m.selected)
		if !ok {
			return m, nil
		}
		m.input = newModalInput("text: ", "block text", b.Text, 120)
		m.renaming = true
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.link):
		m.linkSelected()
		return m, nil
	default:
		return m, nil
	}
}

// handleGestureKey drives a pending drag or resize from the keyboard.
func (m Model) handleGestureKey(msg tea.KeyPressMsg) (Model, tea.Cmd) {
	if m.dropStaleGesture() {
		return m, nil
	}
	g := m.gesture
	cw := m.store.CurrentTimeCellWidth()
	switch {
	case key.Matches(msg, m.keys.quit):
		g.cancel()
		m.gesture = nil
		m.quitting = true
		m.timeline.close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.cancel):
		g.cancel()
		m.gesture = nil
		m.status = g.kind.String() + " cancelled"
	case key.Matches(msg, m.keys.commit):
		m.commitGesture()
	case key.Matches(msg, m.keys.scrollLeft):
		g.nudge(-1, cw)
		m.status = m.ghostStatus()
	case key.Matches(msg, m.keys.scrollRight):
		g.nudge(1, cw)
		m.status = m.ghostStatus()
	case key.Matches(msg, m.keys.selectUp):
		m.moveGhostRow(-1)
	case key.Matches(msg, m.keys.selectDown):
		m.moveGhostRow(1)
	}
	return m, nil
}

// handleRenameKey edits the selected block's text.
func (m Model) handleRenameKey(msg tea.KeyPressMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.renaming = false
		m.input.Blur()
		m.status = "rename cancelled"
		return m, nil
	case "enter":
		m.renaming = false
		m.input.Blur()
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			m.status = "text is required"
			return m, nil
		}
		if err := m.store.ChangeBlockText(m.selected, text); err != nil {
			m.status = "rename failed: " + err.Error()
			return m, nil
		}
		m.status = "renamed"
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// pointer resolves a terminal cell into the body slot under it and a
// chart point in on-screen x and content y.
type pointer struct {
	slot    slot
	point   interaction.Point
	column  int
	inChart bool
}

func (m Model) pointerAt(x, y int) (pointer, bool) {
	if !m.ready {
		return pointer{}, false
	}
	sc := m.screen()
	line := y - sc.bodyTop
	if line < 0 || line >= sc.bodyRows {
		return pointer{}, false
	}
	slots := bodySlots(m.store)
	_, scrollY := m.store.Scroll()
	idx := topSlot(slots, scrollY) + line
	if idx >= len(slots) {
		return pointer{}, false
	}
	s := slots[idx]
	p := pointer{slot: s, point: interaction.Point{Y: s.y + s.h/2}}
	if x >= sc.chartLeft {
		p.inChart = true
		p.column = x - sc.chartLeft
		p.point.X = (float64(p.column) + 0.5) * float64(m.columnPx)
	}
	return p, true
}

// handleMouseClick selects the block under the pointer and starts a drag or
// resize when the press lands on its bar.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (Model, tea.Cmd) {
	if msg.Button != tea.MouseLeft || m.renaming || m.gesture != nil {
		return m, nil
	}
	if m.showInfo || m.help.ShowAll {
		m.showInfo = false
		m.help.ShowAll = false
		return m, nil
	}
	p, ok := m.pointerAt(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	switch p.slot.kind {
	case slotAdd:
		at := m.store.ViewStartDate()
		if p.inChart {
			at = m.store.DateByX(p.point.X)
		}
		m.addBlockAt(p.slot.group, at)
		return m, nil
	case slotGroup:
		return m, nil
	}

	blockKey, _, found := m.timeline.registry.FindIntersectingBlock(p.point)
	if !found {
		return m, nil
	}
	m.selected = blockKey
	if !p.inChart {
		return m, nil
	}
	c, ok := m.timeline.cells[blockKey]
	if !ok {
		return m, nil
	}
	sc := m.screen()
	if p.column == 0 && m.store.StartOffscreen(blockKey) {
		m.pressJump(c.jumpPrev, blockKey, m.store.JumpToBlockStart, "start")
		return m, nil
	}
	if p.column == sc.chartCols-1 && m.store.EndOffscreen(blockKey) {
		m.pressJump(c.jumpNext, blockKey, m.store.JumpToBlockEnd, "end")
		return m, nil
	}
	if !c.bar.Contains(p.point) {
		return m, nil
	}

	kind := gestureDrag
	first, last := m.col(c.bar.X), m.col(c.bar.X+c.bar.W-1)
	if last-first >= 2 {
		switch p.column {
		case first:
			kind = gestureResizeStart
		case last:
			kind = gestureResizeEnd
		}
	}
	g, err := beginGesture(m.timeline, blockKey, kind)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	g.mouse = true
	g.grabDX = p.point.X - c.bar.X
	m.gesture = g
	m.status = m.ghostStatus()
	return m, nil
}

// handleMouseMotion moves a mouse-driven ghost, or tracks hover.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (Model, tea.Cmd) {
	p, ok := m.pointerAt(msg.X, msg.Y)
	if m.dropStaleGesture() {
		return m, nil
	}
	if g := m.gesture; g != nil {
		if !g.mouse || !ok {
			return m, nil
		}
		if p.inChart {
			g.follow(p.point.X, m.store.CurrentTimeCellWidth())
		}
		if p.slot.kind != slotGroup {
			g.moveRow(p.slot.row.Y)
		}
		m.status = m.ghostStatus()
		return m, nil
	}

	hovered := ""
	if ok && p.inChart && p.slot.kind == slotBlock {
		hovered, _, _ = m.timeline.registry.FindIntersectingBlock(p.point)
	}
	m.timeline.hover(hovered)
	sc := m.screen()
	for k, c := range m.timeline.cells {
		onPrev := k == hovered && p.column == 0
		onNext := k == hovered && p.column == sc.chartCols-1
		hoverButton(c.jumpPrev, onPrev)
		hoverButton(c.jumpNext, onNext)
	}
	return m, nil
}

func hoverButton(btn *state.Machine[state.ButtonState], on bool) {
	if on {
		btn.To([]state.ButtonState{state.ButtonNormal}, state.ButtonHovering)
		return
	}
	btn.To([]state.ButtonState{state.ButtonHovering}, state.ButtonNormal)
}

// handleMouseRelease commits a mouse-driven gesture.
func (m Model) handleMouseRelease(tea.MouseReleaseMsg) (Model, tea.Cmd) {
	if m.dropStaleGesture() || m.gesture == nil || !m.gesture.mouse {
		return m, nil
	}
	m.commitGesture()
	return m, nil
}

// handleMouseWheel scrolls vertically by one line, horizontally by one cell
// with shift or a horizontal wheel.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (Model, tea.Cmd) {
	if m.renaming || m.showInfo {
		return m, nil
	}
	cw := m.store.CurrentTimeCellWidth()
	shift := msg.Mod&tea.ModShift != 0
	switch {
	case msg.Button == tea.MouseWheelLeft, shift && msg.Button == tea.MouseWheelUp:
		m.store.ScrollBy(-cw, 0)
	case msg.Button == tea.MouseWheelRight, shift && msg.Button == tea.MouseWheelDown:
		m.store.ScrollBy(cw, 0)
	case msg.Button == tea.MouseWheelUp:
		m.scrollLines(-1)
	case msg.Button == tea.MouseWheelDown:
		m.scrollLines(1)
	}
	return m, nil
}

// scrollLines moves the body by whole terminal lines.
func (m *Model) scrollLines(delta int) {
	slots := bodySlots(m.store)
	if len(slots) == 0 {
		return
	}
	scrollX, scrollY := m.store.Scroll()
	idx := clamp(topSlot(slots, scrollY)+delta, 0, len(slots)-1)
	m.store.SetScroll(scrollX, slots[idx].y)
}

// blockOrder returns block keys in display order.
func (m Model) blockOrder() []string {
	rows := m.store.Layout().Rows
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Kind == app.RowBlock {
			out = append(out, row.BlockKey)
		}
	}
	return out
}

func (m *Model) moveSelection(delta int) {
	keys := m.blockOrder()
	if len(keys) == 0 {
		return
	}
	idx := slices.Index(keys, m.selected)
	if idx < 0 {
		idx = 0
	} else {
		idx = clamp(idx+delta, 0, len(keys)-1)
	}
	m.selected = keys[idx]
	m.ensureVisible(m.selected)
}

// ensureVisible scrolls vertically until blockKey's row is inside the body.
func (m *Model) ensureVisible(blockKey string) {
	if !m.ready || blockKey == "" {
		return
	}
	m.refresh()
	slots := bodySlots(m.store)
	target := slices.IndexFunc(slots, func(s slot) bool {
		return s.kind == slotBlock && s.row.BlockKey == blockKey
	})
	if target < 0 {
		return
	}
	scrollX, scrollY := m.store.Scroll()
	top := topSlot(slots, scrollY)
	rows := m.screen().bodyRows
	switch {
	case target < top:
		first := target
		if target > 0 && slots[target-1].kind == slotGroup {
			first = target - 1
		}
		m.store.SetScroll(scrollX, slots[first].y)
	case target >= top+rows:
		m.store.SetScroll(scrollX, slots[target-rows+1].y)
	}
}

func (m *Model) cycleMode() {
	modes := domain.ViewModes()
	current := m.store.View().Mode
	next := modes[(slices.Index(modes, current)+1)%len(modes)]
	anchor := m.store.ViewStartDate()
	if err := m.store.SetMode(next); err != nil {
		m.status = err.Error()
		return
	}
	_, scrollY := m.store.Scroll()
	m.store.SetScroll(m.store.ScrollXByDate(anchor), scrollY)
	m.status = "mode: " + string(next)
}

func (m *Model) startGesture(kind gestureKind) {
	if m.selected == "" {
		m.status = "no block selected"
		return
	}
	m.ensureVisible(m.selected)
	g, err := beginGesture(m.timeline, m.selected, kind)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.gesture = g
	m.status = m.ghostStatus()
}

// moveGhostRow puts a dragged ghost on the neighbouring row.
func (m *Model) moveGhostRow(delta int) {
	g := m.gesture
	if g.kind != gestureDrag {
		return
	}
	rows := m.store.Layout().Rows
	idx := slices.IndexFunc(rows, func(r app.Row) bool {
		return g.ghost.Y+g.ghost.H/2 >= r.Y && g.ghost.Y+g.ghost.H/2 < r.Y+r.Height
	})
	if idx < 0 {
		return
	}
	next := clamp(idx+delta, 0, len(rows)-1)
	g.moveRow(rows[next].Y)
	m.status = m.ghostStatus()
}

// dropStaleGesture abandons a gesture whose cell was unmounted or whose
// transition was superseded. It reports whether one was dropped.
func (m *Model) dropStaleGesture() bool {
	g := m.gesture
	if g == nil || g.live(m.timeline) {
		return false
	}
	m.gesture = nil
	m.status = g.kind.String() + " cancelled: block left the view"
	m.logger.Debug("gesture dropped", "kind", g.kind.String(), "key", g.key)
	return true
}

func (m *Model) commitGesture() {
	if m.dropStaleGesture() {
		return
	}
	g := m.gesture
	m.gesture = nil
	before, _ := m.store.BlockByKey(g.key)
	res := g.commit(m.store, m.timeline.registry)
	m.logger.Debug("gesture committed", "kind", g.kind.String(), "key", g.key, "requested", res.Requested, "applied", res.Applied)
	switch {
	case res.Rejected():
		m.status = fmt.Sprintf("%s rejected: %v; %s stays %s → %s", g.kind, res.Err, before.Text, res.Applied.Start, res.Applied.End)
	case res.Adjusted():
		m.status = fmt.Sprintf("%s adjusted to %s → %s", before.Text, res.Applied.Start, res.Applied.End)
	default:
		m.status = fmt.Sprintf("%s now %s → %s", before.Text, res.Applied.Start, res.Applied.End)
	}
	if res.Group != "" {
		m.status += " in " + res.Group
	}
}

// ghostStatus describes where the pending gesture would land.
func (m Model) ghostStatus() string {
	g := m.gesture
	if g == nil {
		return ""
	}
	start := m.store.DateByX(g.ghost.X)
	end := m.store.DateByX(g.ghost.X + g.ghost.W - 1)
	return fmt.Sprintf("%s %s → %s  (enter commit, esc cancel)", g.kind, domain.FormatDate(start), domain.FormatDate(end))
}

func (m *Model) pressJump(btn *state.Machine[state.ButtonState], blockKey string, jump func(string) bool, edge string) {
	btn.To(nil, state.ButtonActive)
	if jump(blockKey) {
		m.status = "jumped to " + edge
	}
	btn.To(nil, state.ButtonNormal, state.Irrevocable())
}

// addBlockAt appends a one-cell block in group starting at at.
func (m *Model) addBlockAt(group string, at time.Time) {
	mode := m.store.View().Mode
	end := domain.AddUnits(at, 1, mode).AddDate(0, 0, -1)
	b, err := m.store.AddBlock(domain.BlockInput{
		Text:      "new block",
		GroupKey:  group,
		StartTime: domain.FormatDate(at),
		EndTime:   domain.FormatDate(end),
	})
	if err != nil {
		m.status = "add block failed: " + err.Error()
		return
	}
	m.selected = b.Key
	m.ensureVisible(b.Key)
	m.status = "added block"
}

// linkSelected records the selected block's end on the first press and links
// it to the next selection's start on the second.
func (m *Model) linkSelected() {
	if m.constraints == nil {
		m.status = "constraints disabled"
		return
	}
	if m.selected == "" {
		return
	}
	if m.linkFrom == nil {
		from := domain.EndOf(m.selected)
		m.linkFrom = &from
		m.status = "select the dependent block and press " + m.keys.link.Help().Key
		return
	}
	from := *m.linkFrom
	m.linkFrom = nil
	to := domain.StartOf(m.selected)
	if err := m.constraints.Link(from, to); err != nil {
		switch {
		case errors.Is(err, constraint.ErrConstraintCycle):
			m.status = "link would create a cycle"
		default:
			m.status = "link failed: " + err.Error()
		}
		return
	}
	m.status = fmt.Sprintf("linked %s → %s", from, to)
}

// blockMarkdown renders b's details for the info overlay.
func (m Model) blockMarkdown(b domain.Block) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", b.Text)
	sb.WriteString("| field | value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| key | `%s` |\n", b.Key)
	fmt.Fprintf(&sb, "| start | %s |\n", orDash(b.StartTime))
	fmt.Fprintf(&sb, "| end | %s |\n", orDash(b.EndTime))
	fmt.Fprintf(&sb, "| parent | %s |\n", orDash(b.ParentKey))
	fmt.Fprintf(&sb, "| group | %s |\n", orDash(b.GroupKey))
	if children := m.store.Children(b.Key); len(children) > 0 {
		fmt.Fprintf(&sb, "| children | %d |\n", len(children))
	}
	if m.constraints == nil {
		return sb.String()
	}
	var links []string
	for _, link := range m.constraints.Graph().Links() {
		if link.From.Key == b.Key || link.To.Key == b.Key {
			links = append(links, fmt.Sprintf("- `%s` → `%s`", link.From, link.To))
		}
	}
	if len(links) > 0 {
		sb.WriteString("\n## Links\n\n")
		sb.WriteString(strings.Join(links, "\n"))
		sb.WriteString("\n")
	}
	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "–"
	}
	return s
}

// yankSelected copies the selected block as one tab-separated line.
func (m Model) yankSelected() tea.Cmd {
	b, ok := m.store.BlockByKey(m.selected)
	if !ok {
		return nil
	}
	text := strings.Join([]string{b.Text, b.StartTime, b.EndTime}, "\t")
	write := m.copyText
	return func() tea.Msg {
		if err := write(text); err != nil {
			return actionMsg{err: fmt.Errorf("copy failed: %w", err)}
		}
		return actionMsg{status: "copied " + b.Text}
	}
}

// applyRuntimeConfig swaps in view settings, column scale, and key overrides.
func (m *Model) applyRuntimeConfig(cfg RuntimeConfig) {
	if cfg.View.Mode != "" {
		if err := m.store.ApplyView(cfg.View); err != nil {
			m.status = "apply view failed: " + err.Error()
			m.logger.Error("apply view failed", "err", err)
		}
	}
	if cfg.ColumnPx > 0 {
		m.columnPx = cfg.ColumnPx
	}
	m.keys.applyConfig(cfg.Keys)
}

// reloadRuntimeConfigCmd reloads runtime settings through the configured callback.
func (m Model) reloadRuntimeConfigCmd() tea.Cmd {
	if m.reloadConfig == nil {
		return func() tea.Msg {
			return configReloadedMsg{err: fmt.Errorf("config reload callback is unavailable")}
		}
	}
	return func() tea.Msg {
		cfg, err := m.reloadConfig()
		if err != nil {
			return configReloadedMsg{err: err}
		}
		return configReloadedMsg{config: cfg}
	}
}

// waitForUpdate blocks on the next pushed config change.
func (m Model) waitForUpdate() tea.Cmd {
	ch := m.updates
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-ch
		return runtimeUpdateMsg{update: update, ok: ok}
	}
}

// newModalInput constructs a text input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}
