package tui

import (
	"github.com/hylla/gantt/internal/app"
	"github.com/hylla/gantt/internal/component"
	"github.com/hylla/gantt/internal/domain"
	"github.com/hylla/gantt/internal/extension"
	"github.com/hylla/gantt/internal/interaction"
	"github.com/hylla/gantt/internal/state"
	"github.com/hylla/gantt/internal/viewport"
)

// cell is one mounted time-block row.
type cell struct {
	key      string
	row      interaction.Rect
	bar      interaction.Rect
	sm       *state.Machine[state.CellState]
	handle   *state.Machine[state.HandleState]
	jumpPrev *state.Machine[state.ButtonState]
	jumpNext *state.Machine[state.ButtonState]
	layer    component.Layer
	pipeline extension.Pipeline
}

func newCell(key string) *cell {
	return &cell{
		key:      key,
		sm:       state.New(state.CellNormal),
		handle:   state.New(state.HandlePending),
		jumpPrev: state.New(state.ButtonNormal),
		jumpNext: state.New(state.ButtonNormal),
	}
}

func (c *cell) Key() string                            { return c.key }
func (c *cell) State() *state.Machine[state.CellState] { return c.sm }
func (c *cell) Bounds() interaction.Rect               { return c.bar }
func (c *cell) Layer() *component.Layer                { return &c.layer }

// rowWidget exposes a cell's full row band for drop-target hit tests.
type rowWidget struct{ c *cell }

func (w rowWidget) Bounds() interaction.Rect { return w.c.row }

type bandWidget struct{ rect interaction.Rect }

func (w bandWidget) Bounds() interaction.Rect { return w.rect }

// timeline mounts a cell for every visible block row and runs the container
// extensions over them. Bars use on-screen x and content y.
type timeline struct {
	store    *app.Store
	exts     *extension.Registry
	registry *interaction.Registry
	cells    map[string]*cell
	order    []string
	groups   []string
	overlay  component.Layer
	pipeline extension.Pipeline
}

func newTimeline(store *app.Store, exts *extension.Registry) *timeline {
	t := &timeline{
		store:    store,
		exts:     exts,
		registry: interaction.NewRegistry(),
		cells:    map[string]*cell{},
	}
	t.pipeline = extension.Assemble(exts, component.ContainerKind, component.Container(t))
	t.pipeline.Mount()
	store.SetLocator(t)
	return t
}

func (t *timeline) Store() *app.Store         { return t.store }
func (t *timeline) Overlay() *component.Layer { return &t.overlay }

func (t *timeline) Cell(key string) (component.Cell, bool) {
	c, ok := t.cells[key]
	if !ok {
		return nil, false
	}
	return c, true
}

// BlockPosition returns the mounted bar's origin.
func (t *timeline) BlockPosition(key string) (interaction.Point, bool) {
	c, ok := t.cells[key]
	if !ok {
		return interaction.Point{}, false
	}
	return c.bar.Origin(), true
}

// sync mounts entering rows, unmounts leaving rows, refreshes bounds, and
// re-runs every extension pipeline.
func (t *timeline) sync() {
	rows := t.store.VisibleRows()
	next := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Kind == app.RowBlock {
			next = append(next, row.BlockKey)
		}
	}

	entered, left := viewport.DiffKeys(t.order, next)
	for _, key := range left {
		c := t.cells[key]
		c.pipeline.Unmount()
		t.registry.RemoveBlockWidget(key)
		delete(t.cells, key)
	}
	for _, key := range entered {
		c := newCell(key)
		c.pipeline = extension.Assemble(t.exts, component.CellKind, component.Cell(c))
		t.cells[key] = c
		c.pipeline.Mount()
	}
	t.order = next

	width, _ := t.store.Size()
	for _, row := range rows {
		if row.Kind != app.RowBlock {
			continue
		}
		c := t.cells[row.BlockKey]
		c.row = interaction.Rect{X: 0, Y: row.Y, W: width, H: row.Height}
		c.bar = t.barRect(row)
		t.registry.SetBlockWidget(row.BlockKey, rowWidget{c: c})
	}
	t.syncGroups(width)

	for _, key := range t.order {
		c := t.cells[key]
		c.layer.Reset()
		c.pipeline.Update()
	}
	t.overlay.Reset()
	t.pipeline.Update()
}

func (t *timeline) barRect(row app.Row) interaction.Rect {
	out := interaction.Rect{Y: row.Y, H: row.Height}
	b, ok := t.store.BlockByKey(row.BlockKey)
	if !ok || !b.Scheduled() {
		return out
	}
	start, err := domain.ParseDate(b.StartTime)
	if err != nil {
		return out
	}
	out.X = t.store.BlockXByDate(start)
	out.W, _ = t.store.BlockWidth(row.BlockKey)
	return out
}

func (t *timeline) syncGroups(width float64) {
	for _, key := range t.groups {
		t.registry.RemoveGroupWidget(key)
	}
	t.groups = t.groups[:0]
	if t.store.View().SortMode != domain.SortGroup {
		return
	}
	for _, band := range t.store.Layout().Groups {
		t.registry.SetGroupWidget(band.Key, bandWidget{rect: interaction.Rect{X: 0, Y: band.Y, W: width, H: band.Height}})
		t.groups = append(t.groups, band.Key)
	}
}

// close unmounts every cell and the container pipeline.
func (t *timeline) close() {
	for _, key := range t.order {
		t.cells[key].pipeline.Unmount()
		t.registry.RemoveBlockWidget(key)
	}
	t.cells = map[string]*cell{}
	t.order = nil
	t.pipeline.Unmount()
}

// hover moves the hovering state to key. An empty key clears it.
func (t *timeline) hover(key string) {
	for k, c := range t.cells {
		if k == key {
			c.sm.To([]state.CellState{state.CellNormal}, state.CellHovering)
			continue
		}
		c.sm.To([]state.CellState{state.CellHovering}, state.CellNormal)
	}
}
