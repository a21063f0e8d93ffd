package tui

import (
	"fmt"

	"github.com/hylla/gantt/internal/app"
	"github.com/hylla/gantt/internal/domain"
	"github.com/hylla/gantt/internal/interaction"
	"github.com/hylla/gantt/internal/state"
)

type gestureKind int

const (
	gestureDrag gestureKind = iota
	gestureResizeStart
	gestureResizeEnd
)

func (k gestureKind) String() string {
	switch k {
	case gestureResizeStart:
		return "resize start"
	case gestureResizeEnd:
		return "resize end"
	default:
		return "drag"
	}
}

// gesture is a pending drag or resize. The cell's state change is
// provisional until commit; cancel revokes it.
type gesture struct {
	kind   gestureKind
	key    string
	cell   *cell
	moved  state.Transition[state.CellState]
	held   state.Transition[state.HandleState]
	origin interaction.Rect
	ghost  interaction.Rect
	grabDX float64
	mouse  bool
}

// beginGesture moves key's cell into dragging or expending. It fails when
// the cell is not mounted, not scheduled, or already busy.
func beginGesture(t *timeline, key string, kind gestureKind) (*gesture, error) {
	c, ok := t.cells[key]
	if !ok {
		return nil, fmt.Errorf("block %q is not visible", key)
	}
	if c.bar.W <= 0 {
		return nil, fmt.Errorf("block %q has no schedule", key)
	}
	target := state.CellDragging
	if kind != gestureDrag {
		target = state.CellExpending
	}
	moved, ok := c.sm.To([]state.CellState{state.CellNormal, state.CellHovering}, target)
	if !ok {
		return nil, fmt.Errorf("block %q is busy", key)
	}
	g := &gesture{kind: kind, key: key, cell: c, moved: moved, origin: c.bar, ghost: c.bar}
	if kind != gestureDrag {
		g.held, _ = c.handle.To([]state.HandleState{state.HandlePending}, state.HandleDragging)
	}
	return g, nil
}

// nudge moves the ghost by whole cells horizontally. Resizes never shrink
// below one cell.
func (g *gesture) nudge(cells int, cw float64) {
	dx := float64(cells) * cw
	switch g.kind {
	case gestureDrag:
		g.ghost.X += dx
	case gestureResizeEnd:
		g.ghost.W = max(cw, g.ghost.W+dx)
	case gestureResizeStart:
		right := g.ghost.X + g.ghost.W
		g.ghost.X = min(right-cw, g.ghost.X+dx)
		g.ghost.W = right - g.ghost.X
	}
}

// follow tracks a pointer at x.
func (g *gesture) follow(x, cw float64) {
	switch g.kind {
	case gestureDrag:
		g.ghost.X = x - g.grabDX
	case gestureResizeEnd:
		g.ghost.W = max(cw, x-g.ghost.X)
	case gestureResizeStart:
		right := g.ghost.X + g.ghost.W
		g.ghost.X = min(right-cw, x)
		g.ghost.W = right - g.ghost.X
	}
}

// moveRow puts a dragged ghost on the row at y.
func (g *gesture) moveRow(y float64) {
	if g.kind == gestureDrag {
		g.ghost.Y = y
	}
}

// live reports whether the gesture still owns its cell: the cell is the one
// mounted for key and no later transition superseded the gesture's.
func (g *gesture) live(t *timeline) bool {
	c, ok := t.cells[g.key]
	return ok && c == g.cell && c.sm.Validate(g.moved)
}

// cancel restores the cell's pre-gesture state.
func (g *gesture) cancel() {
	g.cell.sm.Revoke(g.moved)
	if g.kind != gestureDrag {
		g.cell.handle.Revoke(g.held)
	}
}

// finish makes the gesture's state change final.
func (g *gesture) finish() {
	g.cell.sm.To([]state.CellState{state.CellDragging, state.CellExpending}, state.CellHovering, state.Irrevocable())
	if g.kind != gestureDrag {
		g.cell.handle.To([]state.HandleState{state.HandleDragging}, state.HandlePending, state.Irrevocable())
	}
}

// commitResult reports what a committed gesture requested. Err holds the
// store's reason when the requested span was refused.
type commitResult struct {
	Requested domain.Span
	Applied   domain.Span
	Target    string
	Group     string
	Err       error
}

// Rejected reports whether the store refused the requested span.
func (r commitResult) Rejected() bool {
	return r.Err != nil
}

// Adjusted reports whether the store accepted the request but kept a
// different span, as amend hooks may do.
func (r commitResult) Adjusted() bool {
	return r.Err == nil && r.Requested != r.Applied
}

// commit applies the ghost to the store. A drag keeps the duration, lands
// after the block under the ghost, adopts its parent, and in grouped mode
// joins the group under the ghost. A resize reads both edges off the ghost.
func (g *gesture) commit(store *app.Store, registry *interaction.Registry) commitResult {
	defer g.finish()
	block, ok := store.BlockByKey(g.key)
	if !ok {
		return commitResult{}
	}
	var res commitResult

	switch g.kind {
	case gestureDrag:
		start := store.DateByX(g.ghost.X)
		oldStart, err := domain.ParseDate(block.StartTime)
		if err != nil {
			return res
		}
		days := domain.DiffUnits(start, oldStart, domain.ModeDay)
		end, err := domain.AddDateUnits(block.EndTime, days, domain.ModeDay)
		if err != nil {
			return res
		}
		res.Requested = domain.Span{Start: domain.FormatDate(start), End: end}

		center := interaction.Point{X: g.ghost.X, Y: g.ghost.Y + g.ghost.H/2}
		if target, _, ok := registry.FindIntersectingBlock(center); ok && target != g.key {
			res.Target = target
			g.reorder(store, block, target)
		}
		if store.View().SortMode == domain.SortGroup {
			if group, _, ok := registry.FindIntersectingGroup(center); ok && group != block.GroupKey {
				res.Group = group
				if err := store.ChangeBlockGroup(g.key, group); err != nil {
					store.Logger().Error("change block group failed", "key", g.key, "group", group, "err", err)
				}
			}
		}
	default:
		start := store.DateByX(g.ghost.X)
		end := store.DateByX(g.ghost.X + g.ghost.W - 1)
		res.Requested = domain.Span{Start: domain.FormatDate(start), End: domain.FormatDate(end)}
	}

	if res.Requested != block.Span() {
		if err := store.ApplyBlockTime(g.key, res.Requested.Start, res.Requested.End); err != nil {
			store.Logger().Debug("gesture time rejected", "key", g.key, "err", err)
			res.Err = err
		}
	}
	if after, ok := store.BlockByKey(g.key); ok {
		res.Applied = after.Span()
	}
	return res
}

func (g *gesture) reorder(store *app.Store, block domain.Block, target string) {
	if err := store.MoveBlockAfter(g.key, target); err != nil {
		store.Logger().Error("move block failed", "key", g.key, "after", target, "err", err)
		return
	}
	tb, ok := store.BlockByKey(target)
	if !ok || tb.ParentKey == block.ParentKey {
		return
	}
	if err := store.ChangeBlockParent(g.key, tb.ParentKey); err != nil {
		store.Logger().Error("adopt parent failed", "key", g.key, "parent", tb.ParentKey, "err", err)
	}
}
