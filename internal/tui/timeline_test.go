package tui

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hylla/gantt/internal/app"
	"github.com/hylla/gantt/internal/component"
	"github.com/hylla/gantt/internal/domain"
	"github.com/hylla/gantt/internal/extension"
	"github.com/hylla/gantt/internal/interaction"
	"github.com/hylla/gantt/internal/state"
)

func visibleBlockKeys(store *app.Store) []string {
	var out []string
	for _, row := range store.VisibleRows() {
		if row.Kind == app.RowBlock {
			out = append(out, row.BlockKey)
		}
	}
	return out
}

func TestTimelineMountsOnlyVisibleRows(t *testing.T) {
	store := newTestStore(t, domain.SortList)
	store.SetSize(940, 10)
	reg := extension.NewRegistry()
	mounted := map[string]int{}
	unmounted := map[string]int{}
	extension.Register(reg, component.CellKind, func(c component.Cell) extension.Lifecycle {
		return extension.Lifecycle{
			Mount:   func() { mounted[c.Key()]++ },
			Unmount: func() { unmounted[c.Key()]++ },
		}
	})

	tl := newTimeline(store, reg)
	tl.sync()
	before := visibleBlockKeys(store)
	if diff := cmp.Diff(before, tl.order); diff != "" {
		t.Fatalf("mounted order mismatch (-want +got):\n%s", diff)
	}
	if slices.Contains(tl.order, "c") {
		t.Fatalf("c mounted before scrolling, order = %v", tl.order)
	}

	store.SetScroll(0, 96)
	tl.sync()
	after := visibleBlockKeys(store)
	if diff := cmp.Diff(after, tl.order); diff != "" {
		t.Fatalf("mounted order after scroll mismatch (-want +got):\n%s", diff)
	}
	if mounted["c"] != 1 || unmounted["a"] != 1 {
		t.Fatalf("mounted = %v unmounted = %v", mounted, unmounted)
	}
	if _, ok := tl.registry.BlockWidget("a"); ok {
		t.Fatal("expected a's widget to be removed after scrolling away")
	}

	tl.close()
	for _, key := range after {
		if unmounted[key] != 1 {
			t.Fatalf("unmounted[%q] = %d after close, want 1", key, unmounted[key])
		}
	}
}

func TestTimelineBarsUseScreenX(t *testing.T) {
	tl := newTestTimeline(t, domain.SortList)
	c := tl.cells["b"]
	if diff := cmp.Diff(interaction.Rect{X: 240, Y: 32, W: 120, H: 32}, c.bar); diff != "" {
		t.Fatalf("bar mismatch (-want +got):\n%s", diff)
	}

	tl.store.SetScroll(120, 0)
	tl.sync()
	if got := tl.cells["b"].bar.X; got != 120 {
		t.Fatalf("scrolled bar x = %v, want 120", got)
	}
	pos, ok := tl.BlockPosition("b")
	if !ok || pos != (interaction.Point{X: 120, Y: 32}) {
		t.Fatalf("BlockPosition(b) = %+v, %v", pos, ok)
	}
}

func TestTimelineRegistersGroupBands(t *testing.T) {
	tl := newTestTimeline(t, domain.SortGroup)
	y, _ := tl.store.RowY("b")
	key, _, ok := tl.registry.FindIntersectingGroup(interaction.Point{X: 10, Y: y + 1})
	if !ok || key != "g2" {
		t.Fatalf("FindIntersectingGroup() = %q, %v, want g2", key, ok)
	}

	if err := tl.store.SetSortMode(domain.SortList); err != nil {
		t.Fatalf("SetSortMode() error = %v", err)
	}
	tl.sync()
	if _, _, ok := tl.registry.FindIntersectingGroup(interaction.Point{X: 10, Y: y + 1}); ok {
		t.Fatal("expected group bands to clear in list mode")
	}
}

func TestTimelineHoverMovesBetweenCells(t *testing.T) {
	tl := newTestTimeline(t, domain.SortList)
	tl.hover("a")
	tl.hover("b")
	if tl.cells["a"].sm.Is(state.CellHovering) || !tl.cells["b"].sm.Is(state.CellHovering) {
		t.Fatalf("a = %q b = %q", tl.cells["a"].sm.Current(), tl.cells["b"].sm.Current())
	}
	tl.hover("")
	if tl.cells["b"].sm.Is(state.CellHovering) {
		t.Fatal("expected empty hover to clear b")
	}
}
