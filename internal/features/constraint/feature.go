package constraint

import (
	"fmt"

	"github.com/hylla/gantt/internal/app"
	"github.com/hylla/gantt/internal/component"
	"github.com/hylla/gantt/internal/domain"
	"github.com/hylla/gantt/internal/extension"
	"github.com/hylla/gantt/internal/state"
)

// markerOffset is the gap in pixels between a cell edge and its marker.
const markerOffset = 4

// Feature wires a Graph into the store's time pipeline and the timeline's
// cell and container components.
type Feature struct {
	store   *app.Store
	graph   *Graph
	markers map[string]*cellMarkers
}

// Install registers the amend and post hooks and both component extensions.
func Install(store *app.Store, reg *extension.Registry, graph *Graph) *Feature {
	if graph == nil {
		graph = NewGraph()
	}
	f := &Feature{
		store:   store,
		graph:   graph,
		markers: map[string]*cellMarkers{},
	}
	store.RegisterTimeAmendHook(f.amend)
	store.RegisterPostTimeHook(f.propagate)
	extension.Register(reg, component.CellKind, f.cellExtension)
	extension.Register(reg, component.ContainerKind, f.containerExtension)
	return f
}

// Graph returns the underlying link graph.
func (f *Feature) Graph() *Graph {
	return f.graph
}

// Link validates and adds from -> to, flags both edges, and pulls the
// restricted block into compliance.
func (f *Feature) Link(from, to domain.ConstraintItem) error {
	for _, item := range []domain.ConstraintItem{from, to} {
		if _, ok := f.store.BlockByKey(item.Key); !ok {
			return fmt.Errorf("link %s -> %s: %w", from, to, app.ErrNotFound)
		}
	}
	if err := f.graph.Add(from, to); err != nil {
		return err
	}
	if err := f.store.SetBlockConstraintFlag(from.Key, from.Edge, true); err != nil {
		return err
	}
	if err := f.store.SetBlockConstraintFlag(to.Key, to.Edge, true); err != nil {
		return err
	}
	f.store.Logger().Info("constraint link added", "from", from.String(), "to", to.String())
	f.enforce(to)
	return nil
}

// LinkAll adds every link, stopping at the first failure.
func (f *Feature) LinkAll(links []Link) error {
	for _, l := range links {
		if err := f.Link(l.From, l.To); err != nil {
			return err
		}
	}
	return nil
}

// amend clamps each edge of a requested span against the items restricting it.
func (f *Feature) amend(key string, span domain.Span) domain.Span {
	span.Start = f.amendEdge(domain.StartOf(key), span.Start)
	span.End = f.amendEdge(domain.EndOf(key), span.End)
	return span
}

// amendEdge clamps value against every item restricting item.
func (f *Feature) amendEdge(item domain.ConstraintItem, value string) string {
	if value == "" {
		return value
	}
	mode := f.store.View().Mode
	for _, by := range f.graph.ConstrainedBy(item) {
		value = clampEdge(item.Edge, by.Edge, value, f.edgeTime(by), mode)
	}
	return value
}

// clampEdge applies the four link rules: a start follows a start and strictly
// follows an end; an end precedes an end and strictly precedes a start.
func clampEdge(edge, by domain.Edge, value, limit string, mode domain.ViewMode) string {
	if value == "" || limit == "" {
		return value
	}
	switch {
	case edge == domain.EdgeStart && by == domain.EdgeStart:
		if value < limit {
			return limit
		}
	case edge == domain.EdgeStart:
		if value <= limit {
			return addUnits(limit, 1, mode)
		}
	case by == domain.EdgeEnd:
		if value > limit {
			return limit
		}
	default:
		if value >= limit {
			return addUnits(limit, -1, mode)
		}
	}
	return value
}

// propagate re-requests every block restricted by key after key moved.
func (f *Feature) propagate(key string, _ domain.Span) {
	for _, edge := range []domain.Edge{domain.EdgeStart, domain.EdgeEnd} {
		for _, dependent := range f.graph.Constrains(domain.ConstraintItem{Key: key, Edge: edge}) {
			f.enforce(dependent)
		}
	}
}

// enforce shifts the block owning item, duration intact, until item satisfies
// its links. The store's amend hook settles whatever the shift leaves.
func (f *Feature) enforce(item domain.ConstraintItem) {
	block, ok := f.store.BlockByKey(item.Key)
	if !ok || !block.Scheduled() {
		return
	}
	current := f.edgeTime(item)
	want := f.amendEdge(item, current)
	if want == current {
		return
	}
	days, err := domain.DiffDateUnits(want, current, domain.ModeDay)
	if err != nil {
		return
	}
	start := addUnits(block.StartTime, days, domain.ModeDay)
	end := addUnits(block.EndTime, days, domain.ModeDay)
	f.store.ChangeBlockTime(item.Key, start, end)
}

func (f *Feature) edgeTime(item domain.ConstraintItem) string {
	b, ok := f.store.BlockByKey(item.Key)
	if !ok {
		return ""
	}
	if item.Edge == domain.EdgeStart {
		return b.StartTime
	}
	return b.EndTime
}

func addUnits(date string, n int, mode domain.ViewMode) string {
	out, err := domain.AddDateUnits(date, n, mode)
	if err != nil {
		return date
	}
	return out
}

// cellMarkers tracks the two edge markers of one mounted cell.
type cellMarkers struct {
	start *state.Machine[state.MarkerState]
	end   *state.Machine[state.MarkerState]
}

// MarkerState returns the marker state of key's edge, if the cell is mounted.
func (f *Feature) MarkerState(item domain.ConstraintItem) (state.MarkerState, bool) {
	m, ok := f.markers[item.Key]
	if !ok {
		return "", false
	}
	if item.Edge == domain.EdgeStart {
		return m.start.Current(), true
	}
	return m.end.Current(), true
}

func (f *Feature) cellExtension(cell component.Cell) extension.Lifecycle {
	markers := &cellMarkers{
		start: state.New(state.MarkerHidden),
		end:   state.New(state.MarkerHidden),
	}
	return extension.Lifecycle{
		Mount: func() {
			f.markers[cell.Key()] = markers
		},
		Update: func() {
			f.updateMarker(cell, markers.start, domain.StartOf(cell.Key()))
			f.updateMarker(cell, markers.end, domain.EndOf(cell.Key()))
		},
		Unmount: func() {
			if f.markers[cell.Key()] == markers {
				delete(f.markers, cell.Key())
			}
		},
	}
}

// updateMarker shows the marker while the cell is engaged, dims it when the
// edge carries a link, and hides it otherwise.
func (f *Feature) updateMarker(cell component.Cell, m *state.Machine[state.MarkerState], item domain.ConstraintItem) {
	linked := len(f.graph.Constrains(item)) > 0 || len(f.graph.ConstrainedBy(item)) > 0
	target := state.MarkerHidden
	switch {
	case !cell.State().Is(state.CellNormal):
		target = state.MarkerShow
	case linked:
		target = state.MarkerOpacity
	}
	if !m.Is(target) {
		m.To(nil, target, state.Irrevocable())
	}
	if m.Is(state.MarkerHidden) {
		return
	}
	b := cell.Bounds()
	x := b.X - markerOffset
	if item.Edge == domain.EdgeEnd {
		x = b.X + b.W + markerOffset
	}
	tone := component.ToneAccent
	if m.Is(state.MarkerOpacity) {
		tone = component.ToneMuted
	}
	cell.Layer().AddMark(component.Mark{X: x, Y: b.Y + b.H/2, Text: "◆", Tone: tone})
}

// containerExtension draws an elbow connector for every link whose two cells
// are mounted.
func (f *Feature) containerExtension(container component.Container) extension.Lifecycle {
	return extension.Lifecycle{
		Update: func() {
			overlay := container.Overlay()
			for _, link := range f.graph.Links() {
				from, okFrom := container.Cell(link.From.Key)
				to, okTo := container.Cell(link.To.Key)
				if !okFrom || !okTo {
					continue
				}
				x1, y1 := edgePoint(from, link.From.Edge)
				x2, y2 := edgePoint(to, link.To.Edge)
				tone := component.ToneAccent
				if !f.satisfied(link) {
					tone = component.ToneError
				}
				mid := x1 + (x2-x1)/2
				if link.From.Edge == domain.EdgeEnd {
					mid = max(x1+markerOffset, mid)
				}
				overlay.AddPath(x1, y1, mid, x2, y2, tone)
			}
		},
	}
}

func edgePoint(cell component.Cell, edge domain.Edge) (float64, float64) {
	b := cell.Bounds()
	if edge == domain.EdgeStart {
		return b.X, b.Y + b.H/2
	}
	return b.X + b.W, b.Y + b.H/2
}

// satisfied reports whether link's restricted edge currently obeys it.
func (f *Feature) satisfied(link Link) bool {
	value := f.edgeTime(link.To)
	return clampEdge(link.To.Edge, link.From.Edge, value, f.edgeTime(link.From), f.store.View().Mode) == value
}
