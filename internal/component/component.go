// Package component names the extensible core widgets and the drawing
// surface features may decorate them with.
package component

import (
	"github.com/hylla/gantt/internal/app"
	"github.com/hylla/gantt/internal/extension"
	"github.com/hylla/gantt/internal/interaction"
	"github.com/hylla/gantt/internal/state"
)

// Component kinds features can attach to.
var (
	CellKind      = extension.NewKind[Cell]("cell")
	ContainerKind = extension.NewKind[Container]("timeline-container")
)

// Cell is one mounted time block.
type Cell interface {
	Key() string
	State() *state.Machine[state.CellState]
	Bounds() interaction.Rect
	Layer() *Layer
}

// Container is the scrollable timeline body holding every cell.
type Container interface {
	Store() *app.Store
	Cell(key string) (Cell, bool)
	Overlay() *Layer
}
