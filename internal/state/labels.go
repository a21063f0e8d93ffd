package state

// CellState labels a time-block widget.
type CellState string

const (
	CellNormal    CellState = "normal"
	CellHovering  CellState = "hovering"
	CellDragging  CellState = "dragging"
	CellExpending CellState = "expending"
)

// HandleState labels a resize handle.
type HandleState string

const (
	HandlePending  HandleState = "pending"
	HandleDragging HandleState = "dragging"
)

// ButtonState labels a clickable button.
type ButtonState string

const (
	ButtonNormal   ButtonState = "normal"
	ButtonHovering ButtonState = "hovering"
	ButtonActive   ButtonState = "active"
)

// MarkerState labels a constraint-end marker.
type MarkerState string

const (
	MarkerHidden  MarkerState = "hidden"
	MarkerShow    MarkerState = "show"
	MarkerOpacity MarkerState = "opacity"
)
