package domain

import (
	"fmt"
	"strings"
)

// Edge names one end of a block's span.
type Edge string

// Edge values.
const (
	EdgeStart Edge = "start"
	EdgeEnd   Edge = "end"
)

// Opposite returns the other edge.
func (e Edge) Opposite() Edge {
	if e == EdgeStart {
		return EdgeEnd
	}
	return EdgeStart
}

// ConstraintItem addresses one edge of one block.
type ConstraintItem struct {
	Key  string
	Edge Edge
}

// StartOf returns the start edge item of key.
func StartOf(key string) ConstraintItem { return ConstraintItem{Key: key, Edge: EdgeStart} }

// EndOf returns the end edge item of key.
func EndOf(key string) ConstraintItem { return ConstraintItem{Key: key, Edge: EdgeEnd} }

// String renders the item as "<key>-<edge>".
func (i ConstraintItem) String() string {
	return i.Key + "-" + string(i.Edge)
}

// ParseConstraintItem parses "<key>-<start|end>". Keys may contain dashes;
// the edge is taken from the last segment.
func ParseConstraintItem(raw string) (ConstraintItem, error) {
	raw = strings.TrimSpace(raw)
	idx := strings.LastIndex(raw, "-")
	if idx <= 0 || idx == len(raw)-1 {
		return ConstraintItem{}, fmt.Errorf("%w: %q", ErrInvalidEdge, raw)
	}
	edge := Edge(raw[idx+1:])
	if edge != EdgeStart && edge != EdgeEnd {
		return ConstraintItem{}, fmt.Errorf("%w: %q", ErrInvalidEdge, raw)
	}
	return ConstraintItem{Key: raw[:idx], Edge: edge}, nil
}
