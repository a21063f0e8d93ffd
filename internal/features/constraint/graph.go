// Package constraint implements dependency links between block edges: a
// link from (A, end) to (B, start) means B may not start until A has ended.
package constraint

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hylla/gantt/internal/domain"
)

// ErrConstraintOverlap is returned when the two blocks are already linked.
var ErrConstraintOverlap = errors.New("blocks already linked")

// ErrConstraintCycle is returned in strict mode when a link would close a loop.
var ErrConstraintCycle = errors.New("constraint cycle")

// ErrSelfLink is returned when both ends of a link belong to one block.
var ErrSelfLink = errors.New("self-referencing link")

// Link is one directed edge of the graph.
type Link struct {
	From domain.ConstraintItem
	To   domain.ConstraintItem
}

// Graph stores links in both directions.
type Graph struct {
	// constrains maps an item to the items it restricts.
	constrains map[domain.ConstraintItem][]domain.ConstraintItem
	// constrainedBy maps an item to the items restricting it.
	constrainedBy map[domain.ConstraintItem][]domain.ConstraintItem
	links         []Link
	strict        bool
}

// GraphOption configures a Graph.
type GraphOption func(*Graph)

// WithStrictCycles also rejects links that close a loop through other blocks.
func WithStrictCycles(strict bool) GraphOption {
	return func(g *Graph) {
		g.strict = strict
	}
}

// NewGraph creates an empty graph.
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{
		constrains:    map[domain.ConstraintItem][]domain.ConstraintItem{},
		constrainedBy: map[domain.ConstraintItem][]domain.ConstraintItem{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Validate reports whether from -> to may be added. Any existing link between
// any edge of the two blocks, in either direction, is an overlap.
func (g *Graph) Validate(from, to domain.ConstraintItem) error {
	if from.Key == to.Key {
		return fmt.Errorf("%w: %s", ErrSelfLink, from.Key)
	}
	items := []domain.ConstraintItem{
		domain.StartOf(from.Key), domain.EndOf(from.Key),
		domain.StartOf(to.Key), domain.EndOf(to.Key),
	}
	for _, a := range items {
		for _, b := range items {
			if a == b {
				continue
			}
			if slices.Contains(g.constrains[a], b) || slices.Contains(g.constrainedBy[a], b) {
				return fmt.Errorf("%w: %s -> %s", ErrConstraintOverlap, from, to)
			}
		}
	}
	if g.strict && g.hasPath(to.Key, from.Key) {
		return fmt.Errorf("%w: link %s -> %s", ErrConstraintCycle, from, to)
	}
	return nil
}

// Add validates and stores from -> to.
func (g *Graph) Add(from, to domain.ConstraintItem) error {
	for _, item := range []domain.ConstraintItem{from, to} {
		if item.Key == "" || (item.Edge != domain.EdgeStart && item.Edge != domain.EdgeEnd) {
			return fmt.Errorf("%w: %q", domain.ErrInvalidEdge, item.String())
		}
	}
	if err := g.Validate(from, to); err != nil {
		return err
	}
	g.constrains[from] = append(g.constrains[from], to)
	g.constrainedBy[to] = append(g.constrainedBy[to], from)
	g.links = append(g.links, Link{From: from, To: to})
	return nil
}

// Constrains returns the items item restricts, in insertion order.
func (g *Graph) Constrains(item domain.ConstraintItem) []domain.ConstraintItem {
	return slices.Clone(g.constrains[item])
}

// ConstrainedBy returns the items restricting item, in insertion order.
func (g *Graph) ConstrainedBy(item domain.ConstraintItem) []domain.ConstraintItem {
	return slices.Clone(g.constrainedBy[item])
}

// HasConstrain reports whether either edge of key restricts another block.
func (g *Graph) HasConstrain(key string) bool {
	return len(g.constrains[domain.StartOf(key)]) > 0 || len(g.constrains[domain.EndOf(key)]) > 0
}

// HasConstrained reports whether either edge of key is restricted.
func (g *Graph) HasConstrained(key string) bool {
	return len(g.constrainedBy[domain.StartOf(key)]) > 0 || len(g.constrainedBy[domain.EndOf(key)]) > 0
}

// Links returns every link in insertion order.
func (g *Graph) Links() []Link {
	return slices.Clone(g.links)
}

// Len returns the number of links.
func (g *Graph) Len() int {
	return len(g.links)
}

// hasPath walks block-level successors breadth first.
func (g *Graph) hasPath(src, dst string) bool {
	if src == dst {
		return false
	}
	visited := map[string]bool{src: true}
	queue := []string{src}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, edge := range []domain.Edge{domain.EdgeStart, domain.EdgeEnd} {
			for _, next := range g.constrains[domain.ConstraintItem{Key: cur, Edge: edge}] {
				if next.Key == dst {
					return true
				}
				if !visited[next.Key] {
					visited[next.Key] = true
					queue = append(queue, next.Key)
				}
			}
		}
	}
	return false
}
