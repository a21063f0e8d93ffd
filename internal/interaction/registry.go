// Package interaction tracks the mounted row and group widgets so pointer
// queries during a drag can resolve the block or group under the cursor.
package interaction

// Point is a position in canvas pixels.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle in canvas pixels.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Contains reports whether p lies inside r. Edges count as inside.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W &&
		p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Origin returns the top-left corner of r.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// Widget is any mounted element with live on-screen bounds.
type Widget interface {
	Bounds() Rect
}

// Registry maps keys to mounted widgets. Queries scan in registration order,
// so the first registered widget wins on overlap.
type Registry struct {
	blocks keyedWidgets
	groups keyedWidgets
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		blocks: newKeyedWidgets(),
		groups: newKeyedWidgets(),
	}
}

// SetBlockWidget registers or replaces the widget for a block row.
func (r *Registry) SetBlockWidget(key string, w Widget) {
	r.blocks.set(key, w)
}

// SetGroupWidget registers or replaces the widget for a group band.
func (r *Registry) SetGroupWidget(key string, w Widget) {
	r.groups.set(key, w)
}

// RemoveBlockWidget forgets the block widget, typically on unmount.
func (r *Registry) RemoveBlockWidget(key string) {
	r.blocks.remove(key)
}

// RemoveGroupWidget forgets the group widget.
func (r *Registry) RemoveGroupWidget(key string) {
	r.groups.remove(key)
}

// BlockWidget returns the mounted widget for key.
func (r *Registry) BlockWidget(key string) (Widget, bool) {
	return r.blocks.get(key)
}

// GroupWidget returns the mounted group widget for key.
func (r *Registry) GroupWidget(key string) (Widget, bool) {
	return r.groups.get(key)
}

// BlockPosition returns the top-left corner of the mounted block widget.
func (r *Registry) BlockPosition(key string) (Point, bool) {
	w, ok := r.blocks.get(key)
	if !ok {
		return Point{}, false
	}
	return w.Bounds().Origin(), true
}

// BlockKeys returns mounted block keys in registration order.
func (r *Registry) BlockKeys() []string {
	return append([]string(nil), r.blocks.order...)
}

// FindIntersectingBlock returns the first mounted block whose bounds contain p.
func (r *Registry) FindIntersectingBlock(p Point) (string, Widget, bool) {
	return r.blocks.find(p)
}

// FindIntersectingGroup returns the first mounted group whose bounds contain p.
func (r *Registry) FindIntersectingGroup(p Point) (string, Widget, bool) {
	return r.groups.find(p)
}

type keyedWidgets struct {
	order   []string
	widgets map[string]Widget
}

func newKeyedWidgets() keyedWidgets {
	return keyedWidgets{widgets: map[string]Widget{}}
}

func (k *keyedWidgets) set(key string, w Widget) {
	if _, ok := k.widgets[key]; !ok {
		k.order = append(k.order, key)
	}
	k.widgets[key] = w
}

func (k *keyedWidgets) remove(key string) {
	if _, ok := k.widgets[key]; !ok {
		return
	}
	delete(k.widgets, key)
	for i, candidate := range k.order {
		if candidate == key {
			k.order = append(k.order[:i], k.order[i+1:]...)
			return
		}
	}
}

func (k *keyedWidgets) get(key string) (Widget, bool) {
	w, ok := k.widgets[key]
	return w, ok
}

func (k *keyedWidgets) find(p Point) (string, Widget, bool) {
	for _, key := range k.order {
		w := k.widgets[key]
		if w.Bounds().Contains(p) {
			return key, w, true
		}
	}
	return "", nil, false
}
