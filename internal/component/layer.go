package component

// Tone selects the palette entry used to draw a decoration.
type Tone string

// ToneAccent and related constants name decoration palettes.
const (
	ToneAccent    Tone = "accent"
	ToneMuted     Tone = "muted"
	ToneError     Tone = "error"
	ToneMilestone Tone = "milestone"
)

// Mark is a glyph or short label anchored at a pixel position. Width, when
// set, reserves horizontal space for the label background.
type Mark struct {
	X     float64
	Y     float64
	Width float64
	Text  string
	Tone  Tone
}

// Segment is an axis-aligned line between two pixel positions.
type Segment struct {
	X1   float64
	Y1   float64
	X2   float64
	Y2   float64
	Tone Tone
}

// Layer collects decorations for one frame. Owners reset it before running
// their pipeline's Update.
type Layer struct {
	marks    []Mark
	segments []Segment
}

// Reset drops every decoration.
func (l *Layer) Reset() {
	l.marks = l.marks[:0]
	l.segments = l.segments[:0]
}

// AddMark queues a mark.
func (l *Layer) AddMark(m Mark) {
	l.marks = append(l.marks, m)
}

// AddSegment queues a segment.
func (l *Layer) AddSegment(s Segment) {
	l.segments = append(l.segments, s)
}

// AddPath queues an elbow connector from (x1, y1) to (x2, y2) through midX.
func (l *Layer) AddPath(x1, y1, midX, x2, y2 float64, tone Tone) {
	l.AddSegment(Segment{X1: x1, Y1: y1, X2: midX, Y2: y1, Tone: tone})
	l.AddSegment(Segment{X1: midX, Y1: y1, X2: midX, Y2: y2, Tone: tone})
	l.AddSegment(Segment{X1: midX, Y1: y2, X2: x2, Y2: y2, Tone: tone})
}

// Marks returns queued marks in insertion order.
func (l *Layer) Marks() []Mark {
	return l.marks
}

// Segments returns queued segments in insertion order.
func (l *Layer) Segments() []Segment {
	return l.segments
}
