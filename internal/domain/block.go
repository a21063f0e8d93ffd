package domain

import "strings"

// Block is a time-boxed chart item. StartTime and EndTime are ISO dates; an
// empty value means the edge is unscheduled.
type Block struct {
	Key             string
	StartTime       string
	EndTime         string
	Text            string
	Index           int
	ParentKey       string
	GroupKey        string
	StartConstraint bool
	EndConstraint   bool
}

// BlockInput holds the caller-provided fields for a new block. Zero values
// fall back to defaults (generated key, unscheduled span, appended index).
type BlockInput struct {
	Key       string
	StartTime string
	EndTime   string
	Text      string
	ParentKey string
	GroupKey  string
}

// Span is a block's calendar extent.
type Span struct {
	Start string
	End   string
}

// NewBlock validates in and builds a block at index.
func NewBlock(in BlockInput, index int) (Block, error) {
	in.Key = strings.TrimSpace(in.Key)
	in.StartTime = strings.TrimSpace(in.StartTime)
	in.EndTime = strings.TrimSpace(in.EndTime)
	in.ParentKey = strings.TrimSpace(in.ParentKey)
	in.GroupKey = strings.TrimSpace(in.GroupKey)

	if in.Key == "" {
		return Block{}, ErrInvalidKey
	}
	if index < 0 {
		return Block{}, ErrInvalidIndex
	}
	if in.ParentKey == in.Key {
		return Block{}, ErrInvalidKey
	}
	span, err := NormalizeSpan(Span{Start: in.StartTime, End: in.EndTime})
	if err != nil {
		return Block{}, err
	}
	if err := span.Validate(); err != nil {
		return Block{}, err
	}

	return Block{
		Key:       in.Key,
		StartTime: span.Start,
		EndTime:   span.End,
		Text:      in.Text,
		Index:     index,
		ParentKey: in.ParentKey,
		GroupKey:  in.GroupKey,
	}, nil
}

// Span returns the block's current extent.
func (b Block) Span() Span {
	return Span{Start: b.StartTime, End: b.EndTime}
}

// Scheduled reports whether both edges are set.
func (b Block) Scheduled() bool {
	return b.Span().Scheduled()
}

// Scheduled reports whether both edges are set.
func (s Span) Scheduled() bool {
	return s.Start != "" && s.End != ""
}

// Validate rejects a fully scheduled span whose start falls after its end.
func (s Span) Validate() error {
	if !s.Scheduled() {
		return nil
	}
	if s.Start > s.End {
		return ErrInvalidTimeRange
	}
	return nil
}

// NormalizeSpan re-formats both set edges as canonical ISO dates.
func NormalizeSpan(s Span) (Span, error) {
	out := Span{}
	if s.Start != "" {
		t, err := ParseDate(s.Start)
		if err != nil {
			return Span{}, err
		}
		out.Start = FormatDate(t)
	}
	if s.End != "" {
		t, err := ParseDate(s.End)
		if err != nil {
			return Span{}, err
		}
		out.End = FormatDate(t)
	}
	return out, nil
}
