package app

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hylla/gantt/internal/domain"
)

// maxCascadeDepth stops constraint feedback loops that never settle.
const maxCascadeDepth = 1024

// AddBlock appends a block. An empty key is replaced with a generated one.
func (s *Store) AddBlock(in domain.BlockInput) (domain.Block, error) {
	in.Key = strings.TrimSpace(in.Key)
	if in.Key == "" {
		in.Key = s.idGen()
	}
	if s.find(in.Key) >= 0 {
		return domain.Block{}, fmt.Errorf("%w: duplicate key %q", domain.ErrInvalidKey, in.Key)
	}
	block, err := domain.NewBlock(in, len(s.blocks))
	if err != nil {
		return domain.Block{}, fmt.Errorf("add block: %w", err)
	}
	s.blocks = append(s.blocks, block)
	s.changed(EventBlockAdded, block.Key)
	return block, nil
}

// ChangeBlockIndex moves key so it ends up at index, clamped to the list
// bounds, and renumbers every block densely.
func (s *Store) ChangeBlockIndex(key string, index int) error {
	i := s.find(key)
	if i < 0 {
		return fmt.Errorf("change block index %q: %w", key, ErrNotFound)
	}
	index = min(max(index, 0), len(s.blocks)-1)
	if index == i {
		return nil
	}
	block := s.blocks[i]
	s.blocks = slices.Delete(s.blocks, i, i+1)
	s.blocks = slices.Insert(s.blocks, index, block)
	s.reindex()
	s.changed(EventBlockIndex, key)
	return nil
}

// MoveBlockAfter places key directly below target.
func (s *Store) MoveBlockAfter(key, target string) error {
	i, j := s.find(key), s.find(target)
	if i < 0 || j < 0 {
		return fmt.Errorf("move block %q after %q: %w", key, target, ErrNotFound)
	}
	if i == j {
		return nil
	}
	if j < i {
		j++
	}
	return s.ChangeBlockIndex(key, j)
}

func (s *Store) reindex() {
	for i := range s.blocks {
		s.blocks[i].Index = i
	}
}

// ChangeBlockParent sets the containment parent. An empty parentKey detaches
// the block. A parent that does not exist yet is accepted.
func (s *Store) ChangeBlockParent(key, parentKey string) error {
	i := s.find(key)
	if i < 0 {
		return fmt.Errorf("change block parent %q: %w", key, ErrNotFound)
	}
	parentKey = strings.TrimSpace(parentKey)
	if parentKey == key {
		return fmt.Errorf("change block parent %q: %w", key, domain.ErrInvalidKey)
	}
	if s.isAncestor(key, parentKey) {
		return fmt.Errorf("change block parent %q to %q: %w", key, parentKey, ErrParentCycle)
	}
	if s.blocks[i].ParentKey == parentKey {
		return nil
	}
	s.blocks[i].ParentKey = parentKey
	s.changed(EventBlockField, key)
	return nil
}

// isAncestor reports whether ancestor appears on the parent chain of key's
// prospective parent, i.e. whether linking would close a loop.
func (s *Store) isAncestor(ancestor, from string) bool {
	seen := map[string]bool{}
	for cur := from; cur != "" && !seen[cur]; {
		if cur == ancestor {
			return true
		}
		seen[cur] = true
		b, ok := s.BlockByKey(cur)
		if !ok {
			return false
		}
		cur = b.ParentKey
	}
	return false
}

// ChangeBlockGroup moves the block under groupKey in grouped display.
func (s *Store) ChangeBlockGroup(key, groupKey string) error {
	i := s.find(key)
	if i < 0 {
		return fmt.Errorf("change block group %q: %w", key, ErrNotFound)
	}
	groupKey = strings.TrimSpace(groupKey)
	if s.blocks[i].GroupKey == groupKey {
		return nil
	}
	s.blocks[i].GroupKey = groupKey
	s.changed(EventBlockField, key)
	return nil
}

// ChangeBlockText replaces the label.
func (s *Store) ChangeBlockText(key, text string) error {
	i := s.find(key)
	if i < 0 {
		return fmt.Errorf("change block text %q: %w", key, ErrNotFound)
	}
	if s.blocks[i].Text == text {
		return nil
	}
	s.blocks[i].Text = text
	s.changed(EventBlockField, key)
	return nil
}

// SetBlockConstraintFlag toggles the display hint for one edge.
func (s *Store) SetBlockConstraintFlag(key string, edge domain.Edge, on bool) error {
	i := s.find(key)
	if i < 0 {
		return fmt.Errorf("set constraint flag %q: %w", key, ErrNotFound)
	}
	b := &s.blocks[i]
	switch edge {
	case domain.EdgeStart:
		if b.StartConstraint == on {
			return nil
		}
		b.StartConstraint = on
	case domain.EdgeEnd:
		if b.EndConstraint == on {
			return nil
		}
		b.EndConstraint = on
	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidEdge, edge)
	}
	s.changed(EventBlockField, key)
	return nil
}

// ChangeBlockTime is the interactive entry point: failures are logged and
// the block keeps its previous span.
func (s *Store) ChangeBlockTime(key, start, end string) {
	if err := s.ApplyBlockTime(key, start, end); err != nil {
		s.logger.Error("change block time rejected", "key", key, "start", start, "end", end, "err", err)
	}
}

// ApplyBlockTime requests a new span for key and returns the first failure.
// The span passes parent containment, then every amend hook, and is retried
// until amendment settles. On commit the change cascades to children and the
// post hooks run. On failure the target's span is restored; with
// RollbackSubtree every block is restored.
func (s *Store) ApplyBlockTime(key, start, end string) error {
	span, err := domain.NormalizeSpan(domain.Span{Start: strings.TrimSpace(start), End: strings.TrimSpace(end)})
	if err != nil {
		return fmt.Errorf("change block time %q: %w", key, err)
	}
	if s.find(key) < 0 {
		return fmt.Errorf("change block time %q: %w", key, ErrNotFound)
	}

	outer := s.depth == 0
	var snapshot []domain.Block
	if outer && s.rollback == RollbackSubtree {
		snapshot = slices.Clone(s.blocks)
	}
	before := s.version

	err = s.applyTime(key, span)
	if err != nil && snapshot != nil {
		s.blocks = snapshot
		s.version++
	}
	if outer && s.version != before {
		s.notify(Event{Kind: EventBlockTime, Key: key, Version: s.version})
	}
	return err
}

func (s *Store) applyTime(key string, requested domain.Span) error {
	if s.depth >= maxCascadeDepth {
		return fmt.Errorf("change block time %q: %w", key, ErrCascadeTooDeep)
	}
	s.depth++
	defer func() { s.depth-- }()

	for round := 0; ; round++ {
		i := s.find(key)
		if i < 0 {
			return fmt.Errorf("change block time %q: %w", key, ErrNotFound)
		}
		block := s.blocks[i]
		current := block.Span()
		if requested == current {
			return nil
		}
		if round >= s.maxAmendRounds {
			return fmt.Errorf("change block time %q after %d rounds: %w", key, round, ErrAmendmentDiverged)
		}

		amended := s.runAmendHooks(key, s.amendWithParent(block, requested))
		if err := amended.Validate(); err != nil {
			return fmt.Errorf("change block time %q to %s..%s: %w", key, amended.Start, amended.End, err)
		}
		if amended != requested {
			requested = amended
			continue
		}
		return s.commitTime(key, current, amended)
	}
}

func (s *Store) commitTime(key string, prev, next domain.Span) (err error) {
	s.setSpan(key, next)
	defer func() {
		if err != nil {
			s.setSpan(key, prev)
		}
	}()

	if err := s.cascade(key, prev, next); err != nil {
		return err
	}
	s.runPostHooks(key, next)
	return nil
}

func (s *Store) setSpan(key string, span domain.Span) {
	i := s.find(key)
	if i < 0 {
		return
	}
	s.blocks[i].StartTime = span.Start
	s.blocks[i].EndTime = span.End
	s.changed(EventBlockTime, key)
}

// cascade shifts every direct child by the number of mode units the parent's
// start moved.
func (s *Store) cascade(key string, prev, next domain.Span) error {
	if prev.Start == "" || next.Start == "" {
		return nil
	}
	mode := s.view.Mode
	delta, err := domain.DiffDateUnits(next.Start, prev.Start, mode)
	if err != nil {
		return err
	}
	for _, child := range s.Children(key) {
		shifted, err := shiftSpan(child.Span(), delta, mode)
		if err != nil {
			return err
		}
		if err := s.applyTime(child.Key, shifted); err != nil {
			return err
		}
	}
	return nil
}

func shiftSpan(span domain.Span, n int, mode domain.ViewMode) (domain.Span, error) {
	out := span
	var err error
	if span.Start != "" {
		if out.Start, err = domain.AddDateUnits(span.Start, n, mode); err != nil {
			return domain.Span{}, err
		}
	}
	if span.End != "" {
		if out.End, err = domain.AddDateUnits(span.End, n, mode); err != nil {
			return domain.Span{}, err
		}
	}
	return out, nil
}

// amendWithParent keeps a child from starting before its parent. The end
// moves by the same number of days so the requested duration is preserved.
func (s *Store) amendWithParent(block domain.Block, span domain.Span) domain.Span {
	if block.ParentKey == "" || span.Start == "" {
		return span
	}
	parent, ok := s.BlockByKey(block.ParentKey)
	if !ok || parent.StartTime == "" || span.Start >= parent.StartTime {
		return span
	}
	days, err := domain.DiffDateUnits(parent.StartTime, span.Start, domain.ModeDay)
	if err != nil {
		return span
	}
	out := domain.Span{Start: parent.StartTime, End: span.End}
	if span.End != "" {
		if out.End, err = domain.AddDateUnits(span.End, days, domain.ModeDay); err != nil {
			return span
		}
	}
	return out
}
