package app

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	charmLog "github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/hylla/gantt/internal/domain"
)

func newTestStore(t *testing.T, cfg StoreConfig) *Store {
	t.Helper()
	if cfg.IDGen == nil {
		n := 0
		cfg.IDGen = func() string {
			n++
			return fmt.Sprintf("b%d", n)
		}
	}
	s, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return s
}

func mustAdd(t *testing.T, s *Store, in domain.BlockInput) domain.Block {
	t.Helper()
	b, err := s.AddBlock(in)
	if err != nil {
		t.Fatalf("AddBlock(%+v) error = %v", in, err)
	}
	return b
}

func spanOf(t *testing.T, s *Store, key string) domain.Span {
	t.Helper()
	b, ok := s.BlockByKey(key)
	if !ok {
		t.Fatalf("BlockByKey(%q) missing", key)
	}
	return b.Span()
}

func assertDenseIndexes(t *testing.T, s *Store) {
	t.Helper()
	for i, b := range s.Blocks() {
		if b.Index != i {
			t.Fatalf("block %q at position %d has index %d", b.Key, i, b.Index)
		}
		got, ok := s.BlockByIndex(i)
		if !ok || got.Key != b.Key {
			t.Fatalf("BlockByIndex(%d) = %q, want %q", i, got.Key, b.Key)
		}
	}
}

func TestAddBlockDefaults(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	b := mustAdd(t, s, domain.BlockInput{Text: "first"})
	if b.Key != "b1" || b.Index != 0 || b.Scheduled() {
		t.Fatalf("AddBlock() = %+v, want generated key, index 0, unscheduled", b)
	}
	second := mustAdd(t, s, domain.BlockInput{Key: " x ", StartTime: "2024-01-03", EndTime: "2024-01-04"})
	if second.Key != "x" || second.Index != 1 {
		t.Fatalf("AddBlock() = %+v, want key x at index 1", second)
	}
	if _, err := s.AddBlock(domain.BlockInput{Key: "x"}); !errors.Is(err, domain.ErrInvalidKey) {
		t.Fatalf("AddBlock(duplicate) error = %v, want ErrInvalidKey", err)
	}
	if _, err := s.AddBlock(domain.BlockInput{StartTime: "2024-01-05", EndTime: "2024-01-01"}); !errors.Is(err, domain.ErrInvalidTimeRange) {
		t.Fatalf("AddBlock(reversed) error = %v, want ErrInvalidTimeRange", err)
	}
}

func TestChangeBlockIndexKeepsIndexesDense(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	for _, key := range []string{"a", "b", "c", "d", "e"} {
		mustAdd(t, s, domain.BlockInput{Key: key})
	}
	if err := s.ChangeBlockIndex("a", 3); err != nil {
		t.Fatalf("ChangeBlockIndex() error = %v", err)
	}
	if err := s.ChangeBlockIndex("e", -4); err != nil {
		t.Fatalf("ChangeBlockIndex() error = %v", err)
	}
	var keys []string
	for _, b := range s.Blocks() {
		keys = append(keys, b.Key)
	}
	if diff := cmp.Diff([]string{"e", "b", "c", "d", "a"}, keys); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	assertDenseIndexes(t, s)
	if err := s.ChangeBlockIndex("missing", 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ChangeBlockIndex(missing) error = %v, want ErrNotFound", err)
	}
}

func TestIndexDensityUnderRandomReorders(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	rng := rand.New(rand.NewPCG(7, 11))
	for step := 0; step < 300; step++ {
		if s.Len() == 0 || rng.IntN(3) == 0 {
			mustAdd(t, s, domain.BlockInput{})
		} else {
			b, _ := s.BlockByIndex(rng.IntN(s.Len()))
			if err := s.ChangeBlockIndex(b.Key, rng.IntN(s.Len()+4)-2); err != nil {
				t.Fatalf("ChangeBlockIndex() error = %v", err)
			}
		}
		assertDenseIndexes(t, s)
	}
}

func TestMoveBlockAfter(t *testing.T) {
	cases := []struct {
		name   string
		key    string
		target string
		want   []string
	}{
		{name: "down", key: "a", target: "c", want: []string{"b", "c", "a", "d"}},
		{name: "up", key: "d", target: "a", want: []string{"a", "d", "b", "c"}},
		{name: "onto itself", key: "b", target: "b", want: []string{"a", "b", "c", "d"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestStore(t, StoreConfig{})
			for _, key := range []string{"a", "b", "c", "d"} {
				mustAdd(t, s, domain.BlockInput{Key: key})
			}
			if err := s.MoveBlockAfter(tc.key, tc.target); err != nil {
				t.Fatalf("MoveBlockAfter() error = %v", err)
			}
			var got []string
			for _, b := range s.Blocks() {
				got = append(got, b.Key)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("order mismatch (-want +got):\n%s", diff)
			}
			assertDenseIndexes(t, s)
		})
	}
}

func TestChangeBlockParentRejectsCycles(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	mustAdd(t, s, domain.BlockInput{Key: "a"})
	mustAdd(t, s, domain.BlockInput{Key: "b", ParentKey: "a"})
	mustAdd(t, s, domain.BlockInput{Key: "c", ParentKey: "b"})

	if err := s.ChangeBlockParent("a", "c"); !errors.Is(err, ErrParentCycle) {
		t.Fatalf("ChangeBlockParent(a, c) error = %v, want ErrParentCycle", err)
	}
	if err := s.ChangeBlockParent("a", "a"); !errors.Is(err, domain.ErrInvalidKey) {
		t.Fatalf("ChangeBlockParent(a, a) error = %v, want ErrInvalidKey", err)
	}
	if err := s.ChangeBlockParent("c", "ghost"); err != nil {
		t.Fatalf("ChangeBlockParent(dangling) error = %v", err)
	}
	if err := s.ChangeBlockGroup("c", "g1"); err != nil {
		t.Fatalf("ChangeBlockGroup() error = %v", err)
	}
	if err := s.ChangeBlockText("c", "renamed"); err != nil {
		t.Fatalf("ChangeBlockText() error = %v", err)
	}
	c, _ := s.BlockByKey("c")
	if c.ParentKey != "ghost" || c.GroupKey != "g1" || c.Text != "renamed" {
		t.Fatalf("block c = %+v", c)
	}
	if len(s.BlockTree()["a"]) != 1 || len(s.GroupMap()["g1"]) != 1 {
		t.Fatalf("derived maps stale: tree=%v groups=%v", s.BlockTree(), s.GroupMap())
	}
}

func TestParentContainmentClampPreservesDuration(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	mustAdd(t, s, domain.BlockInput{Key: "p", StartTime: "2024-01-01", EndTime: "2024-01-10"})
	mustAdd(t, s, domain.BlockInput{Key: "c", ParentKey: "p", StartTime: "2024-01-02", EndTime: "2024-01-03"})

	if err := s.ApplyBlockTime("c", "2023-12-20", "2023-12-25"); err != nil {
		t.Fatalf("ApplyBlockTime() error = %v", err)
	}
	want := domain.Span{Start: "2024-01-01", End: "2024-01-06"}
	if diff := cmp.Diff(want, spanOf(t, s, "c")); diff != "" {
		t.Fatalf("child span mismatch (-want +got):\n%s", diff)
	}
}

func TestDanglingParentIsNoContainment(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	mustAdd(t, s, domain.BlockInput{Key: "c", ParentKey: "ghost", StartTime: "2024-01-02", EndTime: "2024-01-03"})
	if err := s.ApplyBlockTime("c", "2023-12-20", "2023-12-25"); err != nil {
		t.Fatalf("ApplyBlockTime() error = %v", err)
	}
	if got := spanOf(t, s, "c"); got.Start != "2023-12-20" {
		t.Fatalf("span = %+v, want unclamped", got)
	}
}

func TestCascadeShiftsDescendants(t *testing.T) {
	cases := []struct {
		name  string
		mode  domain.ViewMode
		moveP domain.Span
		wantC domain.Span
		wantG domain.Span
	}{
		{
			name:  "day",
			mode:  domain.ModeDay,
			moveP: domain.Span{Start: "2024-01-04", End: "2024-01-13"},
			wantC: domain.Span{Start: "2024-01-05", End: "2024-01-07"},
			wantG: domain.Span{Start: "2024-01-06", End: "2024-01-06"},
		},
		{
			name:  "week",
			mode:  domain.ModeWeek,
			moveP: domain.Span{Start: "2024-01-15", End: "2024-01-24"},
			wantC: domain.Span{Start: "2024-01-16", End: "2024-01-18"},
			wantG: domain.Span{Start: "2024-01-17", End: "2024-01-17"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			view := domain.DefaultViewConfig()
			view.Mode = tc.mode
			s := newTestStore(t, StoreConfig{View: view})
			mustAdd(t, s, domain.BlockInput{Key: "p", StartTime: "2024-01-01", EndTime: "2024-01-10"})
			mustAdd(t, s, domain.BlockInput{Key: "c", ParentKey: "p", StartTime: "2024-01-02", EndTime: "2024-01-04"})
			mustAdd(t, s, domain.BlockInput{Key: "g", ParentKey: "c", StartTime: "2024-01-03", EndTime: "2024-01-03"})

			if err := s.ApplyBlockTime("p", tc.moveP.Start, tc.moveP.End); err != nil {
				t.Fatalf("ApplyBlockTime() error = %v", err)
			}
			if diff := cmp.Diff(tc.moveP, spanOf(t, s, "p")); diff != "" {
				t.Fatalf("parent mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantC, spanOf(t, s, "c")); diff != "" {
				t.Fatalf("child mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tc.wantG, spanOf(t, s, "g")); diff != "" {
				t.Fatalf("grandchild mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEndToEndParentMoveShiftsChild(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	mustAdd(t, s, domain.BlockInput{Key: "A", StartTime: "2024-01-02", EndTime: "2024-01-05"})
	mustAdd(t, s, domain.BlockInput{Key: "B", ParentKey: "A", StartTime: "2024-01-04", EndTime: "2024-01-05"})

	s.ChangeBlockTime("A", "2024-01-03", "2024-01-06")

	if diff := cmp.Diff(domain.Span{Start: "2024-01-03", End: "2024-01-06"}, spanOf(t, s, "A")); diff != "" {
		t.Fatalf("A mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(domain.Span{Start: "2024-01-05", End: "2024-01-06"}, spanOf(t, s, "B")); diff != "" {
		t.Fatalf("B mismatch (-want +got):\n%s", diff)
	}
}

func TestHookForcingInvalidRangeRollsBackTarget(t *testing.T) {
	var buf bytes.Buffer
	s := newTestStore(t, StoreConfig{Logger: NewCharmLogger(charmLog.New(&buf))})
	mustAdd(t, s, domain.BlockInput{Key: "a", StartTime: "2024-01-02", EndTime: "2024-01-05"})
	s.RegisterTimeAmendHook(func(key string, span domain.Span) domain.Span {
		return domain.Span{Start: span.End, End: span.Start}
	})
	before := spanOf(t, s, "a")

	err := s.ApplyBlockTime("a", "2024-01-10", "2024-01-12")
	if !errors.Is(err, domain.ErrInvalidTimeRange) {
		t.Fatalf("ApplyBlockTime() error = %v, want ErrInvalidTimeRange", err)
	}
	if diff := cmp.Diff(before, spanOf(t, s, "a")); diff != "" {
		t.Fatalf("span changed after rejection (-want +got):\n%s", diff)
	}

	s.ChangeBlockTime("a", "2024-01-10", "2024-01-12")
	if !strings.Contains(buf.String(), "change block time rejected") {
		t.Fatalf("ChangeBlockTime() did not log the rejection, got %q", buf.String())
	}
	if diff := cmp.Diff(before, spanOf(t, s, "a")); diff != "" {
		t.Fatalf("span changed after logged rejection (-want +got):\n%s", diff)
	}
}

func newFailingCascadeStore(t *testing.T, rollback RollbackMode) *Store {
	t.Helper()
	s := newTestStore(t, StoreConfig{Rollback: rollback})
	mustAdd(t, s, domain.BlockInput{Key: "p", StartTime: "2024-01-01", EndTime: "2024-01-10"})
	mustAdd(t, s, domain.BlockInput{Key: "ok", ParentKey: "p", StartTime: "2024-01-02", EndTime: "2024-01-03"})
	mustAdd(t, s, domain.BlockInput{Key: "bad", ParentKey: "p", StartTime: "2024-01-04", EndTime: "2024-01-05"})
	s.RegisterTimeAmendHook(func(key string, span domain.Span) domain.Span {
		if key == "bad" {
			return domain.Span{Start: "2024-03-01", End: "2024-02-01"}
		}
		return span
	})
	return s
}

func TestCascadeFailureRestoresTargetOnly(t *testing.T) {
	s := newFailingCascadeStore(t, RollbackTarget)
	err := s.ApplyBlockTime("p", "2024-01-03", "2024-01-12")
	if !errors.Is(err, domain.ErrInvalidTimeRange) {
		t.Fatalf("ApplyBlockTime() error = %v, want ErrInvalidTimeRange", err)
	}
	if got := spanOf(t, s, "p"); got.Start != "2024-01-01" || got.End != "2024-01-10" {
		t.Fatalf("target span = %+v, want restored", got)
	}
	if got := spanOf(t, s, "ok"); got.Start != "2024-01-04" {
		t.Fatalf("sibling span = %+v, want the partial shift kept", got)
	}
}

func TestCascadeFailureRestoresSubtree(t *testing.T) {
	s := newFailingCascadeStore(t, RollbackSubtree)
	before := s.Blocks()
	if err := s.ApplyBlockTime("p", "2024-01-03", "2024-01-12"); err == nil {
		t.Fatal("ApplyBlockTime() error = nil, want failure")
	}
	if diff := cmp.Diff(before, s.Blocks()); diff != "" {
		t.Fatalf("blocks changed after subtree rollback (-want +got):\n%s", diff)
	}
}

func TestNonSettlingAmendmentFails(t *testing.T) {
	s := newTestStore(t, StoreConfig{MaxAmendRounds: 4})
	mustAdd(t, s, domain.BlockInput{Key: "a", StartTime: "2024-01-02", EndTime: "2024-01-05"})
	s.RegisterTimeAmendHook(func(_ string, span domain.Span) domain.Span {
		start, _ := domain.AddDateUnits(span.Start, 1, domain.ModeDay)
		end, _ := domain.AddDateUnits(span.End, 1, domain.ModeDay)
		return domain.Span{Start: start, End: end}
	})
	err := s.ApplyBlockTime("a", "2024-01-10", "2024-01-12")
	if !errors.Is(err, ErrAmendmentDiverged) {
		t.Fatalf("ApplyBlockTime() error = %v, want ErrAmendmentDiverged", err)
	}
	if got := spanOf(t, s, "a"); got.Start != "2024-01-02" {
		t.Fatalf("span = %+v, want unchanged", got)
	}
}

func TestHooksComposeInRegistrationOrder(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	mustAdd(t, s, domain.BlockInput{Key: "a", StartTime: "2024-01-02", EndTime: "2024-01-05"})
	mustAdd(t, s, domain.BlockInput{Key: "follower", StartTime: "2024-01-02", EndTime: "2024-01-02"})
	var seen []string
	s.RegisterTimeAmendHook(func(key string, span domain.Span) domain.Span {
		seen = append(seen, "first:"+span.End)
		if key == "a" && span.End < "2024-01-20" {
			span.End = "2024-01-20"
		}
		return span
	})
	s.RegisterTimeAmendHook(func(key string, span domain.Span) domain.Span {
		seen = append(seen, "second:"+span.End)
		return span
	})
	var posted []domain.Span
	s.RegisterPostTimeHook(func(key string, span domain.Span) {
		if key != "a" {
			return
		}
		posted = append(posted, span)
		s.ChangeBlockTime("follower", span.End, span.End)
	})

	if err := s.ApplyBlockTime("a", "2024-01-03", "2024-01-06"); err != nil {
		t.Fatalf("ApplyBlockTime() error = %v", err)
	}
	if len(seen) < 2 || seen[0] != "first:2024-01-06" || seen[1] != "second:2024-01-20" {
		t.Fatalf("hook calls = %v", seen)
	}
	want := []domain.Span{{Start: "2024-01-03", End: "2024-01-20"}}
	if diff := cmp.Diff(want, posted); diff != "" {
		t.Fatalf("post hook spans mismatch (-want +got):\n%s", diff)
	}
	if got := spanOf(t, s, "follower"); got.Start != "2024-01-20" {
		t.Fatalf("follower span = %+v, want moved by post hook", got)
	}
}

func TestApplyBlockTimeNoopAndMissing(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	mustAdd(t, s, domain.BlockInput{Key: "a", StartTime: "2024-01-02", EndTime: "2024-01-05"})
	version := s.Version()
	if err := s.ApplyBlockTime("a", "2024-01-02", "2024-01-05"); err != nil {
		t.Fatalf("ApplyBlockTime(same) error = %v", err)
	}
	if s.Version() != version {
		t.Fatalf("Version() moved on a no-op change")
	}
	if err := s.ApplyBlockTime("zzz", "2024-01-02", "2024-01-05"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ApplyBlockTime(missing) error = %v, want ErrNotFound", err)
	}
	if err := s.ApplyBlockTime("a", "not-a-date", "2024-01-05"); !errors.Is(err, domain.ErrInvalidDate) {
		t.Fatalf("ApplyBlockTime(bad date) error = %v, want ErrInvalidDate", err)
	}
}

func TestSubscribeReceivesSettledEvents(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	var events []Event
	stop := s.Subscribe(func(ev Event) { events = append(events, ev) })

	mustAdd(t, s, domain.BlockInput{Key: "p", StartTime: "2024-01-01", EndTime: "2024-01-10"})
	mustAdd(t, s, domain.BlockInput{Key: "c", ParentKey: "p", StartTime: "2024-01-02", EndTime: "2024-01-04"})
	s.ChangeBlockTime("p", "2024-01-02", "2024-01-11")

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3: %+v", len(events), events)
	}
	last := events[2]
	if last.Kind != EventBlockTime || last.Key != "p" || last.Version != s.Version() {
		t.Fatalf("last event = %+v, version %d", last, s.Version())
	}

	stop()
	mustAdd(t, s, domain.BlockInput{})
	if len(events) != 3 {
		t.Fatalf("unsubscribed listener still notified")
	}
}

func TestSubscribersNotifiedInRegistrationOrder(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	var order []string
	subscribe := func(name string) func() {
		return s.Subscribe(func(Event) { order = append(order, name) })
	}
	subscribe("first")
	stopSecond := subscribe("second")
	subscribe("third")
	subscribe("fourth")

	mustAdd(t, s, domain.BlockInput{Key: "a"})
	stopSecond()
	subscribe("fifth")
	mustAdd(t, s, domain.BlockInput{Key: "b"})

	want := []string{
		"first", "second", "third", "fourth",
		"first", "third", "fourth", "fifth",
	}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Fatalf("notification order mismatch (-want +got):\n%s", diff)
	}
}

func TestConstraintFlags(t *testing.T) {
	s := newTestStore(t, StoreConfig{})
	mustAdd(t, s, domain.BlockInput{Key: "a"})
	if err := s.SetBlockConstraintFlag("a", domain.EdgeEnd, true); err != nil {
		t.Fatalf("SetBlockConstraintFlag() error = %v", err)
	}
	if err := s.SetBlockConstraintFlag("a", domain.Edge("middle"), true); !errors.Is(err, domain.ErrInvalidEdge) {
		t.Fatalf("SetBlockConstraintFlag(bad edge) error = %v", err)
	}
	a, _ := s.BlockByKey("a")
	if !a.EndConstraint || a.StartConstraint {
		t.Fatalf("flags = start %v end %v", a.StartConstraint, a.EndConstraint)
	}
}
