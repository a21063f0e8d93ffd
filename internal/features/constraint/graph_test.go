package constraint

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hylla/gantt/internal/domain"
)

func TestGraphStoresBothDirections(t *testing.T) {
	g := NewGraph()
	if err := g.Add(domain.EndOf("a"), domain.StartOf("b")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := g.Add(domain.EndOf("a"), domain.StartOf("c")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	want := []domain.ConstraintItem{domain.StartOf("b"), domain.StartOf("c")}
	if diff := cmp.Diff(want, g.Constrains(domain.EndOf("a"))); diff != "" {
		t.Fatalf("Constrains() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]domain.ConstraintItem{domain.EndOf("a")}, g.ConstrainedBy(domain.StartOf("c"))); diff != "" {
		t.Fatalf("ConstrainedBy() mismatch (-want +got):\n%s", diff)
	}
	if !g.HasConstrain("a") || g.HasConstrain("b") || !g.HasConstrained("b") {
		t.Fatal("HasConstrain/HasConstrained disagree with stored links")
	}
	if g.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", g.Len())
	}
}

func TestGraphValidate(t *testing.T) {
	cases := []struct {
		name    string
		strict  bool
		seed    []Link
		from    domain.ConstraintItem
		to      domain.ConstraintItem
		wantErr error
	}{
		{
			name:    "self link",
			from:    domain.EndOf("a"),
			to:      domain.StartOf("a"),
			wantErr: ErrSelfLink,
		},
		{
			name:    "same pair other edges",
			seed:    []Link{{From: domain.EndOf("a"), To: domain.StartOf("b")}},
			from:    domain.StartOf("a"),
			to:      domain.EndOf("b"),
			wantErr: ErrConstraintOverlap,
		},
		{
			name:    "reverse direction",
			seed:    []Link{{From: domain.EndOf("a"), To: domain.StartOf("b")}},
			from:    domain.EndOf("b"),
			to:      domain.StartOf("a"),
			wantErr: ErrConstraintOverlap,
		},
		{
			name: "transitive loop allowed by default",
			seed: []Link{
				{From: domain.EndOf("a"), To: domain.StartOf("b")},
				{From: domain.EndOf("b"), To: domain.StartOf("c")},
			},
			from: domain.EndOf("c"),
			to:   domain.StartOf("a"),
		},
		{
			name:   "transitive loop rejected when strict",
			strict: true,
			seed: []Link{
				{From: domain.EndOf("a"), To: domain.StartOf("b")},
				{From: domain.EndOf("b"), To: domain.StartOf("c")},
			},
			from:    domain.EndOf("c"),
			to:      domain.StartOf("a"),
			wantErr: ErrConstraintCycle,
		},
		{
			name: "unrelated blocks",
			seed: []Link{{From: domain.EndOf("a"), To: domain.StartOf("b")}},
			from: domain.EndOf("c"),
			to:   domain.StartOf("d"),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGraph(WithStrictCycles(tc.strict))
			for _, l := range tc.seed {
				if err := g.Add(l.From, l.To); err != nil {
					t.Fatalf("seed Add() error = %v", err)
				}
			}
			err := g.Add(tc.from, tc.to)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("Add() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Add() error = %v, want %v", err, tc.wantErr)
			}
			if g.Len() != len(tc.seed) {
				t.Fatalf("rejected link was stored")
			}
		})
	}
}

func TestGraphRejectsMalformedItems(t *testing.T) {
	g := NewGraph()
	err := g.Add(domain.ConstraintItem{Key: "a", Edge: "middle"}, domain.StartOf("b"))
	if !errors.Is(err, domain.ErrInvalidEdge) {
		t.Fatalf("Add() error = %v, want ErrInvalidEdge", err)
	}
}

func TestClampEdgeRules(t *testing.T) {
	cases := []struct {
		name  string
		edge  domain.Edge
		by    domain.Edge
		value string
		limit string
		want  string
	}{
		{name: "start after start kept", edge: domain.EdgeStart, by: domain.EdgeStart, value: "2024-01-05", limit: "2024-01-03", want: "2024-01-05"},
		{name: "start before start clamped", edge: domain.EdgeStart, by: domain.EdgeStart, value: "2024-01-01", limit: "2024-01-03", want: "2024-01-03"},
		{name: "start on end pushed", edge: domain.EdgeStart, by: domain.EdgeEnd, value: "2024-01-03", limit: "2024-01-03", want: "2024-01-04"},
		{name: "start after end kept", edge: domain.EdgeStart, by: domain.EdgeEnd, value: "2024-01-04", limit: "2024-01-03", want: "2024-01-04"},
		{name: "end after end clamped", edge: domain.EdgeEnd, by: domain.EdgeEnd, value: "2024-01-09", limit: "2024-01-07", want: "2024-01-07"},
		{name: "end on start pulled", edge: domain.EdgeEnd, by: domain.EdgeStart, value: "2024-01-07", limit: "2024-01-07", want: "2024-01-06"},
		{name: "unscheduled limit ignored", edge: domain.EdgeEnd, by: domain.EdgeStart, value: "2024-01-07", limit: "", want: "2024-01-07"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := clampEdge(tc.edge, tc.by, tc.value, tc.limit, domain.ModeDay); got != tc.want {
				t.Fatalf("clampEdge() = %s, want %s", got, tc.want)
			}
		})
	}
}
