package main

import (
	"fmt"

	"github.com/hylla/gantt/internal/app"
	"github.com/hylla/gantt/internal/domain"
	"github.com/hylla/gantt/internal/features/constraint"
)

// demoPlan is the sample project loaded on every start. Parents precede
// their children so containment holds from the first frame.
var demoPlan = []domain.BlockInput{
	{Key: "discovery", Text: "Discovery", StartTime: "2024-01-02", EndTime: "2024-01-19", GroupKey: "plan"},
	{Key: "interviews", Text: "User interviews", StartTime: "2024-01-02", EndTime: "2024-01-09", ParentKey: "discovery", GroupKey: "plan"},
	{Key: "audit", Text: "Competitive audit", StartTime: "2024-01-08", EndTime: "2024-01-12", ParentKey: "discovery", GroupKey: "plan"},
	{Key: "brief", Text: "Product brief", StartTime: "2024-01-15", EndTime: "2024-01-19", ParentKey: "discovery", GroupKey: "plan"},
	{Key: "design", Text: "Design", StartTime: "2024-01-22", EndTime: "2024-02-16", GroupKey: "design"},
	{Key: "wireframes", Text: "Wireframes", StartTime: "2024-01-22", EndTime: "2024-01-31", ParentKey: "design", GroupKey: "design"},
	{Key: "visual", Text: "Visual design", StartTime: "2024-02-01", EndTime: "2024-02-13", ParentKey: "design", GroupKey: "design"},
	{Key: "review", Text: "Design review", StartTime: "2024-02-14", EndTime: "2024-02-16", ParentKey: "design", GroupKey: "design"},
	{Key: "build", Text: "Build", StartTime: "2024-02-19", EndTime: "2024-03-29", GroupKey: "build"},
	{Key: "api", Text: "API", StartTime: "2024-02-19", EndTime: "2024-03-08", ParentKey: "build", GroupKey: "build"},
	{Key: "client", Text: "Client", StartTime: "2024-02-26", EndTime: "2024-03-22", ParentKey: "build", GroupKey: "build"},
	{Key: "qa", Text: "QA pass", StartTime: "2024-03-25", EndTime: "2024-03-29", ParentKey: "build", GroupKey: "build"},
	{Key: "beta", Text: "Private beta", StartTime: "2024-04-01", EndTime: "2024-04-12", GroupKey: "launch"},
	{Key: "docs", Text: "Docs", StartTime: "2024-04-01", EndTime: "2024-04-10", GroupKey: "launch"},
	{Key: "release", Text: "Release", StartTime: "2024-04-15", EndTime: "2024-04-19", GroupKey: "launch"},
}

// seedDemo adds the sample plan to store.
func seedDemo(store *app.Store) error {
	for _, in := range demoPlan {
		if _, err := store.AddBlock(in); err != nil {
			return fmt.Errorf("add %q: %w", in.Key, err)
		}
	}
	return nil
}

// demoLinks chains the sample phases end to start.
func demoLinks() []constraint.Link {
	pairs := [][2]string{
		{"discovery", "design"},
		{"design", "build"},
		{"wireframes", "visual"},
		{"build", "beta"},
		{"beta", "release"},
	}
	out := make([]constraint.Link, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, constraint.Link{From: domain.EndOf(p[0]), To: domain.StartOf(p[1])})
	}
	return out
}

// demoMilestones marks the plan's kickoff and launch when the config names none.
func demoMilestones() []domain.Milestone {
	return []domain.Milestone{
		{Key: "kickoff", Text: "Kickoff", Time: "2024-01-02"},
		{Key: "launch", Text: "Launch", Time: "2024-04-15"},
	}
}
