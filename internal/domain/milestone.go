package domain

import "strings"

// Milestone marks a single date on the timeline.
type Milestone struct {
	Key  string
	Text string
	Time string
}

// NewMilestone validates and normalizes a milestone. An empty key defaults to the date.
func NewMilestone(key, text, date string) (Milestone, error) {
	t, err := ParseDate(date)
	if err != nil {
		return Milestone{}, err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = FormatDate(t)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		text = FormatDate(t)
	}
	return Milestone{Key: key, Text: text, Time: FormatDate(t)}, nil
}
