package main

import (
	"fmt"
	"io"
	"strconv"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hylla/gantt/internal/app"
	"github.com/hylla/gantt/internal/config"
	"github.com/hylla/gantt/internal/domain"
)

// newInspectCmd dumps the chart geometry for one viewport without a terminal UI.
func newInspectCmd(v *viper.Viper, stdout io.Writer) *cobra.Command {
	var (
		width  float64
		height float64
		date   string
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the visible rows and their pixel geometry",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			opts, err := resolveOptions(v)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(opts, config.Default())
			if err != nil {
				return err
			}
			c, err := buildChart(cfg, app.NewCharmLogger(nil))
			if err != nil {
				return err
			}
			c.store.SetSize(width, height)
			if date != "" {
				at, err := domain.ParseDate(date)
				if err != nil {
					return fmt.Errorf("--date: %w", err)
				}
				c.store.SetScroll(c.store.ScrollXByDate(at), 0)
			}
			_, err = io.WriteString(stdout, renderInspect(c)+"\n")
			return err
		},
	}
	cmd.Flags().Float64Var(&width, "width", 1200, "viewport width in pixels")
	cmd.Flags().Float64Var(&height, "height", 600, "viewport height in pixels")
	cmd.Flags().StringVar(&date, "date", "", "scroll so this date (YYYY-MM-DD) is the first visible cell")
	return cmd
}

// renderInspect formats the viewport summary and a table of visible rows.
func renderInspect(c chart) string {
	store := c.store
	view := store.View()
	cells := store.TimeCellRangeInView()
	scrollX, scrollY := store.Scroll()
	summary := fmt.Sprintf("%s view %s → %s  cells %d..%d  scroll %.0f,%.0f  sort %s",
		view.Mode,
		domain.FormatDate(store.ViewStartDate()),
		domain.FormatDate(store.ViewEndDate()),
		cells.Start, cells.End, scrollX, scrollY, view.SortMode,
	)

	rows := make([][]string, 0)
	for _, row := range store.VisibleRows() {
		if row.Kind != app.RowBlock {
			rows = append(rows, []string{"", "+ add", "", "", row.GroupKey, "", ftoa(row.Y), "", ""})
			continue
		}
		b, ok := store.BlockByKey(row.BlockKey)
		if !ok {
			continue
		}
		x, w := "", ""
		if start, err := domain.ParseDate(b.StartTime); err == nil {
			x = ftoa(store.BlockXByDate(start))
		}
		if width, ok := store.BlockWidth(b.Key); ok {
			w = ftoa(width)
		}
		rows = append(rows, []string{b.Key, b.Text, b.StartTime, b.EndTime, b.GroupKey, x, ftoa(row.Y), w, jumpMarks(store, b.Key)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("key", "text", "start", "end", "group", "x", "y", "width", "jump").
		Rows(rows...)
	out := summary + "\n" + t.String()

	if c.constraints != nil {
		out += fmt.Sprintf("\nlinks: %d", c.constraints.Graph().Len())
		for _, l := range c.constraints.Graph().Links() {
			out += fmt.Sprintf("\n  %s → %s", l.From, l.To)
		}
	}
	if c.milestones != nil {
		for _, m := range c.milestones.Milestones() {
			out += fmt.Sprintf("\nmilestone %s %s", m.Time, m.Text)
		}
	}
	return out
}

func jumpMarks(store *app.Store, key string) string {
	out := ""
	if store.StartOffscreen(key) {
		out += "◀"
	}
	if store.EndOffscreen(key) {
		out += "▶"
	}
	return out
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
