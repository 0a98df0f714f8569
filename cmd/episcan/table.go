package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/cognicore/episcan/pkg/episcan/store"
)

// column describes how one table column renders
type column struct {
	header  string
	numeric bool
	// merge blanks a cell that repeats the one above, for grouping keys
	merge bool
	// maxWidth wraps longer cells; 0 leaves the column unbounded
	maxWidth int
}

var resultColumns = []column{
	{header: "Episode", merge: true},
	{header: "Tier"},
	{header: "Kind"},
	{header: "Name", maxWidth: 24},
	{header: "Confidence", numeric: true},
	{header: "Mentions", numeric: true},
	{header: "Details", maxWidth: 48},
}

var brandColumns = []column{
	{header: "Brand", maxWidth: 32},
	{header: "Episodes", numeric: true},
	{header: "Avg confidence", numeric: true},
}

func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		header[i] = c.header
		cfg := table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignLeft,
			AutoMerge:   c.merge,
		}
		if c.numeric {
			cfg.Align = text.AlignRight
		}
		if c.maxWidth > 0 {
			cfg.WidthMax = c.maxWidth
			cfg.WidthMaxEnforcer = text.WrapSoft
		}
		configs[i] = cfg
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

// resultRows flattens stored results into one row per entity; episodes with
// nothing selected still get a row so the tier is visible
func resultRows(results []store.Result) [][]string {
	var rows [][]string
	for _, r := range results {
		if len(r.Entities) == 0 {
			rows = append(rows, []string{r.EpisodeID, r.Tier, "", "", "", "", ""})
			continue
		}
		for _, e := range r.Entities {
			name := e.Name
			if e.Inferred {
				name += " (inferred)"
			}
			rows = append(rows, []string{
				r.EpisodeID,
				r.Tier,
				e.Kind,
				name,
				fmt.Sprintf("%.1f", e.Confidence),
				fmt.Sprintf("%d", e.MentionCount),
				describeFields(e),
			})
		}
	}
	return rows
}

func describeFields(e store.Entity) string {
	var parts []string
	f := e.Fields
	if f.Brand != "" {
		parts = append(parts, "brand="+f.Brand)
	}
	if f.Price > 0 {
		parts = append(parts, fmt.Sprintf("price=¥%d", f.Price))
	}
	if f.Color != "" {
		parts = append(parts, "color="+f.Color)
	}
	if f.Address != "" {
		parts = append(parts, "address="+f.Address)
	}
	if f.Phone != "" {
		parts = append(parts, "phone="+f.Phone)
	}
	if f.Hours != "" {
		parts = append(parts, "hours="+f.Hours)
	}
	if e.Category != "" {
		parts = append(parts, "category="+e.Category)
	}
	return strings.Join(parts, " ")
}
