package main

import (
	"strings"
	"testing"

	"github.com/cognicore/episcan/pkg/episcan/candidate"
	"github.com/cognicore/episcan/pkg/episcan/store"
)

func TestResultTableWrapsDetailsAndMergesEpisode(t *testing.T) {
	longAddress := strings.Repeat("abcdefghij", 8)
	results := []store.Result{{
		EpisodeID: "ep-table",
		Tier:      "primary",
		Entities: []store.Entity{
			{Kind: "Item", Name: "コート", Confidence: 80, MentionCount: 2,
				Fields: candidate.Fields{Brand: "UNIQLO", Price: 3990}},
			{Kind: "Location", Name: "喫茶ルポ", Confidence: 72.5, MentionCount: 1,
				Fields: candidate.Fields{Address: longAddress}},
		},
	}}

	out := renderTable(resultColumns, resultRows(results))
	if got := strings.Count(out, "ep-table"); got != 1 {
		t.Errorf("episode id printed %d times, want 1:\n%s", got, out)
	}
	if strings.Contains(out, longAddress) {
		t.Errorf("details column was not wrapped:\n%s", out)
	}
	if !strings.Contains(out, "brand=UNIQLO") || !strings.Contains(out, "72.5") {
		t.Errorf("missing cell content:\n%s", out)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(brandColumns, [][]string{{"ZARA"}})
	if !strings.Contains(out, "ZARA") || !strings.Contains(out, "Avg confidence") {
		t.Fatalf("unexpected table:\n%s", out)
	}
	if renderTable(nil, nil) != "" {
		t.Error("no columns should render nothing")
	}
}
