package docsource

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/episcan/pkg/episcan/candidate"
)

func TestReadCleansDocuments(t *testing.T) {
	input := strings.Join([]string{
		`{"episodeId":"ep1","documents":[` +
			`{"id":"d1","text":"<p>【UNIQLO】ダウンジャケット</p><script>x()</script>","sourceType":"title_description","sourceTrust":0.9},` +
			`{"text":"ユニクロの服","sourceType":"comment"},` +
			`{"id":"d3","text":"spam","sourceType":"tweet"}]}`,
		``,
		`not json`,
		`{"episodeId":"","documents":[]}`,
		`{"episodeId":"ep2","documents":[{"id":"s1","text":"AT&amp;T","sourceType":"search_snippet","sourceTrust":7}]}`,
	}, "\n")

	episodes, err := Read(strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(episodes) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(episodes))
	}

	ep1 := episodes[0]
	if ep1.ID != "ep1" || len(ep1.Documents) != 2 {
		t.Fatalf("unexpected episode %+v", ep1)
	}
	if got := ep1.Documents[0].Text; got != "【UNIQLO】ダウンジャケット" {
		t.Errorf("html not stripped: %q", got)
	}
	comment := ep1.Documents[1]
	if comment.ID != "ep1#1" {
		t.Errorf("default id = %q", comment.ID)
	}
	if comment.SourceTrust != DefaultTrust[candidate.Comment] {
		t.Errorf("default trust = %v", comment.SourceTrust)
	}

	snippet := episodes[1].Documents[0]
	if snippet.Text != "AT&T" {
		t.Errorf("entities not decoded: %q", snippet.Text)
	}
	if snippet.SourceTrust != 1 {
		t.Errorf("trust should clamp to 1, got %v", snippet.SourceTrust)
	}
}

func TestReadKeepsExplicitZeroTrust(t *testing.T) {
	input := `{"episodeId":"ep","documents":[` +
		`{"id":"a","text":"x","sourceType":"comment","sourceTrust":0},` +
		`{"id":"b","text":"x","sourceType":"comment"},` +
		`{"id":"c","text":"x","sourceType":"comment","sourceTrust":null},` +
		`{"id":"d","text":"x","sourceType":"comment","sourceTrust":-0.5}]}`
	episodes, err := Read(strings.NewReader(input), nil)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := map[string]float64{"a": 0, "b": 0.5, "c": 0.5, "d": 0}
	for _, d := range episodes[0].Documents {
		if d.SourceTrust != want[d.ID] {
			t.Errorf("%s: trust = %v, want %v", d.ID, d.SourceTrust, want[d.ID])
		}
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"a<br>b", "a\nb"},
		{"<style>p{}</style><b>撮影地</b>", "撮影地"},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadFromJSONL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "episodes.jsonl")
	if err := os.WriteFile(path, []byte(`{"episodeId":"ep1","documents":[]}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	episodes, err := LoadFromJSONL(path, nil)
	if err != nil {
		t.Fatalf("LoadFromJSONL: %v", err)
	}
	if len(episodes) != 1 || len(episodes[0].Documents) != 0 {
		t.Fatalf("unexpected episodes %+v", episodes)
	}

	empty := filepath.Join(dir, "empty.jsonl")
	if err := os.WriteFile(empty, []byte("\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromJSONL(empty, nil); err == nil {
		t.Error("expected error for a file without episodes")
	}
	if _, err := LoadFromJSONL(filepath.Join(dir, "missing.jsonl"), nil); err == nil {
		t.Error("expected error for a missing file")
	}
}
