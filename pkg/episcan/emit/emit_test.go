package emit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/cognicore/episcan/pkg/episcan/candidate"
	"github.com/cognicore/episcan/pkg/episcan/gate"
)

func fixedEmitter(ts time.Time) *Emitter {
	e := New()
	e.now = func() time.Time { return ts }
	return e
}

func TestEmit(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	e := fixedEmitter(ts)
	res := gate.Result{
		EpisodeID: "ep1",
		Tier:      gate.Primary,
		Entities: []candidate.Merged{{
			Kind:              candidate.Item,
			BestName:          "ダウンジャケット",
			Confidence:        87.96,
			MentionCount:      2,
			SupportingSources: []string{"d1", "d2"},
			Fields:            candidate.Fields{Brand: "UNIQLO", Price: 5990},
		}},
	}

	out := e.Emit(res)
	if out.EpisodeID != "ep1" || out.SelectionTier != gate.Primary {
		t.Fatalf("unexpected header %+v", out)
	}
	if !out.EmittedAt.Equal(ts) {
		t.Errorf("emittedAt = %v", out.EmittedAt)
	}
	if len(out.RunID) != 26 {
		t.Errorf("run id %q is not a ULID", out.RunID)
	}
	ent := out.Entities[0]
	if ent.Confidence != 88 || ent.Tier != candidate.High {
		t.Errorf("confidence = %v tier = %s", ent.Confidence, ent.Tier)
	}
	if ent.Name != "ダウンジャケット" || ent.ExtractedFields.Price != 5990 {
		t.Errorf("unexpected entity %+v", ent)
	}
}

func TestEmitTierFollowsRoundedConfidence(t *testing.T) {
	e := fixedEmitter(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	tests := []struct {
		conf candidate.Confidence
		want float64
		tier candidate.Tier
	}{
		{79.96, 80, candidate.High},
		{59.96, 60, candidate.Medium},
		{79.94, 79.9, candidate.Medium},
	}
	for _, tt := range tests {
		out := e.Emit(gate.Result{EpisodeID: "ep", Tier: gate.Primary, Entities: []candidate.Merged{{
			Kind: candidate.Item, BestName: "コート", Confidence: tt.conf,
		}}})
		ent := out.Entities[0]
		if ent.Confidence != tt.want || ent.Tier != tt.tier {
			t.Errorf("%v: emitted %v/%s, want %v/%s", tt.conf, ent.Confidence, ent.Tier, tt.want, tt.tier)
		}
	}
}

func TestEmitRunIDsIncrease(t *testing.T) {
	e := fixedEmitter(time.Unix(1700000000, 0))
	a := e.Emit(gate.Result{EpisodeID: "a", Tier: gate.None})
	b := e.Emit(gate.Result{EpisodeID: "b", Tier: gate.None})
	if a.RunID >= b.RunID {
		t.Fatalf("run ids should be monotonic: %s then %s", a.RunID, b.RunID)
	}
}

func TestWriteJSONLContract(t *testing.T) {
	e := fixedEmitter(time.Unix(1700000000, 0))
	outs := []Output{
		e.Emit(gate.Result{EpisodeID: "ep1", Tier: gate.None, Entities: []candidate.Merged{}}),
		e.Emit(gate.Result{EpisodeID: "ep2", Tier: gate.Fallback, Entities: []candidate.Merged{{
			Kind: candidate.Location, BestName: "喫茶ルポ", Confidence: 55, MentionCount: 1,
		}}}),
	}

	var buf bytes.Buffer
	if err := WriteJSONL(&buf, outs); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if first["selectionTier"] != "none" {
		t.Errorf("selectionTier = %v", first["selectionTier"])
	}
	if ents, ok := first["entities"].([]any); !ok || len(ents) != 0 {
		t.Errorf("entities should be an empty array, got %v", first["entities"])
	}

	var second map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	ent := second["entities"].([]any)[0].(map[string]any)
	for _, key := range []string{"kind", "name", "confidence", "tier", "mentionCount", "extractedFields", "supportingSourceIds"} {
		if _, ok := ent[key]; !ok {
			t.Errorf("entity missing %q: %v", key, ent)
		}
	}
	if ent["tier"] != "low" {
		t.Errorf("tier = %v", ent["tier"])
	}
}

func TestWriteJSONIndented(t *testing.T) {
	e := fixedEmitter(time.Unix(1700000000, 0))
	var buf bytes.Buffer
	if err := WriteJSON(&buf, e.Emit(gate.Result{EpisodeID: "ep1", Tier: gate.None})); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"episodeId\": \"ep1\"") {
		t.Errorf("expected indented output, got %s", buf.String())
	}
}
