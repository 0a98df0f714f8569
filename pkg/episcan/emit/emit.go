package emit

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/episcan/pkg/episcan/candidate"
	"github.com/cognicore/episcan/pkg/episcan/gate"
)

// Emitter converts selection results into the output contract
type Emitter struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// New creates a new emitter
func New() *Emitter {
	return &Emitter{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Output is the serialized selection for one episode
type Output struct {
	RunID         string    `json:"runId"`
	EpisodeID     string    `json:"episodeId"`
	SelectionTier gate.Tier `json:"selectionTier"`
	Entities      []Entity  `json:"entities"`
	EmittedAt     time.Time `json:"emittedAt"`
}

// Entity is one selected entity
type Entity struct {
	Kind                candidate.Kind   `json:"kind"`
	Name                string           `json:"name"`
	Category            string           `json:"category,omitempty"`
	Confidence          float64          `json:"confidence"`
	Tier                candidate.Tier   `json:"tier"`
	MentionCount        int              `json:"mentionCount"`
	ExtractedFields     candidate.Fields `json:"extractedFields"`
	SupportingSourceIDs []string         `json:"supportingSourceIds"`
	Inferred            bool             `json:"inferred,omitempty"`
}

// Emit builds the output record for r
func (e *Emitter) Emit(r gate.Result) Output {
	e.mu.Lock()
	now := e.now()
	id := ulid.MustNew(ulid.Timestamp(now), e.entropy).String()
	e.mu.Unlock()

	out := Output{
		RunID:         id,
		EpisodeID:     r.EpisodeID,
		SelectionTier: r.Tier,
		Entities:      make([]Entity, 0, len(r.Entities)),
		EmittedAt:     now.UTC(),
	}
	for _, m := range r.Entities {
		sources := m.SupportingSources
		if sources == nil {
			sources = []string{}
		}
		// tier follows the emitted score, not the unrounded one
		conf := m.Confidence.Round()
		out.Entities = append(out.Entities, Entity{
			Kind:                m.Kind,
			Name:                m.BestName,
			Category:            m.Category,
			Confidence:          conf,
			Tier:                candidate.Confidence(conf).Tier(),
			MentionCount:        m.MentionCount,
			ExtractedFields:     m.Fields,
			SupportingSourceIDs: sources,
			Inferred:            m.Inferred,
		})
	}
	return out
}

// WriteJSON writes one indented output document
func WriteJSON(w io.Writer, out Output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode output %s: %w", out.EpisodeID, err)
	}
	return nil
}

// WriteJSONL writes outputs one per line
func WriteJSONL(w io.Writer, outs []Output) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, out := range outs {
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode output %s: %w", out.EpisodeID, err)
		}
	}
	return nil
}
