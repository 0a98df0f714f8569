package episcan

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/episcan/pkg/episcan/candidate"
	"github.com/cognicore/episcan/pkg/episcan/dict"
	"github.com/cognicore/episcan/pkg/episcan/extract"
	"github.com/cognicore/episcan/pkg/episcan/gate"
	"github.com/cognicore/episcan/pkg/episcan/infer"
	"github.com/cognicore/episcan/pkg/episcan/merge"
	"github.com/cognicore/episcan/pkg/episcan/score"
	"github.com/cognicore/episcan/pkg/episcan/validate"
)

// Engine is the extraction pipeline facade. Every stage is read-only after
// construction, so one Engine may serve many goroutines.
type Engine struct {
	generator  *extract.Generator
	filter     *validate.Filter
	scorer     *score.Scorer
	merger     *merge.Merger
	inferencer *infer.Inferencer
	gate       *gate.Gate
}

// Options configures an Engine. Zero values select the built-in defaults.
type Options struct {
	Dict         *dict.Dict
	Weights      *score.Weights
	Limits       *validate.Limits
	Inference    *infer.Policy
	Thresholds   gate.Thresholds
	MentionBonus *float64
	ContextRunes int
}

// DefaultMentionBonus is added per repeated mention when merging
const DefaultMentionBonus = 10.0

// New creates an Engine from opts
func New(opts Options) *Engine {
	d := opts.Dict
	if d == nil {
		d = dict.New(dict.Default())
	}
	weights := score.DefaultWeights()
	if opts.Weights != nil {
		weights = *opts.Weights
	}
	limits := validate.DefaultLimits()
	if opts.Limits != nil {
		limits = *opts.Limits
	}
	policy := infer.DefaultPolicy()
	if opts.Inference != nil {
		policy = *opts.Inference
	}
	bonus := DefaultMentionBonus
	if opts.MentionBonus != nil {
		bonus = *opts.MentionBonus
	}
	return &Engine{
		generator:  extract.New(d, extract.Options{ContextRunes: opts.ContextRunes}),
		filter:     validate.New(d, limits),
		scorer:     score.NewScorer(weights, d),
		merger:     merge.New(bonus),
		inferencer: infer.New(d, policy),
		gate:       gate.New(opts.Thresholds),
	}
}

// Trace exposes every intermediate stage of one run
type Trace struct {
	Raw      []candidate.Raw
	Valid    []candidate.Raw
	Signals  []candidate.CategorySignal
	Merged   []candidate.Merged
	Inferred []candidate.Merged
	Result   gate.Result
}

// Run extracts, scores, merges and selects the entities of one episode
func (e *Engine) Run(episodeID string, docs []candidate.SourceDocument) gate.Result {
	return e.Trace(episodeID, docs).Result
}

// Trace runs the pipeline and keeps the intermediate records
func (e *Engine) Trace(episodeID string, docs []candidate.SourceDocument) Trace {
	var t Trace
	t.Raw = e.generator.Generate(docs)
	t.Valid = e.scorer.ScoreAll(e.filter.Apply(t.Raw))
	t.Signals = e.generator.Signals(docs)
	t.Merged = e.merger.Merge(t.Valid)
	t.Inferred = e.inferencer.Infer(t.Merged, t.Signals, e.scorer)
	t.Result = e.gate.Select(episodeID, t.Inferred)
	return t
}

// Episode is the input of one batch item
type Episode struct {
	ID        string                     `json:"episodeId"`
	Documents []candidate.SourceDocument `json:"documents"`
}

// RunBatch runs episodes concurrently with at most workers goroutines.
// Results are returned in input order. Episodes not started before ctx is
// done are skipped and ctx's error is returned.
func (e *Engine) RunBatch(ctx context.Context, episodes []Episode, workers int) ([]gate.Result, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([]gate.Result, len(episodes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, ep := range episodes {
		if gctx.Err() != nil {
			break
		}
		i, ep := i, ep
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.Run(ep.ID, ep.Documents)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// the group context is always canceled once Wait returns; only the
	// caller's context says whether episodes were skipped
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
