package scenario

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/server"
)

// Ensemble runs jittered copies of one scenario, each on its own server.
type Ensemble struct {
	cfg       *config.Config
	numRuns   int
	seedStart int64
	metrics   func() []Metric
	opts      []server.Option
	limit     int
}

// NewEnsemble runs numRuns copies seeded seedStart, seedStart+1, ...
// metrics is called once per run so runs never share metric state.
func NewEnsemble(cfg *config.Config, numRuns int, seedStart int64, metrics func() []Metric, opts ...server.Option) *Ensemble {
	return &Ensemble{
		cfg:       cfg,
		numRuns:   numRuns,
		seedStart: seedStart,
		metrics:   metrics,
		opts:      opts,
		limit:     runtime.GOMAXPROCS(0),
	}
}

// SetLimit bounds the number of concurrent runs.
func (e *Ensemble) SetLimit(n int) {
	if n > 0 {
		e.limit = n
	}
}

// Run returns results in seed order. The first failing run cancels the rest.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)
	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			cfg := Jitter(e.cfg, e.seedStart+int64(i), e.cfg.Jitter)
			r, err := New(cfg, e.opts...)
			if err != nil {
				return err
			}
			defer r.Close()
			if e.metrics != nil {
				for _, m := range e.metrics() {
					r.AddMetric(m)
				}
			}
			res, err := r.Run(ctx)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
