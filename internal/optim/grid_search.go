// Package optim searches scenario knobs for the lowest metric value.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/scenario"
)

var ErrUnknownKnob = errors.New("optim: unknown knob")

// Apply sets a knob on cfg. Space knobs are dt, iterations, gravity and
// linear_damp; body knobs are written <body>.<mass|bounce|friction|linear_damp>.
func Apply(cfg *config.Config, knob string, v float64) error {
	switch knob {
	case "dt":
		cfg.Dt = v
		return nil
	case "iterations":
		cfg.Iterations = int(math.Round(v))
		return nil
	case "gravity":
		cfg.Space.Gravity = v
		return nil
	case "linear_damp":
		cfg.Space.LinearDamp = v
		return nil
	}

	name, field, ok := strings.Cut(knob, ".")
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKnob, knob)
	}
	for i := range cfg.Bodies {
		b := &cfg.Bodies[i]
		if b.Name != name {
			continue
		}
		switch field {
		case "mass":
			b.Mass = v
		case "bounce":
			b.Bounce = v
		case "friction":
			b.Friction = &v
		case "linear_damp":
			b.LinearDamp = &v
		default:
			return fmt.Errorf("%w: %q", ErrUnknownKnob, knob)
		}
		return nil
	}
	return fmt.Errorf("%w: no body %q", ErrUnknownKnob, name)
}

type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search runs base once per grid point and minimizes the named metric.
// Trials that fail to build or run are recorded and skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Config,
	metrics func(*config.Config) []scenario.Metric,
	metricName string,
) (map[string]float64, float64, []Trial, error) {
	best := math.Inf(1)
	var bestParams map[string]float64
	var trials []Trial

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) {
		t := g.trial(ctx, base, params, metrics, metricName)
		trials = append(trials, t)
		if t.Err == nil && t.Value < best {
			best = t.Value
			bestParams = t.Params
		}
	})
	if err != nil {
		return bestParams, best, trials, err
	}
	if bestParams == nil {
		return nil, best, trials, fmt.Errorf("optim: no trial produced %q", metricName)
	}
	return bestParams, best, trials, nil
}

func (g *GridSearch) trial(
	ctx context.Context,
	base *config.Config,
	params map[string]float64,
	metrics func(*config.Config) []scenario.Metric,
	metricName string,
) Trial {
	t := Trial{Params: params, Value: math.NaN()}
	cfg := base.Clone()
	for _, name := range g.paramNames {
		if err := Apply(cfg, name, params[name]); err != nil {
			t.Err = err
			return t
		}
	}

	r, err := scenario.New(cfg)
	if err != nil {
		t.Err = err
		return t
	}
	defer r.Close()
	for _, m := range metrics(cfg) {
		r.AddMetric(m)
	}
	result, err := r.Run(ctx)
	if err != nil {
		t.Err = err
		return t
	}
	v, ok := result.Metrics[metricName]
	if !ok {
		t.Err = fmt.Errorf("optim: metric %q not recorded", metricName)
		return t
	}
	t.Value = v
	return t
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	visit func(map[string]float64),
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		visit(current)
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}
