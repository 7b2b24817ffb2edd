// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package urlmap

import "context"

// Adapter is a platform-bound collection of strategies tried in priority
// order until one clears Threshold (spec §4.3, §9 "Adapter").
type Adapter struct {
	Name       string
	CanHandle  func(rawURL string) bool
	Strategies []Strategy
	Threshold  float64
}

// defaultThreshold is used when an Adapter does not set one (spec §4.3
// "confidence ≥ adapter-defined threshold (default 0.6)").
const defaultThreshold = 0.6

// Registry holds platform adapters in priority order; DefaultRegistry
// registers a Generic always-true adapter last as the fallback.
type Registry struct {
	adapters []*Adapter
}

// NewRegistry builds a Registry from priority-ordered adapters, used as
// given: no Generic fallback adapter is appended, so a URL no adapter
// handles yields no mapping.
func NewRegistry(adapters ...*Adapter) *Registry {
	return &Registry{adapters: adapters}
}

// Resolve finds the first adapter whose CanHandle matches rawURL, then runs
// its strategies in priority order until one returns a Mapping at or above
// the adapter's threshold. It returns the best-confidence Mapping observed
// across all attempted strategies within that adapter, even when it is below
// the threshold, or ok=false if no strategy produced a Mapping (spec §4.3
// "Algorithm").
func (r *Registry) Resolve(ctx context.Context, rawURL string) (Mapping, bool, error) {
	adapter := r.selectAdapter(rawURL)
	if adapter == nil {
		return Mapping{}, false, nil
	}

	threshold := adapter.Threshold
	if threshold == 0 {
		threshold = defaultThreshold
	}

	var best Mapping
	haveBest := false

	for _, strat := range adapter.Strategies {
		m, err := strat.Run(ctx, rawURL)
		if err != nil {
			continue // a failing strategy yields no mapping, not a fatal error
		}
		if m == nil {
			continue
		}
		if !haveBest || m.Confidence > best.Confidence {
			best = *m
			haveBest = true
		}
		if m.Confidence >= threshold {
			return best, true, nil
		}
	}

	if haveBest {
		return best, true, nil
	}
	return Mapping{}, false, nil
}

func (r *Registry) selectAdapter(rawURL string) *Adapter {
	for _, a := range r.adapters {
		if a.CanHandle(rawURL) {
			return a
		}
	}
	return nil
}
