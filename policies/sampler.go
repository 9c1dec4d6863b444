package policies

import (
	"sort"

	"github.com/pkg/errors"
	erand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/zeu5/tabular-rl/core"
)

// WeightedEvent is one outcome of a WeightedSampler.
type WeightedEvent[T comparable] struct {
	Item              T
	Weight            float64
	CumulativeDensity float64
}

// WeightedSampler draws items with probability proportional to their weight.
// Normalize must be called after weights change and before Sample.
type WeightedSampler[T comparable] struct {
	events []*WeightedEvent[T]
	total  float64
	rand   *erand.Rand
}

// NewWeightedSampler creates an empty sampler drawing from rng.
func NewWeightedSampler[T comparable](rng *erand.Rand) *WeightedSampler[T] {
	return &WeightedSampler[T]{
		events: make([]*WeightedEvent[T], 0),
		rand:   rng,
	}
}

// SetEvents replaces the events with one per item, all of equal weight.
func (w *WeightedSampler[T]) SetEvents(items []T) error {
	if len(items) == 0 {
		return errors.Wrap(core.ErrInvalidConfiguration, "sampler needs at least one event")
	}
	weight := 1.0 / float64(len(items))
	w.events = make([]*WeightedEvent[T], len(items))
	for i, item := range items {
		w.events[i] = &WeightedEvent[T]{
			Item:              item,
			Weight:            weight,
			CumulativeDensity: float64(i) * weight,
		}
	}
	return nil
}

// Normalize recomputes cumulative densities as the running sum of weights in
// the current order and sorts the events by them. It does not rescale.
func (w *WeightedSampler[T]) Normalize() {
	if len(w.events) == 0 {
		w.total = 0
		return
	}
	weights := make([]float64, len(w.events))
	for i, e := range w.events {
		weights[i] = e.Weight
	}
	cumulative := floats.CumSum(make([]float64, len(weights)), weights)
	for i, e := range w.events {
		e.CumulativeDensity = cumulative[i]
	}
	w.total = cumulative[len(cumulative)-1]

	sort.SliceStable(w.events, func(i, j int) bool {
		return w.events[i].CumulativeDensity < w.events[j].CumulativeDensity
	})
}

// Sample draws r uniformly from [0, total) and returns the first item whose
// cumulative density reaches r. If rounding leaves no such item the first
// event is returned.
func (w *WeightedSampler[T]) Sample() T {
	r := w.rand.Float64() * w.total
	for _, e := range w.events {
		if e.CumulativeDensity >= r {
			return e.Item
		}
	}
	return w.events[0].Item
}

// SetWeight changes the weight of item. It reports false if item is not an
// event of the sampler.
func (w *WeightedSampler[T]) SetWeight(item T, weight float64) bool {
	for _, e := range w.events {
		if e.Item == item {
			e.Weight = weight
			return true
		}
	}
	return false
}

func (w *WeightedSampler[T]) Weight(item T) (float64, bool) {
	for _, e := range w.events {
		if e.Item == item {
			return e.Weight, true
		}
	}
	return 0, false
}

// Probability is the chance Sample returns item.
func (w *WeightedSampler[T]) Probability(item T) float64 {
	if w.total == 0 {
		return 0
	}
	weight, _ := w.Weight(item)
	return weight / w.total
}

func (w *WeightedSampler[T]) TotalWeight() float64 {
	return w.total
}

func (w *WeightedSampler[T]) Len() int {
	return len(w.events)
}

// Events returns a copy of the events in sampling order.
func (w *WeightedSampler[T]) Events() []WeightedEvent[T] {
	out := make([]WeightedEvent[T], len(w.events))
	for i, e := range w.events {
		out[i] = *e
	}
	return out
}
