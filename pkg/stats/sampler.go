// Copyright 2025 LockChime Authors
// SPDX-License-Identifier: Apache-2.0

package stats

import (
	"math"
	"math/rand/v2"
)

// Sampler decides which play events reach the store. Accepted plays carry a
// weight of round(1/rate) so recorded totals match true totals in
// expectation. Downloads and favorites always pass with weight 1.
type Sampler struct {
	rate   float64
	weight int64
	draw   func() float64
}

// NewSampler builds a sampler for rate in (0, 1]. draw must return values in
// [0, 1); nil uses math/rand/v2.
func NewSampler(rate float64, draw func() float64) *Sampler {
	if rate <= 0 || rate > 1 {
		rate = 1
	}
	if draw == nil {
		draw = rand.Float64
	}
	return &Sampler{
		rate:   rate,
		weight: int64(math.Round(1 / rate)),
		draw:   draw,
	}
}

// Sample reports whether event should be recorded and with what weight.
func (s *Sampler) Sample(event EventType) (bool, int64) {
	if event != EventPlay {
		return true, 1
	}
	if s.rate >= 1 {
		return true, 1
	}
	if s.draw() >= s.rate {
		return false, 0
	}
	return true, s.weight
}

// Rate returns the play acceptance probability.
func (s *Sampler) Rate() float64 {
	return s.rate
}

// Weight returns the increment applied to an accepted play.
func (s *Sampler) Weight() int64 {
	return s.weight
}
