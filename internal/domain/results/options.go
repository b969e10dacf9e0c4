package results

import (
	"math"

	"github.com/Bruzzknock/Meeplelytics/internal/domain/rating"
)

// Option configures Settle.
type Option func(*settings)

type settings struct {
	defaultRating  int
	defaultKFactor float64
	clamp          int
}

func defaults() settings {
	return settings{
		defaultRating:  rating.DefaultRating,
		defaultKFactor: rating.DefaultKFactor,
		clamp:          rating.DefaultClamp,
	}
}

// WithDefaultRating sets the rating assumed for players without one.
func WithDefaultRating(r int) Option {
	return func(s *settings) {
		if r > 0 {
			s.defaultRating = r
		}
	}
}

// WithDefaultKFactor sets the k-factor used when the ruleset carries none.
func WithDefaultKFactor(k float64) Option {
	return func(s *settings) {
		if k >= 0 && !math.IsNaN(k) && !math.IsInf(k, 0) {
			s.defaultKFactor = k
		}
	}
}

// WithClamp bounds every rating delta to [-c, c].
func WithClamp(c int) Option {
	return func(s *settings) {
		if c >= 0 {
			s.clamp = c
		}
	}
}
