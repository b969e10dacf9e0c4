package rating

import "math"

// Option configures a rating computation.
type Option func(*settings)

type settings struct {
	kFactor float64
	clamp   int
}

// WithKFactor sets the rating sensitivity. Negative values invert the update
// and are applied as given. Non-finite values are ignored.
func WithKFactor(k float64) Option {
	return func(s *settings) {
		if !math.IsNaN(k) && !math.IsInf(k, 0) {
			s.kFactor = k
		}
	}
}

// WithClamp bounds every delta to [-clamp, clamp]. Negative values are ignored.
func WithClamp(clamp int) Option {
	return func(s *settings) {
		if clamp >= 0 {
			s.clamp = clamp
		}
	}
}
