package resilience

import "time"

// Policy bounds how hard a Runner tries before giving up on an operation.
type Policy struct {
	Attempts       int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	Factor         float64
	AttemptTimeout time.Duration

	Breaker BreakerPolicy
}

// BreakerPolicy trips a per-operation circuit once the failure ratio over at least
// MinRequests calls reaches FailureRatio.
type BreakerPolicy struct {
	Enabled       bool
	MinRequests   uint32
	FailureRatio  float64
	OpenFor       time.Duration
	HalfOpenCalls uint32
}

func DefaultPolicy() Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: 200 * time.Millisecond,
		MaxDelay:  2 * time.Second,
		Factor:    2.0,
		Breaker: BreakerPolicy{
			Enabled:       true,
			MinRequests:   5,
			FailureRatio:  0.6,
			OpenFor:       30 * time.Second,
			HalfOpenCalls: 1,
		},
	}
}

func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.Attempts <= 0 {
		p.Attempts = def.Attempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = def.BaseDelay
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = max(def.MaxDelay, p.BaseDelay)
	}
	if p.Factor < 1 {
		p.Factor = def.Factor
	}
	if p.Breaker.MinRequests == 0 {
		p.Breaker.MinRequests = def.Breaker.MinRequests
	}
	if p.Breaker.FailureRatio <= 0 || p.Breaker.FailureRatio > 1 {
		p.Breaker.FailureRatio = def.Breaker.FailureRatio
	}
	if p.Breaker.OpenFor <= 0 {
		p.Breaker.OpenFor = def.Breaker.OpenFor
	}
	if p.Breaker.HalfOpenCalls == 0 {
		p.Breaker.HalfOpenCalls = def.Breaker.HalfOpenCalls
	}
	return p
}

// delay returns the pause before the given retry (1-based), capped at MaxDelay.
func (p Policy) delay(retry int) time.Duration {
	d := float64(p.BaseDelay)
	for i := 1; i < retry; i++ {
		d *= p.Factor
		if d >= float64(p.MaxDelay) {
			return p.MaxDelay
		}
	}
	return time.Duration(d)
}
