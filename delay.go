package tiktok

import (
	"context"
	"math/rand/v2"
	"time"
)

// DelayPolicy bounds a randomized pause.
type DelayPolicy struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

// Duration draws a pause length in [Min, Max].
func (p DelayPolicy) Duration() time.Duration {
	if p.Max <= 0 {
		return 0
	}
	if p.Max <= p.Min {
		return p.Min
	}
	return p.Min + time.Duration(rand.Int64N(int64(p.Max-p.Min)+1))
}

// Pause sleeps for Duration, returning early with ctx's error if ctx ends.
func (p DelayPolicy) Pause(ctx context.Context) error {
	d := p.Duration()
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Delays groups the pacing used between page operations.
type Delays struct {
	// Render is the pause after navigation to let client-side rendering settle.
	Render DelayPolicy `yaml:"render"`
	// Scroll is the pause between a scroll and the following harvest.
	Scroll DelayPolicy `yaml:"scroll"`
}

// DefaultDelays mimics a person reading the page.
func DefaultDelays() Delays {
	return Delays{
		Render: DelayPolicy{Min: 2 * time.Second, Max: 4500 * time.Millisecond},
		Scroll: DelayPolicy{Min: 1 * time.Second, Max: 2500 * time.Millisecond},
	}
}

// NoDelays disables every pause.
func NoDelays() Delays { return Delays{} }
