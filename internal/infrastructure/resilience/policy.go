package resilience

import "time"

type Config struct {
	// MaxRetries bounds additional attempts after the first; total
	// attempts never exceed MaxRetries+1.
	MaxRetries     int
	BackoffBase    time.Duration
	BackoffMax     time.Duration
	JitterFraction float64

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32

	Sleep SleepFunc
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:     3,
		BackoffBase:    2 * time.Second,
		BackoffMax:     60 * time.Second,
		JitterFraction: 0.25,

		BreakerEnabled:          false,
		BreakerMinRequests:      10,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      30 * time.Second,
		BreakerHalfOpenMaxCalls: 2,
	}
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.MaxRetries < 0 {
		out.MaxRetries = def.MaxRetries
	}
	if out.BackoffBase <= 0 {
		out.BackoffBase = def.BackoffBase
	}
	if out.BackoffMax <= 0 {
		out.BackoffMax = def.BackoffMax
	}
	if out.BackoffMax < out.BackoffBase {
		out.BackoffMax = out.BackoffBase
	}
	if out.JitterFraction < 0 || out.JitterFraction > 1 {
		out.JitterFraction = def.JitterFraction
	}

	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = def.BreakerMinRequests
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = def.BreakerOpenTimeout
	}
	if out.BreakerHalfOpenMaxCalls == 0 {
		out.BreakerHalfOpenMaxCalls = def.BreakerHalfOpenMaxCalls
	}

	return out
}
