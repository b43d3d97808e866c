package config

import "time"

type Limits struct {
	MaxRetries       int             `yaml:"max_retries" validate:"required,min=0,max=10"`
	MaxRefinements   int             `yaml:"max_refinements" validate:"required,min=0,max=10"`
	ExecutionTimeout time.Duration   `yaml:"execution_timeout" validate:"required,min=1s,max=10m"`
	TotalTimeout     time.Duration   `yaml:"total_timeout" validate:"required,min=1m,max=24h"`
	RateLimit        RateLimitConfig `yaml:"rate_limit" validate:"required"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" validate:"required,min=1,max=1000"`
	BurstSize         int `yaml:"burst_size" validate:"required,min=1,max=100"`
}

func DefaultLimits() Limits {
	return Limits{
		MaxRetries:       3,
		MaxRefinements:   3,
		ExecutionTimeout: 10 * time.Second,
		TotalTimeout:     30 * time.Minute,
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 30,
			BurstSize:         15,
		},
	}
}
