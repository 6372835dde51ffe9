package fiscalpanel

import (
	"time"

	"go.uber.org/zap"
)

type Option func(*Pipeline)

func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.timeout = d
	}
}

func WithFailFast(enabled bool) Option {
	return func(p *Pipeline) {
		p.failFast = enabled
	}
}

func WithMetrics(m Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

func WithStage(stage Stage) Option {
	return func(p *Pipeline) {
		p.AddStage(stage)
	}
}

func WithMiddleware(m Middleware) Option {
	return func(p *Pipeline) {
		p.Use(m)
	}
}

// WithLogging attaches logging and panic-recovery middleware in one step.
func WithLogging(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		p.Use(RecoveryMiddleware())
		p.Use(LoggingMiddleware(logger))
	}
}
