package fiscalpanel

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type Middleware func(stageName string, next StageFunc) StageFunc

// LoggingMiddleware logs each stage's duration, the size of the combined
// panel so far, and the running warning count.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(stageName string, next StageFunc) StageFunc {
		return func(ctx context.Context, state *State) error {
			start := time.Now()
			err := next(ctx, state)

			fields := []zap.Field{
				zap.String("stage", stageName),
				zap.Duration("duration", time.Since(start)),
				zap.Int("warnings", state.WarningCount()),
			}
			if combined := state.Combined(); combined != nil {
				fields = append(fields, zap.Int("rows", combined.Len()))
			}

			if err != nil {
				logger.Error("stage failed", append(fields, zap.Error(err))...)
			} else {
				logger.Info("stage completed", fields...)
			}
			return err
		}
	}
}

func RecoveryMiddleware() Middleware {
	return func(stageName string, next StageFunc) StageFunc {
		return func(ctx context.Context, state *State) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = NewPipelineError("", stageName, "panic", fmt.Errorf("%v", r))
				}
			}()
			return next(ctx, state)
		}
	}
}
