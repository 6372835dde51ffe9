package fiscalpanel

import (
	"go.uber.org/zap"
)

// Assemble builds the standard panel pipeline for a config: load,
// normalize, rebase, merge, derive, export, in that order. Extra options
// (metrics, middleware, additional stages) append on top.
func Assemble(cfg Config, logger *zap.Logger, opts ...Option) *Pipeline {
	specs := DefaultSources()

	base := []Option{
		WithLogging(logger),
		WithStage(NewLoadStage(specs, cfg)),
		WithStage(NewNormalizeStage(specs)),
		WithStage(NewRebaseStage(cfg.ReferenceYear, RebasedVariables())),
		WithStage(NewMergeStage(specs)),
		WithStage(NewDeriveStage(cfg)),
		WithStage(NewExportStage(cfg)),
	}
	return New("panel", append(base, opts...)...)
}
