package fiscalpanel

import (
	"context"
	"errors"
	"time"
)

// RunReport summarizes a completed run for the caller: how many
// observations and variables the final panel carries and what warnings
// were raised while getting there.
type RunReport struct {
	RunID    string
	Rows     int
	Columns  int
	Warnings []Warning
	Duration time.Duration
}

// Pipeline executes its stages strictly in order over a single State. Every
// stage depends on the full output of the one before it, so there is no
// parallelism here; a required stage's error aborts the run.
type Pipeline struct {
	name       string
	stages     []Stage
	middleware []Middleware
	failFast   bool
	timeout    time.Duration
	metrics    Metrics
}

func New(name string, opts ...Option) *Pipeline {
	p := &Pipeline{
		name:     name,
		stages:   make([]Stage, 0),
		failFast: true,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Pipeline) Execute(ctx context.Context, state *State) (*RunReport, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()

	for _, stage := range p.stages {
		if ctx.Err() != nil {
			return nil, NewPipelineError(p.name, stage.Name(), "execute", ctx.Err())
		}

		stageStart := time.Now()
		err := p.executeStage(ctx, stage, state)
		stageDuration := time.Since(stageStart)

		if p.metrics != nil {
			p.metrics.RecordStageDuration(p.name, stage.Name(), stageDuration)
		}

		if err != nil {
			if p.metrics != nil {
				p.metrics.RecordError(p.name, stage.Name(), errorKind(err))
			}
			if stage.Required() || p.failFast {
				return nil, NewPipelineError(p.name, stage.Name(), "execute", err)
			}
			state.AddWarning(stage.Name(), err.Error())
		}
	}

	report := &RunReport{
		RunID:    state.RunID(),
		Warnings: state.Warnings(),
		Duration: time.Since(start),
	}
	if combined := state.Combined(); combined != nil {
		report.Rows = combined.Len()
		report.Columns = len(combined.Columns())
	}

	if p.metrics != nil {
		p.metrics.RecordRowCount(p.name, report.Rows)
		p.metrics.RecordWarnings(p.name, len(report.Warnings))
	}

	return report, nil
}

func (p *Pipeline) executeStage(ctx context.Context, stage Stage, state *State) error {
	execute := stage.Execute

	for i := len(p.middleware) - 1; i >= 0; i-- {
		execute = p.middleware[i](stage.Name(), execute)
	}

	return execute(ctx, state)
}

func (p *Pipeline) AddStage(stage Stage) {
	p.stages = append(p.stages, stage)
}

func (p *Pipeline) Use(m Middleware) {
	p.middleware = append(p.middleware, m)
}

func (p *Pipeline) Name() string {
	return p.name
}

func (p *Pipeline) StageCount() int {
	return len(p.stages)
}

// errorKind maps an error to the label used by the metrics hook. Only the
// two recognized fatal classes get their own label.
func errorKind(err error) string {
	var loadErr *LoadError
	var dupErr *DuplicateKeyError
	switch {
	case errors.As(err, &loadErr):
		return "load_error"
	case errors.As(err, &dupErr):
		return "duplicate_key"
	default:
		return "execution_error"
	}
}
