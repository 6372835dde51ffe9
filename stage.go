package fiscalpanel

import "context"

type Stage interface {
	Name() string
	Execute(ctx context.Context, state *State) error
	Required() bool
}

type StageFunc func(ctx context.Context, state *State) error

type FunctionalStage struct {
	name     string
	fn       StageFunc
	required bool
}

func NewStage(name string, required bool, fn StageFunc) *FunctionalStage {
	return &FunctionalStage{
		name:     name,
		fn:       fn,
		required: required,
	}
}

func (s *FunctionalStage) Name() string   { return s.name }
func (s *FunctionalStage) Required() bool { return s.required }
func (s *FunctionalStage) Execute(ctx context.Context, state *State) error {
	return s.fn(ctx, state)
}
