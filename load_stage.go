package fiscalpanel

import (
	"context"
	"fmt"
	"net/http"
)

// LoadStage fetches every configured source into raw tabular form. Sources
// load one at a time in catalogue order; the first failure aborts the run.
type LoadStage struct {
	specs  []SourceSpec
	cfg    Config
	client *http.Client
}

func NewLoadStage(specs []SourceSpec, cfg Config) *LoadStage {
	return &LoadStage{
		specs:  specs,
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

func (s *LoadStage) Name() string   { return "load" }
func (s *LoadStage) Required() bool { return true }

func (s *LoadStage) Execute(ctx context.Context, state *State) error {
	for _, spec := range s.specs {
		loader := spec.NewLoader(s.cfg, s.client)
		table, err := loader.Load(ctx)
		if err != nil {
			return err
		}
		state.SetRaw(spec.Name, table)
	}
	return nil
}

// NormalizeStage converts each raw table into a keyed panel frame,
// recording drop warnings on the state.
type NormalizeStage struct {
	specs []SourceSpec
}

func NewNormalizeStage(specs []SourceSpec) *NormalizeStage {
	return &NormalizeStage{specs: specs}
}

func (s *NormalizeStage) Name() string   { return "normalize" }
func (s *NormalizeStage) Required() bool { return true }

func (s *NormalizeStage) Execute(ctx context.Context, state *State) error {
	for _, spec := range s.specs {
		raw, ok := state.Raw(spec.Name)
		if !ok {
			return fmt.Errorf("source %s was not loaded", spec.Name)
		}
		frame, warnings, err := Normalize(spec, raw)
		for _, w := range warnings {
			state.AddWarning(w.Source, w.Message)
		}
		if err != nil {
			return err
		}
		state.SetSource(spec.Name, frame)
	}
	return nil
}
