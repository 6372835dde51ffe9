package fiscalpanel

import (
	"context"
	"fmt"
)

// MergeStage sequentially joins every normalized source frame onto the
// running combined panel, asserting key uniqueness after each join. The
// first mergeable source seeds the panel; later sources join outer or
// left per their descriptor.
type MergeStage struct {
	specs []SourceSpec
}

func NewMergeStage(specs []SourceSpec) *MergeStage {
	return &MergeStage{specs: specs}
}

func (s *MergeStage) Name() string   { return "merge" }
func (s *MergeStage) Required() bool { return true }

func (s *MergeStage) Execute(ctx context.Context, state *State) error {
	var combined *Frame

	for _, spec := range s.specs {
		if !spec.Merge {
			continue
		}
		frame, ok := state.Source(spec.Name)
		if !ok {
			return fmt.Errorf("source %s was not normalized", spec.Name)
		}

		if combined == nil {
			combined = cloneFrame("panel", frame)
		} else {
			joined, err := combined.Join(frame, spec.Join)
			if err != nil {
				return err
			}
			combined = joined
		}

		if err := combined.CheckUnique(fmt.Sprintf("merge %s", spec.Name)); err != nil {
			return err
		}
	}

	if combined == nil {
		return fmt.Errorf("no mergeable sources configured")
	}
	state.SetCombined(combined)
	return nil
}

// cloneFrame deep-copies rows so the merge never aliases a source frame's
// cells; source frames stay untouched for auditing.
func cloneFrame(name string, f *Frame) *Frame {
	out := NewFrame(name, f.Columns()...)
	for _, r := range f.Rows() {
		cells := make(map[string]Value, len(r.Cells))
		for c, v := range r.Cells {
			cells[c] = v
		}
		out.AppendRow(r.Key, cells)
	}
	out.SortByKey()
	return out
}
