package fiscalpanel_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nulllvoid/fiscalpanel"
)

func TestPipeline_New(t *testing.T) {
	t.Parallel()

	pipeline := fiscalpanel.New("test_pipeline")

	if pipeline.Name() != "test_pipeline" {
		t.Errorf("Name() = %v, want test_pipeline", pipeline.Name())
	}
	if pipeline.StageCount() != 0 {
		t.Errorf("StageCount() = %v, want 0", pipeline.StageCount())
	}
}

func TestPipeline_AddStage(t *testing.T) {
	t.Parallel()

	pipeline := fiscalpanel.New("test")

	stage := fiscalpanel.NewStage("stage1", true, func(ctx context.Context, state *fiscalpanel.State) error {
		return nil
	})

	pipeline.AddStage(stage)

	if pipeline.StageCount() != 1 {
		t.Errorf("StageCount() = %v, want 1", pipeline.StageCount())
	}
}

func TestPipeline_Execute(t *testing.T) {
	t.Parallel()

	t.Run("successful execution builds a report", func(t *testing.T) {
		t.Parallel()

		pipeline := fiscalpanel.New("test",
			fiscalpanel.WithStage(fiscalpanel.NewStage("build", true, func(ctx context.Context, state *fiscalpanel.State) error {
				f := fiscalpanel.NewFrame("panel", "debt")
				f.AppendRow(fiscalpanel.Key{Country: "AA", Year: 2000}, map[string]fiscalpanel.Value{"debt": fiscalpanel.Num(40)})
				f.AppendRow(fiscalpanel.Key{Country: "AA", Year: 2001}, map[string]fiscalpanel.Value{"debt": fiscalpanel.Num(42)})
				state.SetCombined(f)
				return nil
			})),
		)

		state := fiscalpanel.NewState()
		report, err := pipeline.Execute(context.Background(), state)

		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if report.Rows != 2 {
			t.Errorf("Rows = %v, want 2", report.Rows)
		}
		if report.Columns != 1 {
			t.Errorf("Columns = %v, want 1", report.Columns)
		}
		if report.RunID != state.RunID() {
			t.Errorf("RunID = %v, want %v", report.RunID, state.RunID())
		}
	})

	t.Run("required stage error aborts the run", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("source broke")
		executed := false

		pipeline := fiscalpanel.New("test",
			fiscalpanel.WithStage(fiscalpanel.NewStage("load", true, func(ctx context.Context, state *fiscalpanel.State) error {
				return wantErr
			})),
			fiscalpanel.WithStage(fiscalpanel.NewStage("merge", true, func(ctx context.Context, state *fiscalpanel.State) error {
				executed = true
				return nil
			})),
		)

		_, err := pipeline.Execute(context.Background(), fiscalpanel.NewState())

		if !errors.Is(err, wantErr) {
			t.Errorf("Execute() error = %v, want wrapped %v", err, wantErr)
		}
		var pErr *fiscalpanel.PipelineError
		if !errors.As(err, &pErr) {
			t.Fatalf("error is not a *PipelineError: %v", err)
		}
		if pErr.Stage != "load" {
			t.Errorf("Stage = %v, want load", pErr.Stage)
		}
		if executed {
			t.Error("stage after failed required stage was executed")
		}
	})

	t.Run("non-required stage error becomes a warning without fail-fast", func(t *testing.T) {
		t.Parallel()

		pipeline := fiscalpanel.New("test",
			fiscalpanel.WithFailFast(false),
			fiscalpanel.WithStage(fiscalpanel.NewStage("optional", false, func(ctx context.Context, state *fiscalpanel.State) error {
				return errors.New("not critical")
			})),
		)

		state := fiscalpanel.NewState()
		report, err := pipeline.Execute(context.Background(), state)

		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if len(report.Warnings) != 1 {
			t.Fatalf("Warnings = %d, want 1", len(report.Warnings))
		}
		if report.Warnings[0].Source != "optional" {
			t.Errorf("warning source = %v, want optional", report.Warnings[0].Source)
		}
	})

	t.Run("canceled context stops execution", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		pipeline := fiscalpanel.New("test",
			fiscalpanel.WithStage(fiscalpanel.NewStage("load", true, func(ctx context.Context, state *fiscalpanel.State) error {
				t.Error("stage ran despite canceled context")
				return nil
			})),
		)

		_, err := pipeline.Execute(ctx, fiscalpanel.NewState())
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Execute() error = %v, want context.Canceled", err)
		}
	})

	t.Run("timeout applies to the whole run", func(t *testing.T) {
		t.Parallel()

		pipeline := fiscalpanel.New("test",
			fiscalpanel.WithTimeout(10*time.Millisecond),
			fiscalpanel.WithStage(fiscalpanel.NewStage("slow", true, func(ctx context.Context, state *fiscalpanel.State) error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(time.Second):
					return nil
				}
			})),
		)

		_, err := pipeline.Execute(context.Background(), fiscalpanel.NewState())
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Execute() error = %v, want context.DeadlineExceeded", err)
		}
	})
}

func TestPipeline_Use_MiddlewareOrder(t *testing.T) {
	t.Parallel()

	var calls []string

	mw := func(label string) fiscalpanel.Middleware {
		return func(stageName string, next fiscalpanel.StageFunc) fiscalpanel.StageFunc {
			return func(ctx context.Context, state *fiscalpanel.State) error {
				calls = append(calls, label+":"+stageName)
				return next(ctx, state)
			}
		}
	}

	pipeline := fiscalpanel.New("test",
		fiscalpanel.WithMiddleware(mw("outer")),
		fiscalpanel.WithMiddleware(mw("inner")),
		fiscalpanel.WithStage(fiscalpanel.NewStage("load", true, func(ctx context.Context, state *fiscalpanel.State) error {
			calls = append(calls, "stage")
			return nil
		})),
	)

	if _, err := pipeline.Execute(context.Background(), fiscalpanel.NewState()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := []string{"outer:load", "inner:load", "stage"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %v, want %v", i, calls[i], want[i])
		}
	}
}
