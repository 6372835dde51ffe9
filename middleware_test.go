package fiscalpanel_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nulllvoid/fiscalpanel"
)

func TestLoggingMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("logs completed stages", func(t *testing.T) {
		t.Parallel()

		core, logs := observer.New(zap.InfoLevel)
		mw := fiscalpanel.LoggingMiddleware(zap.New(core))

		fn := mw("normalize", func(ctx context.Context, state *fiscalpanel.State) error {
			return nil
		})

		if err := fn(context.Background(), fiscalpanel.NewState()); err != nil {
			t.Fatalf("middleware error = %v", err)
		}

		entries := logs.FilterMessage("stage completed").All()
		if len(entries) != 1 {
			t.Fatalf("got %d 'stage completed' entries, want 1", len(entries))
		}
		if entries[0].ContextMap()["stage"] != "normalize" {
			t.Errorf("stage field = %v, want normalize", entries[0].ContextMap()["stage"])
		}
	})

	t.Run("logs failed stages at error level", func(t *testing.T) {
		t.Parallel()

		core, logs := observer.New(zap.InfoLevel)
		mw := fiscalpanel.LoggingMiddleware(zap.New(core))

		wantErr := errors.New("duplicate keys")
		fn := mw("merge", func(ctx context.Context, state *fiscalpanel.State) error {
			return wantErr
		})

		if err := fn(context.Background(), fiscalpanel.NewState()); !errors.Is(err, wantErr) {
			t.Fatalf("middleware error = %v, want %v", err, wantErr)
		}

		if logs.FilterMessage("stage failed").Len() != 1 {
			t.Error("expected one 'stage failed' entry")
		}
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Parallel()

	mw := fiscalpanel.RecoveryMiddleware()
	fn := mw("derive", func(ctx context.Context, state *fiscalpanel.State) error {
		panic("index out of range")
	})

	err := fn(context.Background(), fiscalpanel.NewState())
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
	var pErr *fiscalpanel.PipelineError
	if !errors.As(err, &pErr) {
		t.Fatalf("error = %T, want *PipelineError", err)
	}
	if pErr.Stage != "derive" {
		t.Errorf("Stage = %v, want derive", pErr.Stage)
	}
}
