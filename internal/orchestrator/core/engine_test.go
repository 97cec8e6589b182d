package core

import (
	"context"
	"io"
	"testing"

	apperrors "weekchain/pkg/errors"
	"weekchain/pkg/logger"
)

func newTestContext(ctx context.Context) *FlowContext {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	return NewFlowContext(ctx, map[string]any{}, &Clients{}, log)
}

func recordStep(name string, trace *[]string, err error) *Step {
	return NewStep(name, func(ctx *FlowContext) error {
		*trace = append(*trace, name)
		return err
	})
}

func TestEngine_RunsStepsInOrder(t *testing.T) {
	var trace []string
	engine := NewEngine(NewFlow("f", recordStep("a", &trace, nil), recordStep("b", &trace, nil)))

	if err := engine.Run("f", newTestContext(context.Background())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trace) != 2 || trace[0] != "a" || trace[1] != "b" {
		t.Errorf("trace = %v", trace)
	}
}

func TestEngine_StopsOnErrorAndKeepsCode(t *testing.T) {
	var trace []string
	engine := NewEngine(NewFlow("f",
		recordStep("a", &trace, apperrors.StopSale("Gold", "tier_ceiling")),
		recordStep("b", &trace, nil),
	))

	err := engine.Run("f", newTestContext(context.Background()))
	if !apperrors.HasCode(err, apperrors.CodeStopSale) {
		t.Fatalf("expected STOP_SALE to survive wrapping, got %v", err)
	}
	if len(trace) != 1 {
		t.Errorf("later steps should not run, trace = %v", trace)
	}
}

func TestEngine_Halt(t *testing.T) {
	var trace []string
	engine := NewEngine(NewFlow("f",
		NewStep("a", func(ctx *FlowContext) error {
			trace = append(trace, "a")
			ctx.Halt()
			return nil
		}),
		recordStep("b", &trace, nil),
	))

	if err := engine.Run("f", newTestContext(context.Background())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trace) != 1 {
		t.Errorf("halt should skip remaining steps, trace = %v", trace)
	}
}

func TestEngine_UnknownFlow(t *testing.T) {
	err := NewEngine().Run("nope", newTestContext(context.Background()))
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestEngine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var trace []string
	err := NewEngine(NewFlow("f", recordStep("a", &trace, nil))).Run("f", newTestContext(ctx))
	if !apperrors.HasCode(err, apperrors.CodeTimeout) || len(trace) != 0 {
		t.Errorf("err = %v, trace = %v", err, trace)
	}
}

func TestEngine_FlowsSorted(t *testing.T) {
	engine := NewEngine(NewFlow("zeta"), NewFlow("alpha"))
	names := engine.Flows()
	if len(names) != 2 || names[0] != "alpha" {
		t.Errorf("flows = %v", names)
	}
}
