package core

import (
	"fmt"
	"slices"

	apperrors "weekchain/pkg/errors"
)

type Engine struct {
	flows map[string]Flow
}

func NewEngine(flows ...Flow) *Engine {
	m := map[string]Flow{}
	for _, f := range flows {
		m[f.Name()] = f
	}
	return &Engine{flows: m}
}

// Run executes the flow's steps in order, stopping at the first error or when a step halts the flow.
// AppErrors raised by a step keep their code.
func (e *Engine) Run(flowName string, ctx *FlowContext) error {
	f, exists := e.flows[flowName]
	if !exists {
		return apperrors.InvalidInput(fmt.Sprintf("unsupported flow: %v", flowName))
	}
	for _, step := range f.Steps() {
		if err := ctx.Ctx.Err(); err != nil {
			return apperrors.Timeout(fmt.Sprintf("%s step not started: %v", step.Name, err))
		}
		if err := step.Execute(ctx); err != nil {
			return fmt.Errorf("%s step failed, pipeline errored: %w", step.Name, err)
		}
		if ctx.Halted() {
			ctx.Log.Debug("flow halted", "flow", flowName, "step", step.Name)
			break
		}
	}
	return nil
}

func (e *Engine) Flows() []string {
	names := make([]string, 0, len(e.flows))
	for name := range e.flows {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
