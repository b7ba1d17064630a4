package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/keyframe/pkg/domain"
)

// runActions interprets an action list in order. Animated navigations do not
// block the list: later actions run immediately, and a navigation rejected
// because another one is in flight does not stop them either.
func (e *Engine) runActions(ctx context.Context, elementID string, actions []domain.Action, out *domain.Outcome) {
	for _, action := range actions {
		switch a := action.(type) {
		case domain.NavigateAction:
			e.navigate(ctx, a.Target, a.Animation, out)
		case domain.GoToStateAction:
			e.goToState(ctx, elementID, a.StateID, a.Animation, out)
		case domain.SetVariableAction:
			e.setVariable(ctx, a, out)
		case domain.OpenURLAction:
			if err := e.emitOpenURL(ctx, a.URL, a.NewTab); err != nil {
				herr := &domain.HostError{Action: domain.ActionOpenURL, Err: err}
				e.logger.Warn("host failed to open url", "url", a.URL, "err", err)
				out.Errors = append(out.Errors, herr.Error())
			}
		case domain.ResetAction:
			e.Reset(ctx)
		default:
			e.logger.Warn("unknown action, ignoring", "action", fmt.Sprintf("%T", action))
		}
	}
}

// SetVariable applies one variable operation and evaluates the canvas
// transitions with the resulting variable-change event.
func (e *Engine) SetVariable(ctx context.Context, action domain.SetVariableAction) domain.Outcome {
	var out domain.Outcome
	if !e.started {
		e.logger.Warn("variable change dropped, engine not started", "variable", action.VariableID)
		return out
	}
	e.setVariable(ctx, action, &out)
	return out
}

func (e *Engine) setVariable(ctx context.Context, a domain.SetVariableAction, out *domain.Outcome) {
	var (
		prev domain.Value
		err  error
	)
	switch a.Op {
	case domain.OpSet, "":
		prev, err = e.vars.Set(a.VariableID, a.Value)
	case domain.OpToggle:
		prev, err = e.vars.Toggle(a.VariableID)
	case domain.OpIncrement:
		prev, err = e.vars.Increment(a.VariableID, a.Delta())
	case domain.OpDecrement:
		prev, err = e.vars.Decrement(a.VariableID, a.Delta())
	default:
		e.logger.Warn("unknown variable operation, ignoring", "variable", a.VariableID, "op", a.Op)
		return
	}
	if err != nil {
		e.logger.Warn("variable operation ignored", "variable", a.VariableID, "op", a.Op, "err", err)
		return
	}

	value, _ := e.vars.Get(a.VariableID)
	e.emitVariable(ctx, a.VariableID, prev, value)
	e.evaluateCanvas(ctx, domain.Event{
		Type:       domain.EventVariableChange,
		VariableID: a.VariableID,
		Previous:   prev,
	}, out)
}
