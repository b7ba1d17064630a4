package document

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/keyframe/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Encode serializes a prototype as canonical JSON. Interactions are written
// at the top level with their element id and an edge without triggers is
// written with its implicit tap, so decoding the output reproduces p.
func Encode(p *domain.Prototype) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil prototype", ErrInvalidDocument)
	}
	return json.MarshalIndent(toWire(p), "", "  ")
}

// EncodeYAML serializes a prototype through the generic map form.
func EncodeYAML(p *domain.Prototype) ([]byte, error) {
	raw, err := ToMap(p)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(raw)
}

// ToMap converts a prototype to the generic map form accepted by Decode.
func ToMap(p *domain.Prototype) (map[string]any, error) {
	data, err := Encode(p)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func toWire(p *domain.Prototype) wireDocument {
	doc := wireDocument{
		Version:       CurrentVersion,
		Name:          p.Name,
		InitialScreen: p.InitialScreenID,
		Screens:       make([]wireScreen, 0, len(p.Screens)),
		Transitions:   make([]wireTransition, 0, len(p.Transitions)),
		Variables:     make([]wireVariable, 0, len(p.Variables)),
		Interactions:  make([]wireInteraction, 0, len(p.Interactions)),
	}

	for _, s := range p.Screens {
		ws := wireScreen{ID: s.ID, Name: s.Name, StateID: s.StateID, Elements: make([]wireElement, 0, len(s.Elements))}
		for _, el := range s.Elements {
			ws.Elements = append(ws.Elements, elementToWire(el))
		}
		doc.Screens = append(doc.Screens, ws)
	}

	for _, t := range p.Transitions {
		wt := wireTransition{
			ID:       t.ID,
			From:     t.From,
			To:       t.To,
			Duration: ms(t.Duration),
			Delay:    ms(t.Delay),
			Easing:   easingToWire(t.Easing),
		}
		for _, trig := range t.Triggers {
			wt.Triggers = append(wt.Triggers, triggerToWire(trig))
		}
		if len(wt.Triggers) == 0 {
			wt.Triggers = []any{triggerToWire(domain.TapTrigger{})}
		}
		doc.Transitions = append(doc.Transitions, wt)
	}

	for _, v := range p.Variables {
		doc.Variables = append(doc.Variables, wireVariable{ID: v.ID, Name: v.Name, DefaultValue: v.DefaultValue})
	}

	for _, in := range p.Interactions {
		enabled := in.Enabled
		wi := wireInteraction{
			ID:        in.ID,
			ElementID: in.ElementID,
			Enabled:   &enabled,
			Gesture:   string(in.Gesture),
			Actions:   make([]any, 0, len(in.Actions)),
		}
		for _, a := range in.Actions {
			wi.Actions = append(wi.Actions, actionToWire(a))
		}
		doc.Interactions = append(doc.Interactions, wi)
	}
	return doc
}

func elementToWire(el domain.Element) wireElement {
	style := map[string]any{
		"opacity": el.Style.Opacity,
		"scale":   el.Style.Scale,
	}
	for k, v := range el.Style.Extra {
		style[k] = v
	}
	if el.Style.Fill != "" {
		style["fill"] = el.Style.Fill
	}
	if el.Style.CornerRadius != 0 {
		style["cornerRadius"] = el.Style.CornerRadius
	}
	if el.Style.Rotation != 0 {
		style["rotation"] = el.Style.Rotation
	}

	we := wireElement{
		ID:     el.ID,
		Name:   el.Name,
		Kind:   el.Kind,
		X:      el.Geometry.X,
		Y:      el.Geometry.Y,
		Width:  el.Geometry.Width,
		Height: el.Geometry.Height,
		Style:  style,
		Text:   el.Text,
	}
	if l := el.Link; l != nil {
		enabled := l.Enabled
		we.PrototypeLink = &wireLink{
			Enabled:    &enabled,
			Target:     l.Target,
			Trigger:    string(l.Trigger),
			Transition: specToWire(l.Spec),
		}
	}
	return we
}

func specToWire(s domain.TransitionSpec) wireSpec {
	return wireSpec{
		Type:      string(s.Type),
		Direction: string(s.Direction),
		Duration:  ms(s.Duration),
		Easing:    easingToWire(s.Easing),
	}
}

func easingToWire(e domain.EasingSpec) any {
	switch e.Kind {
	case domain.EasingNamed:
		return e.Name
	case domain.EasingBezier:
		return e.Bezier[:]
	case domain.EasingSpring:
		out := map[string]any{
			"type":      string(domain.EasingSpring),
			"mass":      e.Spring.Mass,
			"stiffness": e.Spring.Stiffness,
			"damping":   e.Spring.Damping,
		}
		if e.Spring.Response != 0 {
			out["response"] = e.Spring.Response
		}
		return out
	}
	return nil
}

func triggerToWire(t domain.Trigger) map[string]any {
	out := map[string]any{"type": string(t.TriggerType())}
	switch x := t.(type) {
	case domain.DragTrigger:
		out["direction"] = string(x.Direction)
		out["threshold"] = x.Threshold
	case domain.ScrollTrigger:
		out["direction"] = string(x.Direction)
		out["offset"] = x.Offset
	case domain.TimerTrigger:
		out["delay"] = ms(x.Delay)
	case domain.VariableTrigger:
		out["variableId"] = x.VariableID
		out["operator"] = string(x.Operator)
		if !x.Value.IsNull() {
			out["value"] = x.Value
		}
	}
	return out
}

func actionToWire(a domain.Action) wireAction {
	w := wireAction{Type: string(a.ActionType())}
	switch x := a.(type) {
	case domain.NavigateAction:
		w.Target = x.Target
		if x.Animation != nil {
			w.Transition = specToWire(*x.Animation)
		}
	case domain.GoToStateAction:
		w.StateID = x.StateID
		if x.Animation != nil {
			w.Transition = specToWire(*x.Animation)
		}
	case domain.SetVariableAction:
		w.VariableID = x.VariableID
		w.Operation = string(x.Op)
		w.Amount = x.Amount
		if !x.Value.IsNull() {
			v := x.Value
			w.Value = &v
		}
	case domain.OpenURLAction:
		w.URL = x.URL
		w.NewTab = x.NewTab
	}
	return w
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
