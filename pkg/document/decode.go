package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format is the serialization of a document.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatAuto
}

// Parse decodes a serialized document into a prototype.
// FormatAuto treats payloads starting with '{' as JSON and anything else as YAML.
func Parse(data []byte, format Format) (*domain.Prototype, error) {
	raw, err := Unmarshal(data, format)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}

// Unmarshal reads a serialized document into its generic map form.
// JSON numbers are kept as json.Number.
func Unmarshal(data []byte, format Format) (map[string]any, error) {
	if format == FormatAuto {
		format = FormatYAML
		if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
			format = FormatJSON
		}
	}

	var raw map[string]any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	default:
		return nil, fmt.Errorf("unknown document format %q", format)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidDocument)
	}
	return raw, nil
}

// Decode converts the generic map form of a document into a prototype.
// Legacy shapes are normalized here so downstream code sees one representation.
func Decode(raw map[string]any) (*domain.Prototype, error) {
	var doc wireDocument
	if err := decodeInto(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Version > CurrentVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}

	proto := &domain.Prototype{
		Name:            doc.Name,
		InitialScreenID: doc.InitialScreen,
	}

	for i, wv := range doc.Variables {
		if wv.ID == "" {
			return nil, fmt.Errorf("%w: variable %d has no id", ErrInvalidDocument, i)
		}
		proto.Variables = append(proto.Variables, domain.Variable{
			ID:           wv.ID,
			Name:         wv.Name,
			DefaultValue: wv.DefaultValue,
		})
	}

	for _, wi := range doc.Interactions {
		interaction, err := decodeInteraction(wi, wi.ElementID)
		if err != nil {
			return nil, err
		}
		proto.Interactions = append(proto.Interactions, interaction)
	}

	for i, ws := range doc.Screens {
		if ws.ID == "" {
			return nil, fmt.Errorf("%w: screen %d has no id", ErrInvalidDocument, i)
		}
		screen := domain.Screen{ID: ws.ID, Name: ws.Name, StateID: ws.StateID}
		for j, we := range ws.Elements {
			if we.ID == "" {
				return nil, fmt.Errorf("%w: screen %q element %d has no id", ErrInvalidDocument, ws.ID, j)
			}
			el, err := decodeElement(we)
			if err != nil {
				return nil, fmt.Errorf("screen %q: %w", ws.ID, err)
			}
			screen.Elements = append(screen.Elements, el)

			// Embedded interactions are hoisted with their element id.
			for _, wi := range we.Interactions {
				interaction, err := decodeInteraction(wi, we.ID)
				if err != nil {
					return nil, err
				}
				proto.Interactions = append(proto.Interactions, interaction)
			}
		}
		proto.Screens = append(proto.Screens, screen)
	}

	for i, wt := range doc.Transitions {
		id := wt.ID
		if id == "" {
			id = fmt.Sprintf("%s->%s#%d", wt.From, wt.To, i)
		}
		proto.Transitions = append(proto.Transitions, domain.Transition{
			ID:       id,
			From:     wt.From,
			To:       wt.To,
			Triggers: decodeTriggers(wt.Triggers, wt.Trigger),
			Duration: millis(wt.Duration),
			Delay:    millis(wt.Delay),
			Easing:   decodeEasing(wt.Easing),
		})
	}

	return proto, nil
}

func decodeElement(we wireElement) (domain.Element, error) {
	style, err := decodeStyle(we.Style)
	if err != nil {
		return domain.Element{}, fmt.Errorf("element %q style: %w", we.ID, err)
	}
	el := domain.Element{
		ID:       we.ID,
		Name:     we.Name,
		Kind:     we.Kind,
		Geometry: domain.Geometry{X: we.X, Y: we.Y, Width: we.Width, Height: we.Height},
		Style:    style,
		Text:     we.Text,
	}
	if wl := we.PrototypeLink; wl != nil {
		spec, err := decodeSpec(wl.Transition)
		if err != nil {
			return domain.Element{}, fmt.Errorf("element %q link: %w", we.ID, err)
		}
		el.Link = &domain.PrototypeLink{
			Enabled: wl.Enabled == nil || *wl.Enabled,
			Target:  wl.Target,
			Trigger: gesture(wl.Trigger),
			Spec:    spec,
		}
	}
	return el, nil
}

func decodeStyle(raw map[string]any) (domain.Style, error) {
	style := domain.DefaultStyle()
	if raw == nil {
		return style, nil
	}
	var ws wireStyle
	if err := decodeInto(raw, &ws); err != nil {
		return style, err
	}
	if ws.Opacity != nil {
		style.Opacity = *ws.Opacity
	}
	if ws.Scale != nil {
		style.Scale = *ws.Scale
	}
	style.Fill = ws.Fill
	style.CornerRadius = ws.CornerRadius
	style.Rotation = ws.Rotation
	if len(ws.Extra) > 0 {
		style.Extra = ws.Extra
	}
	return style, nil
}

func decodeInteraction(wi wireInteraction, elementID string) (domain.Interaction, error) {
	interaction := domain.Interaction{
		ID:        wi.ID,
		ElementID: elementID,
		Enabled:   wi.Enabled == nil || *wi.Enabled,
		Gesture:   gesture(wi.Gesture),
	}
	for i, raw := range wi.Actions {
		action, err := decodeAction(raw)
		if err != nil {
			return domain.Interaction{}, fmt.Errorf("interaction %q action %d: %w", wi.ID, i, err)
		}
		interaction.Actions = append(interaction.Actions, action)
	}
	return interaction, nil
}

func gesture(s string) domain.EventType {
	if s == "" {
		return domain.EventTap
	}
	return domain.EventType(s)
}

// decodeTriggers builds the trigger list of an edge. A legacy single trigger
// becomes a one-element list and an edge with neither gets an implicit tap.
func decodeTriggers(list []any, legacy any) []domain.Trigger {
	if len(list) == 0 && legacy != nil {
		list = []any{legacy}
	}
	if len(list) == 0 {
		return []domain.Trigger{domain.TapTrigger{}}
	}
	out := make([]domain.Trigger, 0, len(list))
	for _, raw := range list {
		out = append(out, decodeTrigger(raw))
	}
	return out
}

func decodeTrigger(raw any) domain.Trigger {
	var (
		typ    string
		fields map[string]any
	)
	switch x := raw.(type) {
	case string:
		typ = x
	case map[string]any:
		fields = x
		typ, _ = x["type"].(string)
	default:
		return domain.InvalidTrigger{Reason: fmt.Sprintf("unsupported trigger payload %T", raw)}
	}

	invalid := func(reason string) domain.Trigger {
		return domain.InvalidTrigger{Type: typ, Reason: reason}
	}

	switch domain.TriggerType(typ) {
	case domain.TriggerTap:
		return domain.TapTrigger{}
	case domain.TriggerHover:
		return domain.HoverTrigger{}
	case domain.TriggerDrag:
		var w wireDrag
		if err := decodeInto(fields, &w); err != nil {
			return invalid(err.Error())
		}
		dir, ok := direction(w.Direction)
		if !ok {
			return invalid(fmt.Sprintf("unknown direction %q", w.Direction))
		}
		return domain.DragTrigger{Direction: dir, Threshold: w.Threshold}
	case domain.TriggerScroll:
		var w wireScroll
		if err := decodeInto(fields, &w); err != nil {
			return invalid(err.Error())
		}
		dir, ok := direction(w.Direction)
		if !ok {
			return invalid(fmt.Sprintf("unknown direction %q", w.Direction))
		}
		return domain.ScrollTrigger{Direction: dir, Offset: w.Offset}
	case domain.TriggerTimer:
		var w wireTimer
		if err := decodeInto(fields, &w); err != nil {
			return invalid(err.Error())
		}
		if w.Delay == nil || *w.Delay < 0 {
			return invalid("timer needs a non-negative delay")
		}
		return domain.TimerTrigger{Delay: millis(*w.Delay)}
	case domain.TriggerVariableChange:
		var w wireVariableTrigger
		if err := decodeInto(fields, &w); err != nil {
			return invalid(err.Error())
		}
		if w.VariableID == "" {
			return invalid("variableChange needs a variableId")
		}
		var want domain.Value
		if w.Value != nil {
			want = *w.Value
		}
		op := domain.Comparison(w.Operator)
		switch op {
		case "":
			op = domain.CompareEquals
			if w.Value == nil {
				op = domain.CompareChanged
			}
		case domain.CompareEquals, domain.CompareGreater, domain.CompareLess, domain.CompareChanged:
		default:
			return invalid(fmt.Sprintf("unknown operator %q", w.Operator))
		}
		return domain.VariableTrigger{VariableID: w.VariableID, Operator: op, Value: want}
	case "":
		return invalid("missing trigger type")
	}
	return invalid("unknown trigger type")
}

func direction(s string) (domain.Direction, bool) {
	d := domain.Direction(s)
	switch d {
	case "":
		return domain.DirectionAny, true
	case domain.DirectionAny, domain.DirectionHorizontal, domain.DirectionVertical,
		domain.DirectionUp, domain.DirectionDown, domain.DirectionLeft, domain.DirectionRight:
		return d, true
	}
	return "", false
}

func decodeAction(raw any) (domain.Action, error) {
	var w wireAction
	if s, ok := raw.(string); ok {
		w.Type = s
	} else if err := decodeInto(raw, &w); err != nil {
		return nil, err
	}

	animation := func() (*domain.TransitionSpec, error) {
		if w.Transition == nil {
			return nil, nil
		}
		spec, err := decodeSpec(w.Transition)
		if err != nil {
			return nil, err
		}
		return &spec, nil
	}

	switch domain.ActionType(w.Type) {
	case domain.ActionNavigate:
		if w.Target == "" {
			return nil, fmt.Errorf("navigate needs a target")
		}
		spec, err := animation()
		if err != nil {
			return nil, err
		}
		return domain.NavigateAction{Target: w.Target, Animation: spec}, nil
	case domain.ActionGoToState:
		if w.StateID == "" {
			return nil, fmt.Errorf("goToState needs a stateId")
		}
		spec, err := animation()
		if err != nil {
			return nil, err
		}
		return domain.GoToStateAction{StateID: w.StateID, Animation: spec}, nil
	case domain.ActionSetVariable:
		if w.VariableID == "" {
			return nil, fmt.Errorf("setVariable needs a variableId")
		}
		op := domain.VariableOp(w.Operation)
		switch op {
		case "":
			op = domain.OpSet
		case domain.OpSet, domain.OpToggle, domain.OpIncrement, domain.OpDecrement:
		default:
			return nil, fmt.Errorf("unknown variable operation %q", w.Operation)
		}
		action := domain.SetVariableAction{VariableID: w.VariableID, Op: op, Amount: w.Amount}
		if w.Value != nil {
			action.Value = *w.Value
		}
		return action, nil
	case domain.ActionOpenURL:
		if w.URL == "" {
			return nil, fmt.Errorf("openUrl needs a url")
		}
		return domain.OpenURLAction{URL: w.URL, NewTab: w.NewTab}, nil
	case domain.ActionReset:
		return domain.ResetAction{}, nil
	}
	return nil, fmt.Errorf("unknown action type %q", w.Type)
}

// DecodeTransitionSpec decodes a link animation given as a type name or a
// spec object. Nil decodes to an instant navigation.
func DecodeTransitionSpec(raw any) (domain.TransitionSpec, error) {
	return decodeSpec(raw)
}

// decodeSpec accepts either an animation type name or a spec object.
func decodeSpec(raw any) (domain.TransitionSpec, error) {
	var w wireSpec
	switch x := raw.(type) {
	case nil:
		return domain.InstantSpec(), nil
	case string:
		w.Type = x
	default:
		if err := decodeInto(raw, &w); err != nil {
			return domain.TransitionSpec{}, err
		}
	}
	spec := domain.TransitionSpec{
		Type:      domain.AnimationType(w.Type),
		Direction: domain.Side(w.Direction),
		Duration:  millis(w.Duration),
		Easing:    decodeEasing(w.Easing),
	}
	if spec.Type == "" {
		spec.Type = domain.AnimationInstant
	}
	if spec.Type.Directional() && spec.Direction == "" {
		spec.Direction = domain.SideLeft
	}
	return spec, nil
}

// decodeEasing never fails: a malformed payload becomes a named easing that
// the engine does not know, which falls back to the default curve at runtime.
func decodeEasing(raw any) domain.EasingSpec {
	switch x := raw.(type) {
	case nil:
		return domain.EasingSpec{}
	case string:
		if points, ok := parseCSSBezier(x); ok {
			return domain.CubicBezier(points[0], points[1], points[2], points[3])
		}
		return domain.NamedEasing(x)
	case []any:
		if points, ok := numbers(x); ok && len(points) == 4 {
			return domain.CubicBezier(points[0], points[1], points[2], points[3])
		}
	case map[string]any:
		var w wireEasing
		if err := decodeInto(x, &w); err != nil {
			break
		}
		switch domain.EasingKind(w.Type) {
		case domain.EasingSpring:
			return domain.SpringEasing(domain.SpringParams{
				Mass:      w.Mass,
				Stiffness: w.Stiffness,
				Damping:   w.Damping,
				Response:  w.Response,
			})
		case domain.EasingBezier, "cubicBezier":
			if len(w.Points) == 4 {
				return domain.CubicBezier(w.Points[0], w.Points[1], w.Points[2], w.Points[3])
			}
		case domain.EasingNamed, "":
			if w.Name != "" {
				return domain.NamedEasing(w.Name)
			}
		}
	}
	return domain.NamedEasing(fmt.Sprint(raw))
}

// parseCSSBezier reads "cubic-bezier(x1, y1, x2, y2)".
func parseCSSBezier(s string) ([4]float64, bool) {
	var out [4]float64
	s = strings.TrimSpace(s)
	inner, ok := strings.CutPrefix(s, "cubic-bezier(")
	if !ok {
		return out, false
	}
	inner, ok = strings.CutSuffix(inner, ")")
	if !ok {
		return out, false
	}
	parts := strings.Split(inner, ",")
	if len(parts) != 4 {
		return out, false
	}
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return out, false
		}
		out[i] = f
	}
	return out, true
}

func numbers(list []any) ([]float64, bool) {
	out := make([]float64, 0, len(list))
	for _, item := range list {
		v, err := domain.ValueOf(item)
		if err != nil || v.Kind() != domain.KindNumber {
			return nil, false
		}
		out = append(out, v.AsNumber())
	}
	return out, true
}

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

var valueType = reflect.TypeOf(domain.Value{})

// valueHook turns decoded scalars into domain.Value.
func valueHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != valueType {
		return data, nil
	}
	return domain.ValueOf(data)
}

func decodeInto(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncType(valueHook),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
