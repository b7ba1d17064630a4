package document

import (
	"errors"

	"github.com/aretw0/keyframe/pkg/domain"
)

// CurrentVersion is the document version written by Encode.
const CurrentVersion = 1

var (
	// ErrInvalidDocument is returned when the payload is not a prototype document.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrUnsupportedVersion is returned for documents newer than CurrentVersion.
	ErrUnsupportedVersion = errors.New("unsupported document version")
)

// The wire types carry both tags: json for Encode, mapstructure for Decode.

type wireDocument struct {
	Version       int               `json:"version" mapstructure:"version"`
	Name          string            `json:"name,omitempty" mapstructure:"name"`
	InitialScreen string            `json:"initialScreen,omitempty" mapstructure:"initialScreen"`
	Screens       []wireScreen      `json:"screens" mapstructure:"screens"`
	Transitions   []wireTransition  `json:"transitions" mapstructure:"transitions"`
	Variables     []wireVariable    `json:"variables" mapstructure:"variables"`
	Interactions  []wireInteraction `json:"interactions" mapstructure:"interactions"`
}

type wireScreen struct {
	ID       string        `json:"id" mapstructure:"id"`
	Name     string        `json:"name,omitempty" mapstructure:"name"`
	StateID  string        `json:"stateId,omitempty" mapstructure:"stateId"`
	Elements []wireElement `json:"elements" mapstructure:"elements"`
}

type wireElement struct {
	ID            string            `json:"id" mapstructure:"id"`
	Name          string            `json:"name,omitempty" mapstructure:"name"`
	Kind          string            `json:"kind,omitempty" mapstructure:"kind"`
	X             float64           `json:"x" mapstructure:"x"`
	Y             float64           `json:"y" mapstructure:"y"`
	Width         float64           `json:"width" mapstructure:"width"`
	Height        float64           `json:"height" mapstructure:"height"`
	Style         map[string]any    `json:"style,omitempty" mapstructure:"style"`
	Text          string            `json:"text,omitempty" mapstructure:"text"`
	PrototypeLink *wireLink         `json:"prototypeLink,omitempty" mapstructure:"prototypeLink"`
	Interactions  []wireInteraction `json:"interactions,omitempty" mapstructure:"interactions"`
}

type wireStyle struct {
	Opacity      *float64       `mapstructure:"opacity"`
	Fill         string         `mapstructure:"fill"`
	CornerRadius float64        `mapstructure:"cornerRadius"`
	Rotation     float64        `mapstructure:"rotation"`
	Scale        *float64       `mapstructure:"scale"`
	Extra        map[string]any `mapstructure:",remain"`
}

type wireLink struct {
	Enabled    *bool  `json:"enabled,omitempty" mapstructure:"enabled"`
	Target     string `json:"target" mapstructure:"target"`
	Trigger    string `json:"trigger,omitempty" mapstructure:"trigger"`
	Transition any    `json:"transition,omitempty" mapstructure:"transition"`
}

type wireSpec struct {
	Type      string  `json:"type" mapstructure:"type"`
	Direction string  `json:"direction,omitempty" mapstructure:"direction"`
	Duration  float64 `json:"duration,omitempty" mapstructure:"duration"`
	Easing    any     `json:"easing,omitempty" mapstructure:"easing"`
}

type wireTransition struct {
	ID       string  `json:"id,omitempty" mapstructure:"id"`
	From     string  `json:"from" mapstructure:"from"`
	To       string  `json:"to" mapstructure:"to"`
	Triggers []any   `json:"triggers,omitempty" mapstructure:"triggers"`
	Trigger  any     `json:"trigger,omitempty" mapstructure:"trigger"` // Legacy single trigger
	Duration float64 `json:"duration" mapstructure:"duration"`
	Delay    float64 `json:"delay" mapstructure:"delay"`
	Easing   any     `json:"easing,omitempty" mapstructure:"easing"`
}

type wireVariable struct {
	ID           string       `json:"id" mapstructure:"id"`
	Name         string       `json:"name,omitempty" mapstructure:"name"`
	DefaultValue domain.Value `json:"defaultValue" mapstructure:"defaultValue"`
}

type wireInteraction struct {
	ID        string `json:"id,omitempty" mapstructure:"id"`
	ElementID string `json:"elementId,omitempty" mapstructure:"elementId"`
	Enabled   *bool  `json:"enabled,omitempty" mapstructure:"enabled"`
	Gesture   string `json:"gesture,omitempty" mapstructure:"gesture"`
	Actions   []any  `json:"actions" mapstructure:"actions"`
}

type wireAction struct {
	Type       string        `json:"type" mapstructure:"type"`
	Target     string        `json:"target,omitempty" mapstructure:"target"`
	StateID    string        `json:"stateId,omitempty" mapstructure:"stateId"`
	Transition any           `json:"transition,omitempty" mapstructure:"transition"`
	VariableID string        `json:"variableId,omitempty" mapstructure:"variableId"`
	Operation  string        `json:"operation,omitempty" mapstructure:"operation"`
	Value      *domain.Value `json:"value,omitempty" mapstructure:"value"`
	Amount     *float64      `json:"amount,omitempty" mapstructure:"amount"`
	URL        string        `json:"url,omitempty" mapstructure:"url"`
	NewTab     bool          `json:"newTab,omitempty" mapstructure:"newTab"`
}

type wireDrag struct {
	Direction string  `mapstructure:"direction"`
	Threshold float64 `mapstructure:"threshold"`
}

type wireScroll struct {
	Direction string  `mapstructure:"direction"`
	Offset    float64 `mapstructure:"offset"`
}

type wireTimer struct {
	Delay *float64 `mapstructure:"delay"`
}

type wireVariableTrigger struct {
	VariableID string        `mapstructure:"variableId"`
	Operator   string        `mapstructure:"operator"`
	Value      *domain.Value `mapstructure:"value"`
}

type wireEasing struct {
	Type      string    `mapstructure:"type"`
	Name      string    `mapstructure:"name"`
	Points    []float64 `mapstructure:"points"`
	Mass      float64   `mapstructure:"mass"`
	Stiffness float64   `mapstructure:"stiffness"`
	Damping   float64   `mapstructure:"damping"`
	Response  float64   `mapstructure:"response"`
}
