package dsl

import "github.com/aretw0/keyframe/pkg/domain"

// ScreenBuilder provides a fluent API for configuring a screen.
type ScreenBuilder struct {
	screen   domain.Screen
	elements []*ElementBuilder
	builder  *Builder
}

// Name sets the display name.
func (s *ScreenBuilder) Name(name string) *ScreenBuilder {
	s.screen.Name = name
	return s
}

// State tags the screen with a functional state, the target of goToState.
func (s *ScreenBuilder) State(stateID string) *ScreenBuilder {
	s.screen.StateID = stateID
	return s
}

// Element adds an element with the default style.
// If the element already exists on this screen, it returns the existing builder.
func (s *ScreenBuilder) Element(id string) *ElementBuilder {
	for _, eb := range s.elements {
		if eb.element.ID == id {
			return eb
		}
	}
	eb := &ElementBuilder{
		element: domain.Element{ID: id, Style: domain.DefaultStyle()},
		screen:  s,
	}
	s.elements = append(s.elements, eb)
	return eb
}

// Screen moves on to another screen of the same prototype.
func (s *ScreenBuilder) Screen(id string) *ScreenBuilder {
	return s.builder.Screen(id)
}

// ElementBuilder provides a fluent API for configuring an element.
type ElementBuilder struct {
	element      domain.Element
	interactions []domain.Interaction
	screen       *ScreenBuilder
}

// Kind sets the element kind ("rect", "text"...).
func (e *ElementBuilder) Kind(kind string) *ElementBuilder {
	e.element.Kind = kind
	return e
}

// At sets the position.
func (e *ElementBuilder) At(x, y float64) *ElementBuilder {
	e.element.Geometry.X, e.element.Geometry.Y = x, y
	return e
}

// Size sets width and height.
func (e *ElementBuilder) Size(w, h float64) *ElementBuilder {
	e.element.Geometry.Width, e.element.Geometry.Height = w, h
	return e
}

// Fill sets the fill color.
func (e *ElementBuilder) Fill(color string) *ElementBuilder {
	e.element.Style.Fill = color
	return e
}

// Opacity sets the opacity.
func (e *ElementBuilder) Opacity(o float64) *ElementBuilder {
	e.element.Style.Opacity = o
	return e
}

// Radius sets the corner radius.
func (e *ElementBuilder) Radius(r float64) *ElementBuilder {
	e.element.Style.CornerRadius = r
	return e
}

// Rotate sets the rotation in degrees.
func (e *ElementBuilder) Rotate(deg float64) *ElementBuilder {
	e.element.Style.Rotation = deg
	return e
}

// Scale sets the scale factor.
func (e *ElementBuilder) Scale(s float64) *ElementBuilder {
	e.element.Style.Scale = s
	return e
}

// Text sets the text content.
func (e *ElementBuilder) Text(text string) *ElementBuilder {
	e.element.Text = text
	return e
}

// Link navigates to target on tap with the given animation.
func (e *ElementBuilder) Link(target string, spec domain.TransitionSpec) *ElementBuilder {
	return e.LinkOn(domain.EventTap, target, spec)
}

// LinkOn navigates to target on gesture with the given animation.
func (e *ElementBuilder) LinkOn(gesture domain.EventType, target string, spec domain.TransitionSpec) *ElementBuilder {
	e.element.Link = &domain.PrototypeLink{
		Enabled: true,
		Target:  target,
		Trigger: gesture,
		Spec:    spec,
	}
	return e
}

// On runs actions in order when gesture hits the element.
func (e *ElementBuilder) On(gesture domain.EventType, actions ...domain.Action) *ElementBuilder {
	e.interactions = append(e.interactions, domain.Interaction{
		ID:        e.element.ID + "-" + string(gesture),
		ElementID: e.element.ID,
		Enabled:   true,
		Gesture:   gesture,
		Actions:   actions,
	})
	return e
}

// Element adds a sibling element on the same screen.
func (e *ElementBuilder) Element(id string) *ElementBuilder {
	return e.screen.Element(id)
}

// Screen moves on to another screen of the same prototype.
func (e *ElementBuilder) Screen(id string) *ScreenBuilder {
	return e.screen.builder.Screen(id)
}
