package domain

// Geometry is the position and size of an element in screen coordinates.
type Geometry struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Style is the animatable style bag of an element.
// Properties the engine does not interpolate travel in Extra untouched.
type Style struct {
	Opacity      float64        `json:"opacity"`
	Fill         string         `json:"fill,omitempty"`
	CornerRadius float64        `json:"cornerRadius,omitempty"`
	Rotation     float64        `json:"rotation,omitempty"`
	Scale        float64        `json:"scale"`
	Extra        map[string]any `json:"extra,omitempty"`
}

// DefaultStyle is the style of an element that declares none.
func DefaultStyle() Style {
	return Style{Opacity: 1, Scale: 1}
}

// Element is one visual item on a screen.
// Elements are matched across screens by ID, never by position in the list.
type Element struct {
	ID       string         `json:"id"`
	Name     string         `json:"name,omitempty"`
	Kind     string         `json:"kind,omitempty"` // e.g. "rect", "text", "ellipse"
	Geometry Geometry       `json:"geometry"`
	Style    Style          `json:"style"`
	Text     string         `json:"text,omitempty"`
	Link     *PrototypeLink `json:"prototypeLink,omitempty"`
}

// Screen is an immutable keyframe. The engine only reads its element list.
type Screen struct {
	ID       string    `json:"id"`
	Name     string    `json:"name,omitempty"`
	StateID  string    `json:"stateId,omitempty"` // Functional State tag, target of goToState
	Elements []Element `json:"elements"`
}

// Element looks up an element by ID.
func (s *Screen) Element(id string) (*Element, bool) {
	for i := range s.Elements {
		if s.Elements[i].ID == id {
			return &s.Elements[i], true
		}
	}
	return nil, false
}

// Prototype is the complete authored configuration handed to an engine.
// It is treated as immutable once an engine has been constructed from it.
type Prototype struct {
	Name            string        `json:"name,omitempty"`
	InitialScreenID string        `json:"initialScreen,omitempty"`
	Screens         []Screen      `json:"screens"`
	Transitions     []Transition  `json:"transitions"`
	Variables       []Variable    `json:"variables"`
	Interactions    []Interaction `json:"interactions"`
}

// Screen looks up a screen by ID.
func (p *Prototype) Screen(id string) (*Screen, bool) {
	for i := range p.Screens {
		if p.Screens[i].ID == id {
			return &p.Screens[i], true
		}
	}
	return nil, false
}

// ScreenForState returns the first screen tagged with the given functional state.
func (p *Prototype) ScreenForState(stateID string) (*Screen, bool) {
	for i := range p.Screens {
		if p.Screens[i].StateID == stateID {
			return &p.Screens[i], true
		}
	}
	return nil, false
}

// EntryScreen resolves the screen a fresh engine starts on.
func (p *Prototype) EntryScreen() (string, bool) {
	if p.InitialScreenID != "" {
		if _, ok := p.Screen(p.InitialScreenID); ok {
			return p.InitialScreenID, true
		}
	}
	if len(p.Screens) == 0 {
		return "", false
	}
	return p.Screens[0].ID, true
}
