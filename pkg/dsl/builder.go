package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/keyframe/pkg/adapters/memory"
	"github.com/aretw0/keyframe/pkg/domain"
)

// Builder manages the prototype construction.
type Builder struct {
	name        string
	initial     string
	screens     []*ScreenBuilder
	index       map[string]*ScreenBuilder
	transitions []*TransitionBuilder
	variables   []domain.Variable
	errs        []error
}

// New creates a new prototype builder.
func New(name string) *Builder {
	return &Builder{
		name:  name,
		index: make(map[string]*ScreenBuilder),
	}
}

// Initial sets the entry screen. Without it the first added screen is used.
func (b *Builder) Initial(screenID string) *Builder {
	b.initial = screenID
	return b
}

// Variable declares a variable. def may be a bool, a number or a string.
func (b *Builder) Variable(id string, def any) *Builder {
	v, err := domain.ValueOf(def)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("variable %s: %w", id, err))
		return b
	}
	b.variables = append(b.variables, domain.Variable{ID: id, DefaultValue: v})
	return b
}

// Screen adds a screen to the prototype.
// If the screen already exists, it returns the existing builder.
func (b *Builder) Screen(id string) *ScreenBuilder {
	if sb, ok := b.index[id]; ok {
		return sb
	}
	sb := &ScreenBuilder{
		screen:  domain.Screen{ID: id},
		builder: b,
	}
	b.screens = append(b.screens, sb)
	b.index[id] = sb
	return sb
}

// Transition adds a canvas edge. Edges keep declaration order, which is the
// tie-break when several match the same event.
func (b *Builder) Transition(from, to string) *TransitionBuilder {
	tb := &TransitionBuilder{
		transition: domain.Transition{From: from, To: to},
		builder:    b,
	}
	b.transitions = append(b.transitions, tb)
	return tb
}

// Build assembles the prototype.
func (b *Builder) Build() (*domain.Prototype, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	if len(b.screens) == 0 {
		return nil, domain.ErrEmptyPrototype
	}

	p := &domain.Prototype{
		Name:            b.name,
		InitialScreenID: b.initial,
		Screens:         make([]domain.Screen, 0, len(b.screens)),
		Transitions:     make([]domain.Transition, 0, len(b.transitions)),
		Variables:       append([]domain.Variable(nil), b.variables...),
	}
	if p.InitialScreenID != "" {
		if _, ok := b.index[p.InitialScreenID]; !ok {
			return nil, fmt.Errorf("initial screen %q: %w", p.InitialScreenID, domain.ErrScreenNotFound)
		}
	}

	for _, sb := range b.screens {
		screen := sb.screen
		screen.Elements = make([]domain.Element, 0, len(sb.elements))
		for _, eb := range sb.elements {
			screen.Elements = append(screen.Elements, eb.element)
			p.Interactions = append(p.Interactions, eb.interactions...)
		}
		p.Screens = append(p.Screens, screen)
	}

	for i, tb := range b.transitions {
		t := tb.transition
		if t.ID == "" {
			t.ID = fmt.Sprintf("%s-%s-%d", t.From, t.To, i)
		}
		if len(t.Triggers) == 0 {
			t.Triggers = []domain.Trigger{domain.TapTrigger{}}
		}
		p.Transitions = append(p.Transitions, t)
	}
	return p, nil
}

// Loader builds the prototype and serves it from a memory loader keyed by
// the builder's name.
func (b *Builder) Loader() (*memory.Loader, error) {
	p, err := b.Build()
	if err != nil {
		return nil, err
	}
	loader, err := memory.NewFromPrototypes(p)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
