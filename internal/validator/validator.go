// Package validator reports authoring problems in a prototype: dangling
// references, triggers and curves the engine would silently ignore, and
// screens no navigation can reach.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/keyframe/pkg/curve"
	"github.com/aretw0/keyframe/pkg/domain"
)

// Severity grades an issue. Errors describe references the engine cannot
// resolve; warnings describe authoring that plays, but not as written.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding.
type Issue struct {
	Severity Severity `json:"severity"`
	Location string   `json:"location"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Location, i.Message)
}

// Report collects the issues of one prototype.
type Report struct {
	Issues []Issue `json:"issues"`
}

// HasErrors reports whether any issue is an error.
func (r Report) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Err folds the errors of the report into one error, nil when there are none.
func (r Report) Err() error {
	var msgs []string
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			msgs = append(msgs, i.Location+": "+i.Message)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(msgs), strings.Join(msgs, "\n- "))
}

type checker struct {
	proto    *domain.Prototype
	screens  map[string]bool
	states   map[string]bool
	elements map[string]string // element -> screen
	vars     map[string]bool
	report   Report
}

func (c *checker) errorf(loc, format string, args ...any) {
	c.report.Issues = append(c.report.Issues, Issue{SeverityError, loc, fmt.Sprintf(format, args...)})
}

func (c *checker) warnf(loc, format string, args ...any) {
	c.report.Issues = append(c.report.Issues, Issue{SeverityWarning, loc, fmt.Sprintf(format, args...)})
}

// Validate checks p and returns every issue found.
func Validate(p *domain.Prototype) Report {
	c := &checker{
		proto:    p,
		screens:  make(map[string]bool),
		states:   make(map[string]bool),
		elements: make(map[string]string),
		vars:     make(map[string]bool),
	}
	if p == nil || len(p.Screens) == 0 {
		c.errorf("prototype", "no screens")
		return c.report
	}

	c.indexScreens()
	c.indexVariables()
	if p.InitialScreenID != "" && !c.screens[p.InitialScreenID] {
		c.warnf("prototype", "initial screen %q not found, the first screen is used", p.InitialScreenID)
	}
	for _, t := range p.Transitions {
		c.checkTransition(t)
	}
	for _, s := range p.Screens {
		for _, el := range s.Elements {
			if el.Link != nil {
				c.checkLink(s.ID, el)
			}
		}
	}
	for _, in := range p.Interactions {
		c.checkInteraction(in)
	}
	c.checkReachability()
	return c.report
}

func (c *checker) indexScreens() {
	for _, s := range c.proto.Screens {
		loc := "screen " + s.ID
		if s.ID == "" {
			c.errorf("screen", "missing id")
			continue
		}
		if c.screens[s.ID] {
			c.errorf(loc, "duplicate screen id")
		}
		c.screens[s.ID] = true
		if s.StateID != "" {
			c.states[s.StateID] = true
		}
		for _, el := range s.Elements {
			if prev, ok := c.elements[el.ID]; ok && prev == s.ID {
				c.warnf(loc, "duplicate element id %q", el.ID)
			}
			c.elements[el.ID] = s.ID
		}
	}
}

func (c *checker) indexVariables() {
	for _, v := range c.proto.Variables {
		if c.vars[v.ID] {
			c.errorf("variable "+v.ID, "duplicate variable id")
		}
		c.vars[v.ID] = true
	}
}

func (c *checker) checkTransition(t domain.Transition) {
	loc := fmt.Sprintf("transition %s (%s -> %s)", t.ID, t.From, t.To)
	if !c.screens[t.From] {
		c.errorf(loc, "source screen %q not found", t.From)
	}
	if !c.screens[t.To] {
		c.errorf(loc, "target screen %q not found", t.To)
	}
	if t.Duration < 0 || t.Delay < 0 {
		c.errorf(loc, "negative timing")
	}
	c.checkEasing(loc, t.Easing)

	timers := 0
	for _, trig := range t.Triggers {
		switch x := trig.(type) {
		case domain.InvalidTrigger:
			c.warnf(loc, "invalid %s trigger never fires: %s", x.Type, x.Reason)
		case domain.VariableTrigger:
			if !c.vars[x.VariableID] {
				c.warnf(loc, "trigger watches unknown variable %q", x.VariableID)
			}
		case domain.TimerTrigger:
			timers++
		}
	}
	if timers > 0 && timers < len(t.Triggers) {
		c.warnf(loc, "timer combined with other triggers, the combo needs both in one event")
	}
}

func (c *checker) checkEasing(loc string, e domain.EasingSpec) {
	if _, ok := curve.Resolve(e); !ok {
		c.warnf(loc, "unknown easing %q, easeOut is used", e.Name)
	}
}

func (c *checker) checkSpec(loc string, s domain.TransitionSpec) {
	if s.Type == domain.AnimationInstant || s.Type == "" {
		return
	}
	c.checkEasing(loc, s.Easing)
	if s.Type.Directional() && s.Direction == "" {
		c.warnf(loc, "%s without direction", s.Type)
	}
}

func (c *checker) checkTarget(loc, target string) {
	if target != domain.TargetBack && !c.screens[target] {
		c.errorf(loc, "navigation target %q not found", target)
	}
}

func (c *checker) checkLink(screenID string, el domain.Element) {
	loc := fmt.Sprintf("screen %s element %s link", screenID, el.ID)
	if !el.Link.Enabled {
		return
	}
	c.checkTarget(loc, el.Link.Target)
	if !el.Link.Trigger.IsGesture() {
		c.warnf(loc, "trigger %q is not a gesture", el.Link.Trigger)
	}
	c.checkSpec(loc, el.Link.Spec)
}

func (c *checker) checkInteraction(in domain.Interaction) {
	loc := "interaction " + in.ID
	if _, ok := c.elements[in.ElementID]; !ok {
		c.errorf(loc, "element %q not found", in.ElementID)
	}
	if !in.Gesture.IsGesture() {
		c.warnf(loc, "gesture %q is not a gesture", in.Gesture)
	}
	for _, a := range in.Actions {
		switch x := a.(type) {
		case domain.NavigateAction:
			c.checkTarget(loc, x.Target)
			if x.Animation != nil {
				c.checkSpec(loc, *x.Animation)
			}
		case domain.GoToStateAction:
			if !c.states[x.StateID] {
				c.errorf(loc, "no screen carries state %q", x.StateID)
			}
		case domain.SetVariableAction:
			if !c.vars[x.VariableID] {
				c.warnf(loc, "unknown variable %q is ignored", x.VariableID)
			}
		case domain.OpenURLAction:
			if x.URL == "" {
				c.warnf(loc, "openUrl without url")
			}
		}
	}
}

// checkReachability crawls navigation edges from the entry screen.
// Back and reset are ignored since they only revisit screens.
func (c *checker) checkReachability() {
	entry, ok := c.proto.EntryScreen()
	if !ok {
		return
	}
	edges := make(map[string][]string)
	for _, t := range c.proto.Transitions {
		edges[t.From] = append(edges[t.From], t.To)
	}
	stateScreens := make(map[string][]string)
	for _, s := range c.proto.Screens {
		if s.StateID != "" {
			stateScreens[s.StateID] = append(stateScreens[s.StateID], s.ID)
		}
	}
	for _, s := range c.proto.Screens {
		for _, el := range s.Elements {
			if el.Link != nil && el.Link.Enabled {
				edges[s.ID] = append(edges[s.ID], el.Link.Target)
			}
		}
	}
	for _, in := range c.proto.Interactions {
		from := c.elements[in.ElementID]
		for _, a := range in.Actions {
			switch x := a.(type) {
			case domain.NavigateAction:
				edges[from] = append(edges[from], x.Target)
			case domain.GoToStateAction:
				edges[from] = append(edges[from], stateScreens[x.StateID]...)
			}
		}
	}

	visited := map[string]bool{entry: true}
	queue := []string{entry}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range edges[current] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	for _, s := range c.proto.Screens {
		if !visited[s.ID] {
			c.warnf("screen "+s.ID, "unreachable from %q", entry)
		}
	}
}
