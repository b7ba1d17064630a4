package graph

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/keyframe/pkg/domain"
)

// GraphOverlay contains session state to visualize on the graph.
type GraphOverlay struct {
	VisitedScreens []string
	CurrentScreen  string
}

// OverlayFromSnapshot highlights the back stack and current screen of a session.
func OverlayFromSnapshot(snap domain.Snapshot) *GraphOverlay {
	return &GraphOverlay{
		VisitedScreens: append([]string(nil), snap.History...),
		CurrentScreen:  snap.CurrentScreen,
	}
}

// GenerateMermaid produces a Mermaid flowchart of the prototype's navigation.
// It applies semantic styling:
// - Entry screen: ((Circle))
// - Screen carrying a state: {{Hexagon}}
// - Default: [Rectangle]
// Canvas transitions are solid arrows labeled with their triggers and timing;
// element links and navigate actions are dotted. Back navigation is not drawn.
func GenerateMermaid(p *domain.Prototype, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if p == nil {
		return sb.String()
	}

	entry, _ := p.EntryScreen()
	elementScreen := make(map[string]string)
	for _, s := range p.Screens {
		safeID := sanitizeMermaidID(s.ID)
		label := s.ID
		if s.Name != "" && s.Name != s.ID {
			label = fmt.Sprintf("%s <br/> %s", s.Name, s.ID)
		}
		label = escape(label)

		opener, closer := "[", "]"
		switch {
		case s.ID == entry:
			opener, closer = "((", "))"
		case s.StateID != "":
			opener, closer = "{{", "}}"
			label = fmt.Sprintf("%s <br/> state: %s", label, escape(s.StateID))
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		for _, el := range s.Elements {
			elementScreen[el.ID] = s.ID
			l := el.Link
			if l == nil || !l.Enabled || l.Target == domain.TargetBack {
				continue
			}
			text := fmt.Sprintf("%s %s", el.ID, l.Trigger)
			if l.Spec.Type != "" && l.Spec.Type != domain.AnimationInstant {
				text += " · " + string(l.Spec.Type)
			}
			sb.WriteString(fmt.Sprintf("    %s -. \"%s\" .-> %s\n", safeID, escape(text), sanitizeMermaidID(l.Target)))
		}
	}

	for _, t := range p.Transitions {
		sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n",
			sanitizeMermaidID(t.From), escape(transitionLabel(t)), sanitizeMermaidID(t.To)))
	}

	statesToScreens := make(map[string][]string)
	for _, s := range p.Screens {
		if s.StateID != "" {
			statesToScreens[s.StateID] = append(statesToScreens[s.StateID], s.ID)
		}
	}
	for _, in := range p.Interactions {
		from, ok := elementScreen[in.ElementID]
		if !ok || !in.Enabled {
			continue
		}
		for _, a := range in.Actions {
			var targets []string
			switch x := a.(type) {
			case domain.NavigateAction:
				if x.Target != domain.TargetBack {
					targets = []string{x.Target}
				}
			case domain.GoToStateAction:
				targets = statesToScreens[x.StateID]
			}
			for _, to := range targets {
				text := fmt.Sprintf("%s %s", in.ElementID, in.Gesture)
				sb.WriteString(fmt.Sprintf("    %s -. \"%s\" .-> %s\n", sanitizeMermaidID(from), escape(text), sanitizeMermaidID(to)))
			}
		}
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedScreens {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentScreen != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentScreen)))
		}
	}

	return sb.String()
}

func transitionLabel(t domain.Transition) string {
	parts := make([]string, 0, len(t.Triggers))
	for _, trig := range t.Triggers {
		parts = append(parts, triggerLabel(trig))
	}
	if len(parts) == 0 {
		parts = append(parts, string(domain.TriggerTap))
	}
	label := strings.Join(parts, " + ")
	if t.Delay > 0 {
		label += fmt.Sprintf(" · wait %s", formatMS(t.Delay))
	}
	if t.Duration > 0 {
		label += fmt.Sprintf(" · %s", formatMS(t.Duration))
	}
	return label
}

func triggerLabel(trig domain.Trigger) string {
	switch x := trig.(type) {
	case domain.TimerTrigger:
		return "⏱️ " + formatMS(x.Delay)
	case domain.DragTrigger:
		return fmt.Sprintf("drag %s", x.Direction)
	case domain.ScrollTrigger:
		return fmt.Sprintf("scroll %s", x.Direction)
	case domain.VariableTrigger:
		if x.Operator == domain.CompareChanged {
			return fmt.Sprintf("%s changed", x.VariableID)
		}
		return fmt.Sprintf("%s %s %s", x.VariableID, x.Operator, x.Value)
	case domain.InvalidTrigger:
		return "invalid " + x.Type
	}
	return string(trig.TriggerType())
}

func formatMS(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}

// escape swaps double quotes, which would close the Mermaid label.
func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
