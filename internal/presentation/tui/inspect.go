package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/keyframe/internal/validator"
	"github.com/aretw0/keyframe/pkg/domain"
)

// InspectMarkdown summarizes a prototype as markdown: screens, canvas
// transitions, variables and the validator findings.
func InspectMarkdown(p *domain.Prototype, report validator.Report) string {
	var sb strings.Builder
	name := p.Name
	if name == "" {
		name = "Untitled prototype"
	}
	entry, _ := p.EntryScreen()
	fmt.Fprintf(&sb, "# %s\n\n", name)
	fmt.Fprintf(&sb, "Entry screen: `%s` · %d screens · %d transitions · %d interactions\n\n",
		entry, len(p.Screens), len(p.Transitions), len(p.Interactions))

	sb.WriteString("## Screens\n\n")
	sb.WriteString("| Screen | State | Elements | Links |\n|---|---|---|---|\n")
	for _, s := range p.Screens {
		links := 0
		for _, el := range s.Elements {
			if el.Link != nil && el.Link.Enabled {
				links++
			}
		}
		fmt.Fprintf(&sb, "| %s | %s | %d | %d |\n", cell(s.ID), cell(s.StateID), len(s.Elements), links)
	}

	if len(p.Transitions) > 0 {
		sb.WriteString("\n## Transitions\n\n")
		sb.WriteString("| ID | From | To | Triggers | Delay | Duration | Easing |\n|---|---|---|---|---|---|---|\n")
		for _, t := range p.Transitions {
			triggers := make([]string, 0, len(t.Triggers))
			for _, trig := range t.Triggers {
				triggers = append(triggers, string(trig.TriggerType()))
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %dms | %dms | %s |\n",
				cell(t.ID), cell(t.From), cell(t.To), cell(strings.Join(triggers, " + ")),
				t.Delay.Milliseconds(), t.Duration.Milliseconds(), cell(easingLabel(t.Easing)))
		}
	}

	if len(p.Variables) > 0 {
		sb.WriteString("\n## Variables\n\n")
		vars := append([]domain.Variable(nil), p.Variables...)
		sort.Slice(vars, func(i, j int) bool { return vars[i].ID < vars[j].ID })
		for _, v := range vars {
			fmt.Fprintf(&sb, "- `%s` = `%s` (%s)\n", v.ID, v.DefaultValue, v.DefaultValue.Kind())
		}
	}

	sb.WriteString("\n## Validation\n\n")
	if len(report.Issues) == 0 {
		sb.WriteString("No issues found.\n")
	}
	for _, i := range report.Issues {
		icon := "⚠️"
		if i.Severity == validator.SeverityError {
			icon = "❌"
		}
		fmt.Fprintf(&sb, "- %s **%s**: %s\n", icon, i.Location, i.Message)
	}
	return sb.String()
}

func easingLabel(e domain.EasingSpec) string {
	switch e.Kind {
	case domain.EasingBezier:
		return fmt.Sprintf("bezier(%g, %g, %g, %g)", e.Bezier[0], e.Bezier[1], e.Bezier[2], e.Bezier[3])
	case domain.EasingSpring:
		return fmt.Sprintf("spring(%g, %g, %g)", e.Spring.Mass, e.Spring.Stiffness, e.Spring.Damping)
	case domain.EasingNamed:
		return e.Name
	}
	return "default"
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", "\\|")
}
