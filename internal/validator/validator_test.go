package validator

import (
	"strings"
	"testing"
	"time"

	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, b *dsl.Builder) *domain.Prototype {
	t.Helper()
	p, err := b.Build()
	require.NoError(t, err)
	return p
}

func messages(r Report, sev Severity) []string {
	var out []string
	for _, i := range r.Issues {
		if i.Severity == sev {
			out = append(out, i.Location+": "+i.Message)
		}
	}
	return out
}

func TestValidate_Clean(t *testing.T) {
	b := dsl.New("clean")
	b.Variable("open", false)
	b.Screen("home").
		Element("menu").Link("drawer", dsl.Slide(domain.AnimationPush, domain.SideLeft, 200*time.Millisecond)).
		On(domain.EventLongPress, dsl.Toggle("open"))
	b.Screen("drawer").State("expanded").
		Element("close").Link(domain.TargetBack, dsl.Instant())
	b.Screen("splash")
	b.Initial("splash")
	b.Transition("splash", "home").After(time.Second).Ease("easeInOut")

	r := Validate(build(t, b))
	assert.Empty(t, r.Issues)
	assert.False(t, r.HasErrors())
	assert.NoError(t, r.Err())
}

func TestValidate_BrokenReferences(t *testing.T) {
	b := dsl.New("broken")
	b.Screen("a").
		Element("btn").Link("ghost", dsl.Dissolve(100*time.Millisecond)).
		On(domain.EventTap, dsl.GoToState("missing"), dsl.Set("nope", 1))
	b.Transition("a", "nowhere").Ease("wiggle")

	p := build(t, b)
	p.Interactions = append(p.Interactions, domain.Interaction{ID: "orphan", ElementID: "gone", Enabled: true, Gesture: domain.EventTap})

	r := Validate(p)
	require.True(t, r.HasErrors())
	errs := messages(r, SeverityError)
	assert.Contains(t, errs, `screen a element btn link: navigation target "ghost" not found`)
	assert.Contains(t, errs, `transition a-nowhere-0 (a -> nowhere): target screen "nowhere" not found`)
	assert.Contains(t, errs, `interaction btn-tap: no screen carries state "missing"`)
	assert.Contains(t, errs, `interaction orphan: element "gone" not found`)

	warns := messages(r, SeverityWarning)
	assert.Contains(t, warns, `transition a-nowhere-0 (a -> nowhere): unknown easing "wiggle", easeOut is used`)
	assert.Contains(t, warns, `interaction btn-tap: unknown variable "nope" is ignored`)

	assert.True(t, strings.HasPrefix(r.Err().Error(), "found 4 errors"))
}

func TestValidate_Warnings(t *testing.T) {
	b := dsl.New("warn")
	b.Screen("a")
	b.Screen("b")
	b.Screen("island")
	b.Transition("a", "b").On(domain.InvalidTrigger{Type: "drag", Reason: "missing direction"})
	b.Transition("b", "a").On(dsl.When("ghost", domain.CompareChanged, nil))

	r := Validate(build(t, b))
	assert.False(t, r.HasErrors())
	warns := messages(r, SeverityWarning)
	assert.Contains(t, warns, "transition a-b-0 (a -> b): invalid drag trigger never fires: missing direction")
	assert.Contains(t, warns, `transition b-a-1 (b -> a): trigger watches unknown variable "ghost"`)
	assert.Contains(t, warns, `screen island: unreachable from "a"`)
}

func TestValidate_Empty(t *testing.T) {
	r := Validate(&domain.Prototype{})
	assert.Equal(t, []Issue{{SeverityError, "prototype", "no screens"}}, r.Issues)
	assert.Equal(t, "error: prototype: no screens", r.Issues[0].String())
}
