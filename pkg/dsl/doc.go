/*
Package dsl provides a Go DSL for programmatically constructing Keyframe prototypes.

It allows developers to define screens, links and timed transitions with a
fluent builder instead of authoring JSON or YAML documents. This is
particularly useful for tests and for generating prototypes from other data.

Example usage:

	b := dsl.New("onboarding")
	b.Variable("step", 0)

	b.Screen("welcome").
		Element("cta").At(24, 600).Size(327, 48).Fill("#6366f1").Text("Start").
		Link("tour", dsl.Dissolve(300*time.Millisecond)).
		On(domain.EventTap, dsl.Increment("step"))

	b.Screen("tour").
		Element("card").At(24, 120).Size(327, 400)

	b.Transition("tour", "welcome").
		On(dsl.Drag(domain.DirectionRight, 80)).
		Duration(250 * time.Millisecond).
		Ease("easeOut")

	proto, err := b.Build()
	// ... pass proto to keyframe.New(...)
*/
package dsl
