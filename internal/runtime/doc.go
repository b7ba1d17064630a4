/*
Package runtime implements the transition orchestrator: the state machine that
decides when the current screen changes, how the change is animated and what
side effects a gesture produces.

Phases:

	idle -> delaying -> animating -> idle           (canvas transitions)
	idle -> transitionOut -> transitionIn -> idle   (prototype links, animated actions)

Time comes exclusively from a ports.Scheduler, so the same engine runs on a
virtual clock in tests and HTTP previews and on the wall clock in the play host.
*/
package runtime
