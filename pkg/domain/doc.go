/*
Package domain contains the core domain models of the Keyframe engine.

It defines the authored configuration of an interactive prototype (Screens,
Elements, Transitions, Prototype Links, Interactions and Variables) and the
runtime vocabulary the engine speaks (Events, Frames, Snapshots and Hooks).
This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Screen: one static visual state (a keyframe) holding positioned Elements.
  - Transition: a triggered, timed, eased edge between two Screens.
  - Trigger: closed sum type describing what fires a Transition (tap, drag, scroll,
    hover, timer, variable change).
  - Action: closed sum type describing what an Interaction does (navigate, go to
    state, set variable, open URL, reset).
  - Snapshot: the serializable runtime state of one engine instance.
*/
package domain
