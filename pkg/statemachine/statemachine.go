package statemachine

import (
	"errors"
	"fmt"
	"slices"
)

// Transition moves an entity from any of From to To when Event fires.
type Transition[S, E ~string] struct {
	Event E
	From  []S
	To    S
}

// TransitionBuilder assembles a Transition fluently.
type TransitionBuilder[S, E ~string] struct {
	t Transition[S, E]
}

// On starts a transition definition for event.
func On[S, E ~string](event E) *TransitionBuilder[S, E] {
	return &TransitionBuilder[S, E]{t: Transition[S, E]{Event: event}}
}

// From adds source states.
func (b *TransitionBuilder[S, E]) From(states ...S) *TransitionBuilder[S, E] {
	b.t.From = append(b.t.From, states...)
	return b
}

// To sets the target state and returns the finished definition.
func (b *TransitionBuilder[S, E]) To(state S) Transition[S, E] {
	b.t.To = state
	return b.t
}

// Table is an immutable set of transitions, safe for concurrent use.
type Table[S, E ~string] struct {
	edges map[E]Transition[S, E]
}

// New validates definitions and builds a table. Each event may be defined once.
func New[S, E ~string](transitions ...Transition[S, E]) (*Table[S, E], error) {
	t := &Table[S, E]{edges: make(map[E]Transition[S, E], len(transitions))}

	for _, tr := range transitions {
		if tr.Event == "" || tr.To == "" || len(tr.From) == 0 || slices.Contains(tr.From, "") {
			return nil, ErrInvalidTransition
		}
		if _, exists := t.edges[tr.Event]; exists {
			return nil, errors.Join(ErrInvalidTransition, fmt.Errorf("event %q defined twice", tr.Event))
		}
		t.edges[tr.Event] = Transition[S, E]{
			Event: tr.Event,
			From:  slices.Compact(slices.Clone(tr.From)),
			To:    tr.To,
		}
	}

	return t, nil
}

// MustNew is like New but panics on invalid definitions.
func MustNew[S, E ~string](transitions ...Transition[S, E]) *Table[S, E] {
	t, err := New(transitions...)
	if err != nil {
		panic(err)
	}
	return t
}

// Edge returns the source states and the target of event. The returned
// slice is a copy.
func (t *Table[S, E]) Edge(event E) ([]S, S, error) {
	tr, ok := t.edges[event]
	if !ok {
		return nil, "", ErrInvalidEvent
	}
	return slices.Clone(tr.From), tr.To, nil
}
