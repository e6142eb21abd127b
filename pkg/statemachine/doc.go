// Package statemachine provides a stateless, table-driven finite state machine.
//
// Unlike an in-memory FSM that owns its current state, a Table only answers
// questions about transitions. The current state lives wherever the entity is
// persisted, and the table tells the caller which states an event may start
// from and where it leads. This maps directly onto conditional updates such as
// "set status = To where status in From", which keeps transitions atomic at
// the storage layer.
//
// # Usage
//
//	type Status string
//	type Event string
//
//	table := statemachine.MustNew(
//	    statemachine.On[Status, Event]("pause").From("active").To("paused"),
//	    statemachine.On[Status, Event]("cancel").From("active", "paused").To("cancelled"),
//	)
//
//	from, to, err := table.Edge("cancel") // [active paused], cancelled, nil
//
// # Error Handling
//
// Edge returns ErrInvalidEvent for events the table does not
// know. New validates the definitions and returns ErrInvalidTransition for
// incomplete or conflicting ones.
package statemachine
