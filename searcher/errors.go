package searcher

import "errors"

var (
	// ErrFullyExpanded is returned when expanding a node with no untried action.
	ErrFullyExpanded = errors.New("node is fully expanded")
	// ErrTerminal is returned when expanding or searching from a terminal node.
	ErrTerminal = errors.New("node is terminal")
	// ErrNotSearched is returned when asking for a best action before any
	// child of the root exists.
	ErrNotSearched = errors.New("root has no children")
	// ErrUnreachableState is returned when resetting and replaying the
	// committed actions does not reproduce the root state.
	ErrUnreachableState = errors.New("decision process cannot reach root state")
)
