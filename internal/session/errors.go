package session

import "errors"

// Structural violations surface immediately and never partially mutate
// session state. Extraction gaps never appear here: they degrade upstream.
var (
	// ErrInvalidBudget is returned by StartSession for budgets below the
	// configured minimum.
	ErrInvalidBudget = errors.New("budget below minimum")

	// ErrUnknownSession is returned when a session ID is not found.
	ErrUnknownSession = errors.New("unknown session")

	// ErrInvalidStep is returned for steps outside 1..TotalSteps.
	ErrInvalidStep = errors.New("invalid step")

	// ErrSequenceViolation is returned when a component is selected out
	// of step order. The session is left unchanged.
	ErrSequenceViolation = errors.New("step out of sequence")

	// ErrUnknownComponent is returned when the component ID does not
	// exist in the graph.
	ErrUnknownComponent = errors.New("unknown component")

	// ErrCategoryMismatch is returned when the component's category does
	// not match the step's category.
	ErrCategoryMismatch = errors.New("component category does not match step")
)
