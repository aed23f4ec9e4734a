package domain

import "errors"

var (
	// ErrMissingWorkflowID indicates a caller passed an empty workflow
	// identifier. This is programmer error and is never swallowed.
	ErrMissingWorkflowID = errors.New("workflow id is required")

	// ErrMissingAgentKind indicates a caller passed an empty agent kind.
	ErrMissingAgentKind = errors.New("agent kind is required")

	// ErrUnknownAgentKind indicates an agent name that is not part of the
	// known agent set.
	ErrUnknownAgentKind = errors.New("unknown agent kind")

	// ErrAgentFailed wraps any failure in the LLM invocation path so the
	// outer workflow step fails uniformly instead of returning a partial
	// response to the user.
	ErrAgentFailed = errors.New("agent failed")
)
