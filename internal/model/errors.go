package model

import "errors"

// Pipeline error taxonomy. Every one of these is terminal for the request
// that raised it and is surfaced to the caller as an {error} value, never as
// an unhandled fault. Field-level absence in otherwise valid model output is
// not an error at all.
var (
	// ErrInput — required request field missing. Not retried.
	ErrInput = errors.New("missing required request field")

	// ErrInvocation — transport failure or non-2xx from the model API.
	ErrInvocation = errors.New("model invocation failed")

	// ErrMalformedCompletion — the API envelope lacked the expected
	// choices/message/content structure.
	ErrMalformedCompletion = errors.New("malformed completion envelope")

	// ErrInvalidModelOutput — completion text was not parsable JSON even
	// after fence stripping and one stricter re-prompt.
	ErrInvalidModelOutput = errors.New("model output is not valid JSON")
)
