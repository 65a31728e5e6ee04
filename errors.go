package dailyquiz

import "errors"

// Generation failures. Each one ends the attempt and sends the caller to the
// fallback bank.
var (
	ErrMissingAPIKey   = errors.New("api key not configured")
	ErrTransport       = errors.New("chat completion request failed")
	ErrNoContent       = errors.New("no message content in response")
	ErrNoJSONArray     = errors.New("no JSON array in model output")
	ErrMalformedOutput = errors.New("malformed model output")
)

var (
	// ErrNoQuestions means neither generation nor the fallback bank produced a usable question
	ErrNoQuestions = errors.New("no usable questions, cannot start quiz")

	ErrInvalidChoice = errors.New("choice is not one of the question's options")
	ErrSessionState  = errors.New("event not allowed in current session state")
)
