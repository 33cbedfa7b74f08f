package domain

// OutcomeKind classifies how a client flow ended
type OutcomeKind string

const (
	OutcomeSuccess         OutcomeKind = "success"
	OutcomeValidationError OutcomeKind = "validation_error" // missing input, no request sent
	OutcomeServerError     OutcomeKind = "server_error"     // backend answered non-2xx
	OutcomeNetworkError    OutcomeKind = "network_error"    // transport or decode failure
	OutcomeTimeout         OutcomeKind = "timeout"          // download deadline fired
)

// Outcome is the terminal result of one client flow invocation
type Outcome struct {
	Kind    OutcomeKind `json:"kind"`
	Message string      `json:"message,omitempty"`
}

// OK reports whether the flow completed successfully
func (o Outcome) OK() bool {
	return o.Kind == OutcomeSuccess
}

// Title returns a short heading for alerting the user about this outcome
func (o Outcome) Title() string {
	switch o.Kind {
	case OutcomeSuccess:
		return "Done"
	case OutcomeValidationError:
		return "Missing input"
	case OutcomeTimeout:
		return "Timed out"
	default:
		return "Error"
	}
}

// Succeeded returns a success outcome
func Succeeded() Outcome {
	return Outcome{Kind: OutcomeSuccess}
}

// Failed returns an outcome of the given kind carrying msg
func Failed(kind OutcomeKind, msg string) Outcome {
	return Outcome{Kind: kind, Message: msg}
}
