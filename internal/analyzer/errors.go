package analyzer

// Fallback messages fixed by the user-facing contract.
const (
	fallbackServiceMessage   = "Analysis failed"
	fallbackTransportMessage = "Failed to analyze site. Please try again."
)

// ValidationError reports bad input rejected before any network activity.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ServiceError means the service responded with a failure signal. Detail is
// the description taken from the response body, or the generic fallback when
// the body carried none.
type ServiceError struct {
	StatusCode int
	Detail     string
}

func (e *ServiceError) Error() string {
	if e.Detail == "" {
		return fallbackServiceMessage
	}
	return e.Detail
}

// TransportError means no response reached the client at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil || e.Err.Error() == "" {
		return fallbackTransportMessage
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// UserMessage converts any analysis error into the single message shown to
// the user. Unknown errors fall through to their own description.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
