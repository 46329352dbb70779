// Package server classifies event-handling failures so the router can report
// them to the originating connection without tearing it down.
package server

// ErrorKind categorizes why an inbound event was rejected.
type ErrorKind int

const (
	// KindDecode: the payload was not a valid event object.
	KindDecode ErrorKind = iota
	// KindValidation: a required field for the event type was missing.
	KindValidation
	// KindPrecondition: the event arrived out of state-machine order.
	KindPrecondition
	// KindUnknownEvent: the event type is not recognized.
	KindUnknownEvent
	// KindInternal: the store failed while handling the event.
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindDecode:
		return "decode"
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition"
	case KindUnknownEvent:
		return "unknown_event"
	case KindInternal:
		return "internal"
	default:
		return "unspecified"
	}
}

// User-visible error texts, matching what clients display verbatim.
const (
	msgInvalidFormat     = "Invalid message format"
	msgUsernameRequired  = "Username is required to join"
	msgAlreadyJoined     = "You have already joined a room"
	msgJoinAfterClose    = "Cannot join a room on a closed connection"
	msgJoinBeforeMessage = "You must join a room before sending messages"
	msgContentRequired   = "Message content is required"
	msgSaveFailed        = "Failed to save message"
	msgUnknownEvent      = "Unknown event type"
)

// eventError is a rejected inbound event. Message is safe to send to the
// client as the content of an error event.
type eventError struct {
	Kind    ErrorKind
	Message string
}

func (e *eventError) Error() string {
	return e.Kind.String() + ": " + e.Message
}

func decodeError() *eventError {
	return &eventError{Kind: KindDecode, Message: msgInvalidFormat}
}

func validationError(msg string) *eventError {
	return &eventError{Kind: KindValidation, Message: msg}
}

func preconditionError(msg string) *eventError {
	return &eventError{Kind: KindPrecondition, Message: msg}
}

func unknownEventError() *eventError {
	return &eventError{Kind: KindUnknownEvent, Message: msgUnknownEvent}
}

func internalError(msg string) *eventError {
	return &eventError{Kind: KindInternal, Message: msg}
}
