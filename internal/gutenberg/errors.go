package gutenberg

import (
	"errors"
	"fmt"
)

// FailureSentinel is the placeholder stored in place of a book's text when it
// could not be retrieved.
const FailureSentinel = "Unable to download file"

// FailureKind classifies why a fetch produced no text.
type FailureKind int

const (
	// FailureNone means no failure.
	FailureNone FailureKind = iota
	// FailureExhausted means every candidate missed or errored.
	FailureExhausted
	// FailureArchive means the accepted archive was unreadable or did not hold exactly one entry.
	FailureArchive
	// FailureDecode means the payload bytes could not be decoded to text.
	FailureDecode
	// FailureInvalidID means the identifier was empty.
	FailureInvalidID
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureExhausted:
		return "exhausted"
	case FailureArchive:
		return "archive"
	case FailureDecode:
		return "decode"
	case FailureInvalidID:
		return "invalid_id"
	default:
		return "unknown"
	}
}

// FetchError reports a book whose text could not be retrieved.
type FetchError struct {
	ID     string
	Kind   FailureKind
	URL    string
	Reason string
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s (id %s: %s)", FailureSentinel, e.ID, e.Kind)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// IsFetchError reports whether err is a FetchError (even when wrapped).
func IsFetchError(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}

// FailureOf returns the failure kind carried by err, or FailureNone.
func FailureOf(err error) FailureKind {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Kind
	}
	return FailureNone
}
