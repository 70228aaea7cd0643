package papertrail

import (
	"fmt"

	"github.com/puravparab/PaperTrail/errors"
)

// Error kinds.
const (
	StoreUnavailable     errors.Kind = "StoreUnavailable"
	StoreReadError       errors.Kind = "StoreReadError"
	StoreWriteError      errors.Kind = "StoreWriteError"
	MetadataFetchError   errors.Kind = "MetadataFetchError"
	MessageProtocolError errors.Kind = "MessageProtocolError"
	InvalidPaper         errors.Kind = "InvalidPaper"
)

// ErrStoreUnavailable is returned when the store cannot be opened.
func ErrStoreUnavailable(cause error) error {
	return errors.New("store unavailable", errors.WithKind(StoreUnavailable), errors.Unavailable(), errors.WithCause(cause))
}

// ErrStoreRead wraps a failed read of the store.
func ErrStoreRead(cause error) error {
	return errors.New("error reading store", errors.WithKind(StoreReadError), errors.WithCause(cause))
}

// ErrStoreWrite wraps a failed write of the store.
func ErrStoreWrite(cause error) error {
	return errors.New("error writing store", errors.WithKind(StoreWriteError), errors.WithCause(cause))
}

// ErrMetadataFetch wraps a failed metadata lookup of paper id.
func ErrMetadataFetch(id string, cause error) error {
	return errors.New(fmt.Sprintf("error fetching metadata of %s", id), errors.WithKind(MetadataFetchError), errors.BadGateway(), errors.WithCause(cause))
}

// ErrPaperNotFound is returned by point reads of a missing paper.
func ErrPaperNotFound(id string) error {
	return errors.New(fmt.Sprintf("paper %s not found", id), errors.NotFound())
}

// ErrInvalidPaper rejects a paper with missing fields.
func ErrInvalidPaper(cause error) error {
	return errors.New("invalid paper", errors.WithKind(InvalidPaper), errors.BadRequest(), errors.WithCause(cause))
}

// ErrUnknownAction answers a message whose action is not understood.
func ErrUnknownAction(action string) error {
	return errors.New(fmt.Sprintf("unknown action: %s", action), errors.WithKind(MessageProtocolError), errors.BadRequest())
}

// ErrInvalidLookup rejects a lookup on an unknown field or without value.
func ErrInvalidLookup(cause error) error {
	return errors.New("invalid lookup", errors.BadRequest(), errors.WithCause(cause))
}
