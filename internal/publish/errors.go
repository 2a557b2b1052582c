package publish

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes publish failures.
type ErrorKind string

const (
	// KindUnsupportedFileType means the input is not a .js script.
	KindUnsupportedFileType ErrorKind = "UNSUPPORTED_FILE_TYPE"

	// KindAlreadyProcessed means the input carries the processed marker and
	// the caller is interactive and did not force.
	KindAlreadyProcessed ErrorKind = "ALREADY_PROCESSED"

	// KindNotPublished means an inspected file was never published.
	KindNotPublished ErrorKind = "NOT_PUBLISHED"

	// KindIOFailure covers every read, write and ledger failure.
	KindIOFailure ErrorKind = "IO_FAILURE"
)

// Error is returned by every Publisher operation. None of them is retried.
type Error struct {
	// Kind identifies the failure category.
	Kind ErrorKind

	// Path is the file the operation was working on.
	Path string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Path, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or "" when
// there is none.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsUnsupportedFileType returns true if err is a wrong-extension failure.
func IsUnsupportedFileType(err error) bool {
	return KindOf(err) == KindUnsupportedFileType
}

// IsAlreadyProcessed returns true if err reports an already published file.
func IsAlreadyProcessed(err error) bool {
	return KindOf(err) == KindAlreadyProcessed
}

// IsNotPublished returns true if err reports an unpublished file.
func IsNotPublished(err error) bool {
	return KindOf(err) == KindNotPublished
}

// IsIOFailure returns true if err is a read, write or ledger failure.
func IsIOFailure(err error) bool {
	return KindOf(err) == KindIOFailure
}

func ioFailure(path, msg string, err error) *Error {
	return &Error{Kind: KindIOFailure, Path: path, Message: msg, Err: err}
}
