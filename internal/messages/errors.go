package messages

import "fmt"

// ValidationError reports a malformed send request. It maps to a 4xx at the
// HTTP surface.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError reports a persistence failure. The operation is aborted with
// no partial state; it maps to a 5xx at the HTTP surface.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
