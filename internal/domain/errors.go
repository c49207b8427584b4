package domain

import "fmt"

// StorageError reports a failure of the underlying persistence layer
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err as a StorageError for op
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
