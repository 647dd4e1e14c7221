package upload

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError covers caller mistakes: missing file, missing or ambiguous
// attachment target, wrong MIME type for an image upload. Never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// RecordStoreError wraps a failed create/update/delete against the record
// store.
type RecordStoreError struct {
	Op  string
	Err error
}

func (e *RecordStoreError) Error() string {
	return fmt.Sprintf("record store %s failed: %v", e.Op, e.Err)
}

func (e *RecordStoreError) Unwrap() error { return e.Err }

// BatchError aggregates per-file failures from a staged batch commit. The
// files that succeeded are not part of it; they stay persisted.
type BatchError struct {
	Failed []string
	Err    error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%d file(s) failed to upload (%s): %v",
		len(e.Failed), strings.Join(e.Failed, ", "), e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a validation failure, suitable for a
// 400-class response.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
