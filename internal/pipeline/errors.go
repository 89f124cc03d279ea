package pipeline

import (
	"errors"
	"fmt"
)

// PipelineError reports a failure while feeding or restoring a session.
type PipelineError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Seq is the logical clock value when the error occurred.
	Seq int64

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes pipeline errors.
type ErrorCode string

const (
	// ErrCodeInputShape indicates a record that is not a string-keyed object
	// or carries an unusable field name.
	ErrCodeInputShape ErrorCode = "INPUT_SHAPE"

	// ErrCodeSnapshotCorrupt indicates a checkpoint failing integrity or
	// consistency checks.
	ErrCodeSnapshotCorrupt ErrorCode = "SNAPSHOT_CORRUPT"

	// ErrCodeSourceFailed indicates the record source returned an error.
	ErrCodeSourceFailed ErrorCode = "SOURCE_FAILED"
)

// Error implements the error interface.
func (e *PipelineError) Error() string {
	msg := fmt.Sprintf("%s: %s (seq=%d)", e.Code, e.Message, e.Seq)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsInputShapeError returns true if err is a pipeline input shape error.
func IsInputShapeError(err error) bool {
	return hasCode(err, ErrCodeInputShape)
}

// IsSnapshotCorrupt returns true if err is a corrupt checkpoint error.
func IsSnapshotCorrupt(err error) bool {
	return hasCode(err, ErrCodeSnapshotCorrupt)
}

// IsSourceFailed returns true if err is a record source failure.
func IsSourceFailed(err error) bool {
	return hasCode(err, ErrCodeSourceFailed)
}

func hasCode(err error, code ErrorCode) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}
