package recorder

import (
	"errors"
	"fmt"
)

// Errors returned by Submit and Commit. Input errors are raised before any
// remote call is made.
var (
	ErrInvalidWeight         = errors.New("weight must be a finite number greater than 0")
	ErrInvalidHeads          = errors.New("heads must be a finite whole number, 0 or more")
	ErrInvalidQuantity       = errors.New("quantity must be at least 1")
	ErrInvalidRole           = errors.New("role must be tally or dispatcher")
	ErrInvalidMode           = errors.New("unknown entry mode")
	ErrMissingClassification = errors.New("a classification must be selected")
	ErrUnknownClassification = errors.New("classification is not configured for this plant")
	ErrNotByproduct          = errors.New("byproduct entry modes require a byproduct classification")
	ErrNoClassificationMatch = errors.New("no classification matches this weight")
	ErrConfirmationRequired  = errors.New("entry requires confirmation before it can be logged")
	ErrSubmissionInFlight    = errors.New("another submission for this session is still in progress")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidWeight, "INVALID_WEIGHT"},
	{ErrInvalidHeads, "INVALID_HEADS"},
	{ErrInvalidQuantity, "INVALID_QUANTITY"},
	{ErrInvalidRole, "INVALID_ROLE"},
	{ErrInvalidMode, "INVALID_MODE"},
	{ErrMissingClassification, "MISSING_CLASSIFICATION"},
	{ErrUnknownClassification, "UNKNOWN_CLASSIFICATION"},
	{ErrNotByproduct, "NOT_BYPRODUCT"},
	{ErrNoClassificationMatch, "NO_CLASSIFICATION_MATCH"},
	{ErrConfirmationRequired, "CONFIRMATION_REQUIRED"},
	{ErrSubmissionInFlight, "SUBMISSION_IN_FLIGHT"},
}

// Code returns the stable error code for err, or "" if err is not a
// recorder error.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// IsInputError reports whether err was caused by the operator's input and
// can be fixed by correcting it and resubmitting.
func IsInputError(err error) bool {
	switch Code(err) {
	case "", "CONFIRMATION_REQUIRED", "SUBMISSION_IN_FLIGHT":
		return false
	default:
		return true
	}
}

// BatchError reports a batch that stopped part way. Entries created before
// the failure stay committed.
type BatchError struct {
	Created int
	Total   int
	Err     error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("created %d of %d entries: %v", e.Created, e.Total, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
