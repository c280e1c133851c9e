package service

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"connectrpc.com/connect"

	"github.com/mmynk/tallysheet/internal/classify"
	"github.com/mmynk/tallysheet/internal/recorder"
	"github.com/mmynk/tallysheet/internal/storage"
	"github.com/mmynk/tallysheet/internal/storage/remote"
)

// Metadata keys attached to errors.
const (
	ErrorCodeKey      = "Tally-Error-Code"
	EntriesCreatedKey = "Tally-Entries-Created"
)

// toConnectError maps domain and storage errors onto Connect codes. An
// upstream failure keeps the server's detail message verbatim.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	var (
		apiErr   *remote.Error
		batchErr *recorder.BatchError
		code     connect.Code
	)
	switch {
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	case errors.Is(err, recorder.ErrSubmissionInFlight):
		code = connect.CodeAborted
	case errors.Is(err, recorder.ErrConfirmationRequired):
		code = connect.CodeFailedPrecondition
	case recorder.IsInputError(err),
		errors.Is(err, classify.ErrInvalidRange),
		errors.Is(err, classify.ErrRangeOverlap),
		errors.Is(err, classify.ErrDuplicateByproduct):
		code = connect.CodeInvalidArgument
	case errors.As(err, &apiErr):
		code = remoteCode(apiErr.Status)
	case errors.Is(err, storage.ErrNotFound):
		code = connect.CodeNotFound
	default:
		code = connect.CodeInternal
	}

	ce := connect.NewError(code, err)
	if apiErr != nil && !errors.As(err, &batchErr) {
		ce = connect.NewError(code, apiErr)
	}
	if c := recorder.Code(err); c != "" {
		ce.Meta().Set(ErrorCodeKey, c)
	}
	if errors.As(err, &batchErr) {
		ce.Meta().Set(EntriesCreatedKey, strconv.Itoa(batchErr.Created))
	}
	return ce
}

func remoteCode(status int) connect.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return connect.CodeInvalidArgument
	case http.StatusUnauthorized:
		return connect.CodeUnauthenticated
	case http.StatusForbidden:
		return connect.CodePermissionDenied
	case http.StatusNotFound:
		return connect.CodeNotFound
	case http.StatusConflict:
		return connect.CodeAlreadyExists
	default:
		return connect.CodeUnavailable
	}
}
