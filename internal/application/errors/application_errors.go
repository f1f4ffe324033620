package applicationerrors

import (
	"fmt"
	"net/http"

	"go-cto/internal/shared/apperror"
)

var (
	ErrInvalidApplicationID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid application id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidRequestedHours = apperror.New(
		apperror.CodeInvalidInput,
		"requested hours must be greater than zero",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date range, expected YYYY-MM-DD and date_from <= date_to",
		http.StatusBadRequest,
	)
	ErrDuplicateApprover = apperror.New(
		apperror.CodeInvalidInput,
		"approver chain must name three distinct approvers",
		http.StatusBadRequest,
	)
	ErrUnknownApprover = apperror.New(
		apperror.CodeInvalidInput,
		"one or more approvers do not exist",
		http.StatusBadRequest,
	)
	ErrInvalidDecision = apperror.New(
		apperror.CodeInvalidInput,
		"decision must be APPROVE or REJECT",
		http.StatusBadRequest,
	)
	ErrApplicationNotFound = apperror.New(
		apperror.CodeNotFound,
		"application not found",
		http.StatusNotFound,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"available credit hours do not cover the requested hours",
		http.StatusUnprocessableEntity,
	)
	ErrNotAnApprover = apperror.New(
		apperror.CodeForbidden,
		"actor is not an approver on this application",
		http.StatusForbidden,
	)
	ErrStepAlreadyProcessed = apperror.New(
		apperror.CodeConflict,
		"approval step has already been processed",
		http.StatusConflict,
	)
	ErrApplicationAlreadyFinal = apperror.New(
		apperror.CodeConflict,
		"application has already reached a terminal state",
		http.StatusConflict,
	)
	ErrReservationConflict = apperror.New(
		apperror.CodeConflict,
		"credit hours changed concurrently, retry the operation",
		http.StatusConflict,
	)
)

// OutOfOrder reports an approval attempted before a lower level decided.
func OutOfOrder(level int) error {
	return apperror.New(
		apperror.CodeInvalidState,
		fmt.Sprintf("level %d must approve first", level),
		http.StatusBadRequest,
	)
}
