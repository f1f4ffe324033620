package crediterrors

import (
	"net/http"

	"go-cto/internal/shared/apperror"
)

var (
	ErrInvalidDuration = apperror.New(
		apperror.CodeInvalidInput,
		"duration must be greater than zero",
		http.StatusBadRequest,
	)
	ErrMemoNoRequired = apperror.New(
		apperror.CodeInvalidInput,
		"memo_no is required",
		http.StatusBadRequest,
	)
	ErrNoEmployees = apperror.New(
		apperror.CodeInvalidInput,
		"at least one employee is required",
		http.StatusBadRequest,
	)
	ErrDuplicateEmployee = apperror.New(
		apperror.CodeInvalidInput,
		"employee list contains duplicates",
		http.StatusBadRequest,
	)
	ErrUnknownEmployee = apperror.New(
		apperror.CodeInvalidInput,
		"one or more employee ids do not exist",
		http.StatusBadRequest,
	)
	ErrInvalidDateApproved = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date_approved, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidCreditID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid credit id",
		http.StatusBadRequest,
	)
	ErrCreditNotFound = apperror.New(
		apperror.CodeNotFound,
		"credit batch not found",
		http.StatusNotFound,
	)
	ErrMemoAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"a credit batch with this memo number already exists",
		http.StatusConflict,
	)
	ErrCreditInUse = apperror.New(
		apperror.CodeConflict,
		"credit batch has used or reserved hours and cannot be rolled back",
		http.StatusConflict,
	)
	ErrAlreadyRolledBack = apperror.New(
		apperror.CodeConflict,
		"credit batch has already been rolled back",
		http.StatusConflict,
	)
	ErrBalanceConflict = apperror.New(
		apperror.CodeConflict,
		"employee balance changed concurrently, retry the operation",
		http.StatusConflict,
	)
)
