package designationerrors

import (
	"net/http"

	"go-cto/internal/shared/apperror"
)

var (
	ErrDesignationNotFound = apperror.New(
		apperror.CodeNotFound,
		"designation not found",
		http.StatusNotFound,
	)
	ErrInvalidDesignationID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid designation id",
		http.StatusBadRequest,
	)
	ErrApproverChainNotConfigured = apperror.New(
		apperror.CodeInvalidState,
		"approver chain is not configured for this designation",
		http.StatusBadRequest,
	)
	ErrDesignationAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"designation with this name already exists",
		http.StatusConflict,
	)
)
