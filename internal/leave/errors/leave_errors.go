package leaveerrors

import (
	"net/http"

	"leave-engine/internal/shared/apperror"
)

var (
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"dates must be in YYYY-MM-DD format",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave request id",
		http.StatusBadRequest,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"leave request is no longer pending",
		http.StatusConflict,
	)
	ErrNotOwner = apperror.New(
		apperror.CodeForbidden,
		"leave request belongs to another employee",
		http.StatusForbidden,
	)
	ErrApprovalForbidden = apperror.New(
		apperror.CodeForbidden,
		"only HR may decide leave requests",
		http.StatusForbidden,
	)
	ErrOverrideForbidden = apperror.New(
		apperror.CodeForbidden,
		"only HR may override an insufficient balance",
		http.StatusForbidden,
	)
	ErrSubmitForOthersForbidden = apperror.New(
		apperror.CodeForbidden,
		"only HR may submit leave on behalf of another employee",
		http.StatusForbidden,
	)
	ErrUnknownSplitOption = apperror.New(
		apperror.CodeInvalidInput,
		"unknown split option",
		http.StatusBadRequest,
	)
	ErrNoDecisions = apperror.New(
		apperror.CodeInvalidInput,
		"approval requires approve_all or at least one segment decision",
		http.StatusBadRequest,
	)
	ErrUnknownSegment = apperror.New(
		apperror.CodeInvalidInput,
		"decision references a segment that is not part of this request",
		http.StatusBadRequest,
	)
	ErrNothingToReduce = apperror.New(
		apperror.CodeInsufficientBalance,
		"no paid balance available, nothing left after reduction",
		http.StatusUnprocessableEntity,
	)
)
