package ledgererrors

import (
	"net/http"

	"leave-engine/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrUnknownLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"unknown leave type",
		http.StatusBadRequest,
	)
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave balance not found",
		http.StatusNotFound,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"insufficient leave balance for the requested days",
		http.StatusUnprocessableEntity,
	)
	ErrBalanceConflict = apperror.New(
		apperror.CodeConflict,
		"leave balance changed concurrently, recalculate and retry",
		http.StatusConflict,
	)
	ErrReservationMismatch = apperror.New(
		apperror.CodeInvalidState,
		"reserved days do not cover the requested movement",
		http.StatusConflict,
	)
)
