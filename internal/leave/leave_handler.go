package leave

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"leave-engine/internal/impact"
	leaveerrors "leave-engine/internal/leave/errors"
	"leave-engine/internal/shared/apperror"
	"leave-engine/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	impacts impact.Service
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHandler(service Service, impactService impact.Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, impacts: impactService, logger: l}
}

// NewHandlerWithRedis additionally wires the client the idempotency
// middleware caches completed responses through.
func NewHandlerWithRedis(service Service, impactService impact.Service, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	h := NewHandler(service, impactService, logger...)
	h.rdb = rdb
	return h
}

// releaseIdempotencyLock drops the in-flight lock set by the idempotency
// middleware so a failed request can be retried without waiting out the TTL.
func (h *Handler) releaseIdempotencyLock(c *gin.Context) {
	if h.rdb == nil {
		return
	}
	if lk := c.GetString("idempotency_lock_key"); lk != "" {
		h.rdb.Del(c.Request.Context(), lk)
	}
}

// cacheIdempotentResponse records the completed response under the
// Idempotency-Key so a client retry replays it instead of re-executing.
func (h *Handler) cacheIdempotentResponse(c *gin.Context, resp any) {
	if h.rdb == nil {
		return
	}
	ck := c.GetString("idempotency_cache_key")
	if ck == "" {
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := h.rdb.Set(c.Request.Context(), ck, payload, 24*time.Hour).Err(); err != nil {
		h.logger.Warn("cache idempotent response failed", zap.Error(err))
	}
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn(op+" failed",
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// Calculate previews working days, auto-split and payroll deduction
// without reserving anything.
func (h *Handler) Calculate(c *gin.Context) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "bind request", apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Calculate(
		c.Request.Context(),
		c.GetString("company_id"),
		c.GetString("employee_id"),
		req,
	)
	if err != nil {
		h.fail(c, "calculate", err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Submit(c *gin.Context) {
	defer h.releaseIdempotencyLock(c)

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "bind request", apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Submit(
		c.Request.Context(),
		c.GetString("company_id"),
		c.GetString("employee_id"),
		c.GetString("role"),
		req,
	)
	if err != nil {
		h.fail(c, "submit", err)
		return
	}
	h.cacheIdempotentResponse(c, resp)
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetMyRequests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	items, total, err := h.service.ListByEmployee(
		c.Request.Context(),
		c.GetString("company_id"),
		c.GetString("employee_id"),
		page, perPage,
	)
	if err != nil {
		h.fail(c, "list my requests", err)
		return
	}

	meta := response.NewPaginationMeta(total, page, perPage)
	response.Success(c, http.StatusOK, items, &meta)
}

func (h *Handler) GetByID(c *gin.Context) {
	resp, err := h.service.GetByID(
		c.Request.Context(),
		c.GetString("company_id"),
		c.GetString("employee_id"),
		c.GetString("role"),
		c.Param("id"),
	)
	if err != nil {
		h.fail(c, "get leave", err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	defer h.releaseIdempotencyLock(c)

	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "bind request", apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Approve(
		c.Request.Context(),
		c.GetString("company_id"),
		c.GetString("employee_id"),
		c.GetString("role"),
		c.Param("id"),
		req,
	)
	if err != nil {
		h.fail(c, "approve", err)
		return
	}
	h.cacheIdempotentResponse(c, resp)
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Reject(c *gin.Context) {
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "bind request", apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Reject(
		c.Request.Context(),
		c.GetString("company_id"),
		c.GetString("employee_id"),
		c.GetString("role"),
		c.Param("id"),
		req,
	)
	if err != nil {
		h.fail(c, "reject", err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Cancel(c *gin.Context) {
	resp, err := h.service.Cancel(
		c.Request.Context(),
		c.GetString("company_id"),
		c.GetString("employee_id"),
		c.Param("id"),
	)
	if err != nil {
		h.fail(c, "cancel", err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

// Impact analyzes the disruption of an existing request's window.
func (h *Handler) Impact(c *gin.Context) {
	detail, err := h.service.GetByID(
		c.Request.Context(),
		c.GetString("company_id"),
		c.GetString("employee_id"),
		c.GetString("role"),
		c.Param("id"),
	)
	if err != nil {
		h.fail(c, "impact", err)
		return
	}

	start, end, err := parseDateRange(detail.StartDate, detail.EndDate)
	if err != nil {
		h.fail(c, "impact", err)
		return
	}

	report, err := h.impacts.Analyze(c.Request.Context(), impact.AnalyzeInput{
		CompanyID:  c.GetString("company_id"),
		EmployeeID: detail.EmployeeID,
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		h.fail(c, "impact", err)
		return
	}
	response.Success(c, http.StatusOK, report, nil)
}

// ImpactPreview analyzes a hypothetical window before any request exists.
func (h *Handler) ImpactPreview(c *gin.Context) {
	var req ImpactPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "bind request", apperror.MapValidationError(err))
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		h.fail(c, "impact preview", leaveerrors.ErrInvalidDateFormat)
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		h.fail(c, "impact preview", leaveerrors.ErrInvalidDateFormat)
		return
	}

	report, err := h.impacts.Analyze(c.Request.Context(), impact.AnalyzeInput{
		CompanyID:  c.GetString("company_id"),
		EmployeeID: req.EmployeeID,
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		h.fail(c, "impact preview", err)
		return
	}
	response.Success(c, http.StatusOK, report, nil)
}
