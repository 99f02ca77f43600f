package leave

import (
	"leave-engine/internal/ledger"
	"leave-engine/internal/middleware"
	"leave-engine/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RegisterRoutes mounts the leave surface under /leave. Everything is
// behind authentication; mutations are additionally behind idempotency
// keys so client retries never double-reserve.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	ledgerHandler *ledger.Handler,
	rbacService middleware.RBACService,
	rdb *redis.Client,
) {
	leaves := r.Group("/leave")
	leaves.Use(middleware.AuthMiddleware())
	leaves.Use(middleware.RateLimitByUser(rate.Limit(10), 20))
	{
		leaves.GET("/balance",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead),
			ledgerHandler.GetBalance)

		leaves.POST("/calculate",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionCreate),
			handler.Calculate)

		leaves.POST("",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionCreate),
			middleware.Idempotency(rdb),
			handler.Submit)

		leaves.GET("/my-requests",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead),
			handler.GetMyRequests)

		leaves.GET("/:id",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead),
			handler.GetByID)

		leaves.GET("/:id/impact",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionImpact),
			handler.Impact)

		leaves.POST("/impact/preview",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionImpact),
			handler.ImpactPreview)

		leaves.POST("/:id/approve",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionApprove),
			middleware.Idempotency(rdb),
			handler.Approve)

		leaves.POST("/:id/reject",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionApprove),
			handler.Reject)

		leaves.POST("/:id/cancel",
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionCreate),
			handler.Cancel)
	}
}
