package app

import (
	"database/sql"
	"path/filepath"

	"leave-engine/internal/audit"
	"leave-engine/internal/calendar"
	"leave-engine/internal/impact"
	"leave-engine/internal/leave"
	"leave-engine/internal/ledger"
	"leave-engine/internal/messaging/kafka"
	"leave-engine/internal/rbac"
	"leave-engine/internal/rbac/infra"
	"leave-engine/internal/reschedule"
	"leave-engine/internal/salary"
	"leave-engine/internal/workload"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	holidayRepo := calendar.NewRepository(gormDB)
	ledgerRepo := ledger.NewRepository(gormDB)
	salaryRepo := salary.NewRepository(gormDB)
	auditRepo := audit.NewRepository(gormDB)
	workloadRepo := workload.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	ledgerService := ledger.NewService(ledgerRepo, rdb)
	salaryService := salary.NewService(salaryRepo)
	suggester := reschedule.NewSuggester(workloadRepo)
	impactService := impact.NewService(workloadRepo, holidayRepo, suggester)
	leaveService := leave.NewService(
		db,
		leaveRepo,
		ledgerService,
		salaryService,
		holidayRepo,
		auditRepo,
		outboxRepo,
		workloadRepo,
	)

	// --- Handlers ---
	ledgerHandler := ledger.NewHandler(ledgerService)
	leaveHandler := leave.NewHandlerWithRedis(leaveService, impactService, rdb)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		leave.RegisterRoutes(api, leaveHandler, ledgerHandler, rbacService, rdb)
	}

	return nil
}
