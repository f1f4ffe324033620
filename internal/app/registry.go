package app

import (
	"database/sql"

	"go-cto/internal/application"
	"go-cto/internal/credit"
	"go-cto/internal/designation"
	"go-cto/internal/employee"
	"go-cto/internal/messaging/kafka"
	"go-cto/internal/middleware"
	"go-cto/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	employeeRepo := employee.NewRepository(gormDB)
	designationRepo := designation.NewRepository(gormDB)
	creditRepo := credit.NewRepository(gormDB)
	applicationRepo := application.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		return err
	}

	// --- Services ---
	employeeService := employee.NewService(db, employeeRepo, rdb)
	designationService := designation.NewService(designationRepo)
	creditService := credit.NewService(db, creditRepo, employeeRepo, outboxRepo)
	applicationService := application.NewService(
		db,
		applicationRepo,
		creditRepo,
		employeeRepo,
		designationService,
		outboxRepo,
	)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService)
	designationHandler := designation.NewHandler(designationService)
	creditHandler := credit.NewHandlerWithRedis(creditService, rdb)
	applicationHandler := application.NewHandlerWithRedis(applicationService, rdb)

	// --- Routes Registration ---
	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimitByIP(rate.Limit(20), 40))

	api := router.Group("/api/v1")
	{
		employee.RegisterRoutes(api, employeeHandler, enforcer)
		designation.RegisterRoutes(api, designationHandler, enforcer)
		credit.RegisterRoutes(api, creditHandler, enforcer, rdb)
		application.RegisterRoutes(api, applicationHandler, enforcer, rdb)
	}

	return nil
}
