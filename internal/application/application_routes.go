package application

import (
	"go-cto/internal/middleware"
	"go-cto/internal/rbac"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	enforcer *casbin.Enforcer,
	rdb *redis.Client,
) {
	apps := r.Group("/applications")
	apps.Use(middleware.AuthMiddleware())
	apps.Use(middleware.RateLimitByUser(rate.Limit(5), 10))
	{
		apps.GET("", rbac.Authorize(enforcer, "application", "read"), handler.GetMine)
		apps.GET("/all", rbac.Authorize(enforcer, "employee", "manage"), handler.GetAll)
		apps.GET("/pending", rbac.Authorize(enforcer, "application", "decide"), handler.GetPending)
		apps.GET("/:id", rbac.Authorize(enforcer, "application", "read"), handler.GetByID)
		apps.POST("", rbac.Authorize(enforcer, "application", "create"), middleware.Idempotency(rdb), handler.Submit)
		apps.POST("/:id/decision", rbac.Authorize(enforcer, "application", "decide"), handler.Decide)
	}
}
