package credit

import (
	"go-cto/internal/middleware"
	"go-cto/internal/rbac"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	enforcer *casbin.Enforcer,
	rdb *redis.Client,
) {
	credits := r.Group("/credits")
	credits.Use(middleware.AuthMiddleware())
	{
		credits.GET("", rbac.Authorize(enforcer, "credit", "read"), handler.GetAll)
		credits.GET("/:id", rbac.Authorize(enforcer, "credit", "read"), handler.GetByID)
		credits.GET("/employee/:employeeId", rbac.Authorize(enforcer, "credit", "read"), handler.GetEmployeeCredits)
		credits.POST("", rbac.Authorize(enforcer, "credit", "issue"), middleware.Idempotency(rdb), handler.Issue)
		credits.POST("/:id/rollback", rbac.Authorize(enforcer, "credit", "rollback"), handler.Rollback)
	}
}
