package designation

import (
	"go-cto/internal/middleware"
	"go-cto/internal/rbac"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	enforcer *casbin.Enforcer,
) {
	designations := r.Group("/designations")
	designations.Use(middleware.AuthMiddleware())
	{
		designations.GET("", rbac.Authorize(enforcer, "employee", "read"), handler.GetAll)
		designations.GET("/:id", rbac.Authorize(enforcer, "employee", "read"), handler.GetByID)
		designations.POST("", rbac.Authorize(enforcer, "designation", "manage"), handler.Create)
		designations.PUT("/:id", rbac.Authorize(enforcer, "designation", "manage"), handler.Update)
		designations.DELETE("/:id", rbac.Authorize(enforcer, "designation", "manage"), handler.Delete)
	}
}
