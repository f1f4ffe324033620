package employee

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
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	{
		employees.GET("", rbac.Authorize(enforcer, "employee", "read"), handler.GetAll)
		employees.GET("/options", rbac.Authorize(enforcer, "employee", "read"), handler.GetOptions)
		employees.GET("/:id", rbac.Authorize(enforcer, "employee", "read"), handler.GetByID)
		employees.POST("", rbac.Authorize(enforcer, "employee", "manage"), handler.Create)
		employees.PUT("/:id", rbac.Authorize(enforcer, "employee", "manage"), handler.Update)
		employees.DELETE("/:id", rbac.Authorize(enforcer, "employee", "manage"), handler.Delete)
	}
}
