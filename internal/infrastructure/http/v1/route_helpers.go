package v1

import (
	"github.com/gin-gonic/gin"
)

// ItemRouteHandler defines the item endpoints.
type ItemRouteHandler interface {
	List(c *gin.Context)
	Expiring(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetQuantity(c *gin.Context)
	Adjust(c *gin.Context)
	ToggleFavorite(c *gin.Context)
}

// HomeRouteHandler defines the home state endpoints.
type HomeRouteHandler interface {
	Get(c *gin.Context)
	Stream(c *gin.Context)
	Refresh(c *gin.Context)
	SelectCategory(c *gin.Context)
	LoadForEditing(c *gin.Context)
	ClearEditing(c *gin.Context)
}

// RegisterItemRoutes registers CRUD and quick-edit routes for items.
// Static segments are registered before /:id.
func RegisterItemRoutes(group *gin.RouterGroup, handler ItemRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/expiring", handler.Expiring)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)
	group.PUT("/:id/quantity", handler.SetQuantity)
	group.POST("/:id/adjust", handler.Adjust)
	group.POST("/:id/favorite", handler.ToggleFavorite)
}

// RegisterHomeRoutes registers the home state routes.
func RegisterHomeRoutes(group *gin.RouterGroup, handler HomeRouteHandler) {
	group.GET("", handler.Get)
	group.GET("/stream", handler.Stream)
	group.POST("/refresh", handler.Refresh)
	group.PUT("/category", handler.SelectCategory)
	group.POST("/editing/:id", handler.LoadForEditing)
	group.DELETE("/editing", handler.ClearEditing)
}
