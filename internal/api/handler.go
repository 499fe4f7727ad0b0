package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/nailpos-server/internal/models"
	"github.com/rongwang/nailpos-server/internal/service"
	"github.com/rongwang/nailpos-server/internal/utils"
)

// Handler holds the HTTP handlers for the point of sale and the back office
type Handler struct {
	service service.Service
	logger  *utils.Logger
}

// NewHandler creates a new Handler
func NewHandler(svc service.Service, logger *utils.Logger) *Handler {
	return &Handler{
		service: svc,
		logger:  logger,
	}
}

// SetupRoutes configures the API routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", AuthMiddleware(), h.Logout)
	}

	pos := api.Group("/pos")
	pos.Use(AuthMiddleware())
	{
		pos.GET("/services", h.ListServices)
		pos.GET("/services/:id/price", h.GetServicePrice)
		pos.GET("/salespeople", h.ListSalesPeople)
		pos.POST("/sales", h.CreateSale)
		pos.GET("/sales/:id/receipt", h.GetSale)
	}

	admin := api.Group("/admin")
	admin.Use(AuthMiddleware())

	backOffice := admin.Group("")
	backOffice.Use(RequireRoles(models.RoleAdmin, models.RoleManager))
	{
		backOffice.GET("/sales", h.ListSales)
		backOffice.GET("/sales/export", h.ExportSales)
		backOffice.GET("/sales/:id", h.GetSale)
		backOffice.POST("/sales/:id/edit", h.EditSale)
		backOffice.DELETE("/sales/:id", h.DeleteSale)

		backOffice.GET("/services", h.ListServices)
		backOffice.GET("/services/:id", h.GetService)
		backOffice.POST("/services", h.CreateService)
		backOffice.PUT("/services/:id", h.UpdateService)
	}

	roster := admin.Group("/salespeople")
	roster.Use(RequireRoles(models.RoleAdmin))
	{
		roster.GET("", h.ListSalesPeople)
		roster.GET("/:id", h.GetSalesPerson)
		roster.POST("", h.CreateSalesPerson)
		roster.PUT("/:id", h.UpdateSalesPerson)
		roster.DELETE("/:id", h.DeleteSalesPerson)
	}
}

// pathID reads a numeric :id. A malformed id names nothing, so it is reported
// as not found.
func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.respondError(c, service.ErrNotFound, nil)
		return 0, false
	}
	return id, true
}
