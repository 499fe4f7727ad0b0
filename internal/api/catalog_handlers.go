package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/nailpos-server/internal/models"
)

func (h *Handler) ListServices(c *gin.Context) {
	services, err := h.service.ListServices(c.Request.Context())
	if err != nil {
		h.respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"services": services,
	})
}

func (h *Handler) GetService(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	svc, err := h.service.GetService(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, svc)
}

// GetServicePrice is polled by the checkout screen when a line's service changes
func (h *Handler) GetServicePrice(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetServicePrice(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateService(c *gin.Context) {
	var req models.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	svc, err := h.service.CreateService(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, req)
		return
	}

	c.JSON(http.StatusCreated, svc)
}

func (h *Handler) UpdateService(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req models.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	svc, err := h.service.UpdateService(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err, req)
		return
	}

	c.JSON(http.StatusOK, svc)
}
