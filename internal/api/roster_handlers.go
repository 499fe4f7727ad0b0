package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/nailpos-server/internal/models"
)

func (h *Handler) ListSalesPeople(c *gin.Context) {
	people, err := h.service.ListSalesPeople(c.Request.Context())
	if err != nil {
		h.respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"salesPeople": people,
	})
}

func (h *Handler) GetSalesPerson(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	sp, err := h.service.GetSalesPerson(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, sp)
}

func (h *Handler) CreateSalesPerson(c *gin.Context) {
	var req models.SalesPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	sp, err := h.service.CreateSalesPerson(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, req)
		return
	}

	c.JSON(http.StatusCreated, sp)
}

func (h *Handler) UpdateSalesPerson(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req models.SalesPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	sp, err := h.service.UpdateSalesPerson(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err, req)
		return
	}

	c.JSON(http.StatusOK, sp)
}

func (h *Handler) DeleteSalesPerson(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteSalesPerson(c.Request.Context(), id); err != nil {
		h.respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{
		Status:  "success",
		Message: "Sales person removed",
	})
}
