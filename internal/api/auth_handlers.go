package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/nailpos-server/internal/models"
)

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout is acknowledged only. Tokens are stateless and expire on their own.
func (h *Handler) Logout(c *gin.Context) {
	h.logger.Info("user %s logged out", c.GetString(ctxEmail))
	c.JSON(http.StatusOK, models.MessageResponse{
		Status:  "success",
		Message: "Logged out",
	})
}
