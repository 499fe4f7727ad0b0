package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/nailpos-server/internal/models"
	"github.com/rongwang/nailpos-server/internal/service"
)

const queryDateLayout = "2006-01-02"

// salesQuery is the list and export query string
type salesQuery struct {
	Query     string `form:"q" json:"q,omitempty"`
	StartDate string `form:"startDate" json:"startDate,omitempty"`
	EndDate   string `form:"endDate" json:"endDate,omitempty"`
	Page      int    `form:"page" json:"page,omitempty"`
	PageSize  int    `form:"pageSize" json:"pageSize,omitempty"`
}

func (q salesQuery) filter() (models.SalesFilter, error) {
	f := models.SalesFilter{
		Query:    q.Query,
		Page:     q.Page,
		PageSize: q.PageSize,
	}

	var problems []string
	parse := func(label, raw string) *time.Time {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
		t, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s must be a date like 2025-01-31", label))
			return nil
		}
		return &t
	}
	f.StartDate = parse("start date", q.StartDate)
	f.EndDate = parse("end date", q.EndDate)

	if len(problems) > 0 {
		return f, &service.ValidationError{Problems: problems}
	}
	return f, nil
}

func (h *Handler) bindSalesFilter(c *gin.Context) (models.SalesFilter, bool) {
	var q salesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respondBindError(c, err)
		return models.SalesFilter{}, false
	}

	f, err := q.filter()
	if err != nil {
		h.respondError(c, err, q)
		return models.SalesFilter{}, false
	}
	return f, true
}

func (h *Handler) CreateSale(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	resp, err := h.service.CreateSale(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, req)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) GetSale(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	sale, err := h.service.GetSale(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, sale)
}

// EditSale handles both form commands and saves. Commands answer with the
// reworked form and Saved=false.
func (h *Handler) EditSale(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req models.EditSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	resp, err := h.service.EditSale(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err, req)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) DeleteSale(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteSale(c.Request.Context(), id); err != nil {
		h.respondError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{
		Status:  "success",
		Message: fmt.Sprintf("Sale #%d deleted.", id),
	})
}

func (h *Handler) ListSales(c *gin.Context) {
	filter, ok := h.bindSalesFilter(c)
	if !ok {
		return
	}

	page, err := h.service.ListSales(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err, filter)
		return
	}

	c.JSON(http.StatusOK, page)
}

// ExportSales downloads the same page ListSales would show as a PDF
func (h *Handler) ExportSales(c *gin.Context) {
	filter, ok := h.bindSalesFilter(c)
	if !ok {
		return
	}

	doc, filename, err := h.service.ExportSalesPDF(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err, filter)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", doc)
}
