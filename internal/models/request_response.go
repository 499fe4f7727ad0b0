package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale edit commands
const (
	CommandAddLine    = "AddLine"
	CommandRemoveLine = "RemoveLine"
)

// Request models
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ServiceRequest struct {
	Name  string          `json:"name" binding:"required,max=200"`
	Price decimal.Decimal `json:"price"`
}

type SalesPersonRequest struct {
	Name  string `json:"name" binding:"required,max=255"`
	Email string `json:"email" binding:"required,email,max=255"`
	Role  Role   `json:"role" binding:"omitempty,oneof=Sales Manager Admin"`
}

type CheckoutLine struct {
	ServiceID *int64 `json:"serviceId"`
	Quantity  int    `json:"quantity"`
}

type CheckoutRequest struct {
	SalesPerson string         `json:"salesPerson"`
	Lines       []CheckoutLine `json:"lines"`
}

type EditSaleLine struct {
	ID        *int64          `json:"id,omitempty"`
	ServiceID *int64          `json:"serviceId,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type EditSaleRequest struct {
	SalesPerson  string         `json:"salesPerson"`
	SaleDate     time.Time      `json:"saleDate"`
	Lines        []EditSaleLine `json:"lines"`
	Command      string         `json:"command,omitempty"`
	CommandIndex *int           `json:"commandIndex,omitempty"`
}

// GrandTotal sums the submitted lines as the edit form displays them
func (r *EditSaleRequest) GrandTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range r.Lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// SalesFilter is the list/export query as received from the caller
type SalesFilter struct {
	Query     string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

// Response models
type AuthResponse struct {
	Status    string `json:"status"`
	UserID    string `json:"userId,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      Role   `json:"role,omitempty"`
	Token     string `json:"token,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
}

type SaleLineResponse struct {
	ID          int64           `json:"id"`
	ServiceID   int64           `json:"serviceId"`
	ServiceName string          `json:"serviceName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type SaleResponse struct {
	ID          int64              `json:"id"`
	SaleDate    time.Time          `json:"saleDate"`
	SalesPerson string             `json:"salesPerson"`
	Lines       []SaleLineResponse `json:"lines"`
	GrandTotal  decimal.Decimal    `json:"grandTotal"`
}

// NewSaleResponse renders a sale with its computed totals
func NewSaleResponse(s *Sale) *SaleResponse {
	resp := &SaleResponse{
		ID:          s.ID,
		SaleDate:    s.SaleDate,
		SalesPerson: s.SalesPerson,
		Lines:       make([]SaleLineResponse, 0, len(s.Lines)),
		GrandTotal:  s.Total(),
	}
	for _, l := range s.Lines {
		resp.Lines = append(resp.Lines, SaleLineResponse{
			ID:          l.ID,
			ServiceID:   l.ServiceID,
			ServiceName: l.ServiceName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal(),
		})
	}
	return resp
}

type CheckoutResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	SaleID  int64         `json:"saleId"`
	Sale    *SaleResponse `json:"sale"`
}

type EditSaleResponse struct {
	Status     string          `json:"status"`
	Saved      bool            `json:"saved"`
	Message    string          `json:"message,omitempty"`
	Form       EditSaleRequest `json:"form"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
	Sale       *SaleResponse   `json:"sale,omitempty"`
}

type SalesPageResponse struct {
	Status    string          `json:"status"`
	Sales     []SaleResponse  `json:"sales"`
	Total     int             `json:"total"`
	Page      int             `json:"page"`
	PageSize  int             `json:"pageSize"`
	PageCount int             `json:"pageCount"`
	PageTotal decimal.Decimal `json:"pageTotal"`
	Query     string          `json:"query,omitempty"`
	StartDate string          `json:"startDate,omitempty"`
	EndDate   string          `json:"endDate,omitempty"`
}

type PriceResponse struct {
	Status    string          `json:"status"`
	ServiceID int64           `json:"serviceId"`
	Price     decimal.Decimal `json:"price"`
}

type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Status   string      `json:"status"`
	Code     string      `json:"code"`
	Message  string      `json:"message"`
	Problems []string    `json:"problems,omitempty"`
	Input    interface{} `json:"input,omitempty"`
	TraceID  string      `json:"traceId,omitempty"`
}
