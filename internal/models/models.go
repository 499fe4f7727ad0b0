package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the access level a roster member holds
type Role string

const (
	RoleSales   Role = "Sales"
	RoleManager Role = "Manager"
	RoleAdmin   Role = "Admin"
)

// AllRoles lists every role the identity store must know about
var AllRoles = []Role{RoleAdmin, RoleManager, RoleSales}

// Normalize maps an unset or unknown role to the lowest privilege role
func (r Role) Normalize() Role {
	switch r {
	case RoleAdmin, RoleManager, RoleSales:
		return r
	default:
		return RoleSales
	}
}

// Service is an entry on the salon's service menu
type Service struct {
	ID        int64           `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Price     decimal.Decimal `db:"price" json:"price"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}

// SalesPerson is a roster member who can record sales or administer the shop
type SalesPerson struct {
	ID             int64     `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	Role           Role      `db:"role" json:"role"`
	IdentityUserID *string   `db:"identity_user_id" json:"identityUserId,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// Sale is a checkout header owning its line items
type Sale struct {
	ID          int64      `db:"id" json:"id"`
	SaleDate    time.Time  `db:"sale_date" json:"saleDate"`
	SalesPerson string     `db:"sales_person" json:"salesPerson"`
	Lines       []SaleLine `db:"-" json:"lines"`
}

// Total sums the line totals. It is never stored.
func (s *Sale) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// SaleLine is one service sold within a sale. UnitPrice is the price captured
// when the line was written and is not re-read from the catalog.
type SaleLine struct {
	ID          int64           `db:"id" json:"id"`
	SaleID      int64           `db:"sale_id" json:"saleId"`
	ServiceID   int64           `db:"service_id" json:"serviceId"`
	ServiceName string          `db:"service_name" json:"serviceName"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unitPrice"`
}

// LineTotal returns quantity x unit price
func (l SaleLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// SaleChangeSet is everything a single sale edit writes, applied atomically
type SaleChangeSet struct {
	SaleID        int64
	SalesPerson   string
	SaleDate      time.Time
	Updates       []SaleLine
	Inserts       []SaleLine
	DeleteLineIDs []int64
}

// SaleQuery selects a page of sales. From is inclusive and Until exclusive.
type SaleQuery struct {
	Text   string
	From   *time.Time
	Until  *time.Time
	Offset int
	Limit  int
}

// IdentityUser is a login account
type IdentityUser struct {
	ID                string     `db:"id" json:"id"`
	Email             string     `db:"email" json:"email"`
	UserName          string     `db:"user_name" json:"userName"`
	PasswordHash      string     `db:"password_hash" json:"-"`
	EmailConfirmed    bool       `db:"email_confirmed" json:"emailConfirmed"`
	AccessFailedCount int        `db:"access_failed_count" json:"-"`
	LockoutEnd        *time.Time `db:"lockout_end" json:"-"`
	CreatedAt         time.Time  `db:"created_at" json:"createdAt"`
}

// IsLockedOut reports whether logins are refused at the given instant
func (u *IdentityUser) IsLockedOut(now time.Time) bool {
	return u.LockoutEnd != nil && u.LockoutEnd.After(now)
}
