package domain

import "github.com/shopspring/decimal"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleTrader   Role = "trader"
	RoleSalesRep Role = "sales_rep"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID        int64           `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Role      Role            `json:"role"`
	Balance   decimal.Decimal `json:"balance"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Avatar    string          `json:"avatar"`
}

func (u *User) IsCustomer() bool { return u != nil && u.Role == RoleCustomer }
func (u *User) IsTrader() bool   { return u != nil && u.Role == RoleTrader }

// ManagesOrders reports whether the user sees the order-management surface.
// Sales reps and admins manage orders across all traders.
func (u *User) ManagesOrders() bool {
	if u == nil {
		return false
	}
	return u.Role == RoleTrader || u.Role == RoleSalesRep || u.Role == RoleAdmin
}
