// Package models defines the client-side views of storefront resources:
// users, products, cart items, orders and the loyalty/referral records.
// The remote API owns all of them except CartItem, which lives entirely
// on the client until checkout.
package models

// Role classifies a user account.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User is the authenticated identity as reported by the server.
// BonusBalance and the referral fields are server-maintained and read-only
// from the client's perspective.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName,omitempty"`
	TelegramID   string `json:"telegramId,omitempty"`
	Role         Role   `json:"role"`
	BonusBalance int64  `json:"bonusBalance"`
	ReferralCode string `json:"referralCode,omitempty"`
}

// IsAdmin reports whether the user may access the admin resources.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// ReferralStats is the referrer-side summary of the loyalty program.
type ReferralStats struct {
	TotalReferrals     int `json:"totalReferrals"`
	CompletedReferrals int `json:"completedReferrals"`
}

// BonusTransaction is one entry of the server-kept bonus history.
type BonusTransaction struct {
	ID          int64  `json:"id"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
}
