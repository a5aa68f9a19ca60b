package session

// Role is a staff role carried by the session token.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCashier Role = "cashier"
	RoleKitchen Role = "kitchen"
	RoleBar     Role = "bar"
)

// Session is the caller identity supplied by the auth layer.
type Session struct {
	UserID   int64  `json:"id"`
	ClientID int64  `json:"client_id"`
	Role     Role   `json:"role"`
	Email    string `json:"email,omitempty"`
}

// HasRole reports whether the session role is one of roles.
func (s Session) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}

	return false
}
