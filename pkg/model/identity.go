package model

const (
	RoleGuest = "guest"
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is what the external identity provider supplies. The core never
// authenticates; it only branches on the role it is given.
type Identity struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (i Identity) Authenticated() bool {
	return i.UserID != "" && i.Role != RoleGuest
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
