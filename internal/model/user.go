package model

import "time"

// Role classifies a user account. Admins bypass the search quota entirely.
type Role string

const (
	RoleUser    Role = "user"
	RolePremium Role = "premium"
	RoleAdmin   Role = "admin"
)

// IsValid reports whether the role is one of the known values.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RolePremium, RoleAdmin:
		return true
	}
	return false
}

// Unlimited reports whether the role grants unmetered search access.
func (r Role) Unlimited() bool {
	return r == RoleAdmin
}

// User represents a user in the database. PasswordHash never leaves the
// repository/service layers and is excluded from every API response.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	SearchCount  int
	MaxSearches  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ToResponse strips the user down to its API-safe representation.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		SearchCount: u.SearchCount,
		MaxSearches: u.MaxSearches,
		CreatedAt:   u.CreatedAt,
	}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents a login response with a JWT token and user info.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse represents user data safe for API responses (no sensitive fields).
type UserResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	SearchCount int       `json:"searchCount"`
	MaxSearches int       `json:"maxSearches"`
	CreatedAt   time.Time `json:"createdAt"`
}

// QuotaDecision is the per-request outcome of a quota check. It is computed
// once before dispatch and consumed afterwards to decide whether a search
// slot must be committed.
type QuotaDecision struct {
	Allowed   bool
	Unlimited bool
	Remaining int
	Used      int
	Max       int
	Reason    string
}

// UpdateRoleRequest is the admin request body for changing a user's role.
type UpdateRoleRequest struct {
	Role Role `json:"role"`
}

// UpdateQuotaRequest is the admin request body for changing a user's search cap.
type UpdateQuotaRequest struct {
	MaxSearches int `json:"maxSearches"`
}
