package model

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Mobile       *string   `json:"mobile,omitempty"`
	Address      string    `json:"address,omitempty"`
	ProfilePic   string    `json:"profile_pic,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity is the acting user of a request.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Owns reports whether the identity may see the debtor.
func (i Identity) Owns(d *Debtor) bool {
	if d == nil {
		return false
	}
	if i.IsAdmin() {
		return true
	}
	return d.CreatedBy != nil && *d.CreatedBy == i.UserID
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=150,alphanum"`
	Email    string `json:"email"    validate:"required,email"`
	Mobile   string `json:"mobile"   validate:"omitempty,mobile"`
	Address  string `json:"address"  validate:"max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72,nefield=OldPassword"`
}

type UserOverview struct {
	*User
	DebtorCount int64 `json:"debtor_count"`
}
