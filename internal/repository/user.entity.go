package repository

import (
	"time"

	"github.com/nimasrn/debt-ledger/internal/model"
	"gorm.io/gorm"
)

type UserEntity struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Username     string    `gorm:"column:username;size:150;not null;uniqueIndex"`
	Email        string    `gorm:"column:email;size:254"`
	Mobile       *string   `gorm:"column:mobile;size:10;uniqueIndex"`
	Address      string    `gorm:"column:address;size:100"`
	ProfilePic   string    `gorm:"column:profile_pic;size:255"`
	Role         string    `gorm:"column:role;size:10;not null;default:user"`
	PasswordHash string    `gorm:"column:password_hash;size:100;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (UserEntity) TableName() string {
	return "users"
}

// BeforeSave keeps a user in exactly one role: anything that is not an
// admin is a plain user.
func (u *UserEntity) BeforeSave(_ *gorm.DB) error {
	if model.Role(u.Role) != model.RoleAdmin {
		u.Role = string(model.RoleUser)
	}
	return nil
}

func toUserEntity(m *model.User) *UserEntity {
	if m == nil {
		return nil
	}
	return &UserEntity{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		Mobile:       m.Mobile,
		Address:      m.Address,
		ProfilePic:   m.ProfilePic,
		Role:         string(m.Role),
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toUserModel(e *UserEntity) *model.User {
	if e == nil {
		return nil
	}
	return &model.User{
		ID:           e.ID,
		Username:     e.Username,
		Email:        e.Email,
		Mobile:       e.Mobile,
		Address:      e.Address,
		ProfilePic:   e.ProfilePic,
		Role:         model.Role(e.Role),
		PasswordHash: e.PasswordHash,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
