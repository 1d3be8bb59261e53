package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/nimasrn/debt-ledger/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrUserMobileTaken = errors.New("mobile number already registered")
)

type UserRepository struct {
	*pg.DB
}

func NewUserRepository(db *pg.DB) *UserRepository {
	return &UserRepository{
		db,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	entity := toUserEntity(user)

	err := r.WithinTransaction(ctx, func(ctx context.Context) error {
		var count int64
		if err := r.Write(ctx).Model(&UserEntity{}).
			Where("username = ?", entity.Username).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUsernameTaken
		}

		if entity.Mobile != nil {
			if err := r.Write(ctx).Model(&UserEntity{}).
				Where("mobile = ?", *entity.Mobile).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrUserMobileTaken
			}
		}

		return r.Write(ctx).Create(entity).Error
	})
	if err != nil {
		return nil, err
	}

	return toUserModel(entity), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepository) first(ctx context.Context, query string, args ...any) (*model.User, error) {
	var entity UserEntity
	if err := r.Read(ctx).Where(query, args...).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserModel(&entity), nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.updateColumn(ctx, id, "password_hash", hash)
}

func (r *UserRepository) UpdateProfilePic(ctx context.Context, id int64, ref string) error {
	return r.updateColumn(ctx, id, "profile_pic", ref)
}

func (r *UserRepository) updateColumn(ctx context.Context, id int64, column string, value any) error {
	result := r.Write(ctx).Model(&UserEntity{ID: id}).Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListWithDebtorCounts returns every user along with how many debtors
// they created, soft-deleted ones included.
func (r *UserRepository) ListWithDebtorCounts(ctx context.Context) ([]*model.UserOverview, error) {
	var rows []struct {
		UserEntity
		DebtorCount int64
	}

	err := r.Read(ctx).
		Table("users").
		Select("users.*, COUNT(debtors.id) AS debtor_count").
		Joins("LEFT JOIN debtors ON debtors.created_by = users.id").
		Group("users.id").
		Order("users.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]*model.UserOverview, 0, len(rows))
	for i := range rows {
		out = append(out, &model.UserOverview{
			User:        toUserModel(&rows[i].UserEntity),
			DebtorCount: rows[i].DebtorCount,
		})
	}
	return out, nil
}
