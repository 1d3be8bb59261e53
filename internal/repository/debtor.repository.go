package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/nimasrn/debt-ledger/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrDebtorNotFound = errors.New("debtor not found")
	ErrMobileTaken    = errors.New("mobile number already registered")
)

type DebtorRepository struct {
	*pg.DB
}

func NewDebtorRepository(db *pg.DB) *DebtorRepository {
	return &DebtorRepository{
		db,
	}
}

// DebtorLookup selects a single debtor. A nil OwnerID matches any owner.
type DebtorLookup struct {
	DebtorID string
	OwnerID  *int64
	Deleted  bool
	Lock     bool
}

// Create inserts the debtor and stamps its public id from the row key in
// the same transaction.
func (r *DebtorRepository) Create(ctx context.Context, debtor *model.Debtor) (*model.Debtor, error) {
	entity := toDebtorEntity(debtor)
	entity.DebtorID = nil

	err := r.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := r.Write(ctx).Create(entity).Error; err != nil {
			return err
		}

		publicID := model.DebtorID(entity.ID)
		if err := r.Write(ctx).Model(&DebtorEntity{}).
			Where("id = ?", entity.ID).
			UpdateColumn("debtor_id", publicID).Error; err != nil {
			return err
		}
		entity.DebtorID = &publicID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toDebtorModel(entity), nil
}

func (r *DebtorRepository) Find(ctx context.Context, q DebtorLookup) (*model.Debtor, error) {
	var entity DebtorEntity

	db := r.Read(ctx)
	if q.Lock {
		db = r.Write(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	}
	db = db.Where("debtor_id = ? AND is_delete = ?", q.DebtorID, q.Deleted)
	if q.OwnerID != nil {
		db = db.Where("created_by = ?", *q.OwnerID)
	}

	if err := db.First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDebtorNotFound
		}
		return nil, err
	}
	return toDebtorModel(&entity), nil
}

// GetByID loads a debtor by row key regardless of owner or recycle state.
func (r *DebtorRepository) GetByID(ctx context.Context, id int64) (*model.Debtor, error) {
	var entity DebtorEntity
	if err := r.Read(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDebtorNotFound
		}
		return nil, err
	}
	return toDebtorModel(&entity), nil
}

func (r *DebtorRepository) List(ctx context.Context, ownerID *int64, filter model.DebtorFilter) ([]*model.Debtor, error) {
	var entities []*DebtorEntity

	db := r.Read(ctx).Where("is_delete = ?", filter.Deleted)
	if ownerID != nil {
		db = db.Where("created_by = ?", *ownerID)
	}
	if filter.Status != "" {
		db = db.Where("debtor_status = ?", string(filter.Status))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		db = db.Where("LOWER(name) LIKE ? OR mobile LIKE ? OR LOWER(debtor_id) LIKE ?", like, like, like)
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		db = db.Offset(filter.Offset)
	}

	if err := db.Order("created_at DESC, id DESC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return toDebtorModels(entities), nil
}

// CountLive counts the owner's debtors that are not in the recycle bin.
func (r *DebtorRepository) CountLive(ctx context.Context, ownerID int64) (int64, error) {
	var count int64
	err := r.Read(ctx).Model(&DebtorEntity{}).
		Where("created_by = ? AND is_delete = ?", ownerID, false).
		Count(&count).Error
	return count, err
}

// MobileTaken reports whether another debtor already uses the number.
func (r *DebtorRepository) MobileTaken(ctx context.Context, mobile string, excludeID int64) (bool, error) {
	var count int64
	db := r.Read(ctx).Model(&DebtorEntity{}).Where("mobile = ?", mobile)
	if excludeID > 0 {
		db = db.Where("id <> ?", excludeID)
	}
	if err := db.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update writes the editable fields plus the balance-derived columns.
func (r *DebtorRepository) Update(ctx context.Context, debtor *model.Debtor) error {
	entity := toDebtorEntity(debtor)
	result := r.Write(ctx).Model(&DebtorEntity{ID: debtor.ID}).
		Select("name", "address", "mobile", "initial_debt", "total_debt", "debt_date",
			"debt_purpose", "payment_method", "voucher_cheque_no", "debt_voucher",
			"debtor_status", "updated_at").
		Updates(entity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDebtorNotFound
	}
	return nil
}

// UpdateStatus touches the status column only.
func (r *DebtorRepository) UpdateStatus(ctx context.Context, id int64, status model.DebtorStatus) error {
	result := r.Write(ctx).Model(&DebtorEntity{}).
		Where("id = ?", id).
		UpdateColumn("debtor_status", string(status))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDebtorNotFound
	}
	return nil
}

func (r *DebtorRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	return r.setDeleted(ctx, id, map[string]any{"is_delete": true, "delete_date": at})
}

func (r *DebtorRepository) Restore(ctx context.Context, id int64) error {
	return r.setDeleted(ctx, id, map[string]any{"is_delete": false, "delete_date": nil})
}

func (r *DebtorRepository) setDeleted(ctx context.Context, id int64, values map[string]any) error {
	result := r.Write(ctx).Model(&DebtorEntity{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDebtorNotFound
	}
	return nil
}

// Delete removes the debtor and its ledger.
func (r *DebtorRepository) Delete(ctx context.Context, id int64) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		n, err := r.deleteByIDs(ctx, []int64{id})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrDebtorNotFound
		}
		return nil
	})
}

// PurgeDeletedBefore removes soft-deleted debtors whose delete date is
// older than cutoff and returns their public ids.
func (r *DebtorRepository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	var purged []string
	err := r.WithinTransaction(ctx, func(ctx context.Context) error {
		var expired []*DebtorEntity
		if err := r.Write(ctx).
			Select("id", "debtor_id").
			Where("is_delete = ? AND delete_date < ?", true, cutoff).
			Find(&expired).Error; err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(expired))
		for _, e := range expired {
			ids = append(ids, e.ID)
			if e.DebtorID != nil {
				purged = append(purged, *e.DebtorID)
			}
		}
		_, err := r.deleteByIDs(ctx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return purged, nil
}

func (r *DebtorRepository) deleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if err := r.Write(ctx).Where("debtor_id IN ?", ids).Delete(&TransactionEntity{}).Error; err != nil {
		return 0, err
	}
	result := r.Write(ctx).Where("id IN ?", ids).Delete(&DebtorEntity{})
	return result.RowsAffected, result.Error
}

type DebtorCounts struct {
	Total     int64
	Active    int64
	Recovered int64
	Deleted   int64
}

func (r *DebtorRepository) Counts(ctx context.Context, ownerID *int64) (*DebtorCounts, error) {
	var rows []struct {
		DebtorStatus string
		IsDelete     bool
		N            int64
	}

	db := r.Read(ctx).Model(&DebtorEntity{}).
		Select("debtor_status, is_delete, COUNT(*) AS n").
		Group("debtor_status, is_delete")
	if ownerID != nil {
		db = db.Where("created_by = ?", *ownerID)
	}
	if err := db.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := &DebtorCounts{}
	for _, row := range rows {
		counts.Total += row.N
		switch {
		case row.IsDelete:
			counts.Deleted += row.N
		case model.DebtorStatus(row.DebtorStatus) == model.DebtorRecovered:
			counts.Recovered += row.N
		default:
			counts.Active += row.N
		}
	}
	return counts, nil
}
