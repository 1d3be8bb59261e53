package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/nimasrn/debt-ledger/pkg/pg"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrTransactionNotFound = errors.New("transaction not found")

type TransactionRepository struct {
	*pg.DB
}

func NewTransactionRepository(db *pg.DB) *TransactionRepository {
	return &TransactionRepository{
		db,
	}
}

// Create appends a ledger row. The public id comes from the row key, so
// concurrent postings never mint the same id.
func (r *TransactionRepository) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	entity := toTransactionEntity(txn)
	entity.TranID = nil
	if entity.TranDate.IsZero() {
		entity.TranDate = time.Now().UTC()
	}

	err := r.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := r.Write(ctx).Create(entity).Error; err != nil {
			return err
		}

		publicID := model.TransactionID(entity.ID)
		if err := r.Write(ctx).Model(&TransactionEntity{}).
			Where("id = ?", entity.ID).
			UpdateColumn("tran_id", publicID).Error; err != nil {
			return err
		}
		entity.TranID = &publicID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toTransactionModel(entity), nil
}

func (r *TransactionRepository) GetByTranID(ctx context.Context, tranID string) (*model.Transaction, error) {
	var entity TransactionEntity
	if err := r.Read(ctx).Where("tran_id = ?", tranID).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return toTransactionModel(&entity), nil
}

// Latest returns the most recently dated row of the debtor's ledger.
func (r *TransactionRepository) Latest(ctx context.Context, debtorID int64) (*model.Transaction, error) {
	return r.edge(ctx, debtorID, "tran_date DESC, id DESC")
}

// Opening returns the first row of the debtor's ledger.
func (r *TransactionRepository) Opening(ctx context.Context, debtorID int64) (*model.Transaction, error) {
	return r.edge(ctx, debtorID, "tran_date ASC, id ASC")
}

func (r *TransactionRepository) edge(ctx context.Context, debtorID int64, order string) (*model.Transaction, error) {
	var entity TransactionEntity
	err := r.Read(ctx).
		Where("debtor_id = ?", debtorID).
		Order(order).
		Limit(1).
		Find(&entity).Error
	if err != nil {
		return nil, err
	}
	if entity.ID == 0 {
		return nil, ErrTransactionNotFound
	}
	return toTransactionModel(&entity), nil
}

// CurrentDebt is the post-balance of the latest row, or fallback when the
// debtor has no rows yet.
func (r *TransactionRepository) CurrentDebt(ctx context.Context, debtorID int64, fallback decimal.Decimal) (decimal.Decimal, error) {
	latest, err := r.Latest(ctx, debtorID)
	if errors.Is(err, ErrTransactionNotFound) {
		return fallback, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return latest.CurrentDebt, nil
}

// LatestBalances maps debtor row keys to the post-balance of their latest row.
// Debtors without rows are absent from the result.
func (r *TransactionRepository) LatestBalances(ctx context.Context, debtorIDs []int64) (map[int64]decimal.Decimal, error) {
	out := make(map[int64]decimal.Decimal, len(debtorIDs))
	if len(debtorIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		DebtorID    int64
		CurrentDebt decimal.Decimal
	}
	latest := r.Read(ctx).
		Table("transactions AS t2").
		Select("t2.id").
		Where("t2.debtor_id = t.debtor_id").
		Order("t2.tran_date DESC, t2.id DESC").
		Limit(1)

	err := r.Read(ctx).
		Table("transactions AS t").
		Select("t.debtor_id, t.current_debt").
		Where("t.debtor_id IN ?", debtorIDs).
		Where("t.id = (?)", latest).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.DebtorID] = row.CurrentDebt
	}
	return out, nil
}

func (r *TransactionRepository) Count(ctx context.Context, debtorID int64) (int64, error) {
	var count int64
	err := r.Read(ctx).Model(&TransactionEntity{}).
		Where("debtor_id = ?", debtorID).
		Count(&count).Error
	return count, err
}

// UpdateOpening rewrites the amounts of the opening row.
func (r *TransactionRepository) UpdateOpening(ctx context.Context, txn *model.Transaction) error {
	result := r.Write(ctx).Model(&TransactionEntity{ID: txn.ID}).
		Updates(map[string]any{
			"tran_amount":   txn.Amount,
			"debit_amount":  txn.DebitAmount,
			"credit_amount": txn.CreditAmount,
			"current_debt":  txn.CurrentDebt,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) ListByDebtor(ctx context.Context, debtorID int64) ([]*model.Transaction, error) {
	var entities []*TransactionEntity
	err := r.Read(ctx).
		Where("debtor_id = ?", debtorID).
		Order("tran_date ASC, id ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toTransactionModels(entities), nil
}

type transactionWithDebtor struct {
	TransactionEntity
	DebtorRef *string
}

// ListAll returns every row visible to the owner, tagged with the public
// id of its debtor. A nil owner lists the whole ledger.
func (r *TransactionRepository) ListAll(ctx context.Context, ownerID *int64) ([]*model.Transaction, error) {
	var rows []*transactionWithDebtor

	db := r.Read(ctx).
		Table("transactions").
		Select("transactions.*, debtors.debtor_id AS debtor_ref").
		Joins("JOIN debtors ON debtors.id = transactions.debtor_id")
	if ownerID != nil {
		db = db.Where("debtors.created_by = ?", *ownerID)
	}
	if err := db.Order("transactions.tran_date ASC, transactions.id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*model.Transaction, 0, len(rows))
	for _, row := range rows {
		m := toTransactionModel(&row.TransactionEntity)
		if row.DebtorRef != nil {
			m.DebtorRef = *row.DebtorRef
		}
		out = append(out, m)
	}
	return out, nil
}

type LedgerTotals struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

func (r *TransactionRepository) Totals(ctx context.Context, ownerID *int64) (*LedgerTotals, error) {
	var row struct {
		Debit  decimal.NullDecimal
		Credit decimal.NullDecimal
	}

	db := r.Read(ctx).
		Table("transactions").
		Select("SUM(transactions.debit_amount) AS debit, SUM(transactions.credit_amount) AS credit").
		Joins("JOIN debtors ON debtors.id = transactions.debtor_id")
	if ownerID != nil {
		db = db.Where("debtors.created_by = ?", *ownerID)
	}
	if err := db.Scan(&row).Error; err != nil {
		return nil, err
	}

	totals := &LedgerTotals{Debit: decimal.Zero, Credit: decimal.Zero}
	if row.Debit.Valid {
		totals.Debit = row.Debit.Decimal
	}
	if row.Credit.Valid {
		totals.Credit = row.Credit.Decimal
	}
	return totals, nil
}
