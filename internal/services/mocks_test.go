package services

import (
	"context"
	"time"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/nimasrn/debt-ledger/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockDebtorRepository struct {
	mock.Mock
}

func (m *MockDebtorRepository) Create(ctx context.Context, d *model.Debtor) (*model.Debtor, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Debtor), args.Error(1)
}

func (m *MockDebtorRepository) Find(ctx context.Context, q repository.DebtorLookup) (*model.Debtor, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Debtor), args.Error(1)
}

func (m *MockDebtorRepository) GetByID(ctx context.Context, id int64) (*model.Debtor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Debtor), args.Error(1)
}

func (m *MockDebtorRepository) List(ctx context.Context, ownerID *int64, f model.DebtorFilter) ([]*model.Debtor, error) {
	args := m.Called(ctx, ownerID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Debtor), args.Error(1)
}

func (m *MockDebtorRepository) CountLive(ctx context.Context, ownerID int64) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDebtorRepository) MobileTaken(ctx context.Context, mobile string, excludeID int64) (bool, error) {
	args := m.Called(ctx, mobile, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDebtorRepository) Update(ctx context.Context, d *model.Debtor) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDebtorRepository) UpdateStatus(ctx context.Context, id int64, status model.DebtorStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockDebtorRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockDebtorRepository) Restore(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDebtorRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDebtorRepository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDebtorRepository) Counts(ctx context.Context, ownerID *int64) (*repository.DebtorCounts, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.DebtorCounts), args.Error(1)
}

func (m *MockDebtorRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	args := m.Called(ctx, txn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByTranID(ctx context.Context, tranID string) (*model.Transaction, error) {
	args := m.Called(ctx, tranID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Opening(ctx context.Context, debtorID int64) (*model.Transaction, error) {
	args := m.Called(ctx, debtorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) CurrentDebt(ctx context.Context, debtorID int64, fallback decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, debtorID, fallback)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) LatestBalances(ctx context.Context, debtorIDs []int64) (map[int64]decimal.Decimal, error) {
	args := m.Called(ctx, debtorIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) Count(ctx context.Context, debtorID int64) (int64, error) {
	args := m.Called(ctx, debtorID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) UpdateOpening(ctx context.Context, txn *model.Transaction) error {
	return m.Called(ctx, txn).Error(0)
}

func (m *MockTransactionRepository) ListByDebtor(ctx context.Context, debtorID int64) ([]*model.Transaction, error) {
	args := m.Called(ctx, debtorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListAll(ctx context.Context, ownerID *int64) ([]*model.Transaction, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Totals(ctx context.Context, ownerID *int64) (*repository.LedgerTotals, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.LedgerTotals), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishJSON(ctx context.Context, v any, headers map[string]string) (string, error) {
	args := m.Called(ctx, v, headers)
	return args.String(0), args.Error(1)
}
