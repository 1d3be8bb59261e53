package services

import (
	"context"
	"time"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/nimasrn/debt-ledger/internal/repository"
	"github.com/nimasrn/debt-ledger/internal/storage"
	"github.com/shopspring/decimal"
)

type DebtorRepository interface {
	Create(ctx context.Context, d *model.Debtor) (*model.Debtor, error)
	Find(ctx context.Context, q repository.DebtorLookup) (*model.Debtor, error)
	GetByID(ctx context.Context, id int64) (*model.Debtor, error)
	List(ctx context.Context, ownerID *int64, f model.DebtorFilter) ([]*model.Debtor, error)
	CountLive(ctx context.Context, ownerID int64) (int64, error)
	MobileTaken(ctx context.Context, mobile string, excludeID int64) (bool, error)
	Update(ctx context.Context, d *model.Debtor) error
	UpdateStatus(ctx context.Context, id int64, status model.DebtorStatus) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	Restore(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) ([]string, error)
	Counts(ctx context.Context, ownerID *int64) (*repository.DebtorCounts, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	GetByTranID(ctx context.Context, tranID string) (*model.Transaction, error)
	Opening(ctx context.Context, debtorID int64) (*model.Transaction, error)
	CurrentDebt(ctx context.Context, debtorID int64, fallback decimal.Decimal) (decimal.Decimal, error)
	LatestBalances(ctx context.Context, debtorIDs []int64) (map[int64]decimal.Decimal, error)
	Count(ctx context.Context, debtorID int64) (int64, error)
	UpdateOpening(ctx context.Context, txn *model.Transaction) error
	ListByDebtor(ctx context.Context, debtorID int64) ([]*model.Transaction, error)
	ListAll(ctx context.Context, ownerID *int64) ([]*model.Transaction, error)
	Totals(ctx context.Context, ownerID *int64) (*repository.LedgerTotals, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	UpdateProfilePic(ctx context.Context, id int64, ref string) error
	ListWithDebtorCounts(ctx context.Context) ([]*model.UserOverview, error)
}

// EventPublisher hands domain events to the notification pipeline.
type EventPublisher interface {
	PublishJSON(ctx context.Context, v any, headers map[string]string) (string, error)
}

// VoucherVerifier confirms that a voucher reference names the actor's own
// stored upload.
type VoucherVerifier interface {
	Verify(ctx context.Context, actor model.Identity, kind storage.Kind, ref string) error
}

// ownerScope limits queries to the actor's debtors; admins see everything.
func ownerScope(actor model.Identity) *int64 {
	if actor.IsAdmin() {
		return nil
	}
	id := actor.UserID
	return &id
}
