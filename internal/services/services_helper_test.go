package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/nimasrn/debt-ledger/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type ledgerFixture struct {
	debtorRepo *repository.DebtorRepository
	txnRepo    *repository.TransactionRepository
	userRepo   *repository.UserRepository
	store      *memoryStore
	uploads    *UploadService
	ledger     *LedgerService
	debtors    *DebtorService
	reports    *ReportService
}

func newLedgerFixture(t *testing.T, opts DebtorOptions) *ledgerFixture {
	t.Helper()

	db := repository.NewTestDB(t)
	f := &ledgerFixture{
		debtorRepo: repository.NewDebtorRepository(db),
		txnRepo:    repository.NewTransactionRepository(db),
		userRepo:   repository.NewUserRepository(db),
	}
	f.store = &memoryStore{}
	f.uploads = NewUploadService(f.store, f.userRepo)
	f.ledger = NewLedgerService(f.debtorRepo, f.txnRepo, f.uploads)
	f.debtors = NewDebtorService(f.debtorRepo, f.txnRepo, f.ledger, nil, opts)
	f.reports = NewReportService(f.debtorRepo, f.txnRepo, f.userRepo, f.debtors)
	return f
}

func (f *ledgerFixture) user(t *testing.T, username string, role model.Role) model.Identity {
	t.Helper()
	u, err := f.userRepo.Create(context.Background(), &model.User{
		Username:     username,
		Email:        username + "@example.com",
		Role:         role,
		PasswordHash: "x",
	})
	require.NoError(t, err)
	return model.Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func debtorInput(mobile string, initial string) model.DebtorInput {
	return model.DebtorInput{
		Name:          "Sita Sharma",
		Address:       "Pokhara",
		Mobile:        mobile,
		InitialDebt:   decimal.RequireFromString(initial),
		DebtDate:      model.NewDate(time.Now().UTC().AddDate(0, 0, -1)),
		DebtPurpose:   "groceries",
		PaymentMethod: model.MediumCash,
	}
}

func mobileN(i int) string {
	return fmt.Sprintf("98%08d", i)
}

func posting(debtorID string, tranType model.TransactionType, amount string) model.PostingRequest {
	return model.PostingRequest{
		DebtorID: debtorID,
		Type:     tranType,
		Amount:   decimal.RequireFromString(amount),
		Medium:   model.MediumEsewa,
	}
}
