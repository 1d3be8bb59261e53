package services

import (
	"context"
	"fmt"

	"github.com/nimasrn/debt-ledger/internal/model"
)

// ReportService gathers the data behind the dashboard and the exports.
// Rendering lives in the reports package.
type ReportService struct {
	debtors      DebtorRepository
	transactions TransactionRepository
	users        UserRepository
	debtorSvc    *DebtorService
}

func NewReportService(debtors DebtorRepository, transactions TransactionRepository, users UserRepository, debtorSvc *DebtorService) *ReportService {
	return &ReportService{
		debtors:      debtors,
		transactions: transactions,
		users:        users,
		debtorSvc:    debtorSvc,
	}
}

// Summary counts debtors by state and totals the ledger. Current debt is
// total debit minus total credit.
func (s *ReportService) Summary(ctx context.Context, actor model.Identity) (*model.Summary, error) {
	scope := ownerScope(actor)

	counts, err := s.debtors.Counts(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("count debtors: %w", err)
	}
	totals, err := s.transactions.Totals(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("ledger totals: %w", err)
	}

	return &model.Summary{
		TotalDebtors:     counts.Total,
		ActiveDebtors:    counts.Active,
		RecoveredDebtors: counts.Recovered,
		DeletedDebtors:   counts.Deleted,
		TotalDebit:       totals.Debit,
		TotalCredit:      totals.Credit,
		CurrentDebt:      totals.Debit.Sub(totals.Credit),
	}, nil
}

// Debtors lists every live debtor in scope with its current debt.
func (s *ReportService) Debtors(ctx context.Context, actor model.Identity) ([]*model.Debtor, error) {
	return s.debtorSvc.List(ctx, actor, model.DebtorFilter{})
}

// Statement returns a live debtor with its full ledger.
func (s *ReportService) Statement(ctx context.Context, actor model.Identity, debtorID string) (*model.DebtorDetail, error) {
	return s.debtorSvc.Get(ctx, actor, debtorID)
}

// Transactions lists every ledger row in scope, oldest first.
func (s *ReportService) Transactions(ctx context.Context, actor model.Identity) ([]*model.Transaction, error) {
	return s.transactions.ListAll(ctx, ownerScope(actor))
}

func (s *ReportService) Users(ctx context.Context, actor model.Identity) ([]*model.UserOverview, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.users.ListWithDebtorCounts(ctx)
}
