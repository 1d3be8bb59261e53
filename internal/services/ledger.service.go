package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/nimasrn/debt-ledger/internal/repository"
	"github.com/nimasrn/debt-ledger/internal/storage"
	"github.com/nimasrn/debt-ledger/pkg/logger"
	"github.com/nimasrn/debt-ledger/pkg/prom"
	"github.com/shopspring/decimal"
)

// LedgerService is the only writer of ledger rows. Every balance change,
// the opening debit included, goes through post.
type LedgerService struct {
	debtors      DebtorRepository
	transactions TransactionRepository
	vouchers     VoucherVerifier
	now          func() time.Time
}

// NewLedgerService builds the poster. With a nil vouchers every voucher
// reference is rejected.
func NewLedgerService(debtors DebtorRepository, transactions TransactionRepository, vouchers VoucherVerifier) *LedgerService {
	return &LedgerService{
		debtors:      debtors,
		transactions: transactions,
		vouchers:     vouchers,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *LedgerService) checkVoucher(ctx context.Context, actor model.Identity, kind storage.Kind, ref string) error {
	if ref == "" {
		return nil
	}
	if s.vouchers == nil {
		return model.NewValidationError(string(kind), "voucher uploads are disabled")
	}
	return s.vouchers.Verify(ctx, actor, kind, ref)
}

// entry is a computed ledger row before it is persisted.
type entry struct {
	tranType model.TransactionType
	amount   decimal.Decimal
	after    decimal.Decimal
	status   model.DebtorStatus
}

// applyPosting computes the balance after a posting. Debits always leave
// the debtor active; a credit may never exceed what is owed.
func applyPosting(before decimal.Decimal, tranType model.TransactionType, amount decimal.Decimal) (*entry, error) {
	switch tranType {
	case model.TranDebit:
		after := before.Add(amount)
		if !model.ValidMoney(after) {
			return nil, model.NewValidationError("tran_amount", "balance would exceed "+model.MaxMoney.Sub(decimal.New(1, -2)).StringFixed(2))
		}
		return &entry{
			tranType: model.TranDebit,
			amount:   amount,
			after:    after,
			status:   model.DebtorActive,
		}, nil
	case model.TranCredit:
		if amount.GreaterThan(before) {
			return nil, &OverpaymentError{Requested: amount, Available: before}
		}
		after := before.Sub(amount)
		return &entry{
			tranType: model.TranCredit,
			amount:   amount,
			after:    after,
			status:   model.StatusFor(after),
		}, nil
	default:
		return nil, model.NewValidationError("tran_type", "must be one of: debit credit")
	}
}

// Post appends a debit or credit to a live debtor visible to the actor.
// The debtor row stays locked from the balance read until the status update
// commits, so postings on one debtor serialize.
func (s *LedgerService) Post(ctx context.Context, actor model.Identity, req model.PostingRequest) (*model.Transaction, error) {
	req.Description = strings.TrimSpace(req.Description)
	if err := model.Validate(req); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		prom.RecordRejection("invalid_amount")
		return nil, ErrInvalidAmount
	}
	if err := s.checkVoucher(ctx, actor, storage.KindTransactionVoucher, req.Voucher); err != nil {
		return nil, err
	}

	var created *model.Transaction
	err := s.debtors.WithinTransaction(ctx, func(ctx context.Context) error {
		debtor, err := s.debtors.Find(ctx, repository.DebtorLookup{
			DebtorID: req.DebtorID,
			OwnerID:  ownerScope(actor),
			Lock:     true,
		})
		if err != nil {
			if errors.Is(err, repository.ErrDebtorNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("lock debtor: %w", err)
		}

		before, err := s.transactions.CurrentDebt(ctx, debtor.ID, debtor.TotalDebt)
		if err != nil {
			return fmt.Errorf("read balance: %w", err)
		}

		e, err := applyPosting(before, req.Type, req.Amount)
		if err != nil {
			return err
		}

		created, err = s.post(ctx, debtor, actor, e, req)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrOverpaymentRejected) {
			prom.RecordRejection("overpayment")
		}
		return nil, err
	}

	prom.RecordPosting(string(created.Type))
	logger.Info("transaction posted",
		"tran_id", created.TranID,
		"debtor_id", req.DebtorID,
		"type", string(created.Type),
		"amount", created.Amount.String(),
		"current_debt", created.CurrentDebt.String(),
		"user_id", actor.UserID,
	)
	return created, nil
}

// open records the opening debit of a freshly created debtor. It must run
// inside the transaction that inserted the debtor.
func (s *LedgerService) open(ctx context.Context, debtor *model.Debtor, actor model.Identity) (*model.Transaction, error) {
	e := &entry{
		tranType: model.TranDebit,
		amount:   debtor.InitialDebt,
		after:    debtor.InitialDebt,
		status:   model.StatusFor(debtor.InitialDebt),
	}
	return s.post(ctx, debtor, actor, e, model.PostingRequest{
		Medium:      debtor.PaymentMethod,
		Description: "Opening balance: " + debtor.DebtPurpose,
		Voucher:     debtor.DebtVoucher,
	})
}

func (s *LedgerService) post(ctx context.Context, debtor *model.Debtor, actor model.Identity, e *entry, req model.PostingRequest) (*model.Transaction, error) {
	txn := &model.Transaction{
		DebtorID:     debtor.ID,
		DebtorRef:    debtor.DebtorID,
		RecordedBy:   &actor.UserID,
		Type:         e.tranType,
		DebitAmount:  decimal.Zero,
		CreditAmount: decimal.Zero,
		Amount:       e.amount,
		CurrentDebt:  e.after,
		Description:  req.Description,
		Medium:       req.Medium,
		Voucher:      req.Voucher,
		TranDate:     s.now(),
	}
	if e.tranType == model.TranDebit {
		txn.DebitAmount = e.amount
	} else {
		txn.CreditAmount = e.amount
	}

	created, err := s.transactions.Create(ctx, txn)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	created.DebtorRef = debtor.DebtorID

	if err := s.debtors.UpdateStatus(ctx, debtor.ID, e.status); err != nil {
		return nil, fmt.Errorf("update debtor status: %w", err)
	}
	debtor.Status = e.status
	debtor.CurrentDebt = e.after
	return created, nil
}

// Transaction returns a single ledger row if its debtor is live and
// visible to the actor.
func (s *LedgerService) Transaction(ctx context.Context, actor model.Identity, tranID string) (*model.Transaction, error) {
	txn, err := s.transactions.GetByTranID(ctx, tranID)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	debtor, err := s.debtors.GetByID(ctx, txn.DebtorID)
	if err != nil {
		if errors.Is(err, repository.ErrDebtorNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if debtor.IsDeleted || !actor.Owns(debtor) {
		return nil, ErrNotFound
	}
	txn.DebtorRef = debtor.DebtorID
	return txn, nil
}

// History lists the ledger of a live debtor in posting order.
func (s *LedgerService) History(ctx context.Context, actor model.Identity, debtorID string) ([]*model.Transaction, error) {
	debtor, err := s.debtors.Find(ctx, repository.DebtorLookup{DebtorID: debtorID, OwnerID: ownerScope(actor)})
	if err != nil {
		if errors.Is(err, repository.ErrDebtorNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	txns, err := s.transactions.ListByDebtor(ctx, debtor.ID)
	if err != nil {
		return nil, err
	}
	for _, t := range txns {
		t.DebtorRef = debtor.DebtorID
	}
	return txns, nil
}
