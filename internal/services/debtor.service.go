package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/nimasrn/debt-ledger/internal/repository"
	"github.com/nimasrn/debt-ledger/internal/storage"
	"github.com/nimasrn/debt-ledger/pkg/logger"
	"github.com/nimasrn/debt-ledger/pkg/prom"
	"github.com/shopspring/decimal"
)

const (
	DefaultDebtorLimit    = 50
	DefaultPurgeRetention = 20 * 24 * time.Hour
)

type DebtorOptions struct {
	Limit     int
	Retention time.Duration
	// Recipient is copied onto creation events for the mail relay.
	Recipient string
}

type DebtorService struct {
	debtors      DebtorRepository
	transactions TransactionRepository
	ledger       *LedgerService
	events       EventPublisher
	opts         DebtorOptions
	now          func() time.Time
}

func NewDebtorService(debtors DebtorRepository, transactions TransactionRepository, ledger *LedgerService, events EventPublisher, opts DebtorOptions) *DebtorService {
	if opts.Limit <= 0 {
		opts.Limit = DefaultDebtorLimit
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultPurgeRetention
	}
	return &DebtorService{
		debtors:      debtors,
		transactions: transactions,
		ledger:       ledger,
		events:       events,
		opts:         opts,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func normalizeInput(in *model.DebtorInput) {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.Mobile = strings.TrimSpace(in.Mobile)
	in.DebtPurpose = strings.TrimSpace(in.DebtPurpose)
	in.VoucherChequeNo = strings.TrimSpace(in.VoucherChequeNo)
}

// Create registers a debtor and records its opening debit in one
// transaction. The creation event is published after commit and its
// failure never fails the call.
func (s *DebtorService) Create(ctx context.Context, actor model.Identity, in model.DebtorInput) (*model.Debtor, error) {
	normalizeInput(&in)
	if err := model.Validate(in); err != nil {
		return nil, err
	}
	if err := s.ledger.checkVoucher(ctx, actor, storage.KindDebtVoucher, in.DebtVoucher); err != nil {
		return nil, err
	}

	debtor := &model.Debtor{
		Name:            in.Name,
		Address:         in.Address,
		Mobile:          in.Mobile,
		InitialDebt:     in.InitialDebt,
		TotalDebt:       in.InitialDebt,
		DebtDate:        in.DebtDate.Time,
		DebtPurpose:     in.DebtPurpose,
		PaymentMethod:   in.PaymentMethod,
		VoucherChequeNo: in.VoucherChequeNo,
		DebtVoucher:     in.DebtVoucher,
		Status:          model.StatusFor(in.InitialDebt),
		CreatedBy:       &actor.UserID,
	}

	var created *model.Debtor
	err := s.debtors.WithinTransaction(ctx, func(ctx context.Context) error {
		count, err := s.debtors.CountLive(ctx, actor.UserID)
		if err != nil {
			return fmt.Errorf("count debtors: %w", err)
		}
		if count >= int64(s.opts.Limit) {
			return ErrDebtorLimitExceeded
		}

		if err := s.ensureMobileFree(ctx, in.Mobile, 0); err != nil {
			return err
		}

		created, err = s.debtors.Create(ctx, debtor)
		if err != nil {
			return fmt.Errorf("create debtor: %w", err)
		}

		if _, err := s.ledger.open(ctx, created, actor); err != nil {
			return fmt.Errorf("open ledger: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDebtorLimitExceeded) {
			prom.RecordRejection("debtor_limit")
		}
		return nil, err
	}

	created.CurrentDebt = created.InitialDebt
	prom.RecordDebtorCreated()
	logger.Info("debtor created", "debtor_id", created.DebtorID, "user_id", actor.UserID, "initial_debt", created.InitialDebt.String())

	s.notifyCreated(ctx, created, actor)
	return created, nil
}

func (s *DebtorService) notifyCreated(ctx context.Context, d *model.Debtor, actor model.Identity) {
	if s.events == nil {
		return
	}
	createdBy := actor.Username
	if createdBy == "" {
		createdBy = strconv.FormatInt(actor.UserID, 10)
	}
	event := model.NewDebtorCreatedEvent(d, createdBy, s.opts.Recipient)
	if _, err := s.events.PublishJSON(ctx, event, map[string]string{"event": "debtor.created"}); err != nil {
		logger.Warn("debtor created event not published", "debtor_id", d.DebtorID, "error", err)
	}
}

func (s *DebtorService) ensureMobileFree(ctx context.Context, mobile string, excludeID int64) error {
	taken, err := s.debtors.MobileTaken(ctx, mobile, excludeID)
	if err != nil {
		return fmt.Errorf("check mobile: %w", err)
	}
	if taken {
		return model.NewValidationError("mobile", repository.ErrMobileTaken.Error())
	}
	return nil
}

// Get returns a live debtor with its current balance and ledger.
func (s *DebtorService) Get(ctx context.Context, actor model.Identity, debtorID string) (*model.DebtorDetail, error) {
	debtor, err := s.find(ctx, actor, debtorID, false, false)
	if err != nil {
		return nil, err
	}

	txns, err := s.transactions.ListByDebtor(ctx, debtor.ID)
	if err != nil {
		return nil, err
	}
	debtor.CurrentDebt = debtor.TotalDebt
	if n := len(txns); n > 0 {
		debtor.CurrentDebt = txns[n-1].CurrentDebt
	}
	for _, t := range txns {
		t.DebtorRef = debtor.DebtorID
	}
	return &model.DebtorDetail{Debtor: debtor, Transactions: txns}, nil
}

func (s *DebtorService) List(ctx context.Context, actor model.Identity, filter model.DebtorFilter) ([]*model.Debtor, error) {
	debtors, err := s.debtors.List(ctx, ownerScope(actor), filter)
	if err != nil {
		return nil, err
	}
	if err := s.fillCurrentDebt(ctx, debtors); err != nil {
		return nil, err
	}
	return debtors, nil
}

// RecycleBin lists the actor's soft-deleted debtors. Expired entries are
// removed by the purge sweep, not here.
func (s *DebtorService) RecycleBin(ctx context.Context, actor model.Identity) ([]*model.Debtor, error) {
	return s.List(ctx, actor, model.DebtorFilter{Deleted: true})
}

func (s *DebtorService) fillCurrentDebt(ctx context.Context, debtors []*model.Debtor) error {
	if len(debtors) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(debtors))
	for _, d := range debtors {
		ids = append(ids, d.ID)
	}
	balances, err := s.transactions.LatestBalances(ctx, ids)
	if err != nil {
		return fmt.Errorf("load balances: %w", err)
	}
	for _, d := range debtors {
		if b, ok := balances[d.ID]; ok {
			d.CurrentDebt = b
		} else {
			d.CurrentDebt = d.TotalDebt
		}
	}
	return nil
}

// Edit updates a live debtor. Once the ledger holds more than the opening
// row the initial debt is kept as is; before that, a new initial debt
// rewrites the opening row and re-derives the status.
func (s *DebtorService) Edit(ctx context.Context, actor model.Identity, debtorID string, in model.DebtorInput) (*model.Debtor, error) {
	normalizeInput(&in)
	if err := model.Validate(in); err != nil {
		return nil, err
	}

	var updated *model.Debtor
	err := s.debtors.WithinTransaction(ctx, func(ctx context.Context) error {
		debtor, err := s.find(ctx, actor, debtorID, false, true)
		if err != nil {
			return err
		}
		if err := s.ensureMobileFree(ctx, in.Mobile, debtor.ID); err != nil {
			return err
		}

		count, err := s.transactions.Count(ctx, debtor.ID)
		if err != nil {
			return fmt.Errorf("count transactions: %w", err)
		}

		debtor.Name = in.Name
		debtor.Address = in.Address
		debtor.Mobile = in.Mobile
		debtor.DebtDate = in.DebtDate.Time
		debtor.DebtPurpose = in.DebtPurpose
		debtor.PaymentMethod = in.PaymentMethod
		debtor.VoucherChequeNo = in.VoucherChequeNo
		if in.DebtVoucher != "" && in.DebtVoucher != debtor.DebtVoucher {
			if err := s.ledger.checkVoucher(ctx, actor, storage.KindDebtVoucher, in.DebtVoucher); err != nil {
				return err
			}
			debtor.DebtVoucher = in.DebtVoucher
		}

		hasActivity := count > 1
		if !hasActivity && !in.InitialDebt.Equal(debtor.InitialDebt) {
			if err := s.resyncOpening(ctx, debtor, in.InitialDebt); err != nil {
				return err
			}
		}

		if err := s.debtors.Update(ctx, debtor); err != nil {
			return fmt.Errorf("update debtor: %w", err)
		}
		updated = debtor
		return nil
	})
	if err != nil {
		return nil, err
	}

	current, err := s.transactions.CurrentDebt(ctx, updated.ID, updated.TotalDebt)
	if err != nil {
		return nil, err
	}
	updated.CurrentDebt = current
	logger.Info("debtor updated", "debtor_id", updated.DebtorID, "user_id", actor.UserID)
	return updated, nil
}

func (s *DebtorService) resyncOpening(ctx context.Context, debtor *model.Debtor, initial decimal.Decimal) error {
	debtor.InitialDebt = initial
	debtor.TotalDebt = initial
	debtor.Status = model.StatusFor(initial)

	opening, err := s.transactions.Opening(ctx, debtor.ID)
	if errors.Is(err, repository.ErrTransactionNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load opening row: %w", err)
	}

	opening.Amount = initial
	opening.DebitAmount = initial
	opening.CreditAmount = decimal.Zero
	opening.CurrentDebt = initial
	if err := s.transactions.UpdateOpening(ctx, opening); err != nil {
		return fmt.Errorf("rewrite opening row: %w", err)
	}
	return nil
}

// SoftDelete moves a fully recovered debtor to the recycle bin.
func (s *DebtorService) SoftDelete(ctx context.Context, actor model.Identity, debtorID string) error {
	return s.debtors.WithinTransaction(ctx, func(ctx context.Context) error {
		debtor, err := s.find(ctx, actor, debtorID, false, true)
		if err != nil {
			return err
		}
		if debtor.Status != model.DebtorRecovered {
			return ErrDebtToDeletePending
		}
		if err := s.debtors.SoftDelete(ctx, debtor.ID, s.now()); err != nil {
			return err
		}
		logger.Info("debtor moved to recycle bin", "debtor_id", debtorID, "user_id", actor.UserID)
		return nil
	})
}

// Restore takes a debtor out of the recycle bin whatever its balance.
func (s *DebtorService) Restore(ctx context.Context, actor model.Identity, debtorID string) error {
	return s.debtors.WithinTransaction(ctx, func(ctx context.Context) error {
		debtor, err := s.find(ctx, actor, debtorID, true, true)
		if err != nil {
			return err
		}
		if err := s.debtors.Restore(ctx, debtor.ID); err != nil {
			return err
		}
		logger.Info("debtor restored", "debtor_id", debtorID, "user_id", actor.UserID)
		return nil
	})
}

// HardDelete permanently removes a recovered debtor, live or recycled,
// together with its ledger.
func (s *DebtorService) HardDelete(ctx context.Context, actor model.Identity, debtorID string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	return s.debtors.WithinTransaction(ctx, func(ctx context.Context) error {
		debtor, err := s.find(ctx, actor, debtorID, false, true)
		if errors.Is(err, ErrNotFound) {
			debtor, err = s.find(ctx, actor, debtorID, true, true)
		}
		if err != nil {
			return err
		}
		if debtor.Status != model.DebtorRecovered {
			return ErrCannotDeletePending
		}
		if err := s.debtors.Delete(ctx, debtor.ID); err != nil {
			return err
		}
		logger.Info("debtor deleted permanently", "debtor_id", debtorID, "user_id", actor.UserID)
		return nil
	})
}

// PurgeExpired removes every debtor that has been in the recycle bin longer
// than the retention window.
func (s *DebtorService) PurgeExpired(ctx context.Context, now time.Time) ([]string, error) {
	cutoff := now.UTC().Add(-s.opts.Retention)
	purged, err := s.debtors.PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("purge recycle bin: %w", err)
	}
	if len(purged) > 0 {
		prom.RecordPurged(len(purged))
		logger.Info("debtors purged", "count", len(purged), "cutoff", cutoff, "debtor_ids", purged)
	}
	return purged, nil
}

func (s *DebtorService) find(ctx context.Context, actor model.Identity, debtorID string, deleted, lock bool) (*model.Debtor, error) {
	debtor, err := s.debtors.Find(ctx, repository.DebtorLookup{
		DebtorID: debtorID,
		OwnerID:  ownerScope(actor),
		Deleted:  deleted,
		Lock:     lock,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDebtorNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return debtor, nil
}
