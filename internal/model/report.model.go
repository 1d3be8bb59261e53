package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Summary struct {
	TotalDebtors     int64           `json:"total_debtors"`
	ActiveDebtors    int64           `json:"active_debtors"`
	RecoveredDebtors int64           `json:"recovered_debtors"`
	DeletedDebtors   int64           `json:"deleted_debtors"`
	TotalDebit       decimal.Decimal `json:"total_debit"`
	TotalCredit      decimal.Decimal `json:"total_credit"`
	CurrentDebt      decimal.Decimal `json:"current_debt"`
}

// DebtorCreatedEvent is published once a new debtor is committed.
type DebtorCreatedEvent struct {
	EventID     string          `json:"event_id"`
	DebtorID    string          `json:"debtor_id"`
	Name        string          `json:"name"`
	Mobile      string          `json:"mobile"`
	InitialDebt decimal.Decimal `json:"initial_debt"`
	CreatedBy   string          `json:"created_by"`
	Recipient   string          `json:"recipient,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

func NewDebtorCreatedEvent(d *Debtor, createdBy, recipient string) *DebtorCreatedEvent {
	return &DebtorCreatedEvent{
		EventID:     uuid.NewString(),
		DebtorID:    d.DebtorID,
		Name:        d.Name,
		Mobile:      d.Mobile,
		InitialDebt: d.InitialDebt,
		CreatedBy:   createdBy,
		Recipient:   recipient,
		OccurredAt:  time.Now().UTC(),
	}
}
