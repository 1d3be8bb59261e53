package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TranDebit  TransactionType = "debit"
	TranCredit TransactionType = "credit"
)

type Transaction struct {
	ID           int64           `json:"-"`
	TranID       string          `json:"tran_id"`
	DebtorID     int64           `json:"-"`
	DebtorRef    string          `json:"debtor_id,omitempty"`
	RecordedBy   *int64          `json:"recorded_by,omitempty"`
	Type         TransactionType `json:"tran_type"`
	DebitAmount  decimal.Decimal `json:"debit_amount"`
	CreditAmount decimal.Decimal `json:"credit_amount"`
	Amount       decimal.Decimal `json:"tran_amount"`
	CurrentDebt  decimal.Decimal `json:"current_debt"`
	Description  string          `json:"tran_desc"`
	Medium       PaymentMedium   `json:"tran_medium"`
	Voucher      string          `json:"tran_voucher,omitempty"`
	TranDate     time.Time       `json:"tran_date"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// PostingRequest describes a debit or credit to append to a debtor's ledger.
// The validator only checks the amount's scale; its sign is checked by the
// poster so that a non-positive amount is reported as its own error.
type PostingRequest struct {
	DebtorID    string          `json:"-"`
	Type        TransactionType `json:"tran_type"    validate:"required,oneof=debit credit"`
	Amount      decimal.Decimal `json:"tran_amount"`
	Medium      PaymentMedium   `json:"tran_medium"  validate:"required,medium"`
	Description string          `json:"tran_desc"    validate:"max=200"`
	Voucher     string          `json:"tran_voucher" validate:"max=255"`
}
