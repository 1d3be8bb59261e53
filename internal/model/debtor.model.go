package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type DebtorStatus string

const (
	DebtorActive    DebtorStatus = "active"
	DebtorRecovered DebtorStatus = "recovered"
)

// StatusFor derives the status from a balance. Only an exact zero counts
// as recovered.
func StatusFor(current decimal.Decimal) DebtorStatus {
	if current.IsZero() {
		return DebtorRecovered
	}
	return DebtorActive
}

type PaymentMedium string

const (
	MediumCash          PaymentMedium = "cash"
	MediumMobileBanking PaymentMedium = "mobile_banking"
	MediumEsewa         PaymentMedium = "esewa"
	MediumKhalti        PaymentMedium = "khalti"
	MediumIME           PaymentMedium = "ime"
	MediumConnectIPS    PaymentMedium = "connectips"
	MediumFonepay       PaymentMedium = "fonepay"
)

var paymentMedia = []PaymentMedium{
	MediumCash, MediumMobileBanking, MediumEsewa, MediumKhalti,
	MediumIME, MediumConnectIPS, MediumFonepay,
}

func PaymentMedia() []PaymentMedium {
	out := make([]PaymentMedium, len(paymentMedia))
	copy(out, paymentMedia)
	return out
}

func (m PaymentMedium) Valid() bool {
	for _, v := range paymentMedia {
		if v == m {
			return true
		}
	}
	return false
}

type Debtor struct {
	ID              int64           `json:"-"`
	DebtorID        string          `json:"debtor_id"`
	Name            string          `json:"name"`
	Address         string          `json:"address"`
	Mobile          string          `json:"mobile"`
	InitialDebt     decimal.Decimal `json:"initial_debt"`
	TotalDebt       decimal.Decimal `json:"total_debt"`
	CurrentDebt     decimal.Decimal `json:"current_debt"`
	DebtDate        time.Time       `json:"debt_date"`
	DebtPurpose     string          `json:"debt_purpose"`
	PaymentMethod   PaymentMedium   `json:"payment_method"`
	VoucherChequeNo string          `json:"voucher_cheque_no,omitempty"`
	DebtVoucher     string          `json:"debt_voucher,omitempty"`
	Status          DebtorStatus    `json:"debtor_status"`
	IsDeleted       bool            `json:"is_delete"`
	DeleteDate      *time.Time      `json:"delete_date,omitempty"`
	CreatedBy       *int64          `json:"created_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// DebtorInput is the editable part of a debtor, shared by create and edit.
type DebtorInput struct {
	Name            string          `json:"name"              validate:"required,max=100"`
	Address         string          `json:"address"           validate:"required,max=100"`
	Mobile          string          `json:"mobile"            validate:"required,mobile"`
	InitialDebt     decimal.Decimal `json:"initial_debt"      validate:"gte=0"`
	DebtDate        Date            `json:"debt_date"         validate:"required,notfuture"`
	DebtPurpose     string          `json:"debt_purpose"      validate:"required,max=100"`
	PaymentMethod   PaymentMedium   `json:"payment_method"    validate:"required,medium"`
	VoucherChequeNo string          `json:"voucher_cheque_no" validate:"max=30"`
	DebtVoucher     string          `json:"debt_voucher"      validate:"max=255"`
}

type DebtorFilter struct {
	Status  DebtorStatus
	Search  string
	Deleted bool
	Limit   int
	Offset  int
}

// DebtorDetail is a debtor together with its ledger.
type DebtorDetail struct {
	*Debtor
	Transactions []*Transaction `json:"transactions"`
}
