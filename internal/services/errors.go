package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount        = errors.New("transaction amount must be greater than zero")
	ErrOverpaymentRejected  = errors.New("credit exceeds current debt")
	ErrDebtorLimitExceeded  = errors.New("debtor limit reached")
	ErrDebtToDeletePending  = errors.New("debt is not fully recovered, cannot move debtor to recycle bin")
	ErrCannotDeletePending  = errors.New("debt is not fully recovered, cannot delete debtor")
	ErrNotFound             = errors.New("not found")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrForbidden            = errors.New("forbidden")
	ErrConfirmationRequired = errors.New("deletion must be confirmed")
)

// OverpaymentError reports a credit larger than the outstanding balance.
type OverpaymentError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("%s: requested %s, outstanding %s",
		ErrOverpaymentRejected, e.Requested.StringFixed(2), e.Available.StringFixed(2))
}

func (e *OverpaymentError) Unwrap() error {
	return ErrOverpaymentRejected
}
