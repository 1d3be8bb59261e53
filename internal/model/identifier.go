package model

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	DebtorIDPrefix      = "D"
	TransactionIDPrefix = "Txn"
	idWidth             = 5
)

// DebtorID formats the public identifier of a debtor from its row key.
func DebtorID(seq int64) string {
	return fmt.Sprintf("%s%0*d", DebtorIDPrefix, idWidth, seq)
}

// TransactionID formats the public identifier of a transaction from its row key.
func TransactionID(seq int64) string {
	return fmt.Sprintf("%s%0*d", TransactionIDPrefix, idWidth, seq)
}

// ParseSequence returns the numeric part of a debtor or transaction id.
func ParseSequence(id string) (int64, error) {
	var digits string
	switch {
	case strings.HasPrefix(id, TransactionIDPrefix):
		digits = strings.TrimPrefix(id, TransactionIDPrefix)
	case strings.HasPrefix(id, DebtorIDPrefix):
		digits = strings.TrimPrefix(id, DebtorIDPrefix)
	default:
		return 0, fmt.Errorf("unknown id prefix: %q", id)
	}
	if digits == "" {
		return 0, fmt.Errorf("missing sequence: %q", id)
	}
	seq, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || seq <= 0 {
		return 0, fmt.Errorf("invalid sequence: %q", id)
	}
	return seq, nil
}
