package fixtures

import (
	"fmt"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/shopspring/decimal"
)

const (
	Password      = "s3cret-pass"
	AdminUsername = "root"
	AdminPassword = "r00t-pass-word"
	Recipient     = "ops@example.com"
)

func Register(username string) model.RegisterInput {
	return model.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: Password,
	}
}

func Login(username, password string) model.LoginInput {
	return model.LoginInput{Username: username, Password: password}
}

// Mobile returns the i-th test phone number.
func Mobile(i int) string {
	return fmt.Sprintf("98%08d", i)
}

// Debtor is a create payload. DebtDate is fixed in the past so it is
// never rejected as a future date.
func Debtor(i int, initial int64) map[string]any {
	return map[string]any{
		"name":           fmt.Sprintf("Debtor %d", i),
		"address":        "Kathmandu",
		"mobile":         Mobile(i),
		"initial_debt":   decimal.NewFromInt(initial).String(),
		"debt_date":      "2024-01-10",
		"debt_purpose":   "shop credit",
		"payment_method": string(model.MediumCash),
	}
}

func Posting(tranType model.TransactionType, amount int64) map[string]any {
	return map[string]any{
		"tran_type":   string(tranType),
		"tran_amount": decimal.NewFromInt(amount).String(),
		"tran_medium": string(model.MediumEsewa),
		"tran_desc":   fmt.Sprintf("%s of %d", tranType, amount),
	}
}
