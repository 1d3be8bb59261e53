package repository

import (
	"time"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/shopspring/decimal"
)

type TransactionEntity struct {
	ID           int64           `gorm:"primaryKey;autoIncrement;column:id"`
	TranID       *string         `gorm:"column:tran_id;size:20;uniqueIndex"`
	DebtorID     int64           `gorm:"column:debtor_id;not null;index"`
	RecordedBy   *int64          `gorm:"column:recorded_by;index"`
	TranType     string          `gorm:"column:tran_type;size:6;not null"`
	DebitAmount  decimal.Decimal `gorm:"column:debit_amount;type:decimal(12,2);not null"`
	CreditAmount decimal.Decimal `gorm:"column:credit_amount;type:decimal(12,2);not null"`
	TranAmount   decimal.Decimal `gorm:"column:tran_amount;type:decimal(12,2);not null"`
	CurrentDebt  decimal.Decimal `gorm:"column:current_debt;type:decimal(12,2);not null"`
	TranDesc     string          `gorm:"column:tran_desc;size:200"`
	TranMedium   string          `gorm:"column:tran_medium;size:20;not null"`
	TranVoucher  string          `gorm:"column:tran_voucher;size:255"`
	TranDate     time.Time       `gorm:"column:tran_date;not null;index"`
	UpdatedAt    time.Time       `gorm:"column:updated_at"`
}

func (TransactionEntity) TableName() string {
	return "transactions"
}

func toTransactionEntity(m *model.Transaction) *TransactionEntity {
	if m == nil {
		return nil
	}
	e := &TransactionEntity{
		ID:           m.ID,
		DebtorID:     m.DebtorID,
		RecordedBy:   m.RecordedBy,
		TranType:     string(m.Type),
		DebitAmount:  m.DebitAmount,
		CreditAmount: m.CreditAmount,
		TranAmount:   m.Amount,
		CurrentDebt:  m.CurrentDebt,
		TranDesc:     m.Description,
		TranMedium:   string(m.Medium),
		TranVoucher:  m.Voucher,
		TranDate:     m.TranDate,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.TranID != "" {
		id := m.TranID
		e.TranID = &id
	}
	return e
}

func toTransactionModel(e *TransactionEntity) *model.Transaction {
	if e == nil {
		return nil
	}
	m := &model.Transaction{
		ID:           e.ID,
		DebtorID:     e.DebtorID,
		RecordedBy:   e.RecordedBy,
		Type:         model.TransactionType(e.TranType),
		DebitAmount:  e.DebitAmount,
		CreditAmount: e.CreditAmount,
		Amount:       e.TranAmount,
		CurrentDebt:  e.CurrentDebt,
		Description:  e.TranDesc,
		Medium:       model.PaymentMedium(e.TranMedium),
		Voucher:      e.TranVoucher,
		TranDate:     e.TranDate,
		UpdatedAt:    e.UpdatedAt,
	}
	if e.TranID != nil {
		m.TranID = *e.TranID
	}
	return m
}

func toTransactionModels(entities []*TransactionEntity) []*model.Transaction {
	if entities == nil {
		return nil
	}
	models := make([]*model.Transaction, len(entities))
	for i, e := range entities {
		models[i] = toTransactionModel(e)
	}
	return models
}
