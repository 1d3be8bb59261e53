package repository

import (
	"time"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/shopspring/decimal"
)

type DebtorEntity struct {
	ID              int64           `gorm:"primaryKey;autoIncrement;column:id"`
	DebtorID        *string         `gorm:"column:debtor_id;size:20;uniqueIndex"`
	Name            string          `gorm:"column:name;size:100;not null"`
	Address         string          `gorm:"column:address;size:100;not null"`
	Mobile          string          `gorm:"column:mobile;size:10;not null;uniqueIndex"`
	InitialDebt     decimal.Decimal `gorm:"column:initial_debt;type:decimal(12,2);not null"`
	TotalDebt       decimal.Decimal `gorm:"column:total_debt;type:decimal(12,2);not null"`
	DebtDate        time.Time       `gorm:"column:debt_date;type:date;not null"`
	DebtPurpose     string          `gorm:"column:debt_purpose;size:100;not null"`
	PaymentMethod   string          `gorm:"column:payment_method;size:20;not null"`
	VoucherChequeNo string          `gorm:"column:voucher_cheque_no;size:30"`
	DebtVoucher     string          `gorm:"column:debt_voucher;size:255"`
	Status          string          `gorm:"column:debtor_status;size:10;not null;default:active;index"`
	IsDeleted       bool            `gorm:"column:is_delete;not null;default:false;index"`
	DeleteDate      *time.Time      `gorm:"column:delete_date;index"`
	CreatedBy       *int64          `gorm:"column:created_by;index"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

func (DebtorEntity) TableName() string {
	return "debtors"
}

func toDebtorEntity(m *model.Debtor) *DebtorEntity {
	if m == nil {
		return nil
	}
	e := &DebtorEntity{
		ID:              m.ID,
		Name:            m.Name,
		Address:         m.Address,
		Mobile:          m.Mobile,
		InitialDebt:     m.InitialDebt,
		TotalDebt:       m.TotalDebt,
		DebtDate:        m.DebtDate,
		DebtPurpose:     m.DebtPurpose,
		PaymentMethod:   string(m.PaymentMethod),
		VoucherChequeNo: m.VoucherChequeNo,
		DebtVoucher:     m.DebtVoucher,
		Status:          string(m.Status),
		IsDeleted:       m.IsDeleted,
		DeleteDate:      m.DeleteDate,
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.DebtorID != "" {
		id := m.DebtorID
		e.DebtorID = &id
	}
	return e
}

func toDebtorModel(e *DebtorEntity) *model.Debtor {
	if e == nil {
		return nil
	}
	m := &model.Debtor{
		ID:              e.ID,
		Name:            e.Name,
		Address:         e.Address,
		Mobile:          e.Mobile,
		InitialDebt:     e.InitialDebt,
		TotalDebt:       e.TotalDebt,
		CurrentDebt:     e.TotalDebt,
		DebtDate:        e.DebtDate,
		DebtPurpose:     e.DebtPurpose,
		PaymentMethod:   model.PaymentMedium(e.PaymentMethod),
		VoucherChequeNo: e.VoucherChequeNo,
		DebtVoucher:     e.DebtVoucher,
		Status:          model.DebtorStatus(e.Status),
		IsDeleted:       e.IsDeleted,
		DeleteDate:      e.DeleteDate,
		CreatedBy:       e.CreatedBy,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
	if e.DebtorID != nil {
		m.DebtorID = *e.DebtorID
	}
	return m
}

func toDebtorModels(entities []*DebtorEntity) []*model.Debtor {
	if entities == nil {
		return nil
	}
	models := make([]*model.Debtor, len(entities))
	for i, e := range entities {
		models[i] = toDebtorModel(e)
	}
	return models
}
