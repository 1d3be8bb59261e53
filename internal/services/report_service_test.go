package services

import (
	"context"
	"testing"

	"github.com/nimasrn/debt-ledger/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService_Summary(t *testing.T) {
	f := newLedgerFixture(t, DebtorOptions{})
	ctx := context.Background()
	owner := f.user(t, "reporter", model.RoleUser)
	other := f.user(t, "elsewhere", model.RoleUser)
	admin := f.user(t, "auditor", model.RoleAdmin)

	a, err := f.debtors.Create(ctx, owner, debtorInput(mobileN(90), "1000"))
	require.NoError(t, err)
	b, err := f.debtors.Create(ctx, owner, debtorInput(mobileN(91), "200"))
	require.NoError(t, err)
	_, err = f.debtors.Create(ctx, other, debtorInput(mobileN(92), "50"))
	require.NoError(t, err)

	_, err = f.ledger.Post(ctx, owner, posting(a.DebtorID, model.TranCredit, "400"))
	require.NoError(t, err)
	_, err = f.ledger.Post(ctx, owner, posting(b.DebtorID, model.TranCredit, "200"))
	require.NoError(t, err)
	require.NoError(t, f.debtors.SoftDelete(ctx, owner, b.DebtorID))

	summary, err := f.reports.Summary(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalDebtors)
	assert.Equal(t, int64(1), summary.ActiveDebtors)
	assert.Equal(t, int64(0), summary.RecoveredDebtors)
	assert.Equal(t, int64(1), summary.DeletedDebtors)
	assert.True(t, summary.TotalDebit.Equal(decimal.NewFromInt(1200)))
	assert.True(t, summary.TotalCredit.Equal(decimal.NewFromInt(600)))
	assert.True(t, summary.CurrentDebt.Equal(decimal.NewFromInt(600)))

	global, err := f.reports.Summary(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(3), global.TotalDebtors)
	assert.True(t, global.CurrentDebt.Equal(decimal.NewFromInt(650)))

	rows, err := f.reports.Transactions(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
	for _, r := range rows {
		assert.NotEmpty(t, r.DebtorRef)
	}

	debtors, err := f.reports.Debtors(ctx, owner)
	require.NoError(t, err)
	require.Len(t, debtors, 1)
	assert.True(t, debtors[0].CurrentDebt.Equal(decimal.NewFromInt(600)))

	statement, err := f.reports.Statement(ctx, owner, a.DebtorID)
	require.NoError(t, err)
	assert.Len(t, statement.Transactions, 2)
}

func TestReportService_Users(t *testing.T) {
	f := newLedgerFixture(t, DebtorOptions{})
	ctx := context.Background()
	owner := f.user(t, "counted", model.RoleUser)
	admin := f.user(t, "chief", model.RoleAdmin)

	_, err := f.debtors.Create(ctx, owner, debtorInput(mobileN(95), "10"))
	require.NoError(t, err)

	_, err = f.reports.Users(ctx, owner)
	assert.ErrorIs(t, err, ErrForbidden)

	users, err := f.reports.Users(ctx, admin)
	require.NoError(t, err)
	require.Len(t, users, 2)

	counts := map[string]int64{}
	for _, u := range users {
		counts[u.Username] = u.DebtorCount
	}
	assert.Equal(t, int64(1), counts["counted"])
	assert.Equal(t, int64(0), counts["chief"])
}
