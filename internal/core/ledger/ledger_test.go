package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func openTestLedger(t *testing.T, budget int64) Ledger {
	t.Helper()
	l, err := Open("client-1", d(budget), day("2023-01-01"))
	require.NoError(t, err)
	return l
}

func TestLedger_ReferenceScenario(t *testing.T) {
	l := openTestLedger(t, 1_000_000)

	l, err := l.RecordPayment(d(250_000), ModeCheck, day("2023-01-15"))
	require.NoError(t, err)

	l, err = l.RecordMaterialPurchase([]MaterialItem{
		{Material: "Cement", Quantity: 100, UnitCost: d(500)},
	}, "BuildMart", day("2023-02-01"))
	require.NoError(t, err)

	l, err = l.RecordLabor([]WorkerEntry{
		{Name: "Amit Kumar", Role: RoleMain, Rate: d(500), Hours: d(40)},
	}, day("2023-02-15"))
	require.NoError(t, err)

	assert.True(t, d(1_180_000).Equal(l.RemainingBudget()), "remaining = %s", l.RemainingBudget())

	totals := l.CategoryTotals()
	assert.True(t, d(250_000).Equal(totals.Payments))
	assert.True(t, d(50_000).Equal(totals.Materials))
	assert.True(t, d(20_000).Equal(totals.Labor))
	assert.False(t, l.IsOverBudget())
	assert.True(t, d(70_000).Equal(l.TotalSpent()))
	assert.True(t, l.Overspend().IsZero())

	require.Len(t, l.Transactions, 3)
	for i, tx := range l.Transactions {
		assert.Equal(t, int64(i+1), tx.ID)
	}
}

func TestRecordPayment_RejectsNonPositiveAmounts(t *testing.T) {
	l := openTestLedger(t, 1000)

	for _, amount := range []int64{0, -1} {
		got, err := l.RecordPayment(d(amount), ModeCash, day("2024-01-15"))
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.Empty(t, got.Transactions)
	}

	_, err := l.RecordPayment(d(10), PaymentMode("Barter"), day("2024-01-15"))
	assert.ErrorIs(t, err, ErrInvalidPaymentMode)
}

func TestRecordMaterialPurchase_ZeroQuantityRejectsWholeBatch(t *testing.T) {
	l := openTestLedger(t, 1000)
	l, err := l.RecordPayment(d(10), ModeCash, day("2024-01-15"))
	require.NoError(t, err)
	before := len(l.Transactions)

	got, err := l.RecordMaterialPurchase([]MaterialItem{
		{Material: "Steel", Quantity: 2, UnitCost: d(1000)},
		{Material: "Bricks", Quantity: 0, UnitCost: d(10)},
	}, "Steel Suppliers Ltd.", day("2024-03-10"))

	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Len(t, got.Transactions, before)
	assert.Len(t, l.Transactions, before)
}

func TestRecordMaterialPurchase_OneTransactionPerItem(t *testing.T) {
	l := openTestLedger(t, 100_000)

	got, err := l.RecordMaterialPurchase([]MaterialItem{
		{Material: "Steel", Quantity: 2, UnitCost: d(1000)},
		{Material: "Bricks", Quantity: 300, UnitCost: d(10)},
	}, "Brick & Mortar Co.", day("2024-03-10"))
	require.NoError(t, err)

	require.Len(t, got.Transactions, 2)
	for _, tx := range got.Transactions {
		assert.Equal(t, KindMaterial, tx.Kind)
		assert.Equal(t, "Brick & Mortar Co.", tx.Material.Distributor)
		assert.Equal(t, day("2024-03-10"), tx.Date)
	}
	assert.True(t, d(2000).Equal(got.Transactions[0].Material.Cost))
	assert.True(t, d(3000).Equal(got.Transactions[1].Material.Cost))
	assert.Empty(t, l.Transactions, "receiver must not change")
}

func TestRecordMaterialPurchase_Validation(t *testing.T) {
	l := openTestLedger(t, 1000)

	_, err := l.RecordMaterialPurchase(nil, "BuildMart", day("2024-03-10"))
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = l.RecordMaterialPurchase([]MaterialItem{{Material: "Paint", Quantity: 1, UnitCost: d(1)}}, " ", day("2024-03-10"))
	assert.ErrorIs(t, err, ErrMissingName)

	_, err = l.RecordMaterialPurchase([]MaterialItem{{Material: "Paint", Quantity: -3, UnitCost: d(1)}}, "BuildMart", day("2024-03-10"))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = l.RecordMaterialPurchase([]MaterialItem{{Material: "Paint", Quantity: 1, UnitCost: d(-1)}}, "BuildMart", day("2024-03-10"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRecordLabor(t *testing.T) {
	l := openTestLedger(t, 1000)

	tests := []struct {
		name    string
		workers []WorkerEntry
		wantErr error
	}{
		{
			name:    "negative rate",
			workers: []WorkerEntry{{Name: "Raj Singh", Role: RoleHelper, Rate: d(-300), Hours: d(8)}},
			wantErr: ErrInvalidRate,
		},
		{
			name:    "negative hours",
			workers: []WorkerEntry{{Name: "Raj Singh", Role: RoleHelper, Rate: d(300), Hours: d(-8)}},
			wantErr: ErrInvalidHours,
		},
		{
			name:    "unknown role",
			workers: []WorkerEntry{{Name: "Raj Singh", Role: LaborRole("Boss"), Rate: d(300), Hours: d(8)}},
			wantErr: ErrInvalidRole,
		},
		{
			name: "second worker invalid rejects whole batch",
			workers: []WorkerEntry{
				{Name: "Priya Patel", Role: RoleMain, Rate: d(550), Hours: d(8)},
				{Name: "Raj Singh", Role: RoleHelper, Rate: d(300), Hours: d(-1)},
			},
			wantErr: ErrInvalidHours,
		},
		{
			name:    "empty batch",
			wantErr: ErrEmptyBatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.RecordLabor(tt.workers, day("2024-02-15"))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, got.Transactions)
		})
	}

	t.Run("zero rate and zero hours are allowed", func(t *testing.T) {
		got, err := l.RecordLabor([]WorkerEntry{
			{Name: "Volunteer", Role: RoleHelper, Rate: d(0), Hours: d(4)},
			{Name: "Raj Singh", Role: RoleHelper, Rate: d(300), Hours: d(0)},
		}, day("2024-02-15"))
		require.NoError(t, err)
		require.Len(t, got.Transactions, 2)
		assert.True(t, got.Transactions[0].Labor.Cost.IsZero())
		assert.True(t, got.Transactions[1].Labor.Cost.IsZero())
	})

	t.Run("fractional hours", func(t *testing.T) {
		got, err := l.RecordLabor([]WorkerEntry{
			{Name: "Priya Patel", Role: RoleMain, Rate: d(550), Hours: decimal.RequireFromString("7.5")},
		}, day("2024-02-15"))
		require.NoError(t, err)
		assert.Equal(t, "4125", got.Transactions[0].Labor.Cost.String())
	})
}

func TestRemainingBudget_MatchesIndependentReplay(t *testing.T) {
	l := openTestLedger(t, 5000)
	var err error

	for i := int64(1); i <= 20; i++ {
		switch i % 3 {
		case 0:
			l, err = l.RecordPayment(d(100*i), ModeCredit, day("2024-01-15"))
		case 1:
			l, err = l.RecordMaterialPurchase([]MaterialItem{{Material: "Paint", Quantity: i, UnitCost: d(30)}}, "Distributor B", day("2024-01-15"))
		case 2:
			l, err = l.RecordLabor([]WorkerEntry{{Name: "John Doe", Role: RoleMain, Rate: d(20), Hours: d(i)}}, day("2024-01-15"))
		}
		require.NoError(t, err)

		want := l.AllocatedBudget
		for _, tx := range l.Transactions {
			switch tx.Kind {
			case KindPayment:
				want = want.Add(tx.Payment.Amount)
			case KindMaterial:
				want = want.Sub(tx.Material.Cost)
			case KindLabor:
				want = want.Sub(tx.Labor.Cost)
			}
		}
		assert.True(t, want.Equal(l.RemainingBudget()), "after %d transactions", len(l.Transactions))
	}
}

func TestOverBudget_IsRepresentable(t *testing.T) {
	l := openTestLedger(t, 1000)

	l, err := l.RecordMaterialPurchase([]MaterialItem{{Material: "Wood Panels", Quantity: 10, UnitCost: d(300)}}, "Distributor A", day("2024-03-10"))
	require.NoError(t, err)
	assert.True(t, l.IsOverBudget())
	assert.True(t, d(2000).Equal(l.Overspend()))

	l, err = l.RecordLabor([]WorkerEntry{{Name: "Jane Doe", Role: RoleHelper, Rate: d(100), Hours: d(1)}}, day("2024-03-11"))
	require.NoError(t, err, "overspend never blocks further transactions")
	assert.True(t, d(-2100).Equal(l.RemainingBudget()))
}

func TestWithBudget(t *testing.T) {
	l := openTestLedger(t, 1000)

	got, err := l.WithBudget(d(2500))
	require.NoError(t, err)
	assert.True(t, d(2500).Equal(got.RemainingBudget()))

	_, err = l.WithBudget(d(-1))
	assert.ErrorIs(t, err, ErrInvalidBudget)

	_, err = Open("client-1", d(-5), day("2024-01-01"))
	assert.ErrorIs(t, err, ErrInvalidBudget)
}

func TestBreakdownAndFilter(t *testing.T) {
	l := openTestLedger(t, 0)
	for _, s := range l.Breakdown() {
		assert.True(t, s.Percent.IsZero())
	}

	l, err := l.RecordPayment(d(500), ModeCash, day("2024-01-15"))
	require.NoError(t, err)
	l, err = l.RecordMaterialPurchase([]MaterialItem{{Material: "Paint", Quantity: 5, UnitCost: d(60)}}, "Distributor B", day("2024-03-15"))
	require.NoError(t, err)
	l, err = l.RecordLabor([]WorkerEntry{{Name: "Jane Doe", Role: RoleHelper, Rate: d(20), Hours: d(10)}}, day("2024-03-16"))
	require.NoError(t, err)

	shares := l.Breakdown()
	require.Len(t, shares, 3)
	assert.Equal(t, KindMaterial, shares[0].Kind)
	assert.Equal(t, "30", shares[0].Percent.String())
	assert.Equal(t, "20", shares[1].Percent.String())
	assert.Equal(t, "50", shares[2].Percent.String())

	assert.Len(t, l.Filter(KindPayment), 1)
	assert.Len(t, l.Filter(KindLabor), 1)
}

func TestSince(t *testing.T) {
	l := openTestLedger(t, 1000)
	l, err := l.RecordPayment(d(1), ModeCash, day("2024-01-15"))
	require.NoError(t, err)
	mark := l.NextID() - 1

	l, err = l.RecordLabor([]WorkerEntry{
		{Name: "A", Role: RoleMain, Rate: d(1), Hours: d(1)},
		{Name: "B", Role: RoleHelper, Rate: d(1), Hours: d(1)},
	}, day("2024-01-16"))
	require.NoError(t, err)

	tail := l.Since(mark)
	require.Len(t, tail, 2)
	assert.Equal(t, int64(2), tail[0].ID)
	assert.Equal(t, int64(3), tail[1].ID)
	assert.Empty(t, l.Since(3))
}

func TestParsers(t *testing.T) {
	mode, err := ParsePaymentMode("check")
	require.NoError(t, err)
	assert.Equal(t, ModeCheck, mode)

	role, err := ParseLaborRole(" HELPER ")
	require.NoError(t, err)
	assert.Equal(t, RoleHelper, role)

	kind, err := ParseKind("Material")
	require.NoError(t, err)
	assert.Equal(t, KindMaterial, kind)

	_, err = ParseKind("refund")
	assert.Error(t, err)
}
