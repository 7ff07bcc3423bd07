package ledger

import "github.com/shopspring/decimal"

// Totals are the per-category sums of a ledger's log.
type Totals struct {
	Payments  decimal.Decimal
	Materials decimal.Decimal
	Labor     decimal.Decimal
}

// Share is one category's slice of the ledger's activity, for charts.
type Share struct {
	Kind    Kind
	Amount  decimal.Decimal
	Percent decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// CategoryTotals sums each category by replaying the log.
func (l Ledger) CategoryTotals() Totals {
	t := Totals{Payments: decimal.Zero, Materials: decimal.Zero, Labor: decimal.Zero}
	for _, tx := range l.Transactions {
		switch tx.Kind {
		case KindPayment:
			t.Payments = t.Payments.Add(tx.Payment.Amount)
		case KindMaterial:
			t.Materials = t.Materials.Add(tx.Material.Cost)
		case KindLabor:
			t.Labor = t.Labor.Add(tx.Labor.Cost)
		}
	}
	return t
}

// RemainingBudget is allocated + payments - materials - labor, recomputed from
// the full log on every call.
func (l Ledger) RemainingBudget() decimal.Decimal {
	remaining := l.AllocatedBudget
	for _, tx := range l.Transactions {
		remaining = remaining.Add(tx.Effect())
	}
	return remaining
}

// IsOverBudget reports whether the remaining budget is negative. It never
// blocks further transactions.
func (l Ledger) IsOverBudget() bool {
	return l.RemainingBudget().IsNegative()
}

// Overspend is how far below zero the remaining budget is, or zero.
func (l Ledger) Overspend() decimal.Decimal {
	if r := l.RemainingBudget(); r.IsNegative() {
		return r.Neg()
	}
	return decimal.Zero
}

// TotalSpent is the sum of material and labor costs.
func (l Ledger) TotalSpent() decimal.Decimal {
	t := l.CategoryTotals()
	return t.Materials.Add(t.Labor)
}

// Breakdown splits the ledger's activity into materials, labor and payments
// with each category's percentage of the whole. Percentages are zero for an
// empty ledger.
func (l Ledger) Breakdown() []Share {
	t := l.CategoryTotals()
	shares := []Share{
		{Kind: KindMaterial, Amount: t.Materials},
		{Kind: KindLabor, Amount: t.Labor},
		{Kind: KindPayment, Amount: t.Payments},
	}
	sum := t.Materials.Add(t.Labor).Add(t.Payments)
	for i := range shares {
		if sum.IsZero() {
			shares[i].Percent = decimal.Zero
			continue
		}
		shares[i].Percent = shares[i].Amount.Mul(hundred).DivRound(sum, 2)
	}
	return shares
}

// Filter returns the transactions of one kind in log order.
func (l Ledger) Filter(kind Kind) []Transaction {
	var out []Transaction
	for _, tx := range l.Transactions {
		if tx.Kind == kind {
			out = append(out, tx)
		}
	}
	return out
}
