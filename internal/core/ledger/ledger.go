package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger is one approved client's budget and transaction log.
// The remaining budget is never stored; it is derived from the log on demand.
type Ledger struct {
	ClientID        string
	AllocatedBudget decimal.Decimal
	OpenedAt        time.Time
	Transactions    []Transaction
}

// MaterialItem is one line of a material purchase request.
type MaterialItem struct {
	Material string
	Quantity int64
	UnitCost decimal.Decimal
}

// WorkerEntry is one line of a labor request.
type WorkerEntry struct {
	Name  string
	Role  LaborRole
	Rate  decimal.Decimal
	Hours decimal.Decimal
}

// Open creates an empty ledger for a client approved at openedAt.
func Open(clientID string, budget decimal.Decimal, openedAt time.Time) (Ledger, error) {
	if clientID == "" {
		return Ledger{}, fmt.Errorf("client id is required")
	}
	if budget.IsNegative() {
		return Ledger{}, ErrInvalidBudget
	}
	return Ledger{ClientID: clientID, AllocatedBudget: budget, OpenedAt: openedAt}, nil
}

// WithBudget returns the ledger with a new allocated budget.
func (l Ledger) WithBudget(budget decimal.Decimal) (Ledger, error) {
	if budget.IsNegative() {
		return l, ErrInvalidBudget
	}
	out := l.clone()
	out.AllocatedBudget = budget
	return out, nil
}

// RecordPayment appends a payment.
func (l Ledger) RecordPayment(amount decimal.Decimal, mode PaymentMode, date time.Time) (Ledger, error) {
	if !amount.IsPositive() {
		return l, ErrInvalidAmount
	}
	if _, err := ParsePaymentMode(string(mode)); err != nil {
		return l, err
	}
	return l.append(Transaction{
		Kind:    KindPayment,
		Date:    date,
		Payment: &Payment{Amount: amount, Mode: mode},
	}), nil
}

// RecordMaterialPurchase appends one material transaction per item, all sharing
// distributor and date. If any item is invalid nothing is appended.
func (l Ledger) RecordMaterialPurchase(items []MaterialItem, distributor string, date time.Time) (Ledger, error) {
	if len(items) == 0 {
		return l, ErrEmptyBatch
	}
	distributor = strings.TrimSpace(distributor)
	if distributor == "" {
		return l, fmt.Errorf("distributor: %w", ErrMissingName)
	}

	txs := make([]Transaction, 0, len(items))
	for i, item := range items {
		name := strings.TrimSpace(item.Material)
		switch {
		case name == "":
			return l, fmt.Errorf("item %d: material %w", i+1, ErrMissingName)
		case item.Quantity <= 0:
			return l, fmt.Errorf("item %d (%s): %w", i+1, name, ErrInvalidQuantity)
		case item.UnitCost.IsNegative():
			return l, fmt.Errorf("item %d (%s): unit cost: %w", i+1, name, ErrInvalidAmount)
		}
		txs = append(txs, Transaction{
			Kind: KindMaterial,
			Date: date,
			Material: &Material{
				Name:        name,
				Quantity:    item.Quantity,
				UnitCost:    item.UnitCost,
				Cost:        item.UnitCost.Mul(decimal.NewFromInt(item.Quantity)),
				Distributor: distributor,
			},
		})
	}
	return l.append(txs...), nil
}

// RecordLabor appends one labor transaction per worker. If any worker is
// invalid nothing is appended.
func (l Ledger) RecordLabor(workers []WorkerEntry, date time.Time) (Ledger, error) {
	if len(workers) == 0 {
		return l, ErrEmptyBatch
	}

	txs := make([]Transaction, 0, len(workers))
	for i, w := range workers {
		name := strings.TrimSpace(w.Name)
		if name == "" {
			return l, fmt.Errorf("worker %d: %w", i+1, ErrMissingName)
		}
		if _, err := ParseLaborRole(string(w.Role)); err != nil {
			return l, fmt.Errorf("worker %d (%s): %w", i+1, name, err)
		}
		if w.Rate.IsNegative() {
			return l, fmt.Errorf("worker %d (%s): %w", i+1, name, ErrInvalidRate)
		}
		if w.Hours.IsNegative() {
			return l, fmt.Errorf("worker %d (%s): %w", i+1, name, ErrInvalidHours)
		}
		txs = append(txs, Transaction{
			Kind: KindLabor,
			Date: date,
			Labor: &Labor{
				Worker: name,
				Role:   w.Role,
				Rate:   w.Rate,
				Hours:  w.Hours,
				Cost:   w.Rate.Mul(w.Hours),
			},
		})
	}
	return l.append(txs...), nil
}

// NextID is the id the next appended transaction will receive.
func (l Ledger) NextID() int64 {
	if n := len(l.Transactions); n > 0 {
		return l.Transactions[n-1].ID + 1
	}
	return 1
}

// append returns a copy of the ledger with txs added under fresh ids.
func (l Ledger) append(txs ...Transaction) Ledger {
	out := l.clone()
	next := l.NextID()
	for _, tx := range txs {
		tx.ID = next
		next++
		out.Transactions = append(out.Transactions, tx)
	}
	return out
}

func (l Ledger) clone() Ledger {
	out := l
	out.Transactions = make([]Transaction, len(l.Transactions))
	copy(out.Transactions, l.Transactions)
	return out
}

// Since returns the transactions appended after the one with id afterID.
// Persistence uses it to write only the new tail of the log.
func (l Ledger) Since(afterID int64) []Transaction {
	for i, tx := range l.Transactions {
		if tx.ID > afterID {
			out := make([]Transaction, len(l.Transactions)-i)
			copy(out, l.Transactions[i:])
			return out
		}
	}
	return nil
}
