// Package ledger contains the pure business logic for a client's project
// ledger: an append-only transaction log and the budget figures derived from it.
// This is part of the Functional Core - no I/O, only pure functions.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidQuantity    = errors.New("quantity must be a positive integer")
	ErrInvalidRate        = errors.New("rate must not be negative")
	ErrInvalidHours       = errors.New("hours must not be negative")
	ErrInvalidBudget      = errors.New("budget must not be negative")
	ErrInvalidPaymentMode = errors.New("payment mode must be Cash, Check or Credit")
	ErrInvalidRole        = errors.New("labor role must be Main or Helper")
	ErrMissingName        = errors.New("name is required")
	ErrEmptyBatch         = errors.New("batch has no entries")
	ErrNotInCatalog       = errors.New("not in the catalog")
	ErrInvalidKind        = errors.New("transaction kind must be payment, material or labor")
	ErrInvalidDate        = errors.New("date must be YYYY-MM-DD")
)

// Kind tags which variant a Transaction carries.
type Kind string

const (
	KindPayment  Kind = "payment"
	KindMaterial Kind = "material"
	KindLabor    Kind = "labor"
)

// ParseKind parses a transaction kind, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindPayment, KindMaterial, KindLabor:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// PaymentMode is how a client paid.
type PaymentMode string

const (
	ModeCash   PaymentMode = "Cash"
	ModeCheck  PaymentMode = "Check"
	ModeCredit PaymentMode = "Credit"
)

// ParsePaymentMode parses a payment mode, case-insensitively.
func ParsePaymentMode(s string) (PaymentMode, error) {
	for _, m := range []PaymentMode{ModeCash, ModeCheck, ModeCredit} {
		if strings.EqualFold(strings.TrimSpace(s), string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMode, s)
}

// LaborRole is a worker's role on site.
type LaborRole string

const (
	RoleMain   LaborRole = "Main"
	RoleHelper LaborRole = "Helper"
)

// ParseLaborRole parses a labor role, case-insensitively.
func ParseLaborRole(s string) (LaborRole, error) {
	for _, r := range []LaborRole{RoleMain, RoleHelper} {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// Payment is money received from the client.
type Payment struct {
	Amount decimal.Decimal
	Mode   PaymentMode
}

// Material is one purchased line item. Cost is Quantity x UnitCost.
type Material struct {
	Name        string
	Quantity    int64
	UnitCost    decimal.Decimal
	Cost        decimal.Decimal
	Distributor string
}

// Labor is one worker's charge. Cost is Rate x Hours.
type Labor struct {
	Worker string
	Role   LaborRole
	Rate   decimal.Decimal
	Hours  decimal.Decimal
	Cost   decimal.Decimal
}

// Transaction is one entry in the log. Exactly one of Payment, Material and
// Labor is set, matching Kind. IDs increase strictly within a ledger.
type Transaction struct {
	ID       int64
	Kind     Kind
	Date     time.Time
	Payment  *Payment
	Material *Material
	Labor    *Labor
}

// Effect is the transaction's signed effect on the remaining budget.
func (t Transaction) Effect() decimal.Decimal {
	switch t.Kind {
	case KindPayment:
		return t.Payment.Amount
	case KindMaterial:
		return t.Material.Cost.Neg()
	case KindLabor:
		return t.Labor.Cost.Neg()
	}
	return decimal.Zero
}

// Description is a one-line summary used by history views.
func (t Transaction) Description() string {
	switch t.Kind {
	case KindPayment:
		return fmt.Sprintf("payment %s (%s)", t.Payment.Amount.StringFixed(2), t.Payment.Mode)
	case KindMaterial:
		return fmt.Sprintf("%d x %s @ %s from %s", t.Material.Quantity, t.Material.Name,
			t.Material.UnitCost.StringFixed(2), t.Material.Distributor)
	case KindLabor:
		return fmt.Sprintf("%s (%s) %s h @ %s", t.Labor.Worker, t.Labor.Role,
			t.Labor.Hours.String(), t.Labor.Rate.StringFixed(2))
	}
	return string(t.Kind)
}
