package primary

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrLedgerNotOpen is returned for ledger commands against a client that has
// never been approved.
var ErrLedgerNotOpen = errors.New("ledger not open: client has not been approved")

// LedgerService defines the primary port for ledger operations.
type LedgerService interface {
	// GetLedger returns the derived budget figures for a client's ledger.
	GetLedger(ctx context.Context, clientID string) (*LedgerSummary, error)

	// SetBudget changes the allocated budget.
	SetBudget(ctx context.Context, clientID string, budget decimal.Decimal) (*LedgerSummary, error)

	// RecordPayment appends a payment.
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*LedgerSummary, error)

	// RecordMaterialPurchase appends one transaction per purchased item.
	RecordMaterialPurchase(ctx context.Context, req RecordMaterialPurchaseRequest) (*LedgerSummary, error)

	// RecordLabor appends one transaction per worker.
	RecordLabor(ctx context.Context, req RecordLaborRequest) (*LedgerSummary, error)

	// ListTransactions lists the log, optionally filtered by kind.
	ListTransactions(ctx context.Context, clientID, kind string) ([]*Transaction, error)

	// CreateCrew saves a named labor set for a client.
	CreateCrew(ctx context.Context, req CreateCrewRequest) (*Crew, error)

	// ListCrews lists a client's saved labor sets.
	ListCrews(ctx context.Context, clientID string) ([]*Crew, error)

	// ApplyCrew books every member of a crew for the same hours.
	ApplyCrew(ctx context.Context, req ApplyCrewRequest) (*LedgerSummary, error)

	// Catalog returns the material, distributor and laborer catalog.
	Catalog(ctx context.Context) *Catalog
}

// RecordPaymentRequest contains parameters for recording a payment.
type RecordPaymentRequest struct {
	ClientID string
	Amount   decimal.Decimal
	Mode     string
	Date     string // YYYY-MM-DD, empty means today
}

// MaterialLine is one requested material item. A nil UnitCost is priced from
// the catalog.
type MaterialLine struct {
	Material string           `json:"material"`
	Quantity int64            `json:"quantity"`
	UnitCost *decimal.Decimal `json:"unit_cost,omitempty"`
}

// RecordMaterialPurchaseRequest contains parameters for a material purchase.
type RecordMaterialPurchaseRequest struct {
	ClientID    string
	Items       []MaterialLine
	Distributor string
	Date        string
}

// WorkerLine is one requested labor entry. Empty Role or nil Rate are filled
// from the laborer catalog.
type WorkerLine struct {
	Name  string           `json:"name"`
	Role  string           `json:"role,omitempty"`
	Rate  *decimal.Decimal `json:"rate,omitempty"`
	Hours decimal.Decimal  `json:"hours"`
}

// RecordLaborRequest contains parameters for recording labor.
type RecordLaborRequest struct {
	ClientID string
	Workers  []WorkerLine
	Date     string
}

// CrewMemberLine is one requested crew member.
type CrewMemberLine struct {
	Name string           `json:"name"`
	Role string           `json:"role,omitempty"`
	Rate *decimal.Decimal `json:"rate,omitempty"`
}

// CreateCrewRequest contains parameters for saving a crew.
type CreateCrewRequest struct {
	ClientID string
	Name     string
	Members  []CrewMemberLine
}

// ApplyCrewRequest contains parameters for booking a crew.
type ApplyCrewRequest struct {
	ClientID string
	CrewID   string
	Hours    decimal.Decimal
	Date     string
}

// LedgerSummary carries a ledger's derived figures at the port boundary.
type LedgerSummary struct {
	ClientID         string          `json:"client_id"`
	AllocatedBudget  decimal.Decimal `json:"allocated_budget"`
	RemainingBudget  decimal.Decimal `json:"remaining_budget"`
	Payments         decimal.Decimal `json:"payments"`
	Materials        decimal.Decimal `json:"materials"`
	Labor            decimal.Decimal `json:"labor"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
	Overspend        decimal.Decimal `json:"overspend"`
	OverBudget       bool            `json:"over_budget"`
	TransactionCount int             `json:"transaction_count"`
	Breakdown        []CategoryShare `json:"breakdown"`
	OpenedAt         string          `json:"opened_at"`
}

// CategoryShare is one category's amount and percentage.
type CategoryShare struct {
	Kind    string          `json:"kind"`
	Amount  decimal.Decimal `json:"amount"`
	Percent decimal.Decimal `json:"percent"`
}

// Transaction is one log entry at the port boundary. Fields not used by the
// entry's kind are zero.
type Transaction struct {
	ID          int64            `json:"id"`
	Kind        string           `json:"kind"`
	Date        string           `json:"date"`
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Mode        string           `json:"mode,omitempty"`
	Material    string           `json:"material,omitempty"`
	Quantity    int64            `json:"quantity,omitempty"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	Distributor string           `json:"distributor,omitempty"`
	Worker      string           `json:"worker,omitempty"`
	Role        string           `json:"role,omitempty"`
	Rate        *decimal.Decimal `json:"rate,omitempty"`
	Hours       *decimal.Decimal `json:"hours,omitempty"`
	Cost        *decimal.Decimal `json:"cost,omitempty"`
}

// Crew is a saved labor set at the port boundary.
type Crew struct {
	ID       string           `json:"id"`
	ClientID string           `json:"client_id"`
	Name     string           `json:"name"`
	Members  []CrewMemberLine `json:"members"`
}

// Catalog is the studio's price list at the port boundary.
type Catalog struct {
	Materials    []CatalogMaterial `json:"materials"`
	Distributors []string          `json:"distributors"`
	Laborers     []CrewMemberLine  `json:"laborers"`
}

// CatalogMaterial is a material with its standard unit cost.
type CatalogMaterial struct {
	Name     string          `json:"name"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}
