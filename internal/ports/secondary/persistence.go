// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNotFound is wrapped by repositories when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// ClientRepository defines the secondary port for client persistence.
type ClientRepository interface {
	// Create persists a new client with its checklist.
	Create(ctx context.Context, client *ClientRecord) error

	// GetByID retrieves a client and its checklist.
	GetByID(ctx context.Context, id string) (*ClientRecord, error)

	// List retrieves clients matching the given filters, oldest first.
	List(ctx context.Context, filters ClientFilters) ([]*ClientRecord, error)

	// Save overwrites a client's attributes and replaces its checklist.
	Save(ctx context.Context, client *ClientRecord) error
}

// ClientRecord represents a client as stored in persistence.
type ClientRecord struct {
	ID         string
	Name       string
	Email      string // Empty string means null
	Phone      string // Empty string means null
	Address    string // Empty string means null
	Remark     string // Empty string means null
	StageID    string
	Completion map[string]bool // sub-stage id -> done, current stage only
	Approved   bool
	HasLedger  bool // Read-only, derived from the ledgers table
	CreatedAt  string
	UpdatedAt  string
}

// ClientFilters contains filter options for querying clients.
type ClientFilters struct {
	StageID  string
	Approved *bool
}

// LedgerRepository defines the secondary port for ledger persistence.
// The transaction log is append-only: there is no update or delete.
type LedgerRepository interface {
	// Create persists a newly opened, empty ledger.
	Create(ctx context.Context, ledger *LedgerRecord) error

	// GetByClient retrieves a ledger with its full transaction log in id order.
	GetByClient(ctx context.Context, clientID string) (*LedgerRecord, error)

	// Exists reports whether a client has a ledger.
	Exists(ctx context.Context, clientID string) (bool, error)

	// UpdateBudget changes the allocated budget.
	UpdateBudget(ctx context.Context, clientID string, budget decimal.Decimal) error

	// AppendTransactions inserts transactions atomically; all or none.
	AppendTransactions(ctx context.Context, clientID string, txs []*TransactionRecord) error

	// Delete removes a ledger and its transactions.
	Delete(ctx context.Context, clientID string) error
}

// LedgerRecord represents a ledger as stored in persistence.
type LedgerRecord struct {
	ClientID        string
	AllocatedBudget decimal.Decimal
	OpenedAt        string
	Transactions    []*TransactionRecord
}

// TransactionRecord is one row of the transaction log. Columns not used by
// Kind are zero.
type TransactionRecord struct {
	ID          int64
	Kind        string
	Date        string // YYYY-MM-DD
	Amount      decimal.Decimal
	Mode        string
	Material    string
	Quantity    int64
	UnitCost    decimal.Decimal
	Distributor string
	Worker      string
	Role        string
	Rate        decimal.Decimal
	Hours       decimal.Decimal
	Cost        decimal.Decimal
	CreatedAt   string
}

// CrewRepository defines the secondary port for saved labor sets.
type CrewRepository interface {
	// Create persists a new crew with its members.
	Create(ctx context.Context, crew *CrewRecord) error

	// GetByID retrieves a crew with its members.
	GetByID(ctx context.Context, id string) (*CrewRecord, error)

	// ListByClient retrieves a client's crews.
	ListByClient(ctx context.Context, clientID string) ([]*CrewRecord, error)

	// GetNextID returns the next available crew ID.
	GetNextID(ctx context.Context) (string, error)
}

// CrewRecord represents a crew as stored in persistence.
type CrewRecord struct {
	ID        string
	ClientID  string
	Name      string
	Members   []CrewMemberRecord
	CreatedAt string
}

// CrewMemberRecord is one member row of a crew.
type CrewMemberRecord struct {
	Name string
	Role string
	Rate decimal.Decimal
}
