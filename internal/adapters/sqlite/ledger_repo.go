package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/fitout/internal/ports/secondary"
)

// LedgerRepository implements secondary.LedgerRepository with SQLite.
type LedgerRepository struct {
	db *sql.DB
}

// NewLedgerRepository creates a new SQLite ledger repository.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Create persists a newly opened, empty ledger.
func (r *LedgerRepository) Create(ctx context.Context, ledger *secondary.LedgerRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO ledgers (client_id, allocated_budget, opened_at) VALUES (?, ?, ?)",
		ledger.ClientID, ledger.AllocatedBudget, ledger.OpenedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ledger: %w", err)
	}
	return nil
}

// Delete removes a ledger; its transactions go with it through the foreign key.
func (r *LedgerRepository) Delete(ctx context.Context, clientID string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM ledgers WHERE client_id = ?", clientID)
	if err != nil {
		return fmt.Errorf("failed to delete ledger: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("ledger %s: %w", clientID, secondary.ErrNotFound)
	}
	return nil
}

// GetByClient retrieves a ledger with its full transaction log in id order.
func (r *LedgerRepository) GetByClient(ctx context.Context, clientID string) (*secondary.LedgerRecord, error) {
	record := &secondary.LedgerRecord{ClientID: clientID}
	err := r.db.QueryRowContext(ctx,
		"SELECT allocated_budget, opened_at FROM ledgers WHERE client_id = ?",
		clientID,
	).Scan(&record.AllocatedBudget, &record.OpenedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("ledger %s: %w", clientID, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, date, amount, mode, material, quantity, unit_cost, distributor,
			worker, role, rate, hours, cost, created_at
		FROM ledger_transactions WHERE client_id = ? ORDER BY id ASC`,
		clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		record.Transactions = append(record.Transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return record, nil
}

// Exists reports whether a client has a ledger.
func (r *LedgerRepository) Exists(ctx context.Context, clientID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ledgers WHERE client_id = ?", clientID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check ledger: %w", err)
	}
	return count > 0, nil
}

// UpdateBudget changes the allocated budget.
func (r *LedgerRepository) UpdateBudget(ctx context.Context, clientID string, budget decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE ledgers SET allocated_budget = ?, updated_at = CURRENT_TIMESTAMP WHERE client_id = ?",
		budget, clientID,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("ledger %s: %w", clientID, secondary.ErrNotFound)
	}
	return nil
}

// AppendTransactions inserts transactions atomically; all or none. An id at or
// below the current tail rolls the whole batch back.
func (r *LedgerRepository) AppendTransactions(ctx context.Context, clientID string, txs []*secondary.TransactionRecord) error {
	if len(txs) == 0 {
		return nil
	}

	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbtx.Rollback()

	var last int64
	if err := dbtx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(id), 0) FROM ledger_transactions WHERE client_id = ?", clientID,
	).Scan(&last); err != nil {
		return fmt.Errorf("failed to read log tail: %w", err)
	}

	for _, t := range txs {
		if t.ID <= last {
			return fmt.Errorf("transaction id %d does not follow %d", t.ID, last)
		}
		last = t.ID

		args := append([]any{clientID, t.ID, t.Kind, t.Date}, variantArgs(t)...)
		_, err := dbtx.ExecContext(ctx,
			`INSERT INTO ledger_transactions (client_id, id, kind, date, amount, mode, material, quantity,
				unit_cost, distributor, worker, role, rate, hours, cost)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			args...,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %d: %w", t.ID, err)
		}
	}

	if _, err := dbtx.ExecContext(ctx,
		"UPDATE ledgers SET updated_at = CURRENT_TIMESTAMP WHERE client_id = ?", clientID,
	); err != nil {
		return fmt.Errorf("failed to touch ledger: %w", err)
	}
	return dbtx.Commit()
}

// variantArgs returns the variant columns of a transaction, NULL where the
// kind does not use them.
func variantArgs(t *secondary.TransactionRecord) []any {
	var (
		amount, unitCost, rate, hours, cost decimal.NullDecimal
		mode, material, distributor, worker sql.NullString
		role                                sql.NullString
		quantity                            sql.NullInt64
	)
	switch t.Kind {
	case "payment":
		amount = decimal.NewNullDecimal(t.Amount)
		mode = nullString(t.Mode)
	case "material":
		material = nullString(t.Material)
		quantity = sql.NullInt64{Int64: t.Quantity, Valid: true}
		unitCost = decimal.NewNullDecimal(t.UnitCost)
		distributor = nullString(t.Distributor)
		cost = decimal.NewNullDecimal(t.Cost)
	case "labor":
		worker = nullString(t.Worker)
		role = nullString(t.Role)
		rate = decimal.NewNullDecimal(t.Rate)
		hours = decimal.NewNullDecimal(t.Hours)
		cost = decimal.NewNullDecimal(t.Cost)
	}
	return []any{amount, mode, material, quantity, unitCost, distributor, worker, role, rate, hours, cost}
}

func scanTransaction(row rowScanner) (*secondary.TransactionRecord, error) {
	var (
		amount, unitCost, rate, hours, cost decimal.NullDecimal
		mode, material, distributor, worker sql.NullString
		role                                sql.NullString
		quantity                            sql.NullInt64
		createdAt                           time.Time
	)
	t := &secondary.TransactionRecord{}
	err := row.Scan(&t.ID, &t.Kind, &t.Date, &amount, &mode, &material, &quantity, &unitCost,
		&distributor, &worker, &role, &rate, &hours, &cost, &createdAt)
	if err != nil {
		return nil, err
	}
	t.Amount = amount.Decimal
	t.Mode = mode.String
	t.Material = material.String
	t.Quantity = quantity.Int64
	t.UnitCost = unitCost.Decimal
	t.Distributor = distributor.String
	t.Worker = worker.String
	t.Role = role.String
	t.Rate = rate.Decimal
	t.Hours = hours.Decimal
	t.Cost = cost.Decimal
	t.CreatedAt = createdAt.Format(time.RFC3339)
	return t, nil
}

// Ensure LedgerRepository implements the interface
var _ secondary.LedgerRepository = (*LedgerRepository)(nil)
