// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/fitout/internal/ports/secondary"
)

// ClientRepository implements secondary.ClientRepository with SQLite.
type ClientRepository struct {
	db *sql.DB
}

// NewClientRepository creates a new SQLite client repository.
func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

const clientColumns = `c.id, c.name, c.email, c.phone, c.address, c.remark, c.stage_id, c.approved,
	EXISTS(SELECT 1 FROM ledgers l WHERE l.client_id = c.id), c.created_at, c.updated_at`

// Create persists a new client with its checklist.
func (r *ClientRepository) Create(ctx context.Context, client *secondary.ClientRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO clients (id, name, email, phone, address, remark, stage_id, approved) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		client.ID, client.Name, nullString(client.Email), nullString(client.Phone),
		nullString(client.Address), nullString(client.Remark), client.StageID, client.Approved,
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if err := writeCompletion(ctx, tx, client.ID, client.Completion); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID retrieves a client and its checklist.
func (r *ClientRepository) GetByID(ctx context.Context, id string) (*secondary.ClientRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+clientColumns+" FROM clients c WHERE c.id = ?", id)
	record, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("client %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	completion, err := r.loadCompletion(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	record.Completion = completion[id]
	return record, nil
}

// List retrieves clients matching the given filters, oldest first.
func (r *ClientRepository) List(ctx context.Context, filters secondary.ClientFilters) ([]*secondary.ClientRecord, error) {
	query := "SELECT " + clientColumns + " FROM clients c WHERE 1=1"
	args := []any{}

	if filters.StageID != "" {
		query += " AND c.stage_id = ?"
		args = append(args, filters.StageID)
	}
	if filters.Approved != nil {
		query += " AND c.approved = ?"
		args = append(args, *filters.Approved)
	}
	query += " ORDER BY c.created_at ASC, c.rowid ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*secondary.ClientRecord
	var ids []string
	for rows.Next() {
		record, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, record)
		ids = append(ids, record.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	completion, err := r.loadCompletion(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range clients {
		c.Completion = completion[c.ID]
	}
	return clients, nil
}

// Save overwrites a client's attributes and replaces its checklist.
func (r *ClientRepository) Save(ctx context.Context, client *secondary.ClientRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE clients SET name = ?, email = ?, phone = ?, address = ?, remark = ?, stage_id = ?, approved = ?,
			updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		client.Name, nullString(client.Email), nullString(client.Phone), nullString(client.Address),
		nullString(client.Remark), client.StageID, client.Approved, client.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("client %s: %w", client.ID, secondary.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM client_substages WHERE client_id = ?", client.ID); err != nil {
		return fmt.Errorf("failed to clear checklist: %w", err)
	}
	if err := writeCompletion(ctx, tx, client.ID, client.Completion); err != nil {
		return err
	}
	return tx.Commit()
}

func writeCompletion(ctx context.Context, tx *sql.Tx, clientID string, completion map[string]bool) error {
	for subID, done := range completion {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO client_substages (client_id, substage_id, done) VALUES (?, ?, ?)",
			clientID, subID, done,
		)
		if err != nil {
			return fmt.Errorf("failed to write checklist item %s: %w", subID, err)
		}
	}
	return nil
}

func (r *ClientRepository) loadCompletion(ctx context.Context, ids []string) (map[string]map[string]bool, error) {
	out := make(map[string]map[string]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
		out[id] = map[string]bool{}
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT client_id, substage_id, done FROM client_substages WHERE client_id IN (?"+strings.Repeat(", ?", len(ids)-1)+")",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load checklists: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var clientID, subID string
		var done bool
		if err := rows.Scan(&clientID, &subID, &done); err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		out[clientID][subID] = done
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*secondary.ClientRecord, error) {
	var (
		email, phone, address, remark sql.NullString
		createdAt, updatedAt          time.Time
	)
	record := &secondary.ClientRecord{}
	err := row.Scan(&record.ID, &record.Name, &email, &phone, &address, &remark,
		&record.StageID, &record.Approved, &record.HasLedger, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	record.Email = email.String
	record.Phone = phone.String
	record.Address = address.String
	record.Remark = remark.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)
	return record, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Ensure ClientRepository implements the interface
var _ secondary.ClientRepository = (*ClientRepository)(nil)
