package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/fitout/internal/ports/secondary"
)

// CrewRepository implements secondary.CrewRepository with SQLite.
type CrewRepository struct {
	db *sql.DB
}

// NewCrewRepository creates a new SQLite crew repository.
func NewCrewRepository(db *sql.DB) *CrewRepository {
	return &CrewRepository{db: db}
}

// Create persists a new crew with its members.
func (r *CrewRepository) Create(ctx context.Context, crew *secondary.CrewRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO crews (id, client_id, name) VALUES (?, ?, ?)",
		crew.ID, crew.ClientID, crew.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to create crew: %w", err)
	}

	for i, m := range crew.Members {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO crew_members (crew_id, position, name, role, rate) VALUES (?, ?, ?, ?, ?)",
			crew.ID, i, m.Name, m.Role, m.Rate,
		)
		if err != nil {
			return fmt.Errorf("failed to add crew member %s: %w", m.Name, err)
		}
	}
	return tx.Commit()
}

// GetByID retrieves a crew with its members.
func (r *CrewRepository) GetByID(ctx context.Context, id string) (*secondary.CrewRecord, error) {
	var createdAt time.Time
	record := &secondary.CrewRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, client_id, name, created_at FROM crews WHERE id = ?", id,
	).Scan(&record.ID, &record.ClientID, &record.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("crew %s: %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crew: %w", err)
	}
	record.CreatedAt = createdAt.Format(time.RFC3339)

	if record.Members, err = r.members(ctx, id); err != nil {
		return nil, err
	}
	return record, nil
}

// ListByClient retrieves a client's crews.
func (r *CrewRepository) ListByClient(ctx context.Context, clientID string) ([]*secondary.CrewRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, client_id, name, created_at FROM crews WHERE client_id = ? ORDER BY id ASC", clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list crews: %w", err)
	}

	var crews []*secondary.CrewRecord
	for rows.Next() {
		var createdAt time.Time
		record := &secondary.CrewRecord{}
		if err := rows.Scan(&record.ID, &record.ClientID, &record.Name, &createdAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan crew: %w", err)
		}
		record.CreatedAt = createdAt.Format(time.RFC3339)
		crews = append(crews, record)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Members are loaded after the outer cursor is closed; the pool holds a
	// single connection.
	for _, c := range crews {
		if c.Members, err = r.members(ctx, c.ID); err != nil {
			return nil, err
		}
	}
	return crews, nil
}

// GetNextID returns the next available crew ID.
func (r *CrewRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 5) AS INTEGER)), 0) FROM crews",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next crew ID: %w", err)
	}
	return fmt.Sprintf("SET-%03d", maxID+1), nil
}

func (r *CrewRepository) members(ctx context.Context, crewID string) ([]secondary.CrewMemberRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name, role, rate FROM crew_members WHERE crew_id = ? ORDER BY position ASC", crewID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load crew members: %w", err)
	}
	defer rows.Close()

	var members []secondary.CrewMemberRecord
	for rows.Next() {
		var m secondary.CrewMemberRecord
		if err := rows.Scan(&m.Name, &m.Role, &m.Rate); err != nil {
			return nil, fmt.Errorf("failed to scan crew member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// Ensure CrewRepository implements the interface
var _ secondary.CrewRepository = (*CrewRepository)(nil)
