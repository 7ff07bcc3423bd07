package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CrewMember is a worker saved in a crew with their usual role and rate.
type CrewMember struct {
	Name string
	Role LaborRole
	Rate decimal.Decimal
}

// Crew is a named labor set that can be booked onto a ledger in one step.
type Crew struct {
	ID       string
	ClientID string
	Name     string
	Members  []CrewMember
}

// NewCrew validates and builds a crew.
func NewCrew(id, clientID, name string, members []CrewMember) (Crew, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Crew{}, fmt.Errorf("crew %w", ErrMissingName)
	}
	if len(members) == 0 {
		return Crew{}, fmt.Errorf("crew %s: %w", name, ErrEmptyBatch)
	}
	out := make([]CrewMember, len(members))
	for i, m := range members {
		m.Name = strings.TrimSpace(m.Name)
		if m.Name == "" {
			return Crew{}, fmt.Errorf("crew %s member %d: %w", name, i+1, ErrMissingName)
		}
		if _, err := ParseLaborRole(string(m.Role)); err != nil {
			return Crew{}, fmt.Errorf("crew %s member %d (%s): %w", name, i+1, m.Name, err)
		}
		if m.Rate.IsNegative() {
			return Crew{}, fmt.Errorf("crew %s member %d (%s): %w", name, i+1, m.Name, ErrInvalidRate)
		}
		out[i] = m
	}
	return Crew{ID: id, ClientID: clientID, Name: name, Members: out}, nil
}

// ApplyCrew books every member of the crew for the same number of hours.
func (l Ledger) ApplyCrew(c Crew, hours decimal.Decimal, date time.Time) (Ledger, error) {
	workers := make([]WorkerEntry, len(c.Members))
	for i, m := range c.Members {
		workers[i] = WorkerEntry{Name: m.Name, Role: m.Role, Rate: m.Rate, Hours: hours}
	}
	return l.RecordLabor(workers, date)
}
