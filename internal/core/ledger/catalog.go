package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CatalogMaterial is a material with its standard unit cost.
type CatalogMaterial struct {
	Name     string
	UnitCost decimal.Decimal
}

// CatalogLaborer is a known worker with default role and hourly rate.
type CatalogLaborer struct {
	Name string
	Role LaborRole
	Rate decimal.Decimal
}

// Catalog holds the studio's price list, distributors and laborers.
// Lookups are case-insensitive on name.
type Catalog struct {
	Materials    []CatalogMaterial
	Distributors []string
	Laborers     []CatalogLaborer
}

// Material looks up a catalog material by name.
func (c Catalog) Material(name string) (CatalogMaterial, bool) {
	for _, m := range c.Materials {
		if strings.EqualFold(m.Name, strings.TrimSpace(name)) {
			return m, true
		}
	}
	return CatalogMaterial{}, false
}

// Laborer looks up a catalog laborer by name.
func (c Catalog) Laborer(name string) (CatalogLaborer, bool) {
	for _, l := range c.Laborers {
		if strings.EqualFold(l.Name, strings.TrimSpace(name)) {
			return l, true
		}
	}
	return CatalogLaborer{}, false
}

// HasDistributor reports whether name is a known distributor.
func (c Catalog) HasDistributor(name string) bool {
	for _, d := range c.Distributors {
		if strings.EqualFold(d, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// PriceItem fills in a missing unit cost from the catalog. An item with an
// explicit unit cost is returned as is.
func (c Catalog) PriceItem(item MaterialItem, explicit bool) (MaterialItem, error) {
	if explicit {
		return item, nil
	}
	m, ok := c.Material(item.Material)
	if !ok {
		return item, fmt.Errorf("material %q: %w; give a unit cost", item.Material, ErrNotInCatalog)
	}
	item.Material = m.Name
	item.UnitCost = m.UnitCost
	return item, nil
}

// FillWorker completes a worker's role and rate from the laborer catalog where
// they were not given.
func (c Catalog) FillWorker(w WorkerEntry, hasRole, hasRate bool) (WorkerEntry, error) {
	if hasRole && hasRate {
		return w, nil
	}
	l, ok := c.Laborer(w.Name)
	if !ok {
		return w, fmt.Errorf("laborer %q: %w; give role and rate", w.Name, ErrNotInCatalog)
	}
	w.Name = l.Name
	if !hasRole {
		w.Role = l.Role
	}
	if !hasRate {
		w.Rate = l.Rate
	}
	return w, nil
}
