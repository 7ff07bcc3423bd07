package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/fitout/internal/core/ledger"
	"github.com/example/fitout/internal/ports/primary"
	"github.com/example/fitout/internal/ports/secondary"
)

const dateLayout = "2006-01-02"

// LedgerServiceImpl implements the LedgerService interface.
type LedgerServiceImpl struct {
	clientRepo secondary.ClientRepository
	ledgerRepo secondary.LedgerRepository
	crewRepo   secondary.CrewRepository
	catalog    ledger.Catalog
	locks      *ClientLocks
	logger     *zap.Logger
	metrics    secondary.MetricsRecorder
	now        func() time.Time
}

// NewLedgerService creates a new LedgerService with injected dependencies.
func NewLedgerService(
	clientRepo secondary.ClientRepository,
	ledgerRepo secondary.LedgerRepository,
	crewRepo secondary.CrewRepository,
	catalog ledger.Catalog,
	locks *ClientLocks,
	logger *zap.Logger,
	metrics secondary.MetricsRecorder,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		clientRepo: clientRepo,
		ledgerRepo: ledgerRepo,
		crewRepo:   crewRepo,
		catalog:    catalog,
		locks:      locks,
		logger:     logger.Named("ledger"),
		metrics:    metrics,
		now:        time.Now,
	}
}

// GetLedger returns the derived budget figures for a client's ledger.
func (s *LedgerServiceImpl) GetLedger(ctx context.Context, clientID string) (*primary.LedgerSummary, error) {
	l, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return ledgerToSummary(l), nil
}

// SetBudget changes the allocated budget.
func (s *LedgerServiceImpl) SetBudget(ctx context.Context, clientID string, budget decimal.Decimal) (*primary.LedgerSummary, error) {
	unlock := s.locks.Lock(clientID)
	defer unlock()

	l, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	updated, err := l.WithBudget(budget)
	if err != nil {
		return nil, err
	}
	if err := s.ledgerRepo.UpdateBudget(ctx, clientID, updated.AllocatedBudget); err != nil {
		s.metrics.CommandFailed("set_budget")
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}
	s.logger.Info("budget changed",
		zap.String("client_id", clientID),
		zap.String("from", l.AllocatedBudget.String()),
		zap.String("to", updated.AllocatedBudget.String()))
	return ledgerToSummary(updated), nil
}

// RecordPayment appends a payment.
func (s *LedgerServiceImpl) RecordPayment(ctx context.Context, req primary.RecordPaymentRequest) (*primary.LedgerSummary, error) {
	mode, err := ledger.ParsePaymentMode(req.Mode)
	if err != nil {
		return nil, err
	}
	date, err := s.parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	return s.command(ctx, req.ClientID, "payment", func(l ledger.Ledger) (ledger.Ledger, error) {
		return l.RecordPayment(req.Amount, mode, date)
	})
}

// RecordMaterialPurchase appends one transaction per purchased item. Items
// without a unit cost are priced from the catalog.
func (s *LedgerServiceImpl) RecordMaterialPurchase(ctx context.Context, req primary.RecordMaterialPurchaseRequest) (*primary.LedgerSummary, error) {
	date, err := s.parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, ledger.ErrEmptyBatch
	}

	items := make([]ledger.MaterialItem, len(req.Items))
	for i, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("item %d (%s): %w", i+1, line.Material, ledger.ErrInvalidQuantity)
		}
		item := ledger.MaterialItem{Material: line.Material, Quantity: line.Quantity}
		if line.UnitCost != nil {
			item.UnitCost = *line.UnitCost
		}
		priced, err := s.catalog.PriceItem(item, line.UnitCost != nil)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		items[i] = priced
	}

	summary, err := s.command(ctx, req.ClientID, "material", func(l ledger.Ledger) (ledger.Ledger, error) {
		return l.RecordMaterialPurchase(items, req.Distributor, date)
	})
	if err == nil && len(s.catalog.Distributors) > 0 && !s.catalog.HasDistributor(req.Distributor) {
		s.logger.Warn("distributor not in catalog",
			zap.String("client_id", req.ClientID),
			zap.String("distributor", req.Distributor))
	}
	return summary, err
}

// RecordLabor appends one transaction per worker. Missing roles and rates are
// filled from the laborer catalog.
func (s *LedgerServiceImpl) RecordLabor(ctx context.Context, req primary.RecordLaborRequest) (*primary.LedgerSummary, error) {
	date, err := s.parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if len(req.Workers) == 0 {
		return nil, ledger.ErrEmptyBatch
	}

	workers := make([]ledger.WorkerEntry, len(req.Workers))
	for i, line := range req.Workers {
		w, err := s.fillWorker(line.Name, line.Role, line.Rate)
		if err != nil {
			return nil, fmt.Errorf("worker %d: %w", i+1, err)
		}
		w.Hours = line.Hours
		workers[i] = w
	}

	return s.command(ctx, req.ClientID, "labor", func(l ledger.Ledger) (ledger.Ledger, error) {
		return l.RecordLabor(workers, date)
	})
}

// ListTransactions lists the log in id order, optionally filtered by kind.
func (s *LedgerServiceImpl) ListTransactions(ctx context.Context, clientID, kind string) ([]*primary.Transaction, error) {
	l, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}

	txs := l.Transactions
	if kind != "" {
		k, err := ledger.ParseKind(kind)
		if err != nil {
			return nil, err
		}
		txs = l.Filter(k)
	}

	out := make([]*primary.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = transactionToPrimary(tx)
	}
	return out, nil
}

// CreateCrew saves a named labor set for a client.
func (s *LedgerServiceImpl) CreateCrew(ctx context.Context, req primary.CreateCrewRequest) (*primary.Crew, error) {
	if _, err := s.load(ctx, req.ClientID); err != nil {
		return nil, err
	}

	members := make([]ledger.CrewMember, len(req.Members))
	for i, line := range req.Members {
		w, err := s.fillWorker(line.Name, line.Role, line.Rate)
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", i+1, err)
		}
		members[i] = ledger.CrewMember{Name: w.Name, Role: w.Role, Rate: w.Rate}
	}

	nextID, err := s.crewRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate crew ID: %w", err)
	}
	crew, err := ledger.NewCrew(nextID, req.ClientID, req.Name, members)
	if err != nil {
		return nil, err
	}

	if err := s.crewRepo.Create(ctx, crewToRecord(crew)); err != nil {
		s.metrics.CommandFailed("create_crew")
		return nil, fmt.Errorf("failed to create crew: %w", err)
	}
	return crewToPrimary(crew), nil
}

// ListCrews lists a client's saved labor sets.
func (s *LedgerServiceImpl) ListCrews(ctx context.Context, clientID string) ([]*primary.Crew, error) {
	if _, err := s.load(ctx, clientID); err != nil {
		return nil, err
	}
	records, err := s.crewRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list crews: %w", err)
	}
	out := make([]*primary.Crew, len(records))
	for i, r := range records {
		out[i] = crewToPrimary(recordToCrew(r))
	}
	return out, nil
}

// ApplyCrew books every member of a crew for the same hours.
func (s *LedgerServiceImpl) ApplyCrew(ctx context.Context, req primary.ApplyCrewRequest) (*primary.LedgerSummary, error) {
	date, err := s.parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	record, err := s.crewRepo.GetByID(ctx, req.CrewID)
	if err != nil {
		return nil, err
	}
	if record.ClientID != req.ClientID {
		return nil, fmt.Errorf("crew %s for client %s: %w", record.ID, req.ClientID, secondary.ErrNotFound)
	}
	crew := recordToCrew(record)

	return s.command(ctx, req.ClientID, "labor", func(l ledger.Ledger) (ledger.Ledger, error) {
		return l.ApplyCrew(crew, req.Hours, date)
	})
}

// Catalog returns the material, distributor and laborer catalog.
func (s *LedgerServiceImpl) Catalog(ctx context.Context) *primary.Catalog {
	out := &primary.Catalog{
		Materials:    make([]primary.CatalogMaterial, len(s.catalog.Materials)),
		Distributors: append([]string(nil), s.catalog.Distributors...),
		Laborers:     make([]primary.CrewMemberLine, len(s.catalog.Laborers)),
	}
	for i, m := range s.catalog.Materials {
		out.Materials[i] = primary.CatalogMaterial{Name: m.Name, UnitCost: m.UnitCost}
	}
	for i, l := range s.catalog.Laborers {
		rate := l.Rate
		out.Laborers[i] = primary.CrewMemberLine{Name: l.Name, Role: string(l.Role), Rate: &rate}
	}
	return out
}

// command runs one ledger command under the client's lock and appends only
// the transactions it produced. A rejected command persists nothing.
func (s *LedgerServiceImpl) command(ctx context.Context, clientID, kind string, fn func(ledger.Ledger) (ledger.Ledger, error)) (*primary.LedgerSummary, error) {
	unlock := s.locks.Lock(clientID)
	defer unlock()

	before, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	after, err := fn(before)
	if err != nil {
		s.logger.Debug("ledger command rejected",
			zap.String("client_id", clientID),
			zap.String("kind", kind),
			zap.Error(err))
		return nil, err
	}

	added := after.Since(before.NextID() - 1)
	records := make([]*secondary.TransactionRecord, len(added))
	for i, tx := range added {
		records[i] = transactionToRecord(tx)
	}
	if err := s.ledgerRepo.AppendTransactions(ctx, clientID, records); err != nil {
		s.metrics.CommandFailed(kind)
		s.logger.Error("append failed", zap.String("client_id", clientID), zap.String("kind", kind), zap.Error(err))
		return nil, fmt.Errorf("failed to record %s: %w", kind, err)
	}

	s.metrics.TransactionsRecorded(kind, len(added))
	summary := ledgerToSummary(after)
	if summary.OverBudget {
		s.logger.Warn("client over budget",
			zap.String("client_id", clientID),
			zap.String("overspend", summary.Overspend.String()))
	}
	return summary, nil
}

// load fetches a client's ledger. A client without one gets ErrLedgerNotOpen;
// an unknown client gets the repository's not-found error.
func (s *LedgerServiceImpl) load(ctx context.Context, clientID string) (ledger.Ledger, error) {
	record, err := s.ledgerRepo.GetByClient(ctx, clientID)
	if err == nil {
		return recordToLedger(record)
	}
	if !errors.Is(err, secondary.ErrNotFound) {
		return ledger.Ledger{}, fmt.Errorf("failed to load ledger: %w", err)
	}
	if _, cerr := s.clientRepo.GetByID(ctx, clientID); cerr != nil {
		return ledger.Ledger{}, cerr
	}
	return ledger.Ledger{}, fmt.Errorf("client %s: %w", clientID, primary.ErrLedgerNotOpen)
}

func (s *LedgerServiceImpl) fillWorker(name, role string, rate *decimal.Decimal) (ledger.WorkerEntry, error) {
	w := ledger.WorkerEntry{Name: name}
	if role != "" {
		r, err := ledger.ParseLaborRole(role)
		if err != nil {
			return w, err
		}
		w.Role = r
	}
	if rate != nil {
		w.Rate = *rate
	}
	return s.catalog.FillWorker(w, role != "", rate != nil)
}

func (s *LedgerServiceImpl) parseDate(value string) (time.Time, error) {
	if value == "" {
		y, m, d := s.now().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", value, ledger.ErrInvalidDate)
	}
	return t, nil
}

func ledgerToSummary(l ledger.Ledger) *primary.LedgerSummary {
	totals := l.CategoryTotals()
	shares := l.Breakdown()
	breakdown := make([]primary.CategoryShare, len(shares))
	for i, sh := range shares {
		breakdown[i] = primary.CategoryShare{Kind: string(sh.Kind), Amount: sh.Amount, Percent: sh.Percent}
	}
	return &primary.LedgerSummary{
		ClientID:         l.ClientID,
		AllocatedBudget:  l.AllocatedBudget,
		RemainingBudget:  l.RemainingBudget(),
		Payments:         totals.Payments,
		Materials:        totals.Materials,
		Labor:            totals.Labor,
		TotalSpent:       l.TotalSpent(),
		Overspend:        l.Overspend(),
		OverBudget:       l.IsOverBudget(),
		TransactionCount: len(l.Transactions),
		Breakdown:        breakdown,
		OpenedAt:         l.OpenedAt.Format(time.RFC3339),
	}
}

func ledgerToRecord(l ledger.Ledger) *secondary.LedgerRecord {
	return &secondary.LedgerRecord{
		ClientID:        l.ClientID,
		AllocatedBudget: l.AllocatedBudget,
		OpenedAt:        l.OpenedAt.UTC().Format(time.RFC3339),
	}
}

func recordToLedger(r *secondary.LedgerRecord) (ledger.Ledger, error) {
	openedAt, err := time.Parse(time.RFC3339, r.OpenedAt)
	if err != nil {
		return ledger.Ledger{}, fmt.Errorf("ledger %s: bad opened_at %q: %w", r.ClientID, r.OpenedAt, err)
	}
	l := ledger.Ledger{
		ClientID:        r.ClientID,
		AllocatedBudget: r.AllocatedBudget,
		OpenedAt:        openedAt,
		Transactions:    make([]ledger.Transaction, 0, len(r.Transactions)),
	}
	for _, tr := range r.Transactions {
		tx, err := recordToTransaction(tr)
		if err != nil {
			return ledger.Ledger{}, fmt.Errorf("ledger %s: %w", r.ClientID, err)
		}
		l.Transactions = append(l.Transactions, tx)
	}
	return l, nil
}

func transactionToRecord(tx ledger.Transaction) *secondary.TransactionRecord {
	r := &secondary.TransactionRecord{
		ID:   tx.ID,
		Kind: string(tx.Kind),
		Date: tx.Date.Format(dateLayout),
	}
	switch tx.Kind {
	case ledger.KindPayment:
		r.Amount = tx.Payment.Amount
		r.Mode = string(tx.Payment.Mode)
	case ledger.KindMaterial:
		r.Material = tx.Material.Name
		r.Quantity = tx.Material.Quantity
		r.UnitCost = tx.Material.UnitCost
		r.Cost = tx.Material.Cost
		r.Distributor = tx.Material.Distributor
	case ledger.KindLabor:
		r.Worker = tx.Labor.Worker
		r.Role = string(tx.Labor.Role)
		r.Rate = tx.Labor.Rate
		r.Hours = tx.Labor.Hours
		r.Cost = tx.Labor.Cost
	}
	return r
}

func recordToTransaction(r *secondary.TransactionRecord) (ledger.Transaction, error) {
	kind, err := ledger.ParseKind(r.Kind)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("transaction %d: %w", r.ID, err)
	}
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("transaction %d: bad date %q: %w", r.ID, r.Date, err)
	}

	tx := ledger.Transaction{ID: r.ID, Kind: kind, Date: date}
	switch kind {
	case ledger.KindPayment:
		tx.Payment = &ledger.Payment{Amount: r.Amount, Mode: ledger.PaymentMode(r.Mode)}
	case ledger.KindMaterial:
		tx.Material = &ledger.Material{
			Name:        r.Material,
			Quantity:    r.Quantity,
			UnitCost:    r.UnitCost,
			Cost:        r.Cost,
			Distributor: r.Distributor,
		}
	case ledger.KindLabor:
		tx.Labor = &ledger.Labor{
			Worker: r.Worker,
			Role:   ledger.LaborRole(r.Role),
			Rate:   r.Rate,
			Hours:  r.Hours,
			Cost:   r.Cost,
		}
	}
	return tx, nil
}

func transactionToPrimary(tx ledger.Transaction) *primary.Transaction {
	out := &primary.Transaction{
		ID:          tx.ID,
		Kind:        string(tx.Kind),
		Date:        tx.Date.Format(dateLayout),
		Description: tx.Description(),
	}
	switch tx.Kind {
	case ledger.KindPayment:
		amount := tx.Payment.Amount
		out.Amount = &amount
		out.Mode = string(tx.Payment.Mode)
	case ledger.KindMaterial:
		m := *tx.Material
		out.Material = m.Name
		out.Quantity = m.Quantity
		out.UnitCost = &m.UnitCost
		out.Cost = &m.Cost
		out.Distributor = m.Distributor
	case ledger.KindLabor:
		lb := *tx.Labor
		out.Worker = lb.Worker
		out.Role = string(lb.Role)
		out.Rate = &lb.Rate
		out.Hours = &lb.Hours
		out.Cost = &lb.Cost
	}
	return out
}

func crewToRecord(c ledger.Crew) *secondary.CrewRecord {
	members := make([]secondary.CrewMemberRecord, len(c.Members))
	for i, m := range c.Members {
		members[i] = secondary.CrewMemberRecord{Name: m.Name, Role: string(m.Role), Rate: m.Rate}
	}
	return &secondary.CrewRecord{ID: c.ID, ClientID: c.ClientID, Name: c.Name, Members: members}
}

func recordToCrew(r *secondary.CrewRecord) ledger.Crew {
	members := make([]ledger.CrewMember, len(r.Members))
	for i, m := range r.Members {
		members[i] = ledger.CrewMember{Name: m.Name, Role: ledger.LaborRole(m.Role), Rate: m.Rate}
	}
	return ledger.Crew{ID: r.ID, ClientID: r.ClientID, Name: r.Name, Members: members}
}

func crewToPrimary(c ledger.Crew) *primary.Crew {
	members := make([]primary.CrewMemberLine, len(c.Members))
	for i, m := range c.Members {
		rate := m.Rate
		members[i] = primary.CrewMemberLine{Name: m.Name, Role: string(m.Role), Rate: &rate}
	}
	return &primary.Crew{ID: c.ID, ClientID: c.ClientID, Name: c.Name, Members: members}
}

// Ensure LedgerServiceImpl implements the interface
var _ primary.LedgerService = (*LedgerServiceImpl)(nil)
