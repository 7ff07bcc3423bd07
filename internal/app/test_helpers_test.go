package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/fitout/internal/core/ledger"
	"github.com/example/fitout/internal/core/pipeline"
	"github.com/example/fitout/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// Ensure mocks implement the interfaces
var (
	_ secondary.ClientRepository = (*mockClientRepository)(nil)
	_ secondary.LedgerRepository = (*mockLedgerRepository)(nil)
	_ secondary.CrewRepository   = (*mockCrewRepository)(nil)
	_ secondary.MetricsRecorder  = (*mockMetrics)(nil)
)

// mockClientRepository implements secondary.ClientRepository for testing.
type mockClientRepository struct {
	mu      sync.Mutex
	clients map[string]*secondary.ClientRecord
	ledgers *mockLedgerRepository
	order   []string
	saveErr error
	saves   int
}

func newMockClientRepository(ledgers *mockLedgerRepository) *mockClientRepository {
	return &mockClientRepository{clients: make(map[string]*secondary.ClientRecord), ledgers: ledgers}
}

func (m *mockClientRepository) Create(ctx context.Context, client *secondary.ClientRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.clients[client.ID]; ok {
		return fmt.Errorf("client %s already exists", client.ID)
	}
	m.clients[client.ID] = copyClientRecord(client)
	m.order = append(m.order, client.ID)
	return nil
}

func (m *mockClientRepository) GetByID(ctx context.Context, id string) (*secondary.ClientRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, fmt.Errorf("client %s: %w", id, secondary.ErrNotFound)
	}
	out := copyClientRecord(c)
	if m.ledgers != nil {
		out.HasLedger, _ = m.ledgers.Exists(ctx, id)
	}
	return out, nil
}

func (m *mockClientRepository) List(ctx context.Context, filters secondary.ClientFilters) ([]*secondary.ClientRecord, error) {
	var result []*secondary.ClientRecord
	for _, id := range m.order {
		c, _ := m.GetByID(ctx, id)
		if filters.StageID != "" && c.StageID != filters.StageID {
			continue
		}
		if filters.Approved != nil && c.Approved != *filters.Approved {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

func (m *mockClientRepository) Save(ctx context.Context, client *secondary.ClientRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.clients[client.ID]; !ok {
		return fmt.Errorf("client %s: %w", client.ID, secondary.ErrNotFound)
	}
	m.clients[client.ID] = copyClientRecord(client)
	m.saves++
	return nil
}

func copyClientRecord(r *secondary.ClientRecord) *secondary.ClientRecord {
	out := *r
	out.Completion = make(map[string]bool, len(r.Completion))
	for k, v := range r.Completion {
		out.Completion[k] = v
	}
	return &out
}

// mockLedgerRepository implements secondary.LedgerRepository for testing.
type mockLedgerRepository struct {
	mu        sync.Mutex
	ledgers   map[string]*secondary.LedgerRecord
	appendErr error
	appends   int
}

func newMockLedgerRepository() *mockLedgerRepository {
	return &mockLedgerRepository{ledgers: make(map[string]*secondary.LedgerRecord)}
}

func (m *mockLedgerRepository) Create(ctx context.Context, l *secondary.LedgerRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ledgers[l.ClientID]; ok {
		return fmt.Errorf("ledger for %s already exists", l.ClientID)
	}
	cp := *l
	cp.Transactions = nil
	m.ledgers[l.ClientID] = &cp
	return nil
}

func (m *mockLedgerRepository) GetByClient(ctx context.Context, clientID string) (*secondary.LedgerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.ledgers[clientID]
	if !ok {
		return nil, fmt.Errorf("ledger %s: %w", clientID, secondary.ErrNotFound)
	}
	cp := *l
	cp.Transactions = append([]*secondary.TransactionRecord(nil), l.Transactions...)
	return &cp, nil
}

func (m *mockLedgerRepository) Exists(ctx context.Context, clientID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ledgers[clientID]
	return ok, nil
}

func (m *mockLedgerRepository) UpdateBudget(ctx context.Context, clientID string, budget decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.ledgers[clientID]
	if !ok {
		return fmt.Errorf("ledger %s: %w", clientID, secondary.ErrNotFound)
	}
	l.AllocatedBudget = budget
	return nil
}

func (m *mockLedgerRepository) AppendTransactions(ctx context.Context, clientID string, txs []*secondary.TransactionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	l, ok := m.ledgers[clientID]
	if !ok {
		return fmt.Errorf("ledger %s: %w", clientID, secondary.ErrNotFound)
	}
	for _, tx := range txs {
		if n := len(l.Transactions); n > 0 && tx.ID <= l.Transactions[n-1].ID {
			return fmt.Errorf("transaction id %d is not increasing", tx.ID)
		}
		l.Transactions = append(l.Transactions, tx)
	}
	m.appends++
	return nil
}

func (m *mockLedgerRepository) Delete(ctx context.Context, clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ledgers[clientID]; !ok {
		return fmt.Errorf("ledger %s: %w", clientID, secondary.ErrNotFound)
	}
	delete(m.ledgers, clientID)
	return nil
}

// mockCrewRepository implements secondary.CrewRepository for testing.
type mockCrewRepository struct {
	crews map[string]*secondary.CrewRecord
}

func newMockCrewRepository() *mockCrewRepository {
	return &mockCrewRepository{crews: make(map[string]*secondary.CrewRecord)}
}

func (m *mockCrewRepository) Create(ctx context.Context, crew *secondary.CrewRecord) error {
	m.crews[crew.ID] = crew
	return nil
}

func (m *mockCrewRepository) GetByID(ctx context.Context, id string) (*secondary.CrewRecord, error) {
	c, ok := m.crews[id]
	if !ok {
		return nil, fmt.Errorf("crew %s: %w", id, secondary.ErrNotFound)
	}
	return c, nil
}

func (m *mockCrewRepository) ListByClient(ctx context.Context, clientID string) ([]*secondary.CrewRecord, error) {
	var out []*secondary.CrewRecord
	for _, c := range m.crews {
		if c.ClientID == clientID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockCrewRepository) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("SET-%03d", len(m.crews)+1), nil
}

// mockMetrics counts calls by label.
type mockMetrics struct {
	mu        sync.Mutex
	decisions map[string]int
	recorded  map[string]int
	failed    map[string]int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{
		decisions: make(map[string]int),
		recorded:  make(map[string]int),
		failed:    make(map[string]int),
	}
}

func (m *mockMetrics) GateDecision(op, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions[op+"/"+reason]++
}

func (m *mockMetrics) TransactionsRecorded(kind string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded[kind] += n
}

func (m *mockMetrics) CommandFailed(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[op]++
}

// ============================================================================
// Fixtures
// ============================================================================

type fixture struct {
	engine  *pipeline.Engine
	clients *mockClientRepository
	ledgers *mockLedgerRepository
	crews   *mockCrewRepository
	metrics *mockMetrics
	clientS *ClientServiceImpl
	ledgerS *LedgerServiceImpl
}

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

// testStages is a short pipeline: intake -> design (gating) -> build -> handover.
func testStages() pipeline.Config {
	return pipeline.Config{
		Stages: []pipeline.Stage{
			{ID: "intake", Name: "Intake", SubStages: []pipeline.SubStage{
				{ID: "call", Name: "First call"},
				{ID: "visit", Name: "Site visit"},
			}},
			{ID: "design", Name: "Design", SubStages: []pipeline.SubStage{
				{ID: "layout", Name: "Layout"},
			}},
			{ID: "build", Name: "Build", SubStages: []pipeline.SubStage{
				{ID: "civil", Name: "Civil work"},
			}},
			{ID: "handover", Name: "Handover"},
		},
		GatingStageID: "design",
	}
}

func testCatalog() ledger.Catalog {
	return ledger.Catalog{
		Materials:    []ledger.CatalogMaterial{{Name: "Cement", UnitCost: decimal.NewFromInt(500)}},
		Distributors: []string{"BuildMart"},
		Laborers: []ledger.CatalogLaborer{
			{Name: "Amit Kumar", Role: ledger.RoleMain, Rate: decimal.NewFromInt(500)},
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	engine, err := pipeline.New(testStages())
	require.NoError(t, err)

	f := &fixture{
		engine:  engine,
		ledgers: newMockLedgerRepository(),
		crews:   newMockCrewRepository(),
		metrics: newMockMetrics(),
	}
	f.clients = newMockClientRepository(f.ledgers)

	locks := NewClientLocks()
	logger := zap.NewNop()
	f.clientS = NewClientService(engine, f.clients, f.ledgers, locks, logger, f.metrics)
	f.ledgerS = NewLedgerService(f.clients, f.ledgers, f.crews, testCatalog(), locks, logger, f.metrics)

	seq := 0
	f.clientS.newID = func() string {
		seq++
		return fmt.Sprintf("client-%d", seq)
	}
	f.clientS.now = func() time.Time { return fixedNow }
	f.ledgerS.now = func() time.Time { return fixedNow }
	return f
}

// approvedClient creates a client, walks it to the gating stage and approves
// it with the given budget.
func (f *fixture) approvedClient(t *testing.T, budget int64) string {
	t.Helper()
	ctx := context.Background()

	resp, err := f.clientS.CreateClient(ctx, createReq("Acme"))
	require.NoError(t, err)
	id := resp.ClientID

	for _, sub := range []string{"call", "visit"} {
		_, err = f.clientS.SetSubStage(ctx, id, sub, true)
		require.NoError(t, err)
	}
	_, err = f.clientS.MoveClient(ctx, id, "design")
	require.NoError(t, err)
	_, err = f.clientS.SetSubStage(ctx, id, "layout", true)
	require.NoError(t, err)
	_, err = f.clientS.ApproveClient(ctx, approveReq(id, budget))
	require.NoError(t, err)
	return id
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
