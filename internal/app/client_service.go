package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/fitout/internal/core/ledger"
	"github.com/example/fitout/internal/core/pipeline"
	"github.com/example/fitout/internal/ports/primary"
	"github.com/example/fitout/internal/ports/secondary"
)

// ClientServiceImpl implements the ClientService interface.
type ClientServiceImpl struct {
	engine     *pipeline.Engine
	clientRepo secondary.ClientRepository
	ledgerRepo secondary.LedgerRepository
	locks      *ClientLocks
	logger     *zap.Logger
	metrics    secondary.MetricsRecorder
	now        func() time.Time
	newID      func() string
}

// NewClientService creates a new ClientService with injected dependencies.
func NewClientService(
	engine *pipeline.Engine,
	clientRepo secondary.ClientRepository,
	ledgerRepo secondary.LedgerRepository,
	locks *ClientLocks,
	logger *zap.Logger,
	metrics secondary.MetricsRecorder,
) *ClientServiceImpl {
	return &ClientServiceImpl{
		engine:     engine,
		clientRepo: clientRepo,
		ledgerRepo: ledgerRepo,
		locks:      locks,
		logger:     logger.Named("clients"),
		metrics:    metrics,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// CreateClient adds a client to the first stage of the pipeline.
func (s *ClientServiceImpl) CreateClient(ctx context.Context, req primary.CreateClientRequest) (*primary.CreateClientResponse, error) {
	client, err := s.engine.NewClient(s.newID(), req.Name)
	if err != nil {
		return nil, err
	}
	client, err = pipeline.UpdateDetails(client, pipeline.Details{
		Email:   &req.Email,
		Phone:   &req.Phone,
		Address: &req.Address,
		Remark:  &req.Remark,
	})
	if err != nil {
		return nil, err
	}

	if err := s.clientRepo.Create(ctx, clientToRecord(client)); err != nil {
		s.metrics.CommandFailed("create_client")
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	created, err := s.clientRepo.GetByID(ctx, client.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created client: %w", err)
	}
	out, err := s.recordToClient(created)
	if err != nil {
		return nil, err
	}

	s.logger.Info("client created", zap.String("client_id", client.ID), zap.String("stage", client.Stage))
	return &primary.CreateClientResponse{ClientID: client.ID, Client: out}, nil
}

// GetClient retrieves a client by ID.
func (s *ClientServiceImpl) GetClient(ctx context.Context, clientID string) (*primary.Client, error) {
	record, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return s.recordToClient(record)
}

// ListClients lists clients with optional filters.
func (s *ClientServiceImpl) ListClients(ctx context.Context, filters primary.ClientFilters) ([]*primary.Client, error) {
	records, err := s.clientRepo.List(ctx, secondary.ClientFilters{
		StageID:  filters.StageID,
		Approved: filters.Approved,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	clients := make([]*primary.Client, 0, len(records))
	for _, r := range records {
		c, err := s.recordToClient(r)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, nil
}

// Board groups every client under its stage, in pipeline order.
func (s *ClientServiceImpl) Board(ctx context.Context) ([]*primary.BoardColumn, error) {
	clients, err := s.ListClients(ctx, primary.ClientFilters{})
	if err != nil {
		return nil, err
	}

	stages := s.ListStages(ctx)
	columns := make([]*primary.BoardColumn, len(stages))
	index := make(map[string]*primary.BoardColumn, len(stages))
	for i, st := range stages {
		columns[i] = &primary.BoardColumn{Stage: st, Clients: []*primary.Client{}}
		index[st.ID] = columns[i]
	}
	for _, c := range clients {
		if col, ok := index[c.StageID]; ok {
			col.Clients = append(col.Clients, c)
		}
	}
	return columns, nil
}

// UpdateClient edits contact details and the remark.
func (s *ClientServiceImpl) UpdateClient(ctx context.Context, req primary.UpdateClientRequest) (*primary.Client, error) {
	return s.mutate(ctx, req.ClientID, "update_client", func(c pipeline.Client) (pipeline.Client, error) {
		return pipeline.UpdateDetails(c, pipeline.Details{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Address: req.Address,
			Remark:  req.Remark,
		})
	})
}

// CheckMove answers whether a client may move to a stage without moving it.
func (s *ClientServiceImpl) CheckMove(ctx context.Context, clientID, targetStageID string) (*primary.MoveCheck, error) {
	client, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	result := s.engine.EvaluateTransition(client, targetStageID)
	return &primary.MoveCheck{
		Allowed: result.Allowed,
		Reason:  string(result.Reason),
		Detail:  result.Detail,
	}, nil
}

// MoveClient moves a client to another stage if the gate allows it.
func (s *ClientServiceImpl) MoveClient(ctx context.Context, clientID, targetStageID string) (*primary.Client, error) {
	return s.mutate(ctx, clientID, "move", func(c pipeline.Client) (pipeline.Client, error) {
		return s.engine.Move(c, targetStageID)
	})
}

// ToggleSubStage flips a checklist item of the client's current stage.
func (s *ClientServiceImpl) ToggleSubStage(ctx context.Context, clientID, subStageID string) (*primary.Client, error) {
	return s.mutate(ctx, clientID, "toggle", func(c pipeline.Client) (pipeline.Client, error) {
		return s.engine.ToggleSubStage(c, subStageID)
	})
}

// SetSubStage marks a checklist item of the client's current stage.
func (s *ClientServiceImpl) SetSubStage(ctx context.Context, clientID, subStageID string, done bool) (*primary.Client, error) {
	return s.mutate(ctx, clientID, "set_substage", func(c pipeline.Client) (pipeline.Client, error) {
		return s.engine.SetSubStage(c, subStageID, done)
	})
}

// ApproveClient approves a client at the gating stage and opens its ledger.
// The first approval fixes the allocated budget; later approvals leave the
// existing ledger untouched.
func (s *ClientServiceImpl) ApproveClient(ctx context.Context, req primary.ApproveClientRequest) (*primary.ApproveClientResponse, error) {
	unlock := s.locks.Lock(req.ClientID)
	defer unlock()

	client, err := s.load(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	approved, err := s.engine.Approve(client)
	if err != nil {
		s.recordRejection("approve", client, err)
		return nil, err
	}
	s.metrics.GateDecision("approve", "allowed")

	exists, err := s.ledgerRepo.Exists(ctx, client.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check ledger: %w", err)
	}
	created := false
	if !exists {
		opened, err := ledger.Open(client.ID, req.AllocatedBudget, s.now())
		if err != nil {
			return nil, err
		}
		if err := s.ledgerRepo.Create(ctx, ledgerToRecord(opened)); err != nil {
			s.metrics.CommandFailed("approve")
			s.logger.Error("ledger create failed", zap.String("client_id", client.ID), zap.Error(err))
			return nil, fmt.Errorf("failed to open ledger: %w", err)
		}
		created = true
		s.logger.Info("ledger opened",
			zap.String("client_id", client.ID),
			zap.String("budget", req.AllocatedBudget.String()))
	}

	if !client.Approved {
		if err := s.clientRepo.Save(ctx, clientToRecord(approved)); err != nil {
			s.metrics.CommandFailed("approve")
			s.logger.Error("client save failed", zap.String("client_id", client.ID), zap.Error(err))
			if created {
				// An unapproved client must not keep a ledger.
				if derr := s.ledgerRepo.Delete(ctx, client.ID); derr != nil {
					s.logger.Error("ledger rollback failed", zap.String("client_id", client.ID), zap.Error(derr))
					return nil, fmt.Errorf("failed to save client: %w (ledger rollback: %v)", err, derr)
				}
			}
			return nil, fmt.Errorf("failed to save client: %w", err)
		}
	}

	out, err := s.GetClient(ctx, client.ID)
	if err != nil {
		return nil, err
	}
	ledgerRecord, err := s.ledgerRepo.GetByClient(ctx, client.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ledger: %w", err)
	}
	l, err := recordToLedger(ledgerRecord)
	if err != nil {
		return nil, err
	}
	return &primary.ApproveClientResponse{Client: out, Ledger: ledgerToSummary(l)}, nil
}

// ListStages returns the pipeline configuration.
func (s *ClientServiceImpl) ListStages(ctx context.Context) []*primary.Stage {
	stages := s.engine.Stages()
	out := make([]*primary.Stage, len(stages))
	for i, st := range stages {
		subs := make([]*primary.SubStage, len(st.SubStages))
		for j, sub := range st.SubStages {
			subs[j] = &primary.SubStage{ID: sub.ID, Name: sub.Name}
		}
		out[i] = &primary.Stage{
			ID:        st.ID,
			Name:      st.Name,
			Position:  st.Position,
			Gating:    s.engine.IsGating(st.ID),
			SubStages: subs,
		}
	}
	return out
}

// mutate runs one load-decide-persist command under the client's lock.
// A rejected command leaves the stored client untouched.
func (s *ClientServiceImpl) mutate(ctx context.Context, clientID, op string, fn func(pipeline.Client) (pipeline.Client, error)) (*primary.Client, error) {
	unlock := s.locks.Lock(clientID)
	defer unlock()

	client, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}

	next, err := fn(client)
	if err != nil {
		s.recordRejection(op, client, err)
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, clientToRecord(next)); err != nil {
		s.metrics.CommandFailed(op)
		s.logger.Error("client save failed", zap.String("op", op), zap.String("client_id", clientID), zap.Error(err))
		return nil, fmt.Errorf("failed to save client: %w", err)
	}
	if op == "move" {
		s.metrics.GateDecision(op, "allowed")
		s.logger.Info("client moved",
			zap.String("client_id", clientID),
			zap.String("from", client.Stage),
			zap.String("stage", next.Stage))
	}

	return s.GetClient(ctx, clientID)
}

func (s *ClientServiceImpl) recordRejection(op string, c pipeline.Client, err error) {
	var rejected *pipeline.GateRejected
	if errors.As(err, &rejected) {
		s.metrics.GateDecision(op, string(rejected.Reason))
		s.logger.Debug("gate rejected",
			zap.String("op", op),
			zap.String("client_id", c.ID),
			zap.String("stage", c.Stage),
			zap.String("reason", string(rejected.Reason)),
			zap.String("detail", rejected.Detail))
		return
	}
	s.logger.Debug("command rejected", zap.String("op", op), zap.String("client_id", c.ID), zap.Error(err))
}

// load fetches a client and normalizes it against the current pipeline.
func (s *ClientServiceImpl) load(ctx context.Context, clientID string) (pipeline.Client, error) {
	record, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return pipeline.Client{}, err
	}
	return s.engine.Normalize(recordToCoreClient(record))
}

func (s *ClientServiceImpl) recordToClient(r *secondary.ClientRecord) (*primary.Client, error) {
	client, err := s.engine.Normalize(recordToCoreClient(r))
	if err != nil {
		return nil, err
	}
	stage, _ := s.engine.Stage(client.Stage)

	checklist := make([]primary.SubStatus, len(stage.SubStages))
	for i, sub := range stage.SubStages {
		checklist[i] = primary.SubStatus{ID: sub.ID, Name: sub.Name, Done: client.Completion[sub.ID]}
	}
	done, total := s.engine.Progress(client)

	return &primary.Client{
		ID:        client.ID,
		Name:      client.Name,
		Email:     client.Email,
		Phone:     client.Phone,
		Address:   client.Address,
		Remark:    client.Remark,
		StageID:   stage.ID,
		StageName: stage.Name,
		Checklist: checklist,
		Progress:  primary.Progress{Done: done, Total: total},
		Approved:  client.Approved,
		HasLedger: r.HasLedger,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func recordToCoreClient(r *secondary.ClientRecord) pipeline.Client {
	completion := make(map[string]bool, len(r.Completion))
	for k, v := range r.Completion {
		completion[k] = v
	}
	return pipeline.Client{
		ID:         r.ID,
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		Stage:      r.StageID,
		Completion: completion,
		Approved:   r.Approved,
		Remark:     r.Remark,
	}
}

func clientToRecord(c pipeline.Client) *secondary.ClientRecord {
	completion := make(map[string]bool, len(c.Completion))
	for k, v := range c.Completion {
		completion[k] = v
	}
	return &secondary.ClientRecord{
		ID:         c.ID,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		Remark:     c.Remark,
		StageID:    c.Stage,
		Completion: completion,
		Approved:   c.Approved,
	}
}

// Ensure ClientServiceImpl implements the interface
var _ primary.ClientService = (*ClientServiceImpl)(nil)
