// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the outside world drives the application.
package primary

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// ClientService defines the primary port for moving clients through the pipeline.
type ClientService interface {
	// CreateClient adds a client to the first stage of the pipeline.
	CreateClient(ctx context.Context, req CreateClientRequest) (*CreateClientResponse, error)

	// GetClient retrieves a client by ID.
	GetClient(ctx context.Context, clientID string) (*Client, error)

	// ListClients lists clients with optional filters.
	ListClients(ctx context.Context, filters ClientFilters) ([]*Client, error)

	// Board groups every client under its stage, in pipeline order.
	Board(ctx context.Context) ([]*BoardColumn, error)

	// UpdateClient edits contact details and the remark.
	UpdateClient(ctx context.Context, req UpdateClientRequest) (*Client, error)

	// CheckMove answers whether a client may move to a stage without moving it.
	CheckMove(ctx context.Context, clientID, targetStageID string) (*MoveCheck, error)

	// MoveClient moves a client to another stage if the gate allows it.
	MoveClient(ctx context.Context, clientID, targetStageID string) (*Client, error)

	// ToggleSubStage flips a checklist item of the client's current stage.
	ToggleSubStage(ctx context.Context, clientID, subStageID string) (*Client, error)

	// SetSubStage marks a checklist item of the client's current stage.
	SetSubStage(ctx context.Context, clientID, subStageID string, done bool) (*Client, error)

	// ApproveClient approves a client at the gating stage and opens its ledger.
	ApproveClient(ctx context.Context, req ApproveClientRequest) (*ApproveClientResponse, error)

	// ListStages returns the pipeline configuration.
	ListStages(ctx context.Context) []*Stage
}

// CreateClientRequest contains parameters for creating a client.
type CreateClientRequest struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Remark  string
}

// CreateClientResponse contains the result of creating a client.
type CreateClientResponse struct {
	ClientID string
	Client   *Client
}

// UpdateClientRequest contains field edits. Nil fields are left unchanged.
type UpdateClientRequest struct {
	ClientID string
	Name     *string
	Email    *string
	Phone    *string
	Address  *string
	Remark   *string
}

// ApproveClientRequest contains parameters for approving a client.
// AllocatedBudget is fixed on the ledger opened by the first approval.
type ApproveClientRequest struct {
	ClientID        string
	AllocatedBudget decimal.Decimal
}

// ApproveClientResponse contains the approved client and its ledger.
type ApproveClientResponse struct {
	Client *Client
	Ledger *LedgerSummary
}

// Client represents a client at the port boundary.
type Client struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email,omitempty"`
	Phone     string      `json:"phone,omitempty"`
	Address   string      `json:"address,omitempty"`
	Remark    string      `json:"remark,omitempty"`
	StageID   string      `json:"stage"`
	StageName string      `json:"stage_name"`
	Checklist []SubStatus `json:"checklist"`
	Progress  Progress    `json:"progress"`
	Approved  bool        `json:"approved"`
	HasLedger bool        `json:"has_ledger"`
	CreatedAt string      `json:"created_at,omitempty"`
	UpdatedAt string      `json:"updated_at,omitempty"`
}

// SubStatus is one checklist item and whether it is complete.
// Progress counts completed sub-stages of the current stage.
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

func (p Progress) String() string {
	return fmt.Sprintf("%d/%d", p.Done, p.Total)
}

type SubStatus struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Done bool   `json:"done"`
}

// ClientFilters contains filter options for listing clients.
type ClientFilters struct {
	StageID  string
	Approved *bool
}

// BoardColumn is one stage and the clients currently in it.
type BoardColumn struct {
	Stage   *Stage    `json:"stage"`
	Clients []*Client `json:"clients"`
}

// MoveCheck is the gate's answer to a prospective move.
type MoveCheck struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Stage represents a pipeline stage at the port boundary.
type Stage struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Position  int         `json:"position"`
	Gating    bool        `json:"gating"`
	SubStages []*SubStage `json:"sub_stages"`
}

// SubStage represents a checklist item definition.
type SubStage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
