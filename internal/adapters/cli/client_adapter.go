// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting but delegate
// business logic to services.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/fitout/internal/core/pipeline"
	"github.com/example/fitout/internal/ports/primary"
)

// ClientAdapter translates CLI operations to ClientService calls.
type ClientAdapter struct {
	service primary.ClientService
	out     io.Writer
}

// NewClientAdapter creates a new ClientAdapter with the given service.
func NewClientAdapter(service primary.ClientService, out io.Writer) *ClientAdapter {
	return &ClientAdapter{
		service: service,
		out:     out,
	}
}

// Create registers a new client.
func (a *ClientAdapter) Create(ctx context.Context, req primary.CreateClientRequest) error {
	resp, err := a.service.CreateClient(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created client %s: %s (stage: %s)\n", resp.ClientID, resp.Client.Name, resp.Client.StageName)
	return nil
}

// List lists clients with optional stage and approval filters.
func (a *ClientAdapter) List(ctx context.Context, filters primary.ClientFilters) error {
	clients, err := a.service.ListClients(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list clients: %w", err)
	}

	if len(clients) == 0 {
		fmt.Fprintln(a.out, "No clients found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-38s %-24s %-22s %-9s %s\n", "ID", "NAME", "STAGE", "CHECKLIST", "APPROVED")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────────────────────────────────────────")
	for _, c := range clients {
		fmt.Fprintf(a.out, "%-38s %-24s %-22s %-9s %s\n", c.ID, truncate(c.Name, 24), truncate(c.StageName, 22), c.Progress, approvedMark(c.Approved))
	}
	fmt.Fprintln(a.out)

	return nil
}

// Show displays a client's details and current checklist.
func (a *ClientAdapter) Show(ctx context.Context, clientID string) (*primary.Client, error) {
	client, err := a.service.GetClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	fmt.Fprintf(a.out, "\nClient:  %s\n", client.ID)
	fmt.Fprintf(a.out, "Name:    %s\n", client.Name)
	if client.Email != "" {
		fmt.Fprintf(a.out, "Email:   %s\n", client.Email)
	}
	if client.Phone != "" {
		fmt.Fprintf(a.out, "Phone:   %s\n", client.Phone)
	}
	if client.Address != "" {
		fmt.Fprintf(a.out, "Address: %s\n", client.Address)
	}
	if client.Remark != "" {
		fmt.Fprintf(a.out, "Remark:  %s\n", client.Remark)
	}
	fmt.Fprintf(a.out, "Stage:   %s (%s)\n", client.StageName, client.StageID)
	fmt.Fprintf(a.out, "Approved: %s\n", approvedMark(client.Approved))
	if client.HasLedger {
		fmt.Fprintln(a.out, "Ledger:  open")
	}
	a.printChecklist(client)
	fmt.Fprintln(a.out)

	return client, nil
}

// Update edits contact details.
func (a *ClientAdapter) Update(ctx context.Context, req primary.UpdateClientRequest) error {
	if req.Name == nil && req.Email == nil && req.Phone == nil && req.Address == nil && req.Remark == nil {
		return fmt.Errorf("must specify at least one of --name, --email, --phone, --address, --remark")
	}

	if _, err := a.service.UpdateClient(ctx, req); err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}

	fmt.Fprintf(a.out, "✓ Client %s updated\n", req.ClientID)
	return nil
}

// Move advances a client. Gate rejections are reported with their reason.
func (a *ClientAdapter) Move(ctx context.Context, clientID, target string) error {
	client, err := a.service.MoveClient(ctx, clientID, target)
	if err != nil {
		return describeRejection(err)
	}

	fmt.Fprintf(a.out, "✓ Client %s moved to %s\n", client.ID, client.StageName)
	return nil
}

// CanMove reports whether a move would be accepted without performing it.
func (a *ClientAdapter) CanMove(ctx context.Context, clientID, target string) error {
	check, err := a.service.CheckMove(ctx, clientID, target)
	if err != nil {
		return err
	}

	if check.Allowed {
		fmt.Fprintf(a.out, "%s %s can move to %s\n", color.New(color.FgGreen).Sprint("✓"), clientID, target)
		return nil
	}
	fmt.Fprintf(a.out, "%s %s cannot move to %s: %s\n", color.New(color.FgRed).Sprint("✗"), clientID, target, check.Reason)
	if check.Detail != "" {
		fmt.Fprintf(a.out, "  %s\n", check.Detail)
	}
	return nil
}

// SetSubStage marks a sub-stage done or not done.
func (a *ClientAdapter) SetSubStage(ctx context.Context, clientID, subStageID string, done bool) error {
	client, err := a.service.SetSubStage(ctx, clientID, subStageID, done)
	if err != nil {
		return err
	}
	a.reportSubStage(client, subStageID)
	return nil
}

// Toggle flips a sub-stage.
func (a *ClientAdapter) Toggle(ctx context.Context, clientID, subStageID string) error {
	client, err := a.service.ToggleSubStage(ctx, clientID, subStageID)
	if err != nil {
		return err
	}
	a.reportSubStage(client, subStageID)
	return nil
}

// Approve approves a client and reports the opened ledger.
func (a *ClientAdapter) Approve(ctx context.Context, req primary.ApproveClientRequest) error {
	resp, err := a.service.ApproveClient(ctx, req)
	if err != nil {
		return describeRejection(err)
	}

	fmt.Fprintf(a.out, "✓ Client %s approved\n", resp.Client.ID)
	if resp.Ledger != nil {
		fmt.Fprintf(a.out, "  Ledger budget: %s (remaining %s)\n", resp.Ledger.AllocatedBudget.StringFixed(2), resp.Ledger.RemainingBudget.StringFixed(2))
	}
	return nil
}

// Board prints every stage with its clients in pipeline order.
func (a *ClientAdapter) Board(ctx context.Context) error {
	columns, err := a.service.Board(ctx)
	if err != nil {
		return fmt.Errorf("failed to load board: %w", err)
	}

	for _, col := range columns {
		header := fmt.Sprintf("%d. %s", col.Stage.Position+1, col.Stage.Name)
		if col.Stage.Gating {
			header += color.New(color.FgHiMagenta).Sprint(" [approval gate]")
		}
		fmt.Fprintf(a.out, "\n%s (%d)\n", header, len(col.Clients))
		for _, c := range col.Clients {
			fmt.Fprintf(a.out, "  %s %s  %s", c.Progress, c.Name, color.New(color.FgHiBlack).Sprint(c.ID))
			if c.Approved {
				fmt.Fprint(a.out, color.New(color.FgGreen).Sprint(" approved"))
			}
			fmt.Fprintln(a.out)
		}
	}
	fmt.Fprintln(a.out)
	return nil
}

// Stages lists the configured pipeline.
func (a *ClientAdapter) Stages(ctx context.Context) error {
	for _, s := range a.service.ListStages(ctx) {
		marker := ""
		if s.Gating {
			marker = color.New(color.FgHiMagenta).Sprint(" ← approval gate")
		}
		fmt.Fprintf(a.out, "%d. %s (%s)%s\n", s.Position+1, s.Name, s.ID, marker)
		for _, sub := range s.SubStages {
			fmt.Fprintf(a.out, "     - %s (%s)\n", sub.Name, sub.ID)
		}
	}
	return nil
}

func (a *ClientAdapter) reportSubStage(client *primary.Client, subStageID string) {
	for _, item := range client.Checklist {
		if item.ID == subStageID {
			state := "not done"
			if item.Done {
				state = "done"
			}
			fmt.Fprintf(a.out, "✓ %s: %s marked %s (%s)\n", client.ID, item.Name, state, client.Progress)
			return
		}
	}
}

func (a *ClientAdapter) printChecklist(c *primary.Client) {
	if len(c.Checklist) == 0 {
		return
	}
	fmt.Fprintf(a.out, "Checklist (%s):\n", c.Progress)
	for _, item := range c.Checklist {
		mark := color.New(color.FgHiBlack).Sprint("[ ]")
		if item.Done {
			mark = color.New(color.FgGreen).Sprint("[✓]")
		}
		fmt.Fprintf(a.out, "  %s %s (%s)\n", mark, item.Name, item.ID)
	}
}

// describeRejection adds a human hint to gate rejections.
func describeRejection(err error) error {
	var rejected *pipeline.GateRejected
	if !errors.As(err, &rejected) {
		return err
	}
	switch rejected.Reason {
	case pipeline.ReasonIncompleteChecklist:
		return fmt.Errorf("%w\nHint: complete the current stage's checklist first", err)
	case pipeline.ReasonBackwardMove:
		return fmt.Errorf("%w\nHint: clients only move forward through the pipeline", err)
	case pipeline.ReasonNotEligible:
		return fmt.Errorf("%w\nHint: approval needs the client at the gating stage with its checklist complete", err)
	}
	return err
}

func approvedMark(approved bool) string {
	if approved {
		return color.New(color.FgGreen).Sprint("yes")
	}
	return "no"
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

