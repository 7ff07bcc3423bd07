package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/example/fitout/internal/ports/primary"
)

// LedgerAdapter translates CLI operations to LedgerService calls.
type LedgerAdapter struct {
	service primary.LedgerService
	out     io.Writer
}

// NewLedgerAdapter creates a new LedgerAdapter with the given service.
func NewLedgerAdapter(service primary.LedgerService, out io.Writer) *LedgerAdapter {
	return &LedgerAdapter{
		service: service,
		out:     out,
	}
}

// Show prints the budget summary and category breakdown.
func (a *LedgerAdapter) Show(ctx context.Context, clientID string) error {
	summary, err := a.service.GetLedger(ctx, clientID)
	if err != nil {
		return err
	}
	a.printSummary(summary)
	return nil
}

// SetBudget changes the allocated budget.
func (a *LedgerAdapter) SetBudget(ctx context.Context, clientID string, budget decimal.Decimal) error {
	summary, err := a.service.SetBudget(ctx, clientID, budget)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Budget for %s set to %s\n", clientID, money(summary.AllocatedBudget))
	a.printRemaining(summary)
	return nil
}

// Pay records a payment.
func (a *LedgerAdapter) Pay(ctx context.Context, req primary.RecordPaymentRequest) error {
	summary, err := a.service.RecordPayment(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Recorded payment of %s\n", money(req.Amount))
	a.printRemaining(summary)
	return nil
}

// Buy records a material purchase.
func (a *LedgerAdapter) Buy(ctx context.Context, req primary.RecordMaterialPurchaseRequest) error {
	summary, err := a.service.RecordMaterialPurchase(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Recorded %d material item(s) from %s\n", len(req.Items), req.Distributor)
	a.printRemaining(summary)
	return nil
}

// Labor records a labor batch.
func (a *LedgerAdapter) Labor(ctx context.Context, req primary.RecordLaborRequest) error {
	summary, err := a.service.RecordLabor(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Recorded labor for %d worker(s)\n", len(req.Workers))
	a.printRemaining(summary)
	return nil
}

// History prints the transaction log, optionally filtered by kind.
func (a *LedgerAdapter) History(ctx context.Context, clientID, kind string) error {
	txs, err := a.service.ListTransactions(ctx, clientID, kind)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Fprintln(a.out, "No transactions found")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tKIND\tDESCRIPTION\tAMOUNT")
	for _, tx := range txs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", tx.ID, tx.Date, tx.Kind, tx.Description, money(txValue(tx)))
	}
	return w.Flush()
}

// CreateCrew saves a reusable labor set.
func (a *LedgerAdapter) CreateCrew(ctx context.Context, req primary.CreateCrewRequest) error {
	crew, err := a.service.CreateCrew(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Created crew %s: %s (%d member(s))\n", crew.ID, crew.Name, len(crew.Members))
	return nil
}

// ListCrews prints a client's crews.
func (a *LedgerAdapter) ListCrews(ctx context.Context, clientID string) error {
	crews, err := a.service.ListCrews(ctx, clientID)
	if err != nil {
		return err
	}
	if len(crews) == 0 {
		fmt.Fprintln(a.out, "No crews found")
		return nil
	}
	for _, c := range crews {
		fmt.Fprintf(a.out, "%s  %s\n", c.ID, c.Name)
		for _, m := range c.Members {
			rate := "-"
			if m.Rate != nil {
				rate = money(*m.Rate) + "/h"
			}
			fmt.Fprintf(a.out, "    %-20s %-7s %s\n", m.Name, m.Role, rate)
		}
	}
	return nil
}

// ApplyCrew records labor for every crew member.
func (a *LedgerAdapter) ApplyCrew(ctx context.Context, req primary.ApplyCrewRequest) error {
	summary, err := a.service.ApplyCrew(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Applied crew %s for %s hour(s)\n", req.CrewID, req.Hours.String())
	a.printRemaining(summary)
	return nil
}

// Catalog prints known materials, distributors and laborers.
func (a *LedgerAdapter) Catalog(ctx context.Context) error {
	cat := a.service.Catalog(ctx)

	fmt.Fprintln(a.out, "Materials:")
	for _, m := range cat.Materials {
		fmt.Fprintf(a.out, "  %-20s %s\n", m.Name, money(m.UnitCost))
	}
	fmt.Fprintln(a.out, "Distributors:")
	for _, d := range cat.Distributors {
		fmt.Fprintf(a.out, "  %s\n", d)
	}
	fmt.Fprintln(a.out, "Laborers:")
	for _, l := range cat.Laborers {
		rate := ""
		if l.Rate != nil {
			rate = money(*l.Rate) + "/h"
		}
		fmt.Fprintf(a.out, "  %-20s %-7s %s\n", l.Name, l.Role, rate)
	}
	return nil
}

func (a *LedgerAdapter) printSummary(s *primary.LedgerSummary) {
	fmt.Fprintf(a.out, "\nLedger:    %s\n", s.ClientID)
	fmt.Fprintf(a.out, "Opened:    %s\n", s.OpenedAt)
	fmt.Fprintf(a.out, "Budget:    %s\n", money(s.AllocatedBudget))
	fmt.Fprintf(a.out, "Payments:  %s\n", money(s.Payments))
	fmt.Fprintf(a.out, "Materials: %s\n", money(s.Materials))
	fmt.Fprintf(a.out, "Labor:     %s\n", money(s.Labor))
	fmt.Fprintf(a.out, "Spent:     %s\n", money(s.TotalSpent))
	a.printRemaining(s)

	if len(s.Breakdown) > 0 {
		fmt.Fprintln(a.out, "Breakdown:")
		for _, share := range s.Breakdown {
			fmt.Fprintf(a.out, "  %-9s %6s%%  %s\n", share.Kind, share.Percent.StringFixed(1), money(share.Amount))
		}
	}
	fmt.Fprintf(a.out, "Transactions: %d\n\n", s.TransactionCount)
}

func (a *LedgerAdapter) printRemaining(s *primary.LedgerSummary) {
	if s.OverBudget {
		fmt.Fprintf(a.out, "Remaining: %s %s\n", money(s.RemainingBudget),
			color.New(color.FgRed).Sprintf("(over budget by %s)", money(s.Overspend)))
		return
	}
	fmt.Fprintf(a.out, "Remaining: %s\n", color.New(color.FgGreen).Sprint(money(s.RemainingBudget)))
}

func txValue(tx *primary.Transaction) decimal.Decimal {
	switch {
	case tx.Amount != nil:
		return *tx.Amount
	case tx.Cost != nil:
		return *tx.Cost
	}
	return decimal.Zero
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
