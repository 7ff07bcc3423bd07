package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/fitout/internal/ports/primary"
	"github.com/example/fitout/internal/wire"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Track budget, payments, materials and labor for approved clients",
	Long: `Every approved client has a project ledger. Payments add to the
remaining budget; material purchases and labor draw it down.`,
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show [client-id]",
	Short: "Show the budget summary and spending breakdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		return wire.LedgerAdapter().Show(ctx, args[0])
	},
}

var ledgerBudgetCmd = &cobra.Command{
	Use:   "budget [client-id] [amount]",
	Short: "Change the allocated budget",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		budget, err := parseAmount("budget", args[1])
		if err != nil {
			return err
		}
		return wire.LedgerAdapter().SetBudget(ctx, args[0], budget)
	},
}

var ledgerPayCmd = &cobra.Command{
	Use:   "pay [client-id] [amount]",
	Short: "Record a client payment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		amount, err := parseAmount("amount", args[1])
		if err != nil {
			return err
		}
		mode, _ := cmd.Flags().GetString("mode")
		date, _ := cmd.Flags().GetString("date")

		return wire.LedgerAdapter().Pay(ctx, primary.RecordPaymentRequest{
			ClientID: args[0],
			Amount:   amount,
			Mode:     mode,
			Date:     date,
		})
	},
}

var ledgerBuyCmd = &cobra.Command{
	Use:   "buy [client-id]",
	Short: "Record a material purchase",
	Long: `Record one or more purchased items from a distributor.

Items are NAME:QTY (priced from the catalog) or NAME:QTY@COST:
  fitout ledger buy CLIENT --from BuildMart --item Cement:100 --item Tiles:20@45.50`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		specs, _ := cmd.Flags().GetStringArray("item")
		distributor, _ := cmd.Flags().GetString("from")
		date, _ := cmd.Flags().GetString("date")
		if len(specs) == 0 {
			return fmt.Errorf("at least one --item is required")
		}

		items := make([]primary.MaterialLine, len(specs))
		for i, spec := range specs {
			item, err := parseItem(spec)
			if err != nil {
				return err
			}
			items[i] = item
		}

		return wire.LedgerAdapter().Buy(ctx, primary.RecordMaterialPurchaseRequest{
			ClientID:    args[0],
			Items:       items,
			Distributor: distributor,
			Date:        date,
		})
	},
}

var ledgerLaborCmd = &cobra.Command{
	Use:   "labor [client-id]",
	Short: "Record hours worked",
	Long: `Record labor for one or more workers.

Workers are NAME:HOURS (role and rate from the catalog) or NAME:HOURS:ROLE@RATE:
  fitout ledger labor CLIENT --worker "Amit Kumar:40" --worker "Sunil:8:Helper@300"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		specs, _ := cmd.Flags().GetStringArray("worker")
		date, _ := cmd.Flags().GetString("date")
		if len(specs) == 0 {
			return fmt.Errorf("at least one --worker is required")
		}

		workers := make([]primary.WorkerLine, len(specs))
		for i, spec := range specs {
			w, err := parseWorker(spec)
			if err != nil {
				return err
			}
			workers[i] = w
		}

		return wire.LedgerAdapter().Labor(ctx, primary.RecordLaborRequest{
			ClientID: args[0],
			Workers:  workers,
			Date:     date,
		})
	},
}

var ledgerHistoryCmd = &cobra.Command{
	Use:   "history [client-id]",
	Short: "List ledger transactions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		kind, _ := cmd.Flags().GetString("kind")
		return wire.LedgerAdapter().History(ctx, args[0], kind)
	},
}

var ledgerCatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show known materials, distributors and laborers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		return wire.LedgerAdapter().Catalog(ctx)
	},
}

var crewCmd = &cobra.Command{
	Use:   "crew",
	Short: "Manage reusable labor sets",
}

var crewCreateCmd = &cobra.Command{
	Use:   "create [client-id] [name]",
	Short: "Save a crew for a client",
	Long: `Save a named crew. Members are NAME, NAME:ROLE or NAME:ROLE@RATE:
  fitout ledger crew create CLIENT "Tiling team" --member "Amit Kumar" --member "Sunil:Helper@300"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		specs, _ := cmd.Flags().GetStringArray("member")
		members := make([]primary.CrewMemberLine, len(specs))
		for i, spec := range specs {
			m, err := parseMember(spec)
			if err != nil {
				return err
			}
			members[i] = m
		}

		return wire.LedgerAdapter().CreateCrew(ctx, primary.CreateCrewRequest{
			ClientID: args[0],
			Name:     args[1],
			Members:  members,
		})
	},
}

var crewListCmd = &cobra.Command{
	Use:   "list [client-id]",
	Short: "List a client's crews",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		return wire.LedgerAdapter().ListCrews(ctx, args[0])
	},
}

var crewApplyCmd = &cobra.Command{
	Use:   "apply [client-id] [crew-id] [hours]",
	Short: "Record the same hours for every crew member",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		hours, err := parseAmount("hours", args[2])
		if err != nil {
			return err
		}
		date, _ := cmd.Flags().GetString("date")

		return wire.LedgerAdapter().ApplyCrew(ctx, primary.ApplyCrewRequest{
			ClientID: args[0],
			CrewID:   args[1],
			Hours:    hours,
			Date:     date,
		})
	},
}

func init() {
	const dateHelp = "Transaction date YYYY-MM-DD (default today)"

	ledgerPayCmd.Flags().StringP("mode", "m", "Cash", "Payment mode (Cash|Check|Credit)")
	ledgerPayCmd.Flags().StringP("date", "d", "", dateHelp)

	ledgerBuyCmd.Flags().StringArrayP("item", "i", nil, "Purchased item NAME:QTY[@COST] (repeatable)")
	ledgerBuyCmd.Flags().StringP("from", "f", "", "Distributor")
	ledgerBuyCmd.Flags().StringP("date", "d", "", dateHelp)

	ledgerLaborCmd.Flags().StringArrayP("worker", "w", nil, "Worker NAME:HOURS[:ROLE[@RATE]] (repeatable)")
	ledgerLaborCmd.Flags().StringP("date", "d", "", dateHelp)

	ledgerHistoryCmd.Flags().StringP("kind", "k", "", "Filter by kind (payment|material|labor)")

	crewCreateCmd.Flags().StringArrayP("member", "m", nil, "Member NAME[:ROLE[@RATE]] (repeatable)")
	crewApplyCmd.Flags().StringP("date", "d", "", dateHelp)

	crewCmd.AddCommand(crewCreateCmd)
	crewCmd.AddCommand(crewListCmd)
	crewCmd.AddCommand(crewApplyCmd)

	ledgerCmd.AddCommand(ledgerShowCmd)
	ledgerCmd.AddCommand(ledgerBudgetCmd)
	ledgerCmd.AddCommand(ledgerPayCmd)
	ledgerCmd.AddCommand(ledgerBuyCmd)
	ledgerCmd.AddCommand(ledgerLaborCmd)
	ledgerCmd.AddCommand(ledgerHistoryCmd)
	ledgerCmd.AddCommand(ledgerCatalogCmd)
	ledgerCmd.AddCommand(crewCmd)
}

// LedgerCmd returns the ledger command
func LedgerCmd() *cobra.Command {
	return ledgerCmd
}
