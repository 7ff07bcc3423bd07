package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/fitout/internal/ports/primary"
	"github.com/example/fitout/internal/wire"
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Manage clients in the delivery pipeline",
	Long:  "Register clients, work through stage checklists, move them forward and approve them at the gate",
}

var clientAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Register a new client in the first stage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		email, _ := cmd.Flags().GetString("email")
		phone, _ := cmd.Flags().GetString("phone")
		address, _ := cmd.Flags().GetString("address")
		remark, _ := cmd.Flags().GetString("remark")

		return wire.ClientAdapter().Create(ctx, primary.CreateClientRequest{
			Name:    args[0],
			Email:   email,
			Phone:   phone,
			Address: address,
			Remark:  remark,
		})
	},
}

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		stage, _ := cmd.Flags().GetString("stage")
		filters := primary.ClientFilters{StageID: stage}
		if cmd.Flags().Changed("approved") {
			approved, _ := cmd.Flags().GetBool("approved")
			filters.Approved = &approved
		}

		return wire.ClientAdapter().List(ctx, filters)
	},
}

var clientShowCmd = &cobra.Command{
	Use:   "show [client-id]",
	Short: "Show client details and the current checklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		_, err := wire.ClientAdapter().Show(ctx, args[0])
		return err
	},
}

var clientEditCmd = &cobra.Command{
	Use:   "edit [client-id]",
	Short: "Edit client contact details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		req := primary.UpdateClientRequest{ClientID: args[0]}
		for flag, field := range map[string]**string{
			"name":    &req.Name,
			"email":   &req.Email,
			"phone":   &req.Phone,
			"address": &req.Address,
			"remark":  &req.Remark,
		} {
			if cmd.Flags().Changed(flag) {
				v, _ := cmd.Flags().GetString(flag)
				*field = &v
			}
		}

		return wire.ClientAdapter().Update(ctx, req)
	},
}

var clientMoveCmd = &cobra.Command{
	Use:   "move [client-id] [stage-id]",
	Short: "Move a client forward to a stage",
	Long: `Move a client forward. The current stage's checklist must be complete,
and moves never go backwards.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		return wire.ClientAdapter().Move(ctx, args[0], args[1])
	},
}

var clientCanMoveCmd = &cobra.Command{
	Use:   "can-move [client-id] [stage-id]",
	Short: "Check whether a move would be accepted",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		return wire.ClientAdapter().CanMove(ctx, args[0], args[1])
	},
}

var clientCheckCmd = &cobra.Command{
	Use:   "check [client-id] [sub-stage-id]",
	Short: "Mark a sub-stage of the current stage done",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		return wire.ClientAdapter().SetSubStage(ctx, args[0], args[1], true)
	},
}

var clientUncheckCmd = &cobra.Command{
	Use:   "uncheck [client-id] [sub-stage-id]",
	Short: "Mark a sub-stage of the current stage not done",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		return wire.ClientAdapter().SetSubStage(ctx, args[0], args[1], false)
	},
}

var clientToggleCmd = &cobra.Command{
	Use:   "toggle [client-id] [sub-stage-id]",
	Short: "Flip a sub-stage of the current stage",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		return wire.ClientAdapter().Toggle(ctx, args[0], args[1])
	},
}

var clientApproveCmd = &cobra.Command{
	Use:   "approve [client-id]",
	Short: "Approve a client at the gating stage and open its ledger",
	Long: `Approve a client. The client must sit in the gating stage with its
checklist complete. The first approval opens the project ledger with --budget.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		raw, _ := cmd.Flags().GetString("budget")
		if raw == "" {
			return fmt.Errorf("--budget is required")
		}
		budget, err := parseAmount("budget", raw)
		if err != nil {
			return err
		}

		return wire.ClientAdapter().Approve(ctx, primary.ApproveClientRequest{
			ClientID:        args[0],
			AllocatedBudget: budget,
		})
	},
}

var clientBoardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show every stage with its clients",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		return wire.ClientAdapter().Board(ctx)
	},
}

func init() {
	// client add flags
	clientAddCmd.Flags().String("email", "", "Contact email")
	clientAddCmd.Flags().String("phone", "", "Contact phone")
	clientAddCmd.Flags().String("address", "", "Site address")
	clientAddCmd.Flags().String("remark", "", "Free-form remark")

	// client list flags
	clientListCmd.Flags().StringP("stage", "s", "", "Filter by stage ID")
	clientListCmd.Flags().Bool("approved", false, "Filter by approval (--approved or --approved=false)")

	// client edit flags
	clientEditCmd.Flags().String("name", "", "New name")
	clientEditCmd.Flags().String("email", "", "New email")
	clientEditCmd.Flags().String("phone", "", "New phone")
	clientEditCmd.Flags().String("address", "", "New address")
	clientEditCmd.Flags().String("remark", "", "New remark")

	// client approve flags
	clientApproveCmd.Flags().StringP("budget", "b", "", "Allocated budget for the project ledger (required)")

	// Register subcommands
	clientCmd.AddCommand(clientAddCmd)
	clientCmd.AddCommand(clientListCmd)
	clientCmd.AddCommand(clientShowCmd)
	clientCmd.AddCommand(clientEditCmd)
	clientCmd.AddCommand(clientMoveCmd)
	clientCmd.AddCommand(clientCanMoveCmd)
	clientCmd.AddCommand(clientCheckCmd)
	clientCmd.AddCommand(clientUncheckCmd)
	clientCmd.AddCommand(clientToggleCmd)
	clientCmd.AddCommand(clientApproveCmd)
	clientCmd.AddCommand(clientBoardCmd)
}

// ClientCmd returns the client command
func ClientCmd() *cobra.Command {
	return clientCmd
}
