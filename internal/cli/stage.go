package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/fitout/internal/wire"
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Inspect the configured pipeline",
}

var stageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stages and their checklists in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := NewContext()
		defer cancel()

		return wire.ClientAdapter().Stages(ctx)
	},
}

func init() {
	stageCmd.AddCommand(stageListCmd)
}

// StageCmd returns the stage command
func StageCmd() *cobra.Command {
	return stageCmd
}
