package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/fitout/internal/cli"
	"github.com/example/fitout/internal/version"
	"github.com/example/fitout/internal/wire"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "fitout",
		Short:   "fitout - client pipeline and project ledger for an interior-fitout studio",
		Version: version.String(),
		Long: `fitout tracks clients through the studio's delivery pipeline, gates
approval on completed checklists, and keeps a budget ledger of payments,
materials and labor for every approved project.`,
		SilenceUsage: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = wire.Close()
		},
	}

	// Setup
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.ConfigCmd())

	// Pipeline and ledger
	rootCmd.AddCommand(cli.StageCmd())
	rootCmd.AddCommand(cli.ClientCmd())
	rootCmd.AddCommand(cli.LedgerCmd())

	// HTTP host
	rootCmd.AddCommand(cli.ServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		_ = wire.Close()
		os.Exit(1)
	}
}
