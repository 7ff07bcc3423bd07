package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/fitout/internal/config"
	"github.com/example/fitout/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize fitout in the current directory",
		Long: `Write .fitout/config.json and an editable .fitout/pipeline.yaml holding
the default stages and catalog, then create the database schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
			force, _ := cmd.Flags().GetBool("force")
			dbPath, _ := cmd.Flags().GetString("db")

			if _, err := config.LoadConfig(dir); err == nil && !force {
				return fmt.Errorf("fitout is already initialized in %s\nHint: use --force to overwrite", dir)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			pipelineRel := filepath.Join(".fitout", "pipeline.yaml")
			if err := config.DefaultPipeline().SavePipeline(filepath.Join(dir, pipelineRel)); err != nil {
				return err
			}
			fmt.Printf("✓ Pipeline written to %s\n", pipelineRel)

			cfg := config.Default()
			cfg.PipelineFile = pipelineRel
			cfg.DatabasePath = dbPath
			if err := config.SaveConfig(dir, cfg); err != nil {
				return err
			}
			fmt.Println("✓ Config written to .fitout/config.json")

			if err := wire.Init(dir); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			fmt.Println("✓ Database initialized")
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  fitout stage list")
			fmt.Println("  fitout client add \"Acme Interiors\" --phone 555-0100")

			return nil
		},
	}
	cmd.Flags().Bool("force", false, "Overwrite an existing configuration")
	cmd.Flags().String("db", "", "Database path (default ~/.fitout/fitout.db)")
	return cmd
}
