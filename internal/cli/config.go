package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/fitout/internal/config"
	"github.com/example/fitout/internal/wire"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect fitout configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after applying defaults, .fitout/config.json,
.env and FITOUT_* environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := wire.Config()

		show := func(key, value, fallback string) {
			if value == "" {
				value = fallback
			}
			fmt.Printf("%-10s %s\n", key+":", value)
		}
		show("database", cfg.DatabasePath, "~/.fitout/fitout.db")
		show("pipeline", cfg.PipelineFile, "(built-in)")
		show("listen", cfg.ListenAddr, "")
		show("log", cfg.LogLevel+" ("+cfg.LogFormat+")", "")
		if v, err := wire.SchemaVersion(); err == nil {
			show("schema", fmt.Sprintf("v%d", v), "")
		}
		fmt.Println()
		fmt.Printf("Overrides: %s %s %s %s %s\n",
			config.EnvDatabase, config.EnvPipeline, config.EnvListen, config.EnvLogLevel, config.EnvLogFormat)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}

// ConfigCmd returns the config command
func ConfigCmd() *cobra.Command {
	return configCmd
}
