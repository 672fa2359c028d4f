// Package cli implements the umrahd command: the API server plus the
// schema, catalog and export maintenance commands.
package cli

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"umrahtransfer/internal/config"
	"umrahtransfer/internal/utils"
)

var (
	env      config.Env
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "umrahd",
	Short: "Umrah transfer booking API",
	Long: `umrahd serves the booking API for airport, hotel and holy-site transfers
and carries the maintenance commands operators run against the same database.

Configuration is read from the environment (and an optional .env file).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		env = config.LoadEnv()
		if logLevel != "" {
			env.LogLevel = logLevel
		}
		if _, err := utils.InitLogger(env.LogLevel); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		if env.GinMode != "" {
			gin.SetMode(env.GinMode)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, exportCmd, jobsCmd)
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
