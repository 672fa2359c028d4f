package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"umrahtransfer/internal/config"
	"umrahtransfer/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate up|down",
	Short:     "Apply the schema, or roll back the latest migration",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if env.DBDSN == "" {
			return fmt.Errorf("DB_DSN (or DB_USER/DB_HOST/DB_NAME) is required")
		}
		dsn, err := config.NormalizeDSN(env.DBDSN)
		if err != nil {
			return err
		}
		return db.Migrate(dsn, args[0])
	},
}
