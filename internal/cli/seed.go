package cli

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"umrahtransfer/internal/catalog"
	"umrahtransfer/internal/domain"
)

var seedOpts struct {
	catalogPath string
	adminEmail  string
	adminName   string
	adminRole   string
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the fleet, routes, promotions and settings from the catalog file",
	Long: `seed upserts vehicles by name and routes by slug, replaces route fares and
creates promotions whose code is not yet taken, so it is safe to rerun.

With --admin-email (password from ADMIN_PASSWORD) it also creates or resets
an operator account.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, env)
		if err != nil {
			return err
		}
		defer a.Close()

		path := seedOpts.catalogPath
		if path == "" {
			path = env.CatalogPath
		}
		c, err := catalog.Load(path)
		if err != nil {
			return err
		}
		res, err := a.catalog.Seed(ctx, c)
		if err != nil {
			return err
		}
		zap.L().Info("catalog seeded", zap.String("file", path), zap.Stringer("result", res))

		if seedOpts.adminEmail == "" {
			return nil
		}
		id, err := a.auth.EnsureUser(ctx, seedOpts.adminName, seedOpts.adminEmail, os.Getenv("ADMIN_PASSWORD"), seedOpts.adminRole)
		if err != nil {
			return err
		}
		zap.L().Info("operator account ready", zap.Int64("user_id", id), zap.String("email", seedOpts.adminEmail))
		return nil
	},
}

func init() {
	f := seedCmd.Flags()
	f.StringVar(&seedOpts.catalogPath, "file", "", "catalog YAML (default CATALOG_PATH)")
	f.StringVar(&seedOpts.adminEmail, "admin-email", "", "create or reset this operator account")
	f.StringVar(&seedOpts.adminName, "admin-name", "", "display name for the operator account")
	f.StringVar(&seedOpts.adminRole, "admin-role", domain.RoleAdmin, "admin or dispatcher")
}
