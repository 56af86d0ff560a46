// Package repair implements the repair command.
package repair

import (
	"github.com/spf13/cobra"

	"github.com/5sensprod/possync/internal/cmd/application"
	"github.com/5sensprod/possync/internal/cmd/cmdutil"
)

// Flags holds the repair command flags.
type Flags struct {
	Products   string
	Categories string
	Brands     string
	Suppliers  string
}

// NewCommand creates the repair command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "repair",
		GroupID: "maintenance",
		Short:   "Repair structural corruption in the product store",
		Long: `Repair removes duplicate meta_data keys (the last value wins, the
first position is kept) and reports problems it cannot fix on its own:

• Products sharing a woo_id
• References to categories, brands or suppliers that do not exist

Reference checks run only for the collections given.`,
		Example: `  possync repair --categories data/categories.db --brands data/brands.db
  possync repair --execute`,
		Args: cobra.NoArgs,
	}

	cmd.Flags().StringVar(&flags.Products, "products", "", "Product store (config: local_path)")
	cmd.Flags().StringVar(&flags.Categories, "categories", "", "Category store for reference checks (config: categories_path)")
	cmd.Flags().StringVar(&flags.Brands, "brands", "", "Brand store for reference checks (config: brands_path)")
	cmd.Flags().StringVar(&flags.Suppliers, "suppliers", "", "Supplier store for reference checks (config: suppliers_path)")
	runFlags := cmdutil.AddRunFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg := app.Paths().SyncConfig()
		cfg.LocalPath = cmdutil.Or(flags.Products, cfg.LocalPath)
		cfg.BrandsPath = cmdutil.Or(flags.Brands, cfg.BrandsPath)
		cfg.SuppliersPath = cmdutil.Or(flags.Suppliers, cfg.SuppliersPath)
		cfg.CategoriesPath = cmdutil.Or(flags.Categories, cfg.CategoriesPath)
		if err := cmdutil.Require("products", cfg.LocalPath); err != nil {
			return err
		}

		engine, err := app.Engine(cfg, runFlags.Options()...)
		if err != nil {
			return err
		}
		res, err := engine.Repair(cmd.Context())
		if err != nil {
			return err
		}
		return cmdutil.PrintResult(cmd, app, res)
	}

	return cmd
}
