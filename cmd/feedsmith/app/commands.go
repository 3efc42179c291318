package app

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/feedsmith/feedsmith/internal/server"
	"github.com/feedsmith/feedsmith/pkg/query"
)

// CreateImportCommand creates the import command. It runs the feed
// pipeline against the configured store and reports per-stage results.
func (a *App) CreateImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import and reconcile the configured feeds",
		Long: `Import runs the feed pipeline: the delimited text feed first as one
atomic batch, then the hierarchical JSON feed merged record by record.
A fatal feed aborts the pipeline; later stages do not run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			fs, err := a.Feedsmith(ctx)
			if err != nil {
				return err
			}

			results, runErr := fs.Reconcile(ctx)
			for _, res := range results {
				status := "ok"
				if res.IsFatal() {
					status = "fatal: " + res.Err.Error()
				}
				cmd.Printf("%s: persisted=%d skipped=%d warnings=%d duration=%s %s\n",
					res.Feed, res.Persisted, res.Skipped, len(res.Warnings), res.Duration, status)
				if a.config.Verbose {
					for _, w := range res.Warnings {
						cmd.Printf("  warning: %s\n", w)
					}
				}
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&a.config.DelimitedFeed, "delimited", a.config.DelimitedFeed, "path to the delimited text feed")
	cmd.Flags().StringVar(&a.config.HierarchicalFeed, "hierarchical", a.config.HierarchicalFeed, "path to the hierarchical JSON feed")

	return cmd
}

// CreateProductsCommand creates the products command for querying the
// reconciled catalog from the command line.
func (a *App) CreateProductsCommand() *cobra.Command {
	var (
		filter     string
		sortBy     string
		includeAll bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Query the reconciled product catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			fs, err := a.Feedsmith(ctx)
			if err != nil {
				return err
			}

			opts := query.Options{
				Filter:    filter,
				Sort:      sortBy,
				OnlyValid: !includeAll,
			}
			views, err := fs.Products(ctx, opts)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(views)
			}

			printProductTable(cmd, views)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "case-insensitive substring match on sku, name, manufacturer, or ean")
	cmd.Flags().StringVar(&sortBy, "sort", "", `sort specification, e.g. "price,desc" (fields: price, updatedAt, sku, name)`)
	cmd.Flags().BoolVar(&includeAll, "all", false, "include invalid entries")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	return cmd
}

// CreateServeCommand creates the serve command exposing the catalog over
// HTTP.
func (a *App) CreateServeCommand() *cobra.Command {
	var runImport bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the product catalog over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			fs, err := a.Feedsmith(ctx)
			if err != nil {
				return err
			}

			if runImport {
				if _, err := fs.Reconcile(ctx); err != nil {
					return err
				}
			}

			srv := server.New(fs.Engine(), a.logger, server.Config{Addr: a.config.ListenAddr})
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&a.config.ListenAddr, "addr", a.config.ListenAddr, "listen address")
	cmd.Flags().BoolVar(&runImport, "import", false, "run the feed pipeline before serving")

	return cmd
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("feedsmith %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit: %s\n", a.commit)
				cmd.Printf("  built:  %s\n", a.date)
			}
		},
	}
}

// printProductTable renders product views as an aligned text table.
func printProductTable(cmd *cobra.Command, views []query.ProductView) {
	if len(views) == 0 {
		cmd.Println("No products found")
		return
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SKU\tNAME\tMANUFACTURER\tPRICE\tSTOCK\tEAN\tUPDATED\tSOURCE\tVALID")
	for _, v := range views {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%t\n",
			v.SKU,
			v.Name,
			orDash(v.Manufacturer),
			priceOrDash(v),
			stockOrDash(v),
			orDash(v.EAN),
			v.UpdatedAt.Format("2006-01-02 15:04:05"),
			v.Source,
			v.Valid,
		)
	}
	_ = w.Flush()
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func priceOrDash(v query.ProductView) string {
	if v.FinalPrice == nil {
		return "-"
	}
	return v.FinalPrice.StringFixed(2)
}

func stockOrDash(v query.ProductView) string {
	if v.Stock == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v.Stock)
}
