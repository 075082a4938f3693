package cmd

import (
	"context"
	"fmt"

	"grocer/core/storage"
	"grocer/feature/export"
	"grocer/feature/listing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportNameFlag string

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Upload JSON snapshots to object storage",
	Long:  `Exports walk every page of a listing and upload the result to the configured S3/MinIO bucket.`,
}

// exportSearchCmd represents the export search command
var exportSearchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Export every page of a catalogue search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withExporter(cmd.Context(), func(ctx context.Context, a *app, svc *export.Service) error {
			results, err := a.shop.Search(ctx, args[0])
			if err != nil {
				return err
			}
			return exportListing(ctx, a, svc, results)
		})
	},
}

// exportOffersCmd represents the export offers command
var exportOffersCmd = &cobra.Command{
	Use:   "offers",
	Short: "Export every product on promotion",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withExporter(cmd.Context(), func(ctx context.Context, a *app, svc *export.Service) error {
			results, err := a.shop.OnOffer(ctx)
			if err != nil {
				return err
			}
			return exportListing(ctx, a, svc, results)
		})
	},
}

// exportBasketCmd represents the export basket command
var exportBasketCmd = &cobra.Command{
	Use:   "basket",
	Short: "Export the customer's basket",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withExporter(cmd.Context(), func(ctx context.Context, a *app, svc *export.Service) error {
			b, err := a.shop.Basket(ctx)
			if err != nil {
				return err
			}
			object, err := svc.Basket(ctx, b)
			if err != nil {
				return err
			}
			fmt.Printf("Exported basket to %s/%s\n", a.cfg.Storage.Bucket, object)
			return nil
		})
	},
}

// exportListCmd represents the export list command
var exportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored exports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withExporter(cmd.Context(), func(ctx context.Context, a *app, svc *export.Service) error {
			objects, err := svc.List(ctx)
			if err != nil {
				return err
			}
			if jsonFlag {
				return printJSON(objects)
			}
			for _, o := range objects {
				fmt.Printf("%s  %8d  %s\n", o.LastModified.Format("2006-01-02 15:04:05"), o.Size, o.Name)
			}
			return nil
		})
	},
}

func init() {
	exportSearchCmd.Flags().StringVar(&exportNameFlag, "name", "search", "Export name")
	exportOffersCmd.Flags().StringVar(&exportNameFlag, "name", "offers", "Export name")
	exportCmd.AddCommand(exportSearchCmd, exportOffersCmd, exportBasketCmd, exportListCmd)
	RootCmd.AddCommand(exportCmd)
}

func withExporter(ctx context.Context, fn func(context.Context, *app, *export.Service) error) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	client, err := storage.NewClient(a.cfg.Storage)
	if err != nil {
		return err
	}
	return fn(ctx, a, export.NewService(client, a.cfg.Storage, a.logger))
}

func exportListing(ctx context.Context, a *app, svc *export.Service, results *listing.Products) error {
	a.logger.Info("Exporting listing (one request per page)...", zap.Int("products", results.Len()), zap.Int("pages", results.Pages()))
	object, err := svc.Products(ctx, exportNameFlag, results)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d products to %s/%s\n", results.Len(), a.cfg.Storage.Bucket, object)
	return nil
}
