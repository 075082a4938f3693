package cmd

import (
	"context"
	"fmt"
	"regexp"

	"grocer/feature/listing"
	"grocer/feature/product"
	"grocer/feature/shop"

	"github.com/spf13/cobra"
)

var pageFlag int

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search the product catalogue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListing(cmd.Context(), func(ctx context.Context, svc *shop.Service) (*listing.Products, error) {
			return svc.Search(ctx, args[0])
		})
	},
}

// offersCmd represents the offers command
var offersCmd = &cobra.Command{
	Use:   "offers",
	Short: "List the products on promotion",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListing(cmd.Context(), func(ctx context.Context, svc *shop.Service) (*listing.Products, error) {
			return svc.OnOffer(ctx)
		})
	},
}

// favouritesCmd represents the favourites command
var favouritesCmd = &cobra.Command{
	Use:   "favourites",
	Short: "List the customer's favourite products",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListing(cmd.Context(), func(ctx context.Context, svc *shop.Service) (*listing.Products, error) {
			return svc.Favourites(ctx)
		})
	},
}

// shelfCmd represents the shelf command
var shelfCmd = &cobra.Command{
	Use:   "shelf [id]",
	Short: "List the products on a shelf",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListing(cmd.Context(), func(ctx context.Context, svc *shop.Service) (*listing.Products, error) {
			return svc.ProductsByCategory(ctx, args[0])
		})
	},
}

// productCmd represents the product command
var productCmd = &cobra.Command{
	Use:   "product [id]",
	Short: "Show one product with its details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		p, err := a.shop.Product(ctx, args[0])
		if err != nil {
			return err
		}
		v := p.Snapshot()
		if jsonFlag {
			return printJSON(v)
		}

		fmt.Println("\n--- Product ---")
		fmt.Printf("ID:           %s\n", v.ID)
		fmt.Printf("Name:         %s\n", v.Name)
		fmt.Printf("Barcode:      %s (valid: %v)\n", v.Barcode, p.Barcode().Valid())
		fmt.Printf("Max Quantity: %d\n", v.MaxQuantity)
		fmt.Printf("Image:        %s\n", v.ImageURL)
		if v.Offer != nil {
			fmt.Printf("Offer:        %s\n", v.Offer.Description)
		}
		if v.HealthierAlternativeID != "" {
			fmt.Printf("Healthier:    %s\n", v.HealthierAlternativeID)
		}
		if v.CheaperAlternativeID != "" {
			fmt.Printf("Cheaper:      %s\n", v.CheaperAlternativeID)
		}
		if v.BaseProductID != "" {
			fmt.Printf("Base:         %s\n", v.BaseProductID)
		}
		return nil
	},
}

// departmentsCmd represents the departments command
var departmentsCmd = &cobra.Command{
	Use:   "departments",
	Short: "Show the department, aisle and shelf hierarchy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		depts, err := a.shop.Departments(ctx)
		if err != nil {
			return err
		}
		if jsonFlag {
			return printJSON(depts)
		}
		for _, d := range depts {
			fmt.Println(d)
			for _, aisle := range d.Aisles {
				fmt.Printf("  %s\n", aisle)
				for _, s := range aisle.Shelves {
					fmt.Printf("    %-8s %s\n", s.ID, s)
				}
			}
		}
		return nil
	},
}

// shelvesCmd represents the shelves command
var shelvesCmd = &cobra.Command{
	Use:   "shelves [pattern]",
	Short: "List the shelves whose name matches a regular expression",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern := "."
		if len(args) == 1 {
			pattern = args[0]
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern: %w", err)
		}

		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		shelves, err := a.shop.SearchShelves(ctx, re)
		if err != nil {
			return err
		}
		if jsonFlag {
			return printJSON(shelves)
		}
		for _, s := range shelves {
			fmt.Printf("%-8s %s (%s, %s)\n", s.ID, s.Name, s.Aisle, s.Department)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{searchCmd, offersCmd, favouritesCmd, shelfCmd} {
		c.Flags().IntVar(&pageFlag, "page", listing.All, "Page to show; 0 streams every page")
		RootCmd.AddCommand(c)
	}
	RootCmd.AddCommand(productCmd, departmentsCmd, shelvesCmd)
}

// runListing prints one page of a listing, or streams all of them.
func runListing(ctx context.Context, open func(context.Context, *shop.Service) (*listing.Products, error)) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	results, err := open(ctx, a.shop)
	if err != nil {
		return err
	}

	if pageFlag != listing.All {
		items, err := results.Page(ctx, pageFlag)
		if err != nil {
			return err
		}
		if jsonFlag {
			return printJSON(product.Snapshots(items))
		}
		for _, p := range items {
			printProduct(p)
		}
		fmt.Printf("\nPage %d of %d (%d products)\n", pageFlag, results.Pages(), results.Len())
		return nil
	}

	var views []product.View
	for p, err := range results.Each(ctx) {
		if err != nil {
			return err
		}
		if jsonFlag {
			views = append(views, p.Snapshot())
			continue
		}
		printProduct(p)
	}
	if jsonFlag {
		return printJSON(views)
	}
	fmt.Printf("\n%d products\n", results.Len())
	return nil
}

func printProduct(p *product.Product) {
	v := p.Snapshot()
	offer := ""
	if v.Offer != nil {
		offer = " [" + v.Offer.Description + "]"
	}
	fmt.Printf("%-12s %s%s\n", v.ID, v.Name, offer)
}
