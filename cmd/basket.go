package cmd

import (
	"context"
	"fmt"
	"strconv"

	"grocer/core/reconcile"
	"grocer/feature/basket"
	"grocer/feature/product"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var noteFlag string

// basketCmd represents the basket command
var basketCmd = &cobra.Command{
	Use:   "basket",
	Short: "Show and change the customer's basket",
	Long:  `Every basket command needs --email and --password; anonymous sessions have no basket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBasket(cmd.Context(), func(ctx context.Context, b *basket.Basket, _ *app) error {
			return printBasket(b)
		})
	},
}

// basketAddCmd represents the basket add command
var basketAddCmd = &cobra.Command{
	Use:   "add [product id]...",
	Short: "Add one unit of each product",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBasket(cmd.Context(), func(ctx context.Context, b *basket.Basket, a *app) error {
			products, err := references(a, args)
			if err != nil {
				return err
			}
			if err := b.Add(ctx, products, noteFlag); err != nil {
				return err
			}
			return printBasket(b)
		})
	},
}

// basketSetCmd represents the basket set command
var basketSetCmd = &cobra.Command{
	Use:   "set [product id] [quantity]",
	Short: "Set the quantity of a product; 0 removes it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q: %w", args[1], err)
		}
		return withBasket(cmd.Context(), func(ctx context.Context, b *basket.Basket, a *app) error {
			products, err := references(a, args[:1])
			if err != nil {
				return err
			}
			if err := b.SetQuantity(ctx, products[0], amount, noteFlag); err != nil {
				return err
			}
			return printBasket(b)
		})
	},
}

// basketRemoveCmd represents the basket remove command
var basketRemoveCmd = &cobra.Command{
	Use:   "remove [product id]...",
	Short: "Remove products entirely",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBasket(cmd.Context(), func(ctx context.Context, b *basket.Basket, a *app) error {
			products, err := references(a, args)
			if err != nil {
				return err
			}
			if err := b.Remove(ctx, products...); err != nil {
				return err
			}
			return printBasket(b)
		})
	},
}

// basketNoteCmd represents the basket note command
var basketNoteCmd = &cobra.Command{
	Use:   "note [product id] [note]",
	Short: "Set the note for the personal shopper; an empty note clears it",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		note := ""
		if len(args) == 2 {
			note = args[1]
		}
		return withBasket(cmd.Context(), func(ctx context.Context, b *basket.Basket, a *app) error {
			products, err := references(a, args[:1])
			if err != nil {
				return err
			}
			if err := b.SetNote(ctx, products[0], note); err != nil {
				return err
			}
			return printBasket(b)
		})
	},
}

// basketClearCmd represents the basket clear command
var basketClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every line",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBasket(cmd.Context(), func(ctx context.Context, b *basket.Basket, a *app) error {
			a.logger.Info("Clearing basket", zap.Int("lines", b.Len()))
			if err := b.Clear(ctx); err != nil {
				return err
			}
			return printBasket(b)
		})
	},
}

// basketSyncCmd represents the basket sync command
var basketSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reload the basket and report what changed remotely",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBasket(cmd.Context(), func(ctx context.Context, b *basket.Basket, a *app) error {
			plan, err := b.Sync(ctx)
			if err != nil {
				return err
			}
			if jsonFlag {
				return printJSON(plan)
			}
			printPlan(plan)
			return nil
		})
	},
}

func init() {
	basketAddCmd.Flags().StringVar(&noteFlag, "note", "", "Note for the personal shopper")
	basketSetCmd.Flags().StringVar(&noteFlag, "note", "", "Note for the personal shopper")
	basketCmd.AddCommand(basketAddCmd, basketSetCmd, basketRemoveCmd, basketNoteCmd, basketClearCmd, basketSyncCmd)
	RootCmd.AddCommand(basketCmd)
}

// withBasket opens the logged-in customer's basket and runs fn on it.
func withBasket(ctx context.Context, fn func(context.Context, *basket.Basket, *app) error) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	b, err := a.shop.Basket(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, b, a)
}

// references resolves product ids without fetching their details.
func references(a *app, ids []string) ([]*product.Product, error) {
	products := make([]*product.Product, 0, len(ids))
	for _, id := range ids {
		p, err := a.shop.Reference(id)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func printBasket(b *basket.Basket) error {
	v := b.Snapshot()
	if jsonFlag {
		return printJSON(v)
	}

	fmt.Println("\n--- Basket ---")
	fmt.Printf("ID:          %s\n", v.ID)
	fmt.Printf("Customer:    %s\n", v.Owner)
	for _, l := range v.Lines {
		fmt.Printf("%4d x %-12s %s", l.Quantity, l.Product.ID, l.Product.Name)
		if l.Note != "" {
			fmt.Printf("  (%s)", l.Note)
		}
		if l.ErrorMessage != "" {
			fmt.Printf("  \033[31m%s\033[0m", l.ErrorMessage)
		}
		fmt.Println()
	}
	fmt.Println("--------------")
	fmt.Printf("Items:       %d\n", v.Quantity)
	fmt.Printf("Guide price: %s\n", v.GuidePrice.StringFixed(2))
	fmt.Printf("Savings:     %s\n", v.MultiBuySavings.StringFixed(2))
	fmt.Printf("Points:      %d\n", v.ClubcardPoints)
	return nil
}

func printPlan(plan *reconcile.Plan) {
	fmt.Printf("Basket synced: %s\n", plan.Summary)
	for _, action := range plan.Actions {
		fmt.Printf("- %-6s %s (%s)\n", action.Type, action.Key, action.Reason)
	}
}
