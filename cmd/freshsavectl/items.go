package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"freshsave/internal/domain/inventory"
)

var (
	listCategory string
	seedDryRun   bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add a sample household inventory",
	RunE: func(cmd *cobra.Command, args []string) error {
		items := sampleItems(time.Now())
		if seedDryRun {
			return printItems(cmd.OutOrStdout(), items, time.Now(), inventory.AllCategories, 0)
		}

		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		repo := newRepo(s)
		for _, it := range items {
			newID, err := repo.AddItem(cmd.Context(), it).Get()
			if err != nil {
				return fmt.Errorf("add %s: %w", it.Name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", it.Name, newID)
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List inventory items",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		items, err := newRepo(s).GetAllItems(cmd.Context()).Get()
		if err != nil {
			return err
		}
		return printItems(cmd.OutOrStdout(), items, time.Now(), listCategory, s.cfg.Inventory.ExpiringWindowDays)
	},
}

var expiringCmd = &cobra.Command{
	Use:   "expiring",
	Short: "List items expiring within the configured window",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		items, err := newRepo(s).GetExpiringSoonItems(cmd.Context()).Get()
		if err != nil {
			return err
		}
		if err := printItems(cmd.OutOrStdout(), items, time.Now(), inventory.AllCategories, s.cfg.Inventory.ExpiringWindowDays); err != nil {
			return err
		}
		if recipe := inventory.SuggestRecipe(items); recipe != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "\nSuggested: %s - %s\n", recipe.Name, recipe.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd, listCmd, expiringCmd)

	seedCmd.Flags().BoolVar(&seedDryRun, "dry-run", false, "Print the sample items without writing them")
	listCmd.Flags().StringVar(&listCategory, "category", inventory.AllCategories, "Only show items of this category")
}

func printItems(w io.Writer, items []inventory.Item, now time.Time, category string, windowDays int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tQUANTITY\tEXPIRES\tSTATUS\tFAV")
	for _, it := range inventory.FilterByCategory(items, category) {
		qty := strconv.FormatFloat(it.Quantity, 'f', -1, 64)
		if it.Unit != nil {
			qty += " " + *it.Unit
		}
		expires := "-"
		if it.ExpiryDate != nil {
			expires = it.ExpiryDate.Local().Format("2006-01-02")
		}
		fav := ""
		if it.IsFavorite {
			fav = "*"
		}
		status := "-"
		if windowDays > 0 {
			status = string(it.Status(now, windowDays))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", it.ID, it.Name, it.Category, qty, expires, status, fav)
	}
	return tw.Flush()
}

// sampleItems is a small pantry spread across categories and expiry states.
func sampleItems(now time.Time) []inventory.Item {
	day := func(n int) *time.Time {
		t := now.AddDate(0, 0, n)
		return &t
	}
	unit := func(u string) *string { return &u }

	return []inventory.Item{
		{Name: "Milk", Category: "Dairy & Eggs", Quantity: 1, Unit: unit("liter"), ExpiryDate: day(3)},
		{Name: "Eggs", Category: "Dairy & Eggs", Quantity: 12, Unit: unit("pcs"), ExpiryDate: day(10)},
		{Name: "Spinach", Category: "Vegetables", Quantity: 1, Unit: unit("Bag"), ExpiryDate: day(2)},
		{Name: "Bananas", Category: "Fruits", Quantity: 6, Unit: unit("pcs"), ExpiryDate: day(4)},
		{Name: "Chicken breast", Category: "Poultry", Quantity: 0.5, Unit: unit("kg"), ExpiryDate: day(-1)},
		{Name: "Rice", Category: "Grains & Pasta", Quantity: 2, Unit: unit("kg"), IsFavorite: true},
		{Name: "Tomato sauce", Category: "Condiments & Sauces", Quantity: 1, Unit: unit("Jar"), ExpiryDate: day(120)},
	}
}
