package inventory

import (
	"slices"
	"strings"
)

// PredefinedUnits are offered as unit suggestions on the entry form.
var PredefinedUnits = []string{
	"pcs", "kg", "g", "lbs", "oz", "liter", "ml",
	"Pack", "Dozen", "Can", "Bottle", "Box", "Jar", "Bag",
}

// PredefinedCategories are always offered as category suggestions.
var PredefinedCategories = []string{
	"Fruits",
	"Vegetables",
	"Dairy & Eggs",
	"Meat",
	"Poultry",
	"Fish & Seafood",
	"Pantry Staples",
	"Grains & Pasta",
	"Cereals",
	"Bakery & Bread",
	"Frozen Foods",
	"Drinks & Beverages",
	"Snacks",
	"Condiments & Sauces",
	"Spices & Seasonings",
	"Sweets & Desserts",
	"Baby Food",
	"Pet Food",
	"Leftovers",
	"Other",
}

// DistinctCategories returns the non-blank categories of items in
// first-seen order.
func DistinctCategories(items []Item) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		c := it.Category
		if strings.TrimSpace(c) == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// CategorySuggestions merges the predefined categories with observed ones,
// deduplicated and sorted lexicographically.
func CategorySuggestions(observed []string) []string {
	seen := make(map[string]struct{}, len(PredefinedCategories)+len(observed))
	out := make([]string, 0, len(PredefinedCategories)+len(observed))
	for _, list := range [][]string{PredefinedCategories, observed} {
		for _, c := range list {
			if strings.TrimSpace(c) == "" {
				continue
			}
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}

// UnitSuggestions returns a copy of the predefined units.
func UnitSuggestions() []string {
	return slices.Clone(PredefinedUnits)
}

// AllCategories is the filter value that disables category filtering.
const AllCategories = "All"

// FilterByCategory returns the items shown for the selected category.
func FilterByCategory(items []Item, category string) []Item {
	if category == AllCategories {
		return slices.Clone(items)
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out
}
