package inventory

import "strings"

// RecipePlaceholder is a recipe idea derived from what is about to expire.
// It is never persisted.
type RecipePlaceholder struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type recipeRule struct {
	category string
	recipe   RecipePlaceholder
}

// Rules are checked in order; the first category present wins.
var recipeRules = []recipeRule{
	{
		category: "Vegetables",
		recipe:   RecipePlaceholder{Name: "Quick Garden Salad", Description: "Use up those expiring vegetables!"},
	},
	{
		category: "Fruits",
		recipe:   RecipePlaceholder{Name: "Fresh Fruit Smoothie", Description: "Blend your expiring fruits."},
	},
}

// SuggestRecipe picks a recipe for the expiring items, or nil.
func SuggestRecipe(expiring []Item) *RecipePlaceholder {
	for _, rule := range recipeRules {
		for _, it := range expiring {
			if strings.EqualFold(it.Category, rule.category) {
				r := rule.recipe
				return &r
			}
		}
	}
	return nil
}
