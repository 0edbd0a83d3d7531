package dto

import (
	"time"

	"freshsave/internal/domain/home"
)

// HomeResponse is the full home screen state.
type HomeResponse struct {
	AllItems            []ItemResponse  `json:"allItems"`
	ExpiringSoon        []ItemResponse  `json:"expiringSoon"`
	DisplayedItems      []ItemResponse  `json:"displayedItems"`
	TotalCount          int             `json:"totalCount"`
	ExpiringSoonCount   int             `json:"expiringSoonCount"`
	Savings             string          `json:"savings"`
	Categories          []string        `json:"categories"`
	CategorySuggestions []string        `json:"categorySuggestions"`
	SelectedCategory    string          `json:"selectedCategory"`
	SuggestedRecipe     *RecipeResponse `json:"suggestedRecipe"`
	ItemToEdit          *ItemResponse   `json:"itemToEdit"`
	TakenAt             time.Time       `json:"takenAt"`
}

// FromSnapshot renders a coordinator snapshot.
func FromSnapshot(s home.Snapshot, windowDays int) HomeResponse {
	resp := HomeResponse{
		AllItems:            FromItems(s.AllItems, s.TakenAt, windowDays),
		ExpiringSoon:        FromItems(s.ExpiringSoon, s.TakenAt, windowDays),
		DisplayedItems:      FromItems(s.DisplayedItems, s.TakenAt, windowDays),
		TotalCount:          s.TotalCount,
		ExpiringSoonCount:   s.ExpiringSoonCount,
		Savings:             s.Savings,
		Categories:          nonNil(s.Categories),
		CategorySuggestions: nonNil(s.CategorySuggestions),
		SelectedCategory:    s.SelectedCategory,
		TakenAt:             s.TakenAt,
	}
	if s.SuggestedRecipe != nil {
		resp.SuggestedRecipe = &RecipeResponse{
			Name:        s.SuggestedRecipe.Name,
			Description: s.SuggestedRecipe.Description,
		}
	}
	if s.ItemToEdit != nil {
		it := FromItem(*s.ItemToEdit, s.TakenAt, windowDays)
		resp.ItemToEdit = &it
	}
	return resp
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
