package fetch

import (
	"context"
	"regexp"
	"strings"

	"ardelivero-storefront/storefront/internal/domain"
	"ardelivero-storefront/storefront/internal/service"
)

// FallbackCategories is shown when the category listing is unavailable.
var FallbackCategories = []domain.CategoryCard{
	{Source: domain.CategoryFallback, Slug: "restaurants", Title: "Restaurants", Description: "Meals from restaurants near you", Image: "/images/categories/restaurants.png"},
	{Source: domain.CategoryFallback, Slug: "groceries", Title: "Groceries", Description: "Fresh produce and pantry staples", Image: "/images/categories/groceries.png"},
	{Source: domain.CategoryFallback, Slug: "pharmacy", Title: "Pharmacy", Description: "Medicine and personal care", Image: "/images/categories/pharmacy.png"},
	{Source: domain.CategoryFallback, Slug: "sweets", Title: "Sweets", Description: "Desserts, bakeries and coffee", Image: "/images/categories/sweets.png"},
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func Slugify(title string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-")
}

// ResolveCategories turns backend categories into cards. Entries without an
// id can only be linked by slug, so they are tagged as fallback cards.
func ResolveCategories(categories []domain.Category, images service.ImageResolver) []domain.CategoryCard {
	cards := make([]domain.CategoryCard, 0, len(categories))
	for _, c := range categories {
		card := domain.CategoryCard{
			Source:      domain.CategoryFromAPI,
			ID:          c.ID,
			Slug:        Slugify(c.Title),
			Title:       c.Title,
			Description: c.Description,
			Image:       images.URL(c.Image),
		}
		if c.ID == "" {
			card.Source = domain.CategoryFallback
		}
		cards = append(cards, card)
	}
	return cards
}

func NewCategoryLoader(categories service.CategoryServiceInterface, images service.ImageResolver, opts ...Option[[]domain.CategoryCard]) *Loader[[]domain.CategoryCard] {
	fetch := func(ctx context.Context, _ string) ([]domain.CategoryCard, error) {
		list, err := categories.List(ctx)
		if err != nil {
			return nil, err
		}
		return ResolveCategories(list, images), nil
	}
	fallback := make([]domain.CategoryCard, len(FallbackCategories))
	for i, card := range FallbackCategories {
		card.Image = images.URL(card.Image)
		fallback[i] = card
	}
	opts = append([]Option[[]domain.CategoryCard]{
		WithFallback(fallback),
		WithEmpty(EmptySlice[domain.CategoryCard]),
	}, opts...)
	return NewLoader(fetch, opts...)
}
