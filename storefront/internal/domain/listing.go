package domain

type CategorySource int

const (
	CategoryFromAPI CategorySource = iota
	CategoryFallback
)

func (s CategorySource) String() string {
	if s == CategoryFallback {
		return "fallback"
	}
	return "api"
}

// CategoryCard is the resolved form of a category listing entry. Source tells
// whether it came from the backend (and can be used to drill down by ID) or
// from the static fallback set, which only links by slug.
type CategoryCard struct {
	Source      CategorySource
	ID          string
	Slug        string
	Title       string
	Description string
	Image       string
}

func (c CategoryCard) Browsable() bool {
	return c.Source == CategoryFromAPI && c.ID != ""
}
