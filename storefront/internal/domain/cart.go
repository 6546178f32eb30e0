package domain

// CartItem is the product snapshot captured when it was added.
type CartItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	UnitPrice    float64 `json:"unitPrice"`
	Image        string  `json:"image,omitempty"`
	RestaurantID string  `json:"restaurantId,omitempty"`
}

type CartLine struct {
	Item     CartItem `json:"item"`
	Quantity int      `json:"quantity"`
}

func (l CartLine) Subtotal() float64 {
	return l.Item.UnitPrice * float64(l.Quantity)
}

// Cart totals are always derived from Lines; there are no stored counters.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

func (c Cart) TotalItems() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

func (c Cart) TotalPrice() float64 {
	total := 0.0
	for _, line := range c.Lines {
		total += line.Subtotal()
	}
	return total
}

func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}

func CartItemFromMenu(m MenuItem) CartItem {
	return CartItem{
		ID:           m.ID,
		Name:         m.Name,
		UnitPrice:    m.EffectivePrice(),
		Image:        m.Image,
		RestaurantID: m.Restaurant,
	}
}
