package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"ardelivero-storefront/storefront/internal/checkout"
	"ardelivero-storefront/storefront/internal/domain"
	"ardelivero-storefront/storefront/internal/fetch"
	"ardelivero-storefront/storefront/internal/service"
)

func money(v float64) string {
	return fmt.Sprintf("SAR %.2f", v)
}

func renderCategories(w io.Writer, state fetch.State[[]domain.CategoryCard]) {
	fmt.Fprintln(w, Title.Render("Categories"))
	if state.Fallback {
		fmt.Fprintln(w, FallbackBadge.Render("showing popular categories, the live list is unavailable"))
	}
	for _, card := range state.Data {
		ref := card.ID
		if !card.Browsable() {
			ref = card.Slug
		}
		fmt.Fprintf(w, "  %s  %s\n", Price.Render(card.Title), Muted.Render(ref))
		if card.Description != "" {
			fmt.Fprintf(w, "      %s\n", Subtitle.Render(card.Description))
		}
	}
}

func renderRestaurants(w io.Writer, restaurants []domain.Restaurant, images service.ImageResolver, now time.Time) {
	fmt.Fprintln(w, Title.Render("Restaurants"))
	if len(restaurants) == 0 {
		fmt.Fprintln(w, Muted.Render("  no restaurants in this category yet"))
		return
	}
	for _, r := range restaurants {
		hours := service.EvaluateHours(r.OpeningHours, now)
		badge := ClosedBadge.Render("closed")
		if hours.Open {
			badge = OpenBadge.Render("open")
		}
		label := hours.Label
		if label == "" {
			label = "hours unavailable"
		}
		fmt.Fprintf(w, "  %s  %s  %s  %s\n", Price.Render(r.Name), badge, Muted.Render(label), Muted.Render(r.ID))
		if r.Address != "" {
			fmt.Fprintf(w, "      %s\n", r.Address)
		}
		fmt.Fprintf(w, "      %s\n", Muted.Render(images.URL(r.Image)))
	}
}

func renderMenu(w io.Writer, items []domain.MenuItem) {
	fmt.Fprintln(w, Title.Render("Menu"))
	if len(items) == 0 {
		fmt.Fprintln(w, Muted.Render("  nothing on the menu yet"))
		return
	}
	for _, item := range items {
		renderMenuItem(w, item)
	}
}

func renderMenuItem(w io.Writer, item domain.MenuItem) {
	price := Price.Render(money(item.EffectivePrice()))
	if item.SellPrice > 0 && item.SellPrice < item.Price {
		price += " " + Muted.Render(money(item.Price))
	}
	fmt.Fprintf(w, "  %s  %s  %s\n", item.Name, price, Muted.Render(item.ID))
	if item.Description != "" {
		fmt.Fprintf(w, "      %s\n", Subtitle.Render(item.Description))
	}
}

func renderCart(w io.Writer, cart domain.Cart) {
	fmt.Fprintln(w, Title.Render("Cart"))
	if cart.Empty() {
		fmt.Fprintln(w, Muted.Render("  your cart is empty"))
		return
	}
	for _, line := range cart.Lines {
		fmt.Fprintf(w, "  %d × %s  %s  %s\n", line.Quantity, line.Item.Name, money(line.Subtotal()), Muted.Render(line.Item.ID))
	}
	fmt.Fprintf(w, "  items: %d  total: %s\n", cart.TotalItems(), Price.Render(money(cart.TotalPrice())))
}

func renderLocation(w io.Writer, loc domain.Location, ok, asked bool) {
	fmt.Fprintln(w, Title.Render("Delivery location"))
	if !ok {
		msg := "  no location set"
		if asked {
			msg += " (permission was already requested)"
		}
		fmt.Fprintln(w, Muted.Render(msg))
		return
	}
	address := loc.Address
	if address == "" {
		address = "unnamed location"
	}
	fmt.Fprintf(w, "  %s\n  %.5f, %.5f  %s\n", address, loc.Latitude, loc.Longitude, Muted.Render(loc.Source))
}

func renderOrders(w io.Writer, orders []domain.Order) {
	fmt.Fprintln(w, Title.Render("Orders"))
	if len(orders) == 0 {
		fmt.Fprintln(w, Muted.Render("  no orders match"))
		return
	}
	for _, o := range orders {
		created := ""
		if !o.CreatedAt.IsZero() {
			created = o.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "  %s  %s  %s/%s  %s  %s\n",
			o.ID, strings.ToLower(o.Status), o.PaymentType, strings.ToLower(o.PaymentStatus),
			Price.Render(money(o.Total)), Muted.Render(created))
	}
}

func renderConfirmation(w io.Writer, c *checkout.Confirmation) {
	o := c.Order
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", Title.Render("Order confirmed"))
	fmt.Fprintf(&b, "order:    %s\n", o.ID)
	fmt.Fprintf(&b, "payment:  %s (%s)\n", o.PaymentType, strings.ToLower(c.Status))
	if o.DeliveryAddress != "" {
		fmt.Fprintf(&b, "deliver:  %s\n", o.DeliveryAddress)
	}
	if o.Total > 0 {
		fmt.Fprintf(&b, "subtotal: %s  delivery: %s  tax: %s\n", money(o.Subtotal), money(o.DeliveryCharge), money(o.Tax))
		fmt.Fprintf(&b, "total:    %s\n", money(o.Total))
	}
	if c.Link != "" {
		fmt.Fprintf(&b, "track:    %s", c.Link)
	}
	fmt.Fprintln(w, Box.Render(strings.TrimRight(b.String(), "\n")))
}
