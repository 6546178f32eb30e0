package domain

import "time"

type Category struct {
	ID           string `json:"_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	Active       bool   `json:"isActive"`
	Featured     bool   `json:"isFeatured"`
	ProductCount int    `json:"productCount"`
}

type GeoPoint struct {
	Type string `json:"type"`
	// Coordinates are [longitude, latitude], GeoJSON order.
	Coordinates [2]float64 `json:"coordinates"`
}

type DayHours struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// OpeningHours is keyed by lowercase English weekday name ("monday").
type OpeningHours map[string]DayHours

type Restaurant struct {
	ID           string       `json:"_id"`
	Name         string       `json:"name"`
	Address      string       `json:"address"`
	Phone        string       `json:"phone"`
	Email        string       `json:"email"`
	Image        string       `json:"image"`
	Location     GeoPoint     `json:"location"`
	OpeningHours OpeningHours `json:"openingHours"`
	Status       string       `json:"status"`
	Rating       float64      `json:"rating"`
	Categories   []string     `json:"categories"`
	Menus        []MenuItem   `json:"menus,omitempty"`
}

type MenuItem struct {
	ID            string   `json:"_id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Image         string   `json:"image"`
	Price         float64  `json:"price"`
	SellPrice     float64  `json:"sellPrice"`
	Tags          []string `json:"tags"`
	Category      string   `json:"category"`
	Restaurant    string   `json:"restaurant"`
	AvailableFrom string   `json:"availableFrom"`
	AvailableTo   string   `json:"availableTo"`
}

// EffectivePrice is what the customer pays: the sell price when one is set.
func (m MenuItem) EffectivePrice() float64 {
	if m.SellPrice > 0 {
		return m.SellPrice
	}
	return m.Price
}

type OrderLine struct {
	Menu     string `json:"menu"`
	Name     string `json:"name,omitempty"`
	Quantity int    `json:"quantity"`
}

type TimeWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type Order struct {
	ID              string      `json:"_id"`
	Restaurant      string      `json:"restaurant"`
	User            string      `json:"user"`
	Status          string      `json:"status"`
	PaymentType     string      `json:"paymentType"`
	PaymentStatus   string      `json:"paymentStatus"`
	TransactionID   string      `json:"transactionId,omitempty"`
	PaymentURL      string      `json:"paymentUrl,omitempty"`
	Subtotal        float64     `json:"subtotal"`
	DeliveryCharge  float64     `json:"deliveryCharge"`
	Tax             float64     `json:"tax"`
	PlatformFee     float64     `json:"platformFee"`
	Tip             float64     `json:"tip"`
	Total           float64     `json:"total"`
	DeliveryAddress string      `json:"deliveryAddress"`
	DeliveryTime    TimeWindow  `json:"deliveryTime"`
	Items           []OrderLine `json:"items"`
	CreatedAt       time.Time   `json:"createdAt"`
}

type User struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Location struct {
	Address   string    `json:"address"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Source    string    `json:"source"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	LocationSourceDevice = "device"
	LocationSourceManual = "manual"
)
