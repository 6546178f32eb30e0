package service

import (
	"fmt"
	"net/url"

	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(orderID string) ([]byte, error)
	Link(orderID string) string
}

var _ QRGenerator = DefaultQRGenerator{}

type DefaultQRGenerator struct {
	SiteURL string
}

// Generate returns a PNG QR code linking to the order confirmation page.
func (g DefaultQRGenerator) Generate(orderID string) ([]byte, error) {
	return qrcode.Encode(g.Link(orderID), qrcode.Medium, 256)
}

func (g DefaultQRGenerator) Link(orderID string) string {
	return fmt.Sprintf("%s/order-confirmation?orderId=%s", g.SiteURL, url.QueryEscape(orderID))
}
