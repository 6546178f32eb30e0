package cli

import (
	"fmt"
	"io"

	"ardelivero-storefront/storefront/internal/otp"
)

var (
	_ otp.Notifier  = toastNotifier{}
	_ otp.Navigator = (*pageNavigator)(nil)
)

// toastNotifier prints notifications as single styled lines.
type toastNotifier struct {
	out io.Writer
}

func (n toastNotifier) Success(message string) {
	fmt.Fprintln(n.out, ToastSuccess.Render("✓ "+message))
}

func (n toastNotifier) Failure(message string) {
	fmt.Fprintln(n.out, ToastFailure.Render("✗ "+message))
}

// Pages a flow can send the user to.
const (
	PageRegister = "register"
	PageLogin    = "login"
	PageCheckout = "checkout"
)

var pageHints = map[string]string{
	PageRegister: "ardelivero register",
	PageLogin:    "ardelivero login --email <email> --password <password>",
	PageCheckout: "ardelivero checkout",
}

// pageNavigator tells the user which command continues from a destination.
type pageNavigator struct {
	out io.Writer
}

func (n *pageNavigator) goTo(page string) {
	fmt.Fprintln(n.out, Muted.Render("next: "+pageHints[page]))
}

func (n *pageNavigator) ToRegister() { n.goTo(PageRegister) }
func (n *pageNavigator) ToLogin()    { n.goTo(PageLogin) }
func (n *pageNavigator) ToCheckout() { n.goTo(PageCheckout) }
