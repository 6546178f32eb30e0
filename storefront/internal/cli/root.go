// Package cli is the storefront's terminal front end: each page of the shop
// is a cobra command rendering with lipgloss.
package cli

import (
	"context"
	"time"

	"ardelivero-storefront/storefront/internal/app"

	"github.com/spf13/cobra"
)

// Factory builds the application for one command invocation.
type Factory func(ctx context.Context, configFile string) (*app.App, error)

type runner struct {
	factory Factory
	now     func() time.Time
}

func NewRootCommand(factory Factory) *cobra.Command {
	return newRootCommand(&runner{factory: factory, now: time.Now})
}

func newRootCommand(r *runner) *cobra.Command {
	root := &cobra.Command{
		Use:   "ardelivero",
		Short: "Order food, groceries and pharmacy items from ardelivero",
		Long: `ardelivero is the storefront client: browse categories, restaurants
and menus, keep a cart, register or log in, check out and follow
the payment through to the order confirmation.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "config file (default is ./storefront.yaml or $HOME/.ardelivero/storefront.yaml)")

	root.AddCommand(
		r.categoriesCmd(),
		r.restaurantsCmd(),
		r.menuCmd(),
		r.cartCmd(),
		r.locationCmd(),
		r.registerCmd(),
		r.verifyCmd(),
		r.loginCmd(),
		r.logoutCmd(),
		r.ordersCmd(),
		r.checkoutCmd(),
		r.watchCmd(),
	)
	return root
}

// with opens the application around fn and closes it afterwards.
func (r *runner) with(fn func(cmd *cobra.Command, args []string, a *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Root().PersistentFlags().GetString("config")
		a, err := r.factory(cmd.Context(), configFile)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				a.Log.Warn("close app", "error", err)
			}
		}()
		return fn(cmd, args, a)
	}
}
