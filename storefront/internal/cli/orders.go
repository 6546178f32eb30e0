package cli

import (
	"errors"
	"fmt"
	"time"

	"ardelivero-storefront/storefront/internal/app"
	"ardelivero-storefront/storefront/internal/domain"
	"ardelivero-storefront/storefront/internal/service"
	"ardelivero-storefront/storefront/internal/store"

	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

var errSessionExpired = errors.New("your session has expired, please log in again")

// requireSession returns the current session unless it is missing or expired.
func (r *runner) requireSession(a *app.App) (domain.Session, error) {
	session, ok := a.Sessions.Current()
	if !ok {
		return domain.Session{}, store.ErrNotLoggedIn
	}
	if a.Sessions.Expired(r.now()) {
		return domain.Session{}, errSessionExpired
	}
	return session, nil
}

func (r *runner) ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Show your order history",
		Args:  cobra.NoArgs,
		RunE:  r.with(r.runOrders),
	}
	cmd.Flags().String("id", "", "show a single order")
	cmd.Flags().String("status", "", "order status")
	cmd.Flags().String("payment-type", "", "cash or card")
	cmd.Flags().String("payment-status", "", "payment status")
	cmd.Flags().String("from", "", "first day, YYYY-MM-DD")
	cmd.Flags().String("to", "", "last day, YYYY-MM-DD")
	return cmd
}

func (r *runner) runOrders(cmd *cobra.Command, _ []string, a *app.App) error {
	session, err := r.requireSession(a)
	if err != nil {
		return err
	}

	if id, _ := cmd.Flags().GetString("id"); id != "" {
		order, err := a.Orders.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		renderOrders(cmd.OutOrStdout(), []domain.Order{*order})
		return nil
	}

	var filter service.OrderFilter
	filter.Status, _ = cmd.Flags().GetString("status")
	filter.PaymentType, _ = cmd.Flags().GetString("payment-type")
	filter.PaymentStatus, _ = cmd.Flags().GetString("payment-status")
	if filter.From, err = dateFlag(cmd, "from"); err != nil {
		return err
	}
	if filter.To, err = dateFlag(cmd, "to"); err != nil {
		return err
	}

	orders, err := a.Orders.History(cmd.Context(), session.User.ID, filter)
	if err != nil {
		return err
	}
	renderOrders(cmd.OutOrStdout(), orders)
	return nil
}

func dateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, v, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return t, nil
}
