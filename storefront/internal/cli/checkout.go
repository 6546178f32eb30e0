package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"ardelivero-storefront/storefront/internal/app"
	"ardelivero-storefront/storefront/internal/checkout"
	"ardelivero-storefront/storefront/internal/domain"

	"github.com/spf13/cobra"
)

func (r *runner) checkoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Long: `Place an order for everything in the cart. Address and payment type
default to the ones used last time. Card payments print the gateway
link; with --wait the command follows the payment until it settles.`,
		Args: cobra.NoArgs,
		RunE: r.with(r.runCheckout),
	}
	cmd.Flags().String("address", "", "delivery address")
	cmd.Flags().String("payment", "", "payment type: cash or card")
	cmd.Flags().Float64("tip", 0, "tip for the rider")
	cmd.Flags().String("notes", "", "notes for the restaurant")
	cmd.Flags().Bool("wait", false, "wait for a card payment to complete")
	cmd.Flags().Duration("timeout", 10*time.Minute, "how long --wait follows the payment")
	cmd.Flags().String("qr-out", "", "write the confirmation QR code PNG to this file")
	return cmd
}

func (r *runner) runCheckout(cmd *cobra.Command, _ []string, a *app.App) error {
	if _, err := r.requireSession(a); err != nil {
		return err
	}

	var req checkout.Request
	req.DeliveryAddress, _ = cmd.Flags().GetString("address")
	req.PaymentType, _ = cmd.Flags().GetString("payment")
	req.Tip, _ = cmd.Flags().GetFloat64("tip")
	req.Notes, _ = cmd.Flags().GetString("notes")
	if loc, ok := a.Locations.Current(); ok {
		req.Location = &domain.GeoPoint{Type: "Point", Coordinates: [2]float64{loc.Longitude, loc.Latitude}}
		if req.DeliveryAddress == "" && a.Checkout.Prefill().DeliveryAddress == "" {
			req.DeliveryAddress = loc.Address
		}
	}

	out := cmd.OutOrStdout()
	toast := toastNotifier{out: out}
	placement, err := a.Checkout.Place(cmd.Context(), req)
	if err != nil {
		toast.Failure("Could not place the order")
		return err
	}
	toast.Success("Order " + placement.Order.ID + " placed")

	confirmation := placement.Confirmation
	if confirmation == nil {
		if placement.Order.PaymentURL != "" {
			fmt.Fprintln(out, "Complete the payment at "+Title.Render(placement.Order.PaymentURL))
		}
		wait, _ := cmd.Flags().GetBool("wait")
		if !wait {
			fmt.Fprintln(out, Muted.Render("payment pending, rerun with --wait to follow it"))
			return nil
		}
		timeout, _ := cmd.Flags().GetDuration("timeout")
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		fmt.Fprintln(out, Muted.Render("waiting for the payment to settle..."))
		confirmation, err = a.Checkout.AwaitPayment(ctx, placement.Order)
		if err != nil {
			toast.Failure("Payment was not completed")
			return err
		}
	}

	renderConfirmation(out, confirmation)
	if path, _ := cmd.Flags().GetString("qr-out"); path != "" && len(confirmation.QR) > 0 {
		if err := os.WriteFile(path, confirmation.QR, 0o644); err != nil {
			return fmt.Errorf("write qr code: %w", err)
		}
		fmt.Fprintln(out, Muted.Render("QR code written to "+path))
	}
	return nil
}
