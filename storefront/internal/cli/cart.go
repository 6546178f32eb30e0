package cli

import (
	"fmt"
	"strconv"

	"ardelivero-storefront/storefront/internal/app"
	"ardelivero-storefront/storefront/internal/domain"

	"github.com/spf13/cobra"
)

func (r *runner) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the cart",
		Args:  cobra.NoArgs,
		RunE:  r.with(runCartShow),
	}

	add := &cobra.Command{
		Use:   "add <menuID>",
		Short: "Add a menu item to the cart",
		Args:  cobra.ExactArgs(1),
		RunE:  r.with(runCartAdd),
	}
	add.Flags().IntP("qty", "q", 1, "quantity to add")

	cmd.AddCommand(
		add,
		&cobra.Command{
			Use:   "remove <menuID>",
			Short: "Remove a line from the cart",
			Args:  cobra.ExactArgs(1),
			RunE: r.with(func(cmd *cobra.Command, args []string, a *app.App) error {
				if err := a.Cart.Remove(cmd.Context(), args[0]); err != nil {
					return err
				}
				return runCartShow(cmd, nil, a)
			}),
		},
		&cobra.Command{
			Use:   "set <menuID> <quantity>",
			Short: "Set a line's quantity, 0 removes it",
			Args:  cobra.ExactArgs(2),
			RunE: r.with(func(cmd *cobra.Command, args []string, a *app.App) error {
				qty, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("quantity %q: %w", args[1], err)
				}
				if err := a.Cart.SetQuantity(cmd.Context(), args[0], qty); err != nil {
					return err
				}
				return runCartShow(cmd, nil, a)
			}),
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show the cart",
			Args:  cobra.NoArgs,
			RunE:  r.with(runCartShow),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: r.with(func(cmd *cobra.Command, _ []string, a *app.App) error {
				if err := a.Cart.Clear(cmd.Context()); err != nil {
					return err
				}
				return runCartShow(cmd, nil, a)
			}),
		},
	)
	return cmd
}

func runCartShow(cmd *cobra.Command, _ []string, a *app.App) error {
	renderCart(cmd.OutOrStdout(), a.Cart.Snapshot())
	return nil
}

func runCartAdd(cmd *cobra.Command, args []string, a *app.App) error {
	qty, _ := cmd.Flags().GetInt("qty")
	item, err := a.Menus.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	cartItem := domain.CartItemFromMenu(*item)
	cartItem.Image = a.Images.URL(cartItem.Image)
	if err := a.Cart.Add(cmd.Context(), cartItem, qty); err != nil {
		return err
	}
	toastNotifier{out: cmd.OutOrStdout()}.Success(fmt.Sprintf("Added %d × %s", qty, item.Name))
	return runCartShow(cmd, nil, a)
}
