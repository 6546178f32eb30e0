package cli

import (
	"errors"

	"ardelivero-storefront/storefront/internal/app"
	"ardelivero-storefront/storefront/internal/domain"
	"ardelivero-storefront/storefront/internal/fetch"

	"github.com/spf13/cobra"
)

var errMenuTarget = errors.New("pass a category ID or --id")

func (r *runner) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List shop categories",
		Args:  cobra.NoArgs,
		RunE:  r.with(runCategories),
	}
}

func runCategories(cmd *cobra.Command, _ []string, a *app.App) error {
	loader := fetch.NewCategoryLoader(a.Categories, a.Images)
	defer loader.Unmount()

	state, err := loader.Fetch(cmd.Context(), "categories")
	if err != nil {
		return err
	}
	if state.Err != nil && !state.Fallback {
		return state.Err
	}
	renderCategories(cmd.OutOrStdout(), state)
	return nil
}

func (r *runner) restaurantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restaurants <categoryID>",
		Short: "List restaurants in a category with today's hours",
		Args:  cobra.ExactArgs(1),
		RunE: r.with(func(cmd *cobra.Command, args []string, a *app.App) error {
			restaurants, err := a.Restaurants.ListByCategory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderRestaurants(cmd.OutOrStdout(), restaurants, a.Images, r.now())
			return nil
		}),
	}
}

func (r *runner) menuCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menu [categoryID]",
		Short: "List menu items in a category, or show one item with --id",
		Args:  cobra.MaximumNArgs(1),
		RunE:  r.with(runMenu),
	}
	cmd.Flags().String("id", "", "show a single menu item")
	return cmd
}

func runMenu(cmd *cobra.Command, args []string, a *app.App) error {
	id, _ := cmd.Flags().GetString("id")
	if id != "" {
		item, err := a.Menus.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		renderMenu(cmd.OutOrStdout(), []domain.MenuItem{*item})
		return nil
	}
	if len(args) == 0 {
		return errMenuTarget
	}
	items, err := a.Menus.ListByCategory(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	renderMenu(cmd.OutOrStdout(), items)
	return nil
}
