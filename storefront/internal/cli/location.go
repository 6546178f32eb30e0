package cli

import (
	"ardelivero-storefront/storefront/internal/app"
	"ardelivero-storefront/storefront/internal/domain"

	"github.com/spf13/cobra"
)

func (r *runner) locationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Show or change the delivery location",
		Args:  cobra.NoArgs,
		RunE:  r.with(runLocationShow),
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Set the delivery location by hand",
		Args:  cobra.NoArgs,
		RunE: r.with(func(cmd *cobra.Command, _ []string, a *app.App) error {
			address, _ := cmd.Flags().GetString("address")
			lat, _ := cmd.Flags().GetFloat64("lat")
			lng, _ := cmd.Flags().GetFloat64("lng")
			err := a.Locations.Update(cmd.Context(), domain.Location{
				Address:   address,
				Latitude:  lat,
				Longitude: lng,
				Source:    domain.LocationSourceManual,
			})
			if err != nil {
				return err
			}
			return runLocationShow(cmd, nil, a)
		}),
	}
	set.Flags().String("address", "", "street address")
	set.Flags().Float64("lat", 0, "latitude")
	set.Flags().Float64("lng", 0, "longitude")
	_ = set.MarkFlagRequired("address")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "request",
			Short: "Use the device location",
			Args:  cobra.NoArgs,
			RunE: r.with(func(cmd *cobra.Command, _ []string, a *app.App) error {
				if _, err := a.Locations.Request(cmd.Context()); err != nil {
					toastNotifier{out: cmd.OutOrStdout()}.Failure(err.Error())
					return err
				}
				return runLocationShow(cmd, nil, a)
			}),
		},
		set,
		&cobra.Command{
			Use:   "show",
			Short: "Show the delivery location",
			Args:  cobra.NoArgs,
			RunE:  r.with(runLocationShow),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Forget the delivery location",
			Args:  cobra.NoArgs,
			RunE: r.with(func(cmd *cobra.Command, _ []string, a *app.App) error {
				if err := a.Locations.Clear(cmd.Context()); err != nil {
					return err
				}
				return runLocationShow(cmd, nil, a)
			}),
		},
	)
	return cmd
}

func runLocationShow(cmd *cobra.Command, _ []string, a *app.App) error {
	loc, ok := a.Locations.Current()
	renderLocation(cmd.OutOrStdout(), loc, ok, a.Locations.PermissionAsked())
	return nil
}
