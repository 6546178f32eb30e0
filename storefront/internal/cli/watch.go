package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ardelivero-storefront/storefront/internal/app"
	"ardelivero-storefront/storefront/internal/domain"
	"ardelivero-storefront/storefront/internal/store"

	"github.com/spf13/cobra"
)

func (r *runner) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow cart, location and session changes made in other sessions",
		Args:  cobra.NoArgs,
		RunE:  r.with(runWatch),
	}
}

func runWatch(cmd *cobra.Command, _ []string, a *app.App) error {
	out := cmd.OutOrStdout()
	var mu sync.Mutex
	emit := func(line string) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(out, line)
	}

	unsubscribe := []func(){
		store.Subscribe(a.Bus, store.TopicCart, func(c domain.Cart) {
			emit(fmt.Sprintf("cart: %d items, %s", c.TotalItems(), money(c.TotalPrice())))
		}),
		store.Subscribe(a.Bus, store.TopicLocation, func(loc *domain.Location) {
			if loc == nil {
				emit("location: cleared")
				return
			}
			emit("location: " + loc.Address)
		}),
		store.Subscribe(a.Bus, store.TopicSession, func(s *domain.Session) {
			if s == nil {
				emit("session: logged out")
				return
			}
			emit("session: logged in as " + s.User.Email)
		}),
	}
	defer func() {
		for _, fn := range unsubscribe {
			fn()
		}
	}()

	emit(Muted.Render("watching for changes from other sessions, Ctrl+C to stop"))
	err := a.Syncer.Start(cmd.Context())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
