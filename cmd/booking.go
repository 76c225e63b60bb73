package cmd

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/example/table-booking/internal/application/usecases"
	"github.com/example/table-booking/internal/config"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type slotFlags struct {
	restaurant string
	date       string
	time       string
	guests     int
}

func (f *slotFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.restaurant, "restaurant", "", "restaurant key")
	c.Flags().StringVar(&f.date, "date", "", "reservation date YYYY-MM-DD")
	c.Flags().StringVar(&f.time, "time", "", "reservation time HH:MM")
	c.Flags().IntVar(&f.guests, "guests", 2, "party size")
	_ = c.MarkFlagRequired("restaurant")
	_ = c.MarkFlagRequired("date")
	_ = c.MarkFlagRequired("time")
}

// withBooking runs fn against a freshly wired app. One-shot commands only
// see earlier reservations with STORE=postgres or STORE=redis.
func withBooking(opts *rootOptions, fn func(ctx context.Context, b *usecases.Booking, args []string) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := newApp(ctx, opts, false)
		if err != nil {
			return err
		}
		defer a.Close()
		if a.cfg.Store == config.StoreMemory {
			a.log.Warn("in-memory store: reservations are not kept after this command exits")
		}

		res, err := fn(ctx, a.booking, args)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	}
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var f slotFlags
	c := &cobra.Command{
		Use:   "check",
		Short: "Check table availability for a slot",
	}
	c.RunE = withBooking(opts, func(ctx context.Context, b *usecases.Booking, args []string) (any, error) {
		return b.CheckAvailability(ctx, f.restaurant, f.date, f.time, f.guests)
	})
	f.register(c)
	return c
}

func newBookCmd(opts *rootOptions) *cobra.Command {
	var (
		f           slotFlags
		name, phone string
	)
	c := &cobra.Command{
		Use:   "book",
		Short: "Make a reservation",
	}
	c.RunE = withBooking(opts, func(ctx context.Context, b *usecases.Booking, args []string) (any, error) {
		return b.MakeReservation(ctx, usecases.ReservationRequest{
			Restaurant: f.restaurant,
			Date:       f.date,
			Time:       f.time,
			Guests:     f.guests,
			Name:       name,
			Phone:      phone,
		})
	})
	f.register(c)
	c.Flags().StringVar(&name, "name", "", "customer name")
	c.Flags().StringVar(&phone, "phone", "", "customer phone")
	_ = c.MarkFlagRequired("name")
	_ = c.MarkFlagRequired("phone")
	return c
}

func newCancelCmd(opts *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "cancel <reservation-id>",
		Short: "Cancel a reservation",
		Args:  cobra.ExactArgs(1),
	}
	c.RunE = withBooking(opts, func(ctx context.Context, b *usecases.Booking, args []string) (any, error) {
		return b.CancelReservation(ctx, args[0])
	})
	return c
}

func newReservationsCmd(opts *rootOptions) *cobra.Command {
	var phone string
	c := &cobra.Command{
		Use:   "reservations",
		Short: "List reservations for a phone number",
	}
	c.RunE = withBooking(opts, func(ctx context.Context, b *usecases.Booking, args []string) (any, error) {
		return b.ListReservations(ctx, phone)
	})
	c.Flags().StringVar(&phone, "phone", "", "customer phone")
	_ = c.MarkFlagRequired("phone")
	return c
}
