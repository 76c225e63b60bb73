package mcpserver

import (
	"context"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/example/table-booking/internal/application/usecases"
)

func slotParams() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("restaurant",
			mcp.Required(),
			mcp.Description("Restaurant key from restaurants://list, e.g. bachevski"),
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Reservation date, YYYY-MM-DD"),
		),
		mcp.WithString("time",
			mcp.Required(),
			mcp.Description("Reservation time, HH:MM"),
		),
		mcp.WithNumber("guests",
			mcp.Required(),
			mcp.Description("Number of guests"),
			mcp.Min(1),
		),
	}
}

func checkAvailabilityTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("List free tables at a restaurant for a date, time and party size"),
	}, slotParams()...)
	return mcp.NewTool("check_availability", opts...)
}

func makeReservationTool() mcp.Tool {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Book the first free table that seats the party"),
	}, slotParams()...)
	opts = append(opts,
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Customer name"),
		),
		mcp.WithString("phone",
			mcp.Required(),
			mcp.Description("Customer phone number"),
		),
	)
	return mcp.NewTool("make_reservation", opts...)
}

func cancelReservationTool() mcp.Tool {
	return mcp.NewTool("cancel_reservation",
		mcp.WithDescription("Cancel a reservation by its id"),
		mcp.WithString("reservation_id",
			mcp.Required(),
			mcp.Description("Reservation id, e.g. RES-20251224-1A2B"),
		),
	)
}

func listReservationsTool() mcp.Tool {
	return mcp.NewTool("list_reservations",
		mcp.WithDescription("List active reservations made with a phone number"),
		mcp.WithString("phone",
			mcp.Required(),
			mcp.Description("Customer phone number"),
		),
	)
}

type slotArgs struct {
	restaurant, date, time string
	guests                 int
}

func requireSlot(request mcp.CallToolRequest) (slotArgs, error) {
	var a slotArgs
	var err error
	if a.restaurant, err = request.RequireString("restaurant"); err != nil {
		return a, err
	}
	if a.date, err = request.RequireString("date"); err != nil {
		return a, err
	}
	if a.time, err = request.RequireString("time"); err != nil {
		return a, err
	}
	if a.guests, err = requireWhole(request, "guests"); err != nil {
		return a, err
	}
	return a, nil
}

// requireWhole reads a JSON number that must carry no fractional part.
func requireWhole(request mcp.CallToolRequest, key string) (int, error) {
	f, err := request.RequireFloat(key)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("argument %q must be a whole number", key)
	}
	return int(f), nil
}

func (h *handlers) checkAvailability(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := requireSlot(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := h.booking.CheckAvailability(ctx, a.restaurant, a.date, a.time, a.guests)
	return h.result("check_availability", res, err)
}

func (h *handlers) makeReservation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a, err := requireSlot(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	phone, err := request.RequireString("phone")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := h.booking.MakeReservation(ctx, usecases.ReservationRequest{
		Restaurant: a.restaurant,
		Date:       a.date,
		Time:       a.time,
		Guests:     a.guests,
		Name:       name,
		Phone:      phone,
	})
	return h.result("make_reservation", res, err)
}

func (h *handlers) cancelReservation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("reservation_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := h.booking.CancelReservation(ctx, id)
	return h.result("cancel_reservation", res, err)
}

func (h *handlers) listReservations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phone, err := request.RequireString("phone")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := h.booking.ListReservations(ctx, phone)
	return h.result("list_reservations", res, err)
}
