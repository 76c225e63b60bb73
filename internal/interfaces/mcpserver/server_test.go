package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/table-booking/internal/application/usecases"
	"github.com/example/table-booking/internal/domain/catalog"
	"github.com/example/table-booking/internal/infrastructure/memory"
	"github.com/example/table-booking/internal/lib/logger/sl"
)

func newClient(t *testing.T) *client.Client {
	t.Helper()
	booking := usecases.NewBooking(sl.Discard(), catalog.Default(), memory.New())
	srv := New(sl.Discard(), booking, "test")

	c, err := client.NewInProcessClient(srv)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Start(ctx))

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "booking-test", Version: "1.0.0"}
	_, err = c.Initialize(ctx, initReq)
	require.NoError(t, err)
	return c
}

func call(t *testing.T, c *client.Client, tool string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = tool
	req.Params.Arguments = args
	res, err := c.CallTool(context.Background(), req)
	require.NoError(t, err)
	return res
}

func decode(t *testing.T, res *mcp.CallToolResult, v any) {
	t.Helper()
	require.False(t, res.IsError, "tool returned error result")
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "unexpected content %T", res.Content[0])
	require.NoError(t, json.Unmarshal([]byte(text.Text), v))
}

func TestListTools(t *testing.T) {
	c := newClient(t)

	res, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	require.NoError(t, err)

	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"check_availability", "make_reservation", "cancel_reservation", "list_reservations"} {
		assert.True(t, names[want], "missing tool %s", want)
	}
}

func TestRestaurantsResource(t *testing.T) {
	c := newClient(t)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = RestaurantsURI
	res, err := c.ReadResource(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)

	text, ok := res.Contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, catalog.Default().Listing(), text.Text)
	assert.Equal(t, "text/markdown", text.MIMEType)
}

func TestBookingFlowOverMCP(t *testing.T) {
	c := newClient(t)
	slot := map[string]any{"restaurant": "bachevski", "date": "2025-12-24", "time": "19:00", "guests": 2}

	var avail struct {
		Available bool            `json:"available"`
		Tables    []catalog.Table `json:"tables"`
	}
	decode(t, call(t, c, "check_availability", slot), &avail)
	assert.True(t, avail.Available)
	assert.Equal(t, catalog.Table{ID: 1, Seats: 2}, avail.Tables[0])

	booking := map[string]any{"name": "Olena", "phone": "+380501112233"}
	for k, v := range slot {
		booking[k] = v
	}
	var booked struct {
		Status        string `json:"status"`
		ReservationID string `json:"reservation_id"`
		Details       struct {
			Table int `json:"table"`
		} `json:"details"`
	}
	decode(t, call(t, c, "make_reservation", booking), &booked)
	assert.Equal(t, "confirmed", booked.Status)
	assert.Equal(t, 1, booked.Details.Table)

	var list struct {
		Count        int `json:"count"`
		Reservations []struct {
			ID    string `json:"reservation_id"`
			Phone string `json:"phone"`
		} `json:"reservations"`
	}
	decode(t, call(t, c, "list_reservations", map[string]any{"phone": "+380501112233"}), &list)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, booked.ReservationID, list.Reservations[0].ID)

	var cancelled struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	decode(t, call(t, c, "cancel_reservation", map[string]any{"reservation_id": booked.ReservationID}), &cancelled)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Equal(t, fmt.Sprintf("Reservation %s successfully cancelled", booked.ReservationID), cancelled.Message)

	decode(t, call(t, c, "cancel_reservation", map[string]any{"reservation_id": booked.ReservationID}), &cancelled)
	assert.Equal(t, "failed", cancelled.Status)
	assert.Equal(t, fmt.Sprintf("Reservation '%s' not found", booked.ReservationID), cancelled.Error)
}

func TestUnknownRestaurantIsStructured(t *testing.T) {
	c := newClient(t)

	var avail map[string]any
	decode(t, call(t, c, "check_availability",
		map[string]any{"restaurant": "nope", "date": "2025-12-24", "time": "19:00", "guests": 2}), &avail)
	assert.Equal(t, false, avail["available"])
	assert.Equal(t, "Restaurant 'nope' not found", avail["error"])
}

func TestMissingArgumentIsToolError(t *testing.T) {
	c := newClient(t)

	res := call(t, c, "check_availability", map[string]any{"restaurant": "bachevski", "date": "2025-12-24", "time": "19:00"})
	assert.True(t, res.IsError)

	res = call(t, c, "cancel_reservation", map[string]any{})
	assert.True(t, res.IsError)
}

func TestFractionalGuestsIsToolError(t *testing.T) {
	c := newClient(t)

	res := call(t, c, "check_availability", map[string]any{
		"restaurant": "bachevski", "date": "2025-12-24", "time": "19:00", "guests": 2.7,
	})
	assert.True(t, res.IsError)

	res = call(t, c, "make_reservation", map[string]any{
		"restaurant": "bachevski", "date": "2025-12-24", "time": "19:00", "guests": 1.5,
		"name": "Olena", "phone": "+380501112233",
	})
	assert.True(t, res.IsError)

	var avail map[string]any
	decode(t, call(t, c, "check_availability", map[string]any{
		"restaurant": "bachevski", "date": "2025-12-24", "time": "19:00", "guests": 2.0,
	}), &avail)
	assert.Equal(t, true, avail["available"])
}
