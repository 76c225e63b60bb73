package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/example/table-booking/internal/application/usecases"
	"github.com/example/table-booking/internal/lib/logger/sl"
)

const (
	Name = "restaurant-booking"

	RestaurantsURI = "restaurants://list"
	EndpointPath   = "/mcp"
)

// New builds the MCP server exposing the booking engine as tools and the
// catalog as a resource.
func New(log *slog.Logger, booking *usecases.Booking, version string) *server.MCPServer {
	s := server.NewMCPServer(
		Name,
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	)

	h := &handlers{log: log, booking: booking}

	s.AddTool(checkAvailabilityTool(), h.checkAvailability)
	s.AddTool(makeReservationTool(), h.makeReservation)
	s.AddTool(cancelReservationTool(), h.cancelReservation)
	s.AddTool(listReservationsTool(), h.listReservations)

	s.AddResource(mcp.NewResource(
		RestaurantsURI,
		"Restaurants",
		mcp.WithResourceDescription("Restaurants that accept bookings, with city, address and working hours"),
		mcp.WithMIMEType("text/markdown"),
	), h.listRestaurants)

	return s
}

// ServeStdio serves s over in/out until ctx is done or in is closed.
func ServeStdio(ctx context.Context, log *slog.Logger, s *server.MCPServer, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(slog.NewLogLogger(log.Handler(), slog.LevelError))
	log.Info("serving MCP over stdio")
	return stdio.Listen(ctx, in, out)
}

// HTTPHandler serves s over the streamable HTTP transport at EndpointPath.
func HTTPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s, server.WithEndpointPath(EndpointPath))
}

type handlers struct {
	log     *slog.Logger
	booking *usecases.Booking
}

func (h *handlers) result(tool string, v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		h.log.Error("tool failed", slog.String("tool", tool), sl.Err(err))
		return mcp.NewToolResultError("internal error, please retry later"), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Error("failed to encode tool result", slog.String("tool", tool), sl.Err(err))
		return mcp.NewToolResultError("internal error, please retry later"), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (h *handlers) listRestaurants(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	h.log.Info("restaurants listing requested")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/markdown",
			Text:     h.booking.Catalog().Listing(),
		},
	}, nil
}
