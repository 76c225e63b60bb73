package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/table-booking/internal/config"
	"github.com/example/table-booking/internal/interfaces/mcpserver"
	"github.com/example/table-booking/internal/web"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		transport string
		addr      string
		migrateUp bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the booking tools over MCP (stdio or HTTP)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, opts, migrateUp)
			if err != nil {
				return err
			}
			defer a.Close()

			if transport == "" {
				transport = a.cfg.Transport
			}
			if addr == "" {
				addr = a.cfg.ListenAddr
			}

			srv := mcpserver.New(a.log, a.booking, Version)

			switch transport {
			case config.TransportStdio:
				return mcpserver.ServeStdio(ctx, a.log, srv, os.Stdin, os.Stdout)
			case config.TransportHTTP:
				ws := &web.Server{
					Log:     a.log,
					Booking: a.booking,
					MCP:     mcpserver.HTTPHandler(srv),
					Metrics: a.metrics.Handler(),
				}
				return web.Start(ctx, a.log, addr, ws.Routes())
			default:
				return fmt.Errorf("unknown transport %q", transport)
			}
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "stdio or http (default from TRANSPORT)")
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default from LISTEN_ADDR)")
	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup (postgres store)")
	return cmd
}
