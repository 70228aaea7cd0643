package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/puravparab/PaperTrail/dashboard"
	gatewaycmd "github.com/puravparab/PaperTrail/gateway/cmd"
	"github.com/puravparab/PaperTrail/inmem"
	"github.com/puravparab/PaperTrail/server"
	"github.com/puravparab/PaperTrail/store"
)

var serveInMemory bool

func init() {
	ServeCommand.Flags().BoolVar(&serveInMemory, "inmem", false, "keep the papers in memory instead of the configured store")

	RootCmd.AddCommand(&ServeCommand)
}

var ServeCommand = cobra.Command{
	Use:   "serve",
	Short: "Start the papertrail server",
	Long:  "Start the server owning the store: gateway messages, dashboard and exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		open := store.Opener(config.Configuration)
		if serveInMemory {
			s := inmem.New()
			open = func() (store.Handle, error) { return s, nil }
		}

		srv := server.New(env, logger)
		bridge, shutdown := gatewaycmd.Start(srv, open, logger)
		defer shutdown()
		dashboard.RegisterHTTP(srv, bridge)

		addr := config.HTTP.Addr
		if addr == "" {
			addr = ":1705"
		}
		return srv.Start(ctx, addr)
	},
}
