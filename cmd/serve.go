package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"discover-server/config"
	"discover-server/di"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			container, err := di.NewContainer(ctx, cfg)
			if err != nil {
				return err
			}
			defer container.Close()

			container.SessionService.StartReaper(ctx, cfg.ReaperInterval)
			return container.DiscoverHttpServer.Start(ctx)
		},
	}
	cmd.Flags().String("addr", config.HTTP_ADDR, "listen address")
	return cmd
}
