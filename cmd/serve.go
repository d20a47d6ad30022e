package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sudankdk/cee/internal/api"
	"github.com/sudankdk/cee/internal/docker"
	"github.com/sudankdk/cee/internal/logger"
)

var addrFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		for _, st := range a.registry.Check(ctx) {
			if !st.Present {
				logger.Warn(ctx, "execution image missing", zap.String("language", st.Language.String()), zap.String("image", st.ImageName))
			}
		}

		reaper := docker.NewReaper(a.api, cfg.Sandbox.ReapInterval, cfg.Sandbox.ReapMinAge)
		go reaper.Run(ctx)

		serverCfg := cfg.Server
		if addrFlag != "" {
			serverCfg.Addr = addrFlag
		}
		return api.NewServer(a.svc, a.registry, serverCfg).StartServer(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
