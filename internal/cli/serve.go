package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tatianab/orb-cult/internal/app"
	"github.com/tatianab/orb-cult/internal/logging"
	"github.com/tatianab/orb-cult/internal/server"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve actions over HTTP and websockets",
		Long: `Starts the HTTP service. Dispatchers POST actions to /v1/actions or stream
them over /v1/ws. GET / answers keep-alive pings and /metrics exposes
Prometheus metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Port = port
			}
			logging.Init(cfg.Level(), cfg.LogFormat)
			log := logging.New("serve")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, logging.New("app"))
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					log.Error("close", "error", err)
				}
			}()

			log.Info("orb awake", "storage", cfg.Storage, "oracle", cfg.OracleEnabled(), "story", a.Engine.Graph().Title)
			srv := server.New(a.Engine, server.Options{
				ActionRate:  cfg.ActionRate,
				ActionBurst: cfg.ActionBurst,
				Logger:      logging.New("http"),
			})
			return srv.Run(ctx, fmt.Sprintf(":%d", cfg.Port))
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides PORT)")
	return cmd
}
