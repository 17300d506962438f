package cli

import (
	"os/signal"
	"syscall"

	"github.com/gompdf/claimpacket/internal/auth"
	"github.com/gompdf/claimpacket/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve GET /claims/{id}/export/pdf",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := stderrLogger(cfg)

		if len(cfg.Server.JWTSecret) < auth.MinSecretLen {
			logger.Warn("server.jwt_secret is shorter than the minimum; every request will be unauthorized",
				"min_len", auth.MinSecretLen)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := server.New(server.Config{
			Addr:           cfg.Server.Addr,
			JWTSecret:      []byte(cfg.Server.JWTSecret),
			RequestTimeout: cfg.Server.RequestTimeout,
			ShutdownGrace:  cfg.Server.ShutdownGrace,
		}, a.generator, logger)
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	_ = vp.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
