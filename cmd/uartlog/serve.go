package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/uartlog/uartlog-go/internal/api"
	"github.com/uartlog/uartlog-go/internal/metrics"
	"github.com/uartlog/uartlog-go/pkg/uartlog"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		listen string
		rules  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parser over HTTP",
		Long: `Start an HTTP server exposing the readers.

Endpoints:
  GET  /healthz       liveness
  POST /v1/parse      body is log text; ?format=csv for CSV
  POST /v1/capture    {"port": "...", "baud_rate": 9600, "duration_seconds": 10}
  GET  /v1/ports      detected serial ports
  GET  /metrics       Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := a.cfg.Server.Listen
			if listen != "" {
				addr = listen
			}
			classifier, err := a.classifier(rules)
			if err != nil {
				return err
			}

			srv := api.NewServer(api.Options{
				Logger:             a.logger,
				APIToken:           a.cfg.Server.APIToken,
				MaxCaptureDuration: a.cfg.Server.MaxCaptureDuration,
				MaxUploadBytes:     a.cfg.Server.MaxUploadBytes,
				Classifier:         classifier,
				Observer:           metrics.Observer,
				ReaderOptions: []uartlog.Option{
					uartlog.WithReadTimeout(a.cfg.Serial.ReadTimeout),
					uartlog.WithEncoding(a.cfg.Serial.Encoding),
					uartlog.WithSerialConfig(a.cfg.Serial.PortConfig()),
					uartlog.WithPortOpener(a.opener),
				},
			})
			return srv.Serve(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "",
		"Listen address (default from config, else :8080)")
	cmd.Flags().StringVar(&rules, "rules", "",
		"Classification rule file (YAML)")
	return cmd
}
