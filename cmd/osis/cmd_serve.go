package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"osis/internal/hybrid"
	"osis/internal/server"
)

var serveFlags struct {
	addr           string
	model          string
	strictFeatures bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve SNR predictions over HTTP",
	Long: `Starts the prediction API on the given address. The server recomputes the
physics baseline per request and adds the model's residual correction.
Shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.addr, "addr", server.DefaultAddr, "Listen address")
	f.StringVar(&serveFlags.model, "model", "osis_model.json", "Model artifact path")
	f.BoolVar(&serveFlags.strictFeatures, "strict-features", false,
		"Reject requests on artifact feature drift instead of zero-filling")
}

func runServe(cmd *cobra.Command, _ []string) error {
	var opts []hybrid.Option
	if serveFlags.strictFeatures {
		opts = append(opts, hybrid.WithStrictFeatures())
	}
	pred, err := hybrid.Load(serveFlags.model, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(pred).Run(ctx, serveFlags.addr)
}
