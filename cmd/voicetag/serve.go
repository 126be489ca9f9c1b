package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"voicetag/internal/api"
	"voicetag/internal/logging"
	"voicetag/internal/preflight"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.Server.Bind = bind
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			// Assets load before binding so a broken install never accepts requests.
			svc, store, closeFn, err := ctx.newService()
			if err != nil {
				return err
			}
			defer closeFn()
			loader, err := ctx.assetLoader()
			if err != nil {
				return err
			}

			for _, r := range preflight.RunAll(cmd.Context(), cfg, loader) {
				if !r.Passed {
					logger.Warn("preflight check failed",
						logging.String("check", r.Name),
						logging.String("detail", r.Detail),
					)
				}
			}

			var reader api.HistoryReader
			if store != nil {
				reader = store
			}
			server, err := api.New(cfg, svc, reader, loader, logger)
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := server.Start(signalCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "voicetag listening on http://%s\n", server.Addr())

			if err := server.Wait(); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			server.Stop()
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override server.bind")
	return cmd
}
