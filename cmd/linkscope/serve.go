package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tracive/linkscope/internal/config"
	"github.com/tracive/linkscope/internal/server"
)

func newServeCommand() *cobra.Command {
	var (
		configPath string
		addr       string
		dataPath   string
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a dataset file over the graph API",
		Long: `Serve a local YAML dataset over the same HTTP surface the dashboard backend
exposes, so the viewer (and the dashboard frontend in development) can run
without the production stack. With --watch the server reloads the file on
change and pushes a refresh notification to connected viewers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			if dataPath == "" {
				dataPath = cfg.Server.Dataset
			}
			if !cmd.Flags().Changed("watch") {
				watch = cfg.Server.Watch
			}

			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer logger.Sync()

			srv, err := server.New(dataPath, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if watch {
				go func() {
					if err := srv.Watch(ctx); err != nil {
						logger.Error("dataset watch stopped", zap.Error(err))
					}
				}()
			}

			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default "+config.DefaultPath+")")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "dataset file to serve")
	cmd.Flags().BoolVarP(&watch, "watch", "w", true, "reload the dataset when it changes")

	return cmd
}
