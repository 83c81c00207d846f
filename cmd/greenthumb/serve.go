package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vbonduro/greenthumb/internal/chat"
	"github.com/vbonduro/greenthumb/internal/logging"
	"github.com/vbonduro/greenthumb/internal/service"
	"github.com/vbonduro/greenthumb/internal/web"
	"github.com/vbonduro/greenthumb/internal/web/templates"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	cfg, logger, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := newBotanist(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize botanist", logging.Err(err))
		return err
	}

	chatMgr := chat.NewManager(backend, logger)
	plants := service.NewPlantService(backend, chatMgr, logger)
	server := web.NewServer(plants, chatMgr, templates.FS, logger)

	if err := server.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		logger.Error("server error", logging.Err(err))
		return err
	}
	return nil
}
