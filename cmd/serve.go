package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/alandotcom/sweepy/bot"
	"github.com/alandotcom/sweepy/metrics"
	"github.com/alandotcom/sweepy/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the Telegram bot and web frontend",
	RunE:  serve,
}

var (
	serveBot bool
	serveWeb bool
)

func init() {
	serveCmd.Flags().BoolVar(&serveBot, "bot", true, "run the Telegram bot")
	serveCmd.Flags().BoolVar(&serveWeb, "web", true, "run the web frontend")
}

func serve(cmd *cobra.Command, args []string) error {
	if !serveBot && !serveWeb {
		return fmt.Errorf("nothing to serve: enable --bot or --web")
	}

	service, cfg, err := buildService()
	if err != nil {
		return err
	}
	service.Metrics = metrics.New()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.MetricsAddr != "" {
		service.Metrics.Serve(cfg.MetricsAddr)
	}

	errs := make(chan error, 2)
	running := 0

	if serveBot {
		if cfg.Telegram.Token == "" {
			return fmt.Errorf("telegram token is required to run the bot")
		}
		b, err := bot.New(cfg.Telegram.Token, service)
		if err != nil {
			return err
		}
		running++
		go func() { errs <- b.Run(ctx) }()
	}

	if serveWeb {
		gin.SetMode(gin.ReleaseMode)
		running++
		go func() { errs <- web.NewServer(service).Run(ctx, cfg.Web.Addr) }()
	}

	for i := 0; i < running; i++ {
		if err := <-errs; err != nil && !errors.Is(err, context.Canceled) {
			cancel()
			return err
		}
	}
	return nil
}
