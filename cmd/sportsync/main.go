package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"sportsync/internal/api"
	"sportsync/internal/config"
	"sportsync/internal/fetcher"
	"sportsync/internal/normalize"
	"sportsync/internal/repository"
	"sportsync/internal/service"
)

func main() {
	once := flag.Bool("once", false, "run exactly one fetch cycle and exit")
	interval := flag.Int("interval", 0, "override fetch interval in minutes")
	serve := flag.Bool("serve", false, "also serve the query API while scheduling")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *interval > 0 {
		cfg.Fetch.IntervalMinutes = *interval
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.InfoLevel)

	if cfg.FootballData.APIKey == "" {
		logger.Warn("FOOTBALL_API_KEY is not set; upstream calls will be rejected")
	}

	store, err := repository.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	logger.WithField("path", cfg.Database.Path).Info("database ready")

	snapshots, err := fetcher.NewSnapshotStore(cfg.FootballData.SnapshotDir)
	if err != nil {
		logger.Fatalf("snapshot store: %v", err)
	}

	client := fetcher.NewClient(&cfg.FootballData, snapshots, logger)
	normalizer := normalize.New(store, logger)
	pipeline := service.NewPipeline(client, normalizer, store, &cfg.Fetch, logger)
	scheduler := service.NewScheduler(pipeline, cfg.Fetch.Interval(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		if err := scheduler.RunOnce(ctx); err != nil {
			os.Exit(1)
		}
		return
	}

	if *serve {
		gin.SetMode(cfg.Server.Mode)
		router := api.NewRouter(store, logger)
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: router,
		}
		go func() {
			logger.WithField("port", cfg.Server.Port).Info("query API listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.WithError(err).Error("query API stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	scheduler.Start(ctx)
}
