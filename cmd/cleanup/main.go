package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"travelapp/internal/config"
	"travelapp/internal/database"
	"travelapp/internal/domain/notification"
	"travelapp/internal/logger"
)

func main() {
	days := flag.Int("days", 0, "email log retention in days (default from config)")
	interval := flag.Duration("interval", 0, "keep running and clean up at this interval")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatal(err)
	}
	lg, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.Database.DSN, lg)
	if err != nil {
		lg.WithError(err).Fatal("database connect failed")
	}

	cleanupCfg := notification.DefaultCleanupConfig()
	cleanupCfg.EmailLogRetentionDays = cfg.Maintenance.EmailLogRetentionDays
	if *days > 0 {
		cleanupCfg.EmailLogRetentionDays = *days
	}
	svc := notification.NewCleanupService(notification.NewRepository(db), lg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *interval <= 0 {
		report, err := svc.RunScheduledCleanup(ctx, cleanupCfg)
		if err != nil {
			lg.WithError(err).Fatal("cleanup failed")
		}
		lg.WithFields(logrus.Fields{
			"email_logs": report.EmailLogsDeleted,
			"duration":   report.Duration,
		}).Info("cleanup completed")
		return
	}

	cleanupCfg.CleanupInterval = *interval
	cleanupCfg.EnableAutomaticCleanup = true
	stopCh := svc.ScheduleCleanup(ctx, cleanupCfg)
	<-ctx.Done()
	close(stopCh)
}
