package main

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"travelapp/internal/config"
	"travelapp/internal/database"
	"travelapp/internal/logger"
	"travelapp/internal/mailer"
	"travelapp/internal/metrics"
	"travelapp/internal/server"
	"travelapp/internal/tasks"
)

func main() {
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

	opt := tasks.RedisOpt(cfg.Redis)
	taskCfg := tasks.NewConfig(cfg.Queue, cfg.Maintenance)
	producer := tasks.NewAsynq(opt, taskCfg)
	defer producer.Close()

	m := metrics.New(prometheus.DefaultRegisterer)
	services := server.NewServices(db, producer, m, lg, cfg.Booking)
	workers, err := services.Workers(cfg, mailer.New(cfg.Mail, lg), producer, m, lg)
	if err != nil {
		lg.WithError(err).Fatal("worker setup failed")
	}

	srv := tasks.NewServer(opt, taskCfg, cfg.Queue.Concurrency, lg)
	workers.Register(srv)

	lg.WithField("queues", taskCfg.Queues()).Info("worker started")
	if err := srv.Run(); err != nil {
		lg.WithError(err).Fatal("worker stopped")
	}
}
