package main

import (
	"log"

	"travelapp/internal/config"
	"travelapp/internal/logger"
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

	s, err := tasks.NewScheduler(tasks.RedisOpt(cfg.Redis), tasks.NewConfig(cfg.Queue, cfg.Maintenance), lg)
	if err != nil {
		lg.WithError(err).Fatal("scheduler setup failed")
	}
	if err := s.Run(); err != nil {
		lg.WithError(err).Fatal("scheduler stopped")
	}
}
