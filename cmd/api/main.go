package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"travelapp/internal/config"
	"travelapp/internal/database"
	"travelapp/internal/logger"
	"travelapp/internal/mailer"
	"travelapp/internal/metrics"
	jwtsvc "travelapp/internal/pkg/jwt"
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
	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.Database.DSN, lg)
	if err != nil {
		lg.WithError(err).Fatal("database connect failed")
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			lg.WithError(err).Fatal("database migration failed")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if cfg.Queue.Driver == "asynq" {
		rdb, err = database.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			lg.WithError(err).Fatal("redis connect failed")
		}
		defer rdb.Close()
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	taskCfg := tasks.NewConfig(cfg.Queue, cfg.Maintenance)

	var (
		dispatcher tasks.Dispatcher
		inline     *tasks.Inline
	)
	switch cfg.Queue.Driver {
	case "inline":
		inline = tasks.NewInline(taskCfg, lg)
		dispatcher = inline
		lg.Warn("inline task dispatcher: emails are sent inside the request")
	default:
		q := tasks.NewAsynq(tasks.RedisOpt(cfg.Redis), taskCfg)
		defer q.Close()
		dispatcher = q
	}

	services := server.NewServices(db, dispatcher, m, lg, cfg.Booking)
	if inline != nil {
		workers, err := services.Workers(cfg, mailer.New(cfg.Mail, lg), inline, m, lg)
		if err != nil {
			lg.WithError(err).Fatal("worker setup failed")
		}
		workers.Register(inline)
	}

	router, err := server.NewRouter(cfg, server.Deps{
		DB:       db,
		Redis:    rdb,
		Tasks:    dispatcher,
		Services: services,
		Tokens:   jwtsvc.New(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL),
		Log:      lg,
	})
	if err != nil {
		lg.WithError(err).Fatal("router setup failed")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.WithField("addr", srv.Addr).Info("api server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.WithError(err).Fatal("api server stopped")
		}
	}()

	<-ctx.Done()
	lg.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.WithError(err).Error("api server shutdown failed")
	}
	lg.Info("api server stopped")
}
