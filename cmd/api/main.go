package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	logging "github.com/op/go-logging"

	v1 "subdesk/cmd/api/router/v1"
	"subdesk/internal/config"
	cacheAdapter "subdesk/internal/infrastructure/cache/adapter"
	cacheport "subdesk/internal/infrastructure/cache/port"
	"subdesk/internal/infrastructure/database"
	queueAdapter "subdesk/internal/infrastructure/queue/adapter"
	qport "subdesk/internal/infrastructure/queue/port"
	"subdesk/internal/infrastructure/realtime"
	"subdesk/internal/pkg/chat/application/task"
	"subdesk/internal/pkg/chat/auth"
)

var log = logging.MustGetLogger("api")

func main() {
	// Load .env file before reading configuration
	if err := godotenv.Load(); err != nil {
		log.Debugf(".env file not loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}

	setupLogging(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	var cache cacheport.Cache
	if cfg.RedisURL != "" {
		redisCache, err := cacheAdapter.NewRedisAdapter()
		if err != nil {
			log.Warningf("redis unavailable, unread counters uncached: %v", err)
		} else {
			cache = redisCache
			defer redisCache.Close()
		}
	}

	var queueClient qport.Client
	if cfg.RedisURL != "" {
		client, err := queueAdapter.NewAsynqClientFromEnv()
		if err != nil {
			log.Warningf("queue unavailable, offline notifications disabled: %v", err)
		} else {
			queueClient = client
			defer client.Close()
		}
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.RunWorker && queueClient != nil {
		worker, err := queueAdapter.NewAsynqServer()
		if err != nil {
			log.Warningf("queue worker not started: %v", err)
		} else {
			task.RegisterNotifyOfflineTask(worker, pool, cache)
			go func() {
				if err := worker.Run(rootCtx); err != nil {
					log.Errorf("queue worker stopped: %v", err)
				}
			}()
		}
	}

	hub := realtime.NewHub()
	defer hub.Close()

	verifier := auth.NewVerifier(cfg.JWTSecret)
	if verifier.Insecure() {
		log.Warning("CHAT_JWT_SECRET not set: realtime handshake trusts user_id (development only)")
	}

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		status := gin.H{"status": "OK"}
		pingCtx, pingCancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer pingCancel()
		if err := pool.Ping(pingCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		if cache != nil {
			if err := cache.Ping(pingCtx); err != nil {
				status["cache"] = "unavailable"
			}
		}
		c.JSON(http.StatusOK, status)
	})

	v1.RegisterRoutes(r, pool, hub, verifier, queueClient, cache)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Infof("chat API listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-rootCtx.Done()
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("http shutdown: %v", err)
	}
}

func setupLogging(level string) {
	format := logging.MustStringFormatter(
		`%{time:2006-01-02 15:04:05.000} %{module} %{level:.4s} %{message}`,
	)
	backend := logging.NewBackendFormatter(logging.NewLogBackend(os.Stderr, "", 0), format)
	leveled := logging.AddModuleLevel(backend)

	lvl, err := logging.LogLevel(strings.ToUpper(level))
	if err != nil {
		lvl = logging.INFO
	}
	leveled.SetLevel(lvl, "")
	logging.SetBackend(leveled)
}
