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

	"munjiz/internal/api"
	"munjiz/internal/assistant"
	"munjiz/internal/config"
	"munjiz/internal/db"
	"munjiz/internal/kafka"
	"munjiz/internal/logging"
	"munjiz/internal/models"
	"munjiz/internal/notification"
	"munjiz/internal/providers"
	"munjiz/internal/scheduler"
	"munjiz/internal/services"
	"munjiz/internal/settings"
	"munjiz/internal/store"
	"munjiz/internal/tasks"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Close()

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatalf("Invalid timezone: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open storage
	backend, err := db.Open(ctx, cfg.Store.DSN)
	if err != nil {
		logger.Fatalf("Failed to open store %q: %v", cfg.Store.DSN, err)
	}
	st := store.New(backend, logger)
	defer func() {
		if err := st.Close(); err != nil {
			logger.Errorf("Store close failed: %v", err)
		} else {
			logger.Infof("Store closed")
		}
	}()

	repo := tasks.NewRepository(st, logger, loc)
	repo.Load(ctx, cfg.Reminder.SeedDemo, time.Now())
	notifLog := notification.NewLog(st, logger)
	notifLog.Load(ctx)
	set := settings.New(st)
	set.Load(ctx)

	// Browser-facing capabilities
	hub := services.NewHub(logger)
	audio := services.NewAudio(hub, set)
	popups := services.NewPopups(hub)
	var sinks []services.Sink
	if cfg.Telegram.BotToken != "" {
		tg, err := providers.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.RateLimit, logger)
		if err != nil {
			logger.Warnf("Telegram sink disabled: %v", err)
		} else {
			sinks = append(sinks, tg)
		}
	}
	if cfg.Desktop.Enabled {
		sinks = append(sinks, providers.NewDesktop())
	}
	native := services.NewNative(hub, logger, sinks...)

	mailer := providers.NewMailer(cfg, logger)
	ai, err := assistant.New(ctx, cfg.AI.APIKey, cfg.AI.Model, logger)
	if err != nil {
		logger.Fatalf("Failed to init assistant: %v", err)
	}

	// Fan appended notifications out to tabs and kafka
	dispatcher := notification.NewDispatcher(logger, 256, 2)
	dispatcher.Handle(func(_ context.Context, n models.Notification) {
		hub.Broadcast(services.Event{Type: services.EventNotification, Data: n})
	})
	if cfg.Kafka.Broker != "" {
		producer, err := kafka.NewProducer(kafka.Config{Broker: cfg.Kafka.Broker, Topic: cfg.Kafka.Topic}, logger)
		if err != nil {
			logger.Fatalf("Kafka producer init failed: %v", err)
		}
		defer producer.Close()
		dispatcher.Handle(producer.Publish)
		logger.Infof("Kafka producer initialized with topic: %s", cfg.Kafka.Topic)
	}
	notifLog.Subscribe(dispatcher.Enqueue)
	dispatcher.Start(ctx)

	sched := scheduler.New(scheduler.Deps{
		Tasks:     repo,
		Log:       notifLog,
		Settings:  set,
		Audio:     audio,
		Notifier:  native,
		Popups:    popups,
		Mailer:    mailer,
		Recipient: cfg.Reminder.Recipient,
	}, logger, cfg.Scheduler.Interval)
	if err := sched.Start(ctx); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}

	svc := services.New(services.Deps{
		Tasks:     repo,
		Log:       notifLog,
		Settings:  set,
		Popups:    popups,
		Audio:     audio,
		Mailer:    mailer,
		Analyzer:  ai,
		Recipient: cfg.Reminder.Recipient,
	}, logger)

	// Start API server
	handler := api.NewHandler(api.Deps{
		Tasks:     repo,
		Log:       notifLog,
		Settings:  set,
		Services:  svc,
		Scheduler: sched,
		Popups:    popups,
		Hub:       hub,
	}, logger)
	srv := &http.Server{
		Addr:              cfg.API.Port,
		Handler:           api.NewRouter(handler, cfg.API.BasePath),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("Starting API server on %s", cfg.API.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("API server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Infof("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("API shutdown failed: %v", err)
	}
	sched.Stop()
	dispatcher.Wait()
	logger.Infof("Service stopped")
}
