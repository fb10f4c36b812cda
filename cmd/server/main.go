package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/vocabquiz/internal/api"
	"github.com/vytor/vocabquiz/internal/auth"
	"github.com/vytor/vocabquiz/internal/catalog"
	"github.com/vytor/vocabquiz/internal/config"
	"github.com/vytor/vocabquiz/internal/db"
	"github.com/vytor/vocabquiz/internal/jobs"
	"github.com/vytor/vocabquiz/internal/logger"
	"github.com/vytor/vocabquiz/internal/repository"
	"github.com/vytor/vocabquiz/internal/repository/memory"
	"github.com/vytor/vocabquiz/internal/repository/sqlstore"
	"github.com/vytor/vocabquiz/internal/scheduler"
	"github.com/vytor/vocabquiz/internal/services"
	"github.com/vytor/vocabquiz/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("VocabQuiz Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_driver=%s", cfg.DBDriver)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("catalog_path=%q", cfg.CatalogPath)
	log.Debug("session_store=%s", cfg.SessionStore)
	log.Debug("question_count default=%d max=%d", cfg.DefaultQuestionCount, cfg.MaxQuestionCount)
	log.Debug("history_limit=%d", cfg.HistoryLimit)
	log.Debug("result_worker_count=%d", cfg.ResultWorkerCount)
	log.Debug("result_queue_size=%d", cfg.ResultQueueSize)
	log.Debug("session_ttl=%s sweep_interval=%s", cfg.SessionTTL, cfg.SweepInterval)

	database, err := db.Open(cfg.DBDriver, cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	profileRepo := sqlstore.NewProfileRepository(database)
	resultRepo := sqlstore.NewResultRepository(database)

	var sessions repository.SessionRepository
	if cfg.SessionStore == "memory" {
		sessions = memory.NewSessionRepository()
	} else {
		sessions = sqlstore.NewSessionRepository(database)
	}

	words := catalog.New(cfg.CatalogPath)
	if _, err := words.Items(logger.NewContext(context.Background(), log)); err != nil {
		// Quizzes report CATALOG_UNAVAILABLE until the catalog loads.
		log.Warn("word catalog not loaded at startup: %v", err)
	}

	profileService := services.NewProfileService(profileRepo)
	quizService := services.NewQuizService(words, sessions, nil, services.QuizOptions{
		DefaultCount: cfg.DefaultQuestionCount,
		MaxCount:     cfg.MaxQuestionCount,
	})
	resultsService := services.NewResultsService(resultRepo, cfg.HistoryLimit)

	resultPool := worker.NewPool(cfg.ResultWorkerCount, cfg.ResultQueueSize)

	srv := &api.Server{
		ProfileService: profileService,
		QuizService:    quizService,
		ResultsService: resultsService,
		ResultQueue:    jobs.NewWorkerQueue(resultPool, resultsService),
		DB:             database,
		CORSOrigins:    cfg.CORSOrigins,
	}
	if cfg.JWTSecret != "" {
		srv.Verifier = auth.NewVerifier(cfg.JWTSecret)
	} else {
		log.Warn("JWT_SECRET not set, bearer tokens will be rejected")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	resultPool.Start(ctx)

	sweeper := scheduler.New(sessions, resultsService, cfg.SessionTTL, cfg.SweepInterval)
	if err := sweeper.Start(); err != nil {
		log.Error("failed to schedule retention sweep: %v", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping scheduler")
	sweeper.Stop()

	// Queued result saves still run; a second signal abandons them.
	log.Debug("draining result pool")
	drained := make(chan struct{})
	go func() {
		resultPool.Stop()
		close(drained)
	}()
	select {
	case <-drained:
	case <-stop:
		log.Warn("second signal, abandoning queued results")
		cancel()
		<-drained
	case <-shutdownCtx.Done():
		log.Warn("shutdown deadline reached, abandoning queued results")
		cancel()
		<-drained
	}

	log.Info("===========================================")
	log.Info("VocabQuiz Server Stopped")
	log.Info("===========================================")
}
