// Package main is the entry point for the entanglement filtration service: it
// derives per-moment interaction weight matrices from quantum circuits and
// serves them over an HTTP API for downstream persistent-homology analysis.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/config"
	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/database"
	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/entanglement"
	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/filtration"
	filtrationhandlers "github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/filtration/handlers"
	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/moments"
	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/reduction"
	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/modules/simulation"
	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/scheduler"
	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/server"
	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().
		Str("strategy", string(cfg.Strategy)).
		Str("log_base", string(cfg.LogBase)).
		Float64("eigen_tolerance", cfg.EigenTolerance).
		Msg("Starting entanglement filtration service")

	resultsDB, err := database.New(database.Config{
		Path:    cfg.DatabasePath(),
		Profile: database.ProfileStandard,
		Name:    "results",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open results database")
	}
	defer resultsDB.Close()

	repository, err := filtration.NewRepository(resultsDB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize filtration repository")
	}

	// Pipeline wiring: simulator -> partitioner -> weigher -> service.
	simulator := simulation.NewStateVector(log)
	partitioner := moments.NewPartitioner(simulator, log)
	reducer := reduction.New(cfg.StateTolerance, log)
	weigher, err := entanglement.New(entanglement.Config{
		Strategy:  cfg.Strategy,
		LogBase:   cfg.LogBase,
		Tolerance: cfg.EigenTolerance,
	}, reducer, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure weigher")
	}
	service := filtration.NewService(partitioner, weigher, log)

	sched := scheduler.New(log)
	retention := scheduler.NewRetentionJob(repository, cfg.RetentionDays, log)
	if err := sched.AddJob("@daily", retention); err != nil {
		log.Fatal().Err(err).Msg("Failed to register retention job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:                log,
		Port:               cfg.Port,
		DevMode:            cfg.DevMode,
		ResultsDB:          resultsDB,
		FiltrationHandlers: filtrationhandlers.NewHandler(service, repository, log),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}
}
