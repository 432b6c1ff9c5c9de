package main

import (
	"fmt"
	"os"

	"github.com/remolab/contracts-ledger/internal/auth"
	"github.com/remolab/contracts-ledger/internal/config"
	"github.com/remolab/contracts-ledger/internal/db"
	"github.com/remolab/contracts-ledger/internal/excel"
	httphandler "github.com/remolab/contracts-ledger/internal/http"
	"github.com/remolab/contracts-ledger/internal/http/middleware"
	"github.com/remolab/contracts-ledger/internal/logger"
	"github.com/remolab/contracts-ledger/internal/pdf"
	"github.com/remolab/contracts-ledger/internal/repository"
	"github.com/remolab/contracts-ledger/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	profileRepo := repository.NewProfileRepository(database)
	contractRepo := repository.NewContractRepository(database)
	jobRepo := repository.NewJobRepository(database)
	reportRepo := repository.NewReportRepository(database)

	queryService := service.NewQueryService(profileRepo, contractRepo, jobRepo, pdf.NewGenerator(), log)
	ledgerService := service.NewLedgerService(database, profileRepo, jobRepo, cfg, log)
	reportService := service.NewReportService(reportRepo, excel.NewGenerator(), cfg, log)

	var tokenParser *auth.Parser
	if cfg.Auth.AccessSecret != "" {
		tokenParser = auth.NewParser(cfg.Auth.AccessSecret)
	}

	handler := httphandler.NewHandler(queryService, ledgerService, reportService, log)
	identity := middleware.Identity(tokenParser, profileRepo)
	router := httphandler.NewRouter(handler, identity, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting contracts ledger service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
