package main

import (
	"fmt"
	"os"

	"github.com/yowbhergie2/fleet-management-system-sub000/internal/auth"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/config"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/db"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/excel"
	httphandler "github.com/yowbhergie2/fleet-management-system-sub000/internal/http"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/http/middleware"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/logger"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/pdf"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/repository"
	"github.com/yowbhergie2/fleet-management-system-sub000/internal/service"
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

	requisitionRepo := repository.NewRequisitionRepository(database)
	contractRepo := repository.NewContractRepository(database)
	tripRepo := repository.NewTripRepository(database)
	reservationRepo := repository.NewReservationRepository(database)

	slipGenerator, err := pdf.NewGenerator()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}
	statementGenerator := excel.NewGenerator()

	requisitionService := service.NewRequisitionService(requisitionRepo, contractRepo, cfg)
	ledgerService := service.NewLedgerService(contractRepo)
	allocatorService := service.NewAllocatorService(reservationRepo, cfg)
	tripService := service.NewTripService(tripRepo, cfg)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(
		requisitionService,
		ledgerService,
		allocatorService,
		tripService,
		slipGenerator,
		statementGenerator,
		log,
	)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting fleet service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
