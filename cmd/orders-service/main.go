package main

import (
	"fmt"
	"os"

	"github.com/nurpe/ringo-orders/internal/auth"
	"github.com/nurpe/ringo-orders/internal/config"
	"github.com/nurpe/ringo-orders/internal/db"
	"github.com/nurpe/ringo-orders/internal/export"
	httphandler "github.com/nurpe/ringo-orders/internal/http"
	"github.com/nurpe/ringo-orders/internal/http/middleware"
	"github.com/nurpe/ringo-orders/internal/invoice"
	"github.com/nurpe/ringo-orders/internal/logger"
	"github.com/nurpe/ringo-orders/internal/pricing"
	"github.com/nurpe/ringo-orders/internal/repository"
	"github.com/nurpe/ringo-orders/internal/service"
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

	orderRepo := repository.NewOrderRepository(database)
	clientRepo := repository.NewClientRepository(database)

	engine := pricing.NewEngine(pricing.Policy{
		DailyThresholdHours: cfg.Pricing.DailyThresholdHours,
		LatePenaltyPercent:  cfg.Pricing.LatePenaltyPercent,
	})

	orderService := service.NewOrderService(
		orderRepo,
		clientRepo,
		engine,
		invoice.NewGenerator(),
		export.NewGenerator(),
	)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(orderService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting orders service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
