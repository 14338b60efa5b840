package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v3"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/credexa/carbon_ledger_app/internal/adapters/contentstore"
	"github.com/credexa/carbon_ledger_app/internal/adapters/index"
	portsrepo "github.com/credexa/carbon_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/credexa/carbon_ledger_app/internal/core/ports/services"
	"github.com/credexa/carbon_ledger_app/internal/core/services"
	"github.com/credexa/carbon_ledger_app/internal/dto"
	"github.com/credexa/carbon_ledger_app/internal/handlers"
	"github.com/credexa/carbon_ledger_app/internal/middleware"
	"github.com/credexa/carbon_ledger_app/internal/platform/config"
)

// @title Carbon Ledger API
// @version 1.0
// @description Off-chain carbon token ledger with marketplace settlement.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := dto.RegisterCustomValidators(); err != nil {
		logger.Error("Failed to register validators", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Local Badger database backs the durable content store and the
	// persisted address index.
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("Failed to create data dir", slog.String("dir", cfg.DataDir), slog.String("error", err.Error()))
		os.Exit(1)
	}
	badgerOptions := badger.DefaultOptions(cfg.DataDir)
	badgerOptions.Logger = nil
	db, err := badger.Open(badgerOptions)
	if err != nil {
		logger.Error("Failed to open local store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	localStore := contentstore.NewBadgerStoreFromDB(db)

	// The pinning service is the primary store when configured; the local
	// Badger store serves as the durable fallback either way. The volatile
	// memory store is the last resort, producing degraded snapshots.
	var primary portsrepo.ContentStore = localStore
	var fallback portsrepo.ContentStore = contentstore.NewMemoryStore()
	if cfg.PinAPIURL != "" {
		primary = contentstore.NewPinningStore(contentstore.PinningConfig{
			APIURL:         cfg.PinAPIURL,
			APIKey:         cfg.PinAPIKey,
			APISecret:      cfg.PinAPISecret,
			Gateways:       cfg.IPFSGateways,
			GatewayTimeout: cfg.GatewayTimeout,
		})
		fallback = localStore
		logger.Info("Using remote pinning service as primary content store",
			slog.String("api_url", cfg.PinAPIURL), slog.Int("gateways", len(cfg.IPFSGateways)))
	} else {
		logger.Info("Using local content store", slog.String("data_dir", cfg.DataDir))
	}

	addressIndex := index.NewAddressIndex(primary, db)

	ledgerService := services.NewLedgerService(primary, fallback, addressIndex,
		decimal.NewFromInt(cfg.DefaultSecondaryGrant))
	marketplaceService := services.NewMarketplaceService(ledgerService, primary)
	ticketService := services.NewTicketService(ledgerService, primary)

	hydrateCtx := context.Background()
	if err := marketplaceService.Hydrate(hydrateCtx); err != nil {
		logger.Warn("Failed to hydrate marketplace collections", slog.String("error", err.Error()))
	}
	if err := ticketService.Hydrate(hydrateCtx); err != nil {
		logger.Warn("Failed to hydrate ticket collection", slog.String("error", err.Error()))
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	serviceContainer := &portssvc.ServiceContainer{
		Ledger:      ledgerService,
		Marketplace: marketplaceService,
		Ticket:      ticketService,
	}
	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
