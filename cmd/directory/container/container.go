package container

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dialwise/directory/cmd/directory/repository"
	"github.com/dialwise/directory/cmd/directory/service"
	"github.com/dialwise/directory/common/bootstrap"
	"github.com/dialwise/directory/common/config"
	"github.com/dialwise/directory/common/ratelimit"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	// Components
	Components  *bootstrap.Components
	RateLimiter *ratelimit.RateLimiter // nil when rate limiting is disabled

	// Repositories
	CatalogRepo repository.CatalogRepository
	LedgerRepo  repository.LedgerRepository

	// Services
	CodeRule        *service.CodeRule
	CatalogService  *service.CatalogService
	LedgerService   *service.LedgerService
	TransferService *service.TransferService
}

// NewContainer initializes all services and repositories once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	cfg := components.Config

	// Initialize repositories for the selected store backend
	var (
		catalogRepo repository.CatalogRepository
		ledgerRepo  repository.LedgerRepository
		err         error
	)
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		catalogRepo = repository.NewPGCatalogStore(components.DB)
		ledgerRepo = repository.NewPGLedgerStore(components.DB)
	case config.StoreBackendFile:
		catalogRepo, err = repository.NewFileCatalogStore(cfg.Store.Dir, components.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog store: %w", err)
		}
		ledgerRepo, err = repository.NewFileLedgerStore(cfg.Store.Dir, components.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open ledger store: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}

	// Compile the dial-code validation rule once
	codeRule, err := service.NewCodeRule(cfg.Validation.CodeRule)
	if err != nil {
		return nil, fmt.Errorf("failed to compile code rule: %w", err)
	}

	// Initialize services (bottom-up: dependencies first)
	catalogService := service.NewCatalogService(
		catalogRepo,
		components.Cache,
		cfg.Cache.DefaultTTL,
		codeRule,
		components.Logger,
	)
	ledgerService := service.NewLedgerService(
		ledgerRepo,
		catalogService,
		codeRule,
		components.Logger,
	)
	transferService := service.NewTransferService(
		catalogRepo,
		catalogService,
		codeRule,
		components.Logger,
	)

	// Rate limiter needs its own Redis connection
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       0,
		})
		rateLimiter = ratelimit.NewRateLimiter(client, components.Logger)
	}

	return &Container{
		Components:      components,
		RateLimiter:     rateLimiter,
		CatalogRepo:     catalogRepo,
		LedgerRepo:      ledgerRepo,
		CodeRule:        codeRule,
		CatalogService:  catalogService,
		LedgerService:   ledgerService,
		TransferService: transferService,
	}, nil
}
