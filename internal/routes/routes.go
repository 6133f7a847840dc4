package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/arta-bank/arta_bank/internal/account"
	"github.com/arta-bank/arta_bank/internal/auth"
	"github.com/arta-bank/arta_bank/internal/config"
	"github.com/arta-bank/arta_bank/internal/ledger"
	"github.com/arta-bank/arta_bank/internal/middleware"
	"github.com/arta-bank/arta_bank/internal/notification"
	"github.com/arta-bank/arta_bank/internal/transaction"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though config also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Storage backends: Postgres when available, in-memory otherwise (dev mode).
	var store ledger.Store
	var accountRepo account.Repository
	if d.DB != nil {
		store = ledger.NewPostgresStore(d.DB)
		accountRepo = account.NewPostgresRepository(d.DB)
	} else {
		store = ledger.NewInMemory()
		accountRepo = account.NewMemoryRepository()
	}

	// Services and handlers
	accounts := account.NewService(accountRepo)
	tokens := auth.NewService(d.Cfg)
	notifier := notification.NewLoggerNotifier(d.Logger)
	transactions := transaction.NewService(store, notifier)

	authHandler := auth.NewHandler(accounts, tokens)
	txHandler := transaction.NewHandler(transactions)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterAccountRoutes(api, accounts, store, d.Logger)
	rateLimiter := middleware.LoginRateLimit(d.Cache, d.Cfg.LoginAttempts)
	RegisterAuthRoutes(api, authHandler, rateLimiter)

	// Protected routes: bearer token plus idempotency on the mutating calls.
	protected := api.Group("", middleware.JWTAuth(tokens))
	if d.Cache != nil {
		protected.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterTransactionRoutes(protected, txHandler)

	return nil
}
