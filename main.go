package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"gerbang/internal/config"
	"gerbang/internal/handlers"
	"gerbang/internal/middleware"
	"gerbang/internal/models"
	"gerbang/internal/repositories"
	"gerbang/internal/services"
	"gerbang/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Initialize Repository ---
	userRepo, err := newUserRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize user repository: %v", err)
	}

	// --- Initialize RabbitMQ Client (optional) ---
	// Auth events are an audit trail; the service runs fine without a
	// broker, so an empty URL just disables publishing.
	var events services.AuthEventPublisher
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		events = mqClient
	} else {
		log.Println("RABBITMQ_URL not set; auth event publishing disabled")
	}

	// --- Initialize Services and App ---
	authService := services.NewAuthService(userRepo, events, cfg.JWTSecret, cfg.TokenTTL, cfg.BcryptCost)
	app := newApp(cfg, authService)

	// --- Start RabbitMQ Consumer in a Goroutine ---
	// A minimal audit consumer: real deployments would forward these to
	// a log pipeline or SIEM.
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for auth events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received Auth Event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeAuthEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// newApp builds the Fiber app with middleware and routes. Split out of
// main so tests can exercise the full HTTP surface in-process.
func newApp(cfg *config.Config, authService *services.AuthService) *fiber.App {
	app := fiber.New()

	app.Use(logger.New()) // Request logger
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigin,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true, // the SPA sends the token cookie cross-origin
	}))

	userHandler := handlers.NewUserHandler(authService, cfg.Production())
	userHandler.RegisterRoutes(app, middleware.AuthRequired(authService))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return app
}

// newUserRepository opens the configured database, migrates the user
// schema and returns a repository over it. An empty DSN falls back to
// the in-memory repository (useful for local development and demos).
func newUserRepository(cfg *config.Config) (repositories.UserRepository, error) {
	if cfg.DatabaseDSN == "" {
		log.Println("DATABASE_DSN not set; using in-memory user repository")
		return repositories.NewMemoryUserRepository(), nil
	}

	// TranslateError turns driver-specific unique violations into
	// gorm.ErrDuplicatedKey, which the repository depends on.
	gormCfg := &gorm.Config{TranslateError: true}

	var db *gorm.DB
	var err error
	if strings.HasPrefix(cfg.DatabaseDSN, "postgres://") || strings.Contains(cfg.DatabaseDSN, "host=") {
		db, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), gormCfg)
	} else {
		db, err = gorm.Open(sqlite.Open(cfg.DatabaseDSN), gormCfg)
	}
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.User{}); err != nil {
		return nil, err
	}

	return repositories.NewGORMUserRepository(db), nil
}
