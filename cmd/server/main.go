package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/aurify/api/internal/client"
	"github.com/aurify/api/internal/config"
	"github.com/aurify/api/internal/handler"
	"github.com/aurify/api/internal/middleware"
	"github.com/aurify/api/internal/service"
	"github.com/aurify/api/internal/store"
	"github.com/aurify/api/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	// Initialize validator
	validate := validator.New()

	// Initialize external clients
	openaiClient := client.NewOpenAIClient(&cfg.OpenAI)
	pushClient := client.NewPushClient(&cfg.Push)
	mailClient := client.NewMailClient(&cfg.Alert)

	// Initialize store
	themeStore := store.NewRedisThemeStore(redisClient)

	// Initialize services
	playlistService := service.NewPlaylistService(openaiClient, &cfg.Playlist, &cfg.OpenAI)
	themeService := service.NewThemeService(themeStore, pushClient, mailClient, &cfg.Push, &cfg.Alert)

	// Initialize handlers
	playlistHandler := handler.NewPlaylistHandler(playlistService, validate)
	themeHandler := handler.NewThemeHandler(themeService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	isDebug := strings.EqualFold(cfg.Server.LogLevel, "debug")
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if isDebug {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${body}\n"
		log.Println("Debug logging enabled")
	}
	app.Use(logger.New(logger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Base URL - timestamp
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"timestamp": time.Now().Unix(),
		})
	})

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"openai": openaiClient.IsConfigured(),
				"push":   pushClient.IsConfigured(),
				"mail":   mailClient.IsConfigured(),
				"redis":  redisClient.Ping(c.Context()).Err() == nil,
				"auth":   cfg.JWT.Secret != "",
			},
		})
	})

	// Public playlist generation
	api := app.Group("/api")
	playlist := api.Group("/playlist", rateLimiter.GenerateLimit(cfg.RateLimit.GeneratePerMin))
	playlist.Post("/generate", playlistHandler.Generate)

	// Attested variant — same contract, verified app clients only
	attested := api.Group("/app", authMiddleware.Authenticate())
	attestedPlaylist := attested.Group("/playlist", rateLimiter.GenerateLimit(cfg.RateLimit.GeneratePerMin))
	attestedPlaylist.Post("/generate", playlistHandler.Generate)

	// Job trigger — same rotation the scheduler fires
	jobs := app.Group("/jobs", authMiddleware.Authenticate())
	jobs.Post("/rotate-theme", themeHandler.Rotate)

	// Start Asynq worker server and scheduler
	go startWorkerServer(cfg, redisOpt, themeService)
	go startScheduler(cfg, redisOpt)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(cfg *config.Config, redisOpt asynq.RedisClientOpt, themeService *service.ThemeService) {
	asynqLogLevel := asynq.InfoLevel
	if strings.EqualFold(cfg.Server.LogLevel, "debug") {
		asynqLogLevel = asynq.DebugLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "warn") {
		asynqLogLevel = asynq.WarnLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "error") {
		asynqLogLevel = asynq.ErrorLevel
	}

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"themes": 1,
			},
			LogLevel: asynqLogLevel,
		},
	)

	themeWorker := worker.NewThemeWorker(themeService)

	mux := asynq.NewServeMux()
	mux.HandleFunc(worker.TaskTypeThemeRotate, themeWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func startScheduler(cfg *config.Config, redisOpt asynq.RedisClientOpt) {
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{})

	entryID, err := scheduler.Register(
		cfg.Themes.Cron,
		worker.NewThemeRotateTask(),
		asynq.Queue("themes"),
		asynq.MaxRetry(0),
	)
	if err != nil {
		log.Printf("Failed to register theme rotation schedule: %v", err)
		return
	}
	log.Printf("Theme rotation scheduled (%s) entry=%s", cfg.Themes.Cron, entryID)

	if err := scheduler.Run(); err != nil {
		log.Printf("Asynq scheduler error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
