package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/quest-labs/instaquest/configs"
	"github.com/quest-labs/instaquest/internal/api/handlers"
	job "github.com/quest-labs/instaquest/internal/jobs"
	"github.com/quest-labs/instaquest/internal/queue"
	"github.com/quest-labs/instaquest/internal/repository"
	"github.com/quest-labs/instaquest/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	var client *asynq.Client
	if cfg.RedisURI != "" {
		redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
		client = asynq.NewClient(redisConn)
		defer client.Close()
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	accountRepo := repository.NewAccountRepository(db)
	postRepo := repository.NewPostRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	instagramService := service.NewInstagramService(*cfg)
	authService := service.NewAuthService(instagramService, accountRepo, postRepo)
	webhookService := service.NewWebhookService(*cfg, webhookEventRepo)
	archiveService := service.NewArchiveService(*cfg, postRepo)

	auth := handlers.NewAuthHandler(*cfg, authService, instagramService, client)
	app.Get("/auth/instagram", auth.Login)
	app.Post("/auth/instagram/exchange", auth.Exchange)
	app.Post("/auth/instagram/refresh", auth.Refresh)

	webhook := handlers.NewWebhookHandler(webhookService)
	app.Get("/webhook", webhook.Verify)
	app.Post("/webhook", webhook.Receive)

	api := app.Group("/api")

	account := handlers.NewAccountHandler(accountRepo, postRepo)
	api.Get("/accounts/:instagram_id", account.GetAccount)
	api.Get("/accounts/:instagram_id/posts", account.ListPosts)

	api.Get("/webhook/events", webhook.ListEvents)
	api.Post("/webhook/token", webhook.NewToken)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(accountRepo, authService)

	c := cron.New()
	c.AddFunc("@every 01h00m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	if client != nil && cfg.ArchiveEnabled() {
		queueW := queue.NewQueue(archiveService)

		go func() {
			server := asynq.NewServer(asynq.RedisClientOpt{Addr: cfg.RedisURI}, asynq.Config{
				Concurrency: 10,
			})

			mux := asynq.NewServeMux()
			mux.HandleFunc(queue.TaskTypeArchiveMedia, queueW.HandleArchiveMediaTask)

			log.Println("Starting the Asynq server...")
			if err := server.Run(mux); err != nil {
				log.Fatalf("Could not start Asynq server: %v", err)
			}
		}()
	}

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
