package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/benbeisheim/starchess-backend/internal/config"
	"github.com/benbeisheim/starchess-backend/internal/controller"
	"github.com/benbeisheim/starchess-backend/internal/service"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	level, _ := cfg.Level()
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := fiber.New(fiber.Config{AppName: "starchess"})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: cfg.AllowOrigins != "*",
	}))

	gameManager := service.NewGameManager(ctx, service.ManagerConfig{
		Search:        cfg.SearchOptions(),
		MatchInterval: cfg.MatchInterval,
	})
	controller.RegisterRoutes(app, service.NewGameService(gameManager), cfg.Origins())

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	log.Infof("listening on %s (ai depth %d)", cfg.Addr, cfg.AIDepth)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
