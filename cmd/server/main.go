package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/benbeisheim/alphabeta-chess/internal/config"
	"github.com/benbeisheim/alphabeta-chess/internal/controller"
	"github.com/benbeisheim/alphabeta-chess/internal/middleware"
	"github.com/benbeisheim/alphabeta-chess/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	level, err := cfg.Level()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	log.SetLevel(level)

	app := fiber.New(fiber.Config{
		AppName:   "alphabeta-chess",
		Immutable: true,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Player-ID",
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize services
	aiPool := service.NewAIPool(
		service.WithWorkers(cfg.AIWorkers),
		service.WithBufferSize(cfg.AIQueueSize),
		service.WithMoveTimeout(cfg.AIMoveTimeout),
		service.WithResultHandler(service.HandleAIResult),
	)
	aiPool.Start()
	defer aiPool.Close()

	gameManager := service.NewGameManager(cfg.MatchInterval)
	defer gameManager.Close()
	gameService := service.NewGameService(gameManager, aiPool, cfg.DefaultDepth)

	// Initialize controllers
	gameController := controller.NewGameController(gameService)
	wsController := controller.NewWebSocketController(gameService)

	app.Get("/healthz", gameController.Health)

	// WebSocket routes
	wsConfig := websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         splitOrigins(cfg.AllowOrigins),
	}
	wsRoutes := app.Group("/ws", middleware.EnsurePlayerID(), middleware.WebSocketUpgrade())
	wsRoutes.Get("/game/:gameId", websocket.New(wsController.HandleConnection, wsConfig))
	wsRoutes.Get("/matchmaking", websocket.New(wsController.HandleMatchmaking, wsConfig))

	// REST routes
	api := app.Group("/api", middleware.EnsurePlayerID())
	gameController.Register(api.Group("/game"))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	log.Infof("listening on %s (engine depth %d, %d workers)", cfg.Addr, cfg.DefaultDepth, cfg.AIWorkers)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func splitOrigins(origins string) []string {
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
