package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"roomchat/internal/config"
	"roomchat/internal/dispatch"
	"roomchat/internal/handlers"
	"roomchat/internal/health"
	"roomchat/internal/middleware"
	"roomchat/internal/observability"
	"roomchat/internal/rabbitmq"
	"roomchat/internal/repositories"
	"roomchat/internal/session"
	"roomchat/internal/telemetry"
	"roomchat/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownTracing, err := telemetry.InitTracing(context.Background(), cfg.OTLPEndpoint, cfg.ServiceName, cfg.Environment)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	observability.SetPublisher(publisher)
	auditor := telemetry.NewAuditEmitter(publisher, telemetry.RoutingKeyAudit, cfg.ServiceName, cfg.Environment)

	rooms := repositories.NewRoomStore(repositories.Limits{
		HistoryLimit:      cfg.HistoryLimit,
		MaxRoomNameLength: cfg.MaxRoomNameLength,
		MaxUsernameLength: cfg.MaxUsernameLength,
	})
	hub := ws.NewHub(cfg.SendBufferSize)
	engine := dispatch.NewEngine(rooms, session.NewTable(), hub, dispatch.Options{
		MaxMessageLength:  cfg.MaxMessageLength,
		MaxUsernameLength: cfg.MaxUsernameLength,
		QueueSize:         cfg.EventQueueSize,
		Auditor:           auditor,
	})

	engineCtx, stopEngine := context.WithCancel(context.Background())
	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		if err := engine.Run(engineCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("dispatch engine stopped: %v", err)
		}
	}()

	router := gin.New()

	// middlewares
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.RequestID())
	router.Use(observability.HTTPMetricsMiddleware())

	roomHandler := handlers.NewRoomHandler(engine)
	wsHandler := ws.NewHandler(hub, engine, cfg.MaxPayloadBytes)

	router.GET("/ws", wsHandler.Handle)
	router.GET("/rooms", roomHandler.ListRooms)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterDebugRoutes(router, auditor, cfg.DebugRoutes)

	server := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		log.Printf("http server listening on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	var healthServer *health.Server
	if cfg.GRPCHealthAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCHealthAddr)
		if err != nil {
			log.Fatalf("failed to listen on %s: %v", cfg.GRPCHealthAddr, err)
		}
		healthServer = health.New("roomchat.Chat")
		go func() {
			log.Printf("grpc health listening on %s", cfg.GRPCHealthAddr)
			if err := healthServer.Serve(lis); err != nil {
				log.Printf("grpc health server error: %v", err)
			}
		}()
	}

	shutdownCtx, forceShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer forceShutdown()

	operations := map[string]gfshutdown.Operation{
		"http": func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
		"websocket": func(ctx context.Context) error {
			hub.CloseAll()
			stopEngine()
			select {
			case <-engineDone:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
		"rabbitmq": func(ctx context.Context) error {
			return publisher.Close()
		},
		"tracing": func(ctx context.Context) error {
			return shutdownTracing(ctx)
		},
	}
	if healthServer != nil {
		operations["grpc-health"] = healthServer.Shutdown
	}

	exitCode := <-gfshutdown.GracefulShutdown(shutdownCtx, cfg.ShutdownTimeout, operations)
	if exitCode != 0 {
		log.Printf("shutdown completed with exit code: %d", exitCode)
		os.Exit(exitCode)
	}
	log.Println("shutdown completed")
}
