package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/hauslink/notify/internal/auth"
	"github.com/hauslink/notify/internal/handler"
	"github.com/hauslink/notify/internal/notify"
	"github.com/hauslink/notify/internal/persistence"
	"github.com/hauslink/notify/internal/persistence/mongodb"
	"github.com/hauslink/notify/internal/server"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

type App struct {
	logger       *zap.Logger
	settings     Settings
	restServer   *server.RESTServer
	streamServer *server.StreamServer
}

func NewApp(logger *zap.Logger, settings Settings, store persistence.Store) *App {
	originChecker := server.NewOriginChecker()
	websocketUpgrader := &websocket.Upgrader{
		ReadBufferSize:    1024,
		WriteBufferSize:   1024,
		CheckOrigin:       originChecker.Check,
		EnableCompression: true,
	}

	authenticator := auth.NewAuthenticator(settings.JWTSecret, settings.APIKeys)

	registry := notify.NewRegistry(logger)
	broadcaster := notify.NewBroadcaster(logger, registry)

	listHandler := handler.NewListHandler(store)
	markReadHandler := handler.NewMarkReadHandler(store)
	markAllReadHandler := handler.NewMarkAllReadHandler(store)
	createHandler := handler.NewCreateHandler(store)
	dispatchHandler := handler.NewDispatchHandler(broadcaster)

	restServer := server.NewRESTServer(
		logger,
		authenticator,
		listHandler,
		markReadHandler,
		markAllReadHandler,
		createHandler,
		dispatchHandler,
	)
	streamServer := server.NewStreamServer(
		logger,
		websocketUpgrader,
		authenticator,
		registry,
		time.Duration(settings.HeartbeatSeconds)*time.Second,
	)

	return &App{
		logger,
		settings,
		restServer,
		streamServer,
	}
}

func (a *App) setup(ctx context.Context) error {
	a.startHttpServer(ctx)

	return nil
}

func (a *App) startHttpServer(ctx context.Context) {
	notifyCtx, notifyCtxCancel := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer notifyCtxCancel()

	address := fmt.Sprintf("0.0.0.0:%d", a.settings.Port)

	router := mux.NewRouter().
		PathPrefix(a.settings.BasePath).
		Subrouter()

	a.restServer.Register(router)
	a.streamServer.Register(router)

	httpServer := &http.Server{
		Addr:    address,
		Handler: router,
	}

	a.logger.Info("starting http server",
		zap.String("address", address))

	go func() {
		err := httpServer.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("failed to start http server",
				zap.Error(err))
		}
	}()

	<-notifyCtx.Done()

	a.logger.Info("stopping http server")

	shutdownCtx, shutdownCtxCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCtxCancel()

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Fatal("http server shutdown failed",
			zap.Error(err))
	}

	a.logger.Info("http server stopped")
}

func main() {
	ctx := context.Background()

	godotenv.Load()

	var settings Settings
	_, err := env.UnmarshalFromEnviron(&settings)
	if err != nil {
		bootstrapLogger, _ := zap.NewDevelopment()
		bootstrapLogger.Fatal("failed to parse settings from environment", zap.Error(err))
	}

	logger, err := buildZapLogger(settings.LogEncoding)
	if err != nil {
		bootstrapLogger, _ := zap.NewDevelopment()
		bootstrapLogger.Fatal("failed to build logger", zap.Error(err))
	}
	defer logger.Sync()

	mongoClient, err := mongo.Connect(options.Client().ApplyURI(settings.MongoURI))
	if err != nil {
		logger.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	defer mongoClient.Disconnect(ctx)

	store := mongodb.NewStore(mongoClient)

	err = store.Setup(ctx)
	if err != nil {
		logger.Fatal("failed to setup notification store", zap.Error(err))
	}

	app := NewApp(logger, settings, store)

	err = app.setup(ctx)
	if err != nil {
		logger.Fatal("failed to setup", zap.Error(err))
	}
}
