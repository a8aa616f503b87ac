package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"channelhub/domain/repository"
	"channelhub/infrastructure/cache"
	"channelhub/infrastructure/clients/amazon"
	"channelhub/infrastructure/clients/facebook"
	"channelhub/infrastructure/clients/flipkart"
	"channelhub/infrastructure/clients/googleads"
	"channelhub/infrastructure/clients/googleanalytics"
	"channelhub/infrastructure/clients/shopify"
	"channelhub/infrastructure/configuration"
	"channelhub/infrastructure/logger"
	"channelhub/infrastructure/persistence"
	"channelhub/infrastructure/pubsub"
	"channelhub/infrastructure/realtime"
	"channelhub/infrastructure/security"
	httpHandler "channelhub/interfaces/http"
	"channelhub/server"
	"channelhub/usecase"

	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App

	psqlDb, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to PostgreSQL")
		os.Exit(1)
	}
	if err := persistence.EnsureUserSchema(psqlDb); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed ensuring user schema")
		os.Exit(1)
	}

	mongoClient, err := persistence.NewMongoDb(
		configuration.C.Database.Mongo.Host,
		configuration.C.Database.Mongo.Port,
		configuration.C.Database.Mongo.User,
		configuration.C.Database.Mongo.Password,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to MongoDB")
		os.Exit(1)
	}
	mongoDb := mongoClient.Database(configuration.C.Database.Mongo.Name)
	if err := persistence.EnsureConnectionIndexes(ctx, mongoDb); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed ensuring connection indexes")
	}
	if err := persistence.EnsureUnifiedDataIndexes(ctx, mongoDb); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed ensuring unified data indexes")
	}
	if err := persistence.EnsureAlertIndexes(ctx, mongoDb); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed ensuring alert indexes")
	}
	if err := persistence.EnsureSubAccountIndexes(ctx, mongoDb); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed ensuring sub-account indexes")
	}

	redisClient, err := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", configuration.C.Redis.Host, configuration.C.Redis.Port),
		configuration.C.Redis.Username,
		configuration.C.Redis.Password,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - OAuth state falls back to in-memory store")
		redisClient = nil
	}

	pubSubClient, err := pubsub.NewPubSub(ctx, configuration.C.Pubsub.ProjectID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Pub/Sub not available - alert publishing disabled")
		pubSubClient = nil
	}

	cipher, err := security.NewCipher(configuration.C.Encryption.KeyBase64)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Invalid credential encryption key")
		os.Exit(1)
	}

	userRepository := persistence.NewUserRepository(psqlDb)
	connectionRepository := persistence.NewConnectionRepository(mongoDb, cipher)
	unifiedDataRepository := persistence.NewUnifiedDataRepository(mongoDb)
	alertRepository := persistence.NewAlertRepository(mongoDb)
	subAccountRepository := persistence.NewSubAccountRepository(mongoDb)

	stateStore := cache.NewStateStore(redisClient)
	alertPublisher := pubsub.NewAlertPublisher(pubSubClient, configuration.C.Pubsub.AlertTopic)
	alertHub := realtime.NewAlertHub()

	shopifyClient := shopify.NewClient(configuration.C.OAuth.Shopify)
	facebookClient := facebook.NewClient(configuration.C.OAuth.Facebook)
	adapters := []repository.IPlatformAdapter{
		shopifyClient,
		facebookClient,
		googleads.NewClient(configuration.C.OAuth.GoogleAds),
		googleanalytics.NewClient(configuration.C.OAuth.GoogleAnalytics),
		amazon.NewSellerClient(configuration.C.OAuth.Amazon),
		amazon.NewVendorClient(configuration.C.OAuth.Amazon),
		amazon.NewAdsClient(configuration.C.OAuth.Amazon),
		flipkart.NewClient(configuration.C.OAuth.Flipkart),
	}
	insightsFetchers := map[string]repository.IInsightsFetcher{
		shopifyClient.Platform():  shopifyClient,
		facebookClient.Platform(): facebookClient,
	}

	alertUsecase := usecase.NewAlertUsecase(alertRepository, alertPublisher, alertHub)
	userUsecase := usecase.NewUserUsecase(userRepository)
	integrationUsecase := usecase.NewIntegrationUsecase(
		adapters,
		connectionRepository,
		unifiedDataRepository,
		subAccountRepository,
		userRepository,
		stateStore,
		alertUsecase,
	)
	subAccountUsecase := usecase.NewSubAccountUsecase(subAccountRepository, connectionRepository, insightsFetchers)

	userHandler := httpHandler.NewUserHandler(userUsecase)
	integrationHandler := httpHandler.NewIntegrationHandler(integrationUsecase)
	subAccountHandler := httpHandler.NewSubAccountHandler(subAccountUsecase)
	alertHandler := httpHandler.NewAlertHandler(alertUsecase, alertHub)

	router := server.InitiateRouter(
		userHandler,
		integrationHandler,
		subAccountHandler,
		alertHandler,
		userRepository,
		app.FrontendURL,
	)

	logger.GetLogger().WithField("port", app.Port).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", app.Port),
			Handler: router,
		}
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Error while disconnecting MongoDB")
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}
