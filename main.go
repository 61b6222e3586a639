package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/audit"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/config"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/controller"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/dao"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/db"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/fetch"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/identity"
	logger "github.com/clarita-9850/CMIPS-APPLICATION-sub003/logging"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/masking"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/pipeline"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/query"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/router"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/rules"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/service"
	"github.com/clarita-9850/CMIPS-APPLICATION-sub003/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger(config.GetString("log.dir"))
	defer logger.Sync()

	// Initialize Neo4j
	if err := db.InitNeo4j(); err != nil {
		logger.Fatal("Failed to initialize Neo4j", zap.Error(err))
	}
	defer db.CloseNeo4j()

	// Initialize Redis
	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Initialize audit trail
	auditRepository, err := audit.NewElasticsearchRepository(config.GetString("elasticsearch.url"))
	if err != nil {
		logger.Fatal("Failed to initialize audit repository", zap.Error(err))
	}
	auditService := audit.NewService(auditRepository)

	// Fan pipeline events out to the audit trail
	notificationService := util.NewNotificationService(auditService)
	eventBus.Subscribe(pipeline.CompletedEvent, notificationService.HandleReportCompleted)
	eventBus.Subscribe("rules.updated", notificationService.HandleRulesUpdated)

	// Initialize the masking rule store from its Redis snapshots
	ruleStore := rules.NewStore(db.NewRuleSnapshotStore(db.RedisClient))
	if err := ruleStore.Load(ctx); err != nil {
		logger.Fatal("Failed to load masking rules", zap.Error(err))
	}

	// Initialize the record store and pipeline components
	reportStore, err := dao.NewReportStore(
		config.GetString("elasticsearch.url"),
		config.GetString("elasticsearch.reportIndexPrefix"),
	)
	if err != nil {
		logger.Fatal("Failed to initialize report store", zap.Error(err))
	}

	resolver := identity.NewResolver(config.GetString("auth.clientId"))
	orchestrator := pipeline.NewOrchestrator(
		resolver,
		query.NewBuilder(auditService),
		fetch.NewFetcher(reportStore, config.GetDuration("fetch.timeout")),
		ruleStore,
		masking.NewEngine(),
		eventBus,
	)

	// Initialize services and controllers
	validationUtil := util.NewValidationUtil()
	services := service.InitializeServices(
		db.Neo4jDriver,
		orchestrator,
		resolver,
		ruleStore,
		auditService,
		validationUtil,
		db.RedisLocker{},
		eventBus,
	)
	controllers := controller.InitializeControllers(services)

	// Set up Gin
	engine := router.SetupRouter(controllers, 100, time.Minute) // 100 requests per minute

	// Set up the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: engine,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
