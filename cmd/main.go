package main

import (
	"fmt"
	"os"

	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/embedding"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/handler"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/middleware"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/nlp"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/quota"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/store"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/pkg/config"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/pkg/database"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/pkg/jwtutil"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/pkg/logger"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/pkg/metrics"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.Load("chatbot")
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.InitLogger(&logger.LogConfig{
		Level:       conf.Log.Level,
		Environment: conf.Server.Env,
		ServiceName: conf.ServiceName,
	})
	if err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.Info("Starting chatbot service", conf.LogConfig()...)

	st, err := buildStore(conf, log)
	if err != nil {
		log.Fatal("Failed to initialize storage", zap.Error(err))
	}

	// Embedding provider, optionally cached in Redis
	var provider embedding.Provider = embedding.NewHTTPProvider(conf.Embedding.ServiceURL, conf.Embedding.Dimension)
	if conf.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		provider = embedding.NewCachingProvider(provider, redisClient, conf.Embedding.CacheTTL, log)
		log.Info("Embedding cache enabled", zap.String("redis_addr", conf.Redis.Addr))
	}

	matcher := nlp.NewMatcher(provider, conf.Embedding.Threshold, log)
	enforcer := quota.NewEnforcer(quota.ParsePolicy(conf.Chat.QuotaPolicy))

	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      conf.JWT.SigningKey,
		ExpirationHours: conf.JWT.ExpirationHours,
	})

	httpMetrics := metrics.NewHTTPMetrics(conf.ServiceName)

	// Handlers
	interactHandler := handler.NewInteractHandler(matcher)
	faqHandler := handler.NewFAQHandler(provider, enforcer)
	ruleHandler := handler.NewRuleHandler()
	submissionHandler := handler.NewSubmissionHandler()
	analyticsHandler := handler.NewAnalyticsHandler(conf.Chat.WelcomeNode)
	tenantHandler := handler.NewTenantHandler(st)

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true

	// Apply middleware
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(httpMetrics.Middleware())
	e.Use(middleware.TenantResolver(st, enforcer))

	// Operational endpoints
	e.GET("/health", handler.HealthCheck(st))
	e.GET("/metrics", echo.WrapHandler(metrics.GetPrometheusHandler()))

	api := e.Group("/api/v1")

	// Public widget endpoints
	api.POST("/interact", interactHandler.Interact)
	api.POST("/submissions", submissionHandler.CreateSubmission)

	// Dashboard endpoints - require authentication
	auth := middleware.JWTAuthMiddleware(jwt)
	api.GET("/submissions", submissionHandler.ListSubmissions, auth)

	faqs := api.Group("/faqs", auth)
	faqs.POST("", faqHandler.CreateFAQ)
	faqs.GET("", faqHandler.ListFAQs)
	faqs.GET("/:id", faqHandler.GetFAQ)
	faqs.PUT("/:id", faqHandler.UpdateFAQ)
	faqs.DELETE("/:id", faqHandler.DeleteFAQ)

	rules := api.Group("/rules", auth)
	rules.POST("", ruleHandler.CreateRule)
	rules.GET("", ruleHandler.ListRules)
	rules.PUT("/:id", ruleHandler.UpdateRule)
	rules.DELETE("/:id", ruleHandler.DeleteRule)

	analytics := api.Group("/analytics", auth)
	analytics.GET("", analyticsHandler.ListLogs)
	analytics.GET("/summary", analyticsHandler.Summary)

	// Provisioning (admin)
	e.POST("/tenants", tenantHandler.CreateTenant, auth)

	// Start server
	log.Info("Listening on port " + conf.Server.Port)
	e.Logger.Fatal(e.Start(":" + conf.Server.Port))
}

// buildStore selects the storage driver. PostgreSQL keeps one schema per
// tenant; the in-memory store is for development without a database.
func buildStore(conf *config.Config, log *zap.Logger) (store.Store, error) {
	if conf.Store.Driver == "memory" {
		log.Warn("Using in-memory store; data will not survive a restart")
		return store.NewMemoryStore(), nil
	}

	db, err := database.InitDB(&conf.DB)
	if err != nil {
		return nil, err
	}

	if err := database.MigrateModels(db, store.DirectoryModels...); err != nil {
		return nil, err
	}

	partitions := database.NewPartitionManager(db, &conf.DB)
	return store.NewGormStore(db, partitions), nil
}
