package di

import (
	"context"
	"fmt"

	"dira-directory/backend/ai"
	"dira-directory/backend/internal/api"
	"dira-directory/backend/internal/service"
	"dira-directory/backend/pkg/cache"
	"dira-directory/backend/pkg/config"
	"dira-directory/backend/pkg/jwt"
	"dira-directory/backend/pkg/logger"
	"dira-directory/backend/pkg/resilience"
	"dira-directory/backend/pkg/secrets"
	"dira-directory/backend/shared/redis"

	"gorm.io/gorm"
)

// Container holds all the dependencies for the application
type Container struct {
	DB     *gorm.DB
	Config *config.Config
	Logger *logger.Logger

	JWTService *jwt.Service
	Secrets    secrets.Manager
	Cache      *cache.Cache
	Redis      *redis.Client
	AIClient   *ai.Client
	AIBreaker  *resilience.CircuitBreaker

	UserService        *service.UserService
	ProductService     *service.ProductService
	OpportunityService *service.OpportunityService
	FeedbackService    *service.FeedbackService
	ChatService        *service.ChatService

	UserHandler        *api.UserHandler
	ProductHandler     *api.ProductHandler
	OpportunityHandler *api.OpportunityHandler
	FeedbackHandler    *api.FeedbackHandler
	ChatHandler        *api.ChatHandler
}

// New wires the application graph from the database connection up
func New(db *gorm.DB, cfg *config.Config, log *logger.Logger) (*Container, error) {
	if cfg == nil {
		cfg = config.Get()
	}
	if log == nil {
		log = logger.GetGlobal()
	}

	jwtService := jwt.NewService(cfg.Auth.JWTSecret)

	secretManager, err := secrets.NewVaultManager(log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets manager: %w", err)
	}

	apiKey, err := secretManager.GetSecret(context.Background(), "ai_api_key")
	if err != nil {
		return nil, fmt.Errorf("failed to resolve AI gateway API key: %w", err)
	}

	aiClient, err := ai.NewClient(ai.Config{
		BaseURL:     cfg.AI.BaseURL,
		APIKey:      apiKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		Timeout:     cfg.AI.Timeout,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI gateway client: %w", err)
	}

	aiBreaker := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("ai-gateway"), log)

	memCache := cache.NewCache()

	var redisClient *redis.Client
	if cfg.Cache.RedisURL != "" {
		redisClient = redis.NewClient(cfg.Cache.RedisURL)
		if err := redisClient.Ping(context.Background()); err != nil {
			log.Warn("redis unreachable, feedback cache disabled", "error", err.Error())
			redisClient = nil
		}
	}

	userService := service.NewUserService(db)
	productService := service.NewProductService(db, memCache)
	opportunityService := service.NewOpportunityService(db, memCache)
	feedbackService := service.NewFeedbackService(db, redisClient, log)
	chatService := service.NewChatService(db, aiClient, aiBreaker, productService, opportunityService, log,
		service.ChatServiceConfig{
			MonthlyLimit:  cfg.Chat.MonthlyLimit,
			HistoryWindow: cfg.Chat.HistoryWindow,
		})

	return &Container{
		DB:     db,
		Config: cfg,
		Logger: log,

		JWTService: jwtService,
		Secrets:    secretManager,
		Cache:      memCache,
		Redis:      redisClient,
		AIClient:   aiClient,
		AIBreaker:  aiBreaker,

		UserService:        userService,
		ProductService:     productService,
		OpportunityService: opportunityService,
		FeedbackService:    feedbackService,
		ChatService:        chatService,

		UserHandler:        api.NewUserHandler(userService),
		ProductHandler:     api.NewProductHandler(productService, userService),
		OpportunityHandler: api.NewOpportunityHandler(opportunityService, userService),
		FeedbackHandler:    api.NewFeedbackHandler(feedbackService, userService),
		ChatHandler:        api.NewChatHandler(chatService, userService),
	}, nil
}
