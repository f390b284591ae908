package api

import (
	"context"
	"testing"
	"time"

	"dira-directory/backend/ai"
	"dira-directory/backend/internal/models"
	"dira-directory/backend/internal/service"
	"dira-directory/backend/pkg/cache"
	apperrors "dira-directory/backend/pkg/errors"
	"dira-directory/backend/pkg/logger"
	"dira-directory/backend/pkg/middleware"
	"dira-directory/backend/pkg/resilience"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	jwtpkg "dira-directory/backend/pkg/jwt"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Opportunity{},
		&models.UserFeedback{},
		&models.FeedbackAnalytics{},
		&models.Chat{},
		&models.ChatMessage{},
		&models.ChatUsage{},
	))

	return db
}

// scriptedStreamer replays a fixed response through the delta callback
type scriptedStreamer struct {
	chunks []string
	err    error
}

func (s *scriptedStreamer) StreamChat(ctx context.Context, messages []ai.Message, onDelta func(string)) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	var full string
	for _, chunk := range s.chunks {
		full += chunk
		if onDelta != nil {
			onDelta(chunk)
		}
	}
	return full, nil
}

func (s *scriptedStreamer) Model() string { return "test-model" }

type testEnv struct {
	db     *gorm.DB
	engine *gin.Engine
}

// authAs returns a middleware that injects verified claims, standing in for
// the JWT middleware in handler tests.
func authAs(externalID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextClaimsKey, &jwtpkg.Claims{
			Email: externalID + "@example.com",
			Name:  "Test User",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject: externalID,
			},
		})
		c.Set(middleware.ContextUserIDKey, externalID)
		c.Next()
	}
}

func newTestEnv(t *testing.T, streamer service.Streamer, auth gin.HandlerFunc) *testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	log := logger.GetGlobal()
	memCache := cache.NewCacheWithOptions(time.Minute, time.Minute, 100)

	users := service.NewUserService(db)
	products := service.NewProductService(db, memCache)
	opportunities := service.NewOpportunityService(db, memCache)
	feedback := service.NewFeedbackService(db, nil, log)

	if streamer == nil {
		streamer = &scriptedStreamer{chunks: []string{"ok"}}
	}
	breaker := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("test"), log)
	chats := service.NewChatService(db, streamer, breaker, products, opportunities, log, service.ChatServiceConfig{
		MonthlyLimit:  3,
		HistoryWindow: 10,
	})

	engine := gin.New()
	engine.Use(apperrors.ErrorHandler())
	if auth != nil {
		engine.Use(auth)
	}

	requireAuth := func(c *gin.Context) {
		if _, ok := middleware.CurrentClaims(c); !ok {
			c.Error(apperrors.NewUnauthorizedError("AUTH_REQUIRED", "Authentication required"))
			c.Abort()
			return
		}
		c.Next()
	}

	v1 := engine.Group("/api/v1")
	NewProductHandler(products, users).RegisterRoutes(v1, requireAuth)
	NewOpportunityHandler(opportunities, users).RegisterRoutes(v1, requireAuth)
	NewFeedbackHandler(feedback, users).RegisterRoutes(v1, requireAuth)
	NewChatHandler(chats, users).RegisterRoutes(v1, requireAuth)
	NewUserHandler(users).RegisterRoutes(v1, requireAuth)

	return &testEnv{db: db, engine: engine}
}
