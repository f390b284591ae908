package service

import (
	"context"
	"errors"
	"time"

	"dira-directory/backend/ai"
	"dira-directory/backend/internal/models"
	"dira-directory/backend/pkg/logger"
	"dira-directory/backend/pkg/resilience"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrChatNotFound     = errors.New("chat not found")
	ErrChatLimitReached = errors.New("monthly chat limit reached")
	ErrAIUnavailable    = errors.New("assistant is currently unavailable")
)

// Streamer is the slice of the AI gateway client the chat service needs.
// Tests substitute a scripted implementation.
type Streamer interface {
	StreamChat(ctx context.Context, messages []ai.Message, onDelta func(string)) (string, error)
	Model() string
}

// ChatService relays conversations between visitors and the AI gateway and
// enforces the monthly chat quota.
type ChatService struct {
	db            *gorm.DB
	streamer      Streamer
	breaker       *resilience.CircuitBreaker
	products      *ProductService
	opportunities *OpportunityService
	log           *logger.Logger

	monthlyLimit  int
	historyWindow int
}

// ChatServiceConfig holds the tunables for the chat service
type ChatServiceConfig struct {
	MonthlyLimit  int
	HistoryWindow int
}

// NewChatService creates a new chat service
func NewChatService(
	db *gorm.DB,
	streamer Streamer,
	breaker *resilience.CircuitBreaker,
	products *ProductService,
	opportunities *OpportunityService,
	log *logger.Logger,
	config ChatServiceConfig,
) *ChatService {
	if config.MonthlyLimit <= 0 {
		config.MonthlyLimit = 3
	}
	if config.HistoryWindow <= 0 {
		config.HistoryWindow = 10
	}
	return &ChatService{
		db:            db,
		streamer:      streamer,
		breaker:       breaker,
		products:      products,
		opportunities: opportunities,
		log:           log,
		monthlyLimit:  config.MonthlyLimit,
		historyWindow: config.HistoryWindow,
	}
}

// RemainingChats returns how many chats the user may still open this
// calendar month, or -1 when the user is exempt from the quota.
func (s *ChatService) RemainingChats(userID uint, now time.Time) (int, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	if user.Unlimited {
		return -1, nil
	}

	count, err := s.monthUsage(userID, now)
	if err != nil {
		return 0, err
	}

	remaining := s.monthlyLimit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// CreateChat opens a new conversation for the user after checking the
// monthly quota. Usage is counted per calendar month in server time.
func (s *ChatService) CreateChat(userID uint, req *models.CreateChatRequest) (*models.CreateChatResponse, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := time.Now()

	if !user.Unlimited {
		count, err := s.monthUsage(userID, now)
		if err != nil {
			return nil, err
		}
		if count >= s.monthlyLimit {
			return nil, ErrChatLimitReached
		}
	}

	chatType := req.ChatType
	if chatType == "" {
		chatType = models.ChatTypeProduct
	}

	name := req.Name
	if name == "" {
		name = "Chat Session - " + now.Format("Jan 2, 2006")
	}

	chat := &models.Chat{
		UserID:    userID,
		SessionID: req.SessionID,
		Name:      name,
		ChatType:  chatType,
		Status:    models.ChatStatusActive,
	}
	if err := s.db.Create(chat).Error; err != nil {
		return nil, err
	}

	remaining := -1
	if !user.Unlimited {
		count, err := s.bumpMonthUsage(userID, now)
		if err != nil {
			return nil, err
		}
		remaining = s.monthlyLimit - count
		if remaining < 0 {
			remaining = 0
		}
	}

	return &models.CreateChatResponse{Chat: chat, Remaining: remaining}, nil
}

// GetChat returns a chat scoped to its owner and session
func (s *ChatService) GetChat(chatID uint, userID uint, sessionID string) (*models.Chat, error) {
	var chat models.Chat
	err := s.db.Where("id = ? AND user_id = ? AND session_id = ?", chatID, userID, sessionID).First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return &chat, nil
}

// ListChats returns the user's chats, most recently active first
func (s *ChatService) ListChats(userID uint) ([]models.Chat, error) {
	var chats []models.Chat
	err := s.db.Where("user_id = ?", userID).Order("last_message_at DESC, id DESC").Find(&chats).Error
	if err != nil {
		return nil, err
	}
	return chats, nil
}

// SendMessage relays one user message through the AI gateway, streaming the
// response through onDelta as fragments arrive. The user message is
// persisted before the upstream call; the assistant message is persisted
// only when the stream completes. Returns the saved assistant message.
func (s *ChatService) SendMessage(ctx context.Context, userID, chatID uint, req *models.SendMessageRequest, onDelta func(string)) (*models.ChatMessage, error) {
	var chat models.Chat
	err := s.db.Where("id = ? AND user_id = ? AND session_id = ? AND status = ?",
		chatID, userID, req.SessionID, models.ChatStatusActive).First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}

	userMessage := &models.ChatMessage{
		ChatID:    chat.ID,
		SessionID: chat.SessionID,
		Sender:    models.SenderUser,
		Content:   req.Message,
	}
	if err := s.db.Create(userMessage).Error; err != nil {
		return nil, err
	}
	if err := s.touchChat(&chat); err != nil {
		return nil, err
	}

	messages, err := s.buildHistory(&chat)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var response string
	err = s.breaker.Execute(func() error {
		var streamErr error
		response, streamErr = s.streamer.StreamChat(ctx, messages, onDelta)
		return streamErr
	})
	if err != nil {
		if ctx.Err() != nil {
			// Client went away mid-stream; the user message stays, the
			// partial response is discarded.
			s.log.Info("chat stream cancelled by client", "chatId", chat.ID)
			return nil, ctx.Err()
		}
		s.log.LogError(err, "ai gateway stream failed", "chatId", chat.ID)
		return nil, ErrAIUnavailable
	}
	if response == "" {
		return nil, ErrAIUnavailable
	}

	aiMessage := &models.ChatMessage{
		ChatID:       chat.ID,
		SessionID:    chat.SessionID,
		Sender:       models.SenderAI,
		Content:      response,
		Model:        s.streamer.Model(),
		ProcessingMS: time.Since(start).Milliseconds(),
	}
	if err := s.db.Create(aiMessage).Error; err != nil {
		return nil, err
	}
	if err := s.touchChat(&chat); err != nil {
		return nil, err
	}

	return aiMessage, nil
}

// ListMessages returns one page of a chat's messages in chronological order
func (s *ChatService) ListMessages(chatID uint, userID uint, sessionID string, page, limit int) ([]models.ChatMessage, error) {
	if _, err := s.GetChat(chatID, userID, sessionID); err != nil {
		return nil, err
	}

	page, limit = normalizePage(page, limit)

	var messages []models.ChatMessage
	err := s.db.Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// buildHistory assembles the gateway request: the catalog system prompt
// followed by the last historyWindow messages in chronological order.
func (s *ChatService) buildHistory(chat *models.Chat) ([]ai.Message, error) {
	var system string
	switch chat.ChatType {
	case models.ChatTypeOpportunity:
		opportunities, err := s.opportunities.ListActiveOpportunities()
		if err != nil {
			return nil, err
		}
		system = ai.BuildOpportunityPrompt(opportunities)
	default:
		products, err := s.products.ListActiveProducts()
		if err != nil {
			return nil, err
		}
		system = ai.BuildProductPrompt(products)
	}

	var recent []models.ChatMessage
	err := s.db.Where("chat_id = ?", chat.ID).
		Order("created_at DESC, id DESC").
		Limit(s.historyWindow).
		Find(&recent).Error
	if err != nil {
		return nil, err
	}

	messages := make([]ai.Message, 0, len(recent)+1)
	messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: system})

	// recent is newest-first; replay oldest-first
	for i := len(recent) - 1; i >= 0; i-- {
		role := ai.RoleUser
		if recent[i].Sender == models.SenderAI {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.Message{Role: role, Content: recent[i].Content})
	}

	return messages, nil
}

func (s *ChatService) touchChat(chat *models.Chat) error {
	chat.MessageCount++
	chat.LastMessageAt = time.Now()
	return s.db.Model(chat).Updates(map[string]interface{}{
		"message_count":   chat.MessageCount,
		"last_message_at": chat.LastMessageAt,
	}).Error
}

// monthUsage reads the user's chat count for the month containing now
func (s *ChatService) monthUsage(userID uint, now time.Time) (int, error) {
	var usage models.ChatUsage
	err := s.db.Where("user_id = ? AND year = ? AND month = ?", userID, now.Year(), int(now.Month())).First(&usage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return usage.ChatCount, nil
}

// bumpMonthUsage upserts the usage row for the month containing now,
// incrementing the count atomically, and returns the new count.
func (s *ChatService) bumpMonthUsage(userID uint, now time.Time) (int, error) {
	usage := models.ChatUsage{
		UserID:    userID,
		Year:      now.Year(),
		Month:     int(now.Month()),
		ChatCount: 1,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "year"}, {Name: "month"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"chat_count": gorm.Expr("chat_count + ?", 1),
		}),
	}).Create(&usage).Error
	if err != nil {
		return 0, err
	}

	return s.monthUsage(userID, now)
}
