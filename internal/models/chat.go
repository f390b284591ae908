package models

import (
	"time"
)

// Chat statuses
const (
	ChatStatusActive   = "active"
	ChatStatusArchived = "archived"
	ChatStatusDeleted  = "deleted"
)

// Chat types select which side of the catalog the assistant recommends from
const (
	ChatTypeProduct     = "product"
	ChatTypeOpportunity = "opportunity"
)

// Message senders
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// Chat is one conversation between a visitor session and the assistant
type Chat struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	UserID        uint      `json:"user_id" gorm:"index"`
	SessionID     string    `json:"session_id" gorm:"not null;index"`
	Name          string    `json:"name"`
	ChatType      string    `json:"chat_type" gorm:"default:product"`
	Status        string    `json:"status" gorm:"default:active;index"`
	MessageCount  int       `json:"message_count" gorm:"default:0"`
	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ChatMessage is one utterance in a chat, from either side
type ChatMessage struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	ChatID       uint      `json:"chat_id" gorm:"not null;index"`
	SessionID    string    `json:"session_id" gorm:"index"`
	Sender       string    `json:"sender" gorm:"not null"` // user | ai
	Content      string    `json:"content" gorm:"type:text;not null"`
	Model        string    `json:"model,omitempty"`        // AI messages only
	ProcessingMS int64     `json:"processing_ms,omitempty"` // AI messages only
	CreatedAt    time.Time `json:"created_at"`
}

// ChatUsage tracks how many chats a user has opened in a calendar month
type ChatUsage struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_usage_user_month"`
	Year      int       `json:"year" gorm:"not null;uniqueIndex:idx_usage_user_month"`
	Month     int       `json:"month" gorm:"not null;uniqueIndex:idx_usage_user_month"`
	ChatCount int       `json:"chat_count" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateChatRequest is the payload for opening a new chat
type CreateChatRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Name      string `json:"name"`
	ChatType  string `json:"chatType" binding:"omitempty,oneof=product opportunity"`
}

// CreateChatResponse includes the remaining quota alongside the new chat
type CreateChatResponse struct {
	Chat      *Chat `json:"chat"`
	Remaining int   `json:"remaining"` // -1 means unlimited
}

// SendMessageRequest is the payload for sending a user message into a chat
type SendMessageRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Message   string `json:"message" binding:"required"`
}
