package models

import (
	"time"
)

// Feedback kinds accepted by the submit endpoint
const (
	FeedbackUpvote   = "upvote"
	FeedbackDownvote = "downvote"
	FeedbackUsed     = "used"
)

// UserFeedback holds one user's toggle state for one product. A single row
// per (product, user) pair carries all three flags.
type UserFeedback struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_feedback_product_user"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_feedback_product_user"`
	UpVoted   bool      `json:"up_voted" gorm:"default:false"`
	DownVoted bool      `json:"down_voted" gorm:"default:false"`
	Used      bool      `json:"used" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FeedbackAnalytics holds the aggregate counters for one product
type FeedbackAnalytics struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex"`
	UpVote    int       `json:"upVote" gorm:"default:0"`
	DownVote  int       `json:"downVote" gorm:"default:0"`
	InUse     int       `json:"inUse" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubmitFeedbackRequest is the payload for the feedback toggle endpoint.
// Added carries the desired end state: true sets the flag, false clears it.
type SubmitFeedbackRequest struct {
	ProductID uint   `json:"productId" binding:"required"`
	Type      string `json:"type" binding:"required,oneof=upvote downvote used"`
	Added     *bool  `json:"added" binding:"required"`
}

// FeedbackCounts is the public view of a product's aggregate counters
type FeedbackCounts struct {
	UpVote   int `json:"upVote"`
	DownVote int `json:"downVote"`
	InUse    int `json:"inUse"`
}

// UserFeedbackState is the public view of the caller's own toggle flags
type UserFeedbackState struct {
	UpVoted   bool `json:"upVoted"`
	DownVoted bool `json:"downVoted"`
	Used      bool `json:"used"`
}

// FeedbackResponse is returned by both the submit and get endpoints
type FeedbackResponse struct {
	ProductID uint               `json:"productId"`
	Counts    FeedbackCounts     `json:"counts"`
	User      *UserFeedbackState `json:"user,omitempty"`
}
