package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dira-directory/backend/internal/models"
	"dira-directory/backend/pkg/logger"
	"dira-directory/backend/shared/redis"

	"gorm.io/gorm"
)

// ErrProductNotFound is returned when the target product does not exist or is inactive
var ErrProductNotFound = errors.New("product not found")

const feedbackCacheTTL = 5 * time.Minute

// FeedbackService handles per-user feedback toggles and the aggregate counters
type FeedbackService struct {
	db    *gorm.DB
	cache *redis.Client
	log   *logger.Logger
}

// NewFeedbackService creates a new feedback service. The redis client is
// optional; pass nil to run without the read cache.
func NewFeedbackService(db *gorm.DB, cache *redis.Client, log *logger.Logger) *FeedbackService {
	return &FeedbackService{db: db, cache: cache, log: log}
}

// SubmitFeedback applies one toggle for one user and adjusts the product's
// aggregate counters by the resulting deltas. The per-user row and the
// counter row are saved independently; both are created lazily.
func (s *FeedbackService) SubmitFeedback(ctx context.Context, userID uint, req *models.SubmitFeedbackRequest) (*models.FeedbackResponse, error) {
	var product models.Product
	if err := s.db.Where("id = ? AND active = ?", req.ProductID, true).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	feedback, err := s.loadOrCreateFeedback(req.ProductID, userID)
	if err != nil {
		return nil, err
	}

	deltas, err := applyFeedback(feedback, req.Type, *req.Added)
	if err != nil {
		return nil, err
	}

	if err := s.db.Save(feedback).Error; err != nil {
		return nil, err
	}

	analytics, err := s.loadOrCreateAnalytics(req.ProductID)
	if err != nil {
		return nil, err
	}

	analytics.UpVote = clampNonNegative(analytics.UpVote + deltas.UpVote)
	analytics.DownVote = clampNonNegative(analytics.DownVote + deltas.DownVote)
	analytics.InUse = clampNonNegative(analytics.InUse + deltas.InUse)

	if err := s.db.Save(analytics).Error; err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, req.ProductID)

	return &models.FeedbackResponse{
		ProductID: req.ProductID,
		Counts: models.FeedbackCounts{
			UpVote:   analytics.UpVote,
			DownVote: analytics.DownVote,
			InUse:    analytics.InUse,
		},
		User: &models.UserFeedbackState{
			UpVoted:   feedback.UpVoted,
			DownVoted: feedback.DownVoted,
			Used:      feedback.Used,
		},
	}, nil
}

// GetFeedback returns the aggregate counters for a product, plus the caller's
// own toggle state when userID is non-zero. Anonymous reads are served from
// the redis cache when available.
func (s *FeedbackService) GetFeedback(ctx context.Context, productID, userID uint) (*models.FeedbackResponse, error) {
	if userID == 0 {
		if cached := s.readCache(ctx, productID); cached != nil {
			return cached, nil
		}
	}

	var product models.Product
	if err := s.db.Where("id = ? AND active = ?", productID, true).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	response := &models.FeedbackResponse{ProductID: productID}

	var analytics models.FeedbackAnalytics
	err := s.db.Where("product_id = ?", productID).First(&analytics).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil {
		response.Counts = models.FeedbackCounts{
			UpVote:   analytics.UpVote,
			DownVote: analytics.DownVote,
			InUse:    analytics.InUse,
		}
	}

	if userID != 0 {
		var feedback models.UserFeedback
		err := s.db.Where("product_id = ? AND user_id = ?", productID, userID).First(&feedback).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err == nil {
			response.User = &models.UserFeedbackState{
				UpVoted:   feedback.UpVoted,
				DownVoted: feedback.DownVoted,
				Used:      feedback.Used,
			}
		} else {
			response.User = &models.UserFeedbackState{}
		}
		return response, nil
	}

	s.writeCache(ctx, productID, response)

	return response, nil
}

func (s *FeedbackService) loadOrCreateFeedback(productID, userID uint) (*models.UserFeedback, error) {
	var feedback models.UserFeedback
	err := s.db.Where("product_id = ? AND user_id = ?", productID, userID).First(&feedback).Error
	if err == nil {
		return &feedback, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	feedback = models.UserFeedback{ProductID: productID, UserID: userID}
	if err := s.db.Create(&feedback).Error; err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (s *FeedbackService) loadOrCreateAnalytics(productID uint) (*models.FeedbackAnalytics, error) {
	var analytics models.FeedbackAnalytics
	err := s.db.Where("product_id = ?", productID).First(&analytics).Error
	if err == nil {
		return &analytics, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	analytics = models.FeedbackAnalytics{ProductID: productID}
	if err := s.db.Create(&analytics).Error; err != nil {
		return nil, err
	}
	return &analytics, nil
}

func feedbackCacheKey(productID uint) string {
	return fmt.Sprintf("feedback:product:%d", productID)
}

func (s *FeedbackService) readCache(ctx context.Context, productID uint) *models.FeedbackResponse {
	if s.cache == nil {
		return nil
	}

	raw, err := s.cache.Get(ctx, feedbackCacheKey(productID))
	if err != nil {
		if !redis.IsMiss(err) {
			s.log.Warn("feedback cache read failed", "productId", productID, "error", err.Error())
		}
		return nil
	}

	var response models.FeedbackResponse
	if err := json.Unmarshal([]byte(raw), &response); err != nil {
		return nil
	}
	return &response
}

func (s *FeedbackService) writeCache(ctx context.Context, productID uint, response *models.FeedbackResponse) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, feedbackCacheKey(productID), string(raw), feedbackCacheTTL); err != nil {
		s.log.Warn("feedback cache write failed", "productId", productID, "error", err.Error())
	}
}

func (s *FeedbackService) invalidateCache(ctx context.Context, productID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, feedbackCacheKey(productID)); err != nil {
		s.log.Warn("feedback cache invalidation failed", "productId", productID, "error", err.Error())
	}
}
