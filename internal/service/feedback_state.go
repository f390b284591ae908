package service

import (
	"errors"

	"dira-directory/backend/internal/models"
)

// ErrUnknownFeedbackType is returned for a feedback kind outside the three toggles
var ErrUnknownFeedbackType = errors.New("unknown feedback type")

// feedbackDeltas holds the counter adjustments produced by one toggle
type feedbackDeltas struct {
	UpVote   int
	DownVote int
	InUse    int
}

// applyFeedback mutates the per-user flags for one toggle and returns the
// counter deltas. Upvote and downvote are mutually exclusive: setting one
// clears the other, and the cleared flag contributes its own -1. Deltas are
// computed against the snapshot taken before any mutation, so a no-op toggle
// (setting a flag that is already set) produces all-zero deltas.
func applyFeedback(fb *models.UserFeedback, kind string, desired bool) (feedbackDeltas, error) {
	prev := *fb

	switch kind {
	case models.FeedbackUpvote:
		fb.UpVoted = desired
		if desired {
			fb.DownVoted = false
		}
	case models.FeedbackDownvote:
		fb.DownVoted = desired
		if desired {
			fb.UpVoted = false
		}
	case models.FeedbackUsed:
		fb.Used = desired
	default:
		return feedbackDeltas{}, ErrUnknownFeedbackType
	}

	return feedbackDeltas{
		UpVote:   boolDelta(prev.UpVoted, fb.UpVoted),
		DownVote: boolDelta(prev.DownVoted, fb.DownVoted),
		InUse:    boolDelta(prev.Used, fb.Used),
	}, nil
}

// boolDelta is +1 for false→true, -1 for true→false, 0 otherwise
func boolDelta(before, after bool) int {
	switch {
	case !before && after:
		return 1
	case before && !after:
		return -1
	default:
		return 0
	}
}

// clampNonNegative keeps aggregate counters from going below zero when
// historical rows predate the counter table.
func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
