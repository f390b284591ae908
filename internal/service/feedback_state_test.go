package service

import (
	"testing"

	"dira-directory/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFeedbackUpvote(t *testing.T) {
	fb := &models.UserFeedback{}

	deltas, err := applyFeedback(fb, models.FeedbackUpvote, true)
	require.NoError(t, err)

	assert.True(t, fb.UpVoted)
	assert.False(t, fb.DownVoted)
	assert.Equal(t, 1, deltas.UpVote)
	assert.Equal(t, 0, deltas.DownVote)
	assert.Equal(t, 0, deltas.InUse)
}

func TestApplyFeedbackUpvoteClearsDownvote(t *testing.T) {
	fb := &models.UserFeedback{DownVoted: true}

	deltas, err := applyFeedback(fb, models.FeedbackUpvote, true)
	require.NoError(t, err)

	assert.True(t, fb.UpVoted)
	assert.False(t, fb.DownVoted)
	assert.Equal(t, 1, deltas.UpVote)
	assert.Equal(t, -1, deltas.DownVote)
}

func TestApplyFeedbackDownvoteClearsUpvote(t *testing.T) {
	fb := &models.UserFeedback{UpVoted: true}

	deltas, err := applyFeedback(fb, models.FeedbackDownvote, true)
	require.NoError(t, err)

	assert.False(t, fb.UpVoted)
	assert.True(t, fb.DownVoted)
	assert.Equal(t, -1, deltas.UpVote)
	assert.Equal(t, 1, deltas.DownVote)
}

func TestApplyFeedbackRemoveUpvote(t *testing.T) {
	fb := &models.UserFeedback{UpVoted: true}

	deltas, err := applyFeedback(fb, models.FeedbackUpvote, false)
	require.NoError(t, err)

	assert.False(t, fb.UpVoted)
	assert.Equal(t, -1, deltas.UpVote)
}

func TestApplyFeedbackRemoveUpvoteKeepsDownvote(t *testing.T) {
	// Clearing one flag never touches the opposite flag
	fb := &models.UserFeedback{DownVoted: true}

	deltas, err := applyFeedback(fb, models.FeedbackUpvote, false)
	require.NoError(t, err)

	assert.True(t, fb.DownVoted)
	assert.Equal(t, 0, deltas.UpVote)
	assert.Equal(t, 0, deltas.DownVote)
}

func TestApplyFeedbackNoOp(t *testing.T) {
	fb := &models.UserFeedback{UpVoted: true}

	deltas, err := applyFeedback(fb, models.FeedbackUpvote, true)
	require.NoError(t, err)

	assert.Equal(t, feedbackDeltas{}, deltas)
}

func TestApplyFeedbackUsedIndependent(t *testing.T) {
	fb := &models.UserFeedback{UpVoted: true}

	deltas, err := applyFeedback(fb, models.FeedbackUsed, true)
	require.NoError(t, err)

	assert.True(t, fb.UpVoted)
	assert.True(t, fb.Used)
	assert.Equal(t, 0, deltas.UpVote)
	assert.Equal(t, 1, deltas.InUse)
}

func TestApplyFeedbackUnknownType(t *testing.T) {
	fb := &models.UserFeedback{}

	_, err := applyFeedback(fb, "bookmark", true)
	assert.ErrorIs(t, err, ErrUnknownFeedbackType)
}

func TestClampNonNegative(t *testing.T) {
	assert.Equal(t, 0, clampNonNegative(-3))
	assert.Equal(t, 0, clampNonNegative(0))
	assert.Equal(t, 7, clampNonNegative(7))
}
