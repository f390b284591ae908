package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dira-directory/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, env *testEnv, name string, active bool) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:        name,
		Country:     "Estonia",
		Categories:  models.StringList{"govtech"},
		Description: "A test catalog entry",
		Website:     "https://example.com",
		Active:      active,
	}
	require.NoError(t, env.db.Create(product).Error)
	return product
}

func TestSubmitFeedbackEndpoint(t *testing.T) {
	env := newTestEnv(t, nil, authAs("ext-1"))
	product := seedProduct(t, env, "Registry", true)

	body := fmt.Sprintf(`{"productId": %d, "type": "upvote", "added": true}`, product.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.FeedbackResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Counts.UpVote)
	require.NotNil(t, resp.User)
	assert.True(t, resp.User.UpVoted)
}

func TestSubmitFeedbackRequiresAuth(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	product := seedProduct(t, env, "Registry", true)

	body := fmt.Sprintf(`{"productId": %d, "type": "upvote", "added": true}`, product.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_REQUIRED")
}

func TestSubmitFeedbackValidation(t *testing.T) {
	env := newTestEnv(t, nil, authAs("ext-1"))
	seedProduct(t, env, "Registry", true)

	// missing "added"
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback",
		strings.NewReader(`{"productId": 1, "type": "upvote"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestSubmitFeedbackUnknownProduct(t *testing.T) {
	env := newTestEnv(t, nil, authAs("ext-1"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback",
		strings.NewReader(`{"productId": 999, "type": "upvote", "added": true}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestGetFeedbackAnonymous(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	product := seedProduct(t, env, "Registry", true)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/products/%d/feedback", product.ID), nil)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.FeedbackResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, product.ID, resp.ProductID)
	assert.Nil(t, resp.User)
}

func TestGetFeedbackAuthenticatedIncludesUserState(t *testing.T) {
	env := newTestEnv(t, nil, authAs("ext-1"))
	product := seedProduct(t, env, "Registry", true)

	body := fmt.Sprintf(`{"productId": %d, "type": "used", "added": true}`, product.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/products/%d/feedback", product.ID), nil)
	w = httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.FeedbackResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Counts.InUse)
	require.NotNil(t, resp.User)
	assert.True(t, resp.User.Used)
}
