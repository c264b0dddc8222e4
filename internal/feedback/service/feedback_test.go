package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/cloud-drive-backend/internal/feedback/biz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memFeedbackRepo struct {
	entries []*biz.Feedback
}

func (r *memFeedbackRepo) Create(_ context.Context, fb *biz.Feedback) error {
	r.entries = append(r.entries, fb)
	return nil
}

func feedbackRouter() (*gin.Engine, *memFeedbackRepo) {
	gin.SetMode(gin.TestMode)
	repo := &memFeedbackRepo{}
	svc := NewFeedbackService(biz.NewFeedbackUseCase(repo), zap.NewNop())
	router := gin.New()
	svc.RegisterRoutes(router.Group("/"))
	return router, repo
}

func TestSubmitFeedbackStoresPayloadVerbatim(t *testing.T) {
	router, repo := feedbackRouter()

	payload := `{"rating": 5, "comment": "works great"}`
	req := httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Feedback submitted successfully")

	require.Len(t, repo.entries, 1)
	assert.Equal(t, payload, string(repo.entries[0].Payload))
	assert.False(t, repo.entries[0].ReceivedAt.IsZero())
}

func TestSubmitFeedbackAcceptsNonJSONBody(t *testing.T) {
	router, repo := feedbackRouter()

	req := httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader("free-form complaint"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.entries, 1)
	assert.Equal(t, "free-form complaint", string(repo.entries[0].Payload))
}

func TestSubmitFeedbackEmptyBody(t *testing.T) {
	router, repo := feedbackRouter()

	req := httptest.NewRequest(http.MethodPost, "/feedback", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to submit feedback")
	assert.Empty(t, repo.entries)
}
