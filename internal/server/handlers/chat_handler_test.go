package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/compose"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malaysia-ai/concierge-server/internal/concierge/graph"
	conciergemodel "github.com/malaysia-ai/concierge-server/internal/concierge/model"
	"github.com/malaysia-ai/concierge-server/internal/concierge/phase"
	errx "github.com/malaysia-ai/concierge-server/internal/core/error"
)

type fakeRunner struct {
	lastInput conciergemodel.ChatInput
	result    *conciergemodel.ChatResult
	err       error
}

func (f *fakeRunner) Invoke(_ context.Context, input conciergemodel.ChatInput, _ ...compose.Option) (*conciergemodel.ChatResult, error) {
	f.lastInput = input
	return f.result, f.err
}

func newChatRouter(runner graph.Runner) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewChatHandler(
		&graph.Concierge{Runner: runner},
		nil,
		conciergemodel.PersonaPromptConfig{ConciergeName: "Aiman", Region: "Malaysia", Greeting: "Selamat Datang!"},
	)
	router := gin.New()
	router.POST("/chat", handler.Chat)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestChatReturnsGraphResult(t *testing.T) {
	runner := &fakeRunner{result: &conciergemodel.ChatResult{
		Response:       "Try the hawker stalls at Jalan Alor!",
		Phase:          phase.Ideation,
		ImageQueries:   []string{"jalan alor street food"},
		ContainsImages: true,
		ModelUsed:      "gemini-2.5-flash",
	}}
	router := newChatRouter(runner)

	rec := postJSON(t, router, "/chat", gin.H{
		"message":         "where should I eat in KL?",
		"user_session_id": "sess-1",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sess-1", runner.lastInput.ConversationID)
	assert.Equal(t, "where should I eat in KL?", runner.lastInput.Message)

	var resp conciergemodel.ChatResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Try the hawker stalls at Jalan Alor!", resp.Response)
	assert.Equal(t, phase.Ideation, resp.Phase)
	assert.Equal(t, []string{"jalan alor street food"}, resp.ImageQueries)
	assert.True(t, resp.ContainsImages)
}

func TestChatForwardsClientHistory(t *testing.T) {
	runner := &fakeRunner{result: &conciergemodel.ChatResult{Response: "ok", Phase: phase.Scoping}}
	router := newChatRouter(runner)

	rec := postJSON(t, router, "/chat", gin.H{
		"message": "what about Penang?",
		"conversation_history": []gin.H{
			{"role": "user", "content": "planning a trip"},
			{"role": "assistant", "content": "Selamat Datang!"},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, runner.lastInput.History, 2)
	assert.Equal(t, "planning a trip", runner.lastInput.History[0].Content)
}

func TestChatRejectsMissingMessage(t *testing.T) {
	router := newChatRouter(&fakeRunner{})

	rec := postJSON(t, router, "/chat", gin.H{"user_session_id": "sess-1"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "detail")
}

func TestChatSurfacesUpstreamStatus(t *testing.T) {
	runner := &fakeRunner{err: errx.New(errors.New("model unavailable"), http.StatusBadGateway, errx.UpstreamErrorMessage)}
	router := newChatRouter(runner)

	rec := postJSON(t, router, "/chat", gin.H{"message": "hello"})

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to generate response")
}

func TestChatDefaultsToInternalErrorStatus(t *testing.T) {
	runner := &fakeRunner{err: errors.New("boom")}
	router := newChatRouter(runner)

	rec := postJSON(t, router, "/chat", gin.H{"message": "hello"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
