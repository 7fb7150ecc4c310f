package vision

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malaysia-ai/concierge-server/internal/concierge/model"
	errx "github.com/malaysia-ai/concierge-server/internal/core/error"
)

func TestValidateImageAcceptsSupportedTypes(t *testing.T) {
	for _, contentType := range []string{"image/jpeg", "image/jpg", "image/png", "image/webp"} {
		assert.NoError(t, ValidateImage(contentType, 1024), contentType)
	}
}

func TestValidateImageRejectsUnsupportedType(t *testing.T) {
	err := ValidateImage("application/pdf", 1024)

	require.Error(t, err)
	var e *errx.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, http.StatusBadRequest, errx.StatusOf(err, http.StatusInternalServerError))
	assert.Equal(t, "Unsupported file type 'application/pdf'. Please upload a JPEG, PNG, or WebP image.", e.Message)
}

func TestValidateImageRejectsOversized(t *testing.T) {
	err := ValidateImage("image/png", 12*1024*1024)

	require.Error(t, err)
	var e *errx.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, http.StatusBadRequest, errx.StatusOf(err, http.StatusInternalServerError))
	assert.Equal(t, "Image too large (12.0MB). Please upload an image smaller than 10MB.", e.Message)
}

func TestValidateImageAtLimit(t *testing.T) {
	assert.NoError(t, ValidateImage("image/jpeg", maxImageSize))
}

func newTestAnalyzer() *Analyzer {
	var convCfg model.ConversationConfig
	convCfg.Context.MaxTurns = 10
	return NewAnalyzer(
		nil,
		model.VisionModelConfig{Model: "gemini-2.5-flash", MaxTokens: 1500, Temperature: 0.4, TopP: 0.9},
		model.ResponseModelConfig{Model: "gemini-2.5-flash", MaxTokens: 8192, Temperature: 0.7, TopP: 0.95},
		model.PersonaPromptConfig{ConciergeName: "Aiman", Region: "Malaysia", Greeting: "Selamat Datang!"},
		convCfg,
	)
}

func TestProcessUploadAssignsIDAndMime(t *testing.T) {
	a := newTestAnalyzer()

	imageID, mimeType := a.ProcessUpload([]byte("fake-bytes"), "image/png")

	assert.NotEmpty(t, imageID)
	assert.Equal(t, "image/png", mimeType)
}

func TestProcessUploadDefaultsMimeType(t *testing.T) {
	a := newTestAnalyzer()

	_, mimeType := a.ProcessUpload([]byte("fake-bytes"), "")

	assert.Equal(t, "image/jpeg", mimeType)
}

func TestSuggestionsFromAnalysisKeywords(t *testing.T) {
	a := newTestAnalyzer()

	tests := []struct {
		name     string
		analysis string
		want     []string
	}{
		{
			name:     "kuala lumpur",
			analysis: "The Petronas Towers dominate the Kuala Lumpur skyline.",
			want:     []string{"Kuala Lumpur attractions"},
		},
		{
			name:     "penang with food",
			analysis: "A plate of char kway teow, the famous Penang street food.",
			want:     []string{"Penang food and heritage", "Malaysian cuisine experiences"},
		},
		{
			name:     "beach scene",
			analysis: "A quiet island beach with turquoise water.",
			want:     []string{"Malaysian beach destinations"},
		},
		{
			name:     "no keywords falls back to defaults",
			analysis: "A photo of a cat on a sofa.",
			want:     []string{"Malaysia travel recommendations", "Local experiences", "Similar attractions"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Suggestions(tt.analysis))
		})
	}
}
