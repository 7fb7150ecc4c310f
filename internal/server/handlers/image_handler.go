package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/malaysia-ai/concierge-server/internal/concierge/images"
	"github.com/malaysia-ai/concierge-server/internal/concierge/vision"
	errx "github.com/malaysia-ai/concierge-server/internal/core/error"
	"github.com/malaysia-ai/concierge-server/internal/server/requests"
	"github.com/malaysia-ai/concierge-server/internal/server/responses"
	logx "github.com/malaysia-ai/concierge-server/pkg/logger"
)

const defaultUploadMessage = "What do you see in this image?"

// ImageHandler serves the image search, tracking, and upload endpoints.
type ImageHandler struct {
	images   *images.Client
	analyzer *vision.Analyzer
}

func NewImageHandler(imageClient *images.Client, analyzer *vision.Analyzer) *ImageHandler {
	return &ImageHandler{
		images:   imageClient,
		analyzer: analyzer,
	}
}

// Search handles POST /image-search.
func (h *ImageHandler) Search(c *gin.Context) {
	var req requests.ImageSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{Detail: err.Error()})
		return
	}

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	results := h.images.Search(c.Request.Context(), req.Query, maxResults)

	c.JSON(http.StatusOK, responses.ImageSearchResponse{
		Images:     results,
		Query:      req.Query,
		TotalFound: len(results),
	})
}

// TrackDownload handles POST /track-image-download. The download URL may
// arrive as a query parameter or a JSON body.
func (h *ImageHandler) TrackDownload(c *gin.Context) {
	downloadURL := c.Query("download_url")
	if downloadURL == "" {
		var req requests.TrackDownloadRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			downloadURL = req.DownloadURL
		}
	}
	if downloadURL == "" {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{Detail: "download_url is required"})
		return
	}

	if err := h.images.TrackDownload(c.Request.Context(), downloadURL); err != nil {
		logx.Error().Err(err).Msg("download tracking failed")
		c.JSON(http.StatusOK, responses.TrackDownloadResponse{
			Success: false,
			Message: fmt.Sprintf("Tracking failed: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, responses.TrackDownloadResponse{
		Success: true,
		Message: "Download tracked",
	})
}

// Upload handles POST /upload-image: validate, analyze, and suggest
// follow-up topics for an uploaded photo.
func (h *ImageHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{Detail: "file is required"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := vision.ValidateImage(contentType, fileHeader.Size); err != nil {
		detail := err.Error()
		var e *errx.Error
		if errors.As(err, &e) {
			detail = e.Message
		}
		c.JSON(errx.StatusOf(err, http.StatusBadRequest), responses.ErrorResponse{Detail: detail})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{Detail: "failed to read uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{Detail: "failed to read uploaded file"})
		return
	}

	message := c.PostForm("message")
	if message == "" {
		message = defaultUploadMessage
	}

	imageID, mimeType := h.analyzer.ProcessUpload(data, contentType)
	analysis := h.analyzer.Analyze(c.Request.Context(), data, mimeType, message)
	suggestions := h.analyzer.Suggestions(analysis)

	c.JSON(http.StatusOK, responses.ImageUploadResponse{
		Analysis:    analysis,
		Suggestions: suggestions,
		ImageID:     imageID,
		Processed:   true,
	})
}
