package responses

import "github.com/malaysia-ai/concierge-server/internal/concierge/images"

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ImageSearchResponse is the payload returned by /image-search.
type ImageSearchResponse struct {
	Images     []images.ImageResult `json:"images"`
	Query      string               `json:"query"`
	TotalFound int                  `json:"total_found"`
}

// TrackDownloadResponse is the payload returned by /track-image-download.
type TrackDownloadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ImageUploadResponse is the payload returned by /upload-image.
type ImageUploadResponse struct {
	Analysis    string   `json:"analysis"`
	Suggestions []string `json:"suggestions"`
	ImageID     string   `json:"image_id"`
	Processed   bool     `json:"processed"`
}
