package api

import (
	"github.com/ssargent/rgbpng/pkg/decoder"
	"github.com/ssargent/rgbpng/pkg/render"
	"github.com/ssargent/rgbpng/pkg/storage"
)

// DefaultMaxUploadBytes bounds the size of an uploaded stream
const DefaultMaxUploadBytes = 64 << 20

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// InspectResponse lists the records of a stream that was not stored
type InspectResponse struct {
	Records []decoder.RecordInfo `json:"records"`
	Summary *decoder.Summary     `json:"summary,omitempty"`
	Error   string               `json:"decode_error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port           int
	Bind           string
	APIKey         string // Empty disables authentication
	MaxImageBytes  int64
	MaxUploadBytes int64
	DefaultScale   int
	DefaultFormat  render.Format
	MaxRenderBytes int64 // Bound on the RGBA buffer of a rendered image
}

// ImageStore is the storage the server needs
type ImageStore interface {
	Create(summary decoder.Summary, source []byte) (*storage.Entry, error)
	Read(id string) (*storage.Entry, error)
	Source(id string) ([]byte, error)
	Delete(id string) error
}
