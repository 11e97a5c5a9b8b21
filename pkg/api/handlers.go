package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ssargent/rgbpng/pkg/decoder"
	"github.com/ssargent/rgbpng/pkg/render"
)

// Server holds the API server state
type Server struct {
	store   ImageStore
	decoder *decoder.Decoder
	config  ServerConfig
	metrics *Metrics
	log     zerolog.Logger
}

// NewServer creates a new API server
func NewServer(store ImageStore, config ServerConfig, metrics *Metrics, log zerolog.Logger) *Server {
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if config.DefaultScale <= 0 {
		config.DefaultScale = 1
	}
	if config.DefaultFormat == "" {
		config.DefaultFormat = render.FormatPNG
	}
	if config.MaxRenderBytes <= 0 {
		config.MaxRenderBytes = render.MaxOutputBytes
	}
	return &Server{
		store:   store,
		decoder: decoder.New(decoder.WithMaxImageBytes(config.MaxImageBytes)),
		config:  config,
		metrics: metrics,
		log:     log,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleUpload decodes the request body and stores it
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		sendError(w, "Failed to read request body: "+err.Error(), statusFor(err))
		return
	}

	img, err := s.decode(body)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	entry, err := s.store.Create(decoder.Summarize(img), body)
	s.metrics.RecordStoreOperation("create", err == nil)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to store image")
		sendError(w, "Failed to store image", http.StatusInternalServerError)
		return
	}

	s.log.Info().
		Str("id", entry.ID).
		Int("width", img.Width).
		Int("height", img.Height).
		Msg("image stored")
	sendJSON(w, entry, http.StatusCreated)
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	entry, err := s.store.Read(chi.URLParam(r, "id"))
	s.metrics.RecordStoreOperation("read", err == nil)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}
	sendSuccess(w, entry)
}

// handleRender re-decodes the stored stream and returns it as an image
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	scale := s.config.DefaultScale
	if v := r.URL.Query().Get("scale"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > render.MaxScale {
			sendError(w, "scale must be an integer between 1 and "+strconv.Itoa(render.MaxScale), http.StatusBadRequest)
			return
		}
		scale = n
	}
	format := s.config.DefaultFormat
	if v := r.URL.Query().Get("format"); v != "" {
		f, err := render.ParseFormat(v)
		if err != nil {
			sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
		format = f
	}

	id := chi.URLParam(r, "id")
	entry, err := s.store.Read(id)
	s.metrics.RecordStoreOperation("read", err == nil)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}
	// refuse oversized output before decoding anything
	err = render.CheckOutput(entry.Summary.Width, entry.Summary.Height, scale, s.config.MaxRenderBytes)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	source, err := s.store.Source(id)
	s.metrics.RecordStoreOperation("source", err == nil)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	img, err := s.decode(source)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	var buf bytes.Buffer
	if err := render.Grid(&buf, img.Grid, scale, format, s.config.MaxRenderBytes); err != nil {
		if errors.Is(err, render.ErrOutputTooLarge) {
			sendError(w, err.Error(), statusFor(err))
			return
		}
		s.log.Error().Err(err).Msg("failed to render image")
		sendError(w, "Failed to render image", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.Delete(id)
	s.metrics.RecordStoreOperation("delete", err == nil)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}
	sendSuccess(w, map[string]string{"id": id, "status": "deleted"})
}

// handleInspect lists the records of the request body without storing it.
// Streams whose records parse but whose pixels do not decode still get a
// listing, with the decode error alongside.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		sendError(w, "Failed to read request body: "+err.Error(), statusFor(err))
		return
	}

	ct, err := s.decoder.Parse(body)
	if err != nil {
		sendError(w, err.Error(), statusFor(err))
		return
	}

	resp := InspectResponse{Records: decoder.Describe(ct)}
	start := time.Now()
	img, err := s.decoder.DecodeContainer(ct)
	s.recordDecode(img, err, start)
	if err != nil {
		resp.Error = err.Error()
	} else {
		summary := decoder.Summarize(img)
		resp.Summary = &summary
	}
	sendSuccess(w, resp)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes))
}

func (s *Server) decode(data []byte) (*decoder.Image, error) {
	start := time.Now()
	img, err := s.decoder.DecodeBytes(data)
	s.recordDecode(img, err, start)
	if err != nil {
		s.log.Debug().Err(err).Int("bytes", len(data)).Msg("decode failed")
	}
	return img, err
}

func (s *Server) recordDecode(img *decoder.Image, err error, start time.Time) {
	if err != nil {
		s.metrics.RecordDecode(err, 0, nil, time.Since(start))
		return
	}
	s.metrics.RecordDecode(nil, img.Width*img.Height, img.Grid.Filters, time.Since(start))
}
