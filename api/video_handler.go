package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/videos"
)

// multipartOverhead is allowed on top of the video limit for boundaries and part headers
const multipartOverhead = 1 << 20

// videoStore is the upload handler behind the video endpoints
type videoStore interface {
	Accept(ctx context.Context, up videos.Upload) (*videos.Saved, error)
	Fetch(ctx context.Context, filename string) (*videos.Video, error)
	MaxBytes() int64
}

type videoHandler struct {
	responder Responder
	logger    zerolog.Logger
	videos    videoStore
}

func newVideoHandler(store videoStore) videoHandler {
	logger := log.With().Str("handlerName", "videoHandler").Logger()

	return videoHandler{
		responder: NewResponder(logger),
		logger:    logger,
		videos:    store,
	}
}

// uploadVideo stores the file sent in the multipart field "video"
// @Summary Upload a project video
// @Tags Videos
// @Accept multipart/form-data
// @Produce json
// @Param video formData file true "Video file, at most 50MB"
// @Success 200 {object} UploadResponse
// @Failure 400 {object} ErrorResponse "No file, not a video, or too large"
// @Failure 500 {object} ErrorResponse "Error writing the file"
// @Router /upload [post]
func (h videoHandler) uploadVideo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, h.videos.MaxBytes()+multipartOverhead)

		reader, err := r.MultipartReader()
		if err != nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("multipart", err))
			return
		}

		for {
			part, err := reader.NextPart()
			if errors.Is(err, io.EOF) {
				h.responder.WriteError(w, errs.NewMissingFileError(videos.DefaultField))
				return
			}
			if err != nil {
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					h.responder.WriteError(w, errs.NewFileTooLargeError(h.videos.MaxBytes()))
					return
				}
				h.responder.WriteError(w, errs.NewMalformedPayloadError("multipart", err))
				return
			}

			if part.FormName() != videos.DefaultField || part.FileName() == "" {
				part.Close()
				continue
			}

			saved, err := h.videos.Accept(r.Context(), videos.Upload{
				Content:      part,
				ContentType:  part.Header.Get("Content-Type"),
				Size:         declaredSize(part.Header.Get("Content-Length")),
				OriginalName: part.FileName(),
				Field:        part.FormName(),
			})
			part.Close()
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}

			h.responder.WriteJSON(w, UploadResponse{
				Message:      "Video uploaded successfully",
				Filename:     saved.Filename,
				OriginalName: saved.OriginalName,
			})
			return
		}
	}
}

// serveVideo streams a stored video; Range requests are honoured
// @Summary Get a project video
// @Tags Videos
// @Produce octet-stream
// @Param filename path string true "Stored filename"
// @Success 200 {file} binary
// @Failure 400 {object} ErrorResponse "Invalid filename"
// @Failure 404 {object} ErrorResponse "Video not found"
// @Router /videos/{filename} [get]
func (h videoHandler) serveVideo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// chi matches on RawPath when the client escaped a reserved character, and on
		// the already decoded Path otherwise
		filename := chi.URLParam(r, "filename")
		if r.URL.RawPath != "" {
			unescaped, err := url.PathUnescape(filename)
			if err != nil {
				h.responder.WriteError(w, errs.NewInvalidFilenameError(filename))
				return
			}
			filename = unescaped
		}

		video, err := h.videos.Fetch(r.Context(), filename)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer video.Content.Close()

		if video.ContentType != "" {
			w.Header().Set("Content-Type", video.ContentType)
		}
		http.ServeContent(w, r, video.Name, video.ModTime, video.Content)
	}
}

// declaredSize parses a part's Content-Length, -1 when absent or invalid
func declaredSize(raw string) int64 {
	if raw == "" {
		return -1
	}
	size, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || size < 0 {
		return -1
	}
	return size
}
