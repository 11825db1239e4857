package handler

import (
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"scribe/internal/delivery/http/response"
	"scribe/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// maxUploadBytes caps a single image upload.
const maxUploadBytes = 10 << 20

// UploadHandler holds dependencies for file upload handlers.
type UploadHandler struct {
	storage service.FileStorage
	logger  *slog.Logger
}

// NewUploadHandler is the constructor for UploadHandler, injected by Fx.
func NewUploadHandler(storage service.FileStorage, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		storage: storage,
		logger:  logger,
	}
}

// Upload stores a multipart image and returns its public reference.
func (h *UploadHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Multipart field 'image' is required")
	}
	if fileHeader.Size > maxUploadBytes {
		return response.BadRequest(c, "INVALID_INPUT", "File exceeds the upload size limit")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return errors.Wrap(err, "failed to open uploaded file")
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(fileHeader.Filename))
	}

	url, err := h.storage.Save(c.Request().Context(), fileHeader.Filename, contentType, src)
	if err != nil {
		return errors.Wrap(err, "failed to store uploaded file")
	}

	return response.Success(c, http.StatusCreated, map[string]string{"url": url}, "File uploaded successfully")
}

// Serve streams a previously uploaded file.
func (h *UploadHandler) Serve(c echo.Context) error {
	key := c.Param("filename")

	reader, err := h.storage.Open(c.Request().Context(), key)
	if err != nil {
		return response.NotFound(c, "FILE_NOT_FOUND", "File not found")
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}

	return c.Stream(http.StatusOK, contentType, reader)
}

// Delete removes a previously uploaded file.
func (h *UploadHandler) Delete(c echo.Context) error {
	key := c.Param("filename")

	if err := h.storage.Delete(c.Request().Context(), key); err != nil {
		return response.NotFound(c, "FILE_NOT_FOUND", "File not found")
	}

	return response.Success(c, http.StatusOK, map[string]string{"filename": key}, "File deleted successfully")
}
