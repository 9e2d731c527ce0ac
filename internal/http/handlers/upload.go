package handlers

import (
	"io"
	"net/http"
)

var allowedUploadTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
	"image/avif": {},
}

// Upload accepts a multipart file, validates it locally and pushes it to
// provider storage, returning the canonical URL jobs can reference.
func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(a.Config.MaxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "File too large. Please upload an image smaller than the configured limit.")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if _, ok := allowedUploadTypes[contentType]; !ok {
		a.error(w, http.StatusBadRequest, "Invalid file type. Please upload a JPEG, PNG, WebP, GIF, or AVIF image.")
		return
	}
	if header.Size > a.Config.MaxUploadBytes {
		a.error(w, http.StatusBadRequest, "File too large. Please upload an image smaller than the configured limit.")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, a.Config.MaxUploadBytes+1))
	if err != nil {
		a.error(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	if int64(len(data)) > a.Config.MaxUploadBytes {
		a.error(w, http.StatusBadRequest, "File too large. Please upload an image smaller than the configured limit.")
		return
	}

	url, err := a.Gateway.UploadAsset(r.Context(), data, contentType)
	if err != nil {
		a.Logger.Error().Err(err).Msg("provider upload failed")
		a.json(w, http.StatusInternalServerError, map[string]any{
			"error":   "Failed to upload file",
			"details": err.Error(),
		})
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"url":       url,
		"file_name": header.Filename,
		"file_size": header.Size,
		"file_type": contentType,
	})
}

// BlobUploadURL hands the client a one-shot signed URL on the staging
// service for files too large to pass through this server.
func (a *App) BlobUploadURL(w http.ResponseWriter, r *http.Request) {
	if !a.Blob.Configured() {
		a.error(w, http.StatusServiceUnavailable, "staging uploads not configured")
		return
	}
	grant, err := a.Blob.GenerateUploadURL(r.Context())
	if err != nil {
		a.Logger.Error().Err(err).Msg("staging upload url failed")
		a.error(w, http.StatusInternalServerError, "Failed to generate upload URL")
		return
	}
	a.json(w, http.StatusOK, grant)
}
