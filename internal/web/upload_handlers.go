package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kinglemuel/klp/internal/upload"
)

// handleUpload stores one multipart file (field "file") in the media
// bucket. Optional fields "folder" and "propertyId" shape the object path.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.files == nil {
		apiError(w, "file storage not configured", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			apiError(w, fmt.Sprintf("request body exceeds %dMB", tooBig.Limit>>20), http.StatusRequestEntityTooLarge)
			return
		}
		apiError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apiError(w, "no file provided", http.StatusBadRequest)
		return
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			slog.Warn("closing upload", "err", cerr)
		}
	}()

	contentType := header.Header.Get("Content-Type")
	if err := upload.Validate(contentType, header.Size); err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, upload.ErrTooLarge) {
			code = http.StatusRequestEntityTooLarge
		}
		apiError(w, err.Error(), code)
		return
	}

	objectPath, err := upload.ObjectPath(r.FormValue("folder"), r.FormValue("propertyId"), header.Filename, s.now())
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	stored, err := s.files.Put(r.Context(), objectPath, contentType, header.Size, file)
	if err != nil {
		slog.Error("uploading file", "path", objectPath, "err", err)
		apiError(w, "failed to upload file", http.StatusBadGateway)
		return
	}

	apiJSON(w, stored, http.StatusCreated)
}

type signUploadRequest struct {
	Folder     string `json:"folder"`
	PropertyID string `json:"propertyId"`
	FileName   string `json:"fileName"`
}

// handleSignedUpload returns a one-time URL the browser can PUT a large
// file to directly, bypassing the upload size limit of this server.
func (s *Server) handleSignedUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.files == nil {
		apiError(w, "file storage not configured", http.StatusServiceUnavailable)
		return
	}

	var req signUploadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.FileName == "" {
		apiError(w, "fileName is required", http.StatusBadRequest)
		return
	}

	objectPath, err := upload.ObjectPath(req.Folder, req.PropertyID, req.FileName, s.now())
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	signed, err := s.files.SignUpload(r.Context(), objectPath)
	if err != nil {
		slog.Error("signing upload", "path", objectPath, "err", err)
		apiError(w, "failed to create upload URL", http.StatusBadGateway)
		return
	}

	apiJSON(w, signed, http.StatusCreated)
}
