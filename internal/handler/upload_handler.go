package handler

import (
	"io"
	"net/http"

	"github.com/mohashafici/DalagHub/internal/marketplace/domain"
	"github.com/mohashafici/DalagHub/internal/marketplace/session"
	"github.com/mohashafici/DalagHub/internal/platform/logger"
)

// MaxUploadSize is the per-request ceiling for image uploads. The storage
// adapter itself does not enforce a limit; this caller does.
const MaxUploadSize = 5 << 20 // 5 MB

type UploadHandler struct {
	storage  domain.ImageStorage
	sessions *session.Store
	logger   logger.Logger
}

func NewUploadHandler(storage domain.ImageStorage, sessions *session.Store, log logger.Logger) *UploadHandler {
	return &UploadHandler{storage: storage, sessions: sessions, logger: log}
}

type uploadResponse struct {
	URLs []string `json:"urls"`
}

// UploadImages accepts multipart form files under the "images" field,
// uploads them sequentially and returns the public URLs. Failed files are
// skipped, not fatal to the batch.
func (h *UploadHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	snap := h.sessions.Current()
	if !snap.Authenticated() {
		writeError(w, http.StatusUnauthorized, "You must be logged in to upload images")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds the 5MB limit")
		return
	}

	fileHeaders := r.MultipartForm.File["images"]
	if len(fileHeaders) == 0 {
		writeError(w, http.StatusBadRequest, "no images provided")
		return
	}

	files := make([]domain.UploadFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			h.logger.Warnf("upload: failed to open %s: %v", fh.Filename, err)
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			h.logger.Warnf("upload: failed to read %s: %v", fh.Filename, err)
			continue
		}
		files = append(files, domain.UploadFile{Name: fh.Filename, Data: data})
	}

	urls := h.storage.UploadMultiple(r.Context(), snap.Identity.ID, files)
	writeJSON(w, http.StatusOK, uploadResponse{URLs: urls})
}
