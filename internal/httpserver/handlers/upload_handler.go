package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sidesa/internal/audit"
	"sidesa/internal/auth"
	"sidesa/internal/storage"
)

const (
	maxImageBytes    = 5 << 20
	maxDocumentBytes = 10 << 20
)

var uploadTypes = map[string]map[string]bool{
	"image": {
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	},
	"document": {
		"application/pdf":    true,
		"application/msword": true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	},
}

// Upload stores a multipart file in the object store and returns its public
// URL. The store may be nil when S3 is not configured.
func Upload(store *storage.ObjectStore, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			respondError(w, http.StatusServiceUnavailable, "object storage not configured")
			return
		}
		kind := r.FormValue("kind")
		if kind == "" {
			kind = "image"
		}
		allowed, ok := uploadTypes[kind]
		if !ok {
			respondError(w, http.StatusBadRequest, "kind must be image or document")
			return
		}
		maxBytes := int64(maxImageBytes)
		if kind == "document" {
			maxBytes = maxDocumentBytes
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			respondError(w, http.StatusBadRequest, "file field is required")
			return
		}
		defer file.Close()
		if header.Size > maxBytes {
			respondError(w, http.StatusBadRequest, "file is too large")
			return
		}

		// Sniff the real content type; the client header is advisory only.
		buf := make([]byte, 512)
		n, _ := file.Read(buf)
		contentType := http.DetectContentType(buf[:n])
		if semi := strings.Index(contentType, ";"); semi >= 0 {
			contentType = contentType[:semi]
		}
		// DetectContentType cannot identify office documents; fall back to
		// the declared type for the document kind.
		if kind == "document" && contentType == "application/octet-stream" {
			contentType = header.Header.Get("Content-Type")
		}
		if !allowed[contentType] {
			respondError(w, http.StatusBadRequest, "unsupported file type")
			return
		}
		if _, err := file.Seek(0, 0); err != nil {
			lg.Errorw("upload seek failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		ext := strings.ToLower(filepath.Ext(header.Filename))
		key := kind + "/" + uuid.NewString() + ext
		url, err := store.Put(r.Context(), key, file, header.Size, contentType)
		if err != nil {
			lg.Errorw("upload store failed", "key", key, "error", err)
			respondError(w, http.StatusInternalServerError, "upload failed")
			return
		}

		rec.Record(audit.FromRequest(r, audit.Entry{
			UserID:      auth.UserID(r.Context()),
			Action:      audit.ActionCreate,
			EntityType:  "upload",
			EntityID:    key,
			EntityTitle: header.Filename,
		}))
		respondData(w, http.StatusCreated, "file uploaded", map[string]string{
			"url": url,
			"key": key,
		})
	}
}
