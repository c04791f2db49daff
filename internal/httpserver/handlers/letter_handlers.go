package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sidesa/internal/audit"
	"sidesa/internal/auth"
	"sidesa/internal/models"
)

func ListLetterTemplates(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var items []models.LetterTemplate
		if err := db.Order("name asc").Find(&items).Error; err != nil {
			lg.Errorw("letter template list failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondData(w, http.StatusOK, "ok", items)
	}
}

// DownloadLetterTemplate bumps the counter and hands back the file URL.
func DownloadLetterTemplate(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var item models.LetterTemplate
		if err := db.First(&item, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(w, http.StatusNotFound, "letter template not found")
				return
			}
			lg.Errorw("letter template lookup failed", "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if err := db.Model(&item).Update("download_count", gorm.Expr("download_count + 1")).Error; err != nil {
			lg.Warnw("download counter update failed", "id", id, "error", err)
		}
		respondData(w, http.StatusOK, "ok", map[string]string{"file_url": item.FileURL})
	}
}

type letterReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	FileURL     *string `json:"file_url"`
}

func CreateLetterTemplate(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req letterReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Name == nil || strings.TrimSpace(*req.Name) == "" ||
			req.FileURL == nil || strings.TrimSpace(*req.FileURL) == "" {
			respondError(w, http.StatusBadRequest, "name and file_url are required")
			return
		}
		item := models.LetterTemplate{
			Name:    strings.TrimSpace(*req.Name),
			FileURL: strings.TrimSpace(*req.FileURL),
		}
		if req.Description != nil {
			item.Description = *req.Description
		}
		if err := db.Create(&item).Error; err != nil {
			lg.Errorw("letter template create failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		rec.Record(audit.FromRequest(r, audit.Entry{
			UserID:      auth.UserID(r.Context()),
			Action:      audit.ActionCreate,
			EntityType:  "letter_template",
			EntityID:    item.ID,
			EntityTitle: item.Name,
		}))
		respondData(w, http.StatusCreated, "letter template created", item)
	}
}

func UpdateLetterTemplate(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req letterReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		var item models.LetterTemplate
		if err := db.First(&item, "id = ?", id).Error; err != nil {
			respondError(w, http.StatusNotFound, "letter template not found")
			return
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondError(w, http.StatusBadRequest, "name cannot be empty")
				return
			}
			item.Name = name
		}
		if req.Description != nil {
			item.Description = *req.Description
		}
		if req.FileURL != nil && strings.TrimSpace(*req.FileURL) != "" {
			item.FileURL = strings.TrimSpace(*req.FileURL)
		}
		if err := db.Save(&item).Error; err != nil {
			lg.Errorw("letter template update failed", "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		rec.Record(audit.FromRequest(r, audit.Entry{
			UserID:      auth.UserID(r.Context()),
			Action:      audit.ActionUpdate,
			EntityType:  "letter_template",
			EntityID:    item.ID,
			EntityTitle: item.Name,
		}))
		respondData(w, http.StatusOK, "letter template updated", item)
	}
}

func DeleteLetterTemplate(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var item models.LetterTemplate
		if err := db.First(&item, "id = ?", id).Error; err != nil {
			respondError(w, http.StatusNotFound, "letter template not found")
			return
		}
		if err := db.Delete(&item).Error; err != nil {
			lg.Errorw("letter template delete failed", "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		rec.Record(audit.FromRequest(r, audit.Entry{
			UserID:      auth.UserID(r.Context()),
			Action:      audit.ActionDelete,
			EntityType:  "letter_template",
			EntityID:    item.ID,
			EntityTitle: item.Name,
		}))
		respondData(w, http.StatusOK, "letter template deleted", nil)
	}
}
