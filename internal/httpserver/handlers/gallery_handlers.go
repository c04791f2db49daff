package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sidesa/internal/audit"
	"sidesa/internal/auth"
	"sidesa/internal/models"
)

func ListGallery(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := db.Model(&models.GalleryItem{})
		if cat := r.URL.Query().Get("category"); cat != "" {
			q = q.Where("category = ?", cat)
		}
		var items []models.GalleryItem
		if err := q.Order("created_at desc").Find(&items).Error; err != nil {
			lg.Errorw("gallery list failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondData(w, http.StatusOK, "ok", items)
	}
}

type galleryReq struct {
	Title    *string `json:"title"`
	Caption  *string `json:"caption"`
	ImageURL *string `json:"image_url"`
	Category *string `json:"category"`
}

func CreateGalleryItem(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req galleryReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Title == nil || strings.TrimSpace(*req.Title) == "" ||
			req.ImageURL == nil || strings.TrimSpace(*req.ImageURL) == "" {
			respondError(w, http.StatusBadRequest, "title and image_url are required")
			return
		}
		item := models.GalleryItem{
			Title:    strings.TrimSpace(*req.Title),
			ImageURL: strings.TrimSpace(*req.ImageURL),
		}
		if req.Caption != nil {
			item.Caption = *req.Caption
		}
		if req.Category != nil {
			item.Category = strings.TrimSpace(*req.Category)
		}
		if err := db.Create(&item).Error; err != nil {
			lg.Errorw("gallery create failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		rec.Record(audit.FromRequest(r, audit.Entry{
			UserID:      auth.UserID(r.Context()),
			Action:      audit.ActionCreate,
			EntityType:  "gallery",
			EntityID:    item.ID,
			EntityTitle: item.Title,
		}))
		respondData(w, http.StatusCreated, "gallery item created", item)
	}
}

func UpdateGalleryItem(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req galleryReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		var item models.GalleryItem
		if err := db.First(&item, "id = ?", id).Error; err != nil {
			respondError(w, http.StatusNotFound, "gallery item not found")
			return
		}
		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				respondError(w, http.StatusBadRequest, "title cannot be empty")
				return
			}
			item.Title = title
		}
		if req.Caption != nil {
			item.Caption = *req.Caption
		}
		if req.ImageURL != nil && strings.TrimSpace(*req.ImageURL) != "" {
			item.ImageURL = strings.TrimSpace(*req.ImageURL)
		}
		if req.Category != nil {
			item.Category = strings.TrimSpace(*req.Category)
		}
		if err := db.Save(&item).Error; err != nil {
			lg.Errorw("gallery update failed", "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		rec.Record(audit.FromRequest(r, audit.Entry{
			UserID:      auth.UserID(r.Context()),
			Action:      audit.ActionUpdate,
			EntityType:  "gallery",
			EntityID:    item.ID,
			EntityTitle: item.Title,
		}))
		respondData(w, http.StatusOK, "gallery item updated", item)
	}
}

func DeleteGalleryItem(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var item models.GalleryItem
		if err := db.First(&item, "id = ?", id).Error; err != nil {
			respondError(w, http.StatusNotFound, "gallery item not found")
			return
		}
		if err := db.Delete(&item).Error; err != nil {
			lg.Errorw("gallery delete failed", "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		rec.Record(audit.FromRequest(r, audit.Entry{
			UserID:      auth.UserID(r.Context()),
			Action:      audit.ActionDelete,
			EntityType:  "gallery",
			EntityID:    item.ID,
			EntityTitle: item.Title,
		}))
		respondData(w, http.StatusOK, "gallery item deleted", nil)
	}
}
