package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sidesa/internal/audit"
	"sidesa/internal/auth"
	"sidesa/internal/models"
)

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(title string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

// uniqueSlug appends a short random suffix when the natural slug is taken.
func uniqueSlug(db *gorm.DB, title string) string {
	slug := slugify(title)
	if slug == "" {
		slug = "news"
	}
	var count int64
	db.Model(&models.News{}).Where("slug = ?", slug).Count(&count)
	if count == 0 {
		return slug
	}
	return slug + "-" + uuid.NewString()[:8]
}

// ListNews is the public feed: published posts only, newest first.
func ListNews(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := atoiDefault(r.URL.Query().Get("limit"), 20)
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		offset := atoiDefault(r.URL.Query().Get("offset"), 0)
		if offset < 0 {
			offset = 0
		}

		q := db.Model(&models.News{}).Where("is_published = ?", true)
		var total int64
		if err := q.Count(&total).Error; err != nil {
			lg.Errorw("news count failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		var items []models.News
		if err := q.Order("published_at desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
			lg.Errorw("news list failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"data": items,
			"pagination": map[string]any{
				"total":   total,
				"limit":   limit,
				"offset":  offset,
				"hasMore": total > int64(offset+limit),
			},
		})
	}
}

func GetNewsBySlug(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		var item models.News
		err := db.First(&item, "slug = ? AND is_published = ?", slug, true).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(w, http.StatusNotFound, "news not found")
				return
			}
			lg.Errorw("news lookup failed", "slug", slug, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondData(w, http.StatusOK, "ok", item)
	}
}

// AdminListNews includes drafts.
func AdminListNews(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var items []models.News
		if err := db.Order("created_at desc").Find(&items).Error; err != nil {
			lg.Errorw("news list failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		respondData(w, http.StatusOK, "ok", items)
	}
}

type newsReq struct {
	Title       *string `json:"title"`
	Excerpt     *string `json:"excerpt"`
	Content     *string `json:"content"`
	ImageURL    *string `json:"image_url"`
	IsPublished *bool   `json:"is_published"`
}

func CreateNews(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req newsReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Title == nil || strings.TrimSpace(*req.Title) == "" ||
			req.Content == nil || strings.TrimSpace(*req.Content) == "" {
			respondError(w, http.StatusBadRequest, "title and content are required")
			return
		}

		item := models.News{
			Title:     strings.TrimSpace(*req.Title),
			Slug:      uniqueSlug(db, *req.Title),
			Content:   *req.Content,
			CreatedBy: auth.UserID(r.Context()),
		}
		if req.Excerpt != nil {
			item.Excerpt = *req.Excerpt
		}
		if req.ImageURL != nil {
			item.ImageURL = *req.ImageURL
		}
		if req.IsPublished != nil && *req.IsPublished {
			item.IsPublished = true
			now := time.Now()
			item.PublishedAt = &now
		}
		if err := db.Create(&item).Error; err != nil {
			lg.Errorw("news create failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		rec.Record(audit.FromRequest(r, audit.Entry{
			UserID:      auth.UserID(r.Context()),
			Action:      audit.ActionCreate,
			EntityType:  "news",
			EntityID:    item.ID,
			EntityTitle: item.Title,
		}))
		respondData(w, http.StatusCreated, "news created", item)
	}
}

func UpdateNews(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req newsReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		var item models.News
		if err := db.First(&item, "id = ?", id).Error; err != nil {
			respondError(w, http.StatusNotFound, "news not found")
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
		if req.Excerpt != nil {
			item.Excerpt = *req.Excerpt
		}
		if req.Content != nil {
			if strings.TrimSpace(*req.Content) == "" {
				respondError(w, http.StatusBadRequest, "content cannot be empty")
				return
			}
			item.Content = *req.Content
		}
		if req.ImageURL != nil {
			item.ImageURL = *req.ImageURL
		}
		if req.IsPublished != nil {
			if *req.IsPublished && !item.IsPublished {
				now := time.Now()
				item.PublishedAt = &now
			}
			item.IsPublished = *req.IsPublished
		}
		if err := db.Save(&item).Error; err != nil {
			lg.Errorw("news update failed", "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		rec.Record(audit.FromRequest(r, audit.Entry{
			UserID:      auth.UserID(r.Context()),
			Action:      audit.ActionUpdate,
			EntityType:  "news",
			EntityID:    item.ID,
			EntityTitle: item.Title,
		}))
		respondData(w, http.StatusOK, "news updated", item)
	}
}

func DeleteNews(db *gorm.DB, rec *audit.Recorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var item models.News
		if err := db.First(&item, "id = ?", id).Error; err != nil {
			respondError(w, http.StatusNotFound, "news not found")
			return
		}
		if err := db.Delete(&item).Error; err != nil {
			lg.Errorw("news delete failed", "id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		rec.Record(audit.FromRequest(r, audit.Entry{
			UserID:      auth.UserID(r.Context()),
			Action:      audit.ActionDelete,
			EntityType:  "news",
			EntityID:    item.ID,
			EntityTitle: item.Title,
		}))
		respondData(w, http.StatusOK, "news deleted", nil)
	}
}
