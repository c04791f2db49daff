package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sidesa/internal/audit"
	"sidesa/internal/auth"
)

// ListActivityLogs is the super_admin read path over the audit trail.
func ListActivityLogs(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := audit.Filter{
			Action:     q.Get("action"),
			EntityType: q.Get("entity_type"),
			UserID:     q.Get("user_id"),
		}
		if s := q.Get("start_date"); s != "" {
			t, err := time.Parse("2006-01-02", s)
			if err != nil {
				respondError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
				return
			}
			f.StartDate = &t
		}
		if s := q.Get("end_date"); s != "" {
			t, err := time.Parse("2006-01-02", s)
			if err != nil {
				respondError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
				return
			}
			f.EndDate = &t
		}
		f.Limit = atoiDefault(q.Get("limit"), audit.DefaultLimit)
		f.Offset = atoiDefault(q.Get("offset"), 0)
		if f.Offset < 0 {
			f.Offset = 0
		}

		rows, total, err := audit.Query(db, f)
		if err != nil {
			lg.Errorw("activity log query failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		limit := f.Limit
		if limit <= 0 {
			limit = audit.DefaultLimit
		} else if limit > audit.MaxLimit {
			limit = audit.MaxLimit
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"data": rows,
			"pagination": map[string]any{
				"total":   total,
				"limit":   limit,
				"offset":  f.Offset,
				"hasMore": total > int64(f.Offset+limit),
			},
		})
	}
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

type logWriteReq struct {
	Action      string         `json:"action"`
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	EntityTitle string         `json:"entity_title"`
	Details     map[string]any `json:"details"`
}

// CreateActivityLog lets an authenticated client report an action it
// performed. Persistence is asynchronous; the echoed entry is the receipt.
func CreateActivityLog(rec *audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req logWriteReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Action == "" {
			respondError(w, http.StatusBadRequest, "action is required")
			return
		}
		entry := audit.FromRequest(r, audit.Entry{
			UserID:      auth.UserID(r.Context()),
			Action:      req.Action,
			EntityType:  req.EntityType,
			EntityID:    req.EntityID,
			EntityTitle: req.EntityTitle,
			Details:     req.Details,
		})
		rec.Record(entry)
		respondData(w, http.StatusCreated, "activity recorded", map[string]any{
			"user_id":      entry.UserID,
			"action":       entry.Action,
			"entity_type":  entry.EntityType,
			"entity_id":    entry.EntityID,
			"entity_title": entry.EntityTitle,
			"details":      req.Details,
			"ip_address":   entry.IPAddress,
			"user_agent":   entry.UserAgent,
		})
	}
}
