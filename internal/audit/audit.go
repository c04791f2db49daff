package audit

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sidesa/internal/models"
)

// Action names recorded by the back office.
const (
	ActionLogin         = "login"
	ActionLogout        = "logout"
	ActionPasswordReset = "password_reset"
	ActionCreate        = "create"
	ActionUpdate        = "update"
	ActionDelete        = "delete"
)

// Entry is what a handler reports. Request metadata (IP, user agent) is
// captured separately via FromRequest.
type Entry struct {
	UserID      string
	Action      string
	EntityType  string
	EntityID    string
	EntityTitle string
	Details     map[string]any
	IPAddress   string
	UserAgent   string
}

// Recorder persists activity entries off the request path. Record never
// blocks and never reports failure to the caller; a full queue drops the
// entry and an insert error only reaches the server log.
type Recorder struct {
	db *gorm.DB
	lg *zap.SugaredLogger
	ch chan Entry
	wg sync.WaitGroup
}

func NewRecorder(db *gorm.DB, lg *zap.SugaredLogger) *Recorder {
	r := &Recorder{db: db, lg: lg, ch: make(chan Entry, 256)}
	r.wg.Add(1)
	go r.run()
	return r
}

func (r *Recorder) run() {
	defer r.wg.Done()
	for e := range r.ch {
		r.insert(e)
	}
}

func (r *Recorder) insert(e Entry) {
	row := models.ActivityLog{
		Action:      e.Action,
		EntityType:  e.EntityType,
		EntityID:    e.EntityID,
		EntityTitle: e.EntityTitle,
		IPAddress:   e.IPAddress,
		UserAgent:   e.UserAgent,
		CreatedAt:   time.Now(),
	}
	if e.UserID != "" {
		uid := e.UserID
		row.UserID = &uid
	}
	if e.Details != nil {
		if b, err := json.Marshal(e.Details); err == nil {
			row.Details = models.JSONB(b)
		}
	}
	if err := r.db.Create(&row).Error; err != nil {
		r.lg.Errorw("activity log insert failed", "action", e.Action, "error", err)
	}
}

// Record enqueues an entry for the background writer.
func (r *Recorder) Record(e Entry) {
	select {
	case r.ch <- e:
	default:
		r.lg.Warnw("activity log queue full, entry dropped", "action", e.Action)
	}
}

// Close drains pending entries. Call once at shutdown.
func (r *Recorder) Close() {
	close(r.ch)
	r.wg.Wait()
}

// FromRequest fills an entry's request metadata: first X-Forwarded-For hop,
// then X-Real-IP, then "unknown"; same fallback for the user agent.
func FromRequest(req *http.Request, e Entry) Entry {
	e.IPAddress = clientIP(req)
	e.UserAgent = req.UserAgent()
	if e.UserAgent == "" {
		e.UserAgent = "unknown"
	}
	return e
}

func clientIP(req *http.Request) string {
	if fwd := req.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
		if first != "" {
			return first
		}
	}
	if ip := req.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return "unknown"
}
