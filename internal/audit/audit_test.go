package audit_test

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sidesa/internal/audit"
	"sidesa/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ActivityLog{}))
	return db
}

func TestRecorderPersistsEntry(t *testing.T) {
	db := openTestDB(t)
	rec := audit.NewRecorder(db, zap.NewNop().Sugar())

	rec.Record(audit.Entry{
		UserID:      "user-1",
		Action:      audit.ActionCreate,
		EntityType:  "news",
		EntityID:    "n-1",
		EntityTitle: "Hello",
		Details:     map[string]any{"slug": "hello"},
		IPAddress:   "10.0.0.1",
		UserAgent:   "curl/8",
	})
	rec.Close()

	var rows []models.ActivityLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, audit.ActionCreate, rows[0].Action)
	assert.Equal(t, "news", rows[0].EntityType)
	require.NotNil(t, rows[0].UserID)
	assert.Equal(t, "user-1", *rows[0].UserID)
	assert.Contains(t, string(rows[0].Details), "hello")
	assert.Equal(t, "10.0.0.1", rows[0].IPAddress)
}

func TestRecorderAnonymousEntry(t *testing.T) {
	db := openTestDB(t)
	rec := audit.NewRecorder(db, zap.NewNop().Sugar())

	rec.Record(audit.Entry{Action: audit.ActionLogin})
	rec.Close()

	var row models.ActivityLog
	require.NoError(t, db.First(&row).Error)
	assert.Nil(t, row.UserID)
}

// An insert failure must stay inside the recorder; callers never see it.
func TestRecorderSwallowsInsertFailure(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Migrator().DropTable(&models.ActivityLog{}))
	rec := audit.NewRecorder(db, zap.NewNop().Sugar())

	rec.Record(audit.Entry{Action: audit.ActionDelete})
	rec.Close() // no panic, no error surfaced
}

func TestFromRequestForwardedFor(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set("X-Real-IP", "10.0.0.2")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	e := audit.FromRequest(req, audit.Entry{Action: "x"})

	assert.Equal(t, "203.0.113.7", e.IPAddress)
	assert.Equal(t, "Mozilla/5.0", e.UserAgent)
}

func TestFromRequestRealIPFallback(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Real-IP", "10.0.0.2")
	req.Header.Del("User-Agent")

	e := audit.FromRequest(req, audit.Entry{Action: "x"})

	assert.Equal(t, "10.0.0.2", e.IPAddress)
	assert.Equal(t, "unknown", e.UserAgent)
}

func TestFromRequestUnknownDefaults(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	e := audit.FromRequest(req, audit.Entry{Action: "x"})

	assert.Equal(t, "unknown", e.IPAddress)
	assert.Equal(t, "unknown", e.UserAgent)
}

func TestQueryFilters(t *testing.T) {
	db := openTestDB(t)
	uid := "user-1"
	seed := []models.ActivityLog{
		{Action: "create", EntityType: "news", UserID: &uid},
		{Action: "update", EntityType: "news", UserID: &uid},
		{Action: "create", EntityType: "gallery"},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	rows, total, err := audit.Query(db, audit.Filter{Action: "create"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 2)

	rows, total, err = audit.Query(db, audit.Filter{EntityType: "news", UserID: uid})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 2)

	rows, total, err = audit.Query(db, audit.Filter{Action: "update", EntityType: "gallery"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, rows)
}

func TestQueryPagination(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, db.Create(&models.ActivityLog{Action: "create"}).Error)
	}

	rows, total, err := audit.Query(db, audit.Filter{Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, rows, 2)

	rows, _, err = audit.Query(db, audit.Filter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
