package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
)

// AdminRole reports whether a stored role value grants back-office access.
// Any other value (including empty) means no admin access at login time.
func AdminRole(role string) bool {
	return role == RoleSuperAdmin || role == RoleAdmin
}

type User struct {
	ID                string     `gorm:"type:uuid;primaryKey" json:"id"`
	Email             string     `gorm:"uniqueIndex;not null" json:"email"`
	FullName          string     `gorm:"not null" json:"full_name"`
	PasswordHash      string     `gorm:"not null" json:"-"`
	Role              string     `gorm:"not null;default:admin" json:"role"`
	IsActive          bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	ResetToken        *string    `gorm:"size:64" json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Session is the server-side record behind the auth cookie. The cookie holds
// a signed token whose jti points here, so a row can be revoked at logout.
type Session struct {
	JTI       string     `gorm:"primaryKey;size:64" json:"jti"`
	UserID    string     `gorm:"type:uuid;index;not null" json:"user_id"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ActivityLog rows are write-once; user_id is a weak reference so entries
// outlive deleted accounts.
type ActivityLog struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      *string   `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action      string    `gorm:"not null;index" json:"action"`
	EntityType  string    `gorm:"index" json:"entity_type,omitempty"`
	EntityID    string    `json:"entity_id,omitempty"`
	EntityTitle string    `json:"entity_title,omitempty"`
	Details     JSONB     `gorm:"type:jsonb" json:"details"`
	IPAddress   string    `json:"ip_address"`
	UserAgent   string    `json:"user_agent"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

type News struct {
	ID          string     `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Slug        string     `gorm:"uniqueIndex;not null" json:"slug"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `gorm:"not null" json:"content"`
	ImageURL    string     `json:"image_url"`
	IsPublished bool       `gorm:"not null;default:false" json:"is_published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedBy   string     `gorm:"type:uuid" json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (n *News) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

type LetterTemplate struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"not null" json:"name"`
	Description   string    `json:"description"`
	FileURL       string    `gorm:"not null" json:"file_url"`
	DownloadCount int64     `gorm:"not null;default:0" json:"download_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (l *LetterTemplate) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

type GalleryItem struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Caption   string    `json:"caption"`
	ImageURL  string    `gorm:"not null" json:"image_url"`
	Category  string    `gorm:"index" json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (g *GalleryItem) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// SingletonKey is the fixed key shared by single-row tables. A unique index on
// the key column plus an ON CONFLICT upsert keeps each table at one row.
const SingletonKey = "default"

type VillageProfile struct {
	Key          string    `gorm:"primaryKey;size:16;default:default" json:"-"`
	Vision       string    `json:"vision"`
	Mission      string    `json:"mission"`
	History      string    `json:"history"`
	Address      string    `json:"address"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	OfficeHours  string    `json:"office_hours"`
	HeadName     string    `json:"head_name"`
	HeadPhotoURL string    `json:"head_photo_url"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type PopulationStat struct {
	Key          string    `gorm:"primaryKey;size:16;default:default" json:"-"`
	Total        int64     `json:"total"`
	Male         int64     `json:"male"`
	Female       int64     `json:"female"`
	Households   int64     `json:"households"`
	ByHamlet     JSONB     `gorm:"type:jsonb" json:"by_hamlet"`
	ByAgeGroup   JSONB     `gorm:"type:jsonb" json:"by_age_group"`
	ByOccupation JSONB     `gorm:"type:jsonb" json:"by_occupation"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RegionData struct {
	Key           string    `gorm:"primaryKey;size:16;default:default" json:"-"`
	AreaKM2       float64   `json:"area_km2"`
	NorthBoundary string    `json:"north_boundary"`
	SouthBoundary string    `json:"south_boundary"`
	EastBoundary  string    `json:"east_boundary"`
	WestBoundary  string    `json:"west_boundary"`
	AltitudeM     int       `json:"altitude_m"`
	RainfallMM    int       `json:"rainfall_mm"`
	MapImageURL   string    `json:"map_image_url"`
	UpdatedAt     time.Time `json:"updated_at"`
}
