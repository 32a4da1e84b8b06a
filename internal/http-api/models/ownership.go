package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VolumeOwnership purchase types.
const (
	PurchaseTypeFigureBundle = "figure_bundle"
	PurchaseTypeDirect       = "direct"
)

// VolumeOwnership grants a user standing access to one volume. Unique on
// (user_id, volume_id); bundle grants that collide with an existing direct
// purchase are skipped, not duplicated.
type VolumeOwnership struct {
	ID           string     `gorm:"primaryKey;type:uuid" json:"id"`
	UserID       string     `gorm:"type:uuid;not null;uniqueIndex:idx_user_volume" json:"user_id"`
	VolumeID     string     `gorm:"type:uuid;not null;uniqueIndex:idx_user_volume" json:"volume_id"`
	FigureID     *string    `gorm:"type:uuid;index" json:"figure_id,omitempty"`
	PurchaseType string     `gorm:"not null" json:"purchase_type"`
	CurrentPage  int        `gorm:"default:0" json:"current_page"`
	LastReadAt   *time.Time `json:"last_read_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`

	Volume *Volume `json:"volume,omitempty" gorm:"foreignKey:VolumeID"`
}

func (o *VolumeOwnership) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return
}

func (VolumeOwnership) TableName() string {
	return "volume_ownerships"
}

// License records durable figure ownership, created once at claim time.
type License struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	FigureID    string    `gorm:"type:uuid;uniqueIndex;not null" json:"figure_id"`
	OwnerUserID string    `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (l *License) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return
}

func (License) TableName() string {
	return "licenses"
}
