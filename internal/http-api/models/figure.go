package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Figure status values. A figure flips unclaimed -> claimed exactly once,
// via transaction activation.
const (
	FigureStatusUnclaimed = "unclaimed"
	FigureStatusClaimed   = "claimed"
)

type Figure struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"id"`
	SeriesID    string     `gorm:"type:uuid;not null;index" json:"series_id"`
	Title       string     `gorm:"not null" json:"title"`
	TagUID      string     `gorm:"column:tag_uid;uniqueIndex;not null" json:"tag_uid"`
	Status      string     `gorm:"default:'unclaimed';not null" json:"status"`
	OwnerUserID *string    `gorm:"type:uuid;index" json:"owner_user_id,omitempty"`
	Price       int        `gorm:"default:0" json:"price"`
	ImageURL    *string    `json:"image_url,omitempty"`
	Description *string    `json:"description,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`

	// associations
	Series       *Series       `json:"series,omitempty" gorm:"foreignKey:SeriesID"`
	VolumeRanges []VolumeRange `json:"volume_ranges,omitempty" gorm:"foreignKey:FigureID"`
}

func (f *Figure) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return
}

func (Figure) TableName() string {
	return "figures"
}

// VolumeRange maps a figure to one volume its bundle unlocks.
// Immutable reference data, seeded with the catalog.
type VolumeRange struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	FigureID string `gorm:"type:uuid;not null;index" json:"figure_id"`
	VolumeID string `gorm:"type:uuid;not null" json:"volume_id"`

	Volume *Volume `json:"volume,omitempty" gorm:"foreignKey:VolumeID"`
}

func (vr *VolumeRange) BeforeCreate(tx *gorm.DB) (err error) {
	if vr.ID == "" {
		vr.ID = uuid.New().String()
	}
	return
}

func (VolumeRange) TableName() string {
	return "volume_ranges"
}
