package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Series struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Author      *string    `json:"author,omitempty"`
	Description *string    `json:"description,omitempty"`
	CoverURL    *string    `json:"cover_url,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`

	// association
	Volumes []Volume `json:"volumes,omitempty" gorm:"foreignKey:SeriesID;constraint:OnDelete:CASCADE;"`
}

func (s *Series) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return
}

func (Series) TableName() string {
	return "series"
}

// Volume is one readable book of a series. (series_id, volume_no) is unique
// so a figure's bundle can address volumes by number.
type Volume struct {
	ID        string     `gorm:"primaryKey;type:uuid" json:"id"`
	SeriesID  string     `gorm:"type:uuid;not null;uniqueIndex:idx_series_volume_no" json:"series_id"`
	VolumeNo  int        `gorm:"not null;uniqueIndex:idx_series_volume_no" json:"volume_no"`
	Title     string     `gorm:"not null" json:"title"`
	CoverURL  *string    `json:"cover_url,omitempty"`
	FileURL   *string    `json:"file_url,omitempty"`
	PageCount int        `gorm:"default:0" json:"page_count"`
	CreatedAt *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`

	Series *Series `json:"series,omitempty" gorm:"foreignKey:SeriesID"`
}

func (v *Volume) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return
}

func (Volume) TableName() string {
	return "volumes"
}
