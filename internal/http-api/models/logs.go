package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NfcTapLog is an append-only record of every tap attempt, verified or not.
// Duplicate taps produce duplicate rows; the audit trail is the point.
type NfcTapLog struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	TagUID    string    `gorm:"column:tag_uid;not null;index" json:"tag_uid"`
	Signature string    `gorm:"not null" json:"signature"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
	Verified  bool      `gorm:"not null" json:"verified"`
	UserID    *string   `gorm:"type:uuid" json:"user_id,omitempty"`
	FigureID  *string   `gorm:"type:uuid" json:"figure_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (l *NfcTapLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return
}

func (NfcTapLog) TableName() string {
	return "nfc_tap_logs"
}

// AuditLog records rights-affecting actions (claims, loans, reading sessions).
// Written by the core, read only by humans.
type AuditLog struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    *string   `gorm:"type:uuid;index" json:"user_id,omitempty"`
	FigureID  *string   `gorm:"type:uuid;index" json:"figure_id,omitempty"`
	Action    string    `gorm:"not null;index" json:"action"`
	Meta      string    `gorm:"type:jsonb;default:'{}'" json:"meta"`
	CreatedAt time.Time `json:"created_at"`
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
