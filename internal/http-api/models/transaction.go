package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FigureTransaction status values. pending -> activated happens exactly once.
const (
	TransactionStatusPending   = "pending"
	TransactionStatusActivated = "activated"
)

// FigureTransaction is the one-time claim ticket created at purchase time.
type FigureTransaction struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"id"`
	FigureID    string     `gorm:"type:uuid;not null;index" json:"figure_id"`
	PurchasedBy string     `gorm:"type:uuid;not null" json:"purchased_by"`
	Status      string     `gorm:"default:'pending';not null" json:"status"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
	ActivatedBy *string    `gorm:"type:uuid" json:"activated_by,omitempty"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`

	Figure *Figure `json:"figure,omitempty" gorm:"foreignKey:FigureID"`
}

func (t *FigureTransaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return
}

func (FigureTransaction) TableName() string {
	return "figure_transactions"
}

// Expired reports whether the claim window has lapsed.
func (t *FigureTransaction) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
