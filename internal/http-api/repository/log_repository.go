package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"figurehub/internal/http-api/models"
)

type TapLogRepository interface {
	Create(ctx context.Context, log *models.NfcTapLog) error
}

type tapLogRepository struct {
	db *gorm.DB
}

func NewTapLogRepository(db *gorm.DB) TapLogRepository {
	return &tapLogRepository{db: db}
}

func (r *tapLogRepository) Create(ctx context.Context, log *models.NfcTapLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("create tap log: %w", err)
	}
	return nil
}

type AuditLogRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

type auditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, log *models.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
