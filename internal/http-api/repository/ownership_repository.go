package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"figurehub/internal/http-api/models"
)

type OwnershipRepository interface {
	GetByUserAndVolume(ctx context.Context, userID, volumeID string) (*models.VolumeOwnership, error)
	// ListByUserAndFigure returns the user's ownerships that came from the
	// given figure's bundle, newest volume first, with Volume preloaded.
	ListByUserAndFigure(ctx context.Context, userID, figureID string) ([]models.VolumeOwnership, error)
}

type ownershipRepository struct {
	db *gorm.DB
}

func NewOwnershipRepository(db *gorm.DB) OwnershipRepository {
	return &ownershipRepository{db: db}
}

func (r *ownershipRepository) GetByUserAndVolume(ctx context.Context, userID, volumeID string) (*models.VolumeOwnership, error) {
	var ownership models.VolumeOwnership
	if err := r.db.WithContext(ctx).
		Preload("Volume").
		Where("user_id = ? AND volume_id = ?", userID, volumeID).
		First(&ownership).Error; err != nil {
		return nil, translate(err)
	}
	return &ownership, nil
}

func (r *ownershipRepository) ListByUserAndFigure(ctx context.Context, userID, figureID string) ([]models.VolumeOwnership, error) {
	var ownerships []models.VolumeOwnership
	if err := r.db.WithContext(ctx).
		Preload("Volume").
		Joins("JOIN volumes ON volumes.id = volume_ownerships.volume_id").
		Where("volume_ownerships.user_id = ? AND volume_ownerships.figure_id = ?", userID, figureID).
		Order("volumes.volume_no DESC").
		Find(&ownerships).Error; err != nil {
		return nil, fmt.Errorf("list ownerships: %w", err)
	}
	return ownerships, nil
}
