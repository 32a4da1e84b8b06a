package repository

import (
	"context"

	"gorm.io/gorm"

	"figurehub/internal/http-api/models"
)

type VolumeRepository interface {
	GetByID(ctx context.Context, id string) (*models.Volume, error)
	GetBySeriesAndNo(ctx context.Context, seriesID string, volumeNo int) (*models.Volume, error)
}

type volumeRepository struct {
	db *gorm.DB
}

func NewVolumeRepository(db *gorm.DB) VolumeRepository {
	return &volumeRepository{db: db}
}

func (r *volumeRepository) GetByID(ctx context.Context, id string) (*models.Volume, error) {
	var volume models.Volume
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&volume).Error; err != nil {
		return nil, translate(err)
	}
	return &volume, nil
}

func (r *volumeRepository) GetBySeriesAndNo(ctx context.Context, seriesID string, volumeNo int) (*models.Volume, error) {
	var volume models.Volume
	if err := r.db.WithContext(ctx).
		Where("series_id = ? AND volume_no = ?", seriesID, volumeNo).
		First(&volume).Error; err != nil {
		return nil, translate(err)
	}
	return &volume, nil
}
