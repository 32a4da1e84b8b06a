package repository

import (
	"context"

	"gorm.io/gorm"

	"figurehub/internal/http-api/models"
)

type FigureRepository interface {
	GetByID(ctx context.Context, id string) (*models.Figure, error)
	GetByTagUID(ctx context.Context, tagUID string) (*models.Figure, error)
}

type figureRepository struct {
	db *gorm.DB
}

func NewFigureRepository(db *gorm.DB) FigureRepository {
	return &figureRepository{db: db}
}

func (r *figureRepository) GetByID(ctx context.Context, id string) (*models.Figure, error) {
	var figure models.Figure
	if err := r.db.WithContext(ctx).
		Preload("Series").
		Where("id = ?", id).
		First(&figure).Error; err != nil {
		return nil, translate(err)
	}
	return &figure, nil
}

func (r *figureRepository) GetByTagUID(ctx context.Context, tagUID string) (*models.Figure, error) {
	var figure models.Figure
	if err := r.db.WithContext(ctx).
		Preload("Series").
		Where("tag_uid = ?", tagUID).
		First(&figure).Error; err != nil {
		return nil, translate(err)
	}
	return &figure, nil
}
