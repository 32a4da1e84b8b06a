package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"figurehub/internal/http-api/models"
)

// ReadRightsRepository owns the per-figure access control rows. Lending
// transitions run inside InTx with the row locked so two concurrent
// activations cannot both redeem the same loan token.
type ReadRightsRepository interface {
	GetByFigureID(ctx context.Context, figureID string) (*models.ReadRights, error)
	GetByFigureIDForUpdate(ctx context.Context, figureID string) (*models.ReadRights, error)
	GetByLoanTokenForUpdate(ctx context.Context, token string) (*models.ReadRights, error)
	Save(ctx context.Context, rights *models.ReadRights) error
	// AppendAudit writes the audit row for a lending transition; inside
	// InTx it commits or rolls back with the transition itself.
	AppendAudit(ctx context.Context, log *models.AuditLog) error
	InTx(ctx context.Context, fn func(ReadRightsRepository) error) error
}

type readRightsRepository struct {
	db *gorm.DB
}

func NewReadRightsRepository(db *gorm.DB) ReadRightsRepository {
	return &readRightsRepository{db: db}
}

func (r *readRightsRepository) GetByFigureID(ctx context.Context, figureID string) (*models.ReadRights, error) {
	var rights models.ReadRights
	if err := r.db.WithContext(ctx).Where("figure_id = ?", figureID).First(&rights).Error; err != nil {
		return nil, translate(err)
	}
	return &rights, nil
}

func (r *readRightsRepository) GetByFigureIDForUpdate(ctx context.Context, figureID string) (*models.ReadRights, error) {
	var rights models.ReadRights
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("figure_id = ?", figureID).
		First(&rights).Error; err != nil {
		return nil, translate(err)
	}
	return &rights, nil
}

func (r *readRightsRepository) GetByLoanTokenForUpdate(ctx context.Context, token string) (*models.ReadRights, error) {
	var rights models.ReadRights
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_token = ?", token).
		First(&rights).Error; err != nil {
		return nil, translate(err)
	}
	return &rights, nil
}

func (r *readRightsRepository) AppendAudit(ctx context.Context, log *models.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}

func (r *readRightsRepository) Save(ctx context.Context, rights *models.ReadRights) error {
	if err := r.db.WithContext(ctx).Save(rights).Error; err != nil {
		return fmt.Errorf("save read rights: %w", err)
	}
	return nil
}

func (r *readRightsRepository) InTx(ctx context.Context, fn func(ReadRightsRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&readRightsRepository{db: tx})
	})
}
