package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"figurehub/internal/http-api/models"
)

// ClaimStore is the transactional boundary for one-time claim activation.
// Every write of the claim runs inside InTx; the transaction row is read
// with FOR UPDATE so two concurrent claims on the same transaction
// serialize, and the loser observes status already activated.
type ClaimStore interface {
	InTx(ctx context.Context, fn func(ClaimStore) error) error
	GetTransaction(ctx context.Context, id string) (*models.FigureTransaction, error)
	GetTransactionForUpdate(ctx context.Context, id string) (*models.FigureTransaction, error)
	ActivateTransaction(ctx context.Context, id, userID string, at time.Time) error
	MarkFigureClaimed(ctx context.Context, figureID, userID string) error
	CreateLicense(ctx context.Context, license *models.License) error
	CreateReadRights(ctx context.Context, rights *models.ReadRights) error
	// CreateVolumeOwnerships bulk-inserts bundle grants, silently skipping
	// rows that would violate the (user_id, volume_id) uniqueness.
	CreateVolumeOwnerships(ctx context.Context, ownerships []models.VolumeOwnership) error
	AppendAudit(ctx context.Context, log *models.AuditLog) error
}

type claimStore struct {
	db *gorm.DB
}

func NewClaimStore(db *gorm.DB) ClaimStore {
	return &claimStore{db: db}
}

func (s *claimStore) InTx(ctx context.Context, fn func(ClaimStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&claimStore{db: tx})
	})
}

func (s *claimStore) GetTransaction(ctx context.Context, id string) (*models.FigureTransaction, error) {
	var transaction models.FigureTransaction
	if err := s.db.WithContext(ctx).
		Preload("Figure").
		Preload("Figure.Series").
		Preload("Figure.VolumeRanges").
		Where("id = ?", id).
		First(&transaction).Error; err != nil {
		return nil, translate(err)
	}
	return &transaction, nil
}

func (s *claimStore) GetTransactionForUpdate(ctx context.Context, id string) (*models.FigureTransaction, error) {
	var transaction models.FigureTransaction
	if err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&transaction).Error; err != nil {
		return nil, translate(err)
	}
	// Associations load after the lock is held, so they reflect the
	// committed state of any claim that won the race.
	figure := &models.Figure{}
	if err := s.db.WithContext(ctx).
		Preload("Series").
		Preload("VolumeRanges").
		Where("id = ?", transaction.FigureID).
		First(figure).Error; err != nil {
		return nil, translate(err)
	}
	transaction.Figure = figure
	return &transaction, nil
}

func (s *claimStore) ActivateTransaction(ctx context.Context, id, userID string, at time.Time) error {
	if err := s.db.WithContext(ctx).
		Model(&models.FigureTransaction{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       models.TransactionStatusActivated,
			"activated_by": userID,
			"activated_at": at,
		}).Error; err != nil {
		return fmt.Errorf("activate transaction: %w", err)
	}
	return nil
}

func (s *claimStore) MarkFigureClaimed(ctx context.Context, figureID, userID string) error {
	if err := s.db.WithContext(ctx).
		Model(&models.Figure{}).
		Where("id = ?", figureID).
		Updates(map[string]any{
			"status":        models.FigureStatusClaimed,
			"owner_user_id": userID,
		}).Error; err != nil {
		return fmt.Errorf("mark figure claimed: %w", err)
	}
	return nil
}

func (s *claimStore) CreateLicense(ctx context.Context, license *models.License) error {
	if err := s.db.WithContext(ctx).Create(license).Error; err != nil {
		return fmt.Errorf("create license: %w", translate(err))
	}
	return nil
}

func (s *claimStore) CreateReadRights(ctx context.Context, rights *models.ReadRights) error {
	if err := s.db.WithContext(ctx).Create(rights).Error; err != nil {
		return fmt.Errorf("create read rights: %w", translate(err))
	}
	return nil
}

func (s *claimStore) CreateVolumeOwnerships(ctx context.Context, ownerships []models.VolumeOwnership) error {
	if len(ownerships) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "volume_id"}},
			DoNothing: true,
		}).
		Create(&ownerships).Error; err != nil {
		return fmt.Errorf("create volume ownerships: %w", err)
	}
	return nil
}

func (s *claimStore) AppendAudit(ctx context.Context, log *models.AuditLog) error {
	if err := s.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}
