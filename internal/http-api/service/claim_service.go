package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"figurehub/internal/cache"
	"figurehub/internal/http-api/models"
	"figurehub/internal/http-api/repository"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTransactionExpired  = errors.New("transaction has expired")
	ErrNotPurchaser        = errors.New("no purchase record found for this user")
)

// Claim outcomes.
const (
	ClaimStatusClaimed      = "claimed"
	ClaimStatusAlreadyOwned = "already_owned"
)

type ClaimResult struct {
	Status   string
	Figure   *models.Figure
	SeriesID string
}

// TransactionInfo is the read-only claimability preview shown before the
// user commits to claiming.
type TransactionInfo struct {
	Claimable   bool
	Reason      string
	Transaction *models.FigureTransaction
}

// ClaimService converts a one-time purchase transaction into durable
// ownership: figure license, read rights and the bundle's volume
// ownerships, all in a single store transaction.
type ClaimService interface {
	Claim(ctx context.Context, transactionID, userID string) (*ClaimResult, error)
	TransactionInfo(ctx context.Context, transactionID string) (*TransactionInfo, error)
}

type claimService struct {
	store       repository.ClaimStore
	figureCache *cache.FigureCache
	logger      *slog.Logger
}

func NewClaimService(store repository.ClaimStore, figureCache *cache.FigureCache, logger *slog.Logger) ClaimService {
	return &claimService{store: store, figureCache: figureCache, logger: logger}
}

// Claim runs the activation as one atomic unit. The transaction row is
// locked up front, so of two racing claims exactly one activates and the
// other takes the idempotent already_owned path.
func (s *claimService) Claim(ctx context.Context, transactionID, userID string) (*ClaimResult, error) {
	var result *ClaimResult
	var claimedTagUID string

	err := s.store.InTx(ctx, func(tx repository.ClaimStore) error {
		transaction, err := tx.GetTransactionForUpdate(ctx, transactionID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}
		figure := transaction.Figure

		now := time.Now()
		if transaction.Expired(now) {
			return ErrTransactionExpired
		}

		// Scanning an already-claimed figure again is the common case, not
		// an error. No mutation happens on this path.
		if transaction.Status == models.TransactionStatusActivated || figure.Status == models.FigureStatusClaimed {
			result = &ClaimResult{
				Status:   ClaimStatusAlreadyOwned,
				Figure:   figure,
				SeriesID: figure.SeriesID,
			}
			return nil
		}

		// The claim ties to purchaser identity, not to whoever holds the
		// figure (or its transaction link) right now.
		if transaction.PurchasedBy != userID {
			return ErrNotPurchaser
		}

		if err := tx.ActivateTransaction(ctx, transactionID, userID, now); err != nil {
			return err
		}
		if err := tx.MarkFigureClaimed(ctx, figure.ID, userID); err != nil {
			return err
		}
		if err := tx.CreateLicense(ctx, &models.License{
			FigureID:    figure.ID,
			OwnerUserID: userID,
		}); err != nil {
			return err
		}
		if err := tx.CreateReadRights(ctx, &models.ReadRights{
			FigureID:     figure.ID,
			ActiveUserID: userID,
			State:        models.RightsStateOwner,
		}); err != nil {
			return err
		}

		ownerships := make([]models.VolumeOwnership, 0, len(figure.VolumeRanges))
		for _, vr := range figure.VolumeRanges {
			ownerships = append(ownerships, models.VolumeOwnership{
				UserID:       userID,
				VolumeID:     vr.VolumeID,
				FigureID:     &figure.ID,
				PurchaseType: models.PurchaseTypeFigureBundle,
			})
		}
		if err := tx.CreateVolumeOwnerships(ctx, ownerships); err != nil {
			return err
		}

		// The audit row is part of the atomic unit: if it cannot be
		// written, the claim does not happen.
		meta, _ := json.Marshal(map[string]string{"transactionId": transactionID})
		if err := tx.AppendAudit(ctx, &models.AuditLog{
			UserID:   &userID,
			FigureID: &figure.ID,
			Action:   "claim_via_transaction",
			Meta:     string(meta),
		}); err != nil {
			return err
		}

		figure.Status = models.FigureStatusClaimed
		figure.OwnerUserID = &userID
		claimedTagUID = figure.TagUID
		result = &ClaimResult{
			Status:   ClaimStatusClaimed,
			Figure:   figure,
			SeriesID: figure.SeriesID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Status == ClaimStatusClaimed {
		s.figureCache.Invalidate(ctx, claimedTagUID)
		s.logger.Info("figure claimed", "figure_id", result.Figure.ID, "user_id", userID)
	}
	return result, nil
}

func (s *claimService) TransactionInfo(ctx context.Context, transactionID string) (*TransactionInfo, error) {
	transaction, err := s.store.GetTransaction(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	info := &TransactionInfo{Transaction: transaction}
	switch {
	case transaction.Expired(time.Now()):
		info.Reason = ErrTransactionExpired.Error()
	case transaction.Status == models.TransactionStatusActivated:
		info.Reason = "figure has already been claimed"
	default:
		info.Claimable = transaction.Status == models.TransactionStatusPending
	}
	return info, nil
}
