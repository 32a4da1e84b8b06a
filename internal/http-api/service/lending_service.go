package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"figurehub/internal/http-api/models"
	"figurehub/internal/http-api/repository"
)

var (
	ErrRightsNotFound    = errors.New("no read rights exist for this figure")
	ErrNotFigureOwner    = errors.New("only the figure owner can manage loans")
	ErrAgreementRequired = errors.New("lending agreement must be accepted")
	ErrInvalidLoanDays   = errors.New("loan length is out of range")
	ErrLoanNotFound      = errors.New("loan offer not found")
)

// LoanOffer is what the owner gets back from Start: the single-use token the
// borrower redeems, plus the loan window it opens.
type LoanOffer struct {
	Token     string
	LoanStart time.Time
	LoanEnd   time.Time
}

// LendingService drives the owner <-> loaned transitions on ReadRights.
// State flips to loaned only when the borrower redeems the token; the owner
// keeps access between Start and Activate. Each transition runs in its own
// store transaction with the rights row locked.
type LendingService interface {
	Start(ctx context.Context, figureID, ownerID string, days int, agreed bool) (*LoanOffer, error)
	Activate(ctx context.Context, token, borrowerID string) (*models.ReadRights, error)
	End(ctx context.Context, figureID, ownerID string) error
}

type lendingService struct {
	rights  repository.ReadRightsRepository
	figures repository.FigureRepository
	maxDays int
	logger  *slog.Logger
}

func NewLendingService(
	rights repository.ReadRightsRepository,
	figures repository.FigureRepository,
	maxDays int,
	logger *slog.Logger,
) LendingService {
	return &lendingService{
		rights:  rights,
		figures: figures,
		maxDays: maxDays,
		logger:  logger,
	}
}

func (s *lendingService) Start(ctx context.Context, figureID, ownerID string, days int, agreed bool) (*LoanOffer, error) {
	if !agreed {
		return nil, ErrAgreementRequired
	}
	if days < 1 || days > s.maxDays {
		return nil, ErrInvalidLoanDays
	}

	figure, err := s.figures.GetByID(ctx, figureID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFigureNotFound
		}
		return nil, err
	}
	if figure.OwnerUserID == nil || *figure.OwnerUserID != ownerID {
		return nil, ErrNotFigureOwner
	}

	token, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generate loan token: %w", err)
	}

	var offer *LoanOffer
	err = s.rights.InTx(ctx, func(tx repository.ReadRightsRepository) error {
		rights, err := tx.GetByFigureIDForUpdate(ctx, figureID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRightsNotFound
			}
			return err
		}

		now := time.Now()
		// A redeemed loan whose window has run out ends lazily here.
		if rights.LoanLapsed(now) {
			rights.EndLoan(ownerID)
		}

		end := now.AddDate(0, 0, days)
		if err := rights.OfferLoan(token, now, end); err != nil {
			return err
		}
		if err := tx.Save(ctx, rights); err != nil {
			return err
		}

		meta, _ := json.Marshal(map[string]any{"days": days})
		if err := tx.AppendAudit(ctx, &models.AuditLog{
			UserID:   &ownerID,
			FigureID: &figureID,
			Action:   "loan_start",
			Meta:     string(meta),
		}); err != nil {
			return err
		}

		offer = &LoanOffer{Token: token, LoanStart: now, LoanEnd: end}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("loan offered", "figure_id", figureID, "owner_id", ownerID, "days", days)
	return offer, nil
}

func (s *lendingService) Activate(ctx context.Context, token, borrowerID string) (*models.ReadRights, error) {
	var activated *models.ReadRights
	err := s.rights.InTx(ctx, func(tx repository.ReadRightsRepository) error {
		rights, err := tx.GetByLoanTokenForUpdate(ctx, token)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrLoanNotFound
			}
			return err
		}

		if err := rights.ActivateLoan(token, borrowerID, time.Now()); err != nil {
			return err
		}
		if err := tx.Save(ctx, rights); err != nil {
			return err
		}

		if err := tx.AppendAudit(ctx, &models.AuditLog{
			UserID:   &borrowerID,
			FigureID: &rights.FigureID,
			Action:   "loan_activate",
			Meta:     "{}",
		}); err != nil {
			return err
		}

		activated = rights
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("loan activated", "figure_id", activated.FigureID, "borrower_id", borrowerID)
	return activated, nil
}

// End is the owner's explicit reclaim. It also clears an un-redeemed offer.
// Ending a figure that is already in owner state with no offer is not an
// error.
func (s *lendingService) End(ctx context.Context, figureID, ownerID string) error {
	figure, err := s.figures.GetByID(ctx, figureID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFigureNotFound
		}
		return err
	}
	if figure.OwnerUserID == nil || *figure.OwnerUserID != ownerID {
		return ErrNotFigureOwner
	}

	return s.rights.InTx(ctx, func(tx repository.ReadRightsRepository) error {
		rights, err := tx.GetByFigureIDForUpdate(ctx, figureID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRightsNotFound
			}
			return err
		}

		rights.EndLoan(ownerID)
		if err := tx.Save(ctx, rights); err != nil {
			return err
		}

		return tx.AppendAudit(ctx, &models.AuditLog{
			UserID:   &ownerID,
			FigureID: &figureID,
			Action:   "loan_end",
			Meta:     "{}",
		})
	})
}
