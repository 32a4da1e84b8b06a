package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"figurehub/internal/http-api/models"
	"figurehub/internal/http-api/repository"
)

// MockClaimStore mocks the ClaimStore interface. InTx runs the callback
// against the mock itself, standing in for the real transaction scope.
type MockClaimStore struct {
	mock.Mock
}

func (m *MockClaimStore) InTx(ctx context.Context, fn func(repository.ClaimStore) error) error {
	m.Called(ctx)
	return fn(m)
}

func (m *MockClaimStore) GetTransaction(ctx context.Context, id string) (*models.FigureTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FigureTransaction), args.Error(1)
}

func (m *MockClaimStore) GetTransactionForUpdate(ctx context.Context, id string) (*models.FigureTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FigureTransaction), args.Error(1)
}

func (m *MockClaimStore) ActivateTransaction(ctx context.Context, id, userID string, at time.Time) error {
	args := m.Called(ctx, id, userID, at)
	return args.Error(0)
}

func (m *MockClaimStore) MarkFigureClaimed(ctx context.Context, figureID, userID string) error {
	args := m.Called(ctx, figureID, userID)
	return args.Error(0)
}

func (m *MockClaimStore) CreateLicense(ctx context.Context, license *models.License) error {
	args := m.Called(ctx, license)
	return args.Error(0)
}

func (m *MockClaimStore) CreateReadRights(ctx context.Context, rights *models.ReadRights) error {
	args := m.Called(ctx, rights)
	return args.Error(0)
}

func (m *MockClaimStore) CreateVolumeOwnerships(ctx context.Context, ownerships []models.VolumeOwnership) error {
	args := m.Called(ctx, ownerships)
	return args.Error(0)
}

func (m *MockClaimStore) AppendAudit(ctx context.Context, log *models.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func pendingTransaction() *models.FigureTransaction {
	return &models.FigureTransaction{
		ID:          "tx-id",
		FigureID:    "figure-id",
		PurchasedBy: "buyer-id",
		Status:      models.TransactionStatusPending,
		ExpiresAt:   time.Now().Add(24 * time.Hour),
		Figure: &models.Figure{
			ID:       "figure-id",
			SeriesID: "series-id",
			TagUID:   "DEMO-TAG-001",
			Status:   models.FigureStatusUnclaimed,
			VolumeRanges: []models.VolumeRange{
				{FigureID: "figure-id", VolumeID: "volume-1"},
				{FigureID: "figure-id", VolumeID: "volume-2"},
				{FigureID: "figure-id", VolumeID: "volume-3"},
			},
		},
	}
}

func TestClaim_Success(t *testing.T) {
	store := new(MockClaimStore)
	svc := NewClaimService(store, nil, testLogger())

	store.On("InTx", mock.Anything).Return(nil)
	store.On("GetTransactionForUpdate", mock.Anything, "tx-id").Return(pendingTransaction(), nil)
	store.On("ActivateTransaction", mock.Anything, "tx-id", "buyer-id", mock.AnythingOfType("time.Time")).Return(nil)
	store.On("MarkFigureClaimed", mock.Anything, "figure-id", "buyer-id").Return(nil)
	store.On("CreateLicense", mock.Anything, mock.MatchedBy(func(l *models.License) bool {
		return l.FigureID == "figure-id" && l.OwnerUserID == "buyer-id"
	})).Return(nil)
	store.On("CreateReadRights", mock.Anything, mock.MatchedBy(func(r *models.ReadRights) bool {
		return r.FigureID == "figure-id" && r.ActiveUserID == "buyer-id" && r.State == models.RightsStateOwner
	})).Return(nil)
	store.On("CreateVolumeOwnerships", mock.Anything, mock.MatchedBy(func(ownerships []models.VolumeOwnership) bool {
		return len(ownerships) == 3 && ownerships[0].PurchaseType == models.PurchaseTypeFigureBundle
	})).Return(nil)
	store.On("AppendAudit", mock.Anything, mock.MatchedBy(func(l *models.AuditLog) bool {
		return l.Action == "claim_via_transaction"
	})).Return(nil)

	result, err := svc.Claim(context.Background(), "tx-id", "buyer-id")

	require.NoError(t, err)
	assert.Equal(t, ClaimStatusClaimed, result.Status)
	assert.Equal(t, "series-id", result.SeriesID)
	assert.Equal(t, models.FigureStatusClaimed, result.Figure.Status)
	require.NotNil(t, result.Figure.OwnerUserID)
	assert.Equal(t, "buyer-id", *result.Figure.OwnerUserID)
	store.AssertExpectations(t)
}

func TestClaim_AlreadyActivated(t *testing.T) {
	store := new(MockClaimStore)
	svc := NewClaimService(store, nil, testLogger())

	activatedBy := "buyer-id"
	transaction := pendingTransaction()
	transaction.Status = models.TransactionStatusActivated
	transaction.ActivatedBy = &activatedBy
	transaction.Figure.Status = models.FigureStatusClaimed
	transaction.Figure.OwnerUserID = &activatedBy

	store.On("InTx", mock.Anything).Return(nil)
	store.On("GetTransactionForUpdate", mock.Anything, "tx-id").Return(transaction, nil)

	result, err := svc.Claim(context.Background(), "tx-id", "buyer-id")

	require.NoError(t, err)
	assert.Equal(t, ClaimStatusAlreadyOwned, result.Status)
	// No mutation on the idempotent path
	store.AssertNotCalled(t, "ActivateTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "MarkFigureClaimed", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "CreateLicense", mock.Anything, mock.Anything)
}

func TestClaim_FigureAlreadyClaimed(t *testing.T) {
	store := new(MockClaimStore)
	svc := NewClaimService(store, nil, testLogger())

	// The transaction row lost the race but the figure already flipped
	owner := "someone"
	transaction := pendingTransaction()
	transaction.Figure.Status = models.FigureStatusClaimed
	transaction.Figure.OwnerUserID = &owner

	store.On("InTx", mock.Anything).Return(nil)
	store.On("GetTransactionForUpdate", mock.Anything, "tx-id").Return(transaction, nil)

	result, err := svc.Claim(context.Background(), "tx-id", "buyer-id")

	require.NoError(t, err)
	assert.Equal(t, ClaimStatusAlreadyOwned, result.Status)
	store.AssertNotCalled(t, "ActivateTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestClaim_WrongPurchaser(t *testing.T) {
	store := new(MockClaimStore)
	svc := NewClaimService(store, nil, testLogger())

	store.On("InTx", mock.Anything).Return(nil)
	store.On("GetTransactionForUpdate", mock.Anything, "tx-id").Return(pendingTransaction(), nil)

	result, err := svc.Claim(context.Background(), "tx-id", "intruder-id")

	assert.ErrorIs(t, err, ErrNotPurchaser)
	assert.Nil(t, result)
	store.AssertNotCalled(t, "ActivateTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "MarkFigureClaimed", mock.Anything, mock.Anything, mock.Anything)
}

func TestClaim_Expired(t *testing.T) {
	store := new(MockClaimStore)
	svc := NewClaimService(store, nil, testLogger())

	transaction := pendingTransaction()
	transaction.ExpiresAt = time.Now().Add(-time.Hour)

	store.On("InTx", mock.Anything).Return(nil)
	store.On("GetTransactionForUpdate", mock.Anything, "tx-id").Return(transaction, nil)

	result, err := svc.Claim(context.Background(), "tx-id", "buyer-id")

	assert.ErrorIs(t, err, ErrTransactionExpired)
	assert.Nil(t, result)
}

func TestClaim_NotFound(t *testing.T) {
	store := new(MockClaimStore)
	svc := NewClaimService(store, nil, testLogger())

	store.On("InTx", mock.Anything).Return(nil)
	store.On("GetTransactionForUpdate", mock.Anything, "missing-id").Return(nil, repository.ErrNotFound)

	result, err := svc.Claim(context.Background(), "missing-id", "buyer-id")

	assert.ErrorIs(t, err, ErrTransactionNotFound)
	assert.Nil(t, result)
}

func TestClaim_AuditFailureRollsBack(t *testing.T) {
	store := new(MockClaimStore)
	svc := NewClaimService(store, nil, testLogger())

	store.On("InTx", mock.Anything).Return(nil)
	store.On("GetTransactionForUpdate", mock.Anything, "tx-id").Return(pendingTransaction(), nil)
	store.On("ActivateTransaction", mock.Anything, "tx-id", "buyer-id", mock.AnythingOfType("time.Time")).Return(nil)
	store.On("MarkFigureClaimed", mock.Anything, "figure-id", "buyer-id").Return(nil)
	store.On("CreateLicense", mock.Anything, mock.AnythingOfType("*models.License")).Return(nil)
	store.On("CreateReadRights", mock.Anything, mock.AnythingOfType("*models.ReadRights")).Return(nil)
	store.On("CreateVolumeOwnerships", mock.Anything, mock.AnythingOfType("[]models.VolumeOwnership")).Return(nil)
	store.On("AppendAudit", mock.Anything, mock.AnythingOfType("*models.AuditLog")).Return(assert.AnError)

	result, err := svc.Claim(context.Background(), "tx-id", "buyer-id")

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestTransactionInfo_Claimable(t *testing.T) {
	store := new(MockClaimStore)
	svc := NewClaimService(store, nil, testLogger())

	store.On("GetTransaction", mock.Anything, "tx-id").Return(pendingTransaction(), nil)

	info, err := svc.TransactionInfo(context.Background(), "tx-id")

	require.NoError(t, err)
	assert.True(t, info.Claimable)
	assert.Empty(t, info.Reason)
}

func TestTransactionInfo_Expired(t *testing.T) {
	store := new(MockClaimStore)
	svc := NewClaimService(store, nil, testLogger())

	transaction := pendingTransaction()
	transaction.ExpiresAt = time.Now().Add(-time.Hour)
	store.On("GetTransaction", mock.Anything, "tx-id").Return(transaction, nil)

	info, err := svc.TransactionInfo(context.Background(), "tx-id")

	require.NoError(t, err)
	assert.False(t, info.Claimable)
	assert.NotEmpty(t, info.Reason)
}

func TestTransactionInfo_AlreadyClaimed(t *testing.T) {
	store := new(MockClaimStore)
	svc := NewClaimService(store, nil, testLogger())

	transaction := pendingTransaction()
	transaction.Status = models.TransactionStatusActivated
	store.On("GetTransaction", mock.Anything, "tx-id").Return(transaction, nil)

	info, err := svc.TransactionInfo(context.Background(), "tx-id")

	require.NoError(t, err)
	assert.False(t, info.Claimable)
	assert.Contains(t, info.Reason, "claimed")
}

func TestTransactionInfo_NotFound(t *testing.T) {
	store := new(MockClaimStore)
	svc := NewClaimService(store, nil, testLogger())

	store.On("GetTransaction", mock.Anything, "missing-id").Return(nil, repository.ErrNotFound)

	info, err := svc.TransactionInfo(context.Background(), "missing-id")

	assert.ErrorIs(t, err, ErrTransactionNotFound)
	assert.Nil(t, info)
}
