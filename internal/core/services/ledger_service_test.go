package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/dairybooks/dairy_books_app/internal/apperrors"
	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	portsrepo "github.com/dairybooks/dairy_books_app/internal/core/ports/repositories"
	portssvc "github.com/dairybooks/dairy_books_app/internal/core/ports/services"
	"github.com/dairybooks/dairy_books_app/internal/core/services"
	"github.com/dairybooks/dairy_books_app/internal/dto"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock LedgerRepository ---
type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) SaveLedger(ctx context.Context, ledger domain.Ledger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

func (m *MockLedgerRepository) UpdateLedger(ctx context.Context, ledger domain.Ledger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

func (m *MockLedgerRepository) DeactivateLedger(ctx context.Context, ledgerID string, userID string, now time.Time) error {
	args := m.Called(ctx, ledgerID, userID, now)
	return args.Error(0)
}

func (m *MockLedgerRepository) FindLedgerByID(ctx context.Context, ledgerID string) (*domain.Ledger, error) {
	args := m.Called(ctx, ledgerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ledger), args.Error(1)
}

func (m *MockLedgerRepository) FindLedgersByIDs(ctx context.Context, ledgerIDs []string) (map[string]domain.Ledger, error) {
	args := m.Called(ctx, ledgerIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Ledger), args.Error(1)
}

func (m *MockLedgerRepository) ListLedgers(ctx context.Context, companyID string, limit int, offset int, includeInactive bool) ([]domain.Ledger, error) {
	args := m.Called(ctx, companyID, limit, offset, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ledger), args.Error(1)
}

func (m *MockLedgerRepository) FindLedgersByIDsForUpdate(ctx context.Context, tx pgx.Tx, ledgerIDs []string) (map[string]domain.Ledger, error) {
	args := m.Called(ctx, tx, ledgerIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Ledger), args.Error(1)
}

func (m *MockLedgerRepository) ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, deltas, userID, now)
	return args.Error(0)
}

// --- Test Suite Setup ---
type LedgerServiceTestSuite struct {
	suite.Suite
	mockLedgerRepo *MockLedgerRepository
	mockCompanySvc *MockCompanyService
	service        portssvc.LedgerSvcFacade
	companyID      string
	userID         string
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockLedgerRepo = new(MockLedgerRepository)
	suite.mockCompanySvc = new(MockCompanyService)
	suite.service = services.NewLedgerService(suite.mockLedgerRepo, suite.mockCompanySvc)

	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()
}

// --- Test Cases ---

func (suite *LedgerServiceTestSuite) TestCreateLedger_TypeDefaultsFromGroup() {
	ctx := context.Background()
	req := dto.CreateLedgerRequest{
		Name:  "Village Dairy Co-op",
		Group: domain.GroupSundryDebtors,
	}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()

	var saved domain.Ledger
	suite.mockLedgerRepo.On("SaveLedger", ctx, mock.AnythingOfType("domain.Ledger")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.Ledger)
		}).Return(nil).Once()

	ledger, err := suite.service.CreateLedger(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.Asset, ledger.Type) // sundry debtors default to asset
	suite.True(ledger.IsActive)
	suite.Equal(domain.Debit, ledger.OpeningBalanceType)
	suite.True(ledger.Balance.IsZero())
	suite.Equal(saved.LedgerID, ledger.LedgerID)

	suite.mockCompanySvc.AssertExpectations(suite.T())
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestCreateLedger_OpeningBalanceOppositeSide() {
	ctx := context.Background()
	// A debtor ledger carrying a credit opening balance (advance received)
	// stores it as a negative signed balance.
	req := dto.CreateLedgerRequest{
		Name:               "Advance Customer",
		Group:              domain.GroupSundryDebtors,
		OpeningBalance:     decimal.NewFromInt(500),
		OpeningBalanceType: domain.Credit,
	}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockLedgerRepo.On("SaveLedger", ctx, mock.AnythingOfType("domain.Ledger")).Return(nil).Once()

	ledger, err := suite.service.CreateLedger(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(ledger.Balance.Equal(decimal.NewFromInt(-500)))
	suite.True(ledger.OpeningBalance.Equal(decimal.NewFromInt(500)))
	suite.Equal(domain.Credit, ledger.OpeningBalanceType)
}

func (suite *LedgerServiceTestSuite) TestCreateLedger_InvalidGroup() {
	ctx := context.Background()
	req := dto.CreateLedgerRequest{Name: "Bad", Group: "NOT_A_GROUP"}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()

	_, err := suite.service.CreateLedger(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockLedgerRepo.AssertNotCalled(suite.T(), "SaveLedger", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestCreateLedger_NegativeOpeningBalance() {
	ctx := context.Background()
	req := dto.CreateLedgerRequest{
		Name:           "Bad Balance",
		Group:          domain.GroupCashInHand,
		OpeningBalance: decimal.NewFromInt(-100),
	}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()

	_, err := suite.service.CreateLedger(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestCreateLedger_Duplicate() {
	ctx := context.Background()
	req := dto.CreateLedgerRequest{Name: "Cash", Group: domain.GroupCashInHand}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockLedgerRepo.On("SaveLedger", ctx, mock.Anything).Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.CreateLedger(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *LedgerServiceTestSuite) TestGetLedgerByID_WrongCompany() {
	ctx := context.Background()
	ledgerID := uuid.NewString()
	foreign := &domain.Ledger{LedgerID: ledgerID, CompanyID: uuid.NewString()}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockLedgerRepo.On("FindLedgerByID", ctx, ledgerID).Return(foreign, nil).Once()

	_, err := suite.service.GetLedgerByID(ctx, suite.companyID, ledgerID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestGetLedgersByIDs_FiltersOtherCompanies() {
	ctx := context.Background()
	mine := domain.Ledger{LedgerID: uuid.NewString(), CompanyID: suite.companyID}
	other := domain.Ledger{LedgerID: uuid.NewString(), CompanyID: uuid.NewString()}
	ids := []string{mine.LedgerID, other.LedgerID}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockLedgerRepo.On("FindLedgersByIDs", ctx, ids).
		Return(map[string]domain.Ledger{mine.LedgerID: mine, other.LedgerID: other}, nil).Once()

	result, err := suite.service.GetLedgersByIDs(ctx, suite.companyID, ids, suite.userID)

	suite.Require().NoError(err)
	suite.Len(result, 1)
	suite.Contains(result, mine.LedgerID)
	suite.NotContains(result, other.LedgerID)
}

func (suite *LedgerServiceTestSuite) TestListLedgers_ClampsLimit() {
	ctx := context.Background()

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockLedgerRepo.On("ListLedgers", ctx, suite.companyID, 100, 0, false).Return([]domain.Ledger{}, nil).Once()

	_, err := suite.service.ListLedgers(ctx, suite.companyID, suite.userID, 500, -3, false)

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestUpdateLedger_PartialFields() {
	ctx := context.Background()
	ledgerID := uuid.NewString()
	existing := &domain.Ledger{
		LedgerID:    ledgerID,
		CompanyID:   suite.companyID,
		Name:        "Old Name",
		Code:        "C1",
		Description: "old",
		IsActive:    true,
	}
	newName := "New Name"
	req := dto.UpdateLedgerRequest{Name: &newName}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockLedgerRepo.On("FindLedgerByID", ctx, ledgerID).Return(existing, nil).Once()
	suite.mockLedgerRepo.On("UpdateLedger", ctx, mock.AnythingOfType("domain.Ledger")).Return(nil).Once()

	updated, err := suite.service.UpdateLedger(ctx, suite.companyID, ledgerID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("New Name", updated.Name)
	suite.Equal("C1", updated.Code) // untouched fields survive
	suite.Equal("old", updated.Description)
	suite.Equal(suite.userID, updated.LastUpdatedBy)
}

func (suite *LedgerServiceTestSuite) TestDeactivateLedger_Success() {
	ctx := context.Background()
	ledgerID := uuid.NewString()
	existing := &domain.Ledger{LedgerID: ledgerID, CompanyID: suite.companyID, IsActive: true}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockLedgerRepo.On("FindLedgerByID", ctx, ledgerID).Return(existing, nil).Once()
	suite.mockLedgerRepo.On("DeactivateLedger", ctx, ledgerID, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.DeactivateLedger(ctx, suite.companyID, ledgerID, suite.userID)

	suite.Require().NoError(err)
	suite.mockLedgerRepo.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestLedgerService(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
