package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dairybooks/dairy_books_app/internal/apperrors"
	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	portsrepo "github.com/dairybooks/dairy_books_app/internal/core/ports/repositories"
	portssvc "github.com/dairybooks/dairy_books_app/internal/core/ports/services"
	"github.com/dairybooks/dairy_books_app/internal/core/services"
	"github.com/dairybooks/dairy_books_app/internal/dto"
	"github.com/dairybooks/dairy_books_app/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Mock VoucherRepository ---
type MockVoucherRepository struct {
	mock.Mock
}

var _ portsrepo.VoucherRepositoryFacade = (*MockVoucherRepository)(nil)

func (m *MockVoucherRepository) SaveVoucher(ctx context.Context, voucher *domain.Voucher, entries []domain.Entry, deltas map[string]decimal.Decimal) error {
	args := m.Called(ctx, voucher, entries, deltas)
	return args.Error(0)
}

func (m *MockVoucherRepository) CancelVoucher(ctx context.Context, voucherID string, userID string, now time.Time) error {
	args := m.Called(ctx, voucherID, userID, now)
	return args.Error(0)
}

func (m *MockVoucherRepository) ReplaceVoucher(ctx context.Context, voucher *domain.Voucher, newEntries []domain.Entry, postDeltas map[string]decimal.Decimal) error {
	args := m.Called(ctx, voucher, newEntries, postDeltas)
	return args.Error(0)
}

func (m *MockVoucherRepository) FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	args := m.Called(ctx, voucherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockVoucherRepository) FindEntriesByVoucherID(ctx context.Context, voucherID string) ([]domain.Entry, error) {
	args := m.Called(ctx, voucherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Entry), args.Error(1)
}

func (m *MockVoucherRepository) FindEntriesByVoucherIDs(ctx context.Context, voucherIDs []string) (map[string][]domain.Entry, error) {
	args := m.Called(ctx, voucherIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]domain.Entry), args.Error(1)
}

func (m *MockVoucherRepository) ListVouchersByCompany(ctx context.Context, companyID string, filter portsrepo.ListVouchersFilter, limit int, nextToken *string) ([]domain.Voucher, *string, error) {
	args := m.Called(ctx, companyID, filter, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Voucher), returnedNextToken, args.Error(2)
}

// --- Mock LedgerReader ---
type MockLedgerReader struct {
	mock.Mock
}

var _ portsrepo.LedgerReader = (*MockLedgerReader)(nil)

func (m *MockLedgerReader) FindLedgerByID(ctx context.Context, ledgerID string) (*domain.Ledger, error) {
	args := m.Called(ctx, ledgerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ledger), args.Error(1)
}

func (m *MockLedgerReader) FindLedgersByIDs(ctx context.Context, ledgerIDs []string) (map[string]domain.Ledger, error) {
	args := m.Called(ctx, ledgerIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Ledger), args.Error(1)
}

func (m *MockLedgerReader) ListLedgers(ctx context.Context, companyID string, limit int, offset int, includeInactive bool) ([]domain.Ledger, error) {
	args := m.Called(ctx, companyID, limit, offset, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ledger), args.Error(1)
}

// --- Mock CompanyService ---
type MockCompanyService struct {
	mock.Mock
}

var _ portssvc.CompanySvcFacade = (*MockCompanyService)(nil)

func (m *MockCompanyService) CreateCompany(ctx context.Context, req dto.CreateCompanyRequest, userID string) (*domain.Company, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyService) GetCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyService) ListCompaniesByUser(ctx context.Context, userID string) ([]domain.Company, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Company), args.Error(1)
}

func (m *MockCompanyService) AddUserToCompany(ctx context.Context, companyID string, userID string, role domain.UserRole, actingUserID string) error {
	args := m.Called(ctx, companyID, userID, role, actingUserID)
	return args.Error(0)
}

func (m *MockCompanyService) AuthorizeUserAction(ctx context.Context, userID string, companyID string, requiredRole domain.UserRole) error {
	args := m.Called(ctx, userID, companyID, requiredRole)
	return args.Error(0)
}

// --- Test Suite Setup ---
type VoucherServiceTestSuite struct {
	suite.Suite
	mockVoucherRepo *MockVoucherRepository
	mockLedgerRepo  *MockLedgerReader
	mockCompanySvc  *MockCompanyService
	service         portssvc.VoucherSvcFacade
	expenseLedger   domain.Ledger
	cashLedger      domain.Ledger
	incomeLedger    domain.Ledger
	companyID       string
	userID          string
}

func (suite *VoucherServiceTestSuite) SetupTest() {
	suite.mockVoucherRepo = new(MockVoucherRepository)
	suite.mockLedgerRepo = new(MockLedgerReader)
	suite.mockCompanySvc = new(MockCompanyService)
	suite.service = services.NewVoucherService(suite.mockVoucherRepo, suite.mockLedgerRepo, suite.mockCompanySvc)

	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()

	suite.expenseLedger = domain.Ledger{
		LedgerID:  uuid.NewString(),
		CompanyID: suite.companyID,
		Name:      "Feed Purchases",
		Group:     domain.GroupDirectExpenses,
		Type:      domain.Expense,
		IsActive:  true,
	}
	suite.cashLedger = domain.Ledger{
		LedgerID:  uuid.NewString(),
		CompanyID: suite.companyID,
		Name:      "Cash",
		Group:     domain.GroupCashInHand,
		Type:      domain.Asset,
		Balance:   decimal.NewFromInt(1000),
		IsActive:  true,
	}
	suite.incomeLedger = domain.Ledger{
		LedgerID:  uuid.NewString(),
		CompanyID: suite.companyID,
		Name:      "Milk Sales",
		Group:     domain.GroupSalesAccounts,
		Type:      domain.Income,
		IsActive:  true,
	}
}

func (suite *VoucherServiceTestSuite) ledgersMap(ledgers ...domain.Ledger) map[string]domain.Ledger {
	m := make(map[string]domain.Ledger, len(ledgers))
	for _, l := range ledgers {
		m[l.LedgerID] = l
	}
	return m
}

// --- Test Cases ---

func (suite *VoucherServiceTestSuite) TestPostVoucher_Success() {
	ctx := context.Background()
	req := dto.CreateVoucherRequest{
		VoucherType: domain.VoucherExpense,
		Date:        time.Now(),
		Narration:   "Cattle feed paid in cash",
		Entries: []dto.CreateEntryRequest{
			{LedgerID: suite.expenseLedger.LedgerID, Direction: domain.Debit, Amount: decimal.NewFromInt(200)},
			{LedgerID: suite.cashLedger.LedgerID, Direction: domain.Credit, Amount: decimal.NewFromInt(200)},
		},
	}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockLedgerRepo.On("FindLedgersByIDs", ctx, []string{suite.expenseLedger.LedgerID, suite.cashLedger.LedgerID}).
		Return(suite.ledgersMap(suite.expenseLedger, suite.cashLedger), nil).Once()

	var capturedDeltas map[string]decimal.Decimal
	suite.mockVoucherRepo.On("SaveVoucher", ctx, mock.AnythingOfType("*domain.Voucher"), mock.AnythingOfType("[]domain.Entry"), mock.AnythingOfType("map[string]decimal.Decimal")).
		Run(func(args mock.Arguments) {
			capturedDeltas = args.Get(3).(map[string]decimal.Decimal)
		}).Return(nil).Once()

	voucher, err := suite.service.PostVoucher(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(voucher)
	suite.NotEmpty(voucher.VoucherID)
	suite.Equal(suite.companyID, voucher.CompanyID)
	suite.Equal(domain.VoucherPosted, voucher.Status)
	suite.True(voucher.TotalDebit.Equal(decimal.NewFromInt(200)))
	suite.True(voucher.TotalCredit.Equal(decimal.NewFromInt(200)))
	suite.Equal(suite.userID, voucher.CreatedBy)
	suite.Len(voucher.Entries, 2)

	// Debit on an expense ledger increases it; credit on an asset decreases it.
	suite.Require().Len(capturedDeltas, 2)
	suite.True(capturedDeltas[suite.expenseLedger.LedgerID].Equal(decimal.NewFromInt(200)))
	suite.True(capturedDeltas[suite.cashLedger.LedgerID].Equal(decimal.NewFromInt(-200)))

	suite.mockCompanySvc.AssertExpectations(suite.T())
	suite.mockLedgerRepo.AssertExpectations(suite.T())
	suite.mockVoucherRepo.AssertExpectations(suite.T())
}

func (suite *VoucherServiceTestSuite) TestPostVoucher_AuthorizationFail() {
	ctx := context.Background()
	req := dto.CreateVoucherRequest{VoucherType: domain.VoucherJournal, Narration: "x"}
	authErr := apperrors.ErrForbidden

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(authErr).Once()

	_, err := suite.service.PostVoucher(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, authErr)
	suite.mockCompanySvc.AssertExpectations(suite.T())
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "SaveVoucher", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestPostVoucher_InvalidType() {
	ctx := context.Background()
	req := dto.CreateVoucherRequest{VoucherType: "TRANSFER", Narration: "x"}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()

	_, err := suite.service.PostVoucher(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *VoucherServiceTestSuite) TestPostVoucher_SingleLedger() {
	ctx := context.Background()
	// Two entries hitting the same ledger do not form a valid voucher.
	req := dto.CreateVoucherRequest{
		VoucherType: domain.VoucherJournal,
		Date:        time.Now(),
		Narration:   "Same ledger both sides",
		Entries: []dto.CreateEntryRequest{
			{LedgerID: suite.cashLedger.LedgerID, Direction: domain.Debit, Amount: decimal.NewFromInt(100)},
			{LedgerID: suite.cashLedger.LedgerID, Direction: domain.Credit, Amount: decimal.NewFromInt(100)},
		},
	}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()

	_, err := suite.service.PostVoucher(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrVoucherMinLedgers)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "SaveVoucher", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestPostVoucher_Unbalanced() {
	ctx := context.Background()
	req := dto.CreateVoucherRequest{
		VoucherType: domain.VoucherExpense,
		Date:        time.Now(),
		Narration:   "Unbalanced",
		Entries: []dto.CreateEntryRequest{
			{LedgerID: suite.expenseLedger.LedgerID, Direction: domain.Debit, Amount: decimal.NewFromInt(150)},
			{LedgerID: suite.cashLedger.LedgerID, Direction: domain.Credit, Amount: decimal.NewFromInt(100)},
		},
	}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()

	_, err := suite.service.PostVoucher(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	// Nothing may be written when validation fails.
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "SaveVoucher", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestPostVoucher_LedgerWrongCompany() {
	ctx := context.Background()
	foreignLedger := domain.Ledger{
		LedgerID:  uuid.NewString(),
		CompanyID: uuid.NewString(), // different company
		Type:      domain.Asset,
		IsActive:  true,
	}
	req := dto.CreateVoucherRequest{
		VoucherType: domain.VoucherJournal,
		Date:        time.Now(),
		Narration:   "Cross-company ledger",
		Entries: []dto.CreateEntryRequest{
			{LedgerID: suite.expenseLedger.LedgerID, Direction: domain.Debit, Amount: decimal.NewFromInt(50)},
			{LedgerID: foreignLedger.LedgerID, Direction: domain.Credit, Amount: decimal.NewFromInt(50)},
		},
	}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockLedgerRepo.On("FindLedgersByIDs", ctx, mock.Anything).
		Return(suite.ledgersMap(suite.expenseLedger, foreignLedger), nil).Once()

	_, err := suite.service.PostVoucher(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "SaveVoucher", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestPostVoucher_InactiveLedger() {
	ctx := context.Background()
	inactive := suite.cashLedger
	inactive.IsActive = false
	req := dto.CreateVoucherRequest{
		VoucherType: domain.VoucherExpense,
		Date:        time.Now(),
		Narration:   "Inactive ledger",
		Entries: []dto.CreateEntryRequest{
			{LedgerID: suite.expenseLedger.LedgerID, Direction: domain.Debit, Amount: decimal.NewFromInt(50)},
			{LedgerID: inactive.LedgerID, Direction: domain.Credit, Amount: decimal.NewFromInt(50)},
		},
	}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockLedgerRepo.On("FindLedgersByIDs", ctx, mock.Anything).
		Return(suite.ledgersMap(suite.expenseLedger, inactive), nil).Once()

	_, err := suite.service.PostVoucher(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *VoucherServiceTestSuite) TestPostVoucher_SaveError() {
	ctx := context.Background()
	req := dto.CreateVoucherRequest{
		VoucherType: domain.VoucherExpense,
		Date:        time.Now(),
		Narration:   "Save fails",
		Entries: []dto.CreateEntryRequest{
			{LedgerID: suite.expenseLedger.LedgerID, Direction: domain.Debit, Amount: decimal.NewFromInt(75)},
			{LedgerID: suite.cashLedger.LedgerID, Direction: domain.Credit, Amount: decimal.NewFromInt(75)},
		},
	}
	repoErr := assert.AnError

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockLedgerRepo.On("FindLedgersByIDs", ctx, mock.Anything).
		Return(suite.ledgersMap(suite.expenseLedger, suite.cashLedger), nil).Once()
	suite.mockVoucherRepo.On("SaveVoucher", ctx, mock.Anything, mock.Anything, mock.Anything).Return(repoErr).Once()

	_, err := suite.service.PostVoucher(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.Contains(err.Error(), repoErr.Error())
	suite.mockVoucherRepo.AssertExpectations(suite.T())
}

func (suite *VoucherServiceTestSuite) TestReverseVoucher_Success() {
	ctx := context.Background()
	voucherID := uuid.NewString()
	posted := &domain.Voucher{
		VoucherID:     voucherID,
		CompanyID:     suite.companyID,
		VoucherNumber: 42,
		Status:        domain.VoucherPosted,
	}
	entries := []domain.Entry{
		{EntryID: uuid.NewString(), VoucherID: voucherID, LedgerID: suite.expenseLedger.LedgerID, Direction: domain.Debit, Amount: decimal.NewFromInt(200)},
		{EntryID: uuid.NewString(), VoucherID: voucherID, LedgerID: suite.cashLedger.LedgerID, Direction: domain.Credit, Amount: decimal.NewFromInt(200)},
	}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockVoucherRepo.On("FindVoucherByID", ctx, voucherID).Return(posted, nil).Once()
	suite.mockVoucherRepo.On("CancelVoucher", ctx, voucherID, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	// Entries are attached to the response after the cancel commits.
	suite.mockVoucherRepo.On("FindEntriesByVoucherID", ctx, voucherID).Return(entries, nil).Once()

	reversed, err := suite.service.ReverseVoucher(ctx, suite.companyID, voucherID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.VoucherCancelled, reversed.Status)
	suite.Equal(int64(42), reversed.VoucherNumber)
	suite.Len(reversed.Entries, 2)

	suite.mockVoucherRepo.AssertExpectations(suite.T())
}

func (suite *VoucherServiceTestSuite) TestReverseVoucher_AlreadyCancelled() {
	ctx := context.Background()
	voucherID := uuid.NewString()
	cancelled := &domain.Voucher{
		VoucherID: voucherID,
		CompanyID: suite.companyID,
		Status:    domain.VoucherCancelled,
	}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockVoucherRepo.On("FindVoucherByID", ctx, voucherID).Return(cancelled, nil).Once()

	_, err := suite.service.ReverseVoucher(ctx, suite.companyID, voucherID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrVoucherNotPosted)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "CancelVoucher", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestReverseVoucher_WrongCompany() {
	ctx := context.Background()
	voucherID := uuid.NewString()
	foreign := &domain.Voucher{
		VoucherID: voucherID,
		CompanyID: uuid.NewString(),
		Status:    domain.VoucherPosted,
	}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockVoucherRepo.On("FindVoucherByID", ctx, voucherID).Return(foreign, nil).Once()

	_, err := suite.service.ReverseVoucher(ctx, suite.companyID, voucherID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *VoucherServiceTestSuite) TestEditVoucher_Success() {
	ctx := context.Background()
	voucherID := uuid.NewString()
	posted := &domain.Voucher{
		VoucherID:     voucherID,
		CompanyID:     suite.companyID,
		VoucherNumber: 7,
		VoucherType:   domain.VoucherExpense,
		Status:        domain.VoucherPosted,
	}
	req := dto.CreateVoucherRequest{
		VoucherType: domain.VoucherExpense,
		Date:        time.Now(),
		Narration:   "Corrected amount",
		Entries: []dto.CreateEntryRequest{
			{LedgerID: suite.expenseLedger.LedgerID, Direction: domain.Debit, Amount: decimal.NewFromInt(250)},
			{LedgerID: suite.cashLedger.LedgerID, Direction: domain.Credit, Amount: decimal.NewFromInt(250)},
		},
	}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockVoucherRepo.On("FindVoucherByID", ctx, voucherID).Return(posted, nil).Once()
	// Only the new entries are prepared here; the reversal side is the
	// repository's job, computed inside the replace transaction.
	suite.mockLedgerRepo.On("FindLedgersByIDs", ctx, mock.Anything).
		Return(suite.ledgersMap(suite.expenseLedger, suite.cashLedger), nil).Once()

	var postDeltas map[string]decimal.Decimal
	suite.mockVoucherRepo.On("ReplaceVoucher", ctx, mock.AnythingOfType("*domain.Voucher"), mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			postDeltas = args.Get(3).(map[string]decimal.Decimal)
		}).Return(nil).Once()

	updated, err := suite.service.EditVoucher(ctx, suite.companyID, voucherID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(voucherID, updated.VoucherID)
	suite.Equal(int64(7), updated.VoucherNumber) // number survives the edit
	suite.Equal("Corrected amount", updated.Narration)
	suite.True(updated.TotalDebit.Equal(decimal.NewFromInt(250)))

	suite.True(postDeltas[suite.expenseLedger.LedgerID].Equal(decimal.NewFromInt(250)))
	suite.True(postDeltas[suite.cashLedger.LedgerID].Equal(decimal.NewFromInt(-250)))

	suite.mockVoucherRepo.AssertExpectations(suite.T())
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "FindEntriesByVoucherID", mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestEditVoucher_NotPosted() {
	ctx := context.Background()
	voucherID := uuid.NewString()
	cancelled := &domain.Voucher{
		VoucherID: voucherID,
		CompanyID: suite.companyID,
		Status:    domain.VoucherCancelled,
	}
	req := dto.CreateVoucherRequest{VoucherType: domain.VoucherExpense, Narration: "x"}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockVoucherRepo.On("FindVoucherByID", ctx, voucherID).Return(cancelled, nil).Once()

	_, err := suite.service.EditVoucher(ctx, suite.companyID, voucherID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockVoucherRepo.AssertNotCalled(suite.T(), "ReplaceVoucher", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *VoucherServiceTestSuite) TestGetVoucherByID_WrongCompany() {
	ctx := context.Background()
	voucherID := uuid.NewString()
	foreign := &domain.Voucher{VoucherID: voucherID, CompanyID: uuid.NewString()}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockVoucherRepo.On("FindVoucherByID", ctx, voucherID).Return(foreign, nil).Once()

	_, err := suite.service.GetVoucherByID(ctx, suite.companyID, voucherID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *VoucherServiceTestSuite) TestListVouchers_InvalidTypeFilter() {
	ctx := context.Background()
	badType := "TRANSFER"
	params := dto.ListVouchersParams{VoucherType: &badType}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()

	_, err := suite.service.ListVouchers(ctx, suite.companyID, suite.userID, params)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- Run Test Suite ---
func TestVoucherService(t *testing.T) {
	suite.Run(t, new(VoucherServiceTestSuite))
}

// --- Stateful posting scenarios ---
//
// ledgerBook is an in-memory implementation of the voucher repository and
// ledger reader that actually applies balance deltas, so the post / reverse /
// edit flows can be checked end to end against real arithmetic.
type ledgerBook struct {
	mu         sync.Mutex
	ledgers    map[string]domain.Ledger
	vouchers   map[string]domain.Voucher
	entries    map[string][]domain.Entry
	nextNumber int64
	failNext   error // returned by the next write, which then has no effect
}

var _ portsrepo.VoucherRepositoryFacade = (*ledgerBook)(nil)
var _ portsrepo.LedgerReader = (*ledgerBook)(nil)

func newLedgerBook(ledgers ...domain.Ledger) *ledgerBook {
	b := &ledgerBook{
		ledgers:  make(map[string]domain.Ledger),
		vouchers: make(map[string]domain.Voucher),
		entries:  make(map[string][]domain.Entry),
	}
	for _, l := range ledgers {
		b.ledgers[l.LedgerID] = l
	}
	return b
}

func (b *ledgerBook) applyDeltasLocked(deltas map[string]decimal.Decimal) error {
	for id, delta := range deltas {
		l, ok := b.ledgers[id]
		if !ok {
			return fmt.Errorf("ledger %s: %w", id, apperrors.ErrNotFound)
		}
		l.Balance = l.Balance.Add(delta)
		b.ledgers[id] = l
	}
	return nil
}

// inverseDeltasLocked negates the balance effect of the voucher's current
// entries, the way the real repository does inside its transaction.
func (b *ledgerBook) inverseDeltasLocked(entries []domain.Entry) (map[string]decimal.Decimal, error) {
	deltas := make(map[string]decimal.Decimal)
	for _, e := range entries {
		ledger, ok := b.ledgers[e.LedgerID]
		if !ok {
			return nil, fmt.Errorf("ledger %s: %w", e.LedgerID, apperrors.ErrIntegrity)
		}
		signed, err := accounting.CalculateSignedAmount(e, ledger.Type)
		if err != nil {
			return nil, err
		}
		deltas[e.LedgerID] = deltas[e.LedgerID].Sub(signed)
	}
	return deltas, nil
}

// takeFaultLocked pops the injected fault, if any. A faulted write returns the
// error before touching any state, like a rolled-back transaction.
func (b *ledgerBook) takeFaultLocked() error {
	err := b.failNext
	b.failNext = nil
	return err
}

func (b *ledgerBook) SaveVoucher(ctx context.Context, voucher *domain.Voucher, entries []domain.Entry, deltas map[string]decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.takeFaultLocked(); err != nil {
		return err
	}
	if err := b.applyDeltasLocked(deltas); err != nil {
		return err
	}
	b.nextNumber++
	voucher.VoucherNumber = b.nextNumber
	b.vouchers[voucher.VoucherID] = *voucher
	b.entries[voucher.VoucherID] = entries
	return nil
}

func (b *ledgerBook) CancelVoucher(ctx context.Context, voucherID string, userID string, now time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.takeFaultLocked(); err != nil {
		return err
	}
	v, ok := b.vouchers[voucherID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if v.Status != domain.VoucherPosted {
		return apperrors.ErrConflict
	}
	deltas, err := b.inverseDeltasLocked(b.entries[voucherID])
	if err != nil {
		return err
	}
	if err := b.applyDeltasLocked(deltas); err != nil {
		return err
	}
	v.Status = domain.VoucherCancelled
	b.vouchers[voucherID] = v
	return nil
}

func (b *ledgerBook) ReplaceVoucher(ctx context.Context, voucher *domain.Voucher, newEntries []domain.Entry, postDeltas map[string]decimal.Decimal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.takeFaultLocked(); err != nil {
		return err
	}
	existing, ok := b.vouchers[voucher.VoucherID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if existing.Status != domain.VoucherPosted {
		return apperrors.ErrConflict
	}
	reverseDeltas, err := b.inverseDeltasLocked(b.entries[voucher.VoucherID])
	if err != nil {
		return err
	}
	if err := b.applyDeltasLocked(reverseDeltas); err != nil {
		return err
	}
	if err := b.applyDeltasLocked(postDeltas); err != nil {
		return err
	}
	b.vouchers[voucher.VoucherID] = *voucher
	b.entries[voucher.VoucherID] = newEntries
	return nil
}

func (b *ledgerBook) FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.vouchers[voucherID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &v, nil
}

func (b *ledgerBook) FindEntriesByVoucherID(ctx context.Context, voucherID string) ([]domain.Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Entry(nil), b.entries[voucherID]...), nil
}

func (b *ledgerBook) FindEntriesByVoucherIDs(ctx context.Context, voucherIDs []string) (map[string][]domain.Entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string][]domain.Entry)
	for _, id := range voucherIDs {
		out[id] = append([]domain.Entry(nil), b.entries[id]...)
	}
	return out, nil
}

func (b *ledgerBook) ListVouchersByCompany(ctx context.Context, companyID string, filter portsrepo.ListVouchersFilter, limit int, nextToken *string) ([]domain.Voucher, *string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.Voucher
	for _, v := range b.vouchers {
		if v.CompanyID == companyID {
			out = append(out, v)
		}
	}
	return out, nil, nil
}

func (b *ledgerBook) FindLedgerByID(ctx context.Context, ledgerID string) (*domain.Ledger, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.ledgers[ledgerID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &l, nil
}

func (b *ledgerBook) FindLedgersByIDs(ctx context.Context, ledgerIDs []string) (map[string]domain.Ledger, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]domain.Ledger)
	for _, id := range ledgerIDs {
		if l, ok := b.ledgers[id]; ok {
			out[id] = l
		}
	}
	return out, nil
}

func (b *ledgerBook) ListLedgers(ctx context.Context, companyID string, limit int, offset int, includeInactive bool) ([]domain.Ledger, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.Ledger
	for _, l := range b.ledgers {
		if l.CompanyID == companyID && (includeInactive || l.IsActive) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (b *ledgerBook) balance(ledgerID string) decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ledgers[ledgerID].Balance
}

func (b *ledgerBook) injectFault(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failNext = err
}

func (b *ledgerBook) voucherCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.vouchers)
}

func newPostingFixture(t *testing.T) (portssvc.VoucherSvcFacade, *ledgerBook, string, string, domain.Ledger, domain.Ledger, domain.Ledger) {
	t.Helper()
	companyID := uuid.NewString()
	userID := uuid.NewString()

	expense := domain.Ledger{
		LedgerID: uuid.NewString(), CompanyID: companyID, Name: "Feed Purchases",
		Group: domain.GroupDirectExpenses, Type: domain.Expense, IsActive: true,
	}
	cash := domain.Ledger{
		LedgerID: uuid.NewString(), CompanyID: companyID, Name: "Cash",
		Group: domain.GroupCashInHand, Type: domain.Asset,
		Balance: decimal.NewFromInt(1000), IsActive: true,
	}
	income := domain.Ledger{
		LedgerID: uuid.NewString(), CompanyID: companyID, Name: "Milk Sales",
		Group: domain.GroupSalesAccounts, Type: domain.Income, IsActive: true,
	}

	book := newLedgerBook(expense, cash, income)

	companySvc := new(MockCompanyService)
	companySvc.On("AuthorizeUserAction", mock.Anything, userID, companyID, mock.Anything).Return(nil)

	svc := services.NewVoucherService(book, book, companySvc)
	return svc, book, companyID, userID, expense, cash, income
}

func TestPostThenReverseRestoresBalances(t *testing.T) {
	svc, book, companyID, userID, expense, cash, _ := newPostingFixture(t)
	ctx := context.Background()

	req := dto.CreateVoucherRequest{
		VoucherType: domain.VoucherExpense,
		Date:        time.Now(),
		Narration:   "Cattle feed paid in cash",
		Entries: []dto.CreateEntryRequest{
			{LedgerID: expense.LedgerID, Direction: domain.Debit, Amount: decimal.NewFromInt(200)},
			{LedgerID: cash.LedgerID, Direction: domain.Credit, Amount: decimal.NewFromInt(200)},
		},
	}

	voucher, err := svc.PostVoucher(ctx, companyID, req, userID)
	require.NoError(t, err)
	require.Equal(t, int64(1), voucher.VoucherNumber)
	require.True(t, book.balance(expense.LedgerID).Equal(decimal.NewFromInt(200)))
	require.True(t, book.balance(cash.LedgerID).Equal(decimal.NewFromInt(800)))

	reversed, err := svc.ReverseVoucher(ctx, companyID, voucher.VoucherID, userID)
	require.NoError(t, err)
	require.Equal(t, domain.VoucherCancelled, reversed.Status)
	require.True(t, book.balance(expense.LedgerID).IsZero())
	require.True(t, book.balance(cash.LedgerID).Equal(decimal.NewFromInt(1000)))

	// A second reversal must fail and leave balances untouched.
	_, err = svc.ReverseVoucher(ctx, companyID, voucher.VoucherID, userID)
	require.ErrorIs(t, err, apperrors.ErrConflict)
	require.True(t, book.balance(cash.LedgerID).Equal(decimal.NewFromInt(1000)))
}

func TestPostMultiEntryVoucher(t *testing.T) {
	svc, book, companyID, userID, expense, cash, income := newPostingFixture(t)
	ctx := context.Background()

	// Debit cash 150, credit milk sales 50 and expense refund 100.
	req := dto.CreateVoucherRequest{
		VoucherType: domain.VoucherIncome,
		Date:        time.Now(),
		Narration:   "Milk sale with feed refund",
		Entries: []dto.CreateEntryRequest{
			{LedgerID: cash.LedgerID, Direction: domain.Debit, Amount: decimal.NewFromInt(150)},
			{LedgerID: income.LedgerID, Direction: domain.Credit, Amount: decimal.NewFromInt(50)},
			{LedgerID: expense.LedgerID, Direction: domain.Credit, Amount: decimal.NewFromInt(100)},
		},
	}

	_, err := svc.PostVoucher(ctx, companyID, req, userID)
	require.NoError(t, err)

	// Cash (asset, normal debit) goes up; income moves credit-side positive;
	// the expense credit decreases its debit-normal balance.
	require.True(t, book.balance(cash.LedgerID).Equal(decimal.NewFromInt(1150)))
	require.True(t, book.balance(income.LedgerID).Equal(decimal.NewFromInt(50)))
	require.True(t, book.balance(expense.LedgerID).Equal(decimal.NewFromInt(-100)))
}

func TestEditVoucherAdjustsBalances(t *testing.T) {
	svc, book, companyID, userID, expense, cash, _ := newPostingFixture(t)
	ctx := context.Background()

	post := dto.CreateVoucherRequest{
		VoucherType: domain.VoucherExpense,
		Date:        time.Now(),
		Narration:   "Feed purchase",
		Entries: []dto.CreateEntryRequest{
			{LedgerID: expense.LedgerID, Direction: domain.Debit, Amount: decimal.NewFromInt(200)},
			{LedgerID: cash.LedgerID, Direction: domain.Credit, Amount: decimal.NewFromInt(200)},
		},
	}
	voucher, err := svc.PostVoucher(ctx, companyID, post, userID)
	require.NoError(t, err)

	edit := post
	edit.Narration = "Feed purchase (corrected)"
	edit.Entries = []dto.CreateEntryRequest{
		{LedgerID: expense.LedgerID, Direction: domain.Debit, Amount: decimal.NewFromInt(250)},
		{LedgerID: cash.LedgerID, Direction: domain.Credit, Amount: decimal.NewFromInt(250)},
	}

	updated, err := svc.EditVoucher(ctx, companyID, voucher.VoucherID, edit, userID)
	require.NoError(t, err)
	require.Equal(t, voucher.VoucherNumber, updated.VoucherNumber)

	// Net effect is as if only the corrected voucher had ever been posted.
	require.True(t, book.balance(expense.LedgerID).Equal(decimal.NewFromInt(250)))
	require.True(t, book.balance(cash.LedgerID).Equal(decimal.NewFromInt(750)))
}

func TestConcurrentPostsNoLostUpdate(t *testing.T) {
	svc, book, companyID, userID, expense, cash, _ := newPostingFixture(t)
	ctx := context.Background()

	const posts = 20
	var wg sync.WaitGroup
	errs := make(chan error, posts)
	for i := 0; i < posts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := dto.CreateVoucherRequest{
				VoucherType: domain.VoucherExpense,
				Date:        time.Now(),
				Narration:   "Concurrent feed purchase",
				Entries: []dto.CreateEntryRequest{
					{LedgerID: expense.LedgerID, Direction: domain.Debit, Amount: decimal.NewFromInt(10)},
					{LedgerID: cash.LedgerID, Direction: domain.Credit, Amount: decimal.NewFromInt(10)},
				},
			}
			_, err := svc.PostVoucher(ctx, companyID, req, userID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.True(t, book.balance(expense.LedgerID).Equal(decimal.NewFromInt(10*posts)))
	require.True(t, book.balance(cash.LedgerID).Equal(decimal.NewFromInt(1000-10*posts)))
}

func TestConcurrentEditsKeepBooksConsistent(t *testing.T) {
	svc, book, companyID, userID, expense, cash, _ := newPostingFixture(t)
	ctx := context.Background()

	post := dto.CreateVoucherRequest{
		VoucherType: domain.VoucherExpense,
		Date:        time.Now(),
		Narration:   "Feed purchase",
		Entries: []dto.CreateEntryRequest{
			{LedgerID: expense.LedgerID, Direction: domain.Debit, Amount: decimal.NewFromInt(200)},
			{LedgerID: cash.LedgerID, Direction: domain.Credit, Amount: decimal.NewFromInt(200)},
		},
	}
	voucher, err := svc.PostVoucher(ctx, companyID, post, userID)
	require.NoError(t, err)

	// Two edits race on the same voucher. Each reversal must target the entry
	// set current at commit time, so the outcome is always one of the two
	// serial orders, never a double-reversal of the original entries.
	amounts := []int64{250, 300}
	var wg sync.WaitGroup
	errs := make(chan error, len(amounts))
	for _, amount := range amounts {
		wg.Add(1)
		go func(amount int64) {
			defer wg.Done()
			edit := post
			edit.Entries = []dto.CreateEntryRequest{
				{LedgerID: expense.LedgerID, Direction: domain.Debit, Amount: decimal.NewFromInt(amount)},
				{LedgerID: cash.LedgerID, Direction: domain.Credit, Amount: decimal.NewFromInt(amount)},
			}
			_, err := svc.EditVoucher(ctx, companyID, voucher.VoucherID, edit, userID)
			errs <- err
		}(amount)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	// Whichever edit committed last fully determines the books.
	expenseBal := book.balance(expense.LedgerID)
	require.True(t, expenseBal.Equal(decimal.NewFromInt(250)) || expenseBal.Equal(decimal.NewFromInt(300)),
		"expense balance %s matches neither serial order", expenseBal)
	require.True(t, book.balance(cash.LedgerID).Equal(decimal.NewFromInt(1000).Sub(expenseBal)))
}

func TestFailedPostLeavesNoTrace(t *testing.T) {
	svc, book, companyID, userID, expense, cash, _ := newPostingFixture(t)
	ctx := context.Background()

	req := dto.CreateVoucherRequest{
		VoucherType: domain.VoucherExpense,
		Date:        time.Now(),
		Narration:   "Feed purchase",
		Entries: []dto.CreateEntryRequest{
			{LedgerID: expense.LedgerID, Direction: domain.Debit, Amount: decimal.NewFromInt(200)},
			{LedgerID: cash.LedgerID, Direction: domain.Credit, Amount: decimal.NewFromInt(200)},
		},
	}
	_, err := svc.PostVoucher(ctx, companyID, req, userID)
	require.NoError(t, err)

	book.injectFault(assert.AnError)
	_, err = svc.PostVoucher(ctx, companyID, req, userID)
	require.Error(t, err)

	// The failed post must not move a single balance or leave a voucher behind.
	require.True(t, book.balance(expense.LedgerID).Equal(decimal.NewFromInt(200)))
	require.True(t, book.balance(cash.LedgerID).Equal(decimal.NewFromInt(800)))
	require.Equal(t, 1, book.voucherCount())

	// And the books are usable again once the fault clears.
	_, err = svc.PostVoucher(ctx, companyID, req, userID)
	require.NoError(t, err)
	require.True(t, book.balance(expense.LedgerID).Equal(decimal.NewFromInt(400)))
}

func TestFailedEditLeavesVoucherIntact(t *testing.T) {
	svc, book, companyID, userID, expense, cash, _ := newPostingFixture(t)
	ctx := context.Background()

	post := dto.CreateVoucherRequest{
		VoucherType: domain.VoucherExpense,
		Date:        time.Now(),
		Narration:   "Feed purchase",
		Entries: []dto.CreateEntryRequest{
			{LedgerID: expense.LedgerID, Direction: domain.Debit, Amount: decimal.NewFromInt(200)},
			{LedgerID: cash.LedgerID, Direction: domain.Credit, Amount: decimal.NewFromInt(200)},
		},
	}
	voucher, err := svc.PostVoucher(ctx, companyID, post, userID)
	require.NoError(t, err)

	edit := post
	edit.Entries = []dto.CreateEntryRequest{
		{LedgerID: expense.LedgerID, Direction: domain.Debit, Amount: decimal.NewFromInt(250)},
		{LedgerID: cash.LedgerID, Direction: domain.Credit, Amount: decimal.NewFromInt(250)},
	}
	book.injectFault(assert.AnError)
	_, err = svc.EditVoucher(ctx, companyID, voucher.VoucherID, edit, userID)
	require.Error(t, err)

	// Neither the reversal half nor the repost half may stick.
	require.True(t, book.balance(expense.LedgerID).Equal(decimal.NewFromInt(200)))
	require.True(t, book.balance(cash.LedgerID).Equal(decimal.NewFromInt(800)))

	// The voucher is still POSTED with its original entries and can be
	// reversed normally.
	reversed, err := svc.ReverseVoucher(ctx, companyID, voucher.VoucherID, userID)
	require.NoError(t, err)
	require.Equal(t, domain.VoucherCancelled, reversed.Status)
	require.True(t, book.balance(expense.LedgerID).IsZero())
	require.True(t, book.balance(cash.LedgerID).Equal(decimal.NewFromInt(1000)))
}
