package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/secure_pay/internal/apperrors"
	"github.com/SscSPs/secure_pay/internal/core/domain"
	portssvc "github.com/SscSPs/secure_pay/internal/core/ports/services"
	"github.com/SscSPs/secure_pay/internal/core/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	accounts  *MockAccountRepository
	ledger    *MockLedgerRepository
	recorder  *outcomeRecorder
	service   portssvc.LedgerSvcFacade
	sender    *domain.Account
	recipient *domain.Account
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.accounts = new(MockAccountRepository)
	suite.ledger = new(MockLedgerRepository)
	suite.recorder = &outcomeRecorder{}
	suite.service = services.NewLedgerService(suite.accounts, suite.ledger, suite.recorder, services.RetryPolicy{MaxAttempts: 2})
	suite.sender = activeAccount("sender", "01700000001", domain.RoleAgent, 500)
	suite.recipient = activeAccount("recipient", "01700000002", domain.RoleUser, 0)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (suite *LedgerServiceTestSuite) expectParties(ctx context.Context) {
	suite.accounts.On("FindAccountByID", ctx, "sender").Return(suite.sender, nil).Once()
	suite.accounts.On("FindAccountByMobile", ctx, "01700000002").Return(suite.recipient, nil).Once()
}

func (suite *LedgerServiceTestSuite) TestTransfer_Success() {
	ctx := context.Background()
	suite.expectParties(ctx)
	suite.ledger.On("ApplyTransfer", ctx, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.AccountID == "sender" && e.CounterpartyID == "recipient" && e.Amount == 200 &&
			e.Kind == domain.EntryTransfer && e.IdempotencyKey != ""
	}), mock.MatchedBy(func(ev domain.LedgerEvent) bool {
		return ev.Type == domain.EventTransferCompleted
	})).Return(&domain.LedgerEntry{EntryID: "e1", AccountID: "sender", Amount: 200, BalanceAfter: 300}, nil).Once()

	entry, err := suite.service.Transfer(ctx, "sender", "017-0000-0002", 200, "")
	suite.Require().NoError(err)
	suite.Equal(int64(300), entry.BalanceAfter)
	suite.Equal([]string{"transfer:success"}, suite.recorder.all())
	suite.ledger.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestTransfer_InvalidAmounts() {
	for _, amount := range []int64{0, -1, domain.MaxAmount + 1} {
		_, err := suite.service.Transfer(context.Background(), "sender", "01700000002", amount, "")
		suite.ErrorIs(err, apperrors.ErrInvalidAmount, "amount %d", amount)
	}
	suite.accounts.AssertNotCalled(suite.T(), "FindAccountByID", mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestTransfer_SenderInactive() {
	ctx := context.Background()
	suite.sender.Status = domain.StatusPending
	suite.expectParties(ctx)

	_, err := suite.service.Transfer(ctx, "sender", "01700000002", 10, "")
	suite.ErrorIs(err, apperrors.ErrAccountInactive)
}

func (suite *LedgerServiceTestSuite) TestTransfer_UnknownOrInactiveRecipient() {
	ctx := context.Background()
	suite.accounts.On("FindAccountByID", ctx, "sender").Return(suite.sender, nil)
	suite.accounts.On("FindAccountByMobile", ctx, "01799999999").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.Transfer(ctx, "sender", "01799999999", 10, "")
	suite.ErrorIs(err, apperrors.ErrRecipientNotFound)

	suite.recipient.Status = domain.StatusBlocked
	suite.accounts.On("FindAccountByMobile", ctx, "01700000002").Return(suite.recipient, nil).Once()
	_, err = suite.service.Transfer(ctx, "sender", "01700000002", 10, "")
	suite.ErrorIs(err, apperrors.ErrRecipientNotFound)
}

func (suite *LedgerServiceTestSuite) TestTransfer_SelfTransfer() {
	ctx := context.Background()
	suite.accounts.On("FindAccountByID", ctx, "sender").Return(suite.sender, nil).Once()
	suite.accounts.On("FindAccountByMobile", ctx, "01700000001").Return(suite.sender, nil).Once()

	_, err := suite.service.Transfer(ctx, "sender", "01700000001", 10, "")
	suite.ErrorIs(err, apperrors.ErrSameAccount)
}

func (suite *LedgerServiceTestSuite) TestTransfer_PredicateFailureIsInsufficientBalance() {
	ctx := context.Background()
	suite.expectParties(ctx)
	suite.ledger.On("ApplyTransfer", ctx, mock.Anything, mock.Anything).Return(nil, apperrors.ErrPredicateFailed).Once()
	suite.accounts.On("FindAccountByID", ctx, "sender").Return(activeAccount("sender", "01700000001", domain.RoleAgent, 5), nil).Once()

	_, err := suite.service.Transfer(ctx, "sender", "01700000002", 600, "")
	suite.ErrorIs(err, apperrors.ErrInsufficientBalance)
	suite.Equal([]string{"transfer:rejected"}, suite.recorder.all())
}

func (suite *LedgerServiceTestSuite) TestTransfer_PredicateFailureAfterBlockIsInactive() {
	ctx := context.Background()
	suite.expectParties(ctx)
	suite.ledger.On("ApplyTransfer", ctx, mock.Anything, mock.Anything).Return(nil, apperrors.ErrPredicateFailed).Once()
	blocked := activeAccount("sender", "01700000001", domain.RoleAgent, 500)
	blocked.Status = domain.StatusBlocked
	suite.accounts.On("FindAccountByID", ctx, "sender").Return(blocked, nil).Once()

	_, err := suite.service.Transfer(ctx, "sender", "01700000002", 100, "")
	suite.ErrorIs(err, apperrors.ErrAccountInactive)
}

func (suite *LedgerServiceTestSuite) TestTransfer_ReplayReturnsOriginalEntry() {
	ctx := context.Background()
	prior := &domain.LedgerEntry{EntryID: "e1", Kind: domain.EntryTransfer, AccountID: "sender", CounterpartyID: "recipient", Amount: 200, IdempotencyKey: "k1"}
	suite.expectParties(ctx)
	suite.ledger.On("FindEntryByIdempotencyKey", ctx, "sender", "k1").Return(prior, nil).Once()

	entry, err := suite.service.Transfer(ctx, "sender", "01700000002", 200, "k1")
	suite.Require().NoError(err)
	suite.Equal("e1", entry.EntryID)
	suite.Equal([]string{"transfer:replayed"}, suite.recorder.all())
	suite.ledger.AssertNotCalled(suite.T(), "ApplyTransfer", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestTransfer_ReplayAfterRecipientBlocked() {
	ctx := context.Background()
	prior := &domain.LedgerEntry{EntryID: "e1", Kind: domain.EntryTransfer, AccountID: "sender", CounterpartyID: "recipient", Amount: 200, IdempotencyKey: "k1"}
	suite.recipient.Status = domain.StatusBlocked
	suite.expectParties(ctx)
	suite.ledger.On("FindEntryByIdempotencyKey", ctx, "sender", "k1").Return(prior, nil).Once()

	entry, err := suite.service.Transfer(ctx, "sender", "01700000002", 200, "k1")
	suite.Require().NoError(err)
	suite.Equal("e1", entry.EntryID)
}

func (suite *LedgerServiceTestSuite) TestTransfer_KeyReusedForDifferentAmount() {
	ctx := context.Background()
	prior := &domain.LedgerEntry{EntryID: "e1", Kind: domain.EntryTransfer, AccountID: "sender", CounterpartyID: "recipient", Amount: 200, IdempotencyKey: "k1"}
	suite.expectParties(ctx)
	suite.ledger.On("FindEntryByIdempotencyKey", ctx, "sender", "k1").Return(prior, nil).Once()

	_, err := suite.service.Transfer(ctx, "sender", "01700000002", 300, "k1")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestTransfer_KeyReusedForDifferentRecipient() {
	ctx := context.Background()
	prior := &domain.LedgerEntry{EntryID: "e1", Kind: domain.EntryTransfer, AccountID: "sender", CounterpartyID: "someone-else", Amount: 200, IdempotencyKey: "k1"}
	suite.expectParties(ctx)
	suite.ledger.On("FindEntryByIdempotencyKey", ctx, "sender", "k1").Return(prior, nil).Once()

	entry, err := suite.service.Transfer(ctx, "sender", "01700000002", 200, "k1")
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(entry)
	suite.Equal([]string{"transfer:rejected"}, suite.recorder.all())
	suite.ledger.AssertNotCalled(suite.T(), "ApplyTransfer", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestTransfer_RetryAfterLostCommitReplays() {
	ctx := context.Background()
	suite.expectParties(ctx)
	suite.ledger.On("FindEntryByIdempotencyKey", ctx, "sender", "k2").Return(nil, apperrors.ErrNotFound).Once()
	suite.ledger.On("ApplyTransfer", ctx, mock.Anything, mock.Anything).
		Return(nil, apperrors.Unavailable("commit failed", errors.New("conn reset"))).Once()
	suite.ledger.On("ApplyTransfer", ctx, mock.Anything, mock.Anything).Return(nil, apperrors.ErrDuplicate).Once()
	committed := &domain.LedgerEntry{EntryID: "e2", Kind: domain.EntryTransfer, AccountID: "sender", CounterpartyID: "recipient", Amount: 50, IdempotencyKey: "k2"}
	suite.ledger.On("FindEntryByIdempotencyKey", ctx, "sender", "k2").Return(committed, nil).Once()

	entry, err := suite.service.Transfer(ctx, "sender", "01700000002", 50, "k2")
	suite.Require().NoError(err)
	suite.Equal("e2", entry.EntryID)
	suite.ledger.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestTransfer_UnavailableAfterRetriesSurfaces() {
	ctx := context.Background()
	suite.expectParties(ctx)
	suite.ledger.On("ApplyTransfer", ctx, mock.Anything, mock.Anything).
		Return(nil, apperrors.Unavailable("begin failed", errors.New("refused"))).Twice()

	_, err := suite.service.Transfer(ctx, "sender", "01700000002", 50, "")
	suite.ErrorIs(err, apperrors.ErrStoreUnavailable)
	suite.Equal([]string{"transfer:error"}, suite.recorder.all())
}

func (suite *LedgerServiceTestSuite) TestTransfer_RejectionReadFailureSurfacesUnavailable() {
	ctx := context.Background()
	suite.expectParties(ctx)
	suite.ledger.On("ApplyTransfer", ctx, mock.Anything, mock.Anything).Return(nil, apperrors.ErrPredicateFailed).Once()
	suite.accounts.On("FindAccountByID", ctx, "sender").
		Return(nil, apperrors.Unavailable("query failed", errors.New("conn reset"))).Twice()

	_, err := suite.service.Transfer(ctx, "sender", "01700000002", 600, "")
	suite.ErrorIs(err, apperrors.ErrStoreUnavailable)
	suite.NotErrorIs(err, apperrors.ErrInsufficientBalance)
	suite.Equal([]string{"transfer:error"}, suite.recorder.all())
}

func (suite *LedgerServiceTestSuite) TestCashOut_Success() {
	ctx := context.Background()
	suite.accounts.On("FindAccountByID", ctx, "sender").Return(suite.sender, nil).Once()
	suite.ledger.On("ApplyCashOut", ctx, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.Kind == domain.EntryCashOut && e.Amount == 100 && e.CounterpartyID == ""
	}), mock.Anything).Return(&domain.LedgerEntry{EntryID: "c1", BalanceAfter: 400}, nil).Once()

	entry, err := suite.service.CashOut(ctx, "sender", 100, "")
	suite.Require().NoError(err)
	suite.Equal(int64(400), entry.BalanceAfter)
}

func (suite *LedgerServiceTestSuite) TestCashOut_InsufficientBalance() {
	ctx := context.Background()
	suite.accounts.On("FindAccountByID", ctx, "sender").Return(suite.sender, nil).Twice()
	suite.ledger.On("ApplyCashOut", ctx, mock.Anything, mock.Anything).Return(nil, apperrors.ErrPredicateFailed).Once()

	_, err := suite.service.CashOut(ctx, "sender", 501, "")
	suite.ErrorIs(err, apperrors.ErrInsufficientBalance)
}

func (suite *LedgerServiceTestSuite) TestGetBalance() {
	ctx := context.Background()
	suite.accounts.On("FindAccountByID", ctx, "sender").Return(suite.sender, nil).Once()
	suite.accounts.On("FindAccountByID", ctx, "ghost").Return(nil, apperrors.ErrNotFound).Once()

	balance, err := suite.service.GetBalance(ctx, "sender")
	suite.Require().NoError(err)
	suite.Equal(int64(500), balance)

	_, err = suite.service.GetBalance(ctx, "ghost")
	suite.ErrorIs(err, apperrors.ErrAccountNotFound)
}

func (suite *LedgerServiceTestSuite) TestListEntries() {
	ctx := context.Background()
	suite.ledger.On("ListEntriesByAccount", ctx, "sender", 20, 0).Return(nil, nil).Once()

	entries, err := suite.service.ListEntries(ctx, "sender", 0, 0)
	suite.Require().NoError(err)
	suite.NotNil(entries)
}
