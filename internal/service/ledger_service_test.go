package service

import (
	"errors"
	"testing"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/internal/service/mocks"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-ledger/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceTestSuite struct {
	suite.Suite
}

func TestLedgerServiceSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (s *LedgerServiceTestSuite) adjust(
	env *testEnv,
	userID int64,
	direction domain.DirectionType,
	amount string,
) (*AdjustBalanceResult, error) {
	return env.services.Ledger.AdjustBalance(env.ctx(), AdjustBalanceCommand{
		ActorID:     testAdminID,
		UserID:      userID,
		Direction:   direction,
		Amount:      dec(amount),
		Description: "correction",
	})
}

func (s *LedgerServiceTestSuite) TestStrictDebit() {
	env := newTestEnv(s.T(), domain.StrictDebit)
	user := env.user("30.00")

	_, err := s.adjust(env, user.ID, domain.DirectionDebit, "30.01")
	s.Require().ErrorIs(err, domain.ErrInsufficientFunds)
	s.True(dec("30.00").Equal(env.requireConsistent(user.ID).Cached))

	res, err := s.adjust(env, user.ID, domain.DirectionDebit, "30.00")
	s.Require().NoError(err)
	s.True(res.Applied.Equal(res.Requested))
	s.True(env.requireConsistent(user.ID).Cached.IsZero())
}

func (s *LedgerServiceTestSuite) TestClampedDebitRecordsAppliedAmount() {
	env := newTestEnv(s.T(), domain.ClampedDebit)
	user := env.user("30.00")

	res, err := s.adjust(env, user.ID, domain.DirectionDebit, "50.00")
	s.Require().NoError(err)
	s.Equal(domain.ClampedDebit, res.Policy)
	s.True(dec("50.00").Equal(res.Requested))
	s.True(dec("30.00").Equal(res.Applied))
	s.Require().NotNil(res.Transaction)
	s.True(dec("30.00").Equal(res.Transaction.Amount))

	b := env.requireConsistent(user.ID)
	s.True(b.Cached.IsZero())

	// nothing left to take: no zero-amount ledger row
	before := len(env.transactions(user.ID))
	res, err = s.adjust(env, user.ID, domain.DirectionDebit, "10.00")
	s.Require().NoError(err)
	s.True(res.Applied.IsZero())
	s.Nil(res.Transaction)
	s.Len(env.transactions(user.ID), before)
	env.requireConsistent(user.ID)
}

func (s *LedgerServiceTestSuite) TestAdjustValidation() {
	env := newTestEnv(s.T(), domain.StrictDebit)
	user := env.user("0")

	_, err := s.adjust(env, user.ID, domain.DirectionCredit, "0")
	s.Require().ErrorIs(err, domain.ErrValidation)
	_, err = s.adjust(env, user.ID, domain.DirectionCredit, "-5")
	s.Require().ErrorIs(err, domain.ErrValidation)
	_, err = s.adjust(env, user.ID, "bonus", "5")
	s.Require().ErrorIs(err, domain.ErrValidation)
	_, err = s.adjust(env, 777777, domain.DirectionCredit, "5")
	s.Require().ErrorIs(err, domain.ErrValidation)
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *LedgerServiceTestSuite) TestSubCentAmountsAreRejected() {
	env := newTestEnv(s.T(), domain.ClampedDebit)
	user := env.user("10.00")

	for _, amount := range []string{"0.006", "0.004", "1.001"} {
		_, err := s.adjust(env, user.ID, domain.DirectionCredit, amount)
		s.Require().ErrorIs(err, domain.ErrValidation, amount)
		_, err = s.adjust(env, user.ID, domain.DirectionDebit, amount)
		s.Require().ErrorIs(err, domain.ErrValidation, amount)
	}
	s.Len(env.transactions(user.ID), 1)
	b := env.requireConsistent(user.ID)
	s.True(dec("10.00").Equal(b.Cached), b.Cached.String())

	res, err := s.adjust(env, user.ID, domain.DirectionCredit, "1.500")
	s.Require().NoError(err)
	s.True(dec("1.50").Equal(res.Applied))
}

func (s *LedgerServiceTestSuite) TestTransactionsNewestFirst() {
	env := newTestEnv(s.T(), domain.StrictDebit)
	user := env.user("10.00")
	_, err := s.adjust(env, user.ID, domain.DirectionDebit, "4.00")
	s.Require().NoError(err)

	txs := env.transactions(user.ID)
	s.Require().Len(txs, 2)
	s.Equal(domain.DirectionDebit, txs[0].Direction)
	s.Equal(domain.DirectionCredit, txs[1].Direction)
	s.Equal(ReferenceAdjustment, txs[0].ReferenceType)
	// the operator lives in the audit entry, adjustments reference nothing
	s.Zero(txs[0].ReferenceID)

	b := env.requireConsistent(user.ID)
	s.True(dec("10.00").Equal(b.Credit))
	s.True(dec("4.00").Equal(b.Debit))
	s.True(dec("6.00").Equal(b.Ledger()))

	history, histErr := env.services.Audit.History(env.ctx(), domain.AggregateUser, user.ID, 0)
	s.Require().NoError(histErr)
	s.Len(history, 2)
}

func (s *LedgerServiceTestSuite) TestStorageErrorBecomesPersistence() {
	ctrl := gomock.NewController(s.T())
	mockUOW := uowmocks.NewMockUOW(ctrl)
	mockUserRepo := mocks.NewMockUserRepository(ctrl)
	mockBlRepo := mocks.NewMockBalanceTransactionRepository(ctrl)

	mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.UserRepoName)).Return(mockUserRepo, nil)
	mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.BalanceTransactionRepoName)).Return(mockBlRepo, nil)

	ledger, err := NewLedgerService(mockUOW, nil, logrus.New())
	s.Require().NoError(err)

	mockUserRepo.EXPECT().FindByID(gomock.Any(), int64(1)).
		Return(&domain.User{ID: 1, Balance: decimal.NewFromInt(5)}, nil)
	mockBlRepo.EXPECT().GetUserBalance(gomock.Any(), int64(1)).
		Return(nil, errors.New("connection reset"))

	_, err = ledger.GetUserBalance(s.T().Context(), 1)
	s.Require().ErrorIs(err, domain.ErrPersistence)

	mockUserRepo.EXPECT().FindByID(gomock.Any(), int64(2)).Return(nil, domain.ErrRecordNotFound)
	_, err = ledger.GetUserBalance(s.T().Context(), 2)
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
	s.Require().NotErrorIs(err, domain.ErrPersistence)
}

func (s *LedgerServiceTestSuite) TestApplyRejectsOverdraftWithoutWrites() {
	ctrl := gomock.NewController(s.T())
	mockTX := uowmocks.NewMockTX(ctrl)
	mockUOW := uowmocks.NewMockUOW(ctrl)
	mockUOW.EXPECT().GetRepository(gomock.Any()).Return(mocks.NewMockUserRepository(ctrl), nil)
	mockUOW.EXPECT().GetRepository(gomock.Any()).Return(mocks.NewMockBalanceTransactionRepository(ctrl), nil)

	ledger, err := NewLedgerService(mockUOW, nil, logrus.New())
	s.Require().NoError(err)

	// no repository is requested from the transaction
	mockTX.EXPECT().Get(gomock.Any()).Times(0)

	user := &domain.User{ID: 3, Balance: dec("9.99")}
	_, err = ledger.Apply(s.T().Context(), mockTX, LedgerEntryArgs{
		User:      user,
		Direction: domain.DirectionDebit,
		Amount:    dec("10.00"),
	})
	s.Require().ErrorIs(err, domain.ErrInsufficientFunds)
	s.True(dec("9.99").Equal(user.Balance))
}
