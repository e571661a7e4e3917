package service

import (
	"context"
	"testing"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

type BalanceRequestServiceTestSuite struct {
	suite.Suite
	env *testEnv
}

func TestBalanceRequestServiceSuite(t *testing.T) {
	suite.Run(t, new(BalanceRequestServiceTestSuite))
}

func (s *BalanceRequestServiceTestSuite) SetupTest() {
	s.env = newTestEnv(s.T(), domain.StrictDebit)
}

func (s *BalanceRequestServiceTestSuite) request(userID int64, amount string) *domain.BalanceRequest {
	req, err := s.env.services.BalanceRequests.Create(s.env.ctx(), CreateBalanceRequestCommand{
		UserID:        userID,
		Amount:        dec(amount),
		PaymentMethod: "bank_transfer",
	})
	s.Require().NoError(err)
	s.Require().Equal(domain.BalanceRequestPending, req.Status)
	return req
}

// Scenario D: near-simultaneous approvals credit once.
func (s *BalanceRequestServiceTestSuite) TestConcurrentApprovalCreditsOnce() {
	user := s.env.user("0")
	req := s.request(user.ID, "20.00")

	errs := make([]error, 2)
	start := make(chan struct{})
	var g errgroup.Group
	for i := range errs {
		g.Go(func() error {
			<-start
			_, errs[i] = s.env.services.BalanceRequests.Approve(context.Background(), DecideBalanceRequestCommand{
				ActorID:   testAdminID,
				RequestID: req.ID,
			})
			return nil
		})
	}
	close(start)
	s.Require().NoError(g.Wait())

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.Require().ErrorIs(err, domain.ErrNotPending)
		s.Require().ErrorIs(err, domain.ErrConflict)
	}
	s.Equal(1, succeeded)

	txs := s.env.transactions(user.ID)
	s.Require().Len(txs, 1)
	s.True(dec("20.00").Equal(txs[0].Amount))
	s.Equal(ReferenceBalanceRequest, txs[0].ReferenceType)
	s.Equal(req.ID, txs[0].ReferenceID)
	s.True(dec("20.00").Equal(s.env.requireConsistent(user.ID).Cached))
}

func (s *BalanceRequestServiceTestSuite) TestApproveFinalizes() {
	user := s.env.user("5.00")
	req := s.request(user.ID, "20.00")

	res, err := s.env.services.BalanceRequests.Approve(s.env.ctx(), DecideBalanceRequestCommand{
		ActorID:   testAdminID,
		RequestID: req.ID,
		AdminNote: "paid",
	})
	s.Require().NoError(err)
	s.Equal(domain.BalanceRequestApproved, res.Request.Status)
	s.Require().NotNil(res.Request.ProcessedBy)
	s.Equal(testAdminID, *res.Request.ProcessedBy)
	s.NotNil(res.Request.ProcessedAt)
	s.NotNil(res.Transaction)
	s.True(dec("25.00").Equal(s.env.requireConsistent(user.ID).Cached))

	events := s.env.outboxFor(domain.AggregateBalanceRequest, req.ID)
	s.Equal(1, countChannel(events, domain.OutboxChannelEmail))
	s.Equal(1, countChannel(events, domain.OutboxChannelChat))

	_, err = s.env.services.BalanceRequests.Reject(s.env.ctx(), DecideBalanceRequestCommand{
		ActorID:   testAdminID,
		RequestID: req.ID,
	})
	s.Require().ErrorIs(err, domain.ErrNotPending)
}

func (s *BalanceRequestServiceTestSuite) TestRejectLeavesBalance() {
	user := s.env.user("5.00")
	req := s.request(user.ID, "20.00")

	res, err := s.env.services.BalanceRequests.Reject(s.env.ctx(), DecideBalanceRequestCommand{
		ActorID:   testAdminID,
		RequestID: req.ID,
		AdminNote: "no payment received",
	})
	s.Require().NoError(err)
	s.Equal(domain.BalanceRequestRejected, res.Request.Status)
	s.Nil(res.Transaction)
	s.True(dec("5.00").Equal(s.env.requireConsistent(user.ID).Cached))

	history, histErr := s.env.services.Audit.History(s.env.ctx(), domain.AggregateBalanceRequest, req.ID, 0)
	s.Require().NoError(histErr)
	s.Require().Len(history, 1)
	s.Equal("balance_request.rejected", history[0].Action)
}

func (s *BalanceRequestServiceTestSuite) TestGatewayResult() {
	user := s.env.user("0")
	cmd := GatewayResultCommand{
		UserID:        user.ID,
		Amount:        dec("12.50"),
		Approved:      true,
		Reference:     "pay_123",
		PaymentMethod: "card",
	}

	res, err := s.env.services.BalanceRequests.ApplyGatewayResult(s.env.ctx(), cmd)
	s.Require().NoError(err)
	s.Equal(domain.BalanceRequestApproved, res.Request.Status)
	s.Equal(domain.SystemActorID, *res.Request.ProcessedBy)
	s.Equal("pay_123", *res.Request.ExternalReference)

	_, err = s.env.services.BalanceRequests.ApplyGatewayResult(s.env.ctx(), cmd)
	s.Require().ErrorIs(err, domain.ErrConflict)
	s.Len(s.env.transactions(user.ID), 1)
	s.True(dec("12.50").Equal(s.env.requireConsistent(user.ID).Cached))

	cmd.Reference = "pay_124"
	cmd.Approved = false
	res, err = s.env.services.BalanceRequests.ApplyGatewayResult(s.env.ctx(), cmd)
	s.Require().NoError(err)
	s.Equal(domain.BalanceRequestRejected, res.Request.Status)
	s.Len(s.env.transactions(user.ID), 1)
}

func (s *BalanceRequestServiceTestSuite) TestValidation() {
	user := s.env.user("0")
	svc := s.env.services.BalanceRequests

	_, err := svc.Create(s.env.ctx(), CreateBalanceRequestCommand{UserID: user.ID, Amount: dec("0"), PaymentMethod: "card"})
	s.Require().ErrorIs(err, domain.ErrValidation)
	_, err = svc.Create(s.env.ctx(), CreateBalanceRequestCommand{UserID: user.ID, Amount: dec("0.006"), PaymentMethod: "card"})
	s.Require().ErrorIs(err, domain.ErrValidation)
	_, err = svc.Create(s.env.ctx(), CreateBalanceRequestCommand{UserID: user.ID, Amount: dec("1"), PaymentMethod: " "})
	s.Require().ErrorIs(err, domain.ErrValidation)
	_, err = svc.Create(s.env.ctx(), CreateBalanceRequestCommand{UserID: 99999, Amount: dec("1"), PaymentMethod: "card"})
	s.Require().ErrorIs(err, domain.ErrValidation)

	_, err = svc.Approve(s.env.ctx(), DecideBalanceRequestCommand{ActorID: testAdminID, RequestID: 99999})
	s.Require().ErrorIs(err, domain.ErrValidation)
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)

	_, err = svc.ApplyGatewayResult(s.env.ctx(), GatewayResultCommand{
		UserID: user.ID, Amount: dec("1"), Approved: true, PaymentMethod: "card",
	})
	s.Require().ErrorIs(err, domain.ErrValidation)
}
