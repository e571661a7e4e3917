package pgrepo_test

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/pgrepo"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/internal/service"
	"github.com/fsdevblog/groph-ledger/internal/service/psswd"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

const (
	dsnEnv        = "LEDGER_TEST_DATABASE_URI"
	migrationsDir = "../../db/migrations"
	adminActor    = int64(1)
)

// PostgresTestSuite runs against a real database: row locks, lock timeouts and constraint mapping cannot be
// checked with the in-memory store.
type PostgresTestSuite struct {
	suite.Suite
	pool     *pgxpool.Pool
	uow      *uow.UnitOfWork
	services *service.AppServices
	users    *pgrepo.UserRepository
	orders   *pgrepo.OrderRepository
	outbox   *pgrepo.OutboxRepository
}

func TestPostgresSuite(t *testing.T) {
	if os.Getenv(dsnEnv) == "" {
		t.Skipf("%s is not set", dsnEnv)
	}
	suite.Run(t, new(PostgresTestSuite))
}

func (s *PostgresTestSuite) SetupSuite() {
	logger, _ := test.NewNullLogger()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgrepo.Connect(ctx, migrationsDir, os.Getenv(dsnEnv), logger)
	s.Require().NoError(err)
	s.pool = pool

	s.uow = uow.NewUnitOfWork(pool).SetLockTimeout(300 * time.Millisecond)
	factories := map[repoargs.RepositoryName]uow.RepositoryFactory{
		repoargs.UserRepoName:               func(c uow.DBTX) uow.Repository { return pgrepo.NewUserRepository(c) },
		repoargs.OrderRepoName:              func(c uow.DBTX) uow.Repository { return pgrepo.NewOrderRepository(c) },
		repoargs.BalanceTransactionRepoName: func(c uow.DBTX) uow.Repository { return pgrepo.NewBalanceTransactionRepository(c) },
		repoargs.BalanceRequestRepoName:     func(c uow.DBTX) uow.Repository { return pgrepo.NewBalanceRequestRepository(c) },
		repoargs.CouponRepoName:             func(c uow.DBTX) uow.Repository { return pgrepo.NewCouponRepository(c) },
		repoargs.CouponUsageRepoName:        func(c uow.DBTX) uow.Repository { return pgrepo.NewCouponUsageRepository(c) },
		repoargs.ServiceAccountRepoName:     func(c uow.DBTX) uow.Repository { return pgrepo.NewServiceAccountRepository(c) },
		repoargs.OutboxRepoName:             func(c uow.DBTX) uow.Repository { return pgrepo.NewOutboxRepository(c) },
		repoargs.AuditRepoName:              func(c uow.DBTX) uow.Repository { return pgrepo.NewAuditRepository(c) },
	}
	for name, factory := range factories {
		s.Require().NoError(s.uow.Register(uow.RepositoryName(name), factory))
	}

	s.services, err = service.Factory(service.FactoryArgs{
		UOW:       s.uow,
		Logger:    logger,
		Hasher:    psswd.PasswordHash{},
		JWTSecret: []byte("secret"),
	})
	s.Require().NoError(err)

	s.users = pgrepo.NewUserRepository(pool)
	s.orders = pgrepo.NewOrderRepository(pool)
	s.outbox = pgrepo.NewOutboxRepository(pool)
}

func (s *PostgresTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresTestSuite) fundedUser(balance int64) *domain.User {
	ctx := s.T().Context()
	u, err := s.users.Create(ctx, repoargs.CreateUser{
		Email:    gofakeit.Email(),
		Username: gofakeit.Username() + gofakeit.DigitN(8),
	})
	s.Require().NoError(err)
	if balance == 0 {
		return u
	}
	_, err = s.services.Ledger.AdjustBalance(ctx, service.AdjustBalanceCommand{
		ActorID:     adminActor,
		UserID:      u.ID,
		Direction:   domain.DirectionCredit,
		Amount:      decimal.NewFromInt(balance),
		Description: "initial funding",
	})
	s.Require().NoError(err)
	return u
}

func (s *PostgresTestSuite) TestConcurrentPaymentHasOneWinner() {
	ctx := s.T().Context()
	u := s.fundedUser(100)
	order, err := s.orders.Create(ctx, repoargs.CreateOrder{
		Kind:     domain.OrderKindPackage,
		UserID:   u.ID,
		Amount:   decimal.NewFromInt(30),
		Status:   domain.OrderStatusPending,
		Quantity: 1,
	})
	s.Require().NoError(err)

	var wins, conflicts atomic.Int32
	var g errgroup.Group
	for range 2 {
		g.Go(func() error {
			_, trErr := s.services.Orders.Transition(ctx, service.TransitionCommand{
				ActorID:        adminActor,
				Kind:           domain.OrderKindPackage,
				OrderID:        order.ID,
				TargetStatus:   domain.OrderStatusPaid,
				ExpectedStatus: domain.OrderStatusPending,
			})
			switch {
			case trErr == nil:
				wins.Add(1)
			case s.ErrorIs(trErr, domain.ErrConflict):
				conflicts.Add(1)
			}
			return nil
		})
	}
	s.Require().NoError(g.Wait())
	s.Equal(int32(1), wins.Load())
	s.Equal(int32(1), conflicts.Load())

	balance, err := s.services.Ledger.GetUserBalance(ctx, u.ID)
	s.Require().NoError(err)
	s.True(balance.Cached.Equal(decimal.NewFromInt(70)), balance.Cached.String())
	s.True(balance.Consistent())
}

func (s *PostgresTestSuite) TestLockTimeoutIsConflict() {
	ctx := s.T().Context()
	u := s.fundedUser(10)

	locked := make(chan struct{})
	release := make(chan struct{})
	holder := make(chan error, 1)
	go func() {
		holder <- s.uow.Do(ctx, func(ctx context.Context, tx uow.TX) error {
			users, err := uow.GetAs[*pgrepo.UserRepository](tx, uow.RepositoryName(repoargs.UserRepoName))
			if err != nil {
				return err
			}
			if _, err = users.LockByID(ctx, u.ID); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	_, err := s.services.Ledger.AdjustBalance(ctx, service.AdjustBalanceCommand{
		ActorID:     adminActor,
		UserID:      u.ID,
		Direction:   domain.DirectionCredit,
		Amount:      decimal.NewFromInt(1),
		Description: "blocked",
	})
	close(release)
	s.Require().NoError(<-holder)
	s.Require().ErrorIs(err, domain.ErrConflict)

	balance, err := s.services.Ledger.GetUserBalance(ctx, u.ID)
	s.Require().NoError(err)
	s.True(balance.Cached.Equal(decimal.NewFromInt(10)))
}

func (s *PostgresTestSuite) TestErrorMapping() {
	ctx := s.T().Context()
	u := s.fundedUser(0)

	_, err := s.users.FindByID(ctx, u.ID+1_000_000)
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)

	_, err = s.users.Create(ctx, repoargs.CreateUser{Email: gofakeit.Email(), Username: u.Username})
	s.Require().ErrorIs(err, domain.ErrDuplicateKey)

	_, err = s.orders.Create(ctx, repoargs.CreateOrder{
		Kind:     domain.OrderKindProduct,
		UserID:   u.ID + 1_000_000,
		Amount:   decimal.NewFromInt(1),
		Status:   domain.OrderStatusPending,
		Quantity: 1,
	})
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}

func (s *PostgresTestSuite) TestSubCentAmountNeverReachesStorage() {
	ctx := s.T().Context()
	u := s.fundedUser(5)

	for _, amount := range []string{"0.004", "0.006"} {
		_, err := s.services.Ledger.AdjustBalance(ctx, service.AdjustBalanceCommand{
			ActorID:     adminActor,
			UserID:      u.ID,
			Direction:   domain.DirectionCredit,
			Amount:      decimal.RequireFromString(amount),
			Description: "rounding",
		})
		s.Require().ErrorIs(err, domain.ErrValidation, amount)
		s.Require().NotErrorIs(err, domain.ErrPersistence, amount)
	}

	balance, err := s.services.Ledger.GetUserBalance(ctx, u.ID)
	s.Require().NoError(err)
	s.True(balance.Cached.Equal(decimal.NewFromInt(5)), balance.Cached.String())
	s.True(balance.Consistent())
}

func (s *PostgresTestSuite) TestRequeueLeasedEventIsConflict() {
	ctx := s.T().Context()
	now := time.Now().UTC()
	ev, err := s.outbox.Create(ctx, repoargs.CreateOutboxEvent{
		ID:            uuid.New(),
		Channel:       domain.OutboxChannelChat,
		EventType:     domain.EventOrderStatusChanged,
		AggregateType: domain.AggregateOrder,
		AggregateID:   1,
		Payload:       []byte(`{"text":"lease"}`),
		NextAttemptAt: now.Add(-time.Second),
	})
	s.Require().NoError(err)

	claimed, err := s.outbox.Claim(ctx, repoargs.ClaimOutbox{
		Now: now, Lease: time.Minute, Limit: 1, IDs: []uuid.UUID{ev.ID},
	})
	s.Require().NoError(err)
	s.Require().Len(claimed, 1)

	_, err = s.outbox.Requeue(ctx, ev.ID, now)
	s.Require().ErrorIs(err, domain.ErrConflict)

	requeued, err := s.outbox.Requeue(ctx, ev.ID, now.Add(2*time.Minute))
	s.Require().NoError(err)
	s.Zero(requeued.Attempts)
	s.Nil(requeued.LockedUntil)

	_, err = s.outbox.Requeue(ctx, uuid.New(), now)
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}
