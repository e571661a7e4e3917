package service

import (
	"context"
	"io"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/memrepo"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/internal/service/psswd"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testAdminID int64 = 900

// testEnv wires all services to an in-memory store.
type testEnv struct {
	t        *testing.T
	store    *memrepo.Store
	uow      *memrepo.UnitOfWork
	services *AppServices
	users    *memrepo.UserRepository
	orders   *memrepo.OrderRepository
	outbox   *memrepo.OutboxRepository
}

func newTestEnv(t *testing.T, policy domain.DebitPolicy) *testEnv {
	t.Helper()
	store := memrepo.NewStore()
	u := memrepo.NewUnitOfWork(store)

	l := logrus.New()
	l.SetOutput(io.Discard)

	services, err := Factory(FactoryArgs{
		UOW:         u,
		Logger:      l,
		Hasher:      psswd.PasswordHash{Cost: bcrypt.MinCost},
		JWTSecret:   []byte("secret"),
		DebitPolicy: policy,
	})
	require.NoError(t, err)

	return &testEnv{
		t:        t,
		store:    store,
		uow:      u,
		services: services,
		users:    repoAs[*memrepo.UserRepository](t, u, repoargs.UserRepoName),
		orders:   repoAs[*memrepo.OrderRepository](t, u, repoargs.OrderRepoName),
		outbox:   repoAs[*memrepo.OutboxRepository](t, u, repoargs.OutboxRepoName),
	}
}

func repoAs[T any](t *testing.T, u uow.UOW, name repoargs.RepositoryName) T {
	t.Helper()
	repo, err := uow.GetRepositoryAs[T](u, uow.RepositoryName(name))
	require.NoError(t, err)
	return repo
}

func (e *testEnv) ctx() context.Context {
	return e.t.Context()
}

// user creates a customer and funds it through the ledger, so the balance invariant holds from the start.
func (e *testEnv) user(balance string) *domain.User {
	e.t.Helper()
	u, err := e.users.Create(e.ctx(), repoargs.CreateUser{
		Email:    gofakeit.Email(),
		Username: gofakeit.Username() + gofakeit.DigitN(6),
	})
	require.NoError(e.t, err)

	amount := decimal.RequireFromString(balance)
	if amount.IsPositive() {
		_, adjErr := e.services.Ledger.AdjustBalance(e.ctx(), AdjustBalanceCommand{
			ActorID:     testAdminID,
			UserID:      u.ID,
			Direction:   domain.DirectionCredit,
			Amount:      amount,
			Description: "initial funding",
		})
		require.NoError(e.t, adjErr)
	}
	return e.reloadUser(u.ID)
}

func (e *testEnv) reloadUser(id int64) *domain.User {
	e.t.Helper()
	u, err := e.users.FindByID(e.ctx(), id)
	require.NoError(e.t, err)
	return u
}

type orderOpt func(*repoargs.CreateOrder)

func withExternalReference(ref, integration string) orderOpt {
	return func(a *repoargs.CreateOrder) {
		a.ExternalReference = ref
		a.Integration = integration
	}
}

func (e *testEnv) order(
	kind domain.OrderKind,
	userID int64,
	amount string,
	status domain.OrderStatusType,
	opts ...orderOpt,
) *domain.Order {
	e.t.Helper()
	args := repoargs.CreateOrder{
		Kind:     kind,
		UserID:   userID,
		Amount:   decimal.RequireFromString(amount),
		Status:   status,
		SKU:      gofakeit.ProductName(),
		Quantity: 1,
	}
	for _, opt := range opts {
		opt(&args)
	}
	o, err := e.orders.Create(e.ctx(), args)
	require.NoError(e.t, err)
	return o
}

func (e *testEnv) reloadOrder(o *domain.Order) *domain.Order {
	e.t.Helper()
	reloaded, err := e.orders.FindByID(e.ctx(), o.Kind, o.ID)
	require.NoError(e.t, err)
	return reloaded
}

// requireConsistent checks the ledger invariant and returns the balance.
func (e *testEnv) requireConsistent(userID int64) *UserBalance {
	e.t.Helper()
	b, err := e.services.Ledger.GetUserBalance(e.ctx(), userID)
	require.NoError(e.t, err)
	require.True(e.t, b.Consistent(), "cached %s, ledger %s", b.Cached, b.Ledger())
	return b
}

func (e *testEnv) transactions(userID int64) []domain.BalanceTransaction {
	e.t.Helper()
	txs, err := e.services.Ledger.GetTransactions(e.ctx(), userID, 1000)
	require.NoError(e.t, err)
	return txs
}

func (e *testEnv) outboxFor(aggregateType string, aggregateID int64) []domain.OutboxEvent {
	var result []domain.OutboxEvent
	for _, ev := range e.outbox.All() {
		if ev.AggregateType == aggregateType && ev.AggregateID == aggregateID {
			result = append(result, ev)
		}
	}
	return result
}

func countChannel(events []domain.OutboxEvent, ch domain.OutboxChannel) int {
	n := 0
	for _, ev := range events {
		if ev.Channel == ch {
			n++
		}
	}
	return n
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
