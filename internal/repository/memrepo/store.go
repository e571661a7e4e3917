// Package memrepo keeps all repositories in memory behind a uow.UOW. Transactions run one at a time and are
// rolled back through an undo log, which gives the same isolation as row locks held for a whole
// transaction. It backs service tests.
package memrepo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	"github.com/google/uuid"
)

var ErrRegisterUnsupported = errors.New("memrepo: repositories are fixed")

type Store struct {
	// txMu is held for the whole Do call.
	txMu sync.Mutex
	// mu guards the data below for single operations.
	mu sync.Mutex

	now    func() time.Time
	nextID int64

	users        map[int64]*domain.User
	transactions []domain.BalanceTransaction
	orders       map[domain.OrderKind]map[int64]*domain.Order
	requests     map[int64]*domain.BalanceRequest
	coupons      map[int64]*domain.Coupon
	usages       []domain.CouponUsage
	accounts     map[int64]*domain.ServiceAccount
	outbox       map[uuid.UUID]*domain.OutboxEvent
	outboxOrder  []uuid.UUID
	audit        []domain.AuditEntry

	failures map[string]error
}

func NewStore() *Store {
	return &Store{
		now:   time.Now,
		users: make(map[int64]*domain.User),
		orders: map[domain.OrderKind]map[int64]*domain.Order{
			domain.OrderKindPackage: make(map[int64]*domain.Order),
			domain.OrderKindProduct: make(map[int64]*domain.Order),
		},
		requests: make(map[int64]*domain.BalanceRequest),
		coupons:  make(map[int64]*domain.Coupon),
		accounts: make(map[int64]*domain.ServiceAccount),
		outbox:   make(map[uuid.UUID]*domain.OutboxEvent),
		failures: make(map[string]error),
	}
}

// SetClock replaces time.Now for created_at columns.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// FailNext makes the next call of op return err once. op is "<repository>.<Method>", e.g. "outbox.Create".
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// failure must be called with mu held.
func (s *Store) failure(op string) error {
	err, ok := s.failures[op]
	if !ok {
		return nil
	}
	delete(s.failures, op)
	return fmt.Errorf("[memrepo/%s] %w", op, err)
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// UnitOfWork implements uow.UOW over a Store.
type UnitOfWork struct {
	store *Store
}

func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

func (u *UnitOfWork) Store() *Store {
	return u.store
}

func (u *UnitOfWork) Register(uow.RepositoryName, uow.RepositoryFactory) error {
	return ErrRegisterUnsupported
}

func (u *UnitOfWork) GetRepository(name uow.RepositoryName) (uow.Repository, error) {
	return u.store.repository(name, nil)
}

// Do runs fn exclusively. Every change made through tx is undone when fn returns an error.
func (u *UnitOfWork) Do(ctx context.Context, fn func(context.Context, uow.TX) error) error {
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck
	}
	u.store.txMu.Lock()
	defer u.store.txMu.Unlock()

	t := &txState{}
	if err := fn(ctx, &transaction{store: u.store, state: t}); err != nil {
		u.store.mu.Lock()
		t.rollback()
		u.store.mu.Unlock()
		return err
	}
	return nil
}

type txState struct {
	undo []func()
}

// onRollback registers a revert step. Called with Store.mu held, as are the steps.
func (t *txState) onRollback(fn func()) {
	if t == nil {
		return
	}
	t.undo = append(t.undo, fn)
}

func (t *txState) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

type transaction struct {
	store *Store
	state *txState
}

func (t *transaction) Get(name uow.RepositoryName) (uow.Repository, error) {
	return t.store.repository(name, t.state)
}

func (s *Store) repository(name uow.RepositoryName, t *txState) (uow.Repository, error) {
	switch repoargs.RepositoryName(name) {
	case repoargs.UserRepoName:
		return &UserRepository{s: s, tx: t}, nil
	case repoargs.BalanceTransactionRepoName:
		return &BalanceTransactionRepository{s: s, tx: t}, nil
	case repoargs.OrderRepoName:
		return &OrderRepository{s: s, tx: t}, nil
	case repoargs.BalanceRequestRepoName:
		return &BalanceRequestRepository{s: s, tx: t}, nil
	case repoargs.CouponRepoName:
		return &CouponRepository{s: s, tx: t}, nil
	case repoargs.CouponUsageRepoName:
		return &CouponUsageRepository{s: s, tx: t}, nil
	case repoargs.ServiceAccountRepoName:
		return &ServiceAccountRepository{s: s, tx: t}, nil
	case repoargs.OutboxRepoName:
		return &OutboxRepository{s: s, tx: t}, nil
	case repoargs.AuditRepoName:
		return &AuditRepository{s: s, tx: t}, nil
	}
	return nil, uow.ErrRepositoryNotRegistered
}
