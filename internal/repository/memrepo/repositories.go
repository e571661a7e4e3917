package memrepo

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func notFound(format string, args ...any) error {
	return fmt.Errorf("[memrepo/%s] %w", fmt.Sprintf(format, args...), domain.ErrRecordNotFound)
}

func duplicate(format string, args ...any) error {
	return fmt.Errorf("[memrepo/%s] %w", fmt.Sprintf(format, args...), domain.ErrDuplicateKey)
}

type UserRepository struct {
	s  *Store
	tx *txState
}

func (r *UserRepository) Create(_ context.Context, args repoargs.CreateUser) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("user.Create"); err != nil {
		return nil, err
	}
	for _, u := range r.s.users {
		if u.Username == args.Username {
			return nil, duplicate("create user %s", args.Username)
		}
	}
	role := args.Role
	if role == "" {
		role = domain.UserRoleCustomer
	}
	now := r.s.now()
	u := &domain.User{
		ID:        r.s.id(),
		CreatedAt: now,
		UpdatedAt: now,
		Email:     args.Email,
		Username:  args.Username,
		Role:      role,
		Status:    domain.UserStatusActive,
		Balance:   args.Balance,
	}
	r.s.users[u.ID] = u
	r.tx.onRollback(func() { delete(r.s.users, u.ID) })
	clone := *u
	return &clone, nil
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("user.FindByID"); err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, notFound("find user %d", id)
	}
	clone := *u
	return &clone, nil
}

// LockByID is FindByID: transactions are already exclusive.
func (r *UserRepository) LockByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.FindByID(ctx, id)
}

// SetStatus is a test helper, identity is managed outside this service.
func (r *UserRepository) SetStatus(_ context.Context, id int64, status domain.UserStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return notFound("set status of user %d", id)
	}
	u.Status = status
	return nil
}

func (r *UserRepository) UpdateBalance(_ context.Context, id int64, balance decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("user.UpdateBalance"); err != nil {
		return err
	}
	u, ok := r.s.users[id]
	if !ok {
		return notFound("update balance of user %d", id)
	}
	if balance.IsNegative() {
		return fmt.Errorf("[memrepo/update balance of user %d] %w: negative balance", id, domain.ErrPersistence)
	}
	prev := u.Balance
	u.Balance = balance
	r.tx.onRollback(func() { u.Balance = prev })
	return nil
}

type BalanceTransactionRepository struct {
	s  *Store
	tx *txState
}

func (r *BalanceTransactionRepository) Create(
	_ context.Context,
	args repoargs.BalanceTransactionCreate,
) (*domain.BalanceTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("balance_transaction.Create"); err != nil {
		return nil, err
	}
	if _, ok := r.s.users[args.UserID]; !ok {
		return nil, notFound("create balance transaction of user %d", args.UserID)
	}
	t := domain.BalanceTransaction{
		ID:            r.s.id(),
		CreatedAt:     r.s.now(),
		UserID:        args.UserID,
		Amount:        args.Amount,
		Direction:     args.Direction,
		Description:   args.Description,
		ReferenceType: args.ReferenceType,
		ReferenceID:   args.ReferenceID,
	}
	n := len(r.s.transactions)
	r.s.transactions = append(r.s.transactions, t)
	r.tx.onRollback(func() { r.s.transactions = r.s.transactions[:n] })
	return &t, nil
}

func (r *BalanceTransactionRepository) GetByUserID(
	_ context.Context,
	userID int64,
	limit uint,
) ([]domain.BalanceTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.BalanceTransaction
	for i := len(r.s.transactions) - 1; i >= 0 && uint(len(result)) < limit; i-- {
		if r.s.transactions[i].UserID == userID {
			result = append(result, r.s.transactions[i])
		}
	}
	return result, nil
}

func (r *BalanceTransactionRepository) GetUserBalance(
	_ context.Context,
	userID int64,
) (*repoargs.BalanceAggregation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	agg := repoargs.BalanceAggregation{CreditAmount: decimal.Zero, DebitAmount: decimal.Zero}
	for _, t := range r.s.transactions {
		if t.UserID != userID {
			continue
		}
		if t.Direction == domain.DirectionCredit {
			agg.CreditAmount = agg.CreditAmount.Add(t.Amount)
		} else {
			agg.DebitAmount = agg.DebitAmount.Add(t.Amount)
		}
	}
	return &agg, nil
}

type OrderRepository struct {
	s  *Store
	tx *txState
}

func (r *OrderRepository) table(kind domain.OrderKind) (map[int64]*domain.Order, error) {
	t, ok := r.s.orders[kind]
	if !ok {
		return nil, fmt.Errorf("[memrepo/order] %w: unknown order kind %q", domain.ErrValidation, kind)
	}
	return t, nil
}

func (r *OrderRepository) Create(_ context.Context, args repoargs.CreateOrder) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	table, err := r.table(args.Kind)
	if err != nil {
		return nil, err
	}
	if _, ok := r.s.users[args.UserID]; !ok {
		return nil, notFound("create order of user %d", args.UserID)
	}
	status := args.Status
	if status == "" {
		status = domain.OrderStatusPending
	}
	quantity := args.Quantity
	if quantity == 0 {
		quantity = 1
	}
	now := r.s.now()
	o := &domain.Order{
		ID:                r.s.id(),
		Kind:              args.Kind,
		CreatedAt:         now,
		UpdatedAt:         now,
		UserID:            args.UserID,
		Amount:            args.Amount,
		Status:            status,
		ExternalReference: args.ExternalReference,
		Integration:       args.Integration,
		SKU:               args.SKU,
		Quantity:          quantity,
	}
	table[o.ID] = o
	r.tx.onRollback(func() { delete(table, o.ID) })
	clone := *o
	return &clone, nil
}

func (r *OrderRepository) FindByID(_ context.Context, kind domain.OrderKind, id int64) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("order.FindByID"); err != nil {
		return nil, err
	}
	table, err := r.table(kind)
	if err != nil {
		return nil, err
	}
	o, ok := table[id]
	if !ok {
		return nil, notFound("find %s order %d", kind, id)
	}
	clone := *o
	return &clone, nil
}

func (r *OrderRepository) LockByID(ctx context.Context, kind domain.OrderKind, id int64) (*domain.Order, error) {
	return r.FindByID(ctx, kind, id)
}

func (r *OrderRepository) UpdateStatus(_ context.Context, args repoargs.OrderStatusUpdate) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("order.UpdateStatus"); err != nil {
		return nil, err
	}
	table, err := r.table(args.Kind)
	if err != nil {
		return nil, err
	}
	o, ok := table[args.ID]
	if !ok {
		return nil, notFound("update status of %s order %d", args.Kind, args.ID)
	}
	prev := *o
	o.Status = args.Status
	o.AdminNote = args.AdminNote
	o.UpdatedAt = r.s.now()
	r.tx.onRollback(func() { *o = prev })
	clone := *o
	return &clone, nil
}

func (r *OrderRepository) MarkFulfilled(_ context.Context, kind domain.OrderKind, id int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("order.MarkFulfilled"); err != nil {
		return err
	}
	table, err := r.table(kind)
	if err != nil {
		return err
	}
	o, ok := table[id]
	if !ok || o.FulfilledAt != nil {
		return fmt.Errorf("[memrepo/mark %s order %d fulfilled] %w: already fulfilled or missing",
			kind, id, domain.ErrConflict)
	}
	fulfilledAt := at
	o.FulfilledAt = &fulfilledAt
	r.tx.onRollback(func() { o.FulfilledAt = nil })
	return nil
}

type BalanceRequestRepository struct {
	s  *Store
	tx *txState
}

func (r *BalanceRequestRepository) Create(
	_ context.Context,
	args repoargs.CreateBalanceRequest,
) (*domain.BalanceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[args.UserID]; !ok {
		return nil, notFound("create balance request of user %d", args.UserID)
	}
	if args.ExternalReference != nil {
		for _, existing := range r.s.requests {
			if existing.ExternalReference != nil && *existing.ExternalReference == *args.ExternalReference {
				return nil, duplicate("create balance request %s", *args.ExternalReference)
			}
		}
	}
	var reference *string
	if args.ExternalReference != nil {
		ref := *args.ExternalReference
		reference = &ref
	}
	req := &domain.BalanceRequest{
		ID:                r.s.id(),
		CreatedAt:         r.s.now(),
		UserID:            args.UserID,
		Amount:            args.Amount,
		PaymentMethod:     args.PaymentMethod,
		Status:            domain.BalanceRequestPending,
		ExternalReference: reference,
	}
	r.s.requests[req.ID] = req
	r.tx.onRollback(func() { delete(r.s.requests, req.ID) })
	clone := *req
	return &clone, nil
}

func (r *BalanceRequestRepository) FindByID(_ context.Context, id int64) (*domain.BalanceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[id]
	if !ok {
		return nil, notFound("find balance request %d", id)
	}
	clone := *req
	return &clone, nil
}

func (r *BalanceRequestRepository) LockByID(ctx context.Context, id int64) (*domain.BalanceRequest, error) {
	return r.FindByID(ctx, id)
}

func (r *BalanceRequestRepository) Finalize(
	_ context.Context,
	args repoargs.FinalizeBalanceRequest,
) (*domain.BalanceRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("balance_request.Finalize"); err != nil {
		return nil, err
	}
	req, ok := r.s.requests[args.ID]
	if !ok || req.Status != domain.BalanceRequestPending {
		return nil, fmt.Errorf("[memrepo/finalize balance request %d] %w", args.ID, domain.ErrNotPending)
	}
	prev := *req
	processedBy := args.ProcessedBy
	processedAt := args.ProcessedAt
	req.Status = args.Status
	req.ProcessedBy = &processedBy
	req.ProcessedAt = &processedAt
	req.AdminNote = args.AdminNote
	r.tx.onRollback(func() { *req = prev })
	clone := *req
	return &clone, nil
}

type CouponRepository struct {
	s  *Store
	tx *txState
}

func (r *CouponRepository) Create(_ context.Context, args repoargs.CreateCoupon) (*domain.Coupon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.coupons {
		if strings.EqualFold(c.Code, args.Code) {
			return nil, duplicate("create coupon %s", args.Code)
		}
	}
	status := args.Status
	if status == "" {
		status = domain.CouponStatusActive
	}
	c := &domain.Coupon{
		ID:             r.s.id(),
		CreatedAt:      r.s.now(),
		Code:           args.Code,
		DiscountType:   args.DiscountType,
		DiscountValue:  args.DiscountValue,
		Currency:       args.Currency,
		MinOrderAmount: args.MinOrderAmount,
		MaxUses:        args.MaxUses,
		UsagePerUser:   args.UsagePerUser,
		StartsAt:       args.StartsAt,
		ExpiresAt:      args.ExpiresAt,
		Status:         status,
	}
	r.s.coupons[c.ID] = c
	r.tx.onRollback(func() { delete(r.s.coupons, c.ID) })
	clone := *c
	return &clone, nil
}

func (r *CouponRepository) FindByCode(_ context.Context, code string) (*domain.Coupon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.coupons {
		if strings.EqualFold(c.Code, code) {
			clone := *c
			return &clone, nil
		}
	}
	return nil, notFound("find coupon %s", code)
}

func (r *CouponRepository) LockByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	return r.FindByCode(ctx, code)
}

type CouponUsageRepository struct {
	s  *Store
	tx *txState
}

func (r *CouponUsageRepository) Create(
	_ context.Context,
	args repoargs.CreateCouponUsage,
) (*domain.CouponUsage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("coupon_usage.Create"); err != nil {
		return nil, err
	}
	usage := domain.CouponUsage{
		ID:             r.s.id(),
		CouponID:       args.CouponID,
		UserID:         args.UserID,
		OrderReference: args.OrderReference,
		Discount:       args.Discount,
		UsedAt:         args.UsedAt,
	}
	n := len(r.s.usages)
	r.s.usages = append(r.s.usages, usage)
	r.tx.onRollback(func() { r.s.usages = r.s.usages[:n] })
	return &usage, nil
}

func (r *CouponUsageRepository) CountByCoupon(_ context.Context, couponID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, u := range r.s.usages {
		if u.CouponID == couponID {
			count++
		}
	}
	return count, nil
}

func (r *CouponUsageRepository) CountByCouponAndUser(_ context.Context, couponID, userID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, u := range r.s.usages {
		if u.CouponID == couponID && u.UserID == userID {
			count++
		}
	}
	return count, nil
}

type ServiceAccountRepository struct {
	s  *Store
	tx *txState
}

func (r *ServiceAccountRepository) Create(
	_ context.Context,
	args repoargs.CreateServiceAccount,
) (*domain.ServiceAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("service_account.Create"); err != nil {
		return nil, err
	}
	for _, a := range r.s.accounts {
		if a.UserID == args.UserID || a.Login == args.Login {
			return nil, duplicate("create service account of user %d", args.UserID)
		}
	}
	a := &domain.ServiceAccount{
		ID:           r.s.id(),
		CreatedAt:    r.s.now(),
		UserID:       args.UserID,
		OrderID:      args.OrderID,
		Login:        args.Login,
		PasswordHash: args.PasswordHash,
	}
	r.s.accounts[a.ID] = a
	r.tx.onRollback(func() { delete(r.s.accounts, a.ID) })
	clone := *a
	return &clone, nil
}

func (r *ServiceAccountRepository) FindByUserID(_ context.Context, userID int64) (*domain.ServiceAccount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.UserID == userID {
			clone := *a
			return &clone, nil
		}
	}
	return nil, notFound("find service account of user %d", userID)
}

type OutboxRepository struct {
	s  *Store
	tx *txState
}

func (r *OutboxRepository) Create(_ context.Context, args repoargs.CreateOutboxEvent) (*domain.OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("outbox.Create"); err != nil {
		return nil, err
	}
	if _, ok := r.s.outbox[args.ID]; ok {
		return nil, duplicate("create outbox event %s", args.ID)
	}
	e := &domain.OutboxEvent{
		ID:            args.ID,
		CreatedAt:     r.s.now(),
		Channel:       args.Channel,
		EventType:     args.EventType,
		AggregateType: args.AggregateType,
		AggregateID:   args.AggregateID,
		Integration:   args.Integration,
		Payload:       slices.Clone(args.Payload),
		Status:        domain.OutboxStatusPending,
		NextAttemptAt: args.NextAttemptAt,
	}
	n := len(r.s.outboxOrder)
	r.s.outbox[e.ID] = e
	r.s.outboxOrder = append(r.s.outboxOrder, e.ID)
	r.tx.onRollback(func() {
		delete(r.s.outbox, e.ID)
		r.s.outboxOrder = r.s.outboxOrder[:n]
	})
	clone := *e
	return &clone, nil
}

func (r *OutboxRepository) Claim(_ context.Context, args repoargs.ClaimOutbox) ([]domain.OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("outbox.Claim"); err != nil {
		return nil, err
	}

	var due []*domain.OutboxEvent
	for _, id := range r.s.outboxOrder {
		e := r.s.outbox[id]
		if e.Status != domain.OutboxStatusPending || e.NextAttemptAt.After(args.Now) {
			continue
		}
		if e.LockedUntil != nil && !e.LockedUntil.Before(args.Now) {
			continue
		}
		if len(args.IDs) > 0 && !slices.Contains(args.IDs, id) {
			continue
		}
		due = append(due, e)
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].NextAttemptAt.Before(due[j].NextAttemptAt) })
	if uint(len(due)) > args.Limit {
		due = due[:args.Limit]
	}

	lockedUntil := args.Now.Add(args.Lease)
	result := make([]domain.OutboxEvent, 0, len(due))
	for _, e := range due {
		prev := *e
		e.LockedUntil = &lockedUntil
		e.Attempts++
		r.tx.onRollback(func() { *e = prev })
		result = append(result, *e)
	}
	return result, nil
}

func (r *OutboxRepository) update(op string, id uuid.UUID, fn func(e *domain.OutboxEvent)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure(op); err != nil {
		return err
	}
	e, ok := r.s.outbox[id]
	if !ok {
		return notFound("%s %s", op, id)
	}
	prev := *e
	fn(e)
	r.tx.onRollback(func() { *e = prev })
	return nil
}

func (r *OutboxRepository) MarkDelivered(_ context.Context, id uuid.UUID, at time.Time) error {
	return r.update("outbox.MarkDelivered", id, func(e *domain.OutboxEvent) {
		deliveredAt := at
		e.Status = domain.OutboxStatusDelivered
		e.DeliveredAt = &deliveredAt
		e.LockedUntil = nil
		e.LastError = ""
	})
}

func (r *OutboxRepository) MarkRetry(_ context.Context, args repoargs.OutboxRetry) error {
	return r.update("outbox.MarkRetry", args.ID, func(e *domain.OutboxEvent) {
		e.NextAttemptAt = args.NextAttemptAt
		e.LastError = args.LastError
		e.LockedUntil = nil
	})
}

func (r *OutboxRepository) MarkFailed(_ context.Context, id uuid.UUID, lastErr string) error {
	return r.update("outbox.MarkFailed", id, func(e *domain.OutboxEvent) {
		e.Status = domain.OutboxStatusFailed
		e.LastError = lastErr
		e.LockedUntil = nil
	})
}

func (r *OutboxRepository) Requeue(_ context.Context, id uuid.UUID, at time.Time) (*domain.OutboxEvent, error) {
	r.s.mu.Lock()
	e, ok := r.s.outbox[id]
	leased := ok && e.LockedUntil != nil && !e.LockedUntil.Before(at)
	r.s.mu.Unlock()
	if leased {
		return nil, fmt.Errorf("[memrepo/outbox.Requeue %s] %w: event is being delivered", id, domain.ErrConflict)
	}

	var result domain.OutboxEvent
	err := r.update("outbox.Requeue", id, func(e *domain.OutboxEvent) {
		e.Status = domain.OutboxStatusPending
		e.Attempts = 0
		e.NextAttemptAt = at
		e.LockedUntil = nil
		e.DeliveredAt = nil
		result = *e
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *OutboxRepository) GetByStatus(
	_ context.Context,
	status domain.OutboxStatus,
	limit uint,
) ([]domain.OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.OutboxEvent
	for i := len(r.s.outboxOrder) - 1; i >= 0 && uint(len(result)) < limit; i-- {
		if e := r.s.outbox[r.s.outboxOrder[i]]; e.Status == status {
			result = append(result, *e)
		}
	}
	return result, nil
}

// All returns every outbox event in creation order. Test helper.
func (r *OutboxRepository) All() []domain.OutboxEvent {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make([]domain.OutboxEvent, 0, len(r.s.outboxOrder))
	for _, id := range r.s.outboxOrder {
		result = append(result, *r.s.outbox[id])
	}
	return result
}

type AuditRepository struct {
	s  *Store
	tx *txState
}

func (r *AuditRepository) Create(_ context.Context, args repoargs.CreateAuditEntry) (*domain.AuditEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("audit.Create"); err != nil {
		return nil, err
	}
	entry := domain.AuditEntry{
		ID:          r.s.id(),
		CreatedAt:   r.s.now(),
		ActorID:     args.ActorID,
		Action:      args.Action,
		TargetType:  args.TargetType,
		TargetID:    args.TargetID,
		Description: args.Description,
	}
	n := len(r.s.audit)
	r.s.audit = append(r.s.audit, entry)
	r.tx.onRollback(func() { r.s.audit = r.s.audit[:n] })
	return &entry, nil
}

func (r *AuditRepository) GetByTarget(
	_ context.Context,
	targetType string,
	targetID int64,
	limit uint,
) ([]domain.AuditEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.AuditEntry
	for i := len(r.s.audit) - 1; i >= 0 && uint(len(result)) < limit; i-- {
		if e := r.s.audit[i]; e.TargetType == targetType && e.TargetID == targetID {
			result = append(result, e)
		}
	}
	return result, nil
}
