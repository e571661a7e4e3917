package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// BalanceRequestService handles top-up requests. A request is decided exactly once.
type BalanceRequestService struct {
	base
	requestRepo BalanceRequestRepository
	ledger      *LedgerService
}

func NewBalanceRequestService(
	u uow.UOW,
	ledger *LedgerService,
	audit *AuditService,
	l *logrus.Logger,
) (*BalanceRequestService, error) {
	requestRepo, requestRepoErr := uowRepo[BalanceRequestRepository](u, repoargs.BalanceRequestRepoName)
	if requestRepoErr != nil {
		return nil, requestRepoErr
	}
	return &BalanceRequestService{
		base:        newBase(u, audit, l, "balance_requests"),
		requestRepo: requestRepo,
		ledger:      ledger,
	}, nil
}

type CreateBalanceRequestCommand struct {
	UserID        int64
	Amount        decimal.Decimal
	PaymentMethod string
}

func (s *BalanceRequestService) Create(
	ctx context.Context,
	cmd CreateBalanceRequestCommand,
) (*domain.BalanceRequest, error) {
	if err := validateTopUp(cmd.UserID, cmd.Amount, cmd.PaymentMethod); err != nil {
		return nil, fmt.Errorf("create balance request: %w", err)
	}
	request, err := s.requestRepo.Create(ctx, repoargs.CreateBalanceRequest{
		UserID:        cmd.UserID,
		Amount:        cmd.Amount,
		PaymentMethod: cmd.PaymentMethod,
	})
	if err != nil {
		return nil, serviceErr("create balance request", notFoundAsValidation(err, "user", cmd.UserID))
	}
	s.l.WithFields(logrus.Fields{"requestID": request.ID, "userID": cmd.UserID}).Info("balance request created")
	return request, nil
}

func (s *BalanceRequestService) Get(ctx context.Context, id int64) (*domain.BalanceRequest, error) {
	request, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, serviceErr("get balance request", err)
	}
	return request, nil
}

type DecideBalanceRequestCommand struct {
	ActorID   int64
	RequestID int64
	AdminNote string
}

type BalanceRequestResult struct {
	Request *domain.BalanceRequest
	// Transaction is the credit of an approved request.
	Transaction *domain.BalanceTransaction
	Warnings    []error
}

// Approve credits the requested amount. Returns domain.ErrNotPending if the request was already decided.
func (s *BalanceRequestService) Approve(ctx context.Context, cmd DecideBalanceRequestCommand) (*BalanceRequestResult, error) {
	return s.decideByID(ctx, cmd, domain.BalanceRequestApproved)
}

// Reject finalizes the request without touching the balance.
func (s *BalanceRequestService) Reject(ctx context.Context, cmd DecideBalanceRequestCommand) (*BalanceRequestResult, error) {
	return s.decideByID(ctx, cmd, domain.BalanceRequestRejected)
}

func (s *BalanceRequestService) decideByID(
	ctx context.Context,
	cmd DecideBalanceRequestCommand,
	status domain.BalanceRequestStatus,
) (*BalanceRequestResult, error) {
	if cmd.RequestID <= 0 {
		return nil, fmt.Errorf("decide balance request: %w: invalid id %d", domain.ErrValidation, cmd.RequestID)
	}

	var result BalanceRequestResult
	var eventIDs []uuid.UUID
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		requestRepo, repoErr := txRepo[BalanceRequestRepository](tx, repoargs.BalanceRequestRepoName)
		if repoErr != nil {
			return repoErr
		}
		request, lockErr := requestRepo.LockByID(c, cmd.RequestID)
		if lockErr != nil {
			return notFoundAsValidation(lockErr, "balance request", cmd.RequestID)
		}
		ids, decideErr := s.decide(c, tx, request, cmd.ActorID, status, cmd.AdminNote, &result)
		eventIDs = ids
		return decideErr
	})
	if txErr != nil {
		return nil, serviceErr("decide balance request", txErr)
	}
	return s.afterDecision(ctx, cmd.ActorID, &result, eventIDs), nil
}

type GatewayResultCommand struct {
	UserID        int64
	Amount        decimal.Decimal
	Approved      bool
	Reference     string
	PaymentMethod string
	Note          string
}

// ApplyGatewayResult records a payment gateway verdict as a request decided by the system actor. The
// gateway reference is unique: a repeated verdict is a domain.ErrConflict.
func (s *BalanceRequestService) ApplyGatewayResult(
	ctx context.Context,
	cmd GatewayResultCommand,
) (*BalanceRequestResult, error) {
	if err := validateTopUp(cmd.UserID, cmd.Amount, cmd.PaymentMethod); err != nil {
		return nil, fmt.Errorf("gateway result: %w", err)
	}
	reference := strings.TrimSpace(cmd.Reference)
	if reference == "" {
		return nil, fmt.Errorf("gateway result: %w: empty reference", domain.ErrValidation)
	}

	status := domain.BalanceRequestRejected
	if cmd.Approved {
		status = domain.BalanceRequestApproved
	}

	var result BalanceRequestResult
	var eventIDs []uuid.UUID
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		requestRepo, repoErr := txRepo[BalanceRequestRepository](tx, repoargs.BalanceRequestRepoName)
		if repoErr != nil {
			return repoErr
		}
		request, createErr := requestRepo.Create(c, repoargs.CreateBalanceRequest{
			UserID:            cmd.UserID,
			Amount:            cmd.Amount,
			PaymentMethod:     cmd.PaymentMethod,
			ExternalReference: &reference,
		})
		if createErr != nil {
			if errors.Is(createErr, domain.ErrDuplicateKey) {
				return fmt.Errorf("%w: gateway reference %q already processed: %w",
					domain.ErrConflict, reference, createErr)
			}
			return notFoundAsValidation(createErr, "user", cmd.UserID)
		}
		ids, decideErr := s.decide(c, tx, request, domain.SystemActorID, status, cmd.Note, &result)
		eventIDs = ids
		return decideErr
	})
	if txErr != nil {
		return nil, serviceErr("gateway result", txErr)
	}
	return s.afterDecision(ctx, domain.SystemActorID, &result, eventIDs), nil
}

// decide finalizes a request that is locked or was created in tx. The user row is locked after the request
// row.
func (s *BalanceRequestService) decide(
	ctx context.Context,
	tx uow.TX,
	request *domain.BalanceRequest,
	actorID int64,
	status domain.BalanceRequestStatus,
	note string,
	result *BalanceRequestResult,
) ([]uuid.UUID, error) {
	if request.Status != domain.BalanceRequestPending {
		return nil, fmt.Errorf("balance request %d is %s: %w", request.ID, request.Status, domain.ErrNotPending)
	}

	requestRepo, requestRepoErr := txRepo[BalanceRequestRepository](tx, repoargs.BalanceRequestRepoName)
	if requestRepoErr != nil {
		return nil, requestRepoErr
	}
	userRepo, userRepoErr := txRepo[UserRepository](tx, repoargs.UserRepoName)
	if userRepoErr != nil {
		return nil, userRepoErr
	}

	var user *domain.User
	if status == domain.BalanceRequestApproved {
		locked, lockErr := userRepo.LockByID(ctx, request.UserID)
		if lockErr != nil {
			return nil, lockErr //nolint:wrapcheck
		}
		user = locked
		entry, applyErr := s.ledger.Apply(ctx, tx, LedgerEntryArgs{
			User:          user,
			Direction:     domain.DirectionCredit,
			Amount:        request.Amount,
			Description:   fmt.Sprintf("balance request #%d (%s)", request.ID, request.PaymentMethod),
			ReferenceType: ReferenceBalanceRequest,
			ReferenceID:   request.ID,
		})
		if applyErr != nil {
			return nil, applyErr
		}
		result.Transaction = entry
	} else {
		found, findErr := userRepo.FindByID(ctx, request.UserID)
		if findErr != nil {
			return nil, findErr //nolint:wrapcheck
		}
		user = found
	}

	finalized, finalizeErr := requestRepo.Finalize(ctx, repoargs.FinalizeBalanceRequest{
		ID:          request.ID,
		Status:      status,
		ProcessedBy: actorID,
		ProcessedAt: s.now(),
		AdminNote:   note,
	})
	if finalizeErr != nil {
		return nil, finalizeErr //nolint:wrapcheck
	}
	result.Request = finalized

	event := domain.EventBalanceRequestRejected
	if status == domain.BalanceRequestApproved {
		event = domain.EventBalanceRequestApproved
	}
	return s.enqueue(ctx, tx,
		outboxDraft{
			channel:       domain.OutboxChannelEmail,
			eventType:     event,
			aggregateType: domain.AggregateBalanceRequest,
			aggregateID:   finalized.ID,
			payload:       balanceRequestEmail(user, finalized),
		},
		outboxDraft{
			channel:       domain.OutboxChannelChat,
			eventType:     event,
			aggregateType: domain.AggregateBalanceRequest,
			aggregateID:   finalized.ID,
			payload:       domain.ChatPayload{Text: balanceRequestChatText(finalized)},
		},
	)
}

func (s *BalanceRequestService) afterDecision(
	ctx context.Context,
	actorID int64,
	result *BalanceRequestResult,
	eventIDs []uuid.UUID,
) *BalanceRequestResult {
	r := result.Request
	s.l.WithFields(logrus.Fields{
		"requestID": r.ID,
		"userID":    r.UserID,
		"status":    r.Status,
		"actorID":   actorID,
	}).Info("balance request decided")

	result.Warnings = s.dispatchNow(ctx, eventIDs)

	s.record(ctx, AuditRecord{
		ActorID:     actorID,
		Action:      "balance_request." + string(r.Status),
		TargetType:  domain.AggregateBalanceRequest,
		TargetID:    r.ID,
		Description: fmt.Sprintf("%s %s for user %d", r.Status, r.Amount.StringFixed(2), r.UserID),
	})
	return result
}

func validateTopUp(userID int64, amount decimal.Decimal, paymentMethod string) error {
	if userID <= 0 {
		return fmt.Errorf("%w: invalid user id %d", domain.ErrValidation, userID)
	}
	if !amount.IsPositive() || !domain.HasMoneyScale(amount) {
		return fmt.Errorf("%w: amount must be positive with at most %d decimal places, got %s",
			domain.ErrValidation, domain.MoneyPlaces, amount)
	}
	if strings.TrimSpace(paymentMethod) == "" {
		return fmt.Errorf("%w: empty payment method", domain.ErrValidation)
	}
	return nil
}
