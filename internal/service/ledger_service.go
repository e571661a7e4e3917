package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/metrics"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	defaultTransactionsLimit uint = 50

	ReferenceOrder          = "order"
	ReferenceBalanceRequest = "balance_request"
	ReferenceAdjustment     = "adjustment"
)

// LedgerService owns users.balance. The balance only changes together with a balance_transactions row.
type LedgerService struct {
	base
	userRepo    UserRepository
	blRepo      BalanceTransactionRepository
	debitPolicy domain.DebitPolicy
}

func NewLedgerService(u uow.UOW, audit *AuditService, l *logrus.Logger) (*LedgerService, error) {
	userRepo, userRepoErr := uowRepo[UserRepository](u, repoargs.UserRepoName)
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	blRepo, blRepoErr := uowRepo[BalanceTransactionRepository](u, repoargs.BalanceTransactionRepoName)
	if blRepoErr != nil {
		return nil, blRepoErr
	}
	return &LedgerService{
		base:        newBase(u, audit, l, "ledger"),
		userRepo:    userRepo,
		blRepo:      blRepo,
		debitPolicy: domain.StrictDebit,
	}, nil
}

// SetDebitPolicy sets what manual debits do when they exceed the balance.
func (s *LedgerService) SetDebitPolicy(p domain.DebitPolicy) *LedgerService {
	s.debitPolicy = p
	return s
}

func (s *LedgerService) DebitPolicy() domain.DebitPolicy {
	return s.debitPolicy
}

type LedgerEntryArgs struct {
	// User must be locked by the caller in the same transaction.
	User          *domain.User
	Direction     domain.DirectionType
	Amount        decimal.Decimal
	Description   string
	ReferenceType string
	ReferenceID   int64
}

// Apply writes a ledger entry and the new cached balance inside tx. On success args.User.Balance holds the
// new balance.
//
// Returns domain.ErrValidation for a non-positive amount or unknown direction and
// domain.ErrInsufficientFunds for a debit above the balance. Nothing is written in both cases.
func (s *LedgerService) Apply(ctx context.Context, tx uow.TX, args LedgerEntryArgs) (*domain.BalanceTransaction, error) {
	if !args.Amount.IsPositive() || !domain.HasMoneyScale(args.Amount) {
		return nil, fmt.Errorf("%w: ledger amount must be positive with at most %d decimal places, got %s",
			domain.ErrValidation, domain.MoneyPlaces, args.Amount)
	}
	if !args.Direction.Valid() {
		return nil, fmt.Errorf("%w: unknown direction %q", domain.ErrValidation, args.Direction)
	}

	newBalance := args.User.Balance.Add(args.Amount)
	if args.Direction == domain.DirectionDebit {
		if args.User.Balance.LessThan(args.Amount) {
			return nil, fmt.Errorf("%w: balance %s, required %s",
				domain.ErrInsufficientFunds, args.User.Balance.StringFixed(2), args.Amount.StringFixed(2))
		}
		newBalance = args.User.Balance.Sub(args.Amount)
	}

	blRepo, blRepoErr := txRepo[BalanceTransactionRepository](tx, repoargs.BalanceTransactionRepoName)
	if blRepoErr != nil {
		return nil, blRepoErr
	}
	userRepo, userRepoErr := txRepo[UserRepository](tx, repoargs.UserRepoName)
	if userRepoErr != nil {
		return nil, userRepoErr
	}

	entry, createErr := blRepo.Create(ctx, repoargs.BalanceTransactionCreate{
		UserID:        args.User.ID,
		Direction:     args.Direction,
		Amount:        args.Amount,
		Description:   args.Description,
		ReferenceType: args.ReferenceType,
		ReferenceID:   args.ReferenceID,
	})
	if createErr != nil {
		return nil, createErr //nolint:wrapcheck
	}
	if updErr := userRepo.UpdateBalance(ctx, args.User.ID, newBalance); updErr != nil {
		return nil, updErr //nolint:wrapcheck
	}
	args.User.Balance = newBalance

	metrics.RecordLedgerEntry(string(args.Direction), args.ReferenceType)
	return entry, nil
}

type AdjustBalanceCommand struct {
	ActorID     int64
	UserID      int64
	Direction   domain.DirectionType
	Amount      decimal.Decimal
	Description string
}

type AdjustBalanceResult struct {
	User        *domain.User
	Transaction *domain.BalanceTransaction
	Policy      domain.DebitPolicy
	Requested   decimal.Decimal
	// Applied is what actually moved. It is below Requested only for clamped debits.
	Applied decimal.Decimal
}

// AdjustBalance is a manual correction by an operator. Debits follow the service debit policy: StrictDebit
// rejects an over-debit with domain.ErrInsufficientFunds, ClampedDebit takes what is there and records
// exactly that amount.
func (s *LedgerService) AdjustBalance(ctx context.Context, cmd AdjustBalanceCommand) (*AdjustBalanceResult, error) {
	if !cmd.Amount.IsPositive() || !domain.HasMoneyScale(cmd.Amount) || !cmd.Direction.Valid() || cmd.UserID <= 0 {
		return nil, fmt.Errorf("adjust balance: %w: user %d, %s %s",
			domain.ErrValidation, cmd.UserID, cmd.Direction, cmd.Amount)
	}

	result := AdjustBalanceResult{
		Policy:    s.debitPolicy,
		Requested: cmd.Amount,
		Applied:   cmd.Amount,
	}

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		userRepo, repoErr := txRepo[UserRepository](tx, repoargs.UserRepoName)
		if repoErr != nil {
			return repoErr
		}
		user, lockErr := userRepo.LockByID(c, cmd.UserID)
		if lockErr != nil {
			return notFoundAsValidation(lockErr, "user", cmd.UserID)
		}
		result.User = user

		if cmd.Direction == domain.DirectionDebit && s.debitPolicy == domain.ClampedDebit &&
			user.Balance.LessThan(cmd.Amount) {
			result.Applied = user.Balance
		}
		if result.Applied.IsZero() {
			return nil
		}

		entry, applyErr := s.Apply(c, tx, LedgerEntryArgs{
			User:          user,
			Direction:     cmd.Direction,
			Amount:        result.Applied,
			Description:   cmd.Description,
			ReferenceType: ReferenceAdjustment,
		})
		if applyErr != nil {
			return applyErr
		}
		result.Transaction = entry
		return nil
	})
	if txErr != nil {
		return nil, serviceErr("adjust balance", txErr)
	}

	s.record(ctx, AuditRecord{
		ActorID:    cmd.ActorID,
		Action:     "balance.adjusted",
		TargetType: domain.AggregateUser,
		TargetID:   cmd.UserID,
		Description: fmt.Sprintf("%s %s (requested %s, policy %s): %s",
			cmd.Direction, result.Applied.StringFixed(2), result.Requested.StringFixed(2), s.debitPolicy,
			cmd.Description),
	})
	return &result, nil
}

type UserBalance struct {
	UserID int64
	Cached decimal.Decimal
	Credit decimal.Decimal
	Debit  decimal.Decimal
}

// Ledger is the balance computed from the transaction log.
func (b *UserBalance) Ledger() decimal.Decimal {
	return b.Credit.Sub(b.Debit)
}

func (b *UserBalance) Consistent() bool {
	return b.Cached.Equal(b.Ledger())
}

// GetUserBalance returns the cached balance together with the ledger aggregate, so callers can check the
// invariant.
func (s *LedgerService) GetUserBalance(ctx context.Context, userID int64) (*UserBalance, error) {
	user, userErr := s.userRepo.FindByID(ctx, userID)
	if userErr != nil {
		return nil, serviceErr("get user balance", userErr)
	}
	agg, aggErr := s.blRepo.GetUserBalance(ctx, userID)
	if aggErr != nil {
		return nil, serviceErr("get user balance", aggErr)
	}
	balance := &UserBalance{
		UserID: userID,
		Cached: user.Balance,
		Credit: agg.CreditAmount,
		Debit:  agg.DebitAmount,
	}
	if !balance.Consistent() {
		s.l.WithFields(logrus.Fields{
			"userID": userID,
			"cached": balance.Cached.String(),
			"ledger": balance.Ledger().String(),
		}).Error("cached balance differs from ledger")
	}
	return balance, nil
}

func (s *LedgerService) GetTransactions(
	ctx context.Context,
	userID int64,
	limit uint,
) ([]domain.BalanceTransaction, error) {
	if limit == 0 {
		limit = defaultTransactionsLimit
	}
	transactions, err := s.blRepo.GetByUserID(ctx, userID, limit)
	if err != nil {
		return nil, serviceErr("get transactions", err)
	}
	return transactions, nil
}
