package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const balanceTransactionColumns = `id, created_at, user_id, amount, direction, description,
	reference_type, reference_id`

// BalanceTransactionRepository only inserts and reads. Ledger rows are never updated.
type BalanceTransactionRepository struct {
	conn uow.DBTX
}

func NewBalanceTransactionRepository(conn uow.DBTX) *BalanceTransactionRepository {
	return &BalanceTransactionRepository{conn: conn}
}

func (r *BalanceTransactionRepository) Create(
	ctx context.Context,
	args repoargs.BalanceTransactionCreate,
) (*domain.BalanceTransaction, error) {
	row := r.conn.QueryRow(ctx,
		`INSERT INTO balance_transactions (user_id, amount, direction, description, reference_type, reference_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+balanceTransactionColumns,
		args.UserID, args.Amount, args.Direction, args.Description, args.ReferenceType, args.ReferenceID,
	)
	var t domain.BalanceTransaction
	if err := scanBalanceTransaction(row, &t); err != nil {
		return nil, convertErr(err, "create balance transaction for user %d", args.UserID)
	}
	return &t, nil
}

// GetByUserID returns the newest limit transactions of the user.
func (r *BalanceTransactionRepository) GetByUserID(
	ctx context.Context,
	userID int64,
	limit uint,
) ([]domain.BalanceTransaction, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT `+balanceTransactionColumns+` FROM balance_transactions
		WHERE user_id = $1 ORDER BY id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, convertErr(err, "get balance transactions of user %d", userID)
	}
	defer rows.Close()

	var result []domain.BalanceTransaction
	for rows.Next() {
		var t domain.BalanceTransaction
		if scanErr := scanBalanceTransaction(rows, &t); scanErr != nil {
			return nil, convertErr(scanErr, "scan balance transaction of user %d", userID)
		}
		result = append(result, t)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "get balance transactions of user %d", userID)
	}
	return result, nil
}

func (r *BalanceTransactionRepository) GetUserBalance(
	ctx context.Context,
	userID int64,
) (*repoargs.BalanceAggregation, error) {
	var agg repoargs.BalanceAggregation
	err := r.conn.QueryRow(ctx,
		`SELECT
			COALESCE(SUM(amount) FILTER (WHERE direction = 'credit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE direction = 'debit'), 0)
		FROM balance_transactions WHERE user_id = $1`, userID,
	).Scan(&agg.CreditAmount, &agg.DebitAmount)
	if err != nil {
		return nil, convertErr(err, "aggregate balance of user %d", userID)
	}
	return &agg, nil
}

func scanBalanceTransaction(row pgx.Row, t *domain.BalanceTransaction) error {
	return row.Scan( //nolint:wrapcheck
		&t.ID, &t.CreatedAt, &t.UserID, &t.Amount, &t.Direction, &t.Description,
		&t.ReferenceType, &t.ReferenceID,
	)
}
