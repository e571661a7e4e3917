package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const balanceRequestColumns = `id, created_at, user_id, amount, payment_method, status, processed_by,
	processed_at, admin_note, external_reference`

type BalanceRequestRepository struct {
	conn uow.DBTX
}

func NewBalanceRequestRepository(conn uow.DBTX) *BalanceRequestRepository {
	return &BalanceRequestRepository{conn: conn}
}

func (r *BalanceRequestRepository) Create(
	ctx context.Context,
	args repoargs.CreateBalanceRequest,
) (*domain.BalanceRequest, error) {
	row := r.conn.QueryRow(ctx,
		`INSERT INTO balance_requests (user_id, amount, payment_method, status, external_reference)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+balanceRequestColumns,
		args.UserID, args.Amount, args.PaymentMethod, domain.BalanceRequestPending, args.ExternalReference,
	)
	req, err := scanBalanceRequest(row)
	if err != nil {
		return nil, convertErr(err, "create balance request for user %d", args.UserID)
	}
	return req, nil
}

func (r *BalanceRequestRepository) FindByID(ctx context.Context, id int64) (*domain.BalanceRequest, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+balanceRequestColumns+` FROM balance_requests WHERE id = $1`, id)
	req, err := scanBalanceRequest(row)
	if err != nil {
		return nil, convertErr(err, "find balance request %d", id)
	}
	return req, nil
}

func (r *BalanceRequestRepository) LockByID(ctx context.Context, id int64) (*domain.BalanceRequest, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT `+balanceRequestColumns+` FROM balance_requests WHERE id = $1 FOR UPDATE`, id)
	req, err := scanBalanceRequest(row)
	if err != nil {
		return nil, convertErr(err, "lock balance request %d", id)
	}
	return req, nil
}

// Finalize moves a pending request to its final status. A request that is not pending is left untouched and
// domain.ErrNotPending is returned.
func (r *BalanceRequestRepository) Finalize(
	ctx context.Context,
	args repoargs.FinalizeBalanceRequest,
) (*domain.BalanceRequest, error) {
	row := r.conn.QueryRow(ctx,
		`UPDATE balance_requests
		SET status = $2, processed_by = $3, processed_at = $4, admin_note = $5
		WHERE id = $1 AND status = $6
		RETURNING `+balanceRequestColumns,
		args.ID, args.Status, args.ProcessedBy, args.ProcessedAt, args.AdminNote, domain.BalanceRequestPending,
	)
	req, err := scanBalanceRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("[repository/finalize balance request %d] %w", args.ID, domain.ErrNotPending)
		}
		return nil, convertErr(err, "finalize balance request %d", args.ID)
	}
	return req, nil
}

func scanBalanceRequest(row pgx.Row) (*domain.BalanceRequest, error) {
	var b domain.BalanceRequest
	if err := row.Scan(
		&b.ID, &b.CreatedAt, &b.UserID, &b.Amount, &b.PaymentMethod, &b.Status, &b.ProcessedBy,
		&b.ProcessedAt, &b.AdminNote, &b.ExternalReference,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &b, nil
}
