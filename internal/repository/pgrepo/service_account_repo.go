package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const serviceAccountColumns = `id, created_at, user_id, order_id, login, password_hash`

type ServiceAccountRepository struct {
	conn uow.DBTX
}

func NewServiceAccountRepository(conn uow.DBTX) *ServiceAccountRepository {
	return &ServiceAccountRepository{conn: conn}
}

func (r *ServiceAccountRepository) Create(
	ctx context.Context,
	args repoargs.CreateServiceAccount,
) (*domain.ServiceAccount, error) {
	row := r.conn.QueryRow(ctx,
		`INSERT INTO service_accounts (user_id, order_id, login, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING `+serviceAccountColumns,
		args.UserID, args.OrderID, args.Login, args.PasswordHash,
	)
	a, err := scanServiceAccount(row)
	if err != nil {
		return nil, convertErr(err, "create service account for user %d", args.UserID)
	}
	return a, nil
}

func (r *ServiceAccountRepository) FindByUserID(ctx context.Context, userID int64) (*domain.ServiceAccount, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT `+serviceAccountColumns+` FROM service_accounts WHERE user_id = $1`, userID)
	a, err := scanServiceAccount(row)
	if err != nil {
		return nil, convertErr(err, "find service account of user %d", userID)
	}
	return a, nil
}

func scanServiceAccount(row pgx.Row) (*domain.ServiceAccount, error) {
	var a domain.ServiceAccount
	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UserID, &a.OrderID, &a.Login, &a.PasswordHash); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &a, nil
}
