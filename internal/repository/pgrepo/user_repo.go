package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const userColumns = `id, created_at, updated_at, email, username, role, status, balance`

type UserRepository struct {
	conn uow.DBTX
}

func NewUserRepository(conn uow.DBTX) *UserRepository {
	return &UserRepository{conn: conn}
}

func (r *UserRepository) Create(ctx context.Context, args repoargs.CreateUser) (*domain.User, error) {
	role := args.Role
	if role == "" {
		role = domain.UserRoleCustomer
	}
	row := r.conn.QueryRow(ctx,
		`INSERT INTO users (email, username, role, status, balance)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		args.Email, args.Username, role, domain.UserStatusActive, args.Balance,
	)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "create user %s", args.Username)
	}
	return user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "find user %d", id)
	}
	return user, nil
}

// LockByID reads the user row and locks it until the end of the transaction.
func (r *UserRepository) LockByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "lock user %d", id)
	}
	return user, nil
}

func (r *UserRepository) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	tag, err := r.conn.Exec(ctx,
		`UPDATE users SET balance = $2, updated_at = now() WHERE id = $1`, id, balance)
	if err != nil {
		return convertErr(err, "update balance of user %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(pgx.ErrNoRows, "update balance of user %d", id)
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Email, &u.Username, &u.Role, &u.Status, &u.Balance,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &u, nil
}
