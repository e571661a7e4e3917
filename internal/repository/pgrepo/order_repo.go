package pgrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, created_at, updated_at, user_id, amount, status, admin_note, external_reference,
	integration, sku, quantity, fulfilled_at`

var orderTables = map[domain.OrderKind]string{
	domain.OrderKindPackage: "package_orders",
	domain.OrderKindProduct: "product_orders",
}

// OrderRepository works with both order tables. The table is picked by the order kind.
type OrderRepository struct {
	conn uow.DBTX
}

func NewOrderRepository(conn uow.DBTX) *OrderRepository {
	return &OrderRepository{conn: conn}
}

func (r *OrderRepository) Create(ctx context.Context, args repoargs.CreateOrder) (*domain.Order, error) {
	table, err := orderTable(args.Kind)
	if err != nil {
		return nil, err
	}
	status := args.Status
	if status == "" {
		status = domain.OrderStatusPending
	}
	quantity := args.Quantity
	if quantity == 0 {
		quantity = 1
	}
	row := r.conn.QueryRow(ctx,
		`INSERT INTO `+table+` (user_id, amount, status, external_reference, integration, sku, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+orderColumns,
		args.UserID, args.Amount, status, args.ExternalReference, args.Integration, args.SKU, quantity,
	)
	order, scanErr := scanOrder(row, args.Kind)
	if scanErr != nil {
		return nil, convertErr(scanErr, "create %s order", args.Kind)
	}
	return order, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, kind domain.OrderKind, id int64) (*domain.Order, error) {
	table, err := orderTable(kind)
	if err != nil {
		return nil, err
	}
	row := r.conn.QueryRow(ctx, `SELECT `+orderColumns+` FROM `+table+` WHERE id = $1`, id)
	order, scanErr := scanOrder(row, kind)
	if scanErr != nil {
		return nil, convertErr(scanErr, "find %s order %d", kind, id)
	}
	return order, nil
}

// LockByID reads the order row and locks it until the end of the transaction.
func (r *OrderRepository) LockByID(ctx context.Context, kind domain.OrderKind, id int64) (*domain.Order, error) {
	table, err := orderTable(kind)
	if err != nil {
		return nil, err
	}
	row := r.conn.QueryRow(ctx, `SELECT `+orderColumns+` FROM `+table+` WHERE id = $1 FOR UPDATE`, id)
	order, scanErr := scanOrder(row, kind)
	if scanErr != nil {
		return nil, convertErr(scanErr, "lock %s order %d", kind, id)
	}
	return order, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, args repoargs.OrderStatusUpdate) (*domain.Order, error) {
	table, err := orderTable(args.Kind)
	if err != nil {
		return nil, err
	}
	row := r.conn.QueryRow(ctx,
		`UPDATE `+table+` SET status = $2, admin_note = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		args.ID, args.Status, args.AdminNote,
	)
	order, scanErr := scanOrder(row, args.Kind)
	if scanErr != nil {
		return nil, convertErr(scanErr, "update status of %s order %d", args.Kind, args.ID)
	}
	return order, nil
}

// MarkFulfilled sets the fulfillment marker. It only succeeds once per order.
func (r *OrderRepository) MarkFulfilled(ctx context.Context, kind domain.OrderKind, id int64, at time.Time) error {
	table, err := orderTable(kind)
	if err != nil {
		return err
	}
	tag, execErr := r.conn.Exec(ctx,
		`UPDATE `+table+` SET fulfilled_at = $2, updated_at = now() WHERE id = $1 AND fulfilled_at IS NULL`,
		id, at)
	if execErr != nil {
		return convertErr(execErr, "mark %s order %d fulfilled", kind, id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("[repository/mark %s order %d fulfilled] %w: already fulfilled or missing",
			kind, id, domain.ErrConflict)
	}
	return nil
}

func orderTable(kind domain.OrderKind) (string, error) {
	table, ok := orderTables[kind]
	if !ok {
		return "", fmt.Errorf("[repository/order] %w: unknown order kind %q", domain.ErrValidation, kind)
	}
	return table, nil
}

func scanOrder(row pgx.Row, kind domain.OrderKind) (*domain.Order, error) {
	o := domain.Order{Kind: kind}
	if err := row.Scan(
		&o.ID, &o.CreatedAt, &o.UpdatedAt, &o.UserID, &o.Amount, &o.Status, &o.AdminNote,
		&o.ExternalReference, &o.Integration, &o.SKU, &o.Quantity, &o.FulfilledAt,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &o, nil
}
