package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
)

type AuditRepository struct {
	conn uow.DBTX
}

func NewAuditRepository(conn uow.DBTX) *AuditRepository {
	return &AuditRepository{conn: conn}
}

func (r *AuditRepository) Create(ctx context.Context, args repoargs.CreateAuditEntry) (*domain.AuditEntry, error) {
	var e domain.AuditEntry
	err := r.conn.QueryRow(ctx,
		`INSERT INTO audit_log (actor_id, action, target_type, target_id, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, actor_id, action, target_type, target_id, description`,
		args.ActorID, args.Action, args.TargetType, args.TargetID, args.Description,
	).Scan(&e.ID, &e.CreatedAt, &e.ActorID, &e.Action, &e.TargetType, &e.TargetID, &e.Description)
	if err != nil {
		return nil, convertErr(err, "create audit entry %s", args.Action)
	}
	return &e, nil
}

func (r *AuditRepository) GetByTarget(
	ctx context.Context,
	targetType string,
	targetID int64,
	limit uint,
) ([]domain.AuditEntry, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT id, created_at, actor_id, action, target_type, target_id, description
		FROM audit_log WHERE target_type = $1 AND target_id = $2
		ORDER BY id DESC LIMIT $3`, targetType, targetID, limit)
	if err != nil {
		return nil, convertErr(err, "get audit of %s %d", targetType, targetID)
	}
	defer rows.Close()

	var result []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if scanErr := rows.Scan(
			&e.ID, &e.CreatedAt, &e.ActorID, &e.Action, &e.TargetType, &e.TargetID, &e.Description,
		); scanErr != nil {
			return nil, convertErr(scanErr, "scan audit of %s %d", targetType, targetID)
		}
		result = append(result, e)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "get audit of %s %d", targetType, targetID)
	}
	return result, nil
}
