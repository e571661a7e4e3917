package service

import (
	"context"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	"github.com/sirupsen/logrus"
)

const defaultAuditHistoryLimit uint = 100

type AuditRecord struct {
	ActorID     int64
	Action      string
	TargetType  string
	TargetID    int64
	Description string
}

// AuditService is an append-only sink. Recording never fails the caller.
type AuditService struct {
	repo AuditRepository
	l    *logrus.Entry
}

func NewAuditService(u uow.UOW, l *logrus.Logger) (*AuditService, error) {
	repo, err := uowRepo[AuditRepository](u, repoargs.AuditRepoName)
	if err != nil {
		return nil, err
	}
	return &AuditService{
		repo: repo,
		l:    l.WithFields(logrus.Fields{"component": "service", "module": "audit"}),
	}, nil
}

// Record appends r to the audit log outside of any business transaction. A failure is only logged.
func (a *AuditService) Record(ctx context.Context, r AuditRecord) {
	_, err := a.repo.Create(context.WithoutCancel(ctx), repoargs.CreateAuditEntry{
		ActorID:     r.ActorID,
		Action:      r.Action,
		TargetType:  r.TargetType,
		TargetID:    r.TargetID,
		Description: r.Description,
	})
	if err != nil {
		a.l.WithError(err).WithFields(logrus.Fields{
			"actorID":    r.ActorID,
			"action":     r.Action,
			"targetType": r.TargetType,
			"targetID":   r.TargetID,
		}).Error("audit record failed")
	}
}

func (a *AuditService) History(
	ctx context.Context,
	targetType string,
	targetID int64,
	limit uint,
) ([]domain.AuditEntry, error) {
	if limit == 0 {
		limit = defaultAuditHistoryLimit
	}
	entries, err := a.repo.GetByTarget(ctx, targetType, targetID, limit)
	if err != nil {
		return nil, serviceErr("audit history", err)
	}
	return entries, nil
}
