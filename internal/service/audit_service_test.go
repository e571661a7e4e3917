package service

import (
	"errors"
	"testing"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/memrepo"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestAuditFailureIsLogged(t *testing.T) {
	env := newTestEnv(t, domain.StrictDebit)
	user := env.user("0")

	logger, hook := test.NewNullLogger()
	audit, err := NewAuditService(env.uow, logger)
	require.NoError(t, err)

	env.store.FailNext("audit.Create", errors.New("disk full"))
	audit.Record(t.Context(), AuditRecord{
		ActorID:    testAdminID,
		Action:     "balance.adjusted",
		TargetType: domain.AggregateUser,
		TargetID:   user.ID,
	})

	require.NotNil(t, hook.LastEntry())
	require.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	require.Equal(t, "audit record failed", hook.LastEntry().Message)

	history, histErr := audit.History(t.Context(), domain.AggregateUser, user.ID, 0)
	require.NoError(t, histErr)
	require.Empty(t, history)

	audit.Record(t.Context(), AuditRecord{
		ActorID:    testAdminID,
		Action:     "balance.adjusted",
		TargetType: domain.AggregateUser,
		TargetID:   user.ID,
	})
	history, histErr = audit.History(t.Context(), domain.AggregateUser, user.ID, 0)
	require.NoError(t, histErr)
	require.Len(t, history, 1)
}

func TestFactoryRejectsUnknownPolicy(t *testing.T) {
	_, err := Factory(FactoryArgs{
		UOW:         memrepo.NewUnitOfWork(memrepo.NewStore()),
		Logger:      logrus.New(),
		DebitPolicy: "overdraft",
	})
	require.ErrorIs(t, err, domain.ErrValidation)
}
