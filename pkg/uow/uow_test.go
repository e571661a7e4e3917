package uow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	conn DBTX
}

type otherRepo struct{}

func fakeFactory(conn DBTX) Repository {
	return &fakeRepo{conn: conn}
}

func TestRegister(t *testing.T) {
	u := NewUnitOfWork(nil)
	require.NoError(t, u.Register("fake", fakeFactory))
	require.ErrorIs(t, u.Register("fake", fakeFactory), ErrRepositoryAlreadyRegistered)

	repo, err := GetRepositoryAs[*fakeRepo](u, "fake")
	require.NoError(t, err)
	assert.NotNil(t, repo)

	_, err = u.GetRepository("missing")
	require.ErrorIs(t, err, ErrRepositoryNotRegistered)

	_, err = GetRepositoryAs[*otherRepo](u, "fake")
	require.ErrorIs(t, err, ErrInvalidRepositoryType)
}

func TestTransactionCachesRepositories(t *testing.T) {
	calls := 0
	factories := map[RepositoryName]RepositoryFactory{
		"fake": func(conn DBTX) Repository {
			calls++
			return fakeFactory(conn)
		},
	}
	tx := NewTransaction(nil, factories)

	first, err := GetAs[*fakeRepo](tx, "fake")
	require.NoError(t, err)
	second, err := GetAs[*fakeRepo](tx, "fake")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)

	_, err = tx.Get("missing")
	require.ErrorIs(t, err, ErrRepositoryNotRegistered)

	_, err = GetAs[*otherRepo](tx, "fake")
	require.ErrorIs(t, err, ErrInvalidRepositoryType)
}
