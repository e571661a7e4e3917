package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/internal/service/tokens"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
)

const JWTTokenExpire = 1 * time.Hour

// UserService reads users and issues API tokens. Identity itself is managed elsewhere.
type UserService struct {
	userRepo       UserRepository
	jwtTokenSecret []byte
}

func NewUserService(u uow.UOW, jwtTokenSecret []byte) (*UserService, error) {
	userRepo, userRepoErr := uowRepo[UserRepository](u, repoargs.UserRepoName)
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	return &UserService{
		userRepo:       userRepo,
		jwtTokenSecret: jwtTokenSecret,
	}, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, serviceErr("get user", err)
	}
	return user, nil
}

// IssueToken returns a signed token carrying the user id and role. Blocked users get domain.ErrValidation.
func (s *UserService) IssueToken(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	if user.Status != domain.UserStatusActive {
		return "", fmt.Errorf("issue token: %w: user %d is %s", domain.ErrValidation, userID, user.Status)
	}
	if ttl <= 0 {
		ttl = JWTTokenExpire
	}
	token, tokenErr := tokens.GenerateUserJWT(user.ID, user.Role, ttl, s.jwtTokenSecret)
	if tokenErr != nil {
		return "", fmt.Errorf("issue token: %w", tokenErr)
	}
	return token, nil
}
