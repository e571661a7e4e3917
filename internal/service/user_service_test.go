package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fsdevblog/groph-ledger/internal/domain"
	"github.com/fsdevblog/groph-ledger/internal/repository/repoargs"
	"github.com/fsdevblog/groph-ledger/internal/service/mocks"
	"github.com/fsdevblog/groph-ledger/internal/service/tokens"
	"github.com/fsdevblog/groph-ledger/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-ledger/pkg/uow/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type UserServiceTestSuite struct {
	suite.Suite
	mockUOW      *uowmocks.MockUOW
	mockUserRepo *mocks.MockUserRepository
	jwtSecret    []byte
	userService  *UserService
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (s *UserServiceTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(mockCtrl)
	s.jwtSecret = []byte("secret")

	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()

	userService, servErr := NewUserService(s.mockUOW, s.jwtSecret)
	s.Require().NoError(servErr)
	s.userService = userService
}

func (s *UserServiceTestSuite) TestIssueToken() {
	active := &domain.User{ID: 7, Role: domain.UserRoleAdmin, Status: domain.UserStatusActive}
	blocked := &domain.User{ID: 8, Role: domain.UserRoleCustomer, Status: domain.UserStatusBlocked}

	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), int64(7)).Return(active, nil).AnyTimes()
	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), int64(8)).Return(blocked, nil).AnyTimes()
	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), int64(9)).Return(nil, domain.ErrRecordNotFound).AnyTimes()
	s.mockUserRepo.EXPECT().FindByID(gomock.Any(), int64(10)).
		Return(nil, errors.New("connection refused")).AnyTimes()

	cases := []struct {
		name    string
		userID  int64
		wantErr error
	}{
		{name: "active", userID: 7},
		{name: "blocked", userID: 8, wantErr: domain.ErrValidation},
		{name: "not found", userID: 9, wantErr: domain.ErrRecordNotFound},
		{name: "storage error", userID: 10, wantErr: domain.ErrPersistence},
	}
	for _, tt := range cases {
		s.Run(tt.name, func() {
			token, err := s.userService.IssueToken(context.Background(), tt.userID, time.Minute)
			if tt.wantErr != nil {
				s.Require().ErrorIs(err, tt.wantErr)
				s.Empty(token)
				return
			}
			s.Require().NoError(err)

			claims, claimsErr := tokens.ValidateUserJWT(token, s.jwtSecret)
			s.Require().NoError(claimsErr)
			s.Equal(active.ID, claims.ID)
			s.Equal(domain.UserRoleAdmin, claims.Role)

			_, wrongKeyErr := tokens.ValidateUserJWT(token, []byte("other"))
			s.Require().Error(wrongKeyErr)
		})
	}
}

func (s *UserServiceTestSuite) TestExpiredToken() {
	token, err := tokens.GenerateUserJWT(7, domain.UserRoleCustomer, -time.Minute, s.jwtSecret)
	s.Require().NoError(err)
	_, err = tokens.ValidateUserJWT(token, s.jwtSecret)
	s.Require().ErrorIs(err, tokens.ErrTokenExpired)
}
