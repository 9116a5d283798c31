package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"staybook/internal/auth"
	"staybook/internal/domain"
)

type UserService struct {
	store  domain.Store
	tokens *auth.Manager
	log    zerolog.Logger
}

func NewUserService(store domain.Store, tokens *auth.Manager, log zerolog.Logger) *UserService {
	return &UserService{store: store, tokens: tokens, log: log}
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, err
	}
	u := domain.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		FullName:     in.FullName,
		Role:         domain.RoleUser,
	}
	if err := s.store.CreateUser(ctx, &u); err != nil {
		return domain.User{}, err
	}
	s.log.Info().Int64("user_id", u.ID).Msg("user registered")
	return u, nil
}

// Login verifies credentials and issues a bearer token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	u, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", domain.User{}, domain.ErrInvalidCredentials
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return "", domain.User{}, domain.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(u)
	if err != nil {
		return "", domain.User{}, err
	}
	return token, u, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (domain.User, error) {
	return s.store.GetUser(ctx, id)
}
