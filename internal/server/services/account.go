package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/geotrade/marketplace/internal/common"
	"github.com/geotrade/marketplace/internal/msg"
	"github.com/geotrade/marketplace/internal/server/auth"
	"github.com/geotrade/marketplace/internal/server/config"
	"github.com/geotrade/marketplace/internal/server/models"
	"github.com/geotrade/marketplace/internal/server/repositories/repomanager"
)

// AccountService handles registration and login for marketplace users.
type AccountService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *AccountService {
	return &AccountService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// Register creates a new account. New accounts get the USER and CONSUMER
// roles; provider onboarding grants PROVIDER separately. A self-registered
// account is its own publisher, so ParentKey equals Key.
func (s *AccountService) Register(ctx context.Context, email, password string) (*models.Account, error) {
	repo := s.repomanager.Accounts(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, msg.New(msg.CodeEmailInUse, "An account with this e-mail already exists")
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	key := uuid.New()
	account := &models.Account{
		Key:          key,
		ParentKey:    key,
		Email:        email,
		PasswordHash: string(hash),
		Roles:        []string{string(auth.RoleUser), string(auth.RoleConsumer)},
	}

	created, err := repo.Create(ctx, account)
	if err != nil {
		// A concurrent register can slip past the lookup; the unique
		// index on email is the authority.
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, msg.New(msg.CodeEmailInUse, "An account with this e-mail already exists")
		}
		return nil, common.ErrorInternal
	}
	return created, nil
}

// Login verifies credentials and mints an access token. A missing account
// and a wrong password are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", msg.New(msg.CodeInvalidCredentials, "Invalid e-mail or password")
		}
		return "", common.ErrorInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return "", msg.New(msg.CodeInvalidCredentials, "Invalid e-mail or password")
	}

	roles := make([]auth.Role, 0, len(account.Roles))
	for _, r := range account.Roles {
		roles = append(roles, auth.Role(r))
	}

	token, err := auth.GenerateToken(account.Key.String(), account.ParentKey.String(),
		account.Email, roles, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// Profile returns the account for an authenticated key.
func (s *AccountService) Profile(ctx context.Context, accountKey uuid.UUID) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).GetByKey(ctx, accountKey)
}
