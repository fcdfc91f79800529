package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"task-tracker-api/internal/auth"
	"task-tracker-api/internal/database"
	"task-tracker-api/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const TokenTypeBearer = "bearer"

type RegisterResult struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
}

type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthService registers users, checks credentials and resolves session tokens
// into identities.
type AuthService struct {
	store  *database.Store
	hasher auth.PasswordHasher
	signer *auth.TokenSigner
	logger zerolog.Logger
	now    func() time.Time

	dummyOnce   sync.Once
	dummyDigest string
}

func NewAuthService(
	store *database.Store,
	hasher auth.PasswordHasher,
	signer *auth.TokenSigner,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		store:  store,
		hasher: hasher,
		signer: signer,
		logger: logger.With().Str("component", "auth").Logger(),
		now:    time.Now,
	}
}

// Register creates a user. The first account ever registered becomes admin; the
// claim is a primary-keyed marker row inserted in the same transaction, so two
// concurrent first registrations cannot both win it.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (*RegisterResult, error) {
	email = strings.TrimSpace(email)

	digest, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: digest,
		FullName:     strings.TrimSpace(fullName),
		Role:         models.RoleMember,
		CreatedAt:    s.now().UTC(),
	}

	err = s.store.InTx(ctx, func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicateEmail
		}

		var total int64
		if err := tx.Model(&models.User{}).Count(&total).Error; err != nil {
			return err
		}
		if total == 0 {
			claim := models.BootstrapClaim{
				Name:      models.FirstAdminClaim,
				UserID:    user.ID,
				CreatedAt: user.CreatedAt,
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&claim)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				user.Role = models.RoleAdmin
			}
		}

		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateEmail
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			s.logger.Warn().
				Str("email", email).
				Msg("email already registered")
			return nil, err
		}
		s.logger.Error().
			Err(err).
			Str("email", email).
			Msg("failed to register user")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("role", string(user.Role)).
		Msg("registered user")
	return &RegisterResult{UserID: user.ID, Role: user.Role}, nil
}

// Login issues a signed token. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)

	var user models.User
	err := s.store.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error().
				Err(err).
				Msg("failed to select user by email")
			return nil, err
		}
		// Spend the same digest work as a real comparison.
		s.hasher.Verify(password, s.fallbackDigest())
		s.logger.Warn().Msg("login rejected")
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Warn().Msg("login rejected")
		return nil, ErrInvalidCredentials
	}

	token, err := s.signer.Sign(user.ID, string(user.Role))
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to sign token")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("logged in")
	return &LoginResult{AccessToken: token, TokenType: TokenTypeBearer}, nil
}

// Authenticate verifies a token and resolves the stored user behind it.
func (s *AuthService) Authenticate(ctx context.Context, token string) (Identity, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		s.logger.Debug().
			Err(err).
			Msg("token rejected")
		return Identity{}, ErrInvalidToken
	}

	var user models.User
	err = s.store.WithContext(ctx).Where("id = ?", claims.Subject).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Identity{}, ErrUnknownUser
		}
		s.logger.Error().
			Err(err).
			Str("user_id", claims.Subject).
			Msg("failed to select user by id")
		return Identity{}, err
	}

	return Identity{UserID: user.ID, Role: user.Role}, nil
}

// Profile returns the stored user for whoami.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.store.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := s.store.WithContext(ctx).Order("created_at asc").Find(&users).Error; err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to list users")
		return nil, err
	}
	return users, nil
}

func (s *AuthService) fallbackDigest() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash(uuid.NewString())
		if err == nil {
			s.dummyDigest = digest
		}
	})
	return s.dummyDigest
}
