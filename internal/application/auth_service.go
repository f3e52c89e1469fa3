package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/authmify/internal/domain/entity"
	repo "github.com/oksasatya/authmify/internal/domain/repository"
	"github.com/oksasatya/authmify/pkg/helpers"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hashed string) bool
}

type TokenIssuer interface {
	Issue(userID, email string) (string, error)
	Verify(token string) (*helpers.TokenClaims, error)
}

// KeyLocker serializes writers sharing a key. The unique indexes stay the
// source of truth, so a failing locker only costs serialization.
type KeyLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// DefaultPublishTimeout bounds how long a request waits on the event broker.
const DefaultPublishTimeout = 2 * time.Second

// AuthResult is returned by every successful authentication.
type AuthResult struct {
	AccessToken string `json:"access_token"`
}

// AuthService verifies credentials and issues access tokens. It keeps no
// per-user state between calls; Locker and Events are optional.
type AuthService struct {
	Repo   repo.UserRepository
	Hasher PasswordHasher
	Tokens TokenIssuer
	Locker KeyLocker
	Events EventPublisher
	Logger *logrus.Logger

	PublishTimeout time.Duration

	now       func() time.Time
	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(repo repo.UserRepository, hasher PasswordHasher, tokens TokenIssuer, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Repo:   repo,
		Hasher: hasher,
		Tokens: tokens,
		Logger: logger,

		PublishTimeout: DefaultPublishTimeout,
		now:            time.Now,
	}
}

// NormalizeEmail is the single case policy for stored and looked-up emails.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = NormalizeEmail(email)

	unlock := s.lock(ctx, "lock:register:"+email)
	defer unlock()

	if _, err := s.Repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, s.internal(err, "lookup email failed", nil)
	}

	hash, err := s.Hasher.Hash(password)
	if errors.Is(err, helpers.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		return nil, s.internal(err, "hash password failed", nil)
	}

	u, err := s.Repo.Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, s.internal(err, "create user failed", nil)
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	registrationsTotal.Add(1)
	s.publish(ctx, EventUserRegistered, u, CredentialPassword)
	return res, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.authenticatePassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.loginAs(ctx, u, CredentialPassword)
}

// BiometricLogin treats the key itself as the credential; no password is involved.
func (s *AuthService) BiometricLogin(ctx context.Context, biometricKey string) (*AuthResult, error) {
	u, err := s.ValidateBiometricKey(ctx, biometricKey)
	if err != nil {
		return nil, err
	}
	if u == nil {
		loginFailuresTotal.Add(1)
		return nil, ErrInvalidCredentials
	}
	return s.loginAs(ctx, u, CredentialBiometric)
}

// SetupBiometricKey binds key to userID. The caller must already hold a
// verified session; an empty userID is rejected regardless.
func (s *AuthService) SetupBiometricKey(ctx context.Context, userID, biometricKey string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidSession
	}
	if biometricKey == "" {
		return ErrBiometricKeyRequired
	}

	unlock := s.lock(ctx, "lock:biometric:"+fingerprint(biometricKey))
	defer unlock()

	holder, err := s.Repo.FindByBiometricKey(ctx, biometricKey)
	switch {
	case err == nil && holder.ID != userID:
		return ErrBiometricKeyInUse
	case err == nil:
		// already bound to this user
		return nil
	case !errors.Is(err, repo.ErrNotFound):
		return s.internal(err, "lookup biometric key failed", logrus.Fields{"user_id": userID})
	}

	if err := s.Repo.UpdateBiometricKey(ctx, userID, biometricKey); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			return ErrBiometricKeyInUse
		case errors.Is(err, repo.ErrNotFound):
			return ErrInvalidSession
		default:
			return s.internal(err, "update biometric key failed", logrus.Fields{"user_id": userID})
		}
	}

	biometricBindTotal.Add(1)
	if s.Events != nil {
		if u, err := s.Repo.FindByID(ctx, userID); err == nil {
			s.publish(ctx, EventBiometricBound, u, CredentialBiometric)
		}
	}
	return nil
}

// ValidateBiometricKey returns the user holding key, or nil when nobody does.
// Only storage failures produce an error.
func (s *AuthService) ValidateBiometricKey(ctx context.Context, biometricKey string) (*entity.User, error) {
	if biometricKey == "" {
		return nil, nil
	}
	u, err := s.Repo.FindByBiometricKey(ctx, biometricKey)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, s.internal(err, "lookup biometric key failed", nil)
	}
	return u, nil
}

// Verify resolves any credential kind to an identity; guards compose on it.
func (s *AuthService) Verify(ctx context.Context, c Credential) (*Identity, error) {
	switch c.Kind {
	case CredentialPassword:
		u, err := s.authenticatePassword(ctx, c.Email, c.Secret)
		if err != nil {
			return nil, err
		}
		return &Identity{ID: u.ID, Email: u.Email}, nil
	case CredentialBiometric:
		u, err := s.ValidateBiometricKey(ctx, c.Secret)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, ErrInvalidCredentials
		}
		return &Identity{ID: u.ID, Email: u.Email}, nil
	case CredentialBearer:
		claims, err := s.Tokens.Verify(c.Secret)
		if err != nil {
			return nil, ErrInvalidCredentials
		}
		return &Identity{ID: claims.Subject, Email: claims.Email}, nil
	default:
		return nil, ErrInvalidCredentials
	}
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*entity.User, error) {
	if userID == "" {
		return nil, ErrInvalidSession
	}
	u, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, s.internal(err, "lookup user failed", logrus.Fields{"user_id": userID})
	}
	return u, nil
}

func (s *AuthService) authenticatePassword(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, s.internal(err, "lookup email failed", nil)
		}
		// keep unknown-account latency close to a real comparison
		s.Hasher.Verify(password, s.placeholderHash())
		loginFailuresTotal.Add(1)
		return nil, ErrInvalidCredentials
	}
	if !s.Hasher.Verify(password, u.PasswordHash) {
		loginFailuresTotal.Add(1)
		s.log().WithField("user_id", u.ID).Debug("password mismatch")
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *AuthService) loginAs(ctx context.Context, u *entity.User, method CredentialKind) (*AuthResult, error) {
	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	loginsTotal.Add(1)
	s.publish(ctx, EventUserLoggedIn, u, method)
	return res, nil
}

func (s *AuthService) issue(u *entity.User) (*AuthResult, error) {
	tok, err := s.Tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, s.internal(err, "sign access token failed", logrus.Fields{"user_id": u.ID})
	}
	return &AuthResult{AccessToken: tok}, nil
}

func (s *AuthService) lock(ctx context.Context, key string) func() {
	if s.Locker == nil {
		return func() {}
	}
	unlock, err := s.Locker.Lock(ctx, key)
	if err != nil {
		s.log().WithError(err).Warn("key lock unavailable, relying on store constraints")
		return func() {}
	}
	return unlock
}

func (s *AuthService) publish(ctx context.Context, typ EventType, u *entity.User, method CredentialKind) {
	if s.Events == nil {
		return
	}
	ev := AuthEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		UserID:     u.ID,
		Email:      u.Email,
		Method:     method.String(),
		OccurredAt: s.clock().UTC(),
	}
	timeout := s.PublishTimeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.Events.PublishJSON(ctx, ev); err != nil {
		s.log().WithError(err).WithField("event", typ).Warn("publish auth event failed")
	}
}

func (s *AuthService) internal(err error, msg string, fields logrus.Fields) error {
	s.log().WithError(err).WithFields(fields).Error(msg)
	return ErrInternal
}

func (s *AuthService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.Hasher.Hash(uuid.NewString())
	})
	return s.dummyHash
}

func (s *AuthService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *AuthService) log() *logrus.Logger {
	if s.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.Logger
}

// fingerprint keeps raw biometric keys out of lock names.
func fingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
