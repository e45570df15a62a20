package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"taskdesk/internal/domain"
	"taskdesk/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("access denied: wrong email or password")
	ErrNotVerified        = errors.New("account is not verified yet")
)

// AuthService implementa las tres variantes de login sobre una misma
// cadena de precondiciones: email, password, is_active, is_verified.
type AuthService struct {
	logger     *zap.Logger
	users      repository.UserRepository
	authTokens repository.AuthTokenRepository
	sessions   SessionStore
	jwt        *JWTService
	sessionTTL time.Duration
}

func NewAuthService(
	logger *zap.Logger,
	users repository.UserRepository,
	authTokens repository.AuthTokenRepository,
	sessions SessionStore,
	jwtSvc *JWTService,
	sessionTTL time.Duration,
) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		logger:     logger,
		users:      users,
		authTokens: authTokens,
		sessions:   sessions,
		jwt:        jwtSvc,
		sessionTTL: sessionTTL,
	}
}

// Authenticate valida credenciales y flags de cuenta. Las fallas de
// credencial devuelven siempre el mismo error generico; solo la falta de
// verificacion se distingue, porque no es informacion sensible.
func (s *AuthService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return domain.User{}, ErrInvalidCredentials
	}
	if !user.IsVerified {
		return domain.User{}, ErrNotVerified
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil && s.logger != nil {
		s.logger.Warn("update last login failed", zap.Error(err), zap.String("user_id", user.ID))
	}
	user.LastLoginAt = &now
	return user, nil
}

// SessionLogin autentica y abre una sesion de servidor; devuelve el id
// de sesion que el handler coloca en la cookie.
func (s *AuthService) SessionLogin(ctx context.Context, emailAddr, password string) (domain.User, string, error) {
	user, err := s.Authenticate(ctx, emailAddr, password)
	if err != nil {
		return domain.User{}, "", err
	}
	if s.sessions == nil {
		return domain.User{}, "", errors.New("session store not configured")
	}
	sid, err := s.sessions.Create(user.ID, s.sessionTTL)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, sid, nil
}

// SessionLogout descarta la sesion del caller.
func (s *AuthService) SessionLogout(sessionID string) error {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.Delete(sessionID)
}

// ResolveSession devuelve el usuario ligado a un id de sesion vigente.
func (s *AuthService) ResolveSession(ctx context.Context, sessionID string) (domain.User, bool, error) {
	if s.sessions == nil {
		return domain.User{}, false, nil
	}
	userID, ok, err := s.sessions.Get(sessionID)
	if err != nil || !ok {
		return domain.User{}, false, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return user, true, nil
}

// TokenLogin autentica y devuelve la llave estatica del usuario,
// creandola en el primer login. Logins repetidos devuelven la misma
// llave; no se rota.
func (s *AuthService) TokenLogin(ctx context.Context, emailAddr, password string) (domain.User, domain.AuthToken, error) {
	user, err := s.Authenticate(ctx, emailAddr, password)
	if err != nil {
		return domain.User{}, domain.AuthToken{}, err
	}

	token, err := s.authTokens.GetByUserID(ctx, user.ID)
	if err == nil {
		return user, token, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.AuthToken{}, err
	}

	key, err := generateTokenKey()
	if err != nil {
		return domain.User{}, domain.AuthToken{}, err
	}
	token = domain.AuthToken{
		Key:       key,
		UserID:    user.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.authTokens.Create(ctx, token); err != nil {
		return domain.User{}, domain.AuthToken{}, err
	}
	return user, token, nil
}

// TokenLogout borra la llave estatica del caller.
func (s *AuthService) TokenLogout(ctx context.Context, userID string) error {
	return s.authTokens.DeleteByUserID(ctx, userID)
}

// ResolveToken devuelve el usuario dueño de una llave estatica.
func (s *AuthService) ResolveToken(ctx context.Context, key string) (domain.User, bool, error) {
	token, err := s.authTokens.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	if !user.IsActive {
		return domain.User{}, false, nil
	}
	return user, true, nil
}

// JWTLogin autentica y emite el par access/refresh.
func (s *AuthService) JWTLogin(ctx context.Context, emailAddr, password string) (domain.User, TokenPair, error) {
	user, err := s.Authenticate(ctx, emailAddr, password)
	if err != nil {
		return domain.User{}, TokenPair{}, err
	}
	if s.jwt == nil {
		return domain.User{}, TokenPair{}, errors.New("jwt not configured")
	}
	pair, err := s.jwt.GeneratePair(user)
	if err != nil {
		return domain.User{}, TokenPair{}, err
	}
	return user, pair, nil
}

// generateTokenKey produce una llave opaca de 40 hex chars.
func generateTokenKey() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
