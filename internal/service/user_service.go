package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"taskdesk/internal/domain"
	"taskdesk/internal/email"
	"taskdesk/internal/repository"
)

var (
	ErrUserNotFound    = errors.New("user does not exist")
	ErrUserExists      = errors.New("user exists, login or choose another email")
	ErrAlreadyVerified = errors.New("account has already verified")
	ErrWrongPassword   = errors.New("old password is not correct")
	ErrEmailRequired   = errors.New("email is required")
	ErrRateLimited     = errors.New("rate limited")
)

const emailDispatchTimeout = 10 * time.Second

// UserService coordina registro, activacion y manejo de passwords.
type UserService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	issuer      *SignedTokenIssuer
	emailSender email.Sender
	limiter     EmailRateLimiter

	publicURL     string
	activationTTL time.Duration
	resetTTL      time.Duration
}

func NewUserService(
	logger *zap.Logger,
	users repository.UserRepository,
	issuer *SignedTokenIssuer,
	emailSender email.Sender,
	limiter EmailRateLimiter,
	publicURL string,
	activationTTL, resetTTL time.Duration,
) *UserService {
	if limiter == nil {
		limiter = NewEmailRateLimiter(10*time.Minute, 3)
	}
	if activationTTL <= 0 {
		activationTTL = time.Hour
	}
	if resetTTL <= 0 {
		resetTTL = 30 * time.Minute
	}
	return &UserService{
		logger:        logger,
		users:         users,
		issuer:        issuer,
		emailSender:   emailSender,
		limiter:       limiter,
		publicURL:     strings.TrimRight(publicURL, "/"),
		activationTTL: activationTTL,
		resetTTL:      resetTTL,
	}
}

type RegisterInput struct {
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
}

// Register valida entrada, crea el usuario sin verificar y despacha el
// correo de activacion. El orden de validacion es: passwords iguales,
// politica de fortaleza, unicidad de email/username. Ninguna escritura
// ocurre antes de pasar todos los chequeos.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	emailAddr := normalizeEmail(input.Email)
	username := strings.TrimSpace(input.Username)
	if emailAddr == "" {
		return domain.User{}, ErrEmailRequired
	}

	if input.Password != input.ConfirmPassword {
		return domain.User{}, ErrPasswordsMismatch
	}
	if err := ValidatePassword(input.Password); err != nil {
		return domain.User{}, err
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, emailAddr, username)
	if err != nil {
		return domain.User{}, err
	}
	if exists {
		return domain.User{}, ErrUserExists
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		Username:     username,
		PasswordHash: string(hashBytes),
		IsVerified:   false,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}

	s.dispatchActivationEmail(user)
	return user, nil
}

// Activate decodifica el token de activacion y marca al usuario como
// verificado. Repetir la confirmacion con el mismo token es seguro:
// la segunda llamada reporta ErrAlreadyVerified sin tocar estado.
func (s *UserService) Activate(ctx context.Context, token string) (domain.User, error) {
	userID, err := s.issuer.Decode(token)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	if user.IsVerified {
		return domain.User{}, ErrAlreadyVerified
	}

	now := time.Now().UTC()
	if err := s.users.SetVerified(ctx, user.ID, now); err != nil {
		return domain.User{}, err
	}
	user.IsVerified = true
	user.UpdatedAt = now
	return user, nil
}

// ResendActivation reenvia el correo de activacion con un token fresco.
// Rechaza direcciones desconocidas y cuentas ya verificadas.
func (s *UserService) ResendActivation(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrEmailRequired
	}
	if s.limiter != nil && !s.limiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	s.dispatchActivationEmail(user)
	return nil
}

type ChangePasswordInput struct {
	OldPassword        string
	NewPassword        string
	ConfirmNewPassword string
}

// ChangePassword reemplaza la password del usuario autenticado tras
// verificar la actual.
func (s *UserService) ChangePassword(ctx context.Context, userID string, input ChangePasswordInput) error {
	if input.NewPassword != input.ConfirmNewPassword {
		return ErrPasswordsMismatch
	}
	if err := ValidatePassword(input.NewPassword); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)) != nil {
		return ErrWrongPassword
	}

	return s.replacePassword(ctx, user.ID, input.NewPassword)
}

// RequestPasswordReset emite un token de reset y despacha el correo.
// Reporta ErrUserNotFound para direcciones desconocidas.
func (s *UserService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrEmailRequired
	}
	if s.limiter != nil && !s.limiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	token, err := s.issuer.Issue(user.ID, s.resetTTL)
	if err != nil {
		return err
	}
	confirmURL := s.publicURL + "/reset_password/confirm/" + token
	s.dispatch(func(ctx context.Context) error {
		return s.emailSender.SendPasswordResetEmail(ctx, user.Email, user.Username, confirmURL)
	}, "password reset", user.Email)
	return nil
}

type ResetPasswordInput struct {
	NewPassword        string
	ConfirmNewPassword string
}

// ConfirmPasswordReset decodifica el token de reset y sobreescribe la
// password del usuario ligado.
func (s *UserService) ConfirmPasswordReset(ctx context.Context, token string, input ResetPasswordInput) error {
	if input.NewPassword != input.ConfirmNewPassword {
		return ErrPasswordsMismatch
	}
	if err := ValidatePassword(input.NewPassword); err != nil {
		return err
	}

	userID, err := s.issuer.Decode(token)
	if err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}

	return s.replacePassword(ctx, user.ID, input.NewPassword)
}

func (s *UserService) replacePassword(ctx context.Context, userID, newPassword string) error {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, string(hashBytes), time.Now().UTC())
}

func (s *UserService) dispatchActivationEmail(user domain.User) {
	token, err := s.issuer.Issue(user.ID, s.activationTTL)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("issue activation token failed", zap.Error(err), zap.String("email", user.Email))
		}
		return
	}
	confirmURL := s.publicURL + "/activation/confirm/" + token
	s.dispatch(func(ctx context.Context) error {
		return s.emailSender.SendActivationEmail(ctx, user.Email, user.Username, confirmURL)
	}, "activation", user.Email)
}

// dispatch envia el correo en segundo plano; la respuesta HTTP no espera
// el round-trip SMTP y las fallas solo quedan en el log.
func (s *UserService) dispatch(send func(context.Context) error, kind, toEmail string) {
	if s.emailSender == nil {
		if s.logger != nil {
			s.logger.Warn("email sender not configured", zap.String("kind", kind))
		}
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emailDispatchTimeout)
		defer cancel()
		if err := send(ctx); err != nil && s.logger != nil {
			s.logger.Warn("send email failed",
				zap.String("kind", kind),
				zap.String("email", toEmail),
				zap.Error(err),
			)
		}
	}()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
