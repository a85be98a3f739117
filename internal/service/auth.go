package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/inotebook/inotebook-go/internal/crypto"
	"github.com/inotebook/inotebook-go/internal/mailer"
	"github.com/inotebook/inotebook-go/internal/model"
	"github.com/inotebook/inotebook-go/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("sorry, this email is already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("not allowed to modify this resource")
	ErrSessionExpired     = errors.New("reset session expired, request a new code")
	ErrInvalidReset       = errors.New("invalid reset code")
	ErrDeliveryFailed     = errors.New("could not send the reset code")
)

// DefaultOTPMaxAttempts is the number of wrong guesses that burn a reset code
// when AuthConfig.OTPMaxAttempts is unset.
const DefaultOTPMaxAttempts = 5

// AuthConfig holds the token and reset code settings.
type AuthConfig struct {
	JWTSecret      string
	JWTExpiry      time.Duration
	OTPTTL         time.Duration
	OTPMaxAttempts int
}

// AuthService handles account and credential business logic.
type AuthService struct {
	users  *repository.UserRepository
	otps   *repository.OTPRepository
	sender mailer.Sender
	hasher *crypto.Hasher
	cfg    AuthConfig
	now    func() time.Time
}

// AuthOption customizes an AuthService.
type AuthOption func(*AuthService)

// WithHasher replaces the default Argon2id hasher.
func WithHasher(h *crypto.Hasher) AuthOption {
	return func(s *AuthService) { s.hasher = h }
}

// WithClock replaces time.Now, e.g. to test code expiry.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *repository.UserRepository, otps *repository.OTPRepository, sender mailer.Sender, cfg AuthConfig, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:  users,
		otps:   otps,
		sender: sender,
		hasher: crypto.NewHasher(crypto.DefaultHashParams()),
		cfg:    cfg,
		now:    time.Now,
	}
	if s.cfg.OTPMaxAttempts <= 0 {
		s.cfg.OTPMaxAttempts = DefaultOTPMaxAttempts
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new user account and returns an auth token.
func (s *AuthService) Register(ctx context.Context, req model.CreateUserRequest) (model.AuthResponse, error) {
	email, emailErr := normalizeEmail(req.Email)
	if err := firstError(validateName(req.Name), emailErr, validatePassword("password", req.Password)); err != nil {
		return model.AuthResponse{}, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return model.AuthResponse{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return model.AuthResponse{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	now := s.now().UTC()
	user := &model.User{
		Name:               strings.TrimSpace(req.Name),
		Email:              email,
		PasswordHash:       hash,
		LastPasswordChange: now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.AuthResponse{}, ErrEmailTaken
		}
		return model.AuthResponse{}, err
	}

	return s.issue(user.ID)
}

// Login authenticates a user and returns an auth token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if err := validatePassword("password", req.Password); err != nil {
		return model.AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	if err := s.checkPassword(user, req.Password); err != nil {
		return model.AuthResponse{}, err
	}

	return s.issue(user.ID)
}

// GetProfile returns the authenticated user without the password hash.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (model.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return model.UserResponse{}, err
	}
	return user.ToResponse(), nil
}

// UpdateName renames the authenticated user.
func (s *AuthService) UpdateName(ctx context.Context, userID, targetID string, req model.UpdateNameRequest) (model.UserResponse, error) {
	if err := authorize(userID, targetID); err != nil {
		return model.UserResponse{}, err
	}
	if err := validateName(req.Name); err != nil {
		return model.UserResponse{}, err
	}

	user, err := s.getUser(ctx, targetID)
	if err != nil {
		return model.UserResponse{}, err
	}

	now := s.now().UTC()
	if err := s.users.UpdateName(ctx, user.ID, strings.TrimSpace(req.Name), now); err != nil {
		return model.UserResponse{}, mapUserErr(err)
	}

	user.Name = strings.TrimSpace(req.Name)
	user.UpdatedAt = now
	return user.ToResponse(), nil
}

// Reauthenticate confirms the password before a credential change.
func (s *AuthService) Reauthenticate(ctx context.Context, userID, targetID, password string) error {
	if err := authorize(userID, targetID); err != nil {
		return err
	}
	if err := validatePassword("password", password); err != nil {
		return err
	}

	user, err := s.getUser(ctx, targetID)
	if err != nil {
		return err
	}
	return s.checkPassword(user, password)
}

// UpdateEmail changes the login email after re-proving the password.
func (s *AuthService) UpdateEmail(ctx context.Context, userID, targetID string, req model.UpdateEmailRequest) (model.UserResponse, error) {
	if err := authorize(userID, targetID); err != nil {
		return model.UserResponse{}, err
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return model.UserResponse{}, err
	}

	user, err := s.getUser(ctx, targetID)
	if err != nil {
		return model.UserResponse{}, err
	}
	if err := s.checkPassword(user, req.AuthPassword); err != nil {
		return model.UserResponse{}, err
	}
	if email == user.Email {
		return user.ToResponse(), nil
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil {
		if existing.ID != user.ID {
			return model.UserResponse{}, ErrEmailTaken
		}
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return model.UserResponse{}, err
	}

	now := s.now().UTC()
	if err := s.users.UpdateEmail(ctx, user.ID, email, now); err != nil {
		return model.UserResponse{}, mapUserErr(err)
	}

	// A pending reset code belongs to the old address.
	if err := s.otps.Delete(ctx, user.Email); err != nil {
		slog.WarnContext(ctx, "failed to drop reset code for old email", "user_id", user.ID, "error", err)
	}

	user.Email = email
	user.UpdatedAt = now
	return user.ToResponse(), nil
}

// UpdatePassword replaces the password after re-proving the current one. A new
// password equal to the current one is declined without touching the hash.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, targetID string, req model.UpdatePasswordRequest) (model.PasswordChange, error) {
	if err := authorize(userID, targetID); err != nil {
		return model.PasswordChange{}, err
	}
	if err := validatePassword("newPassword", req.NewPassword); err != nil {
		return model.PasswordChange{}, err
	}

	user, err := s.getUser(ctx, targetID)
	if err != nil {
		return model.PasswordChange{}, err
	}
	if err := s.checkPassword(user, req.AuthPassword); err != nil {
		return model.PasswordChange{}, err
	}
	if req.NewPassword == req.AuthPassword {
		return model.PasswordChange{Changed: false}, nil
	}

	if err := s.setPassword(ctx, user.ID, req.NewPassword); err != nil {
		return model.PasswordChange{}, err
	}
	return model.PasswordChange{Changed: true}, nil
}

// DeleteAccount removes the user, their notes and any pending reset code,
// returning the deleted user.
func (s *AuthService) DeleteAccount(ctx context.Context, userID, targetID string, req model.DeleteUserRequest) (model.UserResponse, error) {
	if err := authorize(userID, targetID); err != nil {
		return model.UserResponse{}, err
	}

	user, err := s.getUser(ctx, targetID)
	if err != nil {
		return model.UserResponse{}, err
	}
	if err := s.checkPassword(user, req.AuthPassword); err != nil {
		return model.UserResponse{}, err
	}

	if err := s.users.Delete(ctx, user); err != nil {
		return model.UserResponse{}, mapUserErr(err)
	}

	slog.InfoContext(ctx, "account deleted", "user_id", user.ID)
	return user.ToResponse(), nil
}

// ForgotPassword mails a fresh reset code. The code is stored only after the
// mail was accepted, replacing any earlier code for the same email.
func (s *AuthService) ForgotPassword(ctx context.Context, req model.ForgotPasswordRequest) error {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return mapUserErr(err)
	}

	code, err := crypto.GenerateOTP(crypto.OTPLength)
	if err != nil {
		return err
	}

	if err := s.sender.Send(ctx, mailer.OTPMessage(user.Email, code, s.cfg.OTPTTL)); err != nil {
		slog.WarnContext(ctx, "reset code delivery failed", "user_id", user.ID, "error", err)
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	now := s.now().UTC()
	if err := s.otps.Replace(ctx, &model.OTP{
		Email:     user.Email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.OTPTTL),
	}); err != nil {
		return err
	}

	slog.InfoContext(ctx, "reset code issued", "user_id", user.ID)
	return nil
}

// VerifyOTP reports whether code matches the live reset code for email.
// A match leaves the code in place; a wrong guess counts against it.
func (s *AuthService) VerifyOTP(ctx context.Context, req model.VerifyOTPRequest) (bool, error) {
	user, otp, err := s.liveOTP(ctx, req.Email)
	if err != nil {
		return false, err
	}
	if codesMatch(otp.Code, req.UserOTP) {
		return true, nil
	}
	if err := s.recordFailure(ctx, user, otp); err != nil {
		return false, err
	}
	return false, nil
}

// ResetPasswordByOTP sets a new password using a reset code and consumes the code.
func (s *AuthService) ResetPasswordByOTP(ctx context.Context, req model.ResetPasswordRequest) error {
	if err := validatePassword("newPassword", req.NewPassword); err != nil {
		return err
	}

	user, otp, err := s.liveOTP(ctx, req.Email)
	if err != nil {
		return err
	}
	if !codesMatch(otp.Code, req.UserOTP) {
		if err := s.recordFailure(ctx, user, otp); err != nil {
			return err
		}
		return ErrInvalidReset
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.ResetPassword(ctx, user.ID, otp, hash, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return ErrSessionExpired
		}
		return mapUserErr(err)
	}

	slog.InfoContext(ctx, "password reset with code", "user_id", user.ID)
	return nil
}

// liveOTP loads the user and their unexpired reset code. Expired codes are removed.
func (s *AuthService) liveOTP(ctx context.Context, rawEmail string) (*model.User, *model.OTP, error) {
	email, err := normalizeEmail(rawEmail)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, mapUserErr(err)
	}

	otp, err := s.otps.GetByEmail(ctx, user.Email)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return nil, nil, ErrSessionExpired
		}
		return nil, nil, err
	}

	if otp.Expired(s.now()) {
		if err := s.otps.Delete(ctx, otp.Email); err != nil {
			slog.WarnContext(ctx, "failed to drop expired reset code", "user_id", user.ID, "error", err)
		}
		return nil, nil, ErrSessionExpired
	}

	return user, otp, nil
}

// recordFailure counts a wrong code. Once the code is burned it returns
// ErrSessionExpired so the caller has to request a new one.
func (s *AuthService) recordFailure(ctx context.Context, user *model.User, otp *model.OTP) error {
	exhausted, err := s.otps.RecordFailure(ctx, otp, s.cfg.OTPMaxAttempts)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return ErrSessionExpired
		}
		return err
	}
	if exhausted {
		slog.WarnContext(ctx, "reset code burned after too many wrong guesses", "user_id", user.ID)
		return ErrSessionExpired
	}
	return nil
}

func (s *AuthService) setPassword(ctx context.Context, userID, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	return mapUserErr(s.users.UpdatePassword(ctx, userID, hash, s.now().UTC()))
}

func (s *AuthService) checkPassword(user *model.User, password string) error {
	match, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password for user %s: %w", user.ID, err)
	}
	if !match {
		return ErrInvalidCredentials
	}
	return nil
}

func (s *AuthService) getUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserErr(err)
	}
	return user, nil
}

func (s *AuthService) issue(userID string) (model.AuthResponse, error) {
	token, err := crypto.GenerateToken(userID, s.cfg.JWTSecret, s.cfg.JWTExpiry)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{Success: true, AuthToken: token}, nil
}

// authorize enforces that account endpoints only act on the caller's own account.
func authorize(userID, targetID string) error {
	if userID == "" || userID != targetID {
		return ErrForbidden
	}
	return nil
}

// codesMatch compares codes as integers so "012345" and 12345 are equal.
func codesMatch(stored string, submitted model.OTPCode) bool {
	want, err := strconv.Atoi(stored)
	if err != nil {
		return false
	}
	got, err := submitted.Int()
	if err != nil {
		return false
	}
	return got == want
}

func mapUserErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrEmailTaken
	default:
		return err
	}
}
