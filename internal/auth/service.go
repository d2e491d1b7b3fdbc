package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"passvault/internal/apperr"
	"passvault/internal/logging"
	"passvault/internal/mailer"
	"passvault/internal/models"
)

const (
	MsgEmailRequired      = "Email is required."
	MsgEmailInUse         = "Email already in use. Please try logging in."
	MsgEmailNotFound      = "Email not found."
	MsgInvalidOrExpired   = "Invalid or expired OTP."
	MsgOTPMismatch        = "Invalid OTP. Please try again."
	MsgOTPExpired         = "OTP has expired. Please request a new one."
	MsgInvalidCredentials = "Invalid credentials!"
	MsgTokenRequired      = "Access token required."
	MsgTokenFormat        = "Token format invalid"
	MsgTokenExpired       = "Token expired. Please log in again."
	MsgTokenInvalid       = "Invalid token. Please log in again."
	MsgPasswordMismatch   = "New password and confirm password do not match."
	MsgResetNotVerified   = "Password reset has not been verified. Please request a new OTP."
)

type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, u models.NewUser) (*models.User, error)
	SetUserToken(ctx context.Context, id int64, token *string) (bool, error)
	SetUserPassword(ctx context.Context, id int64, hash string, token *string) (bool, error)
}

type OTPStore interface {
	UpsertOTP(ctx context.Context, email, code string, expiresAt time.Time) error
	GetOTP(ctx context.Context, email string) (*models.OTP, error)
	DeleteOTP(ctx context.Context, email string) error
	RecordOTPFailure(ctx context.Context, email string) (int, error)
	CreateResetGrant(ctx context.Context, email string, expiresAt time.Time) error
	ConsumeResetGrant(ctx context.Context, email string, now time.Time) (bool, error)
}

// Notifier is told when a user's stored token is replaced or cleared.
type Notifier interface {
	NotifySessionRevoked(userID int64)
}

// Identity is the authenticated caller of a request.
type Identity struct {
	ID    int64
	Email string
}

type Options struct {
	Secret                    string
	TokenTTL                  time.Duration
	OTPTTL                    time.Duration
	ResetGrantTTL             time.Duration
	ResetRequiresVerification bool
	BcryptCost                int
	DefaultProfilePicture     string
}

type Registration struct {
	FirstName  string
	MiddleName *string
	LastName   string
	Email      string
	Password   string
	OTP        string
}

type Service struct {
	users    UserStore
	otps     OTPStore
	mail     mailer.Sender
	notifier Notifier
	opts     Options
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(users UserStore, otps OTPStore, mail mailer.Sender, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = 5 * time.Minute
	}
	if opts.ResetGrantTTL <= 0 {
		opts.ResetGrantTTL = 10 * time.Minute
	}
	return &Service{
		users:  users,
		otps:   otps,
		mail:   mail,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *Service) revoked(userID int64) {
	if s.notifier != nil {
		s.notifier.NotifySessionRevoked(userID)
	}
}

// RequestOTP issues a fresh code for email and mails it. Registration requires the
// email to be free, password reset requires it to belong to a user.
func (s *Service) RequestOTP(ctx context.Context, purpose mailer.Purpose, email string) error {
	if email == "" {
		return apperr.Validation(MsgEmailRequired)
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return apperr.Internal("An error occurred while requesting the OTP.", err)
	}
	switch purpose {
	case mailer.PurposeRegistration:
		if user != nil {
			return apperr.Conflict(MsgEmailInUse)
		}
	case mailer.PurposePasswordReset:
		if user == nil {
			return apperr.NotFound(MsgEmailNotFound)
		}
	}

	code, err := GenerateOTP()
	if err != nil {
		return apperr.Internal("An error occurred while requesting the OTP.", err)
	}

	if err := s.otps.UpsertOTP(ctx, email, code, s.now().Add(s.opts.OTPTTL)); err != nil {
		return apperr.Internal("An error occurred while requesting the OTP.", err)
	}

	msg, err := mailer.OTPMessage(purpose, email, code, s.opts.OTPTTL)
	if err != nil {
		return apperr.Internal("An error occurred while requesting the OTP.", err)
	}

	// The stored code is left in place when delivery fails.
	if err := s.mail.Send(ctx, msg); err != nil {
		return apperr.Delivery("Failed to send OTP.", err)
	}

	s.logger.InfoContext(ctx, "otp issued", "email", logging.RedactEmail(email), "purpose", int(purpose))
	return nil
}

// MaxOTPAttempts wrong guesses discard the pending code.
const MaxOTPAttempts = 5

// checkOTP validates code against the pending entry for email. A consumed or expired
// entry is deleted, and so is one that has seen MaxOTPAttempts wrong guesses.
func (s *Service) checkOTP(ctx context.Context, email, code string) error {
	otp, err := s.otps.GetOTP(ctx, email)
	if err != nil {
		return apperr.Internal("An error occurred while verifying the OTP.", err)
	}
	if otp == nil {
		return apperr.NotFound(MsgInvalidOrExpired)
	}
	if otp.Code != code {
		attempts, err := s.otps.RecordOTPFailure(ctx, email)
		if err != nil {
			return apperr.Internal("An error occurred while verifying the OTP.", err)
		}
		if attempts >= MaxOTPAttempts {
			if err := s.otps.DeleteOTP(ctx, email); err != nil {
				return apperr.Internal("An error occurred while verifying the OTP.", err)
			}
			s.logger.WarnContext(ctx, "otp discarded after repeated failures", "email", logging.RedactEmail(email))
		}
		return apperr.Unauthorized(MsgOTPMismatch)
	}
	if otp.Expired(s.now()) {
		if err := s.otps.DeleteOTP(ctx, email); err != nil {
			return apperr.Internal("An error occurred while verifying the OTP.", err)
		}
		return apperr.Expired(MsgOTPExpired)
	}
	return nil
}

func (s *Service) issueToken(ctx context.Context, user *models.User) (string, error) {
	token, err := GenerateJWT(user, s.opts.Secret, s.opts.TokenTTL, s.now())
	if err != nil {
		return "", err
	}
	if _, err := s.users.SetUserToken(ctx, user.ID, &token); err != nil {
		return "", err
	}
	return token, nil
}

// Register creates the user named by r once its OTP checks out and returns a session token.
func (s *Service) Register(ctx context.Context, r Registration) (string, error) {
	if r.FirstName == "" || r.LastName == "" || r.Email == "" || r.Password == "" || r.OTP == "" {
		return "", apperr.Validation("All fields including OTP are required.")
	}

	if err := s.checkOTP(ctx, r.Email, r.OTP); err != nil {
		return "", err
	}

	existing, err := s.users.GetUserByEmail(ctx, r.Email)
	if err != nil {
		return "", apperr.Internal("An error occurred during registration.", err)
	}
	if existing != nil {
		return "", apperr.Conflict("Email already in use.")
	}

	hash, err := HashPasswordCost(r.Password, s.opts.BcryptCost)
	if err != nil {
		return "", apperr.Internal("An error occurred during registration.", err)
	}

	user, err := s.users.CreateUser(ctx, models.NewUser{
		FirstName:      r.FirstName,
		MiddleName:     r.MiddleName,
		LastName:       r.LastName,
		Email:          r.Email,
		PasswordHash:   hash,
		ProfilePicture: s.opts.DefaultProfilePicture,
	})
	if err != nil {
		if errors.Is(err, models.ErrEmailTaken) {
			return "", apperr.Conflict("Email already in use.")
		}
		return "", apperr.Internal("An error occurred during registration.", err)
	}

	if err := s.otps.DeleteOTP(ctx, r.Email); err != nil {
		return "", apperr.Internal("An error occurred during registration.", err)
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return "", apperr.Internal("An error occurred during registration.", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return token, nil
}

// Login checks the credentials and makes a new token the only valid one for the user.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", apperr.Unauthorized(MsgInvalidCredentials)
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", apperr.Internal("An error occurred during login.", err)
	}
	if user == nil || !CheckPasswordHash(password, user.PasswordHash) {
		return "", apperr.Unauthorized(MsgInvalidCredentials)
	}

	hadSession := user.Token != nil
	token, err := s.issueToken(ctx, user)
	if err != nil {
		return "", apperr.Internal("An error occurred during login.", err)
	}
	if hadSession {
		s.revoked(user.ID)
	}
	return token, nil
}

func (s *Service) Logout(ctx context.Context, userID int64) error {
	if _, err := s.users.SetUserToken(ctx, userID, nil); err != nil {
		return apperr.Internal("An error occurred during logout.", err)
	}
	s.revoked(userID)
	return nil
}

// ErrTokenRequired is the error for a request that carries no token at all.
func ErrTokenRequired() error {
	return apperr.Unauthorized(MsgTokenRequired)
}

// TokenFromHeader extracts the bearer token from an Authorization header value.
func TokenFromHeader(header string) (string, error) {
	if header == "" {
		return "", ErrTokenRequired()
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", apperr.Unauthorized(MsgTokenFormat)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrTokenRequired()
	}
	return token, nil
}

// ValidateToken verifies token and requires it to be the one currently on file for
// its user.
func (s *Service) ValidateToken(ctx context.Context, token string) (Identity, error) {
	claims, err := VerifyJWT(token, s.opts.Secret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, apperr.Forbidden(MsgTokenExpired)
		}
		return Identity{}, apperr.Forbidden(MsgTokenInvalid)
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return Identity{}, apperr.Internal("An error occurred during token validation.", err)
	}
	if user == nil || user.Token == nil || *user.Token != token {
		return Identity{}, apperr.Forbidden(MsgTokenInvalid)
	}

	return Identity{ID: user.ID, Email: user.Email}, nil
}

// VerifyResetOTP consumes the reset code and opens a short window in which the
// password may be reset.
func (s *Service) VerifyResetOTP(ctx context.Context, email, code string) error {
	if email == "" || code == "" {
		return apperr.Validation("Email and OTP are required.")
	}
	if err := s.checkOTP(ctx, email, code); err != nil {
		return err
	}
	if err := s.otps.DeleteOTP(ctx, email); err != nil {
		return apperr.Internal("An error occurred while verifying the OTP.", err)
	}
	if err := s.otps.CreateResetGrant(ctx, email, s.now().Add(s.opts.ResetGrantTTL)); err != nil {
		return apperr.Internal("An error occurred while verifying the OTP.", err)
	}
	return nil
}

// ResetPassword stores a new hash and clears the session token, forcing a fresh login.
func (s *Service) ResetPassword(ctx context.Context, email, newPassword, confirm string) error {
	if email == "" || newPassword == "" || confirm == "" {
		return apperr.Validation("All fields are required.")
	}
	if newPassword != confirm {
		return apperr.Validation(MsgPasswordMismatch)
	}

	if s.opts.ResetRequiresVerification {
		ok, err := s.otps.ConsumeResetGrant(ctx, email, s.now())
		if err != nil {
			return apperr.Internal("An error occurred while resetting password.", err)
		}
		if !ok {
			return apperr.Forbidden(MsgResetNotVerified)
		}
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return apperr.Internal("An error occurred while resetting password.", err)
	}
	if user == nil {
		return apperr.NotFound(MsgEmailNotFound)
	}

	hash, err := HashPasswordCost(newPassword, s.opts.BcryptCost)
	if err != nil {
		return apperr.Internal("An error occurred while resetting password.", err)
	}
	if _, err := s.users.SetUserPassword(ctx, user.ID, hash, nil); err != nil {
		return apperr.Internal("An error occurred while resetting password.", err)
	}

	s.revoked(user.ID)
	return nil
}

// VerifyPassword reports a 401 when password is not the user's current one.
func (s *Service) VerifyPassword(ctx context.Context, userID int64, password string) error {
	if password == "" {
		return apperr.Validation("Current password is required.")
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return apperr.Internal("An error occurred.", err)
	}
	if user == nil {
		return apperr.NotFound("User not found.")
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		return apperr.Unauthorized("Current password does not match.")
	}
	return nil
}

// ChangePassword replaces the password and returns a new token that becomes the only
// valid session.
func (s *Service) ChangePassword(ctx context.Context, userID int64, current, newPassword, confirm string) (string, error) {
	if current == "" || newPassword == "" || confirm == "" {
		return "", apperr.Validation("All password fields are required.")
	}
	if newPassword != confirm {
		return "", apperr.Validation(MsgPasswordMismatch)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return "", apperr.Internal("An error occurred while changing password.", err)
	}
	if user == nil {
		return "", apperr.NotFound("User not found.")
	}
	if !CheckPasswordHash(current, user.PasswordHash) {
		return "", apperr.Unauthorized("Invalid current password.")
	}

	hash, err := HashPasswordCost(newPassword, s.opts.BcryptCost)
	if err != nil {
		return "", apperr.Internal("An error occurred while changing password.", err)
	}
	token, err := GenerateJWT(user, s.opts.Secret, s.opts.TokenTTL, s.now())
	if err != nil {
		return "", apperr.Internal("An error occurred while changing password.", err)
	}
	if _, err := s.users.SetUserPassword(ctx, user.ID, hash, &token); err != nil {
		return "", apperr.Internal("An error occurred while changing password.", err)
	}

	s.revoked(user.ID)
	return token, nil
}
