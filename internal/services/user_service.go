package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"mall-api/internal/apperr"
	"mall-api/internal/events"
	"mall-api/internal/mailer"
	"mall-api/internal/models"
	"mall-api/internal/validation"
)

type UserServiceConfig struct {
	BcryptCost      int
	VerificationTTL time.Duration
	ResetTTL        time.Duration
	// FrontendURL prefixes the password reset link sent by email.
	FrontendURL string
}

// UserService owns the identity lifecycle: signup, verification, login and
// password reset.
type UserService struct {
	recorder
	users  *table[models.User]
	shops  *table[models.Shop]
	auth   *AuthService
	mailer mailer.Mailer
	cfg    UserServiceConfig
}

func NewUserService(db *sql.DB, auth *AuthService, mail mailer.Mailer, publisher events.Publisher, cfg UserServiceConfig, logger zerolog.Logger) *UserService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.VerificationTTL == 0 {
		cfg.VerificationTTL = 24 * time.Hour
	}
	if cfg.ResetTTL == 0 {
		cfg.ResetTTL = time.Hour
	}
	return &UserService{
		recorder: newRecorder(publisher, logger),
		users:    newUserTable(db),
		shops:    newShopTable(db),
		auth:     auth,
		mailer:   mail,
		cfg:      cfg,
	}
}

func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.Session, error) {
	req.Email = normalizeEmail(req.Email)
	req.Fullname = strings.TrimSpace(req.Fullname)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error hashing password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, digest, err := newSecret()
	if err != nil {
		return nil, s.fail(err, "Error generating verification code")
	}

	now := s.timestamp()
	expires := now.Add(s.cfg.VerificationTTL)
	user := models.User{
		ID:                         uuid.NewString(),
		Fullname:                   req.Fullname,
		Email:                      req.Email,
		PasswordHash:               string(hashedPassword),
		Contact:                    req.Contact,
		VerificationStatus:         models.VerificationPending,
		VerificationTokenHash:      digest,
		VerificationTokenExpiresAt: &expires,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}

	if err := s.users.insert(ctx, &user); err != nil {
		return nil, s.fail(err, "Error creating user")
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User registered successfully")
	s.record(ctx, events.ActionSignedUp, "user", user.ID, models.Actor{ID: user.ID})

	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.Fullname, code); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to send verification email")
	}

	return s.issueSession(ctx, &user)
}

func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error) {
	user, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, user)
}

// AdminLogin is Login restricted to admin identities. A valid non-admin
// password is reported the same as a wrong one.
func (s *UserService) AdminLogin(ctx context.Context, req *models.LoginRequest) (*models.Session, error) {
	user, err := s.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	if !user.Admin {
		s.logger.Warn().Str("user_id", user.ID).Msg("Non-admin attempted admin login")
		return nil, apperr.Unauthenticated("Invalid admin credentials")
	}
	return s.issueSession(ctx, user)
}

func (s *UserService) authenticate(ctx context.Context, req *models.LoginRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.users.findOne(ctx, "email", req.Email)
	if errors.Is(err, apperr.ErrNotFound) {
		s.logger.Warn().Str("email", req.Email).Msg("Failed authentication attempt")
		return nil, apperr.Unauthenticated("Invalid email or password")
	}
	if err != nil {
		return nil, s.fail(err, "Error querying user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn().Str("email", req.Email).Msg("Failed authentication attempt")
		return nil, apperr.Unauthenticated("Invalid email or password")
	}

	now := s.timestamp()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.users.update(ctx, user); err != nil {
		return nil, s.fail(err, "Error recording login")
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User authenticated successfully")
	return user, nil
}

func (s *UserService) issueSession(ctx context.Context, user *models.User) (*models.Session, error) {
	role, err := s.roleFor(ctx, user)
	if err != nil {
		return nil, s.fail(err, "Error deriving role")
	}
	token, expiresAt, err := s.auth.GenerateToken(user, role)
	if err != nil {
		return nil, err
	}
	return &models.Session{User: user, Role: role, Token: token, ExpiresAt: expiresAt}, nil
}

// roleFor derives the session role: admin flag first, then shop ownership.
func (s *UserService) roleFor(ctx context.Context, user *models.User) (models.UserRole, error) {
	if user.Admin {
		return models.RoleAdmin, nil
	}
	owned, err := s.shops.count(ctx, equal("owner_id", user.ID)...)
	if err != nil {
		return "", err
	}
	if owned > 0 {
		return models.RoleShopOwner, nil
	}
	return models.RoleUser, nil
}

func (s *UserService) VerifyEmail(ctx context.Context, code string) (*models.User, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperr.InvalidInput("Verification code is required", "code is required")
	}

	user, err := s.users.findOne(ctx, "verification_token_hash", digestOf(code))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthenticated("Invalid or expired verification code")
	}
	if err != nil {
		return nil, s.fail(err, "Error looking up verification code")
	}

	now := s.timestamp()
	if user.VerificationTokenExpiresAt == nil || now.After(*user.VerificationTokenExpiresAt) {
		return nil, apperr.Expired("Verification code has expired")
	}

	user.VerificationStatus = models.VerificationVerified
	user.VerificationTokenHash = ""
	user.VerificationTokenExpiresAt = nil
	user.UpdatedAt = now
	if err := s.users.update(ctx, user); err != nil {
		return nil, s.fail(err, "Error verifying email")
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Email verified")
	s.record(ctx, events.ActionVerified, "user", user.ID, models.Actor{ID: user.ID})

	if err := s.mailer.SendWelcomeEmail(ctx, user.Email, user.Fullname); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to send welcome email")
	}
	return user, nil
}

// ResendVerification replaces the pending verification code, so only the
// newest one can be redeemed.
func (s *UserService) ResendVerification(ctx context.Context, actor models.Actor) error {
	user, err := s.users.get(ctx, actor.ID)
	if err != nil {
		return s.fail(err, "Error fetching user")
	}
	if user.IsVerified() {
		return apperr.Conflict("Email is already verified")
	}

	code, digest, err := newSecret()
	if err != nil {
		return s.fail(err, "Error generating verification code")
	}

	now := s.timestamp()
	expires := now.Add(s.cfg.VerificationTTL)
	user.VerificationStatus = models.VerificationPending
	user.VerificationTokenHash = digest
	user.VerificationTokenExpiresAt = &expires
	user.UpdatedAt = now
	if err := s.users.update(ctx, user); err != nil {
		return s.fail(err, "Error storing verification code")
	}

	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.Fullname, code); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to send verification email")
	}
	return nil
}

// RequestPasswordReset succeeds whether or not email belongs to an identity.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.findOne(ctx, "email", normalizeEmail(email))
	if errors.Is(err, apperr.ErrNotFound) {
		s.logger.Info().Msg("Password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return s.fail(err, "Error looking up user")
	}

	token, digest, err := newSecret()
	if err != nil {
		return s.fail(err, "Error generating reset token")
	}

	now := s.timestamp()
	expires := now.Add(s.cfg.ResetTTL)
	user.ResetTokenHash = digest
	user.ResetTokenExpiresAt = &expires
	user.UpdatedAt = now
	if err := s.users.update(ctx, user); err != nil {
		return s.fail(err, "Error storing reset token")
	}

	resetURL := strings.TrimSuffix(s.cfg.FrontendURL, "/") + "/reset-password/" + token
	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, resetURL); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to send password reset email")
	}
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, token string, req *models.ResetPasswordRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	if token == "" {
		return apperr.Unauthenticated("Invalid or expired reset token")
	}

	user, err := s.users.findOne(ctx, "reset_token_hash", digestOf(token))
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.Unauthenticated("Invalid or expired reset token")
	}
	if err != nil {
		return s.fail(err, "Error looking up reset token")
	}

	now := s.timestamp()
	if user.ResetTokenExpiresAt == nil || now.After(*user.ResetTokenExpiresAt) {
		return apperr.Expired("Reset token has expired")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error hashing password")
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	user.ResetTokenHash = ""
	user.ResetTokenExpiresAt = nil
	user.UpdatedAt = now
	if err := s.users.update(ctx, user); err != nil {
		return s.fail(err, "Error resetting password")
	}

	s.logger.Info().Str("user_id", user.ID).Msg("Password reset")
	s.record(ctx, events.ActionPasswordReset, "user", user.ID, models.Actor{ID: user.ID})

	if err := s.mailer.SendResetSuccessEmail(ctx, user.Email); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to send reset confirmation email")
	}
	return nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.get(ctx, userID)
	if err != nil {
		return nil, s.fail(err, "Error fetching user")
	}
	return user, nil
}

// UpdateProfile applies a partial update to the actor's own identity. A new
// email has to be verified again.
func (s *UserService) UpdateProfile(ctx context.Context, actor models.Actor, update models.ProfileUpdate) (*models.User, error) {
	user, err := s.users.get(ctx, actor.ID)
	if err != nil {
		return nil, s.fail(err, "Error fetching user")
	}

	previousEmail := user.Email
	update.Apply(user)
	user.Email = normalizeEmail(user.Email)
	user.Fullname = strings.TrimSpace(user.Fullname)
	if err := validation.Struct(user); err != nil {
		return nil, err
	}

	if user.Email != previousEmail {
		user.VerificationStatus = models.VerificationUnverified
		user.VerificationTokenHash = ""
		user.VerificationTokenExpiresAt = nil
	}
	user.UpdatedAt = s.timestamp()

	if err := s.users.update(ctx, user); err != nil {
		return nil, s.fail(err, "Error updating profile")
	}

	s.record(ctx, events.ActionUpdated, "user", user.ID, actor)
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.list(ctx, cond{column: "admin", value: false})
	if err != nil {
		return nil, s.fail(err, "Error listing users")
	}
	return users, nil
}

func (s *UserService) ListAdmins(ctx context.Context) ([]models.User, error) {
	admins, err := s.users.list(ctx, cond{column: "admin", value: true})
	if err != nil {
		return nil, s.fail(err, "Error listing admins")
	}
	return admins, nil
}

func (s *UserService) CreateAdmin(ctx context.Context, actor models.Actor, req *models.CreateAdminRequest) (*models.User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Fullname = strings.TrimSpace(req.Fullname)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error hashing password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.timestamp()
	admin := models.User{
		ID:                 uuid.NewString(),
		Fullname:           req.Fullname,
		Email:              req.Email,
		PasswordHash:       string(hashedPassword),
		Admin:              true,
		VerificationStatus: models.VerificationVerified,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.users.insert(ctx, &admin); err != nil {
		return nil, s.fail(err, "Error creating admin")
	}

	s.logger.Info().Str("user_id", admin.ID).Str("created_by", actor.ID).Msg("Admin created")
	s.record(ctx, events.ActionCreated, "user", admin.ID, actor)
	return &admin, nil
}

// EnsureAdmin makes sure an admin identity with email exists, promoting an
// existing identity if needed. The password is only used when creating.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	existing, err := s.users.findOne(ctx, "email", normalizeEmail(email))
	switch {
	case err == nil:
		if existing.Admin {
			return nil
		}
		existing.Admin = true
		existing.UpdatedAt = s.timestamp()
		if err := s.users.update(ctx, existing); err != nil {
			return s.fail(err, "Error promoting admin")
		}
		s.logger.Info().Str("user_id", existing.ID).Msg("Existing user promoted to admin")
		return nil
	case !errors.Is(err, apperr.ErrNotFound):
		return s.fail(err, "Error looking up admin")
	}

	_, err = s.CreateAdmin(ctx, models.Actor{}, &models.CreateAdminRequest{
		Fullname: "Administrator",
		Email:    email,
		Password: password,
	})
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// newSecret returns a random token and the digest stored in its place.
func newSecret() (string, string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := hex.EncodeToString(buf)
	return token, digestOf(token), nil
}

func digestOf(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
