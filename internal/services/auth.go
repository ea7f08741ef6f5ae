package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dan47bennett/typescript-reddit/internal/apperrors"
	"github.com/dan47bennett/typescript-reddit/internal/logger"
	"github.com/dan47bennett/typescript-reddit/internal/models"
	"github.com/dan47bennett/typescript-reddit/internal/sessions"
)

//go:generate mockgen -source=auth.go -destination=mock_auth.go -package=services

// ResetTokenTTL bounds how long a forgot-password link stays usable.
const ResetTokenTTL = time.Hour

// Field error messages returned by the auth flows.
const (
	MsgUsernameTaken = "Username taken"
	MsgEmailTaken    = "Email taken"
	MsgNoAccount     = "No account matching that username or email"
	MsgIncorrectPass = "Incorrect password"
	MsgTokenExpired  = "Token expired"
	MsgUserGone      = "User no longer exists"
)

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Create(ctx context.Context, username, email, passwordHash string) (*models.User, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
}

// ResetTokenStore keeps single-use password reset tokens.
type ResetTokenStore interface {
	Save(ctx context.Context, token string, userID int, ttl time.Duration) error
	// Take returns the token's user id and removes the token atomically.
	Take(ctx context.Context, token string) (int, error)
}

// SessionManager binds and unbinds users to request sessions.
type SessionManager interface {
	Establish(ctx context.Context, s *sessions.Session, userID int) error
	Destroy(ctx context.Context, s *sessions.Session) error
}

// Mailer sends HTML emails.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// EventPublisher emits domain events on a best effort basis.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, userID, postID int)
}

// AuthService handles registration, login and password recovery.
type AuthService struct {
	reader      UserReader
	writer      UserWriter
	tokens      ResetTokenStore
	sessions    SessionManager
	hasher      PasswordHasher
	mailer      Mailer
	events      EventPublisher
	frontendURL string
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(
	reader UserReader,
	writer UserWriter,
	tokens ResetTokenStore,
	sessionManager SessionManager,
	hasher PasswordHasher,
	mailer Mailer,
	events EventPublisher,
	frontendURL string,
) *AuthService {
	return &AuthService{
		reader:      reader,
		writer:      writer,
		tokens:      tokens,
		sessions:    sessionManager,
		hasher:      hasher,
		mailer:      mailer,
		events:      events,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// Register creates a user and logs them in. Duplicates are detected by the
// database constraints, never by a prior lookup.
func (svc *AuthService) Register(ctx context.Context, sess *sessions.Session, in models.UsernamePasswordInput) (*models.UserResponse, error) {
	errs, err := fieldErrors(in)
	if err != nil {
		logger.Log.Errorw("failed to validate register input", "err", err)
		return nil, err
	}
	if len(errs) > 0 {
		return &models.UserResponse{Errors: errs}, nil
	}

	hash, err := svc.hasher.Hash(in.Password)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	user, err := svc.writer.Create(ctx, in.Username, in.Email, hash)
	switch {
	case errors.Is(err, apperrors.ErrUsernameTaken):
		return models.NewFieldErrorResponse("username", MsgUsernameTaken), nil
	case errors.Is(err, apperrors.ErrEmailTaken):
		return models.NewFieldErrorResponse("email", MsgEmailTaken), nil
	case err != nil:
		logger.Log.Errorw("failed to save user", "username", in.Username, "err", err)
		return nil, err
	}

	if err := svc.sessions.Establish(ctx, sess, user.ID); err != nil {
		logger.Log.Errorw("failed to establish session", "user_id", user.ID, "err", err)
		return nil, err
	}

	svc.events.Publish(ctx, models.EventUserRegistered, user.ID, 0)
	return &models.UserResponse{User: user}, nil
}

// Login authenticates by username, or by email when the identifier contains "@".
func (svc *AuthService) Login(ctx context.Context, sess *sessions.Session, usernameOrEmail, password string) (*models.UserResponse, error) {
	user, err := svc.findByIdentifier(ctx, usernameOrEmail)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return models.NewFieldErrorResponse("usernameOrEmail", MsgNoAccount), nil
	}
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return nil, err
	}

	err = svc.hasher.Compare(user.Password, password)
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return models.NewFieldErrorResponse("password", MsgIncorrectPass), nil
	}
	if err != nil {
		logger.Log.Errorw("failed to verify password", "user_id", user.ID, "err", err)
		return nil, err
	}

	if err := svc.sessions.Establish(ctx, sess, user.ID); err != nil {
		logger.Log.Errorw("failed to establish session", "user_id", user.ID, "err", err)
		return nil, err
	}

	svc.events.Publish(ctx, models.EventUserLoggedIn, user.ID, 0)
	return &models.UserResponse{User: user}, nil
}

// Me returns the session user, or nil for anonymous sessions. A session
// pointing at a deleted user is destroyed and treated as anonymous.
func (svc *AuthService) Me(ctx context.Context, sess *sessions.Session) (*models.User, error) {
	if !sess.Authenticated() {
		return nil, nil
	}

	user, err := svc.reader.GetByID(ctx, sess.UserID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		logger.Log.Infow("clearing dangling session", "user_id", sess.UserID)
		if err := svc.sessions.Destroy(ctx, sess); err != nil {
			logger.Log.Errorw("failed to destroy dangling session", "err", err)
		}
		return nil, nil
	}
	if err != nil {
		logger.Log.Errorw("failed to get user", "user_id", sess.UserID, "err", err)
		return nil, err
	}
	return user, nil
}

// Logout destroys the session and reports whether the record was removed.
func (svc *AuthService) Logout(ctx context.Context, sess *sessions.Session) bool {
	userID := sess.UserID

	if err := svc.sessions.Destroy(ctx, sess); err != nil {
		logger.Log.Errorw("failed to destroy session", "user_id", userID, "err", err)
		return false
	}

	if userID != 0 {
		svc.events.Publish(ctx, models.EventUserLoggedOut, userID, 0)
	}
	return true
}

// ForgotPassword mails a reset link when the identifier matches a user.
// Unknown identifiers succeed silently.
func (svc *AuthService) ForgotPassword(ctx context.Context, usernameOrEmail string) (bool, error) {
	user, err := svc.findByIdentifier(ctx, usernameOrEmail)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return true, nil
	}
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return false, err
	}

	token := uuid.NewString()
	if err := svc.tokens.Save(ctx, token, user.ID, ResetTokenTTL); err != nil {
		logger.Log.Errorw("failed to save reset token", "user_id", user.ID, "err", err)
		return false, err
	}

	if err := svc.mailer.Send(ctx, user.Email, "Change password", svc.resetLink(token)); err != nil {
		logger.Log.Errorw("failed to send reset email", "user_id", user.ID, "err", err)
		return false, err
	}

	svc.events.Publish(ctx, models.EventPasswordResetRequested, user.ID, 0)
	return true, nil
}

// ChangePassword consumes a reset token, stores the new password and logs the user in.
func (svc *AuthService) ChangePassword(ctx context.Context, sess *sessions.Session, token, newPassword string) (*models.UserResponse, error) {
	errs, err := fieldErrors(newPasswordInput{NewPassword: newPassword})
	if err != nil {
		logger.Log.Errorw("failed to validate new password", "err", err)
		return nil, err
	}
	if len(errs) > 0 {
		return &models.UserResponse{Errors: errs}, nil
	}

	userID, err := svc.tokens.Take(ctx, token)
	if errors.Is(err, apperrors.ErrResetTokenNotFound) {
		return models.NewFieldErrorResponse("token", MsgTokenExpired), nil
	}
	if err != nil {
		logger.Log.Errorw("failed to take reset token", "err", err)
		return nil, err
	}

	user, err := svc.reader.GetByID(ctx, userID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return models.NewFieldErrorResponse("token", MsgUserGone), nil
	}
	if err != nil {
		logger.Log.Errorw("failed to get user", "user_id", userID, "err", err)
		return nil, err
	}

	hash, err := svc.hasher.Hash(newPassword)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	err = svc.writer.UpdatePassword(ctx, user.ID, hash)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return models.NewFieldErrorResponse("token", MsgUserGone), nil
	}
	if err != nil {
		logger.Log.Errorw("failed to update password", "user_id", user.ID, "err", err)
		return nil, err
	}
	user.Password = hash

	if err := svc.sessions.Establish(ctx, sess, user.ID); err != nil {
		logger.Log.Errorw("failed to establish session", "user_id", user.ID, "err", err)
		return nil, err
	}

	svc.events.Publish(ctx, models.EventPasswordChanged, user.ID, 0)
	return &models.UserResponse{User: user}, nil
}

func (svc *AuthService) findByIdentifier(ctx context.Context, usernameOrEmail string) (*models.User, error) {
	if strings.Contains(usernameOrEmail, "@") {
		return svc.reader.GetByEmail(ctx, usernameOrEmail)
	}
	return svc.reader.GetByUsername(ctx, usernameOrEmail)
}

func (svc *AuthService) resetLink(token string) string {
	return fmt.Sprintf(`<a href="%s/change-password/%s">reset password</a>`, svc.frontendURL, token)
}
