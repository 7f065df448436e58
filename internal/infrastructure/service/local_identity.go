package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOCAL IDENTITY PROVIDER
// ══════════════════════════════════════════════════════════════════════════════

// LocalIdentityProvider implements user.IdentityProvider and
// user.TokenVerifier against the local accounts table. Passwords are
// stored as bcrypt hashes and sessions are signed JWTs.
type LocalIdentityProvider struct {
	accounts    user.AccountRepository
	resetTokens user.ResetTokenRepository
	tokens      *TokenService
	mailer      Mailer
	logger      *slog.Logger

	// resetBaseURL is the frontend page that accepts the reset token.
	resetBaseURL string
}

var (
	_ user.IdentityProvider = (*LocalIdentityProvider)(nil)
	_ user.TokenVerifier    = (*LocalIdentityProvider)(nil)
)

// NewLocalIdentityProvider wires the local provider.
func NewLocalIdentityProvider(
	accounts user.AccountRepository,
	resetTokens user.ResetTokenRepository,
	tokens *TokenService,
	mailer Mailer,
	resetBaseURL string,
	logger *slog.Logger,
) *LocalIdentityProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalIdentityProvider{
		accounts:     accounts,
		resetTokens:  resetTokens,
		tokens:       tokens,
		mailer:       mailer,
		resetBaseURL: strings.TrimRight(resetBaseURL, "/"),
		logger:       logger,
	}
}

// SignIn authenticates with email and password.
func (p *LocalIdentityProvider) SignIn(ctx context.Context, email, password string) (*user.Session, error) {
	account, err := p.accounts.GetByEmail(ctx, email)
	if err != nil {
		if shared.IsNotFound(err) {
			// Same error for unknown email and wrong password.
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}

	return p.newSession(account)
}

// SignUp registers a new account and returns an authenticated session.
func (p *LocalIdentityProvider) SignUp(ctx context.Context, email, password, username string) (*user.Session, error) {
	if len(password) < 8 {
		return nil, shared.NewDomainError("user", "SignUp", shared.ErrValidation, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	account := &user.Account{
		ID:           shared.UserID(uuid.NewString()),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Username:     strings.TrimSpace(username),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := p.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	return p.newSession(account)
}

// SendPasswordReset stores a one-time token and mails the reset link.
// An unknown email is reported as success so the endpoint cannot be
// used to probe which addresses are registered.
func (p *LocalIdentityProvider) SendPasswordReset(ctx context.Context, email string) error {
	account, err := p.accounts.GetByEmail(ctx, email)
	if err != nil {
		if shared.IsNotFound(err) {
			p.logger.Debug("password reset for unknown email", "email", email)
			return nil
		}
		return err
	}

	token := uuid.NewString()
	if err := p.resetTokens.Store(ctx, token, account.ID); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link := p.resetBaseURL + "/reset-password?token=" + token
	if err := p.mailer.SendPasswordReset(ctx, account.Email, account.Username, link); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

// UpdatePassword changes the password for the given user.
func (p *LocalIdentityProvider) UpdatePassword(ctx context.Context, userID shared.UserID, newPassword string) error {
	if len(newPassword) < 8 {
		return shared.NewDomainError("user", "UpdatePassword", shared.ErrValidation, "password must be at least 8 characters")
	}

	account, err := p.accounts.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	account.PasswordHash = string(hash)
	account.UpdatedAt = time.Now()
	return p.accounts.Update(ctx, account)
}

// UpdateProfile changes the display name for the given user.
func (p *LocalIdentityProvider) UpdateProfile(ctx context.Context, userID shared.UserID, username string) (*user.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, shared.NewDomainError("user", "UpdateProfile", shared.ErrValidation, "username is required")
	}

	account, err := p.accounts.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	account.Username = username
	account.UpdatedAt = time.Now()
	if err := p.accounts.Update(ctx, account); err != nil {
		return nil, err
	}

	return accountToUser(account), nil
}

// CompleteReset consumes a reset token and sets the new password. It is
// not part of user.IdentityProvider: only the local provider owns the
// token half of the flow, the hosted provider handles it on its side.
func (p *LocalIdentityProvider) CompleteReset(ctx context.Context, token, newPassword string) error {
	userID, err := p.resetTokens.Consume(ctx, token)
	if err != nil {
		return err
	}
	return p.UpdatePassword(ctx, userID, newPassword)
}

// VerifyToken resolves an access token to its user.
func (p *LocalIdentityProvider) VerifyToken(ctx context.Context, token string) (*user.User, error) {
	claims, err := p.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	account, err := p.accounts.GetByID(ctx, shared.UserID(claims.Subject))
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}
	return accountToUser(account), nil
}

func (p *LocalIdentityProvider) newSession(account *user.Account) (*user.Session, error) {
	token, expiresAt, err := p.tokens.Issue(account)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &user.Session{
		User:      *accountToUser(account),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func accountToUser(account *user.Account) *user.User {
	return &user.User{
		ID:        account.ID,
		Email:     account.Email,
		Username:  account.Username,
		CreatedAt: account.CreatedAt,
	}
}

// ErrNoLocalReset is returned by the HTTP layer when a reset completion
// arrives while the hosted provider is configured.
var ErrNoLocalReset = errors.New("password reset completion is handled by the identity provider")
