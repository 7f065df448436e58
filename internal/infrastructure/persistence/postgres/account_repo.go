package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT REPOSITORY
// Backs the local identity provider. With a hosted provider these
// tables stay empty and this repository is never constructed.
// ══════════════════════════════════════════════════════════════════════════════

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// AccountRepository is a PostgreSQL-backed user.AccountRepository.
type AccountRepository struct {
	conn *Connection
}

// NewAccountRepository creates an AccountRepository.
func NewAccountRepository(conn *Connection) *AccountRepository {
	return &AccountRepository{conn: conn}
}

func (r *AccountRepository) Create(ctx context.Context, account *user.Account) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO accounts (id, email, username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		account.ID.String(),
		strings.ToLower(account.Email),
		account.Username,
		account.PasswordHash,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return shared.ErrEmailTaken
		}
		return fmt.Errorf("postgres: failed to create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id shared.UserID) (*user.Account, error) {
	return r.scanAccount(r.conn.QueryRow(ctx, `
		SELECT id, email, username, password_hash, created_at, updated_at
		FROM accounts WHERE id = $1`, id.String()))
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*user.Account, error) {
	return r.scanAccount(r.conn.QueryRow(ctx, `
		SELECT id, email, username, password_hash, created_at, updated_at
		FROM accounts WHERE email = $1`, strings.ToLower(email)))
}

func (r *AccountRepository) Update(ctx context.Context, account *user.Account) error {
	tag, err := r.conn.Exec(ctx, `
		UPDATE accounts
		SET username = $2, password_hash = $3, updated_at = $4
		WHERE id = $1`,
		account.ID.String(),
		account.Username,
		account.PasswordHash,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrUserNotFound
	}
	return nil
}

func (r *AccountRepository) scanAccount(row pgx.Row) (*user.Account, error) {
	var a user.Account
	var id string
	err := row.Scan(&id, &a.Email, &a.Username, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to scan account: %w", err)
	}
	a.ID = shared.UserID(id)
	return &a, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// RESET TOKEN REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// ResetTokenRepository is a PostgreSQL-backed user.ResetTokenRepository.
type ResetTokenRepository struct {
	conn *Connection

	// ttl is how long a token stays valid.
	ttl time.Duration
}

// NewResetTokenRepository creates a ResetTokenRepository.
func NewResetTokenRepository(conn *Connection, ttl time.Duration) *ResetTokenRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResetTokenRepository{conn: conn, ttl: ttl}
}

func (r *ResetTokenRepository) Store(ctx context.Context, token string, userID shared.UserID) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO password_reset_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)`,
		token, userID.String(), time.Now().UTC().Add(r.ttl),
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to store reset token: %w", err)
	}
	return nil
}

// Consume atomically marks a token used and returns its owner. A token
// can be consumed at most once.
func (r *ResetTokenRepository) Consume(ctx context.Context, token string) (shared.UserID, error) {
	var userID string
	err := r.conn.QueryRow(ctx, `
		UPDATE password_reset_tokens
		SET consumed_at = NOW()
		WHERE token = $1 AND consumed_at IS NULL AND expires_at > NOW()
		RETURNING user_id`, token,
	).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", shared.ErrInvalidResetToken
	}
	if err != nil {
		return "", fmt.Errorf("postgres: failed to consume reset token: %w", err)
	}
	return shared.UserID(userID), nil
}
