package inmem

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/internal/domain/user"
)

// ─────────────────────────────────────────────────────────────────────────────
// Account repository
// Backs the local identity provider when no database is configured.
// ─────────────────────────────────────────────────────────────────────────────

// AccountRepository is an in-memory user.AccountRepository.
type AccountRepository struct {
	mu      sync.RWMutex
	byID    map[shared.UserID]*user.Account
	byEmail map[string]shared.UserID
}

// NewAccountRepository creates an empty AccountRepository.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byID:    make(map[shared.UserID]*user.Account),
		byEmail: make(map[string]shared.UserID),
	}
}

func (r *AccountRepository) Create(_ context.Context, account *user.Account) error {
	email := strings.ToLower(account.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[email]; taken {
		return shared.ErrEmailTaken
	}
	copied := *account
	copied.Email = email
	r.byID[copied.ID] = &copied
	r.byEmail[email] = copied.ID
	return nil
}

func (r *AccountRepository) GetByID(_ context.Context, id shared.UserID) (*user.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	copied := *account
	return &copied, nil
}

func (r *AccountRepository) GetByEmail(_ context.Context, email string) (*user.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	copied := *r.byID[id]
	return &copied, nil
}

func (r *AccountRepository) Update(_ context.Context, account *user.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[account.ID]
	if !ok {
		return shared.ErrUserNotFound
	}
	existing.Username = account.Username
	existing.PasswordHash = account.PasswordHash
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Reset token repository
// ─────────────────────────────────────────────────────────────────────────────

// ResetTokenRepository is an in-memory user.ResetTokenRepository.
type ResetTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]resetToken
	ttl    time.Duration
}

type resetToken struct {
	userID    shared.UserID
	expiresAt time.Time
}

// NewResetTokenRepository creates a ResetTokenRepository with the given TTL.
func NewResetTokenRepository(ttl time.Duration) *ResetTokenRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResetTokenRepository{
		tokens: make(map[string]resetToken),
		ttl:    ttl,
	}
}

func (r *ResetTokenRepository) Store(_ context.Context, token string, userID shared.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[token] = resetToken{
		userID:    userID,
		expiresAt: time.Now().UTC().Add(r.ttl),
	}
	return nil
}

// Consume removes the token and returns its owner. A token can be
// consumed at most once.
func (r *ResetTokenRepository) Consume(_ context.Context, token string) (shared.UserID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.tokens[token]
	if !ok {
		return "", shared.ErrInvalidResetToken
	}
	delete(r.tokens, token)
	if time.Now().UTC().After(entry.expiresAt) {
		return "", shared.ErrInvalidResetToken
	}
	return entry.userID, nil
}
