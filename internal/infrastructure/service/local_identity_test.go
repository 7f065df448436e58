package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/course-tracker-hub/internal/domain/shared"
	"github.com/studyhub/course-tracker-hub/internal/domain/user"
	"github.com/studyhub/course-tracker-hub/internal/infrastructure/persistence/inmem"
)

// capturingMailer stores the last reset link instead of sending mail.
type capturingMailer struct {
	toEmail string
	link    string
	sent    int
}

func (m *capturingMailer) SendPasswordReset(_ context.Context, toEmail, _, resetLink string) error {
	m.toEmail = toEmail
	m.link = resetLink
	m.sent++
	return nil
}

func newProvider() (*LocalIdentityProvider, *capturingMailer) {
	mailer := &capturingMailer{}
	provider := NewLocalIdentityProvider(
		inmem.NewAccountRepository(),
		inmem.NewResetTokenRepository(time.Hour),
		NewTokenService("test-secret", time.Hour),
		mailer,
		"http://localhost:8080",
		nil,
	)
	return provider, mailer
}

func TestSignUpAndSignIn(t *testing.T) {
	provider, _ := newProvider()
	ctx := context.Background()

	session, err := provider.SignUp(ctx, "Student@Example.com", "long-enough", "student")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "student@example.com", session.User.Email, "email is stored lowercased")

	// Sign-in is case-insensitive on the email.
	again, err := provider.SignIn(ctx, "student@example.com", "long-enough")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, again.User.ID)
}

func TestSignUp_ShortPassword(t *testing.T) {
	provider, _ := newProvider()

	_, err := provider.SignUp(context.Background(), "a@b.com", "short", "student")
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	provider, _ := newProvider()
	ctx := context.Background()

	_, err := provider.SignUp(ctx, "a@b.com", "long-enough", "first")
	require.NoError(t, err)

	_, err = provider.SignUp(ctx, "a@b.com", "long-enough", "second")
	assert.ErrorIs(t, err, shared.ErrEmailTaken)
}

func TestSignIn_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	provider, _ := newProvider()
	ctx := context.Background()

	_, err := provider.SignUp(ctx, "a@b.com", "long-enough", "student")
	require.NoError(t, err)

	_, wrongPass := provider.SignIn(ctx, "a@b.com", "wrong-password")
	_, unknown := provider.SignIn(ctx, "nobody@b.com", "wrong-password")

	require.Error(t, wrongPass)
	require.Error(t, unknown)
	assert.Equal(t, wrongPass.Error(), unknown.Error(), "responses must not reveal which emails exist")
}

func TestPasswordResetFlow(t *testing.T) {
	provider, mailer := newProvider()
	ctx := context.Background()

	_, err := provider.SignUp(ctx, "a@b.com", "long-enough", "student")
	require.NoError(t, err)

	require.NoError(t, provider.SendPasswordReset(ctx, "a@b.com"))
	require.Equal(t, 1, mailer.sent)
	require.Contains(t, mailer.link, "/reset-password?token=")

	token := mailer.link[strings.Index(mailer.link, "token=")+len("token="):]
	require.NoError(t, provider.CompleteReset(ctx, token, "brand-new-password"))

	// Old password is gone, new one works.
	_, err = provider.SignIn(ctx, "a@b.com", "long-enough")
	assert.Error(t, err)
	_, err = provider.SignIn(ctx, "a@b.com", "brand-new-password")
	assert.NoError(t, err)

	// The token was consumed and cannot be replayed.
	err = provider.CompleteReset(ctx, token, "another-password")
	assert.ErrorIs(t, err, shared.ErrInvalidResetToken)
}

func TestSendPasswordReset_UnknownEmailSilentlySucceeds(t *testing.T) {
	provider, mailer := newProvider()

	err := provider.SendPasswordReset(context.Background(), "nobody@b.com")
	assert.NoError(t, err)
	assert.Zero(t, mailer.sent, "no mail goes out for unknown addresses")
}

func TestVerifyToken(t *testing.T) {
	provider, _ := newProvider()
	ctx := context.Background()

	session, err := provider.SignUp(ctx, "a@b.com", "long-enough", "student")
	require.NoError(t, err)

	u, err := provider.VerifyToken(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, u.ID)

	_, err = provider.VerifyToken(ctx, "garbage")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestTokenService_RoundTrip(t *testing.T) {
	tokens := NewTokenService("secret-one", time.Hour)
	account := &user.Account{ID: "user-1", Email: "a@b.com", Username: "student"}

	signed, expiresAt, err := tokens.Issue(account)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@b.com", claims.Email)
}

func TestTokenService_RejectsForeignSignature(t *testing.T) {
	issuer := NewTokenService("secret-one", time.Hour)
	verifier := NewTokenService("secret-two", time.Hour)

	signed, _, err := issuer.Issue(&user.Account{ID: "user-1"})
	require.NoError(t, err)

	_, err = verifier.Parse(signed)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}
