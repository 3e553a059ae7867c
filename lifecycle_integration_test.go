package connectify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/connectify/connectify"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingMailer always errors. Delivery problems must never fail commands.
type failingMailer struct{}

func (failingMailer) SendVerificationEmail(to, code string) error { return errors.New("smtp down") }
func (failingMailer) SendWelcomeEmail(to, username string) error  { return errors.New("smtp down") }
func (failingMailer) SendPasswordResetEmail(to, link string) error {
	return errors.New("smtp down")
}
func (failingMailer) SendResetSuccessEmail(to string) error { return errors.New("smtp down") }

func TestAccountLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := connectify.NewRepositoryManager(newTestDB(t))
	tokens := connectify.NewTokenService([]byte("integration-key"), 24, "connectify", nil, nil)

	signup := connectify.NewSignupHandler(repo, connectify.NoopMailer{}, nil)
	verify := connectify.NewVerifyEmailHandler(repo, tokens)
	login := connectify.NewLoginHandler(repo, tokens)
	toggle := connectify.NewToggleRelationHandler(repo)

	// Signup lands a pending account with a stored verification code.
	var signupEmail string
	err := signup.Execute(ctx, connectify.SignupMessage{
		Username: "ada",
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "password123!",
		OnResponse: func(email string) {
			signupEmail = email
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", signupEmail)

	user, err := repo.Users().GetByIdentifier(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.False(t, user.IsVerified)
	assert.Equal(t, connectify.AccountStatusPending, user.Status)
	require.NotNil(t, user.VerificationToken)
	require.NotNil(t, user.VerificationTokenExpiresAt)
	code := *user.VerificationToken

	// Duplicate signup collides on email.
	err = signup.Execute(ctx, connectify.SignupMessage{
		Username: "ada2",
		FullName: "Someone Else",
		Email:    "ada@example.com",
		Password: "password123!",
	})
	require.Error(t, err)
	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryConflict, richErr.Category)

	// Unverified logins succeed without a credential.
	var loginResp *connectify.LoginResponse
	err = login.Execute(ctx, connectify.LoginMessage{
		Identifier: "ada@example.com",
		Password:   "password123!",
		OnResponse: func(resp *connectify.LoginResponse) {
			loginResp = resp
		},
	})
	require.NoError(t, err)
	assert.False(t, loginResp.Verified)
	assert.Empty(t, loginResp.Token)
	assert.Nil(t, loginResp.Account.Token)

	// Wrong code is rejected and leaves the account pending.
	err = verify.Execute(ctx, connectify.VerifyEmailMessage{
		Email: "ada@example.com",
		Code:  "000000",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, connectify.ErrInvalidCode)

	// The emailed code verifies the account and mints a session.
	var account *connectify.AccountProjection
	err = verify.Execute(ctx, connectify.VerifyEmailMessage{
		Email: "ada@example.com",
		Code:  code,
		OnResponse: func(resp *connectify.AccountProjection) {
			account = resp
		},
	})
	require.NoError(t, err)
	require.NotNil(t, account.Token)
	assert.True(t, account.IsVerified)

	claims, err := tokens.Validate(*account.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID())

	// The code is single use.
	err = verify.Execute(ctx, connectify.VerifyEmailMessage{
		Email: "ada@example.com",
		Code:  code,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, connectify.ErrAlreadyVerified)

	// Verified logins carry the credential, whether the caller sends the
	// username or the email.
	err = login.Execute(ctx, connectify.LoginMessage{
		Identifier: "ada",
		Password:   "password123!",
		OnResponse: func(resp *connectify.LoginResponse) {
			loginResp = resp
		},
	})
	require.NoError(t, err)
	assert.True(t, loginResp.Verified)
	assert.NotEmpty(t, loginResp.Token)

	err = login.Execute(ctx, connectify.LoginMessage{
		Identifier: "ada@example.com",
		Password:   "password123!",
		OnResponse: func(resp *connectify.LoginResponse) {
			loginResp = resp
		},
	})
	require.NoError(t, err)
	assert.True(t, loginResp.Verified)
	assert.NotEmpty(t, loginResp.Token)

	// Bad password looks identical to a missing account.
	err = login.Execute(ctx, connectify.LoginMessage{
		Identifier: "ada@example.com",
		Password:   "wrong",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, connectify.ErrInvalidCredentials)

	// Engagement: follow toggles on, then off.
	bob := seedUser(t, repo, "bob")

	var active bool
	onToggle := func(state bool) { active = state }

	err = toggle.Execute(ctx, connectify.ToggleRelationMessage{
		Kind:       connectify.RelationFollow,
		ActorID:    user.ID,
		TargetID:   bob.ID,
		OnResponse: onToggle,
	})
	require.NoError(t, err)
	assert.True(t, active)

	err = toggle.Execute(ctx, connectify.ToggleRelationMessage{
		Kind:       connectify.RelationFollow,
		ActorID:    user.ID,
		TargetID:   bob.ID,
		OnResponse: onToggle,
	})
	require.NoError(t, err)
	assert.False(t, active)
}

func TestVerifyEmailExpiredCode(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := connectify.NewRepositoryManager(db)
	tokens := connectify.NewTokenService([]byte("integration-key"), 24, "connectify", nil, nil)

	signup := connectify.NewSignupHandler(repo, connectify.NoopMailer{}, nil)
	verify := connectify.NewVerifyEmailHandler(repo, tokens)

	err := signup.Execute(ctx, connectify.SignupMessage{
		Username: "ada",
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "password123!",
	})
	require.NoError(t, err)

	user, err := repo.Users().GetByIdentifier(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, user.VerificationToken)
	code := *user.VerificationToken

	// Age the code past its window.
	_, err = db.NewUpdate().
		Model((*connectify.User)(nil)).
		Set("verification_token_expires_at = ?", time.Now().Add(-time.Minute)).
		Where("id = ?", user.ID).
		Exec(ctx)
	require.NoError(t, err)

	err = verify.Execute(ctx, connectify.VerifyEmailMessage{
		Email: "ada@example.com",
		Code:  code,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, connectify.ErrCodeExpired)

	// The account is still pending and unverified.
	stored, err := repo.Users().GetByIdentifier(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.False(t, stored.IsVerified)
	assert.Equal(t, connectify.AccountStatusPending, stored.Status)
}

func TestPasswordResetLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := connectify.NewRepositoryManager(newTestDB(t))
	cfg := connectify.NewConfig("integration-key")
	cfg.ResetLinkBase = "https://app.example.com"

	user := seedUser(t, repo, "ada")

	initialize := connectify.NewInitializePasswordResetHandler(repo, cfg)
	finalize := connectify.NewFinalizePasswordResetHandler(repo)

	// The username works as the identifier, same as the email.
	var resetResp *connectify.InitializePasswordResetResponse
	err := initialize.Execute(ctx, connectify.InitializePasswordResetMessage{
		Identifier: user.Username,
		OnResponse: func(resp *connectify.InitializePasswordResetResponse) {
			resetResp = resp
		},
	})
	require.NoError(t, err)
	assert.True(t, resetResp.Success)
	assert.Contains(t, resetResp.Link, "https://app.example.com/reset-password/")

	// Unknown accounts surface not-found.
	err = initialize.Execute(ctx, connectify.InitializePasswordResetMessage{
		Identifier: "ghost@example.com",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, connectify.ErrAccountNotFound)

	stored, err := repo.Users().GetByIdentifier(ctx, user.Email)
	require.NoError(t, err)
	require.NotNil(t, stored.ResetPasswordToken)
	token := *stored.ResetPasswordToken

	// Confirmation must match.
	err = finalize.Execute(ctx, connectify.FinalizePasswordResetMessage{
		Token:           token,
		Password:        "newPassword123!",
		ConfirmPassword: "different",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, connectify.ErrPasswordMismatch)

	var success bool
	err = finalize.Execute(ctx, connectify.FinalizePasswordResetMessage{
		Token:           token,
		Password:        "newPassword123!",
		ConfirmPassword: "newPassword123!",
		OnResponse: func(ok bool) {
			success = ok
		},
	})
	require.NoError(t, err)
	assert.True(t, success)

	// The token is single use.
	err = finalize.Execute(ctx, connectify.FinalizePasswordResetMessage{
		Token:           token,
		Password:        "anotherPassword123!",
		ConfirmPassword: "anotherPassword123!",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, connectify.ErrInvalidResetToken)

	// The new password is live.
	updated, err := repo.Users().GetByIdentifier(ctx, user.Email)
	require.NoError(t, err)
	assert.NoError(t, connectify.ComparePasswordAndHash("newPassword123!", updated.PasswordHash))
}

func TestSignupSurvivesMailerOutage(t *testing.T) {
	ctx := context.Background()
	repo := connectify.NewRepositoryManager(newTestDB(t))

	signup := connectify.NewSignupHandler(repo, failingMailer{}, nil)

	err := signup.Execute(ctx, connectify.SignupMessage{
		Username: "ada",
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "password123!",
	})
	require.NoError(t, err)

	user, err := repo.Users().GetByIdentifier(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, user.VerificationToken)
}

func TestToggleRequiresAuthentication(t *testing.T) {
	ctx := context.Background()
	repo := connectify.NewRepositoryManager(newTestDB(t))
	toggle := connectify.NewToggleRelationHandler(repo)

	user := seedUser(t, repo, "ada")

	err := toggle.Execute(ctx, connectify.ToggleRelationMessage{
		Kind:     connectify.RelationFollow,
		TargetID: user.ID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, connectify.ErrUnauthenticated)
}
