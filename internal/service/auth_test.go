package service

import (
	"context"
	"testing"

	"barylstyle/contacts-api/internal/apperr"
	"barylstyle/contacts-api/internal/model"
	"barylstyle/contacts-api/pkg/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	s, users, mail := newAuthService(t, true)
	ctx := context.Background()

	u, err := s.Register(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)

	assert.Equal(t, model.SubscriptionStarter, u.Subscription)
	assert.Contains(t, u.AvatarURL, "gravatar.com")
	assert.False(t, u.Verify)
	require.NotNil(t, u.VerificationToken)

	stored, err := users.FindByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.Password)

	require.Len(t, mail.jobs, 1)
	assert.Equal(t, "ann@example.com", mail.jobs[0].To)
	assert.Contains(t, mail.jobs[0].Body, "http://localhost:3000/api/users/verify/"+*u.VerificationToken)

	_, err = s.Register(ctx, "ann@example.com", "another1")
	assert.Equal(t, 409, apperr.Status(err))
	assert.Equal(t, "Email in use", apperr.PublicMessage(err))
}

func TestRegisterValidation(t *testing.T) {
	s, _, mail := newAuthService(t, true)
	ctx := context.Background()

	_, err := s.Register(ctx, "not-an-email", "secret1")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = s.Register(ctx, "ann@example.com", "12345")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	assert.Empty(t, mail.jobs)
}

func TestRegisterQueueFull(t *testing.T) {
	s, users, mail := newAuthService(t, true)
	mail.err = ErrQueueFull

	_, err := s.Register(context.Background(), "ann@example.com", "secret1")
	require.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, 500, apperr.Status(err))

	// The account exists, the mail can be requested again
	_, err = users.FindByEmail(context.Background(), "ann@example.com")
	assert.NoError(t, err)
}

func TestRegisterWithoutVerification(t *testing.T) {
	s, _, mail := newAuthService(t, false)
	ctx := context.Background()

	u, err := s.Register(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	assert.True(t, u.Verify)
	assert.Nil(t, u.VerificationToken)
	assert.Empty(t, mail.jobs)

	res, err := s.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestLogin(t *testing.T) {
	s, users, _ := newAuthService(t, true)
	ctx := context.Background()

	u, err := s.Register(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)

	_, err = s.Login(ctx, "ann@example.com", "secret1")
	assert.Equal(t, 401, apperr.Status(err))
	assert.Equal(t, "Email not verified", apperr.PublicMessage(err))

	require.NoError(t, s.ConfirmVerification(ctx, *u.VerificationToken))

	wrongPassword, err := s.Login(ctx, "ann@example.com", "secret2")
	assert.Nil(t, wrongPassword)
	unknownEmail, err2 := s.Login(ctx, "bob@example.com", "secret1")
	assert.Nil(t, unknownEmail)
	assert.Equal(t, 401, apperr.Status(err))
	assert.Equal(t, apperr.PublicMessage(err), apperr.PublicMessage(err2))
	assert.Equal(t, "Email or password is wrong", apperr.PublicMessage(err))

	first, err := s.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	second, err := s.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	stored, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Token)
	assert.Equal(t, second.Token, *stored.Token, "only the latest session is kept")

	id, err := security.ParseSessionToken([]byte("secret"), second.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	require.NoError(t, s.Logout(ctx, stored))
	require.NoError(t, s.Logout(ctx, stored))

	stored, err = users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Token)
}

func TestVerification(t *testing.T) {
	s, users, mail := newAuthService(t, true)
	ctx := context.Background()

	err := s.RequestVerification(ctx, "")
	assert.Equal(t, 400, apperr.Status(err))
	assert.Equal(t, "missing required field email", apperr.PublicMessage(err))

	err = s.RequestVerification(ctx, "nobody@example.com")
	assert.Equal(t, 404, apperr.Status(err))
	assert.Equal(t, "User not found", apperr.PublicMessage(err))

	u, err := s.Register(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, s.RequestVerification(ctx, "ann@example.com"))
	require.Len(t, mail.jobs, 2)
	assert.Equal(t, mail.jobs[0].Body, mail.jobs[1].Body, "the stored token is sent again")

	err = s.ConfirmVerification(ctx, "wrong-token")
	assert.Equal(t, 404, apperr.Status(err))

	require.NoError(t, s.ConfirmVerification(ctx, *u.VerificationToken))

	err = s.ConfirmVerification(ctx, *u.VerificationToken)
	assert.Equal(t, 404, apperr.Status(err), "tokens are single use")

	err = s.RequestVerification(ctx, "ann@example.com")
	assert.Equal(t, 400, apperr.Status(err))
	assert.Equal(t, "Verification has already been passed", apperr.PublicMessage(err))

	stored, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.Verify)
}

func TestUpdateSubscription(t *testing.T) {
	s, users, _ := newAuthService(t, false)
	ctx := context.Background()

	u, err := s.Register(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)

	_, err = s.UpdateSubscription(ctx, u, "gold")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	pub, err := s.UpdateSubscription(ctx, u, model.SubscriptionBusiness)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionBusiness, pub.Subscription)

	stored, err := users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionBusiness, stored.Subscription)
	assert.Equal(t, s.Current(stored), pub)
}
