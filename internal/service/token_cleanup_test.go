package service

import (
	"context"
	"testing"
	"time"

	"barylstyle/contacts-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCleanup(t *testing.T) {
	users := newUserRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	u := &model.User{Email: "ann@example.com", Password: "hash", Subscription: model.SubscriptionStarter}
	require.NoError(t, users.Create(ctx, u))

	token := "expired"
	expiresAt := time.Now().Add(-time.Minute)
	require.NoError(t, users.SetToken(ctx, u.ID, &token, &expiresAt))

	done := make(chan struct{})
	go func() {
		TokenCleanup(ctx, 10*time.Millisecond, users)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		got, err := users.FindByID(context.Background(), u.ID)
		return err == nil && got.Token == nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("token cleanup didn't stop after cancel")
	}
}
