package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"barylstyle/contacts-api/db"
	"barylstyle/contacts-api/internal/repository"
	"barylstyle/contacts-api/pkg/security"

	"github.com/stretchr/testify/require"
)

// fakeMailer records every message instead of sending it
type fakeMailer struct {
	mu   sync.Mutex
	sent []*MailJob
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.sent = append(m.sent, &MailJob{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) Sent() []*MailJob {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*MailJob(nil), m.sent...)
}

// syncDispatcher collects enqueued mail synchronously
type syncDispatcher struct {
	jobs []*MailJob
	err  error
}

func (d *syncDispatcher) Enqueue(job *MailJob) error {
	if d.err != nil {
		return d.err
	}

	d.jobs = append(d.jobs, job)
	return nil
}

func newUserRepo(t *testing.T) repository.UserRepository {
	t.Helper()

	gdb, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := gdb.DB()
		sqlDB.Close()
	})

	return repository.NewGormUserRepository(gdb)
}

func newAuthService(t *testing.T, requireVerification bool) (*AuthService, repository.UserRepository, *syncDispatcher) {
	t.Helper()

	users := newUserRepo(t)
	mail := &syncDispatcher{}

	s := NewAuthService(users, security.NewFast(), mail, AuthOptions{
		Secret:              []byte("secret"),
		TokenTTL:            time.Hour,
		RequireVerification: requireVerification,
		GravatarDefault:     true,
		PublicURL:           "http://localhost:3000/",
	})

	return s, users, mail
}
