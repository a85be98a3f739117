package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inotebook/inotebook-go/internal/crypto"
	"github.com/inotebook/inotebook-go/internal/mailer"
	"github.com/inotebook/inotebook-go/internal/model"
	"github.com/inotebook/inotebook-go/internal/repository"
	"github.com/inotebook/inotebook-go/internal/repository/repotest"
)

const testSecret = "test-secret"

var fastHashParams = crypto.HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

// fakeSender records messages and fails when err is set.
type fakeSender struct {
	mu   sync.Mutex
	err  error
	sent []mailer.Message
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

// lastCode extracts the code from the most recent message.
func (f *fakeSender) lastCode(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "no mail sent")
	code := codePattern.FindString(f.sent[len(f.sent)-1].Body)
	require.NotEmpty(t, code, "no code in mail body")
	return code
}

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	auth   *AuthService
	notes  *NoteService
	sender *fakeSender
	clock  *clock
	users  *repository.UserRepository
	otps   *repository.OTPRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := repotest.Open(t)
	env := &testEnv{
		sender: &fakeSender{},
		clock:  &clock{now: time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)},
		users:  repository.NewUserRepository(db),
		otps:   repository.NewOTPRepository(db),
	}
	env.auth = NewAuthService(env.users, env.otps, env.sender, AuthConfig{
		JWTSecret: testSecret,
		JWTExpiry: time.Hour,
		OTPTTL:    15 * time.Minute,
	}, WithHasher(crypto.NewHasher(fastHashParams)), WithClock(env.clock.Now))
	env.notes = NewNoteService(repository.NewNoteRepository(db))
	return env
}

// register creates an account and returns its id.
func (e *testEnv) register(t *testing.T, name, email, password string) string {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), model.CreateUserRequest{Name: name, Email: email, Password: password})
	require.NoError(t, err)
	claims, err := crypto.ValidateToken(resp.AuthToken, testSecret)
	require.NoError(t, err)
	return claims.User.ID
}

func requireValidation(t *testing.T, err error, field string) {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	require.Equal(t, field, verr.Field)
}
