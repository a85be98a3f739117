package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inotebook/inotebook-go/internal/model"
)

func createTestUser(t *testing.T, repo *UserRepository, email string) *model.User {
	t.Helper()
	user := &model.User{Name: "Ann", Email: email, PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserCreateAndGet(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	user := createTestUser(t, repo, "ann@example.com")
	require.NotEmpty(t, user.ID)
	require.False(t, user.CreatedAt.IsZero())
	require.Equal(t, user.CreatedAt, user.LastPasswordChange)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "ann@example.com", byID.Email)
	require.Equal(t, "hash", byID.PasswordHash)
	require.Equal(t, user.CreatedAt.UnixMilli(), byID.CreatedAt.UnixMilli())

	byEmail, err := repo.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)
}

func TestUserGetMissing(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))

	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.GetByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	createTestUser(t, repo, "dup@example.com")

	err := repo.Create(context.Background(), &model.User{Name: "Bob", Email: "dup@example.com", PasswordHash: "h"})
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserUpdates(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()
	user := createTestUser(t, repo, "ann@example.com")
	other := createTestUser(t, repo, "bob@example.com")
	at := time.Now().Add(time.Hour).UTC()

	require.NoError(t, repo.UpdateName(ctx, user.ID, "Annabel", at))
	require.NoError(t, repo.UpdateName(ctx, user.ID, "Annabel", at))
	require.NoError(t, repo.UpdateEmail(ctx, user.ID, "annabel@example.com", at))
	require.ErrorIs(t, repo.UpdateEmail(ctx, user.ID, other.Email, at), ErrDuplicateEmail)
	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "new-hash", at))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "Annabel", got.Name)
	require.Equal(t, "annabel@example.com", got.Email)
	require.Equal(t, "new-hash", got.PasswordHash)
	require.Equal(t, at.UnixMilli(), got.LastPasswordChange.UnixMilli())

	require.ErrorIs(t, repo.UpdateName(ctx, "missing", "Nobody", at), ErrUserNotFound)
}

func TestUserDeleteCascades(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	notes := NewNoteRepository(db)
	otps := NewOTPRepository(db)
	ctx := context.Background()

	user := createTestUser(t, users, "ann@example.com")
	keep := createTestUser(t, users, "bob@example.com")
	require.NoError(t, notes.Create(ctx, &model.Note{UserID: user.ID, Title: "mine", Description: "gone", Tag: "x"}))
	require.NoError(t, notes.Create(ctx, &model.Note{UserID: keep.ID, Title: "bobs", Description: "stays", Tag: "x"}))
	require.NoError(t, otps.Replace(ctx, &model.OTP{Email: user.Email, Code: "123456", CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Minute)}))

	require.NoError(t, users.Delete(ctx, user))

	_, err := users.GetByID(ctx, user.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	left, err := notes.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, left)

	kept, err := notes.ListByUser(ctx, keep.ID)
	require.NoError(t, err)
	require.Len(t, kept, 1)

	_, err = otps.GetByEmail(ctx, user.Email)
	require.ErrorIs(t, err, ErrOTPNotFound)

	require.ErrorIs(t, users.Delete(ctx, user), ErrUserNotFound)
}

func TestUserResetPasswordConsumesCodeOnce(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	otps := NewOTPRepository(db)
	ctx := context.Background()

	user := createTestUser(t, users, "ann@example.com")
	otp := &model.OTP{Email: user.Email, Code: "123456", CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, otps.Replace(ctx, otp))

	stale := &model.OTP{Email: user.Email, Code: "999999"}
	require.ErrorIs(t, users.ResetPassword(ctx, user.ID, stale, "other-hash", time.Now()), ErrOTPNotFound)

	at := time.Now().UTC()
	require.NoError(t, users.ResetPassword(ctx, user.ID, otp, "reset-hash", at))

	got, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "reset-hash", got.PasswordHash)
	require.Equal(t, at.UnixMilli(), got.LastPasswordChange.UnixMilli())

	_, err = otps.GetByEmail(ctx, user.Email)
	require.ErrorIs(t, err, ErrOTPNotFound)

	require.ErrorIs(t, users.ResetPassword(ctx, user.ID, otp, "again", time.Now()), ErrOTPNotFound)
}

func TestUserResetPasswordFailureKeepsCode(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	otps := NewOTPRepository(db)
	ctx := context.Background()

	otp := &model.OTP{Email: "ghost@example.com", Code: "123456", CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, otps.Replace(ctx, otp))

	require.ErrorIs(t, users.ResetPassword(ctx, "missing-user", otp, "hash", time.Now()), ErrUserNotFound)

	got, err := otps.GetByEmail(ctx, otp.Email)
	require.NoError(t, err)
	require.Equal(t, "123456", got.Code)
}
