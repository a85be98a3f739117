package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inotebook/inotebook-go/internal/model"
)

func TestNoteCreateListInsertionOrder(t *testing.T) {
	db := openTestDB(t)
	owner := createTestUser(t, NewUserRepository(db), "ann@example.com")
	repo := NewNoteRepository(db)
	ctx := context.Background()

	at := time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)
	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		// Same timestamp for all three: order must come from the id.
		require.NoError(t, repo.Create(ctx, &model.Note{
			UserID: owner.ID, Title: title, Description: "body", Tag: "t", CreatedAt: at,
		}))
	}

	notes, err := repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	for i, n := range notes {
		require.Equal(t, titles[i], n.Title)
		require.Equal(t, owner.ID, n.UserID)
	}
}

func TestNoteListEmpty(t *testing.T) {
	repo := NewNoteRepository(openTestDB(t))

	notes, err := repo.ListByUser(context.Background(), "nobody")
	require.NoError(t, err)
	require.Empty(t, notes)
}

func TestNoteUpdateAndDelete(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	owner := createTestUser(t, users, "ann@example.com")
	other := createTestUser(t, users, "bob@example.com")
	repo := NewNoteRepository(db)
	ctx := context.Background()

	note := &model.Note{UserID: owner.ID, Title: "title", Description: "description", Tag: "t"}
	require.NoError(t, repo.Create(ctx, note))

	note.Title = "new title"
	note.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Update(ctx, note))

	got, err := repo.GetByID(ctx, note.ID)
	require.NoError(t, err)
	require.Equal(t, "new title", got.Title)
	require.Equal(t, "description", got.Description)

	require.ErrorIs(t, repo.Update(ctx, &model.Note{ID: "missing", UserID: owner.ID}), ErrNoteNotFound)
	require.ErrorIs(t, repo.Delete(ctx, other.ID, note.ID), ErrNoteNotFound)

	require.NoError(t, repo.Delete(ctx, owner.ID, note.ID))
	_, err = repo.GetByID(ctx, note.ID)
	require.ErrorIs(t, err, ErrNoteNotFound)
}

func TestNoteRequiresExistingOwner(t *testing.T) {
	repo := NewNoteRepository(openTestDB(t))

	err := repo.Create(context.Background(), &model.Note{UserID: "ghost", Title: "t", Description: "d"})
	require.Error(t, err)
}
