package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inotebook/inotebook-go/internal/model"
)

func strPtr(s string) *string { return &s }

func TestCreateNote(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "Ann", "a@x.com", "secret1")
	ctx := context.Background()

	note, err := env.notes.CreateNote(ctx, owner, model.CreateNoteRequest{Title: "Groceries", Description: "milk, eggs", Tag: "home"})
	require.NoError(t, err)
	require.NotEmpty(t, note.ID)
	require.Equal(t, owner, note.User)
	require.Equal(t, "home", note.Tag)

	untagged, err := env.notes.CreateNote(ctx, owner, model.CreateNoteRequest{Title: "Ideas", Description: "write more"})
	require.NoError(t, err)
	require.Equal(t, model.DefaultTag, untagged.Tag)
}

func TestCreateNote_ValidationBlocksPersistence(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "Ann", "a@x.com", "secret1")
	ctx := context.Background()

	_, err := env.notes.CreateNote(ctx, owner, model.CreateNoteRequest{Title: "ab", Description: "fine text"})
	requireValidation(t, err, "title")

	_, err = env.notes.CreateNote(ctx, owner, model.CreateNoteRequest{Title: "fine", Description: "ab"})
	requireValidation(t, err, "description")

	notes, err := env.notes.ListNotes(ctx, owner)
	require.NoError(t, err)
	require.Empty(t, notes)
}

func TestListNotes_OwnerScopedInOrder(t *testing.T) {
	env := newTestEnv(t)
	ann := env.register(t, "Ann", "a@x.com", "secret1")
	bob := env.register(t, "Bob", "b@x.com", "secret1")
	ctx := context.Background()

	for _, title := range []string{"one", "two", "three"} {
		_, err := env.notes.CreateNote(ctx, ann, model.CreateNoteRequest{Title: title, Description: "desc"})
		require.NoError(t, err)
	}
	_, err := env.notes.CreateNote(ctx, bob, model.CreateNoteRequest{Title: "bobs", Description: "desc"})
	require.NoError(t, err)

	notes, err := env.notes.ListNotes(ctx, ann)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	require.Equal(t, "one", notes[0].Title)
	require.Equal(t, "two", notes[1].Title)
	require.Equal(t, "three", notes[2].Title)

	none, err := env.notes.ListNotes(ctx, "nobody")
	require.NoError(t, err)
	require.NotNil(t, none)
	require.Empty(t, none)
}

func TestUpdateNote_PartialPatch(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "Ann", "a@x.com", "secret1")
	ctx := context.Background()

	note, err := env.notes.CreateNote(ctx, owner, model.CreateNoteRequest{Title: "Title", Description: "Description", Tag: "old"})
	require.NoError(t, err)

	updated, err := env.notes.UpdateNote(ctx, owner, note.ID, model.UpdateNoteRequest{Tag: strPtr("new")})
	require.NoError(t, err)
	require.Equal(t, "Title", updated.Title)
	require.Equal(t, "Description", updated.Description)
	require.Equal(t, "new", updated.Tag)

	updated, err = env.notes.UpdateNote(ctx, owner, note.ID, model.UpdateNoteRequest{Title: strPtr("Renamed")})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Title)
	require.Equal(t, "new", updated.Tag)

	unchanged, err := env.notes.UpdateNote(ctx, owner, note.ID, model.UpdateNoteRequest{})
	require.NoError(t, err)
	require.Equal(t, "Renamed", unchanged.Title)

	_, err = env.notes.UpdateNote(ctx, owner, note.ID, model.UpdateNoteRequest{Description: strPtr("no")})
	requireValidation(t, err, "description")

	notes, err := env.notes.ListNotes(ctx, owner)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, "Renamed", notes[0].Title)
	require.Equal(t, "Description", notes[0].Description)
	require.Equal(t, "new", notes[0].Tag)
}

func TestNoteOwnership(t *testing.T) {
	env := newTestEnv(t)
	ann := env.register(t, "Ann", "a@x.com", "secret1")
	bob := env.register(t, "Bob", "b@x.com", "secret1")
	ctx := context.Background()

	note, err := env.notes.CreateNote(ctx, ann, model.CreateNoteRequest{Title: "Private", Description: "anns note"})
	require.NoError(t, err)

	_, err = env.notes.UpdateNote(ctx, bob, note.ID, model.UpdateNoteRequest{Title: strPtr("Stolen")})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = env.notes.DeleteNote(ctx, bob, note.ID)
	require.ErrorIs(t, err, ErrForbidden)

	updated, err := env.notes.UpdateNote(ctx, ann, note.ID, model.UpdateNoteRequest{Title: strPtr("Still mine")})
	require.NoError(t, err)
	require.Equal(t, "Still mine", updated.Title)

	deleted, err := env.notes.DeleteNote(ctx, ann, note.ID)
	require.NoError(t, err)
	require.Equal(t, note.ID, deleted.ID)
	require.Equal(t, "Still mine", deleted.Title)
}

func TestNoteNotFound(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "Ann", "a@x.com", "secret1")
	ctx := context.Background()

	_, err := env.notes.UpdateNote(ctx, owner, "missing", model.UpdateNoteRequest{Tag: strPtr("x")})
	require.ErrorIs(t, err, ErrNoteNotFound)

	_, err = env.notes.DeleteNote(ctx, owner, "missing")
	require.ErrorIs(t, err, ErrNoteNotFound)
}
