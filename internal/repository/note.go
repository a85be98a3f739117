package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/inotebook/inotebook-go/internal/model"
)

var ErrNoteNotFound = errors.New("note not found")

const noteColumns = `id, user_id, title, description, tag, created_at, updated_at`

// NoteRepository handles note persistence operations.
type NoteRepository struct {
	db *sql.DB
}

// NewNoteRepository creates a new NoteRepository.
func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create inserts a note. IDs are UUIDv7 so ordering by id is insertion order.
func (r *NoteRepository) Create(ctx context.Context, note *model.Note) error {
	if note.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate note id: %w", err)
		}
		note.ID = id.String()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	if note.UpdatedAt.IsZero() {
		note.UpdatedAt = note.CreatedAt
	}

	query := `INSERT INTO notes (` + noteColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		note.ID, note.UserID, note.Title, note.Description, note.Tag,
		toMillis(note.CreatedAt), toMillis(note.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}

	return nil
}

// GetByID retrieves a note regardless of owner; callers check ownership.
func (r *NoteRepository) GetByID(ctx context.Context, id string) (*model.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = ?`

	var note model.Note
	var created, updated int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&note.ID, &note.UserID, &note.Title, &note.Description, &note.Tag, &created, &updated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	note.CreatedAt = fromMillis(created)
	note.UpdatedAt = fromMillis(updated)
	return &note, nil
}

// ListByUser retrieves all notes owned by a user in insertion order.
func (r *NoteRepository) ListByUser(ctx context.Context, userID string) ([]model.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE user_id = ? ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		var n model.Note
		var created, updated int64
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Title, &n.Description, &n.Tag, &created, &updated,
		); err != nil {
			return nil, err
		}
		n.CreatedAt = fromMillis(created)
		n.UpdatedAt = fromMillis(updated)
		notes = append(notes, n)
	}

	return notes, rows.Err()
}

// Update writes the mutable fields of note. The owner is part of the filter
// so a note can never change hands.
func (r *NoteRepository) Update(ctx context.Context, note *model.Note) error {
	query := `UPDATE notes SET title = ?, description = ?, tag = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		note.Title, note.Description, note.Tag, toMillis(note.UpdatedAt), note.ID, note.UserID,
	)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		if _, err := r.GetByID(ctx, note.ID); err != nil {
			return err
		}
	}

	return nil
}

// Delete removes a note owned by userID.
func (r *NoteRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNoteNotFound
	}

	return nil
}
