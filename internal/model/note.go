package model

import "time"

// DefaultTag is applied to notes created without a tag.
const DefaultTag = "General"

// Note represents a note in the database.
type Note struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Tag         string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateNoteRequest represents a new note.
type CreateNoteRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Tag         string `json:"tag"`
}

// UpdateNoteRequest is a partial patch. Nil fields are left unchanged.
type UpdateNoteRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Tag         *string `json:"tag"`
}

// Empty reports whether the patch carries no fields.
func (r UpdateNoteRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.Tag == nil
}

// NoteResponse represents note data returned by the API.
type NoteResponse struct {
	ID          string    `json:"id"`
	User        string    `json:"user"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tag         string    `json:"tag"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (n Note) ToResponse() NoteResponse {
	return NoteResponse{
		ID:          n.ID,
		User:        n.UserID,
		Title:       n.Title,
		Description: n.Description,
		Tag:         n.Tag,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

// NotesToResponse converts a slice of Note to a non-nil slice of NoteResponse.
func NotesToResponse(notes []Note) []NoteResponse {
	result := make([]NoteResponse, len(notes))
	for i, n := range notes {
		result[i] = n.ToResponse()
	}
	return result
}
