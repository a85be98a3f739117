package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/inotebook/inotebook-go/internal/model"
	"github.com/inotebook/inotebook-go/internal/repository"
)

var ErrNoteNotFound = errors.New("note not found")

// NoteService handles note business logic. Every operation is scoped to the
// authenticated owner.
type NoteService struct {
	repo *repository.NoteRepository
	now  func() time.Time
}

// NewNoteService creates a new NoteService.
func NewNoteService(repo *repository.NoteRepository) *NoteService {
	return &NoteService{repo: repo, now: time.Now}
}

// ListNotes returns all notes owned by userID in insertion order.
func (s *NoteService) ListNotes(ctx context.Context, userID string) ([]model.NoteResponse, error) {
	notes, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return model.NotesToResponse(notes), nil
}

// CreateNote validates and stores a new note owned by userID.
func (s *NoteService) CreateNote(ctx context.Context, userID string, req model.CreateNoteRequest) (model.NoteResponse, error) {
	if err := firstError(validateTitle(req.Title), validateDescription(req.Description)); err != nil {
		return model.NoteResponse{}, err
	}

	tag := strings.TrimSpace(req.Tag)
	if tag == "" {
		tag = model.DefaultTag
	}

	now := s.now().UTC()
	note := model.Note{
		UserID:      userID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Tag:         tag,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, &note); err != nil {
		return model.NoteResponse{}, err
	}

	return note.ToResponse(), nil
}

// UpdateNote applies the supplied fields of a patch to a note owned by userID.
func (s *NoteService) UpdateNote(ctx context.Context, userID, noteID string, req model.UpdateNoteRequest) (model.NoteResponse, error) {
	if req.Title != nil {
		if err := validateTitle(*req.Title); err != nil {
			return model.NoteResponse{}, err
		}
	}
	if req.Description != nil {
		if err := validateDescription(*req.Description); err != nil {
			return model.NoteResponse{}, err
		}
	}

	note, err := s.ownedNote(ctx, userID, noteID)
	if err != nil {
		return model.NoteResponse{}, err
	}
	if req.Empty() {
		return note.ToResponse(), nil
	}

	if req.Title != nil {
		note.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		note.Description = strings.TrimSpace(*req.Description)
	}
	if req.Tag != nil {
		note.Tag = strings.TrimSpace(*req.Tag)
	}
	note.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, note); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return model.NoteResponse{}, ErrNoteNotFound
		}
		return model.NoteResponse{}, err
	}

	return note.ToResponse(), nil
}

// DeleteNote removes a note owned by userID and returns it.
func (s *NoteService) DeleteNote(ctx context.Context, userID, noteID string) (model.NoteResponse, error) {
	note, err := s.ownedNote(ctx, userID, noteID)
	if err != nil {
		return model.NoteResponse{}, err
	}

	if err := s.repo.Delete(ctx, userID, noteID); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return model.NoteResponse{}, ErrNoteNotFound
		}
		return model.NoteResponse{}, err
	}

	return note.ToResponse(), nil
}

// ownedNote loads a note and checks that userID owns it.
func (s *NoteService) ownedNote(ctx context.Context, userID, noteID string) (*model.Note, error) {
	note, err := s.repo.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	if note.UserID != userID {
		return nil, ErrForbidden
	}
	return note, nil
}
