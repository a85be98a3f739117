package handler

import (
	"net/http"

	"github.com/inotebook/inotebook-go/internal/model"
	"github.com/inotebook/inotebook-go/internal/service"
)

// NoteHandler handles HTTP requests for notes.
type NoteHandler struct {
	service *service.NoteService
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(svc *service.NoteService) *NoteHandler {
	return &NoteHandler{service: svc}
}

// HandleListNotes handles GET /api/notes/fetchnotes requests.
func (h *NoteHandler) HandleListNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	notes, err := h.service.ListNotes(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "notes": notes})
}

// HandleCreateNote handles POST /api/notes/addnote requests.
func (h *NoteHandler) HandleCreateNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	note, err := h.service.CreateNote(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "note": note})
}

// HandleUpdateNote handles PUT /api/notes/updatenote/{id} requests.
func (h *NoteHandler) HandleUpdateNote(w http.ResponseWriter, r *http.Request) {
	userID, noteID, ok := userAndTarget(w, r)
	if !ok {
		return
	}

	var req model.UpdateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	note, err := h.service.UpdateNote(r.Context(), userID, noteID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "note": note})
}

// HandleDeleteNote handles DELETE /api/notes/deletenote/{id} requests.
func (h *NoteHandler) HandleDeleteNote(w http.ResponseWriter, r *http.Request) {
	userID, noteID, ok := userAndTarget(w, r)
	if !ok {
		return
	}

	note, err := h.service.DeleteNote(r.Context(), userID, noteID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"response": "Note has been deleted",
		"note":     note,
	})
}
