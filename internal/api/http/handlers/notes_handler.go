package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tutorial-service/internal/api/dto"
	"github.com/spec-kit/tutorial-service/internal/service"
	"github.com/spec-kit/tutorial-service/internal/validation"
)

// NotesHandler serves notes from the process-wide pool; it does not use the
// request session.
type NotesHandler struct {
	notes     *service.NotesService
	validator *validation.Validator
}

// NewNotesHandler constructs handler.
func NewNotesHandler(notes *service.NotesService, validator *validation.Validator) *NotesHandler {
	return &NotesHandler{notes: notes, validator: validator}
}

// List handles GET /notes/.
func (h *NotesHandler) List(c *fiber.Ctx) error {
	notes, err := h.notes.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewNoteResponses(notes))
}

// Create handles POST /notes/.
func (h *NotesHandler) Create(c *fiber.Ctx) error {
	var req dto.NoteIn
	if err := h.validator.Decode(c.Body(), validation.SchemaNoteIn, &req); err != nil {
		return err
	}
	note, err := h.notes.Create(c.UserContext(), req.Text, req.Completed)
	if err != nil {
		return err
	}
	return c.JSON(dto.NoteResponse{ID: note.ID, Text: note.Text, Completed: note.Completed})
}
