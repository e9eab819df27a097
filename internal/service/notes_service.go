package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/spec-kit/tutorial-service/internal/domain"
	"github.com/spec-kit/tutorial-service/internal/events"
	"github.com/spec-kit/tutorial-service/internal/repository"
)

// NotesService stores notes through the process-wide pool.
type NotesService struct {
	notes      repository.NoteRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotesService constructs the service.
func NewNotesService(notes repository.NoteRepository, dispatcher events.Dispatcher, logger *zap.Logger) *NotesService {
	return &NotesService{notes: notes, dispatcher: dispatcher, logger: logger}
}

// Create inserts a note and returns it with its id.
func (s *NotesService) Create(ctx context.Context, text string, completed bool) (*domain.Note, error) {
	note := &domain.Note{Text: text, Completed: completed}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}
	if s.dispatcher != nil {
		event := events.New(events.EventNoteCreated, strconv.FormatInt(note.ID, 10),
			events.NoteCreatedPayload{NoteID: note.ID, Completed: completed})
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("note_created handlers failed", zap.Error(err))
		}
	}
	return note, nil
}

// List returns every note.
func (s *NotesService) List(ctx context.Context) ([]domain.Note, error) {
	notes, err := s.notes.List(ctx)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	return notes, nil
}
