package repository

import (
	"context"
	"fmt"

	"github.com/spec-kit/tutorial-service/internal/dbx"
	"github.com/spec-kit/tutorial-service/internal/domain"
)

// NoteRepository reads and writes notes through the process-wide pool.
type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	List(ctx context.Context) ([]domain.Note, error)
}

type noteRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

// NewNoteRepository returns a database/sql implementation.
func NewNoteRepository(db dbx.DBTX, dialect dbx.Dialect) NoteRepository {
	return &noteRepository{db: db, dialect: dialect}
}

func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	const query = `INSERT INTO notes (text, completed) VALUES (?, ?) RETURNING id`

	if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), note.Text, note.Completed).Scan(&note.ID); err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (r *noteRepository) List(ctx context.Context) ([]domain.Note, error) {
	const query = `SELECT id, text, completed FROM notes ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]domain.Note, 0)
	for rows.Next() {
		var note domain.Note
		if err := rows.Scan(&note.ID, &note.Text, &note.Completed); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}
