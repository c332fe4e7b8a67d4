// Package api defines the inbound ports of the notes service.
package api

import (
	"context"

	"notekeeper/internal/notes/domain/entities"
)

// NoteService определяет операции над заметками от имени аутентифицированного пользователя.
type NoteService interface {
	CreateNote(ctx context.Context, ownerID int64, title, content string) (*entities.Note, error)
	ListNotes(ctx context.Context, ownerID int64) ([]*entities.Note, error)
	GetNote(ctx context.Context, noteID, ownerID int64) (*entities.Note, error)
	UpdateNote(ctx context.Context, noteID, ownerID int64, title, content string, expectedVersion int64) (*entities.Note, error)
	DeleteNote(ctx context.Context, noteID, ownerID int64) error
}
