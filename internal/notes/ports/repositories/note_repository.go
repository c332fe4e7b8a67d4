// Package repositories defines repository interfaces for the notes service.
package repositories

import (
	"context"

	"notekeeper/internal/notes/domain/entities"
)

// NoteRepository определяет интерфейс для работы с хранилищем заметок.
// Заметка чужого владельца неотличима от отсутствующей: entities.ErrNoteNotFound.
type NoteRepository interface {
	Create(ctx context.Context, note *entities.Note) (*entities.Note, error)
	GetByID(ctx context.Context, noteID, ownerID int64) (*entities.Note, error)
	// ListByOwner возвращает заметки владельца в порядке создания.
	ListByOwner(ctx context.Context, ownerID int64) ([]*entities.Note, error)
	// CompareAndSwap атомарно применяет update, если текущая версия равна update.ExpectedVersion,
	// и увеличивает версию на единицу. При несовпадении возвращает *entities.VersionConflictError.
	CompareAndSwap(ctx context.Context, noteID, ownerID int64, update entities.NoteUpdate) (*entities.Note, error)
	Delete(ctx context.Context, noteID, ownerID int64) error
}
