// Package app implements application business logic for the notes service.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"notekeeper/internal/notes/domain/entities"
	"notekeeper/internal/notes/ports/api"
	"notekeeper/internal/notes/ports/repositories"
	"notekeeper/pkg/logger"
)

// NoteUseCase представляет собой бизнес-логику работы с заметками.
// ownerID всегда берется из аутентифицированного запроса, а не из тела.
type NoteUseCase struct {
	noteRepo repositories.NoteRepository
}

// NewNoteUseCase создает новый экземпляр NoteUseCase.
func NewNoteUseCase(noteRepo repositories.NoteRepository) api.NoteService {
	return &NoteUseCase{noteRepo: noteRepo}
}

// CreateNote создает новую заметку первой версии.
func (uc *NoteUseCase) CreateNote(ctx context.Context, ownerID int64, title, content string) (*entities.Note, error) {
	note, err := uc.noteRepo.Create(ctx, entities.NewNote(ownerID, title, content))
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	logger.Log(ctx).Info(ctx, "note created", zap.Int64("noteID", note.ID), zap.Int64("ownerID", ownerID))
	return note, nil
}

// ListNotes возвращает все заметки пользователя в порядке создания.
func (uc *NoteUseCase) ListNotes(ctx context.Context, ownerID int64) ([]*entities.Note, error) {
	notes, err := uc.noteRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// GetNote возвращает заметку по ID.
func (uc *NoteUseCase) GetNote(ctx context.Context, noteID, ownerID int64) (*entities.Note, error) {
	note, err := uc.noteRepo.GetByID(ctx, noteID, ownerID)
	if err != nil {
		return nil, wrapStoreError("failed to get note", err)
	}
	return note, nil
}

// UpdateNote заменяет заголовок и содержимое, если expectedVersion совпадает с текущей версией.
// Конфликты версий не повторяются автоматически.
func (uc *NoteUseCase) UpdateNote(
	ctx context.Context, noteID, ownerID int64, title, content string, expectedVersion int64,
) (*entities.Note, error) {
	note, err := uc.noteRepo.CompareAndSwap(ctx, noteID, ownerID, entities.NoteUpdate{
		Title:           title,
		Content:         content,
		ExpectedVersion: expectedVersion,
	})
	if err != nil {
		return nil, wrapStoreError("failed to update note", err)
	}

	logger.Log(ctx).Info(ctx, "note updated",
		zap.Int64("noteID", note.ID), zap.Int64("version", note.Version))
	return note, nil
}

// DeleteNote удаляет заметку без проверки версии.
func (uc *NoteUseCase) DeleteNote(ctx context.Context, noteID, ownerID int64) error {
	if err := uc.noteRepo.Delete(ctx, noteID, ownerID); err != nil {
		return wrapStoreError("failed to delete note", err)
	}

	logger.Log(ctx).Info(ctx, "note deleted", zap.Int64("noteID", noteID))
	return nil
}

// wrapStoreError оставляет доменные ошибки как есть и добавляет контекст к остальным.
func wrapStoreError(msg string, err error) error {
	if errors.Is(err, entities.ErrNoteNotFound) || errors.Is(err, entities.ErrVersionConflict) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
