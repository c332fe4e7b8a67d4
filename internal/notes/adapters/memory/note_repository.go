// Package memory provides an in-process note store.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"notekeeper/internal/notes/domain/entities"
	"notekeeper/internal/notes/ports/repositories"
	"notekeeper/pkg/logger"
)

// NoteRepository хранит заметки в map под одним мьютексом.
type NoteRepository struct {
	mu     sync.RWMutex
	nextID int64
	notes  map[int64]*entities.Note
	order  []int64
}

// NewNoteRepository создает пустое хранилище заметок.
func NewNoteRepository() repositories.NoteRepository {
	return &NoteRepository{notes: make(map[int64]*entities.Note)}
}

func clone(n *entities.Note) *entities.Note {
	c := *n
	return &c
}

// Create сохраняет заметку и назначает ей ID.
func (r *NoteRepository) Create(_ context.Context, note *entities.Note) (*entities.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := time.Now().UTC()
	stored := &entities.Note{
		ID:        r.nextID,
		Title:     strings.Clone(note.Title),
		Content:   strings.Clone(note.Content),
		OwnerID:   note.OwnerID,
		Version:   entities.InitialVersion,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.notes[stored.ID] = stored
	r.order = append(r.order, stored.ID)

	return clone(stored), nil
}

// lookup должна вызываться под мьютексом.
func (r *NoteRepository) lookup(noteID, ownerID int64) (*entities.Note, bool) {
	note, ok := r.notes[noteID]
	if !ok || note.OwnerID != ownerID {
		return nil, false
	}
	return note, true
}

// GetByID возвращает заметку владельца.
func (r *NoteRepository) GetByID(_ context.Context, noteID, ownerID int64) (*entities.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	note, ok := r.lookup(noteID, ownerID)
	if !ok {
		return nil, entities.ErrNoteNotFound
	}
	return clone(note), nil
}

// ListByOwner возвращает заметки владельца в порядке создания.
func (r *NoteRepository) ListByOwner(_ context.Context, ownerID int64) ([]*entities.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notes := make([]*entities.Note, 0)
	for _, id := range r.order {
		if note := r.notes[id]; note.OwnerID == ownerID {
			notes = append(notes, clone(note))
		}
	}
	return notes, nil
}

// CompareAndSwap выполняет сравнение версии и запись под одной блокировкой.
func (r *NoteRepository) CompareAndSwap(
	ctx context.Context, noteID, ownerID int64, update entities.NoteUpdate,
) (*entities.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note, ok := r.lookup(noteID, ownerID)
	if !ok {
		return nil, entities.ErrNoteNotFound
	}

	if note.Version != update.ExpectedVersion {
		logger.Log(ctx).Debug(ctx, "version conflict",
			zap.String("method", "memory.NoteRepository.CompareAndSwap"),
			zap.Int64("noteID", noteID),
			zap.Int64("currentVersion", note.Version),
			zap.Int64("expectedVersion", update.ExpectedVersion))
		return nil, &entities.VersionConflictError{Current: note.Version, Provided: update.ExpectedVersion}
	}

	note.Title = strings.Clone(update.Title)
	note.Content = strings.Clone(update.Content)
	note.Version++
	note.UpdatedAt = time.Now().UTC()

	return clone(note), nil
}

// Delete удаляет заметку владельца.
func (r *NoteRepository) Delete(_ context.Context, noteID, ownerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lookup(noteID, ownerID); !ok {
		return entities.ErrNoteNotFound
	}

	delete(r.notes, noteID)
	for i, id := range r.order {
		if id == noteID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
