package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"notekeeper/internal/notes/domain/entities"
	"notekeeper/internal/notes/ports/cache"
	"notekeeper/internal/notes/ports/repositories"
	"notekeeper/internal/resilience"
	"notekeeper/pkg/logger"
)

const keyPrefix = "note:"

// cachedNote - представление заметки в кэше.
type cachedNote struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	OwnerID   int64     `json:"owner_id"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCached(n *entities.Note) cachedNote {
	return cachedNote{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		OwnerID:   n.OwnerID,
		Version:   n.Version,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func (c cachedNote) toEntity() *entities.Note {
	return &entities.Note{
		ID:        c.ID,
		Title:     c.Title,
		Content:   c.Content,
		OwnerID:   c.OwnerID,
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NoteKey возвращает ключ кэша для заметки.
func NoteKey(noteID int64) string {
	return keyPrefix + strconv.FormatInt(noteID, 10)
}

// CachedNoteRepository - декоратор NoteRepository с кэшем чтения по ID.
// Ошибки кэша не прерывают запрос: хранилище остается источником истины.
//
// Запись в кэш после промаха условна: если между чтением из хранилища и записью
// заметку изменили или удалили, старый снимок в кэш не попадет. Сброс, который не
// удалось выполнить, запоминается, и кэш для этой заметки не читается, пока сброс
// не пройдет.
type CachedNoteRepository struct {
	next    repositories.NoteRepository
	cache   cache.Cache
	ttl     time.Duration
	breaker *resilience.CircuitBreaker

	mu      sync.Mutex
	seq     uint64
	pending map[int64]uint64
}

// NewCachedNoteRepository оборачивает next кэшем.
func NewCachedNoteRepository(next repositories.NoteRepository, c cache.Cache, ttl time.Duration) repositories.NoteRepository {
	return &CachedNoteRepository{
		next:    next,
		cache:   c,
		ttl:     ttl,
		breaker: resilience.NewCircuitBreaker("notes-cache", resilience.DefaultCircuitBreakerConfig()),
		pending: make(map[int64]uint64),
	}
}

// Create делегирует создание хранилищу. Новая заметка попадет в кэш при первом чтении.
func (r *CachedNoteRepository) Create(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	return r.next.Create(ctx, note)
}

// GetByID читает заметку из кэша, при промахе из хранилища.
func (r *CachedNoteRepository) GetByID(ctx context.Context, noteID, ownerID int64) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "CachedNoteRepository.GetByID"), zap.Int64("noteID", noteID))
	key := NoteKey(noteID)

	if !r.flushPending(ctx, noteID) {
		log.Debug(ctx, "cached note has a pending invalidation, reading from store")
		return r.next.GetByID(ctx, noteID, ownerID)
	}

	var hit cachedNote
	err := r.breaker.Execute(ctx, func() error {
		err := r.cache.Get(ctx, key, &hit)
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil
		}
		return err
	})
	switch {
	case err != nil:
		log.Debug(ctx, "cache unavailable, reading from store", zap.Error(err))
		return r.next.GetByID(ctx, noteID, ownerID)
	case hit.ID == noteID:
		if hit.OwnerID != ownerID {
			return nil, entities.ErrNoteNotFound
		}
		log.Debug(ctx, "cache hit")
		return hit.toEntity(), nil
	}

	// Поколение читается до хранилища: сброс после этого момента отменит запись.
	var generation int64
	err = r.breaker.Execute(ctx, func() error {
		var genErr error
		generation, genErr = r.cache.Generation(ctx, key)
		return genErr
	})
	if err != nil {
		log.Debug(ctx, "cache unavailable, reading from store", zap.Error(err))
		return r.next.GetByID(ctx, noteID, ownerID)
	}

	note, err := r.next.GetByID(ctx, noteID, ownerID)
	if err != nil {
		return nil, err
	}

	r.store(ctx, note, generation)
	return note, nil
}

// ListByOwner не кэшируется.
func (r *CachedNoteRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*entities.Note, error) {
	return r.next.ListByOwner(ctx, ownerID)
}

// CompareAndSwap обновляет заметку в хранилище и сбрасывает ее из кэша.
func (r *CachedNoteRepository) CompareAndSwap(
	ctx context.Context, noteID, ownerID int64, update entities.NoteUpdate,
) (*entities.Note, error) {
	note, err := r.next.CompareAndSwap(ctx, noteID, ownerID, update)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, noteID)
	return note, nil
}

// Delete удаляет заметку из хранилища и из кэша.
func (r *CachedNoteRepository) Delete(ctx context.Context, noteID, ownerID int64) error {
	if err := r.next.Delete(ctx, noteID, ownerID); err != nil {
		return err
	}
	r.invalidate(ctx, noteID)
	return nil
}

func (r *CachedNoteRepository) store(ctx context.Context, note *entities.Note, generation int64) {
	var written bool
	err := r.breaker.Execute(ctx, func() error {
		var setErr error
		written, setErr = r.cache.SetIfGeneration(ctx, NoteKey(note.ID), generation, toCached(note), r.ttl)
		return setErr
	})
	switch {
	case err != nil:
		logger.Log(ctx).Debug(ctx, "failed to cache note", zap.Int64("noteID", note.ID), zap.Error(err))
	case !written:
		logger.Log(ctx).Debug(ctx, "note changed while reading, not cached", zap.Int64("noteID", note.ID))
	}
}

func (r *CachedNoteRepository) invalidate(ctx context.Context, noteID int64) {
	err := r.breaker.Execute(ctx, func() error {
		return r.cache.Invalidate(ctx, NoteKey(noteID))
	})
	if err != nil {
		logger.Log(ctx).Warn(ctx, "failed to invalidate cached note, deferring",
			zap.Int64("noteID", noteID), zap.Error(err))
		r.mu.Lock()
		r.seq++
		r.pending[noteID] = r.seq
		r.mu.Unlock()
	}
}

// flushPending повторяет отложенный сброс заметки. Возвращает true, если кэшу
// заметки можно доверять.
func (r *CachedNoteRepository) flushPending(ctx context.Context, noteID int64) bool {
	r.mu.Lock()
	mark, ok := r.pending[noteID]
	r.mu.Unlock()
	if !ok {
		return true
	}

	err := r.breaker.Execute(ctx, func() error {
		return r.cache.Invalidate(ctx, NoteKey(noteID))
	})
	if err != nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending[noteID] == mark {
		delete(r.pending, noteID)
		return true
	}
	return false
}
