// Package postgres provides PostgreSQL implementations of repositories.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"notekeeper/internal/notes/domain/entities"
	"notekeeper/internal/notes/ports/repositories"
	"notekeeper/pkg/logger"
)

const noteColumns = `id, title, content, owner_id, version, created_at, updated_at`

// PgxPoolInterface - подмножество методов pgxpool.Pool, используемое репозиторием.
type PgxPoolInterface interface {
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NoteRepository реализует интерфейс repositories.NoteRepository.
type NoteRepository struct {
	pool PgxPoolInterface
}

// NewNoteRepository создает новый репозиторий заметок.
func NewNoteRepository(pool PgxPoolInterface) repositories.NoteRepository {
	return &NoteRepository{pool: pool}
}

func scanNote(row pgx.Row) (*entities.Note, error) {
	var note entities.Note
	err := row.Scan(&note.ID, &note.Title, &note.Content, &note.OwnerID, &note.Version, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// Create сохраняет новую заметку в БД.
func (r *NoteRepository) Create(ctx context.Context, note *entities.Note) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Create"))
	log.Debug(ctx, "creating new note", zap.Int64("ownerID", note.OwnerID))

	created, err := scanNote(r.pool.QueryRow(ctx,
		`INSERT INTO notes (title, content, owner_id) VALUES ($1, $2, $3) RETURNING `+noteColumns,
		note.Title, note.Content, note.OwnerID,
	))
	if err != nil {
		log.Error(ctx, "failed to create note", zap.Error(err))
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	log.Debug(ctx, "note created", zap.Int64("noteID", created.ID))
	return created, nil
}

// GetByID получает заметку по ID и ID владельца.
func (r *NoteRepository) GetByID(ctx context.Context, noteID, ownerID int64) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.GetByID"))
	log.Debug(ctx, "getting note", zap.Int64("noteID", noteID), zap.Int64("ownerID", ownerID))

	note, err := scanNote(r.pool.QueryRow(ctx,
		`SELECT `+noteColumns+`
         FROM notes
         WHERE id = $1 AND owner_id = $2`,
		noteID, ownerID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "note not found", zap.Int64("noteID", noteID))
			return nil, entities.ErrNoteNotFound
		}
		log.Error(ctx, "failed to get note", zap.Error(err))
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return note, nil
}

// ListByOwner получает все заметки владельца в порядке создания.
func (r *NoteRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.ListByOwner"))
	log.Debug(ctx, "listing notes", zap.Int64("ownerID", ownerID))

	rows, err := r.pool.Query(ctx,
		`SELECT `+noteColumns+`
         FROM notes
         WHERE owner_id = $1
         ORDER BY id`,
		ownerID,
	)
	if err != nil {
		log.Error(ctx, "failed to list notes", zap.Error(err))
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]*entities.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			log.Error(ctx, "failed to scan note", zap.Error(err))
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		log.Error(ctx, "error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return notes, nil
}

// CompareAndSwap обновляет заметку в транзакции, блокируя строку на время сравнения версий.
func (r *NoteRepository) CompareAndSwap(
	ctx context.Context, noteID, ownerID int64, update entities.NoteUpdate,
) (*entities.Note, error) {
	log := logger.Log(ctx).With(
		zap.String("method", "NoteRepository.CompareAndSwap"),
		zap.Int64("noteID", noteID),
		zap.Int64("expectedVersion", update.ExpectedVersion),
	)
	log.Debug(ctx, "updating note")

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		log.Error(ctx, "failed to begin transaction", zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var current int64
	err = tx.QueryRow(ctx,
		`SELECT version FROM notes WHERE id = $1 AND owner_id = $2 FOR UPDATE`,
		noteID, ownerID,
	).Scan(&current)
	if err != nil {
		r.rollback(ctx, tx, log)
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debug(ctx, "note not found")
			return nil, entities.ErrNoteNotFound
		}
		log.Error(ctx, "failed to lock note", zap.Error(err))
		return nil, fmt.Errorf("failed to lock note: %w", err)
	}

	if current != update.ExpectedVersion {
		r.rollback(ctx, tx, log)
		log.Debug(ctx, "version conflict", zap.Int64("currentVersion", current))
		return nil, &entities.VersionConflictError{Current: current, Provided: update.ExpectedVersion}
	}

	updated, err := scanNote(tx.QueryRow(ctx,
		`UPDATE notes
         SET title = $1, content = $2, version = version + 1, updated_at = now()
         WHERE id = $3 AND owner_id = $4
         RETURNING `+noteColumns,
		update.Title, update.Content, noteID, ownerID,
	))
	if err != nil {
		r.rollback(ctx, tx, log)
		log.Error(ctx, "failed to update note", zap.Error(err))
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error(ctx, "failed to commit note update", zap.Error(err))
		return nil, fmt.Errorf("failed to commit note update: %w", err)
	}

	log.Debug(ctx, "note updated", zap.Int64("version", updated.Version))
	return updated, nil
}

func (r *NoteRepository) rollback(ctx context.Context, tx pgx.Tx, log *logger.Logger) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		log.Warn(ctx, "failed to rollback transaction", zap.Error(err))
	}
}

// Delete удаляет заметку.
func (r *NoteRepository) Delete(ctx context.Context, noteID, ownerID int64) error {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Delete"))
	log.Debug(ctx, "deleting note", zap.Int64("noteID", noteID))

	result, err := r.pool.Exec(ctx,
		`DELETE FROM notes WHERE id = $1 AND owner_id = $2`,
		noteID, ownerID,
	)
	if err != nil {
		log.Error(ctx, "failed to delete note", zap.Error(err))
		return fmt.Errorf("failed to delete note: %w", err)
	}

	if result.RowsAffected() == 0 {
		log.Debug(ctx, "note not found or not owned by user")
		return entities.ErrNoteNotFound
	}

	return nil
}
