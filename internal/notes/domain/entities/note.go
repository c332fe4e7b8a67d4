// Package entities defines the domain entities for the notes service.
package entities

import (
	"errors"
	"fmt"
	"time"
)

// Ошибки домена заметок.
var (
	ErrNoteNotFound    = errors.New("note not found")
	ErrVersionConflict = errors.New("version conflict")
)

// InitialVersion - версия только что созданной заметки.
const InitialVersion int64 = 1

// Note представляет собой заметку пользователя.
type Note struct {
	ID        int64
	Title     string
	Content   string
	OwnerID   int64
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewNote создает заметку первой версии.
func NewNote(ownerID int64, title, content string) *Note {
	now := time.Now().UTC()
	return &Note{
		Title:     title,
		Content:   content,
		OwnerID:   ownerID,
		Version:   InitialVersion,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NoteUpdate - новое содержимое заметки и версия, которую видел клиент.
type NoteUpdate struct {
	Title           string
	Content         string
	ExpectedVersion int64
}

// VersionConflictError возвращается, когда ожидаемая версия не совпала с текущей.
type VersionConflictError struct {
	Current  int64
	Provided int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict: current %d, provided %d", e.Current, e.Provided)
}

// Is позволяет сравнивать ошибку с ErrVersionConflict через errors.Is.
func (e *VersionConflictError) Is(target error) bool {
	return target == ErrVersionConflict
}
