package dto

import (
	"time"

	"notekeeper/internal/notes/domain/entities"
)

// CreateNoteRequest содержит данные для создания заметки.
type CreateNoteRequest struct {
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
}

// UpdateNoteRequest содержит новое содержимое и версию, которую видел клиент.
type UpdateNoteRequest struct {
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
	Version *int64 `json:"version" form:"version"`
}

// NoteResponse представляет заметку в ответе.
type NoteResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	OwnerID   int64     `json:"owner_id"`
}

// NewNoteResponse преобразует заметку в ответ.
func NewNoteResponse(n *entities.Note) NoteResponse {
	return NoteResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Version:   n.Version,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		OwnerID:   n.OwnerID,
	}
}

// NewNoteListResponse преобразует список заметок. Пустой список кодируется как [].
func NewNoteListResponse(notes []*entities.Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, NewNoteResponse(n))
	}
	return out
}
