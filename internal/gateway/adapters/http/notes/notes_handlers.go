// Package notes содержит HTTP-обработчики для управления заметками.
package notes

import (
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notekeeper/internal/gateway/adapters/http/middleware"
	"notekeeper/internal/gateway/adapters/http/response"
	"notekeeper/internal/gateway/app/dto"
	"notekeeper/internal/notes/ports/api"
	"notekeeper/pkg/logger"
)

// Константы ошибок и сообщений для логирования.
const (
	LogHandlerCreateNote = "handling create note request"
	LogHandlerGetNote    = "handling get note request"
	LogHandlerListNotes  = "handling list notes request"
	LogHandlerUpdateNote = "handling update note request"
	LogHandlerDeleteNote = "handling delete note request"

	ErrMsgInvalidNoteID      = "invalid note id"
	ErrMsgInvalidRequestBody = "invalid request body"
	ErrMsgVersionRequired    = "version is required"
	ErrMsgTitleTooLong       = "title must be at most 255 characters"

	MsgNoteDeleted = "Note deleted"

	maxTitleLength = 255
)

// Handler обработчик HTTP-запросов для работы с заметками.
type Handler struct {
	notes api.NoteService
}

// NewHandler создает новый экземпляр обработчика заметок.
func NewHandler(notes api.NoteService) *Handler {
	return &Handler{notes: notes}
}

// CreateNote обрабатывает запрос на создание новой заметки.
func (h *Handler) CreateNote(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.CreateNote"))
	log.Debug(requestCtx, LogHandlerCreateNote)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c)
	}

	var req dto.CreateNoteRequest
	if err := c.Bind().Body(&req); err != nil {
		log.Debug(requestCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return response.Error(c, http.StatusBadRequest, ErrMsgInvalidRequestBody)
	}
	if utf8.RuneCountInString(req.Title) > maxTitleLength {
		return response.Error(c, http.StatusBadRequest, ErrMsgTitleTooLong)
	}

	note, err := h.notes.CreateNote(requestCtx, user.ID, req.Title, req.Content)
	if err != nil {
		return response.FromError(requestCtx, c, err)
	}

	return response.JSON(c, http.StatusOK, dto.NewNoteResponse(note))
}

// ListNotes возвращает все заметки текущего пользователя.
func (h *Handler) ListNotes(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.ListNotes"))
	log.Debug(requestCtx, LogHandlerListNotes)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c)
	}

	notes, err := h.notes.ListNotes(requestCtx, user.ID)
	if err != nil {
		return response.FromError(requestCtx, c, err)
	}

	return response.JSON(c, http.StatusOK, dto.NewNoteListResponse(notes))
}

// GetNote возвращает заметку по идентификатору.
func (h *Handler) GetNote(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.GetNote"))
	log.Debug(requestCtx, LogHandlerGetNote)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c)
	}

	noteID, err := parseNoteID(c)
	if err != nil {
		return response.Error(c, http.StatusBadRequest, ErrMsgInvalidNoteID)
	}

	note, err := h.notes.GetNote(requestCtx, noteID, user.ID)
	if err != nil {
		return response.FromError(requestCtx, c, err)
	}

	return response.JSON(c, http.StatusOK, dto.NewNoteResponse(note))
}

// UpdateNote заменяет содержимое заметки, если версия клиента актуальна.
func (h *Handler) UpdateNote(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.UpdateNote"))
	log.Debug(requestCtx, LogHandlerUpdateNote)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c)
	}

	noteID, err := parseNoteID(c)
	if err != nil {
		return response.Error(c, http.StatusBadRequest, ErrMsgInvalidNoteID)
	}

	var req dto.UpdateNoteRequest
	if err := c.Bind().Body(&req); err != nil {
		log.Debug(requestCtx, ErrMsgInvalidRequestBody, zap.Error(err))
		return response.Error(c, http.StatusBadRequest, ErrMsgInvalidRequestBody)
	}
	if req.Version == nil {
		return response.Error(c, http.StatusBadRequest, ErrMsgVersionRequired)
	}
	if utf8.RuneCountInString(req.Title) > maxTitleLength {
		return response.Error(c, http.StatusBadRequest, ErrMsgTitleTooLong)
	}

	note, err := h.notes.UpdateNote(requestCtx, noteID, user.ID, req.Title, req.Content, *req.Version)
	if err != nil {
		return response.FromError(requestCtx, c, err)
	}

	return response.JSON(c, http.StatusOK, dto.NewNoteResponse(note))
}

// DeleteNote удаляет заметку без проверки версии.
func (h *Handler) DeleteNote(c fiber.Ctx) error {
	requestCtx := middleware.RequestContext(c)
	log := logger.Log(requestCtx).With(zap.String("handler", "Handler.DeleteNote"))
	log.Debug(requestCtx, LogHandlerDeleteNote)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c)
	}

	noteID, err := parseNoteID(c)
	if err != nil {
		return response.Error(c, http.StatusBadRequest, ErrMsgInvalidNoteID)
	}

	if err := h.notes.DeleteNote(requestCtx, noteID, user.ID); err != nil {
		return response.FromError(requestCtx, c, err)
	}

	return response.JSON(c, http.StatusOK, fiber.Map{"message": MsgNoteDeleted})
}

func parseNoteID(c fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("note_id"), 10, 64)
}
