package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"survey-server/internal/catalog"
	"survey-server/internal/models"
	"survey-server/internal/service"
)

// Лимит размера загружаемого аудио (25 МБ - лимит whisper API).
const maxAudioBytes = 25 << 20

// SurveyHandler обрабатывает HTTP запросы голосового опроса.
type SurveyHandler struct {
	service service.SurveyService
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewSurveyHandler создает новый SurveyHandler.
func NewSurveyHandler(s service.SurveyService, cat *catalog.Catalog, logger *zap.Logger) *SurveyHandler {
	return &SurveyHandler{
		service: s,
		catalog: cat,
		logger:  logger.Named("SurveyHandler"),
	}
}

// RegisterRoutes регистрирует маршруты опроса.
func (h *SurveyHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.root)
	e.GET("/healthz", h.healthz)
	e.GET("/questions", h.listQuestions)
	e.GET("/questions/:index/audio", h.questionAudio)

	sessionsGroup := e.Group("/sessions")
	{
		sessionsGroup.POST("", h.startSession)
		sessionsGroup.POST("/:id/turns", h.processTurn)
	}
}

func (h *SurveyHandler) root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Welcome to the Voice Survey Backend!"})
}

func (h *SurveyHandler) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SurveyHandler) listQuestions(c echo.Context) error {
	questions := h.catalog.All()
	dtos := make([]QuestionDTO, 0, len(questions))
	for _, q := range questions {
		dtos = append(dtos, toQuestionDTO(q))
	}
	return c.JSON(http.StatusOK, map[string][]QuestionDTO{"questions": dtos})
}

// questionAudio отдает синтезированную озвучку вопроса по 0-based индексу.
// За пределами каталога возвращается {"status":"completed"}.
func (h *SurveyHandler) questionAudio(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		return c.JSON(http.StatusBadRequest, APIError{Message: "invalid question index"})
	}

	audio, completed, err := h.service.QuestionAudio(c.Request().Context(), index)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	if completed {
		return c.JSON(http.StatusOK, map[string]string{"status": "completed"})
	}
	return c.Blob(http.StatusOK, "audio/wav", audio)
}

func (h *SurveyHandler) startSession(c echo.Context) error {
	sessionID, resp, err := h.service.StartSession(c.Request().Context())
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, StartSessionResponseDTO{
		SessionID: sessionID,
		Response:  toTurnResponseDTO(resp),
	})
}

// processTurn принимает multipart-форму с полем audio и прогоняет один ход.
func (h *SurveyHandler) processTurn(c echo.Context) error {
	sessionID := c.Param("id")
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, APIError{Message: "session id is required"})
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "audio file is required"})
	}
	if fileHeader.Size > maxAudioBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, APIError{Message: "audio file too large"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "failed to open audio file"})
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "failed to read audio file"})
	}

	mimeHint := fileHeader.Header.Get("Content-Type")
	resp, err := h.service.ProcessTurn(c.Request().Context(), sessionID, fileHeader.Filename, audio, mimeHint)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, toTurnResponseDTO(resp))
}

// handleServiceError отображает ошибки ядра в HTTP статусы.
// Транзитные сбои зависимостей отдаются как 502: клиент может повторить
// тот же ход с тем же аудио.
func (h *SurveyHandler) handleServiceError(c echo.Context, err error) error {
	var status int
	var apiErr APIError

	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		status = http.StatusNotFound
		apiErr = APIError{Message: "Session not found"}
	case errors.Is(err, models.ErrQuestionNotFound):
		status = http.StatusNotFound
		apiErr = APIError{Message: "Question not found"}
	case errors.Is(err, models.ErrTranscriptionFailed):
		status = http.StatusBadGateway
		apiErr = APIError{Message: "Transcription unavailable, please retry"}
	case errors.Is(err, models.ErrOracleUnavailable):
		status = http.StatusBadGateway
		apiErr = APIError{Message: "Classification unavailable, please retry"}
	case errors.Is(err, models.ErrSynthesisFailed):
		status = http.StatusBadGateway
		apiErr = APIError{Message: "Speech synthesis unavailable, please retry"}
	default:
		h.logger.Error("Необработанная ошибка сервиса", zap.Error(err))
		status = http.StatusInternalServerError
		apiErr = APIError{Message: "Internal server error"}
	}

	return c.JSON(status, apiErr)
}
