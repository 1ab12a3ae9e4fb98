package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"survey-server/internal/catalog"
	"survey-server/internal/handler"
	"survey-server/internal/mocks"
	"survey-server/internal/models"
)

func newTestServer(t *testing.T) (*echo.Echo, *mocks.MockSurveyService) {
	t.Helper()

	cat, err := catalog.New([]models.Question{
		{ID: 1, Text: "What is your age group?", Options: []string{"18-25", "26-40", "41+"}},
		{ID: 2, Text: "Any comments?"},
	})
	require.NoError(t, err)

	svc := mocks.NewMockSurveyService(t)
	h := handler.NewSurveyHandler(svc, cat, zap.NewNop())

	e := echo.New()
	h.RegisterRoutes(e)
	return e, svc
}

// multipartAudio собирает multipart-тело с полем audio.
func multipartAudio(t *testing.T, fieldName string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, "answer.wav")
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestListQuestions(t *testing.T) {
	e, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/questions", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]handler.QuestionDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp["questions"], 2)
	assert.Equal(t, 1, resp["questions"][0].ID)
	assert.Equal(t, []string{"18-25", "26-40", "41+"}, resp["questions"][0].Options)
	// У открытого вопроса options сериализуется пустым массивом, не null
	assert.NotNil(t, resp["questions"][1].Options)
	assert.Empty(t, resp["questions"][1].Options)
}

func TestStartSession(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		e, svc := newTestServer(t)

		svc.On("StartSession", mock.Anything).Return("session-123", models.TurnResponse{
			Messages: []models.Message{{
				Role:    models.RoleAssistant,
				Text:    "What is your age group?",
				Audio:   []byte("wav-bytes"),
				Options: []string{"18-25", "26-40", "41+"},
			}},
			UIAction: models.UIActionStay,
		}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp handler.StartSessionResponseDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "session-123", resp.SessionID)
		assert.Equal(t, "stay", resp.Response.UIAction)
		require.Len(t, resp.Response.Messages, 1)
		// Байты озвучки уходят наружу как base64
		assert.Equal(t, "d2F2LWJ5dGVz", resp.Response.Messages[0].Audio)
	})

	t.Run("Synthesis failure maps to 502", func(t *testing.T) {
		e, svc := newTestServer(t)

		svc.On("StartSession", mock.Anything).
			Return("", models.TurnResponse{}, models.ErrSynthesisFailed).Once()

		req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestProcessTurn(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		e, svc := newTestServer(t)

		svc.On("ProcessTurn", mock.Anything, "session-123", "answer.wav", []byte("raw-audio"), mock.Anything).
			Return(models.TurnResponse{
				Transcription: "I am thirty",
				Messages: []models.Message{{
					Role: models.RoleAssistant,
					Text: "Any comments?",
				}},
				UIAction: models.UIActionNext,
			}, nil).Once()

		body, contentType := multipartAudio(t, "audio", []byte("raw-audio"))
		req := httptest.NewRequest(http.MethodPost, "/sessions/session-123/turns", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp handler.TurnResponseDTO
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "I am thirty", resp.Transcription)
		assert.Equal(t, "next", resp.UIAction)
	})

	t.Run("Missing audio field", func(t *testing.T) {
		e, svc := newTestServer(t)

		body, contentType := multipartAudio(t, "file", []byte("raw-audio"))
		req := httptest.NewRequest(http.MethodPost, "/sessions/session-123/turns", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "ProcessTurn")
	})

	t.Run("Unknown session", func(t *testing.T) {
		e, svc := newTestServer(t)

		svc.On("ProcessTurn", mock.Anything, "nope", mock.Anything, mock.Anything, mock.Anything).
			Return(models.TurnResponse{}, models.ErrSessionNotFound).Once()

		body, contentType := multipartAudio(t, "audio", []byte("raw-audio"))
		req := httptest.NewRequest(http.MethodPost, "/sessions/nope/turns", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Transcription failure maps to 502", func(t *testing.T) {
		e, svc := newTestServer(t)

		svc.On("ProcessTurn", mock.Anything, "session-123", mock.Anything, mock.Anything, mock.Anything).
			Return(models.TurnResponse{}, models.ErrTranscriptionFailed).Once()

		body, contentType := multipartAudio(t, "audio", []byte("raw-audio"))
		req := httptest.NewRequest(http.MethodPost, "/sessions/session-123/turns", body)
		req.Header.Set(echo.HeaderContentType, contentType)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadGateway, rec.Code)

		var apiErr handler.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
		assert.Contains(t, apiErr.Message, "retry")
	})
}

func TestQuestionAudio(t *testing.T) {
	t.Run("In range", func(t *testing.T) {
		e, svc := newTestServer(t)

		svc.On("QuestionAudio", mock.Anything, 0).
			Return([]byte("wav-bytes"), false, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/questions/0/audio", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "audio/wav", rec.Header().Get(echo.HeaderContentType))
		assert.Equal(t, []byte("wav-bytes"), rec.Body.Bytes())
	})

	t.Run("Out of range reports completion", func(t *testing.T) {
		e, svc := newTestServer(t)

		svc.On("QuestionAudio", mock.Anything, 5).
			Return(nil, true, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/questions/5/audio", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "completed", resp["status"])
	})

	t.Run("Non-numeric index", func(t *testing.T) {
		e, svc := newTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/questions/abc/audio", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "QuestionAudio")
	})
}

func TestHealthz(t *testing.T) {
	e, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
