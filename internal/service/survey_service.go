package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"survey-server/internal/catalog"
	"survey-server/internal/models"
	"survey-server/internal/repository"
	"survey-server/internal/session"
)

// SurveyService - граница ядра для HTTP-слоя: создание сессии и обработка
// одного хода (аудио внутрь, TurnResponse наружу).
type SurveyService interface {
	// StartSession создает сессию и возвращает озвученный промт первого вопроса.
	StartSession(ctx context.Context) (string, models.TurnResponse, error)
	// ProcessTurn обрабатывает одно высказывание в рамках сессии.
	ProcessTurn(ctx context.Context, sessionID string, filename string, audio []byte, mimeHint string) (models.TurnResponse, error)
	// QuestionAudio синтезирует озвучку вопроса по 0-based индексу.
	// completed == true, если индекс за пределами каталога.
	QuestionAudio(ctx context.Context, index int) (audio []byte, completed bool, err error)
}

type surveyServiceImpl struct {
	catalog     *catalog.Catalog
	store       *session.Store
	engine      *DialogueEngine
	transcriber Transcriber
	composer    *ResponseComposer
	responses   repository.ResponseRepository
	logger      *zap.Logger
}

// NewSurveyService создает сервис опроса.
func NewSurveyService(
	cat *catalog.Catalog,
	store *session.Store,
	engine *DialogueEngine,
	transcriber Transcriber,
	composer *ResponseComposer,
	responses repository.ResponseRepository,
	logger *zap.Logger,
) SurveyService {
	return &surveyServiceImpl{
		catalog:     cat,
		store:       store,
		engine:      engine,
		transcriber: transcriber,
		composer:    composer,
		responses:   responses,
		logger:      logger.Named("SurveyService"),
	}
}

func (s *surveyServiceImpl) StartSession(ctx context.Context) (string, models.TurnResponse, error) {
	prompt, err := s.engine.PromptForIndex(0)
	if err != nil {
		return "", models.TurnResponse{}, err
	}

	// Озвучиваем первый вопрос ДО создания сессии: при сбое синтеза
	// не остается висячей сессии
	msg, err := s.composer.Compose(ctx, prompt)
	if err != nil {
		return "", models.TurnResponse{}, err
	}

	sess := s.store.Create()
	MetricsIncrementSessionStarted()

	s.logger.Info("Опрос начат",
		zap.String("session_id", sess.ID),
		zap.Int("total_questions", s.catalog.Len()))

	return sess.ID, models.TurnResponse{
		Messages: []models.Message{msg},
		UIAction: models.UIActionStay,
	}, nil
}

func (s *surveyServiceImpl) ProcessTurn(ctx context.Context, sessionID string, filename string, audio []byte, mimeHint string) (models.TurnResponse, error) {
	turnStart := time.Now()

	// Снапшот под посессионным локом; внешние вызовы идут без лока
	snap, err := s.store.Snapshot(sessionID)
	if err != nil {
		return models.TurnResponse{}, err
	}

	// Терминальное состояние: фиксированный ответ без обращения к зависимостям
	if snap.Status == models.StatusComplete {
		msg, err := s.composer.Compose(ctx, Prompt{Text: msgSurveyComplete})
		if err != nil {
			MetricsIncrementTurnFailed("synthesis")
			return models.TurnResponse{}, err
		}
		return models.TurnResponse{
			Messages: []models.Message{msg},
			UIAction: models.UIActionEnd,
		}, nil
	}

	transcript, err := s.transcriber.Transcribe(ctx, filename, audio, mimeHint)
	if err != nil {
		MetricsIncrementTurnFailed("transcription")
		return models.TurnResponse{}, err
	}

	outcome, err := s.engine.RunTurn(ctx, snap, transcript)
	if err != nil {
		MetricsIncrementTurnFailed(failureStage(err))
		return models.TurnResponse{}, err
	}

	messages, err := s.composer.ComposeAll(ctx, outcome.Prompts)
	if err != nil {
		MetricsIncrementTurnFailed("synthesis")
		return models.TurnResponse{}, err
	}

	// Все внешние вызовы хода завершились - применяем мутацию атомарно.
	// До этой точки любой сбой оставляет сессию нетронутой, ход повторяем.
	if outcome.Mutation != nil {
		if err := s.store.Mutate(sessionID, outcome.Mutation); err != nil {
			return models.TurnResponse{}, err
		}
	}

	// Best-effort запись принятого ответа: сбой не валит ход
	if outcome.Recorded {
		record := models.TurnRecord{
			SessionID:     sessionID,
			Question:      outcome.AnsweredQuestion.Text,
			Transcription: transcript,
			MappedOption:  outcome.MappedOption,
			Timestamp:     time.Now(),
		}
		if err := s.responses.Append(ctx, record); err != nil {
			MetricsIncrementPersistFailed()
			s.logger.Warn("Не удалось сохранить ответ (продолжаем)",
				zap.String("session_id", sessionID),
				zap.Error(err))
		}
	}

	MetricsRecordTurn(string(outcome.Intent), string(outcome.UIAction), time.Since(turnStart))

	s.logger.Info("Ход обработан",
		zap.String("session_id", sessionID),
		zap.String("intent", string(outcome.Intent)),
		zap.String("ui_action", string(outcome.UIAction)),
		zap.Duration("duration", time.Since(turnStart)))

	return models.TurnResponse{
		Transcription: transcript,
		Messages:      messages,
		UIAction:      outcome.UIAction,
	}, nil
}

func (s *surveyServiceImpl) QuestionAudio(ctx context.Context, index int) ([]byte, bool, error) {
	if index >= s.catalog.Len() {
		return nil, true, nil
	}
	q, err := s.catalog.Get(index)
	if err != nil {
		return nil, false, err
	}
	audio, err := s.composer.synthesizer.Synthesize(ctx, q.Text)
	if err != nil {
		return nil, false, err
	}
	return audio, false, nil
}

func failureStage(err error) string {
	switch {
	case errors.Is(err, models.ErrOracleUnavailable):
		return "oracle"
	case errors.Is(err, models.ErrTranscriptionFailed):
		return "transcription"
	case errors.Is(err, models.ErrSynthesisFailed):
		return "synthesis"
	default:
		return "internal"
	}
}
