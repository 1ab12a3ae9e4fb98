package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"survey-server/internal/models"
)

const explainerSystemPrompt = `You explain a survey question in simpler words.
Reply with a plain 1-2 sentence explanation of what the question is asking. No preamble, no formatting.`

// QuestionExplainer упрощает формулировку вопроса для респондента.
type QuestionExplainer interface {
	Explain(ctx context.Context, sessionID string, questionText string) (string, error)
}

// oracleQuestionExplainer реализует QuestionExplainer через текстового оракула.
type oracleQuestionExplainer struct {
	oracle Oracle
	logger *zap.Logger
}

// NewQuestionExplainer создает пояснитель вопросов.
func NewQuestionExplainer(oracle Oracle, logger *zap.Logger) QuestionExplainer {
	return &oracleQuestionExplainer{
		oracle: oracle,
		logger: logger.Named("QuestionExplainer"),
	}
}

func (e *oracleQuestionExplainer) Explain(ctx context.Context, sessionID string, questionText string) (string, error) {
	raw, _, err := e.oracle.Complete(ctx, sessionID, explainerSystemPrompt, questionText, CompletionParams{
		Temperature: float64Ptr(0.3),
	})
	if err != nil {
		return "", err
	}

	explanation := strings.TrimSpace(raw)
	if explanation == "" {
		e.logger.Warn("Оракул вернул пустое пояснение", zap.String("session_id", sessionID))
		return "", fmt.Errorf("%w: пустое пояснение", models.ErrOracleUnavailable)
	}
	return explanation, nil
}
