package repository

import (
	"context"

	"survey-server/internal/models"
)

// ResponseRepository - persistence sink для принятых ответов.
// Запись best-effort: ошибка логируется вызывающей стороной и не валит ход.
type ResponseRepository interface {
	Append(ctx context.Context, record models.TurnRecord) error
}
