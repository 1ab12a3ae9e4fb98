package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"survey-server/internal/models"
)

// postgresResponseRepository пишет записи в append-only таблицу PostgreSQL.
//
// Ожидаемая схема:
//
//	CREATE TABLE survey_responses (
//	    id            BIGSERIAL PRIMARY KEY,
//	    session_id    TEXT        NOT NULL,
//	    question      TEXT        NOT NULL,
//	    transcription TEXT        NOT NULL,
//	    mapped_option TEXT        NOT NULL DEFAULT '',
//	    created_at    TIMESTAMPTZ NOT NULL
//	);
type postgresResponseRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresResponseRepository создает Postgres-репозиторий ответов.
func NewPostgresResponseRepository(db *pgxpool.Pool, logger *zap.Logger) ResponseRepository {
	return &postgresResponseRepository{
		db:     db,
		logger: logger.Named("PostgresResponseRepository"),
	}
}

// Append сохраняет одну запись об ответе.
func (r *postgresResponseRepository) Append(ctx context.Context, record models.TurnRecord) error {
	query := `
        INSERT INTO survey_responses
        (session_id, question, transcription, mapped_option, created_at)
        VALUES ($1, $2, $3, $4, $5);
    `
	_, err := r.db.Exec(ctx, query,
		record.SessionID,
		record.Question,
		record.Transcription,
		record.MappedOption,
		record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("ошибка сохранения ответа сессии '%s' в БД: %w", record.SessionID, err)
	}

	r.logger.Debug("Ответ сохранен в БД", zap.String("session_id", record.SessionID))
	return nil
}
