package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"survey-server/internal/models"
)

// csvResponseRepository дописывает записи в плоский CSV файл.
// Заголовок пишется только при создании файла.
type csvResponseRepository struct {
	path   string
	mu     sync.Mutex // сериализуем конкурентные append из разных сессий
	logger *zap.Logger
}

// NewCSVResponseRepository создает CSV-репозиторий ответов.
func NewCSVResponseRepository(path string, logger *zap.Logger) ResponseRepository {
	return &csvResponseRepository{
		path:   path,
		logger: logger.Named("CSVResponseRepository"),
	}
}

// Append дописывает одну запись в файл ответов.
func (r *csvResponseRepository) Append(_ context.Context, record models.TurnRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, statErr := os.Stat(r.path)
	fileExists := statErr == nil

	file, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("не удалось открыть файл ответов %s: %w", r.path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if !fileExists {
		if err := writer.Write([]string{"session_id", "question", "transcription", "mapped_option", "timestamp"}); err != nil {
			return fmt.Errorf("ошибка записи заголовка в %s: %w", r.path, err)
		}
	}

	row := []string{
		record.SessionID,
		record.Question,
		record.Transcription,
		record.MappedOption,
		strconv.FormatInt(record.Timestamp.Unix(), 10),
	}
	if err := writer.Write(row); err != nil {
		return fmt.Errorf("ошибка записи ответа в %s: %w", r.path, err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("ошибка сброса буфера CSV %s: %w", r.path, err)
	}

	r.logger.Debug("Ответ сохранен в CSV",
		zap.String("session_id", record.SessionID),
		zap.String("mapped_option", record.MappedOption))
	return nil
}
